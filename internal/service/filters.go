package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hausmate/hausmate/internal/domain"
	"github.com/hausmate/hausmate/internal/logger"
)

// ProfileStore provides the profile reads the discovery pipeline needs.
type ProfileStore interface {
	Get(ctx context.Context, id string) (*domain.Profile, error)
	IDsByType(ctx context.Context, searchType domain.SearchType, exclude []string) ([]string, error)
	IDsWithinRadius(ctx context.Context, searchType domain.SearchType, lat, lng, radiusMeters float64, exclude []string) ([]string, error)
	InfoValues(ctx context.Context, pool []string, key string) (map[string]string, error)
	InterestIDs(ctx context.Context, pool []string) (map[string][]string, error)
	Registry(ctx context.Context) (map[string]domain.InfoRegistryEntry, error)
}

// FilterKind is the resolved evaluation policy of a filter. The kind is
// determined once when the request is parsed; the engine dispatches on it
// instead of re-inspecting value shapes.
type FilterKind int

const (
	FilterKindRange FilterKind = iota
	FilterKindMembership
	FilterKindGeoRadius
)

// Filter is one parsed, typed predicate over the candidate pool.
type Filter struct {
	Key  string
	Kind FilterKind

	// Range
	Min, Max   float64
	DateBacked bool // range is in years against a stored birthdate

	// Membership
	Selected []string

	// GeoRadius
	Latitude  float64
	Longitude float64
	Radius    float64 // meters
	Address   string  // resolved to coordinates before evaluation when set
}

// locationFilterKey is the reserved key carrying the geo-radius filter.
const locationFilterKey = "location"

// birthdateInfoKey is the stored information key backing the "age" filter.
const birthdateInfoKey = "birthdate"

// dateBackedKeys are the range filters expressed in years against a stored
// date rather than a stored number.
var dateBackedKeys = map[string]bool{"age": true}

// ParseFilters converts the client-supplied filter mapping into typed
// filters. Keys with empty selections are dropped here: an all-false
// membership filter contributes no constraint. Unrecognized value shapes are
// a validation error, not a silent skip.
func ParseFilters(raw map[string]interface{}) ([]Filter, error) {
	filters := make([]Filter, 0, len(raw))

	// Deterministic parse order keeps error messages stable.
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := raw[key]
		if value == nil {
			continue
		}

		if key == locationFilterKey {
			filter, err := parseLocationFilter(value)
			if err != nil {
				return nil, err
			}
			filters = append(filters, *filter)
			continue
		}

		switch v := value.(type) {
		case []interface{}:
			min, max, err := parseRangeBounds(v)
			if err != nil {
				return nil, fmt.Errorf("filter %q: %w", key, err)
			}
			filters = append(filters, Filter{
				Key:        key,
				Kind:       FilterKindRange,
				Min:        min,
				Max:        max,
				DateBacked: dateBackedKeys[key],
			})
		case map[string]interface{}:
			selected, err := parseSelection(v)
			if err != nil {
				return nil, fmt.Errorf("filter %q: %w", key, err)
			}
			if len(selected) == 0 {
				continue // nothing selected, no constraint
			}
			filters = append(filters, Filter{
				Key:      key,
				Kind:     FilterKindMembership,
				Selected: selected,
			})
		default:
			return nil, fmt.Errorf("filter %q: unsupported value shape %T", key, value)
		}
	}

	return filters, nil
}

func parseRangeBounds(value []interface{}) (float64, float64, error) {
	if len(value) != 2 {
		return 0, 0, fmt.Errorf("range needs exactly [min, max], got %d values", len(value))
	}
	min, okMin := toFloat(value[0])
	max, okMax := toFloat(value[1])
	if !okMin || !okMax {
		return 0, 0, fmt.Errorf("range bounds must be numeric")
	}
	if min > max {
		min, max = max, min
	}
	return min, max, nil
}

func parseSelection(value map[string]interface{}) ([]string, error) {
	selected := make([]string, 0, len(value))
	for option, flag := range value {
		on, ok := flag.(bool)
		if !ok {
			return nil, fmt.Errorf("option %q must map to a boolean", option)
		}
		if on {
			selected = append(selected, option)
		}
	}
	sort.Strings(selected)
	return selected, nil
}

func parseLocationFilter(value interface{}) (*Filter, error) {
	loc, ok := value.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("filter %q: expected an object", locationFilterKey)
	}

	filter := &Filter{Key: locationFilterKey, Kind: FilterKindGeoRadius}
	if lat, ok := toFloat(loc["latitude"]); ok {
		filter.Latitude = lat
	}
	if lng, ok := toFloat(loc["longitude"]); ok {
		filter.Longitude = lng
	}
	if radius, ok := toFloat(loc["range"]); ok {
		filter.Radius = radius
	}
	if address, ok := loc["address"].(string); ok {
		filter.Address = address
	}

	if filter.Radius <= 0 {
		return nil, fmt.Errorf("filter %q: range must be a positive number of meters", locationFilterKey)
	}
	if filter.Address == "" && (loc["latitude"] == nil || loc["longitude"] == nil) {
		return nil, fmt.Errorf("filter %q: needs latitude/longitude or an address", locationFilterKey)
	}

	return filter, nil
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// FilterEngine evaluates parsed filters against the candidate pool.
type FilterEngine struct {
	profiles ProfileStore
	now      func() time.Time
}

// NewFilterEngine creates a FilterEngine.
func NewFilterEngine(profiles ProfileStore) *FilterEngine {
	return &FilterEngine{profiles: profiles, now: time.Now}
}

// Apply runs the two-phase filter pass and returns the surviving profile
// IDs in base-pool order.
//
// Phase one: the location filter, when present, defines the base pool (all
// profiles of the search type within the radius, minus exclusions). It is
// expected to be the most selective predicate and the other filters only
// ever see its output. Without a location filter the base pool is every
// non-excluded profile of the search type.
//
// Phase two: the remaining filters evaluate concurrently against the base
// pool and the results are intersected. A filter that fails to evaluate
// contributes an empty match set (logged) instead of failing the request;
// callers get a smaller page, not an error.
func (e *FilterEngine) Apply(ctx context.Context, filters []Filter, exclude map[string]struct{}, searchType domain.SearchType) ([]string, error) {
	var location *Filter
	rest := make([]Filter, 0, len(filters))
	for i := range filters {
		if filters[i].Kind == FilterKindGeoRadius {
			location = &filters[i]
			continue
		}
		rest = append(rest, filters[i])
	}

	excludeIDs := make([]string, 0, len(exclude))
	for id := range exclude {
		excludeIDs = append(excludeIDs, id)
	}
	sort.Strings(excludeIDs)

	var pool []string
	var err error
	if location != nil {
		pool, err = e.profiles.IDsWithinRadius(ctx, searchType, location.Latitude, location.Longitude, location.Radius, excludeIDs)
	} else {
		pool, err = e.profiles.IDsByType(ctx, searchType, excludeIDs)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build candidate pool: %w", err)
	}
	if len(pool) == 0 || len(rest) == 0 {
		return pool, nil
	}

	matched := make([]map[string]struct{}, len(rest))
	var wg sync.WaitGroup
	wg.Add(len(rest))
	for i := range rest {
		go func(i int) {
			defer wg.Done()
			ids, err := e.evaluate(ctx, rest[i], pool)
			if err != nil {
				logger.CtxWarn(ctx, "Filter evaluation failed, matching nothing: filter=%s, error=%v", rest[i].Key, err)
				matched[i] = map[string]struct{}{}
				return
			}
			matched[i] = ids
		}(i)
	}
	wg.Wait()

	result := make([]string, 0, len(pool))
	for _, id := range pool {
		keep := true
		for _, set := range matched {
			if _, ok := set[id]; !ok {
				keep = false
				break
			}
		}
		if keep {
			result = append(result, id)
		}
	}
	return result, nil
}

// evaluate returns the subset of pool matching one non-location filter.
func (e *FilterEngine) evaluate(ctx context.Context, filter Filter, pool []string) (map[string]struct{}, error) {
	switch filter.Kind {
	case FilterKindRange:
		if filter.DateBacked {
			return e.evaluateDateRange(ctx, filter, pool)
		}
		return e.evaluateNumericRange(ctx, filter, pool)
	case FilterKindMembership:
		return e.evaluateMembership(ctx, filter, pool)
	}
	return nil, fmt.Errorf("unknown filter kind %d", filter.Kind)
}

func (e *FilterEngine) evaluateNumericRange(ctx context.Context, filter Filter, pool []string) (map[string]struct{}, error) {
	values, err := e.profiles.InfoValues(ctx, pool, filter.Key)
	if err != nil {
		return nil, err
	}
	matched := make(map[string]struct{})
	for id, raw := range values {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			continue // unparsable stored value, profile cannot match
		}
		if v >= filter.Min && v <= filter.Max {
			matched[id] = struct{}{}
		}
	}
	return matched, nil
}

// evaluateDateRange converts an age range in years to an inclusive birthdate
// window anchored on today, then matches stored birthdates against it.
func (e *FilterEngine) evaluateDateRange(ctx context.Context, filter Filter, pool []string) (map[string]struct{}, error) {
	values, err := e.profiles.InfoValues(ctx, pool, birthdateInfoKey)
	if err != nil {
		return nil, err
	}

	earliest, latest := birthdateWindow(e.now().UTC(), int(filter.Min), int(filter.Max))

	matched := make(map[string]struct{})
	for id, raw := range values {
		born, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
		if err != nil {
			continue
		}
		if !born.Before(earliest) && !born.After(latest) {
			matched[id] = struct{}{}
		}
	}
	return matched, nil
}

// birthdateWindow returns the inclusive [earliest, latest] birthdate range
// for ages in [minAge, maxAge] as of the given day. Someone turns maxAge+1
// the day after `earliest`; someone born on `latest` turns minAge today.
func birthdateWindow(today time.Time, minAge, maxAge int) (earliest, latest time.Time) {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	earliest = day.AddDate(-maxAge-1, 0, 1)
	latest = day.AddDate(-minAge, 0, 0)
	return earliest, latest
}

func (e *FilterEngine) evaluateMembership(ctx context.Context, filter Filter, pool []string) (map[string]struct{}, error) {
	values, err := e.profiles.InfoValues(ctx, pool, filter.Key)
	if err != nil {
		return nil, err
	}

	selected := make(map[string]struct{}, len(filter.Selected))
	for _, option := range filter.Selected {
		selected[option] = struct{}{}
	}

	matched := make(map[string]struct{})
	for id, raw := range values {
		for _, stored := range parseStoredSet(raw) {
			if _, ok := selected[stored]; ok {
				matched[id] = struct{}{}
				break
			}
		}
	}
	return matched, nil
}

// parseStoredSet decodes a stored set value. Values are JSON arrays; a bare
// scalar is treated as a single-element set for older rows.
func parseStoredSet(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var values []string
		if err := json.Unmarshal([]byte(raw), &values); err == nil {
			return values
		}
		return nil
	}
	return []string{raw}
}
