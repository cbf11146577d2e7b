package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hausmate/hausmate/internal/domain"
)

func TestParseFilters(t *testing.T) {
	tests := []struct {
		name      string
		raw       map[string]interface{}
		expectErr bool
		validate  func(*testing.T, []Filter)
	}{
		{
			name: "numeric range",
			raw:  map[string]interface{}{"budget": []interface{}{400.0, 900.0}},
			validate: func(t *testing.T, filters []Filter) {
				if len(filters) != 1 {
					t.Fatalf("expected 1 filter, got %d", len(filters))
				}
				f := filters[0]
				if f.Kind != FilterKindRange || f.Min != 400 || f.Max != 900 {
					t.Errorf("unexpected filter: %+v", f)
				}
			},
		},
		{
			name: "swapped bounds are normalized",
			raw:  map[string]interface{}{"budget": []interface{}{900.0, 400.0}},
			validate: func(t *testing.T, filters []Filter) {
				if filters[0].Min != 400 || filters[0].Max != 900 {
					t.Errorf("expected normalized bounds, got %+v", filters[0])
				}
			},
		},
		{
			name: "age range is date backed",
			raw:  map[string]interface{}{"age": []interface{}{20.0, 25.0}},
			validate: func(t *testing.T, filters []Filter) {
				if !filters[0].DateBacked {
					t.Error("expected age filter to be date backed")
				}
			},
		},
		{
			name: "membership selection",
			raw: map[string]interface{}{
				"university": map[string]interface{}{"tu-berlin": true, "hu-berlin": false, "fu-berlin": true},
			},
			validate: func(t *testing.T, filters []Filter) {
				f := filters[0]
				if f.Kind != FilterKindMembership {
					t.Fatalf("expected membership filter, got %+v", f)
				}
				if len(f.Selected) != 2 || f.Selected[0] != "fu-berlin" || f.Selected[1] != "tu-berlin" {
					t.Errorf("unexpected selection: %v", f.Selected)
				}
			},
		},
		{
			name: "empty selection contributes nothing",
			raw: map[string]interface{}{
				"university": map[string]interface{}{"tu-berlin": false},
			},
			validate: func(t *testing.T, filters []Filter) {
				if len(filters) != 0 {
					t.Errorf("expected no filters, got %d", len(filters))
				}
			},
		},
		{
			name: "location with coordinates",
			raw: map[string]interface{}{
				"location": map[string]interface{}{"latitude": 52.52, "longitude": 13.405, "range": 5000.0},
			},
			validate: func(t *testing.T, filters []Filter) {
				f := filters[0]
				if f.Kind != FilterKindGeoRadius || f.Latitude != 52.52 || f.Radius != 5000 {
					t.Errorf("unexpected location filter: %+v", f)
				}
			},
		},
		{
			name: "location with address only",
			raw: map[string]interface{}{
				"location": map[string]interface{}{"address": "Berlin", "range": 5000.0},
			},
			validate: func(t *testing.T, filters []Filter) {
				if filters[0].Address != "Berlin" {
					t.Errorf("expected address to survive, got %+v", filters[0])
				}
			},
		},
		{
			name:      "location without radius",
			raw:       map[string]interface{}{"location": map[string]interface{}{"latitude": 52.52, "longitude": 13.405}},
			expectErr: true,
		},
		{
			name:      "range with wrong arity",
			raw:       map[string]interface{}{"budget": []interface{}{400.0}},
			expectErr: true,
		},
		{
			name:      "range with non-numeric bound",
			raw:       map[string]interface{}{"budget": []interface{}{400.0, "lots"}},
			expectErr: true,
		},
		{
			name:      "membership with non-bool value",
			raw:       map[string]interface{}{"university": map[string]interface{}{"tu-berlin": "yes"}},
			expectErr: true,
		},
		{
			name:      "unsupported shape",
			raw:       map[string]interface{}{"budget": "400-900"},
			expectErr: true,
		},
		{
			name: "nil values are skipped",
			raw:  map[string]interface{}{"budget": nil},
			validate: func(t *testing.T, filters []Filter) {
				if len(filters) != 0 {
					t.Errorf("expected no filters, got %d", len(filters))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filters, err := ParseFilters(tt.raw)
			if tt.expectErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.validate(t, filters)
		})
	}
}

func TestBirthdateWindow(t *testing.T) {
	today := time.Date(2026, 8, 31, 15, 4, 5, 0, time.UTC)

	earliest, latest := birthdateWindow(today, 20, 25)

	// Born on `latest` turns 20 today.
	if got := latest.Format("2006-01-02"); got != "2006-08-31" {
		t.Errorf("latest: expected 2006-08-31, got %s", got)
	}
	// Born one day before `earliest` is already 26.
	if got := earliest.Format("2006-01-02"); got != "2000-09-01" {
		t.Errorf("earliest: expected 2000-09-01, got %s", got)
	}
}

func newTestEngine(store *fakeProfileStore, now time.Time) *FilterEngine {
	engine := NewFilterEngine(store)
	engine.now = func() time.Time { return now }
	return engine
}

func TestFilterEngine_NumericRange(t *testing.T) {
	store := newFakeProfileStore()
	store.addProfile("p1", domain.SearchTypeFlatmate, 0, 0)
	store.addProfile("p2", domain.SearchTypeFlatmate, 0, 0)
	store.addProfile("p3", domain.SearchTypeFlatmate, 0, 0)
	store.setInfo("p1", "budget", "500")
	store.setInfo("p2", "budget", "1200")
	// p3 has no budget entry and cannot match.

	engine := newTestEngine(store, time.Now())
	filters := []Filter{{Key: "budget", Kind: FilterKindRange, Min: 400, Max: 900}}

	ids, err := engine.Apply(context.Background(), filters, nil, domain.SearchTypeFlatmate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 || ids[0] != "p1" {
		t.Errorf("expected [p1], got %v", ids)
	}
}

func TestFilterEngine_AgeRange(t *testing.T) {
	today := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	store := newFakeProfileStore()
	store.addProfile("young", domain.SearchTypeFlatmate, 0, 0)
	store.addProfile("match", domain.SearchTypeFlatmate, 0, 0)
	store.addProfile("edge", domain.SearchTypeFlatmate, 0, 0)
	store.addProfile("old", domain.SearchTypeFlatmate, 0, 0)
	store.setInfo("young", "birthdate", "2008-01-15") // 18
	store.setInfo("match", "birthdate", "2003-06-01") // 23
	store.setInfo("edge", "birthdate", "2006-08-31")  // turns 20 today
	store.setInfo("old", "birthdate", "1998-02-10")   // 28

	engine := newTestEngine(store, today)
	filters := []Filter{{Key: "age", Kind: FilterKindRange, Min: 20, Max: 25, DateBacked: true}}

	ids, err := engine.Apply(context.Background(), filters, nil, domain.SearchTypeFlatmate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 matches, got %v", ids)
	}
	if ids[0] != "edge" || ids[1] != "match" {
		t.Errorf("expected [edge match], got %v", ids)
	}
}

func TestFilterEngine_Membership(t *testing.T) {
	store := newFakeProfileStore()
	store.addProfile("p1", domain.SearchTypeFlatmate, 0, 0)
	store.addProfile("p2", domain.SearchTypeFlatmate, 0, 0)
	store.addProfile("p3", domain.SearchTypeFlatmate, 0, 0)
	store.setInfo("p1", "university", `["tu-berlin","hu-berlin"]`)
	store.setInfo("p2", "university", `["fu-berlin"]`)
	store.setInfo("p3", "university", "tu-berlin") // legacy scalar row

	engine := newTestEngine(store, time.Now())
	filters := []Filter{{Key: "university", Kind: FilterKindMembership, Selected: []string{"tu-berlin"}}}

	ids, err := engine.Apply(context.Background(), filters, nil, domain.SearchTypeFlatmate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != "p1" || ids[1] != "p3" {
		t.Errorf("expected [p1 p3], got %v", ids)
	}
}

func TestFilterEngine_LocationDefinesBasePool(t *testing.T) {
	store := newFakeProfileStore()
	store.addProfile("near", domain.SearchTypeFlatmate, 52.52, 13.405)
	store.addProfile("far", domain.SearchTypeFlatmate, 48.137, 11.575) // Munich
	store.setInfo("near", "budget", "500")
	store.setInfo("far", "budget", "500")

	engine := newTestEngine(store, time.Now())
	filters := []Filter{
		{Key: "budget", Kind: FilterKindRange, Min: 400, Max: 900},
		{Key: "location", Kind: FilterKindGeoRadius, Latitude: 52.52, Longitude: 13.405, Radius: 10000},
	}

	ids, err := engine.Apply(context.Background(), filters, nil, domain.SearchTypeFlatmate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 || ids[0] != "near" {
		t.Errorf("expected [near], got %v", ids)
	}
}

func TestFilterEngine_IntersectsAllFilters(t *testing.T) {
	store := newFakeProfileStore()
	store.addProfile("both", domain.SearchTypeFlatmate, 0, 0)
	store.addProfile("budgetOnly", domain.SearchTypeFlatmate, 0, 0)
	store.addProfile("uniOnly", domain.SearchTypeFlatmate, 0, 0)
	store.setInfo("both", "budget", "500")
	store.setInfo("both", "university", `["tu-berlin"]`)
	store.setInfo("budgetOnly", "budget", "500")
	store.setInfo("budgetOnly", "university", `["fu-berlin"]`)
	store.setInfo("uniOnly", "budget", "2000")
	store.setInfo("uniOnly", "university", `["tu-berlin"]`)

	engine := newTestEngine(store, time.Now())
	filters := []Filter{
		{Key: "budget", Kind: FilterKindRange, Min: 400, Max: 900},
		{Key: "university", Kind: FilterKindMembership, Selected: []string{"tu-berlin"}},
	}

	ids, err := engine.Apply(context.Background(), filters, nil, domain.SearchTypeFlatmate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 || ids[0] != "both" {
		t.Errorf("expected [both], got %v", ids)
	}
}

func TestFilterEngine_ExclusionsNeverAppear(t *testing.T) {
	store := newFakeProfileStore()
	store.addProfile("me", domain.SearchTypeFlatmate, 0, 0)
	store.addProfile("other", domain.SearchTypeFlatmate, 0, 0)

	engine := newTestEngine(store, time.Now())
	exclude := map[string]struct{}{"me": {}}

	ids, err := engine.Apply(context.Background(), nil, exclude, domain.SearchTypeFlatmate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 || ids[0] != "other" {
		t.Errorf("expected [other], got %v", ids)
	}
}

func TestFilterEngine_FailedFilterMatchesNothing(t *testing.T) {
	store := newFakeProfileStore()
	store.addProfile("p1", domain.SearchTypeFlatmate, 0, 0)
	store.setInfo("p1", "budget", "500")
	store.infoErr["budget"] = errors.New("db timeout")

	engine := newTestEngine(store, time.Now())
	filters := []Filter{{Key: "budget", Kind: FilterKindRange, Min: 400, Max: 900}}

	ids, err := engine.Apply(context.Background(), filters, nil, domain.SearchTypeFlatmate)
	if err != nil {
		t.Fatalf("a failed filter must not fail the request: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected empty result, got %v", ids)
	}
}

func TestFilterEngine_BasePoolErrorFails(t *testing.T) {
	store := newFakeProfileStore()
	store.poolErr = errors.New("db down")

	engine := newTestEngine(store, time.Now())
	if _, err := engine.Apply(context.Background(), nil, nil, domain.SearchTypeFlatmate); err == nil {
		t.Fatal("expected base pool failure to surface")
	}
}

func TestParseStoredSet(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []string
	}{
		{name: "json array", raw: `["a","b"]`, expected: []string{"a", "b"}},
		{name: "bare scalar", raw: "a", expected: []string{"a"}},
		{name: "empty string", raw: "", expected: nil},
		{name: "malformed json", raw: `["a"`, expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseStoredSet(tt.raw)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("expected %v, got %v", tt.expected, got)
				}
			}
		})
	}
}
