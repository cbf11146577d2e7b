package service

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/hausmate/hausmate/internal/domain"
	"github.com/hausmate/hausmate/internal/logger"
)

// MediaStore lists and resolves stored media objects.
type MediaStore interface {
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	GetURL(key string) string
}

// AssembledInfo is one information entry annotated with registry metadata.
type AssembledInfo struct {
	Key          string `json:"key"`
	Value        string `json:"value"`
	ValueType    string `json:"valueType"`
	Label        string `json:"label,omitempty"`
	DisplayOrder int    `json:"displayOrder,omitempty"`
	Editable     bool   `json:"editable"`
	InputType    string `json:"inputType,omitempty"`
}

// AssembledProfile is the client-facing profile representation.
type AssembledProfile struct {
	ID         string          `json:"id"`
	SearchType string          `json:"type"`
	Name       string          `json:"name,omitempty"`
	Latitude   float64         `json:"latitude"`
	Longitude  float64         `json:"longitude"`
	Info       []AssembledInfo `json:"info"`
	Interests  []string        `json:"interests"`
	MediaURLs  []string        `json:"mediaUrls"`
	Score      float64         `json:"score,omitempty"`
}

// ProfileAssembler builds client-facing profile views from stored profile
// rows, registry metadata and object storage.
type ProfileAssembler struct {
	profiles ProfileStore
	media    MediaStore
}

// NewProfileAssembler creates a ProfileAssembler.
func NewProfileAssembler(profiles ProfileStore, media MediaStore) *ProfileAssembler {
	return &ProfileAssembler{profiles: profiles, media: media}
}

// Assemble builds one profile view. Minimal views skip information entries
// and carry only the first media object, enough for a discovery card.
func (a *ProfileAssembler) Assemble(ctx context.Context, id string, minimal bool) (*AssembledProfile, error) {
	profile, err := a.profiles.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	assembled := &AssembledProfile{
		ID:         profile.ID,
		SearchType: string(profile.SearchType),
		Latitude:   profile.Latitude,
		Longitude:  profile.Longitude,
		Interests:  make([]string, 0, len(profile.Interests)),
	}
	for _, link := range profile.Interests {
		assembled.Interests = append(assembled.Interests, link.InterestID)
	}
	sort.Strings(assembled.Interests)

	// The display name rides along even in minimal views.
	for _, entry := range profile.Info {
		if entry.Key == "name" {
			assembled.Name = entry.Value
			break
		}
	}

	if !minimal {
		assembled.Info = a.assembleInfo(ctx, profile.Info)
	}

	urls, err := a.mediaURLs(ctx, profile.ID)
	if err != nil {
		logger.CtxWarn(ctx, "Failed to list profile media, serving without: profileId=%s, error=%v", profile.ID, err)
		urls = nil
	}
	if minimal && len(urls) > 1 {
		urls = urls[:1]
	}
	assembled.MediaURLs = urls

	return assembled, nil
}

// AssembleMany builds full profile views for an ordered candidate list,
// attaching the given scores. Candidates that fail to assemble are dropped
// with a warning rather than failing the whole page.
func (a *ProfileAssembler) AssembleMany(ctx context.Context, candidates []scoredID) []AssembledProfile {
	profiles := make([]AssembledProfile, 0, len(candidates))
	for _, candidate := range candidates {
		assembled, err := a.Assemble(ctx, candidate.ID, false)
		if err != nil {
			logger.CtxWarn(ctx, "Dropping candidate that failed to assemble: profileId=%s, error=%v", candidate.ID, err)
			continue
		}
		assembled.Score = candidate.Score
		profiles = append(profiles, *assembled)
	}
	return profiles
}

// assembleInfo annotates stored entries with registry metadata and orders
// them for display. A registry load failure degrades to un-annotated entries.
func (a *ProfileAssembler) assembleInfo(ctx context.Context, entries []domain.InfoEntry) []AssembledInfo {
	registry, err := a.profiles.Registry(ctx)
	if err != nil {
		logger.CtxWarn(ctx, "Failed to load info registry, serving entries without metadata: error=%v", err)
		registry = map[string]domain.InfoRegistryEntry{}
	}

	info := make([]AssembledInfo, 0, len(entries))
	for _, entry := range entries {
		assembled := AssembledInfo{
			Key:       entry.Key,
			Value:     entry.Value,
			ValueType: entry.ValueType,
		}
		if meta, ok := registry[entry.Key]; ok {
			assembled.Label = meta.Label
			assembled.DisplayOrder = meta.DisplayOrder
			assembled.Editable = meta.Editable
			assembled.InputType = meta.InputType
		}
		info = append(info, assembled)
	}
	sort.SliceStable(info, func(i, j int) bool {
		if info[i].DisplayOrder != info[j].DisplayOrder {
			return info[i].DisplayOrder < info[j].DisplayOrder
		}
		return info[i].Key < info[j].Key
	})
	return info
}

// mediaURLs lists a profile's media objects and resolves them to URLs in
// gallery order.
func (a *ProfileAssembler) mediaURLs(ctx context.Context, profileID string) ([]string, error) {
	keys, err := a.media.ListKeys(ctx, profileID+"/")
	if err != nil {
		return nil, err
	}
	ordered := orderMediaKeys(keys)
	urls := make([]string, 0, len(ordered))
	for _, key := range ordered {
		urls = append(urls, a.media.GetURL(key))
	}
	return urls, nil
}

// orderMediaKeys sorts media object keys by the numeric prefix of their
// final path segment ("{profileID}/{order}.{ext}"). Keys without a numeric
// prefix sort after the numbered ones, by name. Gaps in the numbering are
// fine: order is positional, not the literal number.
func orderMediaKeys(keys []string) []string {
	type orderedKey struct {
		key     string
		order   int
		numeric bool
	}
	ordered := make([]orderedKey, 0, len(keys))
	for _, key := range keys {
		name := key
		if idx := strings.LastIndex(key, "/"); idx >= 0 {
			name = key[idx+1:]
		}
		if name == "" {
			continue
		}
		base := name
		if idx := strings.LastIndex(name, "."); idx > 0 {
			base = name[:idx]
		}
		if n, err := strconv.Atoi(base); err == nil {
			ordered = append(ordered, orderedKey{key: key, order: n, numeric: true})
		} else {
			ordered = append(ordered, orderedKey{key: key})
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].numeric != ordered[j].numeric {
			return ordered[i].numeric
		}
		if ordered[i].numeric {
			return ordered[i].order < ordered[j].order
		}
		return ordered[i].key < ordered[j].key
	})

	result := make([]string, len(ordered))
	for i, entry := range ordered {
		result[i] = entry.key
	}
	return result
}
