package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hausmate/hausmate/internal/domain"
	"github.com/hausmate/hausmate/internal/geo"
)

type discoveryFixture struct {
	profiles     *fakeProfileStore
	interactions *fakeInteractionStore
	connections  *fakeConnectionStore
	interests    *fakeInterestStore
	geocoder     *fakeGeocoder
	svc          *DiscoveryService
}

func newDiscoveryFixture(pageSize int) *discoveryFixture {
	profiles := newFakeProfileStore()
	interactions := &fakeInteractionStore{}
	connections := newFakeConnectionStore()
	interests := &fakeInterestStore{interests: []domain.Interest{
		{ID: "cooking"}, {ID: "gaming"}, {ID: "hiking"}, {ID: "music"},
	}}
	geocoder := &fakeGeocoder{}

	engine := NewFilterEngine(profiles)
	engine.now = func() time.Time { return time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC) }

	svc := NewDiscoveryService(
		profiles,
		NewExclusionResolver(connections, interactions, true),
		engine,
		NewVocabularyCache(interests, time.Hour),
		NewProfileAssembler(profiles, &fakeMediaStore{keys: map[string][]string{}}),
		geocoder,
		pageSize,
	)

	return &discoveryFixture{
		profiles:     profiles,
		interactions: interactions,
		connections:  connections,
		interests:    interests,
		geocoder:     geocoder,
		svc:          svc,
	}
}

func TestDiscoveryService_RanksBySimilarity(t *testing.T) {
	f := newDiscoveryFixture(25)
	f.profiles.addProfile("me", domain.SearchTypeFlatmate, 0, 0, "gaming", "music")
	f.profiles.addProfile("twin", domain.SearchTypeFlatmate, 0, 0, "gaming", "music")
	f.profiles.addProfile("overlap", domain.SearchTypeFlatmate, 0, 0, "gaming", "hiking")
	f.profiles.addProfile("disjoint", domain.SearchTypeFlatmate, 0, 0, "cooking")

	page, err := f.svc.Discover(context.Background(), DiscoveryRequest{
		SourceID:   "me",
		SearchType: domain.SearchTypeFlatmate,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(page) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(page))
	}
	if page[0].ID != "twin" || page[1].ID != "overlap" || page[2].ID != "disjoint" {
		t.Errorf("unexpected order: %s, %s, %s", page[0].ID, page[1].ID, page[2].ID)
	}
	if page[0].Score <= page[1].Score || page[1].Score <= page[2].Score {
		t.Errorf("scores not strictly ordered: %v, %v, %v", page[0].Score, page[1].Score, page[2].Score)
	}
}

func TestDiscoveryService_ExcludesSwipedAndConnected(t *testing.T) {
	f := newDiscoveryFixture(25)
	f.profiles.addProfile("me", domain.SearchTypeFlatmate, 0, 0, "gaming")
	f.profiles.addProfile("fresh", domain.SearchTypeFlatmate, 0, 0, "gaming")
	f.profiles.addProfile("liked", domain.SearchTypeFlatmate, 0, 0, "gaming")
	f.profiles.addProfile("disliked", domain.SearchTypeFlatmate, 0, 0, "gaming")
	f.profiles.addProfile("friend", domain.SearchTypeFlatmate, 0, 0, "gaming")
	recordSwipe(f.interactions, "me", "liked", domain.InteractionLike)
	recordSwipe(f.interactions, "me", "disliked", domain.InteractionDislike)
	f.connections.connect("me", "friend")

	page, err := f.svc.Discover(context.Background(), DiscoveryRequest{
		SourceID:   "me",
		SearchType: domain.SearchTypeFlatmate,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(page) != 1 || page[0].ID != "fresh" {
		ids := make([]string, len(page))
		for i, p := range page {
			ids[i] = p.ID
		}
		t.Errorf("expected only [fresh], got %v", ids)
	}
}

func TestDiscoveryService_RequesterWithoutInterests(t *testing.T) {
	f := newDiscoveryFixture(25)
	f.profiles.addProfile("me", domain.SearchTypeFlatmate, 0, 0)
	f.profiles.addProfile("a", domain.SearchTypeFlatmate, 0, 0, "gaming")
	f.profiles.addProfile("b", domain.SearchTypeFlatmate, 0, 0, "hiking")

	page, err := f.svc.Discover(context.Background(), DiscoveryRequest{
		SourceID:   "me",
		SearchType: domain.SearchTypeFlatmate,
	})
	if err != nil {
		t.Fatalf("an empty interest vector is not an error: %v", err)
	}

	// Everything scores zero; pool order (by ID) survives the stable sort.
	if len(page) != 2 || page[0].ID != "a" || page[1].ID != "b" {
		t.Errorf("expected stable [a b], got %+v", page)
	}
	for _, p := range page {
		if p.Score != 0 {
			t.Errorf("expected zero scores, got %v", p.Score)
		}
	}
}

func TestDiscoveryService_PageSizeTruncates(t *testing.T) {
	f := newDiscoveryFixture(2)
	f.profiles.addProfile("me", domain.SearchTypeFlatmate, 0, 0, "gaming")
	f.profiles.addProfile("a", domain.SearchTypeFlatmate, 0, 0, "gaming")
	f.profiles.addProfile("b", domain.SearchTypeFlatmate, 0, 0, "gaming")
	f.profiles.addProfile("c", domain.SearchTypeFlatmate, 0, 0, "gaming")

	page, err := f.svc.Discover(context.Background(), DiscoveryRequest{
		SourceID:   "me",
		SearchType: domain.SearchTypeFlatmate,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("expected page of 2, got %d", len(page))
	}
}

func TestDiscoveryService_SearchTypesAreDisjoint(t *testing.T) {
	f := newDiscoveryFixture(25)
	f.profiles.addProfile("me", domain.SearchTypeFlatmate, 0, 0, "gaming")
	f.profiles.addProfile("room", domain.SearchTypeAccommodation, 0, 0, "gaming")

	page, err := f.svc.Discover(context.Background(), DiscoveryRequest{
		SourceID:   "me",
		SearchType: domain.SearchTypeFlatmate,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page) != 0 {
		t.Errorf("accommodation profiles must not appear in a flatmate search, got %+v", page)
	}
}

func TestDiscoveryService_FiltersNarrowThePool(t *testing.T) {
	f := newDiscoveryFixture(25)
	f.profiles.addProfile("me", domain.SearchTypeFlatmate, 52.52, 13.405, "gaming")
	f.profiles.addProfile("near-cheap", domain.SearchTypeFlatmate, 52.53, 13.41, "gaming")
	f.profiles.addProfile("near-pricey", domain.SearchTypeFlatmate, 52.53, 13.41, "gaming")
	f.profiles.addProfile("far-cheap", domain.SearchTypeFlatmate, 48.137, 11.575, "gaming")
	f.profiles.setInfo("near-cheap", "budget", "450")
	f.profiles.setInfo("near-pricey", "budget", "1500")
	f.profiles.setInfo("far-cheap", "budget", "450")

	page, err := f.svc.Discover(context.Background(), DiscoveryRequest{
		SourceID:   "me",
		SearchType: domain.SearchTypeFlatmate,
		Filters: map[string]interface{}{
			"budget": []interface{}{400.0, 900.0},
			"location": map[string]interface{}{
				"latitude": 52.52, "longitude": 13.405, "range": 10000.0,
			},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page) != 1 || page[0].ID != "near-cheap" {
		t.Errorf("expected only near-cheap, got %+v", page)
	}
}

func TestDiscoveryService_AddressResolution(t *testing.T) {
	f := newDiscoveryFixture(25)
	f.profiles.addProfile("me", domain.SearchTypeFlatmate, 52.52, 13.405, "gaming")
	f.profiles.addProfile("near", domain.SearchTypeFlatmate, 52.53, 13.41, "gaming")
	f.geocoder.enabled = true
	f.geocoder.point = &geo.Point{Latitude: 52.52, Longitude: 13.405}

	page, err := f.svc.Discover(context.Background(), DiscoveryRequest{
		SourceID:   "me",
		SearchType: domain.SearchTypeFlatmate,
		Filters: map[string]interface{}{
			"location": map[string]interface{}{"address": "Berlin", "range": 10000.0},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page) != 1 || page[0].ID != "near" {
		t.Errorf("expected [near], got %+v", page)
	}
}

func TestDiscoveryService_Validation(t *testing.T) {
	f := newDiscoveryFixture(25)
	f.profiles.addProfile("me", domain.SearchTypeFlatmate, 0, 0, "gaming")
	f.geocoder.enabled = true
	f.geocoder.err = errors.New("no results")

	tests := []struct {
		name   string
		req    DiscoveryRequest
		expect func(error) bool
	}{
		{
			name:   "unknown search type",
			req:    DiscoveryRequest{SourceID: "me", SearchType: "roommate"},
			expect: IsValidationError,
		},
		{
			name:   "unknown requester",
			req:    DiscoveryRequest{SourceID: "ghost", SearchType: domain.SearchTypeFlatmate},
			expect: func(err error) bool { return errors.Is(err, ErrProfileNotFound) },
		},
		{
			name: "malformed filter",
			req: DiscoveryRequest{
				SourceID:   "me",
				SearchType: domain.SearchTypeFlatmate,
				Filters:    map[string]interface{}{"budget": "cheap"},
			},
			expect: IsValidationError,
		},
		{
			name: "unresolvable address",
			req: DiscoveryRequest{
				SourceID:   "me",
				SearchType: domain.SearchTypeFlatmate,
				Filters: map[string]interface{}{
					"location": map[string]interface{}{"address": "Atlantis", "range": 5000.0},
				},
			},
			expect: IsValidationError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Discover(context.Background(), tt.req)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !tt.expect(err) {
				t.Errorf("unexpected error kind: %v", err)
			}
		})
	}
}

func TestDiscoveryService_GeocoderDisabled(t *testing.T) {
	f := newDiscoveryFixture(25)
	f.profiles.addProfile("me", domain.SearchTypeFlatmate, 0, 0, "gaming")

	_, err := f.svc.Discover(context.Background(), DiscoveryRequest{
		SourceID:   "me",
		SearchType: domain.SearchTypeFlatmate,
		Filters: map[string]interface{}{
			"location": map[string]interface{}{"address": "Berlin", "range": 5000.0},
		},
	})
	if !IsValidationError(err) {
		t.Fatalf("expected validation error when geocoding is off, got %v", err)
	}
}
