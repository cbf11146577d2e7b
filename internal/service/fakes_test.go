package service

import (
	"context"
	"sort"

	"github.com/hausmate/hausmate/internal/domain"
	"github.com/hausmate/hausmate/internal/geo"
	"gorm.io/gorm"
)

// fakeProfileStore is an in-memory ProfileStore for tests.
type fakeProfileStore struct {
	profiles map[string]*domain.Profile
	info     map[string]map[string]string // key -> profileID -> value
	interest map[string][]string          // profileID -> interest IDs
	registry map[string]domain.InfoRegistryEntry

	infoErr     map[string]error // key -> forced error
	getErr      map[string]error // profileID -> forced error
	poolErr     error
	interestErr error
	registryErr error
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{
		profiles: map[string]*domain.Profile{},
		info:     map[string]map[string]string{},
		interest: map[string][]string{},
		registry: map[string]domain.InfoRegistryEntry{},
		infoErr:  map[string]error{},
		getErr:   map[string]error{},
	}
}

func (f *fakeProfileStore) addProfile(id string, searchType domain.SearchType, lat, lng float64, interests ...string) {
	profile := &domain.Profile{ID: id, SearchType: searchType, Latitude: lat, Longitude: lng}
	for _, interestID := range interests {
		profile.Interests = append(profile.Interests, domain.ProfileInterest{ProfileID: id, InterestID: interestID})
	}
	f.profiles[id] = profile
	f.interest[id] = interests
}

func (f *fakeProfileStore) setInfo(id, key, value string) {
	if f.info[key] == nil {
		f.info[key] = map[string]string{}
	}
	f.info[key][id] = value
}

func (f *fakeProfileStore) Get(ctx context.Context, id string) (*domain.Profile, error) {
	if err := f.getErr[id]; err != nil {
		return nil, err
	}
	profile, ok := f.profiles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return profile, nil
}

func (f *fakeProfileStore) IDsByType(ctx context.Context, searchType domain.SearchType, exclude []string) ([]string, error) {
	if f.poolErr != nil {
		return nil, f.poolErr
	}
	excluded := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}
	var ids []string
	for id, profile := range f.profiles {
		if profile.SearchType != searchType {
			continue
		}
		if _, skip := excluded[id]; skip {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeProfileStore) IDsWithinRadius(ctx context.Context, searchType domain.SearchType, lat, lng, radiusMeters float64, exclude []string) ([]string, error) {
	ids, err := f.IDsByType(ctx, searchType, exclude)
	if err != nil {
		return nil, err
	}
	var within []string
	for _, id := range ids {
		profile := f.profiles[id]
		if geo.Haversine(lat, lng, profile.Latitude, profile.Longitude) <= radiusMeters {
			within = append(within, id)
		}
	}
	return within, nil
}

func (f *fakeProfileStore) InfoValues(ctx context.Context, pool []string, key string) (map[string]string, error) {
	if err := f.infoErr[key]; err != nil {
		return nil, err
	}
	values := map[string]string{}
	for _, id := range pool {
		if v, ok := f.info[key][id]; ok {
			values[id] = v
		}
	}
	return values, nil
}

func (f *fakeProfileStore) InterestIDs(ctx context.Context, pool []string) (map[string][]string, error) {
	if f.interestErr != nil {
		return nil, f.interestErr
	}
	result := map[string][]string{}
	for _, id := range pool {
		if interests, ok := f.interest[id]; ok {
			result[id] = interests
		}
	}
	return result, nil
}

func (f *fakeProfileStore) Registry(ctx context.Context) (map[string]domain.InfoRegistryEntry, error) {
	if f.registryErr != nil {
		return nil, f.registryErr
	}
	return f.registry, nil
}

// fakeConnectionStore is an in-memory ConnectionStore for tests.
type fakeConnectionStore struct {
	connections map[string][]string
	created     []domain.Connection
	listErr     error
	createErr   error
}

func newFakeConnectionStore() *fakeConnectionStore {
	return &fakeConnectionStore{connections: map[string][]string{}}
}

func (f *fakeConnectionStore) connect(a, b string) {
	f.connections[a] = append(f.connections[a], b)
	f.connections[b] = append(f.connections[b], a)
}

func (f *fakeConnectionStore) ConnectedIDs(ctx context.Context, profileID string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.connections[profileID], nil
}

func (f *fakeConnectionStore) Create(ctx context.Context, a, b string) (*domain.Connection, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	first, second := domain.OrderPair(a, b)
	conn := domain.Connection{ID: "conn-" + first + "-" + second, ProfileA: first, ProfileB: second}
	f.created = append(f.created, conn)
	f.connect(a, b)
	return &conn, nil
}

// fakeInteractionStore is an in-memory InteractionStore for tests.
type fakeInteractionStore struct {
	recorded  []domain.Interaction
	listErr   error
	recordErr error
	existsErr error
}

func (f *fakeInteractionStore) Record(ctx context.Context, interaction *domain.Interaction) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.recorded = append(f.recorded, *interaction)
	return nil
}

func (f *fakeInteractionStore) TargetIDs(ctx context.Context, sourceID string, searchType domain.SearchType, kinds []domain.InteractionKind) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	wanted := make(map[domain.InteractionKind]struct{}, len(kinds))
	for _, kind := range kinds {
		wanted[kind] = struct{}{}
	}
	seen := map[string]struct{}{}
	var ids []string
	for _, interaction := range f.recorded {
		if interaction.SourceID != sourceID || interaction.SearchType != searchType {
			continue
		}
		if _, ok := wanted[interaction.Kind]; !ok {
			continue
		}
		if _, dup := seen[interaction.TargetID]; dup {
			continue
		}
		seen[interaction.TargetID] = struct{}{}
		ids = append(ids, interaction.TargetID)
	}
	return ids, nil
}

func (f *fakeInteractionStore) Exists(ctx context.Context, sourceID, targetID string, kind domain.InteractionKind, searchType domain.SearchType) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	for _, interaction := range f.recorded {
		if interaction.SourceID == sourceID && interaction.TargetID == targetID &&
			interaction.Kind == kind && interaction.SearchType == searchType {
			return true, nil
		}
	}
	return false, nil
}

// fakeInterestStore serves a fixed interest catalog.
type fakeInterestStore struct {
	interests []domain.Interest
	err       error
	calls     int
}

func (f *fakeInterestStore) List(ctx context.Context) ([]domain.Interest, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.interests, nil
}

// fakeMediaStore serves a fixed set of object keys.
type fakeMediaStore struct {
	keys map[string][]string
	err  error
}

func (f *fakeMediaStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.keys[prefix], nil
}

func (f *fakeMediaStore) GetURL(key string) string {
	return "https://media.test/" + key
}

// fakeGeocoder resolves every address to a fixed point.
type fakeGeocoder struct {
	enabled bool
	point   *geo.Point
	err     error
}

func (f *fakeGeocoder) IsEnabled() bool { return f.enabled }

func (f *fakeGeocoder) Resolve(ctx context.Context, address string) (*geo.Point, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.point, nil
}
