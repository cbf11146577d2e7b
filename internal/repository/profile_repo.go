package repository

import (
	"context"
	"fmt"

	"github.com/hausmate/hausmate/internal/domain"
	"github.com/hausmate/hausmate/internal/geo"
	"gorm.io/gorm"
)

// ProfileRepository handles profile data operations.
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Get retrieves a profile by ID with its information entries and interests.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: profile ID.
//
// Returns:
//   - *domain.Profile: profile record if found.
//   - error: non-nil if lookup fails.
func (r *ProfileRepository) Get(ctx context.Context, id string) (*domain.Profile, error) {
	var profile domain.Profile
	if err := r.db.WithContext(ctx).
		Preload("Info").
		Preload("Interests").
		First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// Exists checks whether a profile with the given ID exists.
func (r *ProfileRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Profile{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// IDsByType retrieves all profile IDs of a search type, minus the excluded
// set. Results are ordered by ID so downstream ranking has a deterministic
// tie-break order.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - searchType: discovery pool to select.
//   - exclude: profile IDs to omit; empty means no exclusion.
//
// Returns:
//   - []string: matching profile IDs.
//   - error: non-nil if the query fails.
func (r *ProfileRepository) IDsByType(ctx context.Context, searchType domain.SearchType, exclude []string) ([]string, error) {
	var ids []string
	query := r.db.WithContext(ctx).Model(&domain.Profile{}).
		Where("search_type = ?", searchType)
	if len(exclude) > 0 {
		query = query.Where("id NOT IN ?", exclude)
	}
	if err := query.Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list profile ids: %w", err)
	}
	return ids, nil
}

// IDsWithinRadius retrieves profile IDs of a search type within radiusMeters
// of the given point, minus the excluded set. A bounding-box predicate runs
// in SQL; the exact haversine check runs on the narrowed rows.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - searchType: discovery pool to select.
//   - lat, lng: center of the search circle.
//   - radiusMeters: search radius in meters.
//   - exclude: profile IDs to omit.
//
// Returns:
//   - []string: matching profile IDs ordered by ID.
//   - error: non-nil if the query fails.
func (r *ProfileRepository) IDsWithinRadius(ctx context.Context, searchType domain.SearchType, lat, lng, radiusMeters float64, exclude []string) ([]string, error) {
	minLat, maxLat, minLng, maxLng := geo.BoundingBox(lat, lng, radiusMeters)

	var rows []struct {
		ID        string
		Latitude  float64
		Longitude float64
	}
	query := r.db.WithContext(ctx).Model(&domain.Profile{}).
		Select("id", "latitude", "longitude").
		Where("search_type = ?", searchType).
		Where("latitude BETWEEN ? AND ?", minLat, maxLat).
		Where("longitude BETWEEN ? AND ?", minLng, maxLng)
	if len(exclude) > 0 {
		query = query.Where("id NOT IN ?", exclude)
	}
	if err := query.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query profiles within radius: %w", err)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if geo.Haversine(lat, lng, row.Latitude, row.Longitude) <= radiusMeters {
			ids = append(ids, row.ID)
		}
	}
	return ids, nil
}

// InfoValues retrieves the raw stored value of one information key for each
// profile in the pool. Profiles without the key are absent from the result.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - pool: profile IDs to fetch; empty returns an empty map.
//   - key: information key (e.g. "budget", "birthdate", "amenities").
//
// Returns:
//   - map[string]string: profile ID -> raw value.
//   - error: non-nil if the query fails.
func (r *ProfileRepository) InfoValues(ctx context.Context, pool []string, key string) (map[string]string, error) {
	values := make(map[string]string, len(pool))
	if len(pool) == 0 {
		return values, nil
	}
	var entries []domain.InfoEntry
	if err := r.db.WithContext(ctx).
		Where("profile_id IN ?", pool).
		Where("key = ?", key).
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch info values for %q: %w", key, err)
	}
	for _, entry := range entries {
		values[entry.ProfileID] = entry.Value
	}
	return values, nil
}

// InterestIDs retrieves the interest IDs of each profile in the pool.
// Profiles without interests are absent from the result.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - pool: profile IDs to fetch; empty returns an empty map.
//
// Returns:
//   - map[string][]string: profile ID -> interest IDs.
//   - error: non-nil if the query fails.
func (r *ProfileRepository) InterestIDs(ctx context.Context, pool []string) (map[string][]string, error) {
	interests := make(map[string][]string, len(pool))
	if len(pool) == 0 {
		return interests, nil
	}
	var links []domain.ProfileInterest
	if err := r.db.WithContext(ctx).
		Where("profile_id IN ?", pool).
		Order("interest_id").
		Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch profile interests: %w", err)
	}
	for _, link := range links {
		interests[link.ProfileID] = append(interests[link.ProfileID], link.InterestID)
	}
	return interests, nil
}

// Registry retrieves the full information-key registry keyed by information
// key, used to annotate assembled profiles with display metadata.
func (r *ProfileRepository) Registry(ctx context.Context) (map[string]domain.InfoRegistryEntry, error) {
	var entries []domain.InfoRegistryEntry
	if err := r.db.WithContext(ctx).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load info registry: %w", err)
	}
	registry := make(map[string]domain.InfoRegistryEntry, len(entries))
	for _, entry := range entries {
		registry[entry.Key] = entry
	}
	return registry, nil
}
