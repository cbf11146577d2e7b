package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hausmate/hausmate/internal/domain"
	"github.com/hausmate/hausmate/internal/geo"
	"github.com/hausmate/hausmate/internal/logger"
	"gorm.io/gorm"
)

// ValidationError marks a request the caller can fix. Handlers map it to a
// 400 instead of a 500.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func newValidationError(format string, args ...interface{}) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is a request validation failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrProfileNotFound is returned when the requesting profile does not exist.
var ErrProfileNotFound = errors.New("profile not found")

// AddressResolver turns a free-form address into coordinates.
type AddressResolver interface {
	IsEnabled() bool
	Resolve(ctx context.Context, address string) (*geo.Point, error)
}

// DiscoveryRequest is one discovery page request.
type DiscoveryRequest struct {
	SourceID   string
	SearchType domain.SearchType
	Filters    map[string]interface{}
}

// DiscoveryService runs the full discovery pipeline: exclusion resolution,
// filtering, similarity ranking and profile assembly.
type DiscoveryService struct {
	profiles   ProfileStore
	exclusions *ExclusionResolver
	filters    *FilterEngine
	vocabulary *VocabularyCache
	assembler  *ProfileAssembler
	geocoder   AddressResolver
	pageSize   int
}

// NewDiscoveryService creates a DiscoveryService.
func NewDiscoveryService(
	profiles ProfileStore,
	exclusions *ExclusionResolver,
	filters *FilterEngine,
	vocabulary *VocabularyCache,
	assembler *ProfileAssembler,
	geocoder AddressResolver,
	pageSize int,
) *DiscoveryService {
	if pageSize <= 0 {
		pageSize = 25
	}
	return &DiscoveryService{
		profiles:   profiles,
		exclusions: exclusions,
		filters:    filters,
		vocabulary: vocabulary,
		assembler:  assembler,
		geocoder:   geocoder,
		pageSize:   pageSize,
	}
}

// Discover returns one ranked page of candidate profiles for the requester.
//
// Candidates the requester already interacted with or is connected to never
// appear. Remaining candidates pass the request filters, then rank by cosine
// similarity of interest vectors against the requester, most similar first.
// Ties keep a stable order so repeated identical requests return identical
// pages.
func (s *DiscoveryService) Discover(ctx context.Context, req DiscoveryRequest) ([]AssembledProfile, error) {
	start := time.Now()

	if !req.SearchType.Valid() {
		return nil, newValidationError("unknown discovery type %q", req.SearchType)
	}

	requester, err := s.profiles.Get(ctx, req.SourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load requesting profile: %w", err)
	}

	filters, err := ParseFilters(req.Filters)
	if err != nil {
		return nil, newValidationError("invalid filters: %v", err)
	}
	if err := s.resolveAddresses(ctx, filters); err != nil {
		return nil, err
	}

	exclude := s.exclusions.Resolve(ctx, req.SourceID, req.SearchType)

	pool, err := s.filters.Apply(ctx, filters, exclude, req.SearchType)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return []AssembledProfile{}, nil
	}

	ranked, err := s.rank(ctx, requester, pool)
	if err != nil {
		return nil, err
	}
	if len(ranked) > s.pageSize {
		ranked = ranked[:s.pageSize]
	}

	page := s.assembler.AssembleMany(ctx, ranked)

	logger.With(logger.Fields{
		logger.FieldProfileID:  req.SourceID,
		logger.FieldSearchType: string(req.SearchType),
		logger.FieldCount:      len(page),
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
	}).Info(ctx, "Discovery page served")

	return page, nil
}

// resolveAddresses geocodes location filters that carry an address instead
// of coordinates. An unresolvable address is the caller's problem.
func (s *DiscoveryService) resolveAddresses(ctx context.Context, filters []Filter) error {
	for i := range filters {
		if filters[i].Kind != FilterKindGeoRadius || filters[i].Address == "" {
			continue
		}
		if s.geocoder == nil || !s.geocoder.IsEnabled() {
			return newValidationError("address lookup is not available, provide latitude/longitude")
		}
		point, err := s.geocoder.Resolve(ctx, filters[i].Address)
		if err != nil {
			return newValidationError("could not resolve address %q: %v", filters[i].Address, err)
		}
		filters[i].Latitude = point.Latitude
		filters[i].Longitude = point.Longitude
	}
	return nil
}

// rank orders the pool by interest similarity to the requester, descending.
func (s *DiscoveryService) rank(ctx context.Context, requester *domain.Profile, pool []string) ([]scoredID, error) {
	vocab, err := s.vocabulary.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load interest vocabulary: %w", err)
	}

	interestsByID, err := s.profiles.InterestIDs(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate interests: %w", err)
	}

	requesterInterests := make([]string, 0, len(requester.Interests))
	for _, link := range requester.Interests {
		requesterInterests = append(requesterInterests, link.InterestID)
	}
	base := vocab.Vectorize(requesterInterests)

	return rankBySimilarity(vocab, base, pool, interestsByID), nil
}
