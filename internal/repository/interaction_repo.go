package repository

import (
	"context"
	"fmt"

	"github.com/hausmate/hausmate/internal/domain"
	"gorm.io/gorm"
)

// InteractionRepository handles the append-only interaction log. No unique
// constraint is enforced on (source, target, kind); every read here is a
// set-membership query so duplicate rows cannot change results.
type InteractionRepository struct {
	db *gorm.DB
}

// NewInteractionRepository creates a new InteractionRepository.
func NewInteractionRepository(db *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// Record appends an interaction row.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - interaction: interaction to persist.
//
// Returns:
//   - error: non-nil if the insert fails.
func (r *InteractionRepository) Record(ctx context.Context, interaction *domain.Interaction) error {
	if err := r.db.WithContext(ctx).Create(interaction).Error; err != nil {
		return fmt.Errorf("failed to record interaction: %w", err)
	}
	return nil
}

// TargetIDs retrieves the distinct profiles the source has recorded any of
// the given interaction kinds toward, within one search type.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - sourceID: acting profile.
//   - searchType: discovery pool.
//   - kinds: interaction kinds to include.
//
// Returns:
//   - []string: distinct target profile IDs.
//   - error: non-nil if the query fails.
func (r *InteractionRepository) TargetIDs(ctx context.Context, sourceID string, searchType domain.SearchType, kinds []domain.InteractionKind) ([]string, error) {
	if len(kinds) == 0 {
		return nil, nil
	}
	var ids []string
	if err := r.db.WithContext(ctx).Model(&domain.Interaction{}).
		Where("source_id = ?", sourceID).
		Where("search_type = ?", searchType).
		Where("kind IN ?", kinds).
		Distinct().
		Pluck("target_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list interaction targets: %w", err)
	}
	return ids, nil
}

// Exists checks whether the source has recorded the given kind toward the
// target in one search type. Membership, not count: duplicates are fine.
func (r *InteractionRepository) Exists(ctx context.Context, sourceID, targetID string, kind domain.InteractionKind, searchType domain.SearchType) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Interaction{}).
		Where("source_id = ? AND target_id = ?", sourceID, targetID).
		Where("kind = ? AND search_type = ?", kind, searchType).
		Limit(1).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check interaction existence: %w", err)
	}
	return count > 0, nil
}
