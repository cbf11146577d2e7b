package repository

import (
	"context"
	"fmt"

	"github.com/hausmate/hausmate/internal/domain"
	"gorm.io/gorm"
)

// InterestRepository handles interest vocabulary reads. The vocabulary is
// append-only and managed by the admin surface; discovery only lists it.
type InterestRepository struct {
	db *gorm.DB
}

// NewInterestRepository creates a new InterestRepository.
func NewInterestRepository(db *gorm.DB) *InterestRepository {
	return &InterestRepository{db: db}
}

// List retrieves the full interest vocabulary ordered by ID.
func (r *InterestRepository) List(ctx context.Context) ([]domain.Interest, error) {
	var interests []domain.Interest
	if err := r.db.WithContext(ctx).Order("id").Find(&interests).Error; err != nil {
		return nil, fmt.Errorf("failed to list interests: %w", err)
	}
	return interests, nil
}
