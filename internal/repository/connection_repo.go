package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hausmate/hausmate/internal/domain"
	"gorm.io/gorm"
)

// ConnectionRepository handles the undirected mutual-match relation.
type ConnectionRepository struct {
	db *gorm.DB
}

// NewConnectionRepository creates a new ConnectionRepository.
func NewConnectionRepository(db *gorm.DB) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

// ConnectedIDs retrieves the profiles connected to the given profile,
// resolving each row to the other side of the pair. Both orderings are
// checked since old rows may predate pair normalization.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - profileID: profile whose connections to resolve.
//
// Returns:
//   - []string: the other member of every connection involving profileID.
//   - error: non-nil if the query fails.
func (r *ConnectionRepository) ConnectedIDs(ctx context.Context, profileID string) ([]string, error) {
	var connections []domain.Connection
	if err := r.db.WithContext(ctx).
		Where("profile_a = ? OR profile_b = ?", profileID, profileID).
		Find(&connections).Error; err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}

	seen := make(map[string]struct{}, len(connections))
	ids := make([]string, 0, len(connections))
	for _, conn := range connections {
		other := conn.Other(profileID)
		if other == "" {
			continue
		}
		if _, dup := seen[other]; dup {
			continue
		}
		seen[other] = struct{}{}
		ids = append(ids, other)
	}
	return ids, nil
}

// Create stores a connection between two profiles in normalized pair order.
// An already-connected pair returns the existing row, so replayed mutual
// likes stay harmless.
func (r *ConnectionRepository) Create(ctx context.Context, a, b string) (*domain.Connection, error) {
	first, second := domain.OrderPair(a, b)

	var existing domain.Connection
	err := r.db.WithContext(ctx).
		Where("profile_a = ? AND profile_b = ?", first, second).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to check existing connection: %w", err)
	}

	conn := &domain.Connection{
		ID:        uuid.NewString(),
		ProfileA:  first,
		ProfileB:  second,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(conn).Error; err != nil {
		return nil, fmt.Errorf("failed to create connection: %w", err)
	}
	return conn, nil
}
