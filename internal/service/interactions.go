package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hausmate/hausmate/internal/domain"
	"github.com/hausmate/hausmate/internal/logger"
)

// ErrSelfInteraction is returned when a profile tries to interact with
// itself.
var ErrSelfInteraction = errors.New("cannot interact with own profile")

// InteractionResult reports the outcome of recording an interaction.
type InteractionResult struct {
	Matched      bool   `json:"matched"`
	ConnectionID string `json:"connectionId,omitempty"`
}

// InteractionService records likes and dislikes and promotes mutual likes
// to connections.
type InteractionService struct {
	profiles     ProfileStore
	interactions InteractionStore
	connections  ConnectionStore
}

// NewInteractionService creates an InteractionService.
func NewInteractionService(profiles ProfileStore, interactions InteractionStore, connections ConnectionStore) *InteractionService {
	return &InteractionService{
		profiles:     profiles,
		interactions: interactions,
		connections:  connections,
	}
}

// Record appends one interaction. Recording the same interaction again is
// harmless: the log is append-only and reads are set-membership, so
// duplicates do not change behavior. A like that completes a mutual pair
// creates a connection and reports the match.
func (s *InteractionService) Record(ctx context.Context, sourceID, targetID string, kind domain.InteractionKind, searchType domain.SearchType) (*InteractionResult, error) {
	if sourceID == targetID {
		return nil, ErrSelfInteraction
	}
	if !kind.Valid() {
		return nil, newValidationError("unknown interaction type %q", kind)
	}
	if !searchType.Valid() {
		return nil, newValidationError("unknown discovery type %q", searchType)
	}
	if _, err := s.profiles.Get(ctx, targetID); err != nil {
		return nil, ErrProfileNotFound
	}

	interaction := &domain.Interaction{
		ID:         uuid.New().String(),
		SourceID:   sourceID,
		TargetID:   targetID,
		Kind:       kind,
		SearchType: searchType,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.interactions.Record(ctx, interaction); err != nil {
		return nil, fmt.Errorf("failed to record interaction: %w", err)
	}

	result := &InteractionResult{}
	if kind != domain.InteractionLike {
		return result, nil
	}

	reciprocal, err := s.interactions.Exists(ctx, targetID, sourceID, domain.InteractionLike, searchType)
	if err != nil {
		// The like is already durable; the match check can rerun on the
		// reciprocal like.
		logger.CtxWarn(ctx, "Failed to check reciprocal like: sourceId=%s, targetId=%s, error=%v", sourceID, targetID, err)
		return result, nil
	}
	if !reciprocal {
		return result, nil
	}

	connection, err := s.connections.Create(ctx, sourceID, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection: %w", err)
	}
	result.Matched = true
	result.ConnectionID = connection.ID

	logger.With(logger.Fields{
		logger.FieldProfileID:  sourceID,
		logger.FieldSearchType: string(searchType),
	}).Info(ctx, "Mutual like, connection created")

	return result, nil
}
