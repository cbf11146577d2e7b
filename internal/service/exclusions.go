package service

import (
	"context"
	"sync"

	"github.com/hausmate/hausmate/internal/domain"
	"github.com/hausmate/hausmate/internal/logger"
)

// ConnectionStore provides read/write access to the mutual-match relation.
type ConnectionStore interface {
	ConnectedIDs(ctx context.Context, profileID string) ([]string, error)
	Create(ctx context.Context, a, b string) (*domain.Connection, error)
}

// InteractionStore provides access to the append-only interaction log.
type InteractionStore interface {
	Record(ctx context.Context, interaction *domain.Interaction) error
	TargetIDs(ctx context.Context, sourceID string, searchType domain.SearchType, kinds []domain.InteractionKind) ([]string, error)
	Exists(ctx context.Context, sourceID, targetID string, kind domain.InteractionKind, searchType domain.SearchType) (bool, error)
}

// ExclusionResolver computes the profiles that must never reappear in a
// requester's discovery feed: the requester itself, every connected profile,
// and every profile the requester has already swiped on.
type ExclusionResolver struct {
	connections  ConnectionStore
	interactions InteractionStore

	// excludeDislikes controls whether disliked targets stay hidden. Hiding
	// them is the default; re-showing a rejected profile is the worse failure.
	excludeDislikes bool
}

// NewExclusionResolver creates an ExclusionResolver.
func NewExclusionResolver(connections ConnectionStore, interactions InteractionStore, excludeDislikes bool) *ExclusionResolver {
	return &ExclusionResolver{
		connections:     connections,
		interactions:    interactions,
		excludeDislikes: excludeDislikes,
	}
}

// Resolve returns the exclusion set for one discovery request. The two
// underlying reads are independent and run concurrently. A failed read
// degrades to an empty contribution (fail open: show more candidates rather
// than none) and is logged; Resolve itself never fails.
func (r *ExclusionResolver) Resolve(ctx context.Context, requesterID string, searchType domain.SearchType) map[string]struct{} {
	var (
		connected []string
		swiped    []string
		wg        sync.WaitGroup
	)

	kinds := []domain.InteractionKind{domain.InteractionLike}
	if r.excludeDislikes {
		kinds = append(kinds, domain.InteractionDislike)
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		ids, err := r.connections.ConnectedIDs(ctx, requesterID)
		if err != nil {
			logger.CtxWarn(ctx, "Connection lookup failed, excluding none: requester=%s, error=%v", requesterID, err)
			return
		}
		connected = ids
	}()
	go func() {
		defer wg.Done()
		ids, err := r.interactions.TargetIDs(ctx, requesterID, searchType, kinds)
		if err != nil {
			logger.CtxWarn(ctx, "Interaction lookup failed, excluding none: requester=%s, error=%v", requesterID, err)
			return
		}
		swiped = ids
	}()
	wg.Wait()

	exclude := make(map[string]struct{}, len(connected)+len(swiped)+1)
	exclude[requesterID] = struct{}{}
	for _, id := range connected {
		exclude[id] = struct{}{}
	}
	for _, id := range swiped {
		exclude[id] = struct{}{}
	}
	return exclude
}
