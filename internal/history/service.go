package history

import "context"

// Service handles history queries
type Service struct {
	store Store
}

// NewService creates a new history service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Feed returns the group feed, or the caller's own feed when mine is set
func (s *Service) Feed(ctx context.Context, userID string, mine bool) ([]*Entry, error) {
	if mine {
		return s.store.UserFeed(ctx, userID)
	}
	return s.store.GroupFeed(ctx)
}

// Stats returns trip-level and personal spending totals
func (s *Service) Stats(ctx context.Context, userID string) (*Stats, error) {
	return s.store.Stats(ctx, userID)
}
