package favorite

import (
	"context"

	"maidmarket/internal/cache"
	"maidmarket/internal/pkg/logger"
)

// MaidChecker confirms that a maid exists before it can be favorited.
type MaidChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Notifier is told about every change to a user's favorites so that other
// sessions of the same user can refresh.
type Notifier interface {
	FavoriteChanged(userID int64, maidID string, added bool)
}

type Service struct {
	repo     Repository
	maids    MaidChecker
	ids      cache.FavoriteIDs
	notifier Notifier
}

func NewService(repo Repository, maids MaidChecker, ids cache.FavoriteIDs, notifier Notifier) *Service {
	if ids == nil {
		ids = cache.Nop{}
	}
	return &Service{repo: repo, maids: maids, ids: ids, notifier: notifier}
}

// Add favorites maidID for userID. created is false when it already was.
func (s *Service) Add(ctx context.Context, userID int64, maidID string) (*Favorite, bool, error) {
	exists, err := s.maids.Exists(ctx, maidID)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, ErrMaidNotFound
	}

	fav, created, err := s.repo.Add(ctx, userID, maidID)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.changed(ctx, userID, maidID, true)
	}
	return fav, created, nil
}

// Remove unfavorites maidID. Removing a maid that is not a favorite succeeds.
func (s *Service) Remove(ctx context.Context, userID int64, maidID string) error {
	removed, err := s.repo.Remove(ctx, userID, maidID)
	if err != nil {
		return err
	}
	if removed {
		s.changed(ctx, userID, maidID, false)
	}
	return nil
}

// IDs returns the authoritative favorite set, served from cache when warm.
// A set loaded from the database is cached only if the user's favorites
// have not changed since the cache miss.
func (s *Service) IDs(ctx context.Context, userID int64) ([]string, error) {
	ids, version, ok, cerr := s.ids.Get(ctx, userID)
	if cerr != nil {
		logger.WithContext(ctx).Warn().Err(cerr).Int64("user_id", userID).Msg("favorites cache read failed")
	}
	if ok {
		return ids, nil
	}

	ids, err := s.repo.IDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cerr != nil {
		return ids, nil
	}
	if err := s.ids.Set(ctx, userID, version, ids); err != nil {
		logger.WithContext(ctx).Warn().Err(err).Int64("user_id", userID).Msg("favorites cache write failed")
	}
	return ids, nil
}

func (s *Service) List(ctx context.Context, userID int64, limit, offset int) ([]Favorite, int64, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) Check(ctx context.Context, userID int64, maidID string) (bool, error) {
	return s.repo.Exists(ctx, userID, maidID)
}

func (s *Service) changed(ctx context.Context, userID int64, maidID string, added bool) {
	if err := s.ids.Invalidate(ctx, userID); err != nil {
		logger.WithContext(ctx).Warn().Err(err).Int64("user_id", userID).Msg("favorites cache invalidation failed")
	}
	if s.notifier != nil {
		s.notifier.FavoriteChanged(userID, maidID, added)
	}
}
