package service

import (
	"context"
	"slices"

	"github.com/mangadock/mangadock/internal/model"
)

// FavoritesService manages the favorites set of each user record.
// Every operation is idempotent.
type FavoritesService struct {
	records *Records
}

// NewFavoritesService creates a FavoritesService.
func NewFavoritesService(records *Records) *FavoritesService {
	return &FavoritesService{records: records}
}

// Add appends mangaName to the user's favorites unless present and
// returns the resulting set. The record is only written when it changed.
func (s *FavoritesService) Add(ctx context.Context, username, mangaName string) ([]string, error) {
	if err := requireFields(username, field{"mangaName", mangaName}); err != nil {
		return nil, err
	}

	added := false
	record, err := s.records.update(ctx, username, func(r *model.UserRecord) bool {
		added = r.AddFavorite(mangaName)
		return added
	})
	if err != nil {
		return nil, err
	}

	if added {
		s.records.metrics.IncFavoriteAdded()
	}
	return slices.Clone(record.Favorites), nil
}

// Remove drops mangaName from the user's favorites. Removing an absent
// title is not an error. The record is always written back.
func (s *FavoritesService) Remove(ctx context.Context, username, mangaName string) ([]string, error) {
	if err := requireFields(username, field{"mangaName", mangaName}); err != nil {
		return nil, err
	}

	removed := false
	record, err := s.records.update(ctx, username, func(r *model.UserRecord) bool {
		removed = r.RemoveFavorite(mangaName)
		return true
	})
	if err != nil {
		return nil, err
	}

	if removed {
		s.records.metrics.IncFavoriteRemoved()
	}
	return slices.Clone(record.Favorites), nil
}

// List returns the user's favorites. Unknown users have none.
func (s *FavoritesService) List(ctx context.Context, username string) ([]string, error) {
	if err := requireFields(username); err != nil {
		return nil, err
	}

	record, err := s.records.read(ctx, username)
	if err != nil {
		return nil, err
	}
	return slices.Clone(record.Favorites), nil
}
