package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/lasmate/Alisee/internal/cache"
	"github.com/lasmate/Alisee/internal/model"
	"github.com/lasmate/Alisee/internal/repository"
)

// CatalogService reads items and images. Single-item lookups go through the cache.
type CatalogService struct {
	store Store
	cache cache.Cache
}

// NewCatalogService builds the service. A nil cache disables caching.
func NewCatalogService(store Store, c cache.Cache) *CatalogService {
	return &CatalogService{store: store, cache: c}
}

func itemKey(id int64) string {
	return "item:" + strconv.FormatInt(id, 10)
}

func (s *CatalogService) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	if id <= 0 {
		return nil, validationf("invalid item id %d", id)
	}

	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, itemKey(id)); ok {
			var it model.Item
			if err := json.Unmarshal(raw, &it); err == nil {
				return &it, nil
			}
			s.cache.Delete(ctx, itemKey(id))
		}
	}

	it, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	s.remember(ctx, it, false)
	return it, nil
}

// remember caches it. Reads only fill an empty slot so they cannot overwrite a
// value written by a concurrent update.
func (s *CatalogService) remember(ctx context.Context, it *model.Item, overwrite bool) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(it)
	if err != nil {
		slog.Warn("failed to encode item for cache", "item_id", it.ID, "error", err)
		return
	}
	if overwrite {
		s.cache.Set(ctx, itemKey(it.ID), raw)
		return
	}
	s.cache.Add(ctx, itemKey(it.ID), raw)
}

func (s *CatalogService) IsAvailable(ctx context.Context, id int64) (bool, error) {
	it, err := s.GetItem(ctx, id)
	if err != nil {
		return false, err
	}
	return it.IsAvailable, nil
}

func (s *CatalogService) ListItems(ctx context.Context, availableOnly bool, category string) ([]model.Item, error) {
	items, err := s.store.ListItems(ctx, repository.ItemFilter{AvailableOnly: availableOnly, Category: category})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

func (s *CatalogService) CountItems(ctx context.Context) (int64, error) {
	return s.store.CountItems(ctx)
}

// SetAvailability flips the item's availability flag and refreshes its cached copy.
func (s *CatalogService) SetAvailability(ctx context.Context, id int64, available bool) error {
	if id <= 0 {
		return validationf("invalid item id %d", id)
	}
	if err := s.store.SetItemAvailability(ctx, id, available); err != nil {
		return translate(err)
	}
	if s.cache != nil {
		it, err := s.store.GetItem(ctx, id)
		if err != nil {
			s.cache.Delete(ctx, itemKey(id))
		} else {
			s.remember(ctx, it, true)
		}
	}
	slog.Info("item availability changed", "item_id", id, "available", available)
	return nil
}

func (s *CatalogService) GetImage(ctx context.Context, id int64) (*model.Image, error) {
	if id <= 0 {
		return nil, validationf("invalid image id %d", id)
	}
	img, err := s.store.GetImage(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return img, nil
}

func (s *CatalogService) CountImages(ctx context.Context) (int64, error) {
	return s.store.CountImages(ctx)
}
