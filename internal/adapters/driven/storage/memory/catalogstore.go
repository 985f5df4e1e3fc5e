// Package memory provides in-memory implementations of the storage
// ports, used in tests and as a scratch backend.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/storefront-labs/channelsync/internal/core/domain"
	"github.com/storefront-labs/channelsync/internal/core/ports/driven"
)

// CatalogStore is an in-memory implementation of driven.CatalogStore.
type CatalogStore struct {
	mu    sync.RWMutex
	items map[string]map[string]domain.CatalogItem // merchantID -> productID -> item
}

var _ driven.CatalogStore = (*CatalogStore)(nil)

// NewCatalogStore creates an empty in-memory catalog store.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		items: make(map[string]map[string]domain.CatalogItem),
	}
}

// Put stores or replaces an item for a merchant.
func (s *CatalogStore) Put(merchantID string, item domain.CatalogItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.items[merchantID] == nil {
		s.items[merchantID] = make(map[string]domain.CatalogItem)
	}
	s.items[merchantID][item.ID] = item
}

// ListActive returns the merchant's active items ordered by ID.
func (s *CatalogStore) ListActive(_ context.Context, merchantID string) ([]domain.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []domain.CatalogItem
	for _, item := range s.items[merchantID] {
		if item.Status == domain.ItemStatusActive {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// Get retrieves a single product by ID.
func (s *CatalogStore) Get(_ context.Context, merchantID, productID string) (*domain.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[merchantID][productID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &item, nil
}
