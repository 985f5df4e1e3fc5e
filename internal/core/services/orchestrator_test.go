package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-labs/channelsync/internal/core/domain"
	"github.com/storefront-labs/channelsync/internal/core/ports/driven"
)

// mockAdapter is a scriptable platform adapter. pushFn receives the
// zero-based chunk index alongside the items.
type mockAdapter struct {
	platform domain.Platform
	limits   driven.AdapterLimits
	pctx     *domain.PlatformContext
	prereqFn func(ctx context.Context) (*domain.PlatformContext, error)
	pushFn   func(chunkIndex int, items []domain.CatalogItem) ([]domain.SyncOutcome, error)

	mu         sync.Mutex
	pushCalls  int
	seenChunks [][]domain.CatalogItem
	closed     bool
}

func newMockAdapter(chunkSize, parallelism int) *mockAdapter {
	return &mockAdapter{
		platform: domain.PlatformFacebook,
		limits:   driven.AdapterLimits{ChunkSize: chunkSize, Parallelism: parallelism},
		pctx:     &domain.PlatformContext{Platform: domain.PlatformFacebook, ContainerID: "cat-1", ContainerName: "Product Catalog"},
	}
}

func (m *mockAdapter) Platform() domain.Platform { return m.platform }

func (m *mockAdapter) Limits() driven.AdapterLimits { return m.limits }

func (m *mockAdapter) EnsurePrerequisites(ctx context.Context) (*domain.PlatformContext, error) {
	if m.prereqFn != nil {
		return m.prereqFn(ctx)
	}
	return m.pctx, nil
}

func (m *mockAdapter) PushChunk(_ context.Context, _ *domain.PlatformContext, items []domain.CatalogItem) ([]domain.SyncOutcome, error) {
	m.mu.Lock()
	index := m.pushCalls
	m.pushCalls++
	m.seenChunks = append(m.seenChunks, items)
	m.mu.Unlock()

	if m.pushFn != nil {
		return m.pushFn(index, items)
	}
	outcomes := make([]domain.SyncOutcome, 0, len(items))
	for _, item := range items {
		outcomes = append(outcomes, domain.Published(item.ID, m.platform, "ext-"+item.ID))
	}
	return outcomes, nil
}

func (m *mockAdapter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockAdapter) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pushCalls
}

func makeItems(n int) []domain.CatalogItem {
	items := make([]domain.CatalogItem, n)
	for i := range items {
		items[i] = domain.CatalogItem{
			ID:         fmt.Sprintf("prod-%03d", i),
			Name:       fmt.Sprintf("Product %d", i),
			PriceMinor: 1999,
			Currency:   "USD",
			Stock:      5,
			Status:     domain.ItemStatusActive,
		}
	}
	return items
}

func TestBatchOrchestratorPush(t *testing.T) {
	t.Run("publishes all items across chunks", func(t *testing.T) {
		adapter := newMockAdapter(50, 2)
		var outcomes []domain.SyncOutcome
		var mu sync.Mutex

		result, err := NewBatchOrchestrator().Push(context.Background(), adapter, adapter.pctx, makeItems(200), func(o domain.SyncOutcome) {
			mu.Lock()
			outcomes = append(outcomes, o)
			mu.Unlock()
		})
		require.NoError(t, err)

		assert.Equal(t, 200, result.Published)
		assert.Equal(t, 0, result.Failed)
		assert.False(t, result.AuthExpired)
		assert.Equal(t, 4, adapter.calls())
		assert.Len(t, outcomes, 200)
	})

	t.Run("item failures count without failing the run", func(t *testing.T) {
		adapter := newMockAdapter(10, 1)
		adapter.pushFn = func(_ int, items []domain.CatalogItem) ([]domain.SyncOutcome, error) {
			var out []domain.SyncOutcome
			for i, item := range items {
				if i == 0 {
					out = append(out, domain.Failed(item.ID, adapter.platform, "invalid price", false))
					continue
				}
				out = append(out, domain.Published(item.ID, adapter.platform, "ext-"+item.ID))
			}
			return out, nil
		}

		result, err := NewBatchOrchestrator().Push(context.Background(), adapter, adapter.pctx, makeItems(30), nil)
		require.NoError(t, err)

		assert.Equal(t, 27, result.Published)
		assert.Equal(t, 3, result.Failed)
		assert.Equal(t, 30, result.Total())
	})

	t.Run("auth expiry halts dispatch of later chunks", func(t *testing.T) {
		adapter := newMockAdapter(10, 1)
		adapter.pushFn = func(index int, items []domain.CatalogItem) ([]domain.SyncOutcome, error) {
			if index >= 2 {
				return nil, domain.ErrAuthExpired
			}
			var out []domain.SyncOutcome
			for _, item := range items {
				out = append(out, domain.Published(item.ID, adapter.platform, "ext-"+item.ID))
			}
			return out, nil
		}

		var resolved []string
		result, err := NewBatchOrchestrator().Push(context.Background(), adapter, adapter.pctx, makeItems(100), func(o domain.SyncOutcome) {
			resolved = append(resolved, o.ProductID)
		})
		require.ErrorIs(t, err, domain.ErrAuthExpired)

		assert.True(t, result.AuthExpired)
		assert.Equal(t, 20, result.Published)
		// Chunks after the failing one were never dispatched, so their
		// items resolved no outcome and will be retried next run.
		assert.Equal(t, 3, adapter.calls())
		assert.Len(t, resolved, 20)
	})

	t.Run("partial outcomes from an aborted chunk are kept", func(t *testing.T) {
		adapter := newMockAdapter(5, 1)
		adapter.pushFn = func(index int, items []domain.CatalogItem) ([]domain.SyncOutcome, error) {
			if index == 0 {
				// Two pins landed before the token died mid-chunk.
				return []domain.SyncOutcome{
					domain.Published(items[0].ID, adapter.platform, "ext-a"),
					domain.Published(items[1].ID, adapter.platform, "ext-b"),
				}, domain.ErrAuthExpired
			}
			return nil, errors.New("unreachable")
		}

		result, err := NewBatchOrchestrator().Push(context.Background(), adapter, adapter.pctx, makeItems(15), nil)
		require.ErrorIs(t, err, domain.ErrAuthExpired)

		assert.Equal(t, 2, result.Published)
		assert.True(t, result.AuthExpired)
		assert.Equal(t, 1, adapter.calls())
	})

	t.Run("chunk transport failure marks unresolved items retryable", func(t *testing.T) {
		adapter := newMockAdapter(10, 1)
		adapter.pushFn = func(index int, items []domain.CatalogItem) ([]domain.SyncOutcome, error) {
			if index == 1 {
				return nil, errors.New("connection reset")
			}
			var out []domain.SyncOutcome
			for _, item := range items {
				out = append(out, domain.Published(item.ID, adapter.platform, "ext-"+item.ID))
			}
			return out, nil
		}

		var failed []domain.SyncOutcome
		result, err := NewBatchOrchestrator().Push(context.Background(), adapter, adapter.pctx, makeItems(30), func(o domain.SyncOutcome) {
			if o.Status == domain.OutcomeFailed {
				failed = append(failed, o)
			}
		})
		require.NoError(t, err)

		assert.Equal(t, 20, result.Published)
		assert.Equal(t, 10, result.Failed)
		require.Len(t, failed, 10)
		for _, o := range failed {
			assert.True(t, o.Retryable)
			assert.Contains(t, o.Reason, "connection reset")
		}
	})

	t.Run("respects the adapter parallelism limit", func(t *testing.T) {
		adapter := newMockAdapter(5, 2)
		var inFlight, peak int
		var mu sync.Mutex
		adapter.pushFn = func(_ int, items []domain.CatalogItem) ([]domain.SyncOutcome, error) {
			mu.Lock()
			inFlight++
			if inFlight > peak {
				peak = inFlight
			}
			mu.Unlock()
			defer func() {
				mu.Lock()
				inFlight--
				mu.Unlock()
			}()

			var out []domain.SyncOutcome
			for _, item := range items {
				out = append(out, domain.Published(item.ID, adapter.platform, "x"))
			}
			return out, nil
		}

		_, err := NewBatchOrchestrator().Push(context.Background(), adapter, adapter.pctx, makeItems(60), nil)
		require.NoError(t, err)
		assert.LessOrEqual(t, peak, 2)
	})

	t.Run("empty item set pushes nothing", func(t *testing.T) {
		adapter := newMockAdapter(50, 2)
		result, err := NewBatchOrchestrator().Push(context.Background(), adapter, adapter.pctx, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Total())
		assert.Equal(t, 0, adapter.calls())
	})

	t.Run("cancelled context stops dispatch", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		adapter := newMockAdapter(10, 1)
		result, err := NewBatchOrchestrator().Push(ctx, adapter, adapter.pctx, makeItems(30), nil)
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, result.Total())
	})
}

func TestChunkItems(t *testing.T) {
	t.Run("splits evenly with a short tail", func(t *testing.T) {
		chunks := chunkItems(makeItems(23), 10)
		require.Len(t, chunks, 3)
		assert.Len(t, chunks[0], 10)
		assert.Len(t, chunks[2], 3)
	})

	t.Run("empty input yields no chunks", func(t *testing.T) {
		assert.Empty(t, chunkItems(nil, 10))
	})
}
