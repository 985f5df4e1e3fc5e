package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-labs/channelsync/internal/connectors/request"
	"github.com/storefront-labs/channelsync/internal/core/domain"
	"github.com/storefront-labs/channelsync/internal/core/ports/driven"
)

// mockTokenProvider implements driven.TokenProvider for testing.
type mockTokenProvider struct {
	token       string
	err         error
	invalidated atomic.Int32
}

func (p *mockTokenProvider) GetToken(_ context.Context) (string, error) {
	return p.token, p.err
}

func (p *mockTokenProvider) Invalidate() {
	p.invalidated.Add(1)
}

// newTestAdapter builds an adapter pointed at srv with pacing and
// backoff tightened so tests run in milliseconds.
func newTestAdapter(srv *httptest.Server, cred *domain.PlatformCredential) (*Adapter, *mockTokenProvider) {
	tokens := &mockTokenProvider{token: "test-token"}
	tracker := request.NewTracker(request.TrackerConfig{
		RequestsPerSecond: 10000,
		Burst:             100,
	})
	backoff := request.BackoffPolicy{
		Base:   time.Millisecond,
		Jitter: func(time.Duration) time.Duration { return 0 },
	}
	adapter := NewAdapter(cred, tokens, request.NewExecutor(tracker, backoff))
	adapter.client.baseURL = srv.URL
	return adapter, tokens
}

func testCredential(catalogID string) *domain.PlatformCredential {
	return &domain.PlatformCredential{
		ID:          "cred-1",
		MerchantID:  "merchant-1",
		Platform:    domain.PlatformFacebook,
		AccessToken: "test-token",
		CatalogID:   catalogID,
	}
}

func testItems(n int) []domain.CatalogItem {
	items := make([]domain.CatalogItem, n)
	for i := range items {
		items[i] = domain.CatalogItem{
			ID:         fmt.Sprintf("sku-%d", i+1),
			Name:       fmt.Sprintf("Item %d", i+1),
			PriceMinor: 1299,
			Currency:   "USD",
			Stock:      5,
			Status:     domain.ItemStatusActive,
		}
	}
	return items
}

func TestAdapter_Limits(t *testing.T) {
	adapter, _ := newTestAdapter(httptest.NewServer(http.NotFoundHandler()), testCredential(""))

	limits := adapter.Limits()

	assert.Equal(t, 50, limits.ChunkSize)
	assert.Equal(t, 2, limits.Parallelism)
	var _ driven.PlatformAdapter = adapter
}

func TestAdapter_EnsurePrerequisites(t *testing.T) {
	t.Run("verifies stored catalog id", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/catalog-42", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]string{"id": "catalog-42", "name": "Storefront"})
		}))
		defer srv.Close()

		adapter, _ := newTestAdapter(srv, testCredential("catalog-42"))

		pctx, err := adapter.EnsurePrerequisites(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "catalog-42", pctx.ContainerID)
		assert.Equal(t, "Storefront", pctx.ContainerName)
		assert.Equal(t, domain.PlatformFacebook, pctx.Platform)
	})

	t.Run("finds existing catalog when none stored", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/me/owned_product_catalogs", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]string{
					{"id": "catalog-7", "name": "Product Catalog"},
				},
			})
		}))
		defer srv.Close()

		adapter, _ := newTestAdapter(srv, testCredential(""))

		pctx, err := adapter.EnsurePrerequisites(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "catalog-7", pctx.ContainerID)
	})

	t.Run("creates catalog when none exist", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				json.NewEncoder(w).Encode(map[string]any{"data": []map[string]string{}})
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "catalog-new"})
		}))
		defer srv.Close()

		adapter, _ := newTestAdapter(srv, testCredential(""))

		pctx, err := adapter.EnsurePrerequisites(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "catalog-new", pctx.ContainerID)
		assert.Equal(t, defaultCatalogName, pctx.ContainerName)
	})

	t.Run("is idempotent across runs", func(t *testing.T) {
		var creates atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == http.MethodPost:
				creates.Add(1)
				json.NewEncoder(w).Encode(map[string]string{"id": "catalog-new"})
			case r.URL.Path == "/me/owned_product_catalogs":
				json.NewEncoder(w).Encode(map[string]any{"data": []map[string]string{}})
			default:
				json.NewEncoder(w).Encode(map[string]string{"id": "catalog-new", "name": defaultCatalogName})
			}
		}))
		defer srv.Close()

		adapter, _ := newTestAdapter(srv, testCredential(""))

		first, err := adapter.EnsurePrerequisites(context.Background())
		require.NoError(t, err)
		second, err := adapter.EnsurePrerequisites(context.Background())
		require.NoError(t, err)

		assert.Equal(t, first.ContainerID, second.ContainerID)
		assert.Equal(t, int32(1), creates.Load())
	})

	t.Run("surfaces auth expiry unwrapped", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": 190, "message": "token expired"},
			})
		}))
		defer srv.Close()

		adapter, tokens := newTestAdapter(srv, testCredential("catalog-42"))

		_, err := adapter.EnsurePrerequisites(context.Background())

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrAuthExpired)
		assert.Equal(t, int32(1), tokens.invalidated.Load())
	})

	t.Run("fails closed after Close", func(t *testing.T) {
		adapter, _ := newTestAdapter(httptest.NewServer(http.NotFoundHandler()), testCredential(""))
		require.NoError(t, adapter.Close())

		_, err := adapter.EnsurePrerequisites(context.Background())

		assert.ErrorIs(t, err, domain.ErrAdapterClosed)
	})
}

func TestAdapter_PushChunk(t *testing.T) {
	pctx := &domain.PlatformContext{
		Platform:    domain.PlatformFacebook,
		ContainerID: "catalog-42",
	}

	t.Run("publishes accepted items", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/catalog-42/items_batch", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]any{"handles": []string{"h1"}})
		}))
		defer srv.Close()

		adapter, _ := newTestAdapter(srv, testCredential("catalog-42"))

		outcomes, err := adapter.PushChunk(context.Background(), pctx, testItems(3))

		require.NoError(t, err)
		require.Len(t, outcomes, 3)
		for _, outcome := range outcomes {
			assert.Equal(t, domain.OutcomePublished, outcome.Status)
			assert.Equal(t, outcome.ProductID, outcome.ExternalID)
		}
	})

	t.Run("maps validation errors to failed outcomes", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"handles": []string{"h1"},
				"validation_status": []map[string]any{
					{
						"retailer_id": "sku-2",
						"errors":      []map[string]string{{"message": "duplicate retailer id"}},
					},
				},
			})
		}))
		defer srv.Close()

		adapter, _ := newTestAdapter(srv, testCredential("catalog-42"))

		outcomes, err := adapter.PushChunk(context.Background(), pctx, testItems(3))

		require.NoError(t, err)
		require.Len(t, outcomes, 3)
		assert.Equal(t, domain.OutcomePublished, outcomes[0].Status)
		assert.Equal(t, domain.OutcomeFailed, outcomes[1].Status)
		assert.Equal(t, "duplicate retailer id", outcomes[1].Reason)
		assert.False(t, outcomes[1].Retryable)
		assert.Equal(t, domain.OutcomePublished, outcomes[2].Status)
	})

	t.Run("retries server errors exactly three times", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		adapter, _ := newTestAdapter(srv, testCredential("catalog-42"))

		_, err := adapter.PushChunk(context.Background(), pctx, testItems(1))

		require.Error(t, err)
		assert.True(t, request.IsTransient(err))
		assert.Equal(t, int32(3), hits.Load())
	})

	t.Run("surfaces auth expiry without retrying", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": 190, "error_subcode": 463, "message": "expired"},
			})
		}))
		defer srv.Close()

		adapter, tokens := newTestAdapter(srv, testCredential("catalog-42"))

		_, err := adapter.PushChunk(context.Background(), pctx, testItems(2))

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrAuthExpired)
		assert.Equal(t, int32(1), hits.Load())
		assert.Equal(t, int32(1), tokens.invalidated.Load())
	})

	t.Run("treats throttle codes as transient", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) < 2 {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"code": 4, "message": "too many calls"},
				})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"handles": []string{"h1"}})
		}))
		defer srv.Close()

		adapter, _ := newTestAdapter(srv, testCredential("catalog-42"))

		outcomes, err := adapter.PushChunk(context.Background(), pctx, testItems(1))

		require.NoError(t, err)
		assert.Equal(t, int32(2), hits.Load())
		assert.Equal(t, domain.OutcomePublished, outcomes[0].Status)
	})
}

func TestParseUsage(t *testing.T) {
	t.Run("takes worst of app usage dimensions", func(t *testing.T) {
		header := http.Header{}
		header.Set(headerAppUsage, `{"call_count":40,"total_cputime":85,"total_time":60}`)

		usage := parseUsage(&request.Response{Header: header})

		assert.Equal(t, 85, usage.Consumed)
		assert.Equal(t, 100, usage.Ceiling)
	})

	t.Run("derives reset from business usage recovery hint", func(t *testing.T) {
		header := http.Header{}
		header.Set(headerBusinessUsage, `{"123":[{"estimated_time_to_regain_access":5}]}`)

		usage := parseUsage(&request.Response{Header: header})

		assert.False(t, usage.ResetAt.IsZero())
		assert.WithinDuration(t, time.Now().Add(5*time.Minute), usage.ResetAt, time.Minute)
	})

	t.Run("returns zero usage for absent headers", func(t *testing.T) {
		usage := parseUsage(&request.Response{Header: http.Header{}})

		assert.Zero(t, usage.Consumed)
		assert.Zero(t, usage.Ceiling)
		assert.True(t, usage.ResetAt.IsZero())
	})

	t.Run("ignores malformed headers", func(t *testing.T) {
		header := http.Header{}
		header.Set(headerAppUsage, "not json")

		usage := parseUsage(&request.Response{Header: header})

		assert.Zero(t, usage.Ceiling)
	})
}
