package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-labs/channelsync/internal/core/domain"
)

func TestLedger(t *testing.T) {
	ctx := context.Background()

	t.Run("latest supersedes earlier outcomes", func(t *testing.T) {
		ledger := NewLedger()

		require.NoError(t, ledger.Append(ctx, domain.Failed("sku-1", domain.PlatformFacebook, "rejected", false)))
		require.NoError(t, ledger.Append(ctx, domain.Published("sku-1", domain.PlatformFacebook, "ext-1")))

		latest, err := ledger.Latest(ctx, "sku-1", domain.PlatformFacebook)

		require.NoError(t, err)
		assert.Equal(t, domain.OutcomePublished, latest.Status)
	})

	t.Run("latest returns not found for an unattempted item", func(t *testing.T) {
		ledger := NewLedger()

		_, err := ledger.Latest(ctx, "sku-1", domain.PlatformFacebook)

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("history is most recent first and capped", func(t *testing.T) {
		ledger := NewLedger()

		require.NoError(t, ledger.Append(ctx, domain.Failed("sku-1", domain.PlatformTikTok, "first", true)))
		require.NoError(t, ledger.Append(ctx, domain.Failed("sku-1", domain.PlatformTikTok, "second", true)))
		require.NoError(t, ledger.Append(ctx, domain.Published("sku-1", domain.PlatformTikTok, "tt-1")))

		history, err := ledger.History(ctx, "sku-1", domain.PlatformTikTok, 2)

		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, domain.OutcomePublished, history[0].Status)
		assert.Equal(t, "second", history[1].Reason)
	})

	t.Run("concurrent appends never lose rows", func(t *testing.T) {
		ledger := NewLedger()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 20; j++ {
					_ = ledger.Append(ctx, domain.Published("sku-1", domain.PlatformFacebook, "ext"))
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 200, ledger.Count())
	})
}

func TestCredentialStore(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips and deletes", func(t *testing.T) {
		store := NewCredentialStore()

		require.NoError(t, store.Save(ctx, domain.PlatformCredential{
			MerchantID: "merchant-1", Platform: domain.PlatformFacebook, AccessToken: "token",
		}))

		cred, err := store.Get(ctx, "merchant-1", domain.PlatformFacebook)
		require.NoError(t, err)
		assert.Equal(t, "token", cred.AccessToken)
		assert.False(t, cred.UpdatedAt.IsZero())

		require.NoError(t, store.Delete(ctx, "merchant-1", domain.PlatformFacebook))
		_, err = store.Get(ctx, "merchant-1", domain.PlatformFacebook)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestCatalogStore(t *testing.T) {
	ctx := context.Background()

	t.Run("lists only active items sorted by id", func(t *testing.T) {
		store := NewCatalogStore()
		store.Put("merchant-1", domain.CatalogItem{ID: "sku-2", Status: domain.ItemStatusActive})
		store.Put("merchant-1", domain.CatalogItem{ID: "sku-1", Status: domain.ItemStatusActive})
		store.Put("merchant-1", domain.CatalogItem{ID: "sku-3", Status: domain.ItemStatusArchived})

		items, err := store.ListActive(ctx, "merchant-1")

		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "sku-1", items[0].ID)
		assert.Equal(t, "sku-2", items[1].ID)
	})
}
