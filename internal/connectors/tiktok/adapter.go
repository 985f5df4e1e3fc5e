package tiktok

import (
	"context"
	"fmt"
	"sync"

	"github.com/storefront-labs/channelsync/internal/connectors/request"
	"github.com/storefront-labs/channelsync/internal/core/domain"
	"github.com/storefront-labs/channelsync/internal/core/ports/driven"
	"github.com/storefront-labs/channelsync/internal/logger"
)

const (
	// chunkSize is the batch product endpoint's per-request limit.
	chunkSize = 20

	// parallelism bounds concurrent batch uploads.
	parallelism = 2
)

// Adapter publishes catalog items to an authorised TikTok Shop.
type Adapter struct {
	client *Client
	cred   *domain.PlatformCredential

	mu     sync.Mutex
	shopID string
	closed bool
}

var _ driven.PlatformAdapter = (*Adapter)(nil)

// NewAdapter creates a TikTok Shop adapter for the given credential.
func NewAdapter(cred *domain.PlatformCredential, tokens driven.TokenProvider, executor *request.Executor) *Adapter {
	return &Adapter{
		client: NewClient(tokens, executor),
		cred:   cred,
		shopID: cred.ShopID,
	}
}

// Platform identifies the target platform.
func (a *Adapter) Platform() domain.Platform {
	return domain.PlatformTikTok
}

// Limits reports the chunking and concurrency bounds for batch uploads.
func (a *Adapter) Limits() driven.AdapterLimits {
	return driven.AdapterLimits{ChunkSize: chunkSize, Parallelism: parallelism}
}

// EnsurePrerequisites resolves the shop that receives products from
// the seller's authorised shop list. A configured shop ID must appear
// in the list; with none configured, a sole authorised shop is used
// and several are refused rather than guessed between.
func (a *Adapter) EnsurePrerequisites(ctx context.Context) (*domain.PlatformContext, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, domain.ErrAdapterClosed
	}

	shops, err := a.listShops(ctx)
	if err != nil {
		if request.IsAuthExpired(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPrerequisiteFailed, err)
	}

	if a.shopID != "" {
		for _, shop := range shops {
			if shop.ID == a.shopID {
				return &domain.PlatformContext{
					Platform:      domain.PlatformTikTok,
					ContainerID:   shop.ID,
					ContainerName: shop.Name,
				}, nil
			}
		}
		logger.Warn("tiktok: configured shop %s not in authorised list", a.shopID)
		return nil, fmt.Errorf("%w: %v", domain.ErrPrerequisiteFailed, ErrNoShop)
	}

	switch len(shops) {
	case 0:
		return nil, fmt.Errorf("%w: %v", domain.ErrPrerequisiteFailed, ErrNoShop)
	case 1:
		a.shopID = shops[0].ID
		return &domain.PlatformContext{
			Platform:      domain.PlatformTikTok,
			ContainerID:   shops[0].ID,
			ContainerName: shops[0].Name,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %v", domain.ErrPrerequisiteFailed, ErrAmbiguousShop)
	}
}

// PushChunk uploads a batch of products and maps each per-item result
// to an outcome.
func (a *Adapter) PushChunk(ctx context.Context, pctx *domain.PlatformContext, items []domain.CatalogItem) ([]domain.SyncOutcome, error) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil, domain.ErrAdapterClosed
	}
	a.mu.Unlock()

	products := make([]productRequest, len(items))
	for i, item := range items {
		products[i] = formatProduct(item)
	}

	var reply struct {
		Results []struct {
			OuterProductID string `json:"outer_product_id"`
			ProductID      string `json:"product_id"`
			FailReason     string `json:"fail_reason"`
		} `json:"results"`
	}

	payload := map[string]any{
		"shop_id":  pctx.ContainerID,
		"products": products,
	}
	if err := a.client.post(ctx, "/product/202309/products/batch", payload, &reply); err != nil {
		return nil, err
	}

	results := make(map[string]struct {
		productID  string
		failReason string
	}, len(reply.Results))
	for _, result := range reply.Results {
		results[result.OuterProductID] = struct {
			productID  string
			failReason string
		}{result.ProductID, result.FailReason}
	}

	outcomes := make([]domain.SyncOutcome, 0, len(items))
	for _, item := range items {
		result, ok := results[item.ID]
		switch {
		case !ok:
			// The envelope omitted the item entirely; treat it as a
			// retryable failure rather than a silent success.
			outcomes = append(outcomes, domain.Failed(item.ID, domain.PlatformTikTok, "no result for item", true))
		case result.failReason != "":
			outcomes = append(outcomes, domain.Failed(item.ID, domain.PlatformTikTok, result.failReason, false))
		default:
			outcomes = append(outcomes, domain.Published(item.ID, domain.PlatformTikTok, result.productID))
		}
	}
	return outcomes, nil
}

// Close marks the adapter unusable.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}

type shop struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (a *Adapter) listShops(ctx context.Context) ([]shop, error) {
	var out struct {
		Shops []shop `json:"shops"`
	}
	if err := a.client.get(ctx, "/authorization/202309/shops", &out); err != nil {
		return nil, err
	}
	return out.Shops, nil
}
