package facebook

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
	// chunkSize is the Graph items_batch limit per request.
	chunkSize = 50

	// parallelism bounds concurrent batch requests. Graph throttles
	// aggressively at the app level, so this stays conservative.
	parallelism = 2

	// defaultCatalogName is used when creating a catalog for a
	// merchant that has none.
	defaultCatalogName = "Product Catalog"
)

// Adapter publishes catalog items to a Facebook product catalog.
type Adapter struct {
	client *Client
	cred   *domain.PlatformCredential

	mu        sync.Mutex
	catalogID string
	closed    bool
}

var _ driven.PlatformAdapter = (*Adapter)(nil)

// NewAdapter creates a Facebook adapter for the given credential.
func NewAdapter(cred *domain.PlatformCredential, tokens driven.TokenProvider, executor *request.Executor) *Adapter {
	return &Adapter{
		client:    NewClient(tokens, executor),
		cred:      cred,
		catalogID: cred.CatalogID,
	}
}

// Platform identifies the target platform.
func (a *Adapter) Platform() domain.Platform {
	return domain.PlatformFacebook
}

// Limits reports the chunking and concurrency bounds for Graph batches.
func (a *Adapter) Limits() driven.AdapterLimits {
	return driven.AdapterLimits{ChunkSize: chunkSize, Parallelism: parallelism}
}

// EnsurePrerequisites resolves the product catalog that receives
// pushed items. A stored catalog ID is verified; otherwise the
// merchant's business catalogs are searched by name, and as a last
// resort a new catalog is created. The call is idempotent: repeated
// runs converge on the same catalog.
func (a *Adapter) EnsurePrerequisites(ctx context.Context) (*domain.PlatformContext, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, domain.ErrAdapterClosed
	}

	if a.catalogID != "" {
		name, err := a.verifyCatalog(ctx, a.catalogID)
		if err == nil {
			return &domain.PlatformContext{
				Platform:      domain.PlatformFacebook,
				ContainerID:   a.catalogID,
				ContainerName: name,
			}, nil
		}
		if request.IsAuthExpired(err) {
			return nil, err
		}
		// Stored ID no longer resolves; fall through to discovery.
		logger.Warn("facebook: stored catalog %s not found, searching", a.catalogID)
		a.catalogID = ""
	}

	id, name, err := a.findCatalog(ctx, defaultCatalogName)
	if err != nil {
		if request.IsAuthExpired(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPrerequisiteFailed, err)
	}
	if id == "" {
		id, err = a.createCatalog(ctx, defaultCatalogName)
		if err != nil {
			if request.IsAuthExpired(err) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", domain.ErrPrerequisiteFailed, err)
		}
		name = defaultCatalogName
		logger.Info("facebook: created catalog %s", id)
	}

	a.catalogID = id
	return &domain.PlatformContext{
		Platform:      domain.PlatformFacebook,
		ContainerID:   id,
		ContainerName: name,
	}, nil
}

// PushChunk posts a batch of items to the catalog and maps each
// validation result to an outcome. Item-level rejections come back as
// failed outcomes; the error return is reserved for chunk-level
// conditions such as auth expiry.
func (a *Adapter) PushChunk(ctx context.Context, pctx *domain.PlatformContext, items []domain.CatalogItem) ([]domain.SyncOutcome, error) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil, domain.ErrAdapterClosed
	}
	a.mu.Unlock()

	batch := make([]batchItem, len(items))
	for i, item := range items {
		batch[i] = formatItem(item)
	}

	var reply struct {
		Handles          []string `json:"handles"`
		ValidationStatus []struct {
			RetailerID string `json:"retailer_id"`
			Errors     []struct {
				Message string `json:"message"`
			} `json:"errors"`
			Warnings []struct {
				Message string `json:"message"`
			} `json:"warnings"`
		} `json:"validation_status"`
	}

	payload := map[string]any{
		"item_type": "PRODUCT_ITEM",
		"requests":  batch,
	}
	if err := a.client.post(ctx, "/"+pctx.ContainerID+"/items_batch", payload, &reply); err != nil {
		return nil, err
	}

	rejected := make(map[string]string, len(reply.ValidationStatus))
	for _, status := range reply.ValidationStatus {
		if len(status.Errors) > 0 {
			rejected[status.RetailerID] = status.Errors[0].Message
		}
	}

	outcomes := make([]domain.SyncOutcome, 0, len(items))
	for _, item := range items {
		if reason, ok := rejected[item.ID]; ok {
			outcomes = append(outcomes, domain.Failed(item.ID, domain.PlatformFacebook, reason, false))
			continue
		}
		// Graph keys items by retailer ID, so the external ID is the
		// item's own ID.
		outcomes = append(outcomes, domain.Published(item.ID, domain.PlatformFacebook, item.ID))
	}
	return outcomes, nil
}

// Close marks the adapter unusable. The underlying HTTP client is
// shared and stays open.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}

func (a *Adapter) verifyCatalog(ctx context.Context, id string) (string, error) {
	var out struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := a.client.get(ctx, "/"+id+"?fields=id,name", &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", ErrCatalogNotFound
	}
	return out.Name, nil
}

func (a *Adapter) findCatalog(ctx context.Context, name string) (string, string, error) {
	var out struct {
		Data []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := a.client.get(ctx, "/me/owned_product_catalogs?fields=id,name", &out); err != nil {
		return "", "", err
	}
	for _, catalog := range out.Data {
		if catalog.Name == name {
			return catalog.ID, catalog.Name, nil
		}
	}
	if len(out.Data) > 0 {
		// Any existing catalog beats creating another one.
		return out.Data[0].ID, out.Data[0].Name, nil
	}
	return "", "", nil
}

func (a *Adapter) createCatalog(ctx context.Context, name string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	payload := map[string]any{"name": name}
	if err := a.client.post(ctx, "/me/owned_product_catalogs", payload, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("catalog creation returned no id")
	}
	return out.ID, nil
}
