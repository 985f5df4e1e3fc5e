package pinterest

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
	// chunkSize bounds each unit of work. Pins go up one at a time,
	// so the chunk is a progress and ledger boundary rather than a
	// wire format.
	chunkSize = 25

	// parallelism bounds concurrent chunk pushes. Pinterest's
	// per-user windows are generous compared to Graph's app-level
	// budget.
	parallelism = 3

	// defaultBoardName is used when creating a board for a merchant
	// that has none.
	defaultBoardName = "Products"
)

// Adapter publishes catalog items to a Pinterest board as pins.
type Adapter struct {
	client *Client
	cred   *domain.PlatformCredential

	mu      sync.Mutex
	boardID string
	closed  bool
}

var _ driven.PlatformAdapter = (*Adapter)(nil)

// NewAdapter creates a Pinterest adapter for the given credential.
func NewAdapter(cred *domain.PlatformCredential, tokens driven.TokenProvider, executor *request.Executor) *Adapter {
	return &Adapter{
		client:  NewClient(tokens, executor),
		cred:    cred,
		boardID: cred.BoardID,
	}
}

// Platform identifies the target platform.
func (a *Adapter) Platform() domain.Platform {
	return domain.PlatformPinterest
}

// Limits reports the chunking and concurrency bounds for pin pushes.
func (a *Adapter) Limits() driven.AdapterLimits {
	return driven.AdapterLimits{ChunkSize: chunkSize, Parallelism: parallelism}
}

// EnsurePrerequisites resolves the board that receives pins. A stored
// board ID is verified; otherwise the merchant's boards are searched
// by name, and a new board is created when none matches. Idempotent
// across runs.
func (a *Adapter) EnsurePrerequisites(ctx context.Context) (*domain.PlatformContext, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, domain.ErrAdapterClosed
	}

	if a.boardID != "" {
		name, err := a.verifyBoard(ctx, a.boardID)
		if err == nil {
			return &domain.PlatformContext{
				Platform:      domain.PlatformPinterest,
				ContainerID:   a.boardID,
				ContainerName: name,
			}, nil
		}
		if request.IsAuthExpired(err) {
			return nil, err
		}
		logger.Warn("pinterest: stored board %s not found, searching", a.boardID)
		a.boardID = ""
	}

	id, name, err := a.findBoard(ctx, defaultBoardName)
	if err != nil {
		if request.IsAuthExpired(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPrerequisiteFailed, err)
	}
	if id == "" {
		id, err = a.createBoard(ctx, defaultBoardName)
		if err != nil {
			if request.IsAuthExpired(err) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", domain.ErrPrerequisiteFailed, err)
		}
		name = defaultBoardName
		logger.Info("pinterest: created board %s", id)
	}

	a.boardID = id
	return &domain.PlatformContext{
		Platform:      domain.PlatformPinterest,
		ContainerID:   id,
		ContainerName: name,
	}, nil
}

// PushChunk creates one pin per item. Item-level rejections become
// failed outcomes and the chunk continues; auth expiry aborts the
// chunk, returning the outcomes resolved so far alongside the error
// so completed pins are not lost to the ledger.
func (a *Adapter) PushChunk(ctx context.Context, pctx *domain.PlatformContext, items []domain.CatalogItem) ([]domain.SyncOutcome, error) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil, domain.ErrAdapterClosed
	}
	a.mu.Unlock()

	outcomes := make([]domain.SyncOutcome, 0, len(items))
	for _, item := range items {
		pinID, err := a.createPin(ctx, pctx.ContainerID, item)
		if err != nil {
			if request.IsAuthExpired(err) || ctx.Err() != nil {
				return outcomes, err
			}
			outcomes = append(outcomes, domain.Failed(item.ID, domain.PlatformPinterest, err.Error(), request.IsTransient(err)))
			continue
		}
		outcomes = append(outcomes, domain.Published(item.ID, domain.PlatformPinterest, pinID))
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

func (a *Adapter) verifyBoard(ctx context.Context, id string) (string, error) {
	var out struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := a.client.get(ctx, "/boards/"+id, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", ErrBoardNotFound
	}
	return out.Name, nil
}

func (a *Adapter) findBoard(ctx context.Context, name string) (string, string, error) {
	var out struct {
		Items []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"items"`
	}
	if err := a.client.get(ctx, "/boards?page_size=100", &out); err != nil {
		return "", "", err
	}
	for _, board := range out.Items {
		if board.Name == name {
			return board.ID, board.Name, nil
		}
	}
	return "", "", nil
}

func (a *Adapter) createBoard(ctx context.Context, name string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	payload := map[string]any{
		"name":    name,
		"privacy": "PUBLIC",
	}
	if err := a.client.post(ctx, "/boards", payload, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("board creation returned no id")
	}
	return out.ID, nil
}

func (a *Adapter) createPin(ctx context.Context, boardID string, item domain.CatalogItem) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := a.client.post(ctx, "/pins", formatPin(boardID, item), &out); err != nil {
		return "", err
	}
	return out.ID, nil
}
