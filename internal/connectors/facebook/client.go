package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/storefront-labs/channelsync/internal/connectors/request"
	"github.com/storefront-labs/channelsync/internal/core/ports/driven"
)

const (
	// DefaultBaseURL is the Graph API endpoint.
	DefaultBaseURL = "https://graph.facebook.com/v19.0"

	// headerAppUsage carries app-level usage percentages.
	headerAppUsage = "X-App-Usage"

	// headerBusinessUsage carries per-business usage and recovery hints.
	headerBusinessUsage = "X-Business-Use-Case-Usage"
)

// Client wraps Graph API communication for the catalog endpoints.
// All calls go through the shared executor; the client owns only
// request shaping, usage extraction and error classification.
type Client struct {
	baseURL  string
	http     *http.Client
	tokens   driven.TokenProvider
	executor *request.Executor
}

// NewClient creates a Graph API client bound to an executor.
func NewClient(tokens driven.TokenProvider, executor *request.Executor) *Client {
	return &Client{
		baseURL:  DefaultBaseURL,
		http:     request.NewHTTPClient(),
		tokens:   tokens,
		executor: executor,
	}
}

// get issues a GET and decodes the JSON reply into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// post issues a POST with a JSON payload and decodes the reply into out.
func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	return c.do(ctx, http.MethodPost, path, payload, out)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	resp, err := c.executor.Do(ctx, request.Call{
		Send: func(ctx context.Context) (*request.Response, error) {
			token, err := c.tokens.GetToken(ctx)
			if err != nil {
				return nil, err
			}
			req, err := request.NewJSONRequest(ctx, method, c.baseURL+path, token, payload)
			if err != nil {
				return nil, err
			}
			return request.SendHTTP(c.http, req)
		},
		Classify: c.classify,
		Usage:    parseUsage,
	})
	if err != nil {
		return err
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// classify maps a Graph reply to the executor's error taxonomy.
func (c *Client) classify(resp *request.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	if apiErr := parseAPIError(resp.StatusCode, resp.Body); apiErr != nil {
		switch {
		case apiErr.IsAuthExpired():
			// The token is dead; force the provider to stop handing
			// it out before surfacing the condition.
			c.tokens.Invalidate()
			return request.AuthExpired(apiErr)
		case apiErr.IsRateLimited():
			return request.Transient(apiErr)
		case resp.StatusCode >= 500:
			return request.Transient(apiErr)
		default:
			return request.Permanent(apiErr)
		}
	}

	return request.DefaultClassify(resp)
}

// parseUsage extracts throttling signals from Graph usage headers.
// X-App-Usage reports percentages, so the ceiling is a fixed 100.
// Malformed or absent headers yield a zero Usage, which leaves the
// tracker's last known good state untouched.
func parseUsage(resp *request.Response) request.Usage {
	var usage request.Usage

	if raw := resp.Header.Get(headerAppUsage); raw != "" {
		var app struct {
			CallCount    int `json:"call_count"`
			TotalCPUTime int `json:"total_cputime"`
			TotalTime    int `json:"total_time"`
		}
		if err := json.Unmarshal([]byte(raw), &app); err == nil {
			// Percent used is the worst of the three dimensions.
			consumed := app.CallCount
			if app.TotalCPUTime > consumed {
				consumed = app.TotalCPUTime
			}
			if app.TotalTime > consumed {
				consumed = app.TotalTime
			}
			usage.Consumed = consumed
			usage.Ceiling = 100
		}
	}

	if raw := resp.Header.Get(headerBusinessUsage); raw != "" {
		var business map[string][]struct {
			EstimatedTimeToRegainAccess int `json:"estimated_time_to_regain_access"`
		}
		if err := json.Unmarshal([]byte(raw), &business); err == nil {
			for _, entries := range business {
				for _, entry := range entries {
					if entry.EstimatedTimeToRegainAccess > 0 {
						resetAt := time.Now().Add(time.Duration(entry.EstimatedTimeToRegainAccess) * time.Minute)
						if usage.ResetAt.IsZero() || resetAt.After(usage.ResetAt) {
							usage.ResetAt = resetAt
						}
					}
				}
			}
		}
	}

	return usage
}
