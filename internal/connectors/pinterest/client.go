package pinterest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/storefront-labs/channelsync/internal/connectors/request"
	"github.com/storefront-labs/channelsync/internal/core/ports/driven"
)

const (
	// DefaultBaseURL is the Pinterest API v5 endpoint.
	DefaultBaseURL = "https://api.pinterest.com/v5"

	headerRateLimit     = "X-RateLimit-Limit"
	headerRateRemaining = "X-RateLimit-Remaining"
	headerRateReset     = "X-RateLimit-Reset"
)

// Client wraps Pinterest API communication for boards and pins.
type Client struct {
	baseURL  string
	http     *http.Client
	tokens   driven.TokenProvider
	executor *request.Executor
}

// NewClient creates a Pinterest client bound to an executor.
func NewClient(tokens driven.TokenProvider, executor *request.Executor) *Client {
	return &Client{
		baseURL:  DefaultBaseURL,
		http:     request.NewHTTPClient(),
		tokens:   tokens,
		executor: executor,
	}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

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

// classify maps a Pinterest reply to the executor's error taxonomy.
func (c *Client) classify(resp *request.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	if apiErr := parseAPIError(resp.StatusCode, resp.Body); apiErr != nil {
		switch {
		case apiErr.IsAuthExpired():
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

	if resp.StatusCode == http.StatusUnauthorized {
		c.tokens.Invalidate()
	}
	return request.DefaultClassify(resp)
}

// parseUsage reads the X-RateLimit family of headers. Consumption is
// derived from limit minus remaining; the reset header counts seconds
// until the window rolls over. Absent headers yield a zero Usage.
func parseUsage(resp *request.Response) request.Usage {
	var usage request.Usage

	limit, err := strconv.Atoi(resp.Header.Get(headerRateLimit))
	if err != nil || limit <= 0 {
		return usage
	}
	usage.Ceiling = limit

	if remaining, err := strconv.Atoi(resp.Header.Get(headerRateRemaining)); err == nil && remaining >= 0 {
		usage.Consumed = limit - remaining
	}

	if seconds, err := strconv.Atoi(resp.Header.Get(headerRateReset)); err == nil && seconds > 0 {
		usage.ResetAt = time.Now().Add(time.Duration(seconds) * time.Second)
	}

	return usage
}
