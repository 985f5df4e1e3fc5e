package tiktok

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

// DefaultBaseURL is the Shop API endpoint.
const DefaultBaseURL = "https://open-api.tiktokglobalshop.com"

// Rate-limit headers set by the Shop API gateway. Not every endpoint
// returns them; the tracker falls back to pacing when they are absent.
const (
	headerRateLimit     = "X-RateLimit-Limit"
	headerRateRemaining = "X-RateLimit-Remaining"
	headerRateReset     = "X-RateLimit-Reset"
)

// envelope is the outer shape of every Shop API reply.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client wraps Shop API communication for shops and products.
type Client struct {
	baseURL  string
	http     *http.Client
	tokens   driven.TokenProvider
	executor *request.Executor
}

// NewClient creates a Shop API client bound to an executor.
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

// do runs one Shop API call and decodes the envelope's data field
// into out. The business code decides success: the HTTP status is
// often 200 even for failures.
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
		var env envelope
		if err := json.Unmarshal(resp.Body, &env); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, out); err != nil {
				return fmt.Errorf("decode response data: %w", err)
			}
		}
	}
	return nil
}

// parseUsage reads the gateway's X-RateLimit headers. Consumption is
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

// classify maps a Shop API reply to the executor's error taxonomy by
// the envelope's business code.
func (c *Client) classify(resp *request.Response) error {
	var env envelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		// No envelope; fall back to HTTP semantics.
		return request.DefaultClassify(resp)
	}

	if env.Code == codeSuccess && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode, Code: env.Code, Message: env.Message}
	switch {
	case apiErr.IsAuthExpired():
		c.tokens.Invalidate()
		return request.AuthExpired(apiErr)
	case apiErr.IsTransient():
		return request.Transient(apiErr)
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return request.Transient(apiErr)
	default:
		return request.Permanent(apiErr)
	}
}
