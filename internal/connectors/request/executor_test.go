package request

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-labs/channelsync/internal/core/domain"
)

func fastExecutor() *Executor {
	tracker := NewTracker(TrackerConfig{RequestsPerSecond: 10000, Burst: 100})
	backoff := BackoffPolicy{
		Base:   time.Millisecond,
		Jitter: func(time.Duration) time.Duration { return 0 },
	}
	return NewExecutor(tracker, backoff)
}

func respond(codes ...int) (Call, *int) {
	attempts := new(int)
	return Call{
		Send: func(_ context.Context) (*Response, error) {
			code := codes[len(codes)-1]
			if *attempts < len(codes) {
				code = codes[*attempts]
			}
			*attempts++
			return &Response{StatusCode: code, Header: http.Header{}}, nil
		},
	}, attempts
}

func TestExecutor_Do(t *testing.T) {
	t.Run("returns first success untouched", func(t *testing.T) {
		call, attempts := respond(200)

		resp, err := fastExecutor().Do(context.Background(), call)

		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, 1, *attempts)
	})

	t.Run("retries transient failures then succeeds", func(t *testing.T) {
		call, attempts := respond(503, 200)

		resp, err := fastExecutor().Do(context.Background(), call)

		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, 2, *attempts)
	})

	t.Run("gives up after exactly three attempts", func(t *testing.T) {
		call, attempts := respond(503, 503, 503)

		_, err := fastExecutor().Do(context.Background(), call)

		require.Error(t, err)
		assert.True(t, IsTransient(err))
		assert.Equal(t, 3, *attempts)
	})

	t.Run("treats rate limit rejections as transient", func(t *testing.T) {
		call, attempts := respond(429, 429, 200)

		resp, err := fastExecutor().Do(context.Background(), call)

		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, 3, *attempts)
	})

	t.Run("never retries auth expiry", func(t *testing.T) {
		call, attempts := respond(401, 200)

		_, err := fastExecutor().Do(context.Background(), call)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrAuthExpired)
		assert.Equal(t, 1, *attempts)
	})

	t.Run("never retries permanent rejections", func(t *testing.T) {
		call, attempts := respond(400, 200)

		_, err := fastExecutor().Do(context.Background(), call)

		require.Error(t, err)
		assert.True(t, IsPermanent(err))
		assert.Equal(t, 1, *attempts)
	})

	t.Run("retries network errors as transient", func(t *testing.T) {
		attempts := 0
		call := Call{
			Send: func(_ context.Context) (*Response, error) {
				attempts++
				return nil, errors.New("connection reset")
			},
		}

		_, err := fastExecutor().Do(context.Background(), call)

		require.Error(t, err)
		assert.True(t, IsTransient(err))
		assert.Equal(t, MaxAttempts, attempts)
	})

	t.Run("observes usage on every attempt including failures", func(t *testing.T) {
		executor := fastExecutor()
		attempts := 0
		call := Call{
			Send: func(_ context.Context) (*Response, error) {
				attempts++
				return &Response{StatusCode: 503, Header: http.Header{}}, nil
			},
			Usage: func(_ *Response) Usage {
				return Usage{Consumed: attempts * 10, Ceiling: 100}
			},
		}

		_, err := executor.Do(context.Background(), call)

		require.Error(t, err)
		consumed, ceiling := executor.Tracker().Snapshot()
		assert.Equal(t, 30, consumed)
		assert.Equal(t, 100, ceiling)
	})

	t.Run("honours custom classification", func(t *testing.T) {
		attempts := 0
		call := Call{
			Send: func(_ context.Context) (*Response, error) {
				attempts++
				return &Response{StatusCode: 200, Header: http.Header{}}, nil
			},
			Classify: func(_ *Response) error {
				// Business failure hidden inside an HTTP 200.
				return Permanent(errors.New("code 12: invalid payload"))
			},
		}

		_, err := fastExecutor().Do(context.Background(), call)

		require.Error(t, err)
		assert.True(t, IsPermanent(err))
		assert.Equal(t, 1, attempts)
	})

	t.Run("stops retrying on cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		attempts := 0
		call := Call{
			Send: func(_ context.Context) (*Response, error) {
				attempts++
				cancel()
				return &Response{StatusCode: 503, Header: http.Header{}}, nil
			},
		}

		_, err := fastExecutor().Do(ctx, call)

		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, attempts)
	})
}

func TestDefaultClassify(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{"success", 200, func(t *testing.T, err error) { assert.NoError(t, err) }},
		{"created", 201, func(t *testing.T, err error) { assert.NoError(t, err) }},
		{"rate limited", 429, func(t *testing.T, err error) { assert.True(t, IsTransient(err)) }},
		{"server error", 500, func(t *testing.T, err error) { assert.True(t, IsTransient(err)) }},
		{"unavailable", 503, func(t *testing.T, err error) { assert.True(t, IsTransient(err)) }},
		{"unauthorised", 401, func(t *testing.T, err error) { assert.True(t, IsAuthExpired(err)) }},
		{"bad request", 400, func(t *testing.T, err error) { assert.True(t, IsPermanent(err)) }},
		{"not found", 404, func(t *testing.T, err error) { assert.True(t, IsPermanent(err)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, DefaultClassify(&Response{StatusCode: tt.status}))
		})
	}
}
