package client

import (
	"context"
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/edgeoptimizer/internal/infrastructure/resilience"
)

func newBreaker(failures uint32) *resilience.Breaker {
	return resilience.New("test", resilience.Settings{
		Timeout: time.Minute,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
	})
}

func TestClientCircuitBreakerIntegration(t *testing.T) {
	t.Run("request checks circuit breaker state", func(t *testing.T) {
		client := New(Options{Name: "advisor", Breaker: newBreaker(3)})
		ctx := context.Background()

		req, err := client.Request(ctx)
		require.NoError(t, err)
		assert.NotNil(t, req)

		for i := 0; i < 3; i++ {
			_, _ = client.Breaker.Execute(func() (interface{}, error) {
				return nil, errors.New("simulated failure")
			})
		}
		require.Equal(t, resilience.StateOpen, client.BreakerState())

		req, err = client.Request(ctx)
		assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
		assert.Nil(t, req)
	})

	t.Run("execute with breaker handles failures", func(t *testing.T) {
		client := New(Options{Breaker: newBreaker(10)})

		resp, err := client.ExecuteWithBreaker(func() (*resty.Response, error) {
			return nil, nil
		})
		require.NoError(t, err)
		assert.Nil(t, resp)

		testErr := errors.New("test error")
		_, err = client.ExecuteWithBreaker(func() (*resty.Response, error) {
			return nil, testErr
		})
		assert.Equal(t, testErr, err)

		counts := client.BreakerCounts()
		assert.Equal(t, uint32(1), counts.TotalSuccesses)
		assert.Equal(t, uint32(1), counts.TotalFailures)
	})

	t.Run("open breaker fails fast", func(t *testing.T) {
		client := New(Options{Breaker: newBreaker(1)})
		_, _ = client.ExecuteWithBreaker(func() (*resty.Response, error) {
			return nil, errors.New("failure")
		})

		called := false
		_, err := client.ExecuteWithBreaker(func() (*resty.Response, error) {
			called = true
			return nil, nil
		})
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.False(t, called)
	})

	t.Run("no breaker runs directly", func(t *testing.T) {
		client := New(Options{})
		assert.Equal(t, resilience.StateClosed, client.BreakerState())
		assert.Equal(t, resilience.Counts{}, client.BreakerCounts())

		_, err := client.ExecuteWithBreaker(func() (*resty.Response, error) {
			return nil, errors.New("direct")
		})
		assert.EqualError(t, err, "direct")
	})
}

func TestClientRateLimiting(t *testing.T) {
	t.Run("context cancellation prevents request", func(t *testing.T) {
		client := New(Options{RequestsPerSec: 1})

		// drain the single token
		_, err := client.Request(context.Background())
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		req, err := client.Request(ctx)
		assert.Error(t, err)
		assert.Nil(t, req)
	})

	t.Run("fractional rate keeps a burst of one", func(t *testing.T) {
		client := New(Options{RequestsPerSec: 0.5})
		assert.Equal(t, 1, client.Limiter.Burst())
	})
}

func TestClientSendsDefaults(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := New(Options{Timeout: 2 * time.Second})
	req, err := client.Request(context.Background())
	require.NoError(t, err)

	resp, err := req.Get(srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode())
	assert.Equal(t, DefaultUserAgent, gotUA)
}

// slowBody sends chunks of 1KiB every interval after the headers.
func slowBody(chunks int, interval time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		w.WriteHeader(http.StatusOK)
		for i := 0; i < chunks; i++ {
			_, _ = w.Write(bytes.Repeat([]byte{byte('a' + i)}, 1024))
			w.(http.Flusher).Flush()
			time.Sleep(interval)
		}
	}
}

func TestClientHeaderTimeout(t *testing.T) {
	t.Run("body may outlast the timeout", func(t *testing.T) {
		srv := httptest.NewServer(slowBody(5, 100*time.Millisecond))
		defer srv.Close()

		client := New(Options{Name: "origin", HeaderTimeout: 250 * time.Millisecond})
		req, err := client.Request(context.Background())
		require.NoError(t, err)

		resp, err := req.SetDoNotParseResponse(true).Get(srv.URL)
		require.NoError(t, err)
		defer resp.RawBody().Close()

		body, err := io.ReadAll(resp.RawBody())
		require.NoError(t, err)
		assert.Len(t, body, 5*1024)
	})

	t.Run("slow headers fail", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(500 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		client := New(Options{Name: "origin", HeaderTimeout: 100 * time.Millisecond})
		req, err := client.Request(context.Background())
		require.NoError(t, err)

		_, err = req.SetDoNotParseResponse(true).Get(srv.URL)
		assert.Error(t, err)
	})

	t.Run("whole exchange timeout still applies without it", func(t *testing.T) {
		srv := httptest.NewServer(slowBody(5, 100*time.Millisecond))
		defer srv.Close()

		client := New(Options{Name: "advisor", Timeout: 250 * time.Millisecond})
		req, err := client.Request(context.Background())
		require.NoError(t, err)

		resp, err := req.SetDoNotParseResponse(true).Get(srv.URL)
		require.NoError(t, err)
		defer resp.RawBody().Close()

		_, err = io.ReadAll(resp.RawBody())
		assert.Error(t, err)
	})
}
