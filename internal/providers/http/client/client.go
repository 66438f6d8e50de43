package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/edgeoptimizer/internal/infrastructure/resilience"
)

// DefaultUserAgent is sent when the caller supplies none.
const DefaultUserAgent = "EdgeOptimizer/1.0"

// ErrUnavailable is returned when the breaker rejects a call.
var ErrUnavailable = errors.New("external service unavailable: circuit breaker open")

// Options configures a Client.
type Options struct {
	Name string
	// Timeout bounds the whole exchange, body read included.
	Timeout time.Duration
	// HeaderTimeout, when set, replaces Timeout with limits on dialing, the
	// TLS handshake and the wait for response headers. Body reads are then
	// bounded only by the request context.
	HeaderTimeout  time.Duration
	UserAgent      string
	RequestsPerSec float64
	// Breaker is optional; nil disables breaker protection.
	Breaker *resilience.Breaker
}

// Client wraps resty with rate limiting and circuit breaker protection
type Client struct {
	Name    string
	Resty   *resty.Client
	Limiter *rate.Limiter
	Breaker *resilience.Breaker
	Mu      sync.RWMutex
}

// New creates an HTTP client with retries disabled
func New(opts Options) *Client {
	// Pooled transport from retryablehttp; its retry loop is not used.
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil

	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	restyClient := resty.New()
	restyClient.
		SetRetryCount(0).
		SetHeader("User-Agent", opts.UserAgent)

	transport := retryClient.HTTPClient.Transport
	if opts.HeaderTimeout > 0 {
		transport = headerBounded(transport, opts.HeaderTimeout)
	} else {
		if opts.Timeout <= 0 {
			opts.Timeout = 30 * time.Second
		}
		restyClient.SetTimeout(opts.Timeout)
	}
	restyClient.SetTransport(transport)

	c := &Client{
		Name:    opts.Name,
		Resty:   restyClient,
		Limiter: rate.NewLimiter(rate.Inf, 0),
		Breaker: opts.Breaker,
	}
	c.SetRateLimit(opts.RequestsPerSec)
	return c
}

// headerBounded limits everything up to the response headers to d.
func headerBounded(rt http.RoundTripper, d time.Duration) http.RoundTripper {
	t, ok := rt.(*http.Transport)
	if !ok {
		return rt
	}
	t = t.Clone()
	t.DialContext = (&net.Dialer{Timeout: d, KeepAlive: 30 * time.Second}).DialContext
	t.TLSHandshakeTimeout = d
	t.ResponseHeaderTimeout = d
	return t
}

// SetHeader adds default header
func (c *Client) SetHeader(key, value string) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.Resty.SetHeader(key, value)
}

// SetTimeout configures request timeout
func (c *Client) SetTimeout(duration time.Duration) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.Resty.SetTimeout(duration)
}

// SetRateLimit configures rate limiting (requests per second)
func (c *Client) SetRateLimit(rps float64) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	if rps <= 0 {
		c.Limiter = rate.NewLimiter(rate.Inf, 0)
		return
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	c.Limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// Request creates new request with rate limiting and circuit breaker protection
func (c *Client) Request(ctx context.Context) (*resty.Request, error) {
	if c.Breaker != nil && c.Breaker.State() == resilience.StateOpen {
		return nil, resilience.ErrCircuitOpen
	}

	c.Mu.RLock()
	limiter := c.Limiter
	c.Mu.RUnlock()

	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return c.Resty.R().SetContext(ctx), nil
}

// ExecuteWithBreaker executes an HTTP operation with circuit breaker protection.
// Without a breaker fn runs directly.
func (c *Client) ExecuteWithBreaker(fn func() (*resty.Response, error)) (*resty.Response, error) {
	resp, err := resilience.Do(c.Breaker, fn)
	if resilience.Rejected(err) {
		return nil, ErrUnavailable
	}
	if err != nil {
		return resp, err
	}
	return resp, nil
}

// BreakerState returns the current circuit breaker state
func (c *Client) BreakerState() resilience.State {
	if c.Breaker == nil {
		return resilience.StateClosed
	}
	return c.Breaker.State()
}

// BreakerCounts returns circuit breaker statistics
func (c *Client) BreakerCounts() resilience.Counts {
	if c.Breaker == nil {
		return resilience.Counts{}
	}
	return c.Breaker.Counts()
}
