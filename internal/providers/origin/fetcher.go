package origin

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/edgeoptimizer/internal/providers/http/client"
)

const (
	defaultUserAgent = "Mozilla/5.0 (compatible; EdgeOptimizer/1.0)"
	defaultAccept    = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	sniffLen         = 3072
)

// forwarded lists inbound headers copied onto the origin request.
var forwarded = []string{"User-Agent", "Accept", "Accept-Encoding", "Accept-Language", "Content-Type"}

// Request describes one upstream call.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   io.Reader
}

// Response is the unmodified origin response. Body must be closed.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser

	sniffed string
}

// IsHTML reports whether the response carries an HTML document. Without a
// Content-Type the first bytes are sniffed; Body stays fully readable.
func (r *Response) IsHTML() bool {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return strings.Contains(strings.ToLower(ct), "text/html")
		}
		return mt == "text/html" || mt == "application/xhtml+xml"
	}
	if r.Body == nil || r.Header.Get("Content-Encoding") != "" {
		return false
	}
	if r.sniffed == "" {
		br := bufio.NewReaderSize(r.Body, sniffLen)
		head, _ := br.Peek(sniffLen)
		r.sniffed = mimetype.Detect(head).String()
		r.Body = &bufferedBody{Reader: br, Closer: r.Body}
	}
	return strings.HasPrefix(r.sniffed, "text/html")
}

type bufferedBody struct {
	io.Reader
	io.Closer
}

// Fetcher performs origin requests. It is the only I/O boundary towards the origin.
type Fetcher struct {
	client *client.Client
	logger *zap.Logger
}

// NewFetcher creates a fetcher over c. c should bound only connection setup
// and response headers, since bodies are streamed back to the caller.
func NewFetcher(c *client.Client, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{client: c, logger: logger}
}

// Fetch issues exactly one request. Non-2xx statuses are returned, not errors.
func (f *Fetcher) Fetch(ctx context.Context, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	r, err := f.client.Request(ctx)
	if err != nil {
		return nil, err
	}
	r.SetDoNotParseResponse(true)

	for _, name := range forwarded {
		if v := req.Header.Get(name); v != "" {
			r.SetHeader(name, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		r.SetHeader("User-Agent", defaultUserAgent)
	}
	if req.Header.Get("Accept") == "" {
		r.SetHeader("Accept", defaultAccept)
	}
	if req.Body != nil && method != http.MethodGet && method != http.MethodHead {
		r.SetBody(req.Body)
	}

	start := time.Now()
	resp, err := r.Execute(method, req.URL)
	if err != nil {
		return nil, fmt.Errorf("origin fetch %s: %w", req.URL, err)
	}

	raw := resp.RawResponse
	if raw == nil {
		return nil, fmt.Errorf("origin fetch %s: empty response", req.URL)
	}

	f.logger.Debug("origin fetched",
		zap.String("url", req.URL),
		zap.String("method", method),
		zap.Int("status", raw.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	body := raw.Body
	if body == nil {
		body = http.NoBody
	}
	return &Response{
		StatusCode: raw.StatusCode,
		Header:     raw.Header.Clone(),
		Body:       body,
	}, nil
}
