package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/edgeoptimizer/internal/domain/extractor"
	"github.com/GriffinCanCode/edgeoptimizer/internal/domain/htmlstream"
	"github.com/GriffinCanCode/edgeoptimizer/internal/domain/rewriter"
	"github.com/GriffinCanCode/edgeoptimizer/internal/infrastructure/logging"
	"github.com/GriffinCanCode/edgeoptimizer/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/edgeoptimizer/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/edgeoptimizer/internal/providers/origin"
	"github.com/GriffinCanCode/edgeoptimizer/internal/shared/id"
	"github.com/GriffinCanCode/edgeoptimizer/internal/shared/types"
)

// Response headers set on optimized documents.
const (
	HeaderOptimizedBy = "X-Optimized-By"
	HeaderOptimized   = "X-Edge-Optimized"
	HeaderAdvisor     = "X-Advisor"
	OptimizerName     = "edge-optimizer"
)

// primeSize is how much rewritten output is produced inside the fault
// boundary before the response is handed to the transport.
const primeSize = 4096

// Fetcher retrieves origin responses.
type Fetcher interface {
	Fetch(ctx context.Context, req origin.Request) (*origin.Response, error)
}

// Advisor returns an optional suggestion and never fails.
type Advisor interface {
	Advise(ctx context.Context, page types.PageContext, site string) *types.Suggestion
}

// Options tunes the pipeline.
type Options struct {
	MaxBodyBytes int64
	BypassPaths  []string
	CacheControl string
}

// Result is the response to send to the client. Body must be closed.
type Result struct {
	Status  int
	Header  http.Header
	Body    io.ReadCloser
	Outcome string
	Advisor string
	Target  origin.Target
}

// Pipeline composes resolver, fetcher, extractor, advisor and rewriter.
type Pipeline struct {
	resolver *origin.Resolver
	fetcher  Fetcher
	advisor  Advisor
	engine   *rewriter.Engine
	opts     Options
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	tracer   *tracing.Tracer
}

// New creates a pipeline. metrics and tracer may be nil.
func New(resolver *origin.Resolver, fetcher Fetcher, advisor Advisor, engine *rewriter.Engine, opts Options,
	logger *logging.Logger, metrics *monitoring.Metrics, tracer *tracing.Tracer) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.CacheControl == "" {
		opts.CacheControl = "public, max-age=300, s-maxage=86400"
	}
	return &Pipeline{
		resolver: resolver,
		fetcher:  fetcher,
		advisor:  advisor,
		engine:   engine,
		opts:     opts,
		logger:   logger.Named("pipeline"),
		metrics:  metrics,
		tracer:   tracer,
	}
}

// Resolve exposes origin resolution for callers that only need the target.
func (p *Pipeline) Resolve(r *http.Request) origin.Target {
	return p.resolver.Resolve(r.URL, r.Header)
}

// Handle serves one request. It always returns a result.
func (p *Pipeline) Handle(ctx context.Context, r *http.Request) *Result {
	start := time.Now()
	target := p.Resolve(r)
	log := p.logger.ForRequest(id.RequestIDFrom(ctx).String(), target.URL)

	if p.bypass(r) {
		res := p.forward(ctx, r, target, log)
		p.finish(log, res, start)
		return res
	}

	res, err := p.optimize(ctx, r, target, log)
	if err != nil {
		log.Error("optimization failed, serving origin unmodified", zap.Error(err))
		res = p.fallback(ctx, r, target, log)
	}
	p.finish(log, res, start)
	return res
}

func (p *Pipeline) finish(log *logging.Logger, res *Result, start time.Time) {
	if p.metrics != nil {
		p.metrics.RecordOutcome(res.Outcome)
	}
	log.Info("request served",
		zap.String("outcome", res.Outcome),
		zap.String("advisor", res.Advisor),
		zap.Int("status", res.Status),
		zap.Duration("duration", time.Since(start)),
	)
}

// bypass reports whether r must be forwarded without optimization.
func (p *Pipeline) bypass(r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return true
	}
	for _, pattern := range p.opts.BypassPaths {
		if ok, err := doublestar.Match(pattern, r.URL.Path); err == nil && ok {
			return true
		}
	}
	return false
}

// forward proxies r verbatim, including method and body.
func (p *Pipeline) forward(ctx context.Context, r *http.Request, target origin.Target, log *logging.Logger) *Result {
	resp, err := p.fetcher.Fetch(ctx, origin.Request{Method: r.Method, URL: target.URL, Header: r.Header, Body: r.Body})
	if err != nil {
		log.Error("bypass fetch failed", zap.Error(err))
		return badGateway(target)
	}
	return &Result{Status: resp.StatusCode, Header: resp.Header, Body: resp.Body, Outcome: monitoring.OutcomeBypass, Target: target}
}

// fallback performs the single unmodified re-fetch.
func (p *Pipeline) fallback(ctx context.Context, r *http.Request, target origin.Target, log *logging.Logger) *Result {
	resp, err := p.fetcher.Fetch(ctx, origin.Request{Method: http.MethodGet, URL: target.URL, Header: r.Header})
	if err != nil {
		log.Error("fallback fetch failed", zap.Error(err))
		return badGateway(target)
	}
	return &Result{Status: resp.StatusCode, Header: resp.Header, Body: resp.Body, Outcome: monitoring.OutcomeFallback, Target: target}
}

func badGateway(target origin.Target) *Result {
	h := http.Header{}
	h.Set("Content-Type", "text/plain; charset=utf-8")
	return &Result{
		Status:  http.StatusBadGateway,
		Header:  h,
		Body:    io.NopCloser(strings.NewReader(http.StatusText(http.StatusBadGateway))),
		Outcome: monitoring.OutcomeFailed,
		Target:  target,
	}
}

// optimize is the fault boundary. Panics become errors.
func (p *Pipeline) optimize(ctx context.Context, r *http.Request, target origin.Target, log *logging.Logger) (res *Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			res, err = nil, fmt.Errorf("pipeline panic: %v", rec)
		}
	}()

	fctx, done := p.tracer.Stage(ctx, "fetch")
	timer := p.metrics.StageTimer("fetch")
	resp, err := p.fetcher.Fetch(fctx, origin.Request{Method: http.MethodGet, URL: target.URL, Header: r.Header})
	timer.Stop()
	done(err)
	if err != nil {
		return nil, err
	}

	if !resp.IsHTML() {
		return &Result{Status: resp.StatusCode, Header: resp.Header, Body: resp.Body, Outcome: monitoring.OutcomePassthrough, Target: target}, nil
	}
	doc, err := p.Prepare(ctx, resp, target.Site())
	if err != nil {
		return nil, err
	}

	advice := "miss"
	if doc.Suggestion != nil {
		advice = "hit"
	}

	_, done = p.tracer.Stage(ctx, "rewrite")
	timer = p.metrics.StageTimer("rewrite")
	stream, err := prime(p.engine.Reader(doc.Body.Reader(), rewriter.Input{
		Page:       doc.Page,
		Suggestion: doc.Suggestion,
		Base:       target.Base,
		Charset:    doc.Charset,
	}))
	timer.Stop()
	done(err)
	if err != nil {
		return nil, err
	}

	header := resp.Header.Clone()
	for _, h := range []string{"Content-Length", "Content-Encoding", "ETag", "Content-MD5"} {
		header.Del(h)
	}
	header.Set(HeaderOptimizedBy, OptimizerName)
	header.Set(HeaderOptimized, "true")
	header.Set(HeaderAdvisor, advice)
	header.Set("Cache-Control", p.opts.CacheControl)

	log.Debug("document optimized",
		zap.Int("bytes", doc.Body.Len()),
		zap.String("charset", doc.Charset.Name),
		zap.Int("images", len(doc.Page.ImageSources)),
		zap.Int("domains", len(doc.Page.ExternalDomains)),
	)

	return &Result{Status: resp.StatusCode, Header: header, Body: stream, Outcome: monitoring.OutcomeOptimized, Advisor: advice, Target: target}, nil
}

// Document is an HTML response after the extraction and advisor stages.
type Document struct {
	Body       *origin.Replayable
	Charset    htmlstream.Charset
	Page       types.PageContext
	Suggestion *types.Suggestion
}

// Prepare decodes and retains an HTML response, extracts its context and
// consults the advisor for site. resp.Body is consumed and closed.
func (p *Pipeline) Prepare(ctx context.Context, resp *origin.Response, site string) (*Document, error) {
	decoded, err := origin.Decode(resp.Body, resp.Header.Get("Content-Encoding"))
	if err != nil {
		resp.Body.Close()
		return nil, err
	}
	defer decoded.Close()

	body, err := origin.ReadReplayable(decoded, p.opts.MaxBodyBytes)
	if err != nil {
		return nil, err
	}
	if p.metrics != nil {
		p.metrics.ObserveBodySize(body.Len())
	}

	sniff := body.Bytes()
	if len(sniff) > 8192 {
		sniff = sniff[:8192]
	}
	cs := htmlstream.DetectCharset(sniff, resp.Header.Get("Content-Type"))

	ectx, done := p.tracer.Stage(ctx, "extract")
	timer := p.metrics.StageTimer("extract")
	page, err := extractor.Extract(ectx, body.Reader(), cs)
	timer.Stop()
	done(err)
	if err != nil {
		return nil, err
	}

	actx, done := p.tracer.Stage(ctx, "advise")
	timer = p.metrics.StageTimer("advise")
	suggestion := p.advisor.Advise(actx, page, site)
	timer.Stop()
	done(nil)

	return &Document{Body: body, Charset: cs, Page: page, Suggestion: suggestion}, nil
}

// ErrNotHTML is returned by Inspect for documents that would be passed through.
var ErrNotHTML = errors.New("origin response is not HTML")

// Inspection is what the analysis stages see for one URL.
type Inspection struct {
	Target      origin.Target     `json:"target"`
	Status      int               `json:"status"`
	ContentType string            `json:"contentType"`
	Charset     string            `json:"charset"`
	Bytes       int               `json:"bytes"`
	Page        types.PageContext `json:"page"`
	Suggestion  *types.Suggestion `json:"suggestion"`
}

// Inspect runs resolve, fetch, extract and advise for r without rewriting.
func (p *Pipeline) Inspect(ctx context.Context, r *http.Request) (*Inspection, error) {
	target := p.Resolve(r)
	resp, err := p.fetcher.Fetch(ctx, origin.Request{Method: http.MethodGet, URL: target.URL, Header: r.Header})
	if err != nil {
		return nil, err
	}
	out := &Inspection{Target: target, Status: resp.StatusCode, ContentType: resp.Header.Get("Content-Type")}
	if !resp.IsHTML() {
		resp.Body.Close()
		return out, ErrNotHTML
	}

	doc, err := p.Prepare(ctx, resp, target.Site())
	if err != nil {
		return out, err
	}
	out.Charset = doc.Charset.Name
	out.Bytes = doc.Body.Len()
	out.Page = doc.Page
	out.Suggestion = doc.Suggestion
	return out, nil
}

// prime reads the first chunk of rc so early rewrite failures stay inside
// the fault boundary.
func prime(rc io.ReadCloser) (io.ReadCloser, error) {
	buf := make([]byte, primeSize)
	n, err := io.ReadFull(rc, buf)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		rc.Close()
		return io.NopCloser(bytes.NewReader(buf[:n])), nil
	default:
		rc.Close()
		return nil, err
	}
	return &primed{Reader: io.MultiReader(bytes.NewReader(buf[:n]), rc), closer: rc}, nil
}

type primed struct {
	io.Reader
	closer io.Closer
}

func (p *primed) Close() error {
	return p.closer.Close()
}
