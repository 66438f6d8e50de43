package rewriter

import (
	"html"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/GriffinCanCode/edgeoptimizer/internal/domain/htmlstream"
	"github.com/GriffinCanCode/edgeoptimizer/internal/shared/types"
)

// Input is everything one rewrite pass depends on.
type Input struct {
	Page       types.PageContext
	Suggestion *types.Suggestion
	// Base is the resolved origin, e.g. "https://shop.example.com".
	Base    string
	Charset htmlstream.Charset
}

// Engine holds the rule tuning shared by all passes.
type Engine struct {
	rules  types.RewriteRules
	policy *bluemonday.Policy
}

// New creates an engine. Unset rule fields take their defaults.
func New(rules types.RewriteRules) *Engine {
	return &Engine{
		rules:  rules.WithDefaults(),
		policy: bluemonday.StrictPolicy(),
	}
}

// Rules returns the effective rule tuning.
func (e *Engine) Rules() types.RewriteRules {
	return e.rules
}

// Transform rewrites src into dst in one forward pass.
func (e *Engine) Transform(dst io.Writer, src io.Reader, in Input) error {
	return e.build(in).Transform(dst, src)
}

// Reader returns the rewritten stream of src. Output is produced as src is read.
func (e *Engine) Reader(src io.Reader, in Input) io.ReadCloser {
	return e.build(in).Reader(src)
}

func (e *Engine) build(in Input) *htmlstream.Rewriter {
	p := &pass{e: e, in: in}
	return htmlstream.New().
		On(htmlstream.Tag("head"), p.head).
		On(htmlstream.Tag("meta").Where("name", htmlstream.Equals("description")), p.description).
		On(htmlstream.Tag("img"), p.image).
		On(htmlstream.Tag("iframe"), p.iframe).
		On(htmlstream.Tag("script").Has("src"), p.script).
		On(htmlstream.Tag("link").Where("rel", htmlstream.HasToken("stylesheet")), p.stylesheet).
		On(htmlstream.Tag("body"), p.body)
}

// pass is the mutable state of one rewrite.
type pass struct {
	e      *Engine
	in     Input
	heads  int
	bodies int
	images int
}

func (p *pass) head(el *htmlstream.Element) error {
	p.heads++
	if p.heads > 1 {
		return nil
	}
	p.injectBase(el)
	p.injectPreconnect(el)
	p.injectDNSPrefetch(el)
	p.injectSchema(el)
	p.injectPreload(el)
	p.injectViewport(el)
	return nil
}

func (p *pass) body(el *htmlstream.Element) error {
	p.bodies++
	if p.bodies > 1 {
		return nil
	}
	note := strings.ReplaceAll(p.e.rules.Attribution, "--", "-")
	el.Prepend("<!-- " + note + " -->")
	return nil
}

func (p *pass) encode(s string) string {
	return p.in.Charset.Encode(s)
}

func attr(s string) string {
	return html.EscapeString(s)
}

func containsAny(s string, markers []string) bool {
	s = strings.ToLower(s)
	for _, m := range markers {
		if m != "" && strings.Contains(s, strings.ToLower(m)) {
			return true
		}
	}
	return false
}
