package rewriter

import (
	"net/url"
	"path"
	"strings"

	"github.com/GriffinCanCode/edgeoptimizer/internal/domain/htmlstream"
)

func (p *pass) injectBase(el *htmlstream.Element) {
	if p.in.Base == "" {
		return
	}
	el.Prepend(`<base href="` + attr(p.encode(p.in.Base)) + `">`)
}

// preconnectDomains prefers the suggestion's list, even when empty.
func (p *pass) preconnectDomains() []string {
	limit := p.e.rules.PreconnectLimit
	if !p.in.Suggestion.HasPreconnect() {
		return p.in.Page.DomainsRange(0, limit)
	}

	var out []string
	for _, d := range p.in.Suggestion.PreconnectDomains {
		if len(out) == limit {
			break
		}
		if d = normalizeOrigin(d); d != "" {
			out = append(out, d)
		}
	}
	return out
}

func (p *pass) injectPreconnect(el *htmlstream.Element) {
	for _, d := range p.preconnectDomains() {
		el.Append(`<link rel="preconnect" href="` + attr(p.encode(d)) + `" crossorigin>`)
	}
}

func (p *pass) injectDNSPrefetch(el *htmlstream.Element) {
	for _, d := range p.in.Page.DomainsRange(p.e.rules.PreconnectLimit, p.e.rules.DNSPrefetchLimit) {
		el.Append(`<link rel="dns-prefetch" href="` + attr(p.encode(d)) + `">`)
	}
}

func (p *pass) injectSchema(el *htmlstream.Element) {
	if !p.in.Suggestion.HasSchema() {
		return
	}
	payload := strings.TrimSpace(string(p.in.Suggestion.StructuredSchema))
	payload = strings.ReplaceAll(payload, "</", `<\/`)
	el.Append(`<script type="application/ld+json">` + p.encode(payload) + `</script>`)
}

func (p *pass) injectPreload(el *htmlstream.Element) {
	if !p.in.Suggestion.HasPreload() {
		return
	}
	for _, res := range p.in.Suggestion.PreloadResources {
		res = strings.TrimSpace(res)
		if res == "" {
			continue
		}
		as := preloadAs(res)
		tag := `<link rel="preload" href="` + attr(p.encode(res)) + `" as="` + as + `"`
		if as == "fetch" {
			tag += " crossorigin"
		}
		el.Append(tag + ">")
	}
}

func (p *pass) injectViewport(el *htmlstream.Element) {
	el.Append(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	el.Append(`<meta http-equiv="X-UA-Compatible" content="IE=edge">`)
}

// preloadAs maps a resource to its preload destination by file extension.
func preloadAs(resource string) string {
	p := resource
	if u, err := url.Parse(resource); err == nil {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".css":
		return "style"
	case ".js", ".mjs":
		return "script"
	default:
		return "fetch"
	}
}

// normalizeOrigin promotes a bare host to https and trims trailing slashes.
func normalizeOrigin(d string) string {
	d = strings.TrimSpace(d)
	if d == "" {
		return ""
	}
	lower := strings.ToLower(d)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		d = "https://" + strings.TrimPrefix(d, "//")
	}
	return strings.TrimRight(d, "/")
}
