package origin

import (
	"net/http"
	"net/url"
	"strings"
)

const (
	// QueryParam selects the origin per request.
	QueryParam = "origin"
	// HeaderOverride selects the origin per request when no query parameter is given.
	HeaderOverride = "X-Origin-Domain"
)

// Target is a resolved upstream location.
type Target struct {
	// Base is the normalized origin, e.g. "https://shop.example.com".
	Base string `json:"base"`
	// URL is Base + path + query with the origin parameter removed.
	URL string `json:"url"`
}

// Site returns the host portion of Base, used as the site identity.
func (t Target) Site() string {
	if u, err := url.Parse(t.Base); err == nil && u.Host != "" {
		return u.Host
	}
	return t.Base
}

// Resolver picks the origin for inbound requests.
type Resolver struct {
	Default  string
	Fallback string
}

// NewResolver creates a resolver. An empty fallback resolves to https://example.com.
func NewResolver(defaultDomain, fallback string) *Resolver {
	if strings.TrimSpace(fallback) == "" {
		fallback = "https://example.com"
	}
	return &Resolver{Default: defaultDomain, Fallback: fallback}
}

// Resolve never fails; validation of the result is left to the fetcher.
func (r *Resolver) Resolve(u *url.URL, header http.Header) Target {
	raw := ""
	if v := u.Query().Get(QueryParam); strings.TrimSpace(v) != "" {
		raw = v
	} else if v := header.Get(HeaderOverride); strings.TrimSpace(v) != "" {
		raw = v
	} else if strings.TrimSpace(r.Default) != "" {
		raw = r.Default
	} else {
		raw = r.Fallback
	}

	base := NormalizeBase(raw)

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	target := base + path
	if q := stripParam(u.RawQuery, QueryParam); q != "" {
		target += "?" + q
	}

	return Target{Base: base, URL: target}
}

// NormalizeBase promotes a bare host to https and trims trailing slashes.
func NormalizeBase(raw string) string {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		s = "https://" + strings.TrimPrefix(s, "//")
	}
	return strings.TrimRight(s, "/")
}

// stripParam removes every occurrence of name from a raw query, keeping the
// order and encoding of the remaining pairs.
func stripParam(rawQuery, name string) string {
	if rawQuery == "" {
		return ""
	}
	parts := strings.Split(rawQuery, "&")
	kept := parts[:0]
	for _, p := range parts {
		if p == "" {
			continue
		}
		key := p
		if i := strings.IndexByte(p, '='); i >= 0 {
			key = p[:i]
		}
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		if key == name {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, "&")
}
