// Package extractor collects the PageContext of an HTML document in one
// streaming pass.
package extractor

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/GriffinCanCode/edgeoptimizer/internal/domain/htmlstream"
	"github.com/GriffinCanCode/edgeoptimizer/internal/shared/types"
)

// Extract scans r to EOF and returns the collected context. Only the first
// <title> contributes to Title; text from every <h1> is joined into Heading
// with single spaces.
// Values are converted to UTF-8 using cs.
func Extract(ctx context.Context, r io.Reader, cs htmlstream.Charset) (types.PageContext, error) {
	var (
		title, heading strings.Builder
		titles         int
		description    string
		hasDescription bool
		images         []string
		domains        = types.NewDomainSet()
	)

	addDomain := func(el *htmlstream.Element, attr string) error {
		if v, ok := el.GetAttribute(attr); ok {
			if origin, ok := originOf(v); ok {
				domains.Add(origin)
			}
		}
		return nil
	}

	rw := htmlstream.New().
		On(htmlstream.Tag("title"), func(el *htmlstream.Element) error {
			titles++
			return nil
		}).
		OnText("title", func(text string) {
			if titles == 1 {
				title.WriteString(text)
			}
		}).
		On(htmlstream.Tag("h1"), func(el *htmlstream.Element) error {
			// Separate headings never run together.
			if heading.Len() > 0 {
				heading.WriteByte(' ')
			}
			return nil
		}).
		OnText("h1", func(text string) {
			heading.WriteString(text)
		}).
		On(htmlstream.Tag("meta").Where("name", htmlstream.Equals("description")), func(el *htmlstream.Element) error {
			if hasDescription {
				return nil
			}
			if v, ok := el.GetAttribute("content"); ok {
				description, hasDescription = v, true
			}
			return nil
		}).
		On(htmlstream.Tag("img").Has("src"), func(el *htmlstream.Element) error {
			if src, _ := el.GetAttribute("src"); strings.TrimSpace(src) != "" {
				images = append(images, cs.Decode(strings.TrimSpace(src)))
			}
			return nil
		}).
		On(htmlstream.Tag("link").Has("href"), func(el *htmlstream.Element) error {
			return addDomain(el, "href")
		}).
		On(htmlstream.Tag("script").Has("src"), func(el *htmlstream.Element) error {
			return addDomain(el, "src")
		})

	if err := rw.Transform(io.Discard, &ctxReader{ctx: ctx, r: r}); err != nil {
		return types.PageContext{}, err
	}

	return types.PageContext{
		Title:           collapse(cs.Decode(title.String())),
		Heading:         collapse(cs.Decode(heading.String())),
		Description:     collapse(cs.Decode(description)),
		ImageSources:    images,
		ExternalDomains: domains.Items(),
	}, nil
}

// originOf returns scheme://host for absolute http(s) URLs.
func originOf(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "//") {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", false
	}
	return scheme + "://" + strings.ToLower(u.Host), true
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ctxReader stops the pass once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
