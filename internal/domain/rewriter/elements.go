package rewriter

import (
	"html"
	"strings"

	"github.com/GriffinCanCode/edgeoptimizer/internal/domain/htmlstream"
)

func (p *pass) description(el *htmlstream.Element) error {
	if !p.in.Suggestion.HasDescription() {
		return nil
	}
	// StrictPolicy strips markup and escapes; SetAttribute escapes again.
	text := html.UnescapeString(p.e.policy.Sanitize(p.in.Suggestion.Description()))
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil
	}
	el.SetAttribute("content", p.encode(text))
	return nil
}

func (p *pass) image(el *htmlstream.Element) error {
	p.images++
	if p.images > p.e.rules.AboveFoldImages {
		if !el.HasAttribute("loading") {
			el.SetAttribute("loading", "lazy")
		}
		if !el.HasAttribute("decoding") {
			el.SetAttribute("decoding", "async")
		}
		return nil
	}
	if !el.HasAttribute("width") && !el.HasAttribute("height") && !el.HasAttribute("fetchpriority") {
		el.SetAttribute("fetchpriority", "high")
	}
	return nil
}

func (p *pass) iframe(el *htmlstream.Element) error {
	if !el.HasAttribute("loading") {
		el.SetAttribute("loading", "lazy")
	}
	return nil
}

func (p *pass) script(el *htmlstream.Element) error {
	src, _ := el.GetAttribute("src")
	if !containsAny(src, p.e.rules.TrackingMarkers) {
		return nil
	}
	if el.HasAttribute("async") || el.HasAttribute("defer") {
		return nil
	}
	el.SetAttribute("async", "")
	return nil
}

func (p *pass) stylesheet(el *htmlstream.Element) error {
	href, _ := el.GetAttribute("href")
	if !containsAny(href, p.e.rules.DeferredStyleMarkers) || el.HasAttribute("onload") {
		return nil
	}
	media, _ := el.GetAttribute("media")
	media = strings.NewReplacer(`'`, "", `"`, "", `\`, "").Replace(strings.TrimSpace(media))
	if media == "" || strings.EqualFold(media, "print") {
		media = "all"
	}
	el.SetAttribute("media", "print")
	el.SetAttribute("onload", "this.media='"+media+"'")
	return nil
}
