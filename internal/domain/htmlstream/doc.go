/*
Package htmlstream rewrites HTML as a stream of tokens without building a tree.

A Rewriter holds a small registry of selector bindings. Each start tag that
matches a selector is handed to its handlers as an *Element, which can read
and set attributes and queue literal markup to be emitted right after the
start tag (Prepend) or right before the matching end tag (Append). Every
token no handler touched is written back byte for byte.

	rw := htmlstream.New().
		On(htmlstream.Tag("img"), func(el *htmlstream.Element) error {
			if !el.HasAttribute("loading") {
				el.SetAttribute("loading", "lazy")
			}
			return nil
		}).
		OnText("title", func(text string) { title += text })

	err := rw.Transform(w, r)

Handlers run in registration order. Appended markup for an element whose end
tag never arrives is flushed when the parent closes, at <body> for <head>, or
at end of input.
*/
package htmlstream
