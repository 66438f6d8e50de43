package htmlstream

import (
	"bytes"
	"html"
	"strings"
)

// voidElements never have an end tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// attribute is one parsed attribute. src holds its source text while the
// value is untouched by handlers.
type attribute struct {
	key string
	val string
	src []byte
}

// Element is a start tag handed to handlers. It is only valid during the
// handler call.
type Element struct {
	tag         string
	attrs       []attribute
	selfClosing bool
	modified    bool
	prepend     []string
	append      []string
}

// Tag returns the lower-cased element name.
func (e *Element) Tag() string {
	return e.tag
}

// GetAttribute returns the unescaped value of name.
func (e *Element) GetAttribute(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, a := range e.attrs {
		if a.key == name {
			return a.val, true
		}
	}
	return "", false
}

// HasAttribute reports whether name is present, with or without a value.
func (e *Element) HasAttribute(name string) bool {
	_, ok := e.GetAttribute(name)
	return ok
}

// SetAttribute replaces the value of name or adds it. The start tag is
// re-serialized on output; attributes that were not set keep their source
// bytes, so they survive in any document encoding.
func (e *Element) SetAttribute(name, value string) {
	name = strings.ToLower(name)
	e.modified = true
	for i := range e.attrs {
		if e.attrs[i].key == name {
			e.attrs[i].val = value
			e.attrs[i].src = nil
			return
		}
	}
	e.attrs = append(e.attrs, attribute{key: name, val: value})
}

// Prepend queues raw markup right after the start tag, in call order.
func (e *Element) Prepend(content string) {
	e.prepend = append(e.prepend, content)
}

// Append queues raw markup right before the end tag, in call order.
func (e *Element) Append(content string) {
	e.append = append(e.append, content)
}

// Void reports whether the element has no content or end tag.
func (e *Element) Void() bool {
	return e.selfClosing || voidElements[e.tag]
}

func (e *Element) render(raw []byte) []byte {
	if !e.modified {
		return raw
	}
	var b bytes.Buffer
	b.WriteByte('<')
	b.WriteString(e.tag)
	for _, a := range e.attrs {
		b.WriteByte(' ')
		if a.src != nil {
			b.Write(a.src)
			continue
		}
		b.WriteString(a.key)
		if a.val != "" {
			b.WriteString(`="`)
			b.WriteString(html.EscapeString(a.val))
			b.WriteByte('"')
		}
	}
	if e.selfClosing {
		b.WriteString(" /")
	}
	b.WriteByte('>')
	return b.Bytes()
}

type attrSource struct {
	key  []byte
	text []byte
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f'
}

// scanAttributes splits a raw start tag into attributes using the same
// boundaries as the x/net/html tokenizer and returns each attribute's
// source text, from the key through the end of the value.
func scanAttributes(raw []byte) []attrSource {
	n := len(raw)
	i := 2
	for i < n && !isSpace(raw[i]) && raw[i] != '/' && raw[i] != '>' {
		i++
	}
	skip := func() {
		for i < n && isSpace(raw[i]) {
			i++
		}
	}
	skip()

	var out []attrSource
	for i < n && raw[i] != '>' {
		start, end := i, -1
		for i < n && end < 0 {
			c := raw[i]
			i++
			switch c {
			case '=':
				// A leading '=' belongs to the name.
				if start+1 == i {
					continue
				}
				i--
				end = i
			case ' ', '\n', '\r', '\t', '\f', '/', '>':
				i--
				end = i
			}
		}
		if end < 0 {
			end = i
		}
		stop := end

		skip()
		if i < n {
			c := raw[i]
			i++
			switch c {
			case '/':
			case '=':
				skip()
				if i < n {
					q := raw[i]
					i++
					switch q {
					case '>':
						i--
					case '\'', '"':
						for i < n && raw[i] != q {
							i++
						}
						if i < n {
							i++
						}
					default:
						for i < n && !isSpace(raw[i]) && raw[i] != '>' {
							i++
						}
					}
					stop = i
				}
			default:
				i--
			}
		}

		if end > start {
			out = append(out, attrSource{key: raw[start:end], text: raw[start:stop]})
		}
		skip()
	}
	return out
}

// attachSources records source text on attrs when the scan agrees with the
// tokenizer. On any disagreement the tag is fully re-serialized instead.
func attachSources(attrs []attribute, raw []byte) {
	src := scanAttributes(raw)
	if len(src) != len(attrs) {
		return
	}
	for i, s := range src {
		if !bytes.EqualFold(s.key, []byte(attrs[i].key)) {
			return
		}
	}
	for i, s := range src {
		attrs[i].src = s.text
	}
}
