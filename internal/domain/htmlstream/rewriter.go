package htmlstream

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	nethtml "golang.org/x/net/html"
)

// ElementHandler is invoked for each start tag a selector matches.
type ElementHandler func(el *Element) error

// TextHandler receives unescaped text found inside an open element.
type TextHandler func(text string)

type elementBinding struct {
	sel Selector
	fn  ElementHandler
}

type textBinding struct {
	tag string
	fn  TextHandler
}

// Rewriter is a registry of bindings. A Rewriter may be used for one pass at
// a time; handlers typically close over per-pass state.
type Rewriter struct {
	elements []elementBinding
	texts    []textBinding
}

// New creates an empty Rewriter.
func New() *Rewriter {
	return &Rewriter{}
}

// On registers fn for start tags matching sel.
func (r *Rewriter) On(sel Selector, fn ElementHandler) *Rewriter {
	r.elements = append(r.elements, elementBinding{sel: sel, fn: fn})
	return r
}

// OnText registers fn for text inside elements named tag.
func (r *Rewriter) OnText(tag string, fn TextHandler) *Rewriter {
	r.texts = append(r.texts, textBinding{tag: strings.ToLower(tag), fn: fn})
	return r
}

// pending holds appended markup waiting for an end tag.
type pending struct {
	tag     string
	nested  int
	content []string
}

type pass struct {
	r       *Rewriter
	w       *bufio.Writer
	stack   []*pending
	open    map[string]int
	watched map[string]bool
}

// Transform streams src to dst applying the registered handlers. Output is
// flushed before Transform returns.
func (r *Rewriter) Transform(dst io.Writer, src io.Reader) error {
	p := &pass{
		r:       r,
		w:       bufio.NewWriterSize(dst, 4096),
		open:    make(map[string]int),
		watched: make(map[string]bool, len(r.texts)),
	}
	for _, t := range r.texts {
		p.watched[t.tag] = true
	}

	if err := p.run(nethtml.NewTokenizer(src)); err != nil {
		return err
	}
	return p.w.Flush()
}

// Reader runs Transform in a goroutine and returns the output as a stream.
// Closing the reader stops the pass. A handler panic surfaces as a read error.
func (r *Rewriter) Reader(src io.Reader) io.ReadCloser {
	pr, pw := io.Pipe()
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				pw.CloseWithError(fmt.Errorf("rewrite panic: %v", rec))
			}
		}()
		pw.CloseWithError(r.Transform(pw, src))
	}()
	return pr
}

func (p *pass) run(z *nethtml.Tokenizer) error {
	for {
		tt := z.Next()
		if tt == nethtml.ErrorToken {
			if err := z.Err(); err != io.EOF {
				return fmt.Errorf("tokenize: %w", err)
			}
			// Flush content for elements left open at end of input.
			for len(p.stack) > 0 {
				if err := p.popFlush(); err != nil {
					return err
				}
			}
			return nil
		}

		// TagName, TagAttr and Text unescape in place, so keep a copy of the raw bytes.
		raw := append([]byte(nil), z.Raw()...)

		var err error
		switch tt {
		case nethtml.StartTagToken, nethtml.SelfClosingTagToken:
			err = p.startTag(z, raw, tt == nethtml.SelfClosingTagToken)
		case nethtml.EndTagToken:
			err = p.endTag(z, raw)
		case nethtml.TextToken:
			err = p.text(z, raw)
		default:
			_, err = p.w.Write(raw)
		}
		if err != nil {
			return err
		}
	}
}

func (p *pass) startTag(z *nethtml.Tokenizer, raw []byte, selfClosing bool) error {
	name, hasAttr := z.TagName()
	el := &Element{tag: string(name), selfClosing: selfClosing}
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		el.attrs = append(el.attrs, attribute{key: string(key), val: string(val)})
	}
	attachSources(el.attrs, raw)

	// <body> implicitly closes an unterminated <head>.
	if el.tag == "body" {
		if err := p.closeImplicit("head"); err != nil {
			return err
		}
	}

	for _, b := range p.r.elements {
		if !b.sel.matches(el) {
			continue
		}
		if err := b.fn(el); err != nil {
			return fmt.Errorf("%s handler: %w", el.tag, err)
		}
	}

	if _, err := p.w.Write(el.render(raw)); err != nil {
		return err
	}
	for _, c := range el.prepend {
		if _, err := p.w.WriteString(c); err != nil {
			return err
		}
	}

	if el.Void() {
		for _, c := range el.append {
			if _, err := p.w.WriteString(c); err != nil {
				return err
			}
		}
		return nil
	}

	if len(el.append) > 0 {
		p.stack = append(p.stack, &pending{tag: el.tag, content: el.append})
	} else if pe := p.innermost(el.tag); pe != nil {
		pe.nested++
	}
	if p.watched[el.tag] {
		p.open[el.tag]++
	}
	return nil
}

func (p *pass) endTag(z *nethtml.Tokenizer, raw []byte) error {
	name, _ := z.TagName()
	tag := string(name)

	if p.open[tag] > 0 {
		p.open[tag]--
	}

	for i := len(p.stack) - 1; i >= 0; i-- {
		pe := p.stack[i]
		if pe.tag != tag {
			continue
		}
		if pe.nested > 0 {
			pe.nested--
			break
		}
		// Elements opened inside pe and never closed end here too.
		for len(p.stack) > i {
			if err := p.popFlush(); err != nil {
				return err
			}
		}
		break
	}

	_, err := p.w.Write(raw)
	return err
}

func (p *pass) text(z *nethtml.Tokenizer, raw []byte) error {
	if _, err := p.w.Write(raw); err != nil {
		return err
	}
	if len(p.r.texts) == 0 {
		return nil
	}

	var text string
	decoded := false
	for _, t := range p.r.texts {
		if p.open[t.tag] == 0 {
			continue
		}
		if !decoded {
			text = string(z.Text())
			decoded = true
		}
		t.fn(text)
	}
	return nil
}

func (p *pass) innermost(tag string) *pending {
	for i := len(p.stack) - 1; i >= 0; i-- {
		if p.stack[i].tag == tag {
			return p.stack[i]
		}
	}
	return nil
}

func (p *pass) closeImplicit(tag string) error {
	for i := len(p.stack) - 1; i >= 0; i-- {
		if p.stack[i].tag != tag {
			continue
		}
		for len(p.stack) > i {
			if err := p.popFlush(); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

func (p *pass) popFlush() error {
	pe := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	for _, c := range pe.content {
		if _, err := p.w.WriteString(c); err != nil {
			return err
		}
	}
	return nil
}
