package htmlstream

import (
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// minConfidence is the chardet confidence required to override the default.
const minConfidence = 50

// Charset is the character encoding of one document.
type Charset struct {
	Name string
	enc  encoding.Encoding
}

// UTF8 is the charset assumed when nothing better is known.
var UTF8 = Charset{Name: "utf-8", enc: unicode.UTF8}

// DetectCharset determines the document encoding from the Content-Type
// header, a BOM or <meta charset> in the leading bytes, and falls back to
// statistical detection when none of those is conclusive.
func DetectCharset(content []byte, contentType string) Charset {
	enc, name, certain := charset.DetermineEncoding(content, contentType)
	// windows-1252 without certainty is the WHATWG default for undeclared,
	// non-UTF-8 input.
	if !certain && name == "windows-1252" {
		if res, err := chardet.NewHtmlDetector().DetectBest(content); err == nil && res.Confidence >= minConfidence {
			if e, n := charset.Lookup(res.Charset); e != nil {
				enc, name = e, n
			}
		}
	}
	if enc == nil {
		return UTF8
	}
	return Charset{Name: name, enc: enc}
}

// IsUTF8 reports whether no transcoding is needed.
func (c Charset) IsUTF8() bool {
	return c.enc == nil || strings.EqualFold(c.Name, "utf-8")
}

// Decode converts document text to UTF-8.
func (c Charset) Decode(s string) string {
	if c.IsUTF8() {
		return s
	}
	out, err := c.enc.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return out
}

// Encode converts UTF-8 text to the document encoding, replacing
// characters the encoding cannot represent.
func (c Charset) Encode(s string) string {
	if c.IsUTF8() {
		return s
	}
	out, err := encoding.ReplaceUnsupported(c.enc.NewEncoder()).String(s)
	if err != nil {
		return s
	}
	return out
}
