package origin

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// ErrUnsupportedEncoding is returned for Content-Encoding values that cannot be decoded.
var ErrUnsupportedEncoding = errors.New("unsupported content encoding")

// Decode wraps body with a decoder for contentEncoding. Identity and empty
// encodings return body unchanged. Closing the result closes body.
func Decode(body io.ReadCloser, contentEncoding string) (io.ReadCloser, error) {
	encoding := strings.ToLower(strings.TrimSpace(contentEncoding))
	switch encoding {
	case "", "identity":
		return body, nil
	case "gzip", "x-gzip":
		gz, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		return &decoded{Reader: gz, closers: []io.Closer{gz, body}}, nil
	case "br":
		return &decoded{Reader: brotli.NewReader(body), closers: []io.Closer{body}}, nil
	case "deflate":
		zr, err := zlib.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("deflate decode: %w", err)
		}
		return &decoded{Reader: zr, closers: []io.Closer{zr, body}}, nil
	case "zstd":
		zr, err := zstd.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("zstd decode: %w", err)
		}
		rc := zr.IOReadCloser()
		return &decoded{Reader: rc, closers: []io.Closer{rc, body}}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, encoding)
	}
}

type decoded struct {
	io.Reader
	closers []io.Closer
}

func (d *decoded) Close() error {
	var first error
	for _, c := range d.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
