package origin

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "<html><head><title>Encoded</title></head><body>hello</body></html>"

func compress(t *testing.T, encoding string) []byte {
	t.Helper()
	var buf bytes.Buffer
	var w io.WriteCloser
	switch encoding {
	case "gzip":
		w = gzip.NewWriter(&buf)
	case "br":
		w = brotli.NewWriter(&buf)
	case "deflate":
		w = zlib.NewWriter(&buf)
	case "zstd":
		zw, err := zstd.NewWriter(&buf)
		require.NoError(t, err)
		w = zw
	default:
		t.Fatalf("unknown encoding %s", encoding)
	}
	_, err := w.Write([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	for _, enc := range []string{"gzip", "br", "deflate", "zstd"} {
		t.Run(enc, func(t *testing.T) {
			body := io.NopCloser(bytes.NewReader(compress(t, enc)))

			rc, err := Decode(body, strings.ToUpper(enc))
			require.NoError(t, err)
			defer rc.Close()

			out, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, sample, string(out))
		})
	}
}

func TestDecodeIdentity(t *testing.T) {
	body := io.NopCloser(strings.NewReader(sample))

	rc, err := Decode(body, "")
	require.NoError(t, err)
	assert.True(t, body == rc, "expected Decode to return the original body")

	rc, err = Decode(body, "identity")
	require.NoError(t, err)
	assert.True(t, body == rc, "expected Decode to return the original body")
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(io.NopCloser(strings.NewReader(sample)), "compress")
	assert.ErrorIs(t, err, ErrUnsupportedEncoding)

	_, err = Decode(io.NopCloser(strings.NewReader("not gzip")), "gzip")
	assert.Error(t, err)
}

func TestReadReplayable(t *testing.T) {
	body, err := ReadReplayable(strings.NewReader(sample), int64(len(sample)))
	require.NoError(t, err)
	assert.Equal(t, len(sample), body.Len())

	first, err := io.ReadAll(body.Reader())
	require.NoError(t, err)
	second, err := io.ReadAll(body.Reader())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, sample, string(body.Bytes()))
}

func TestReadReplayableLimit(t *testing.T) {
	_, err := ReadReplayable(strings.NewReader(sample), 10)
	assert.ErrorIs(t, err, ErrBodyTooLarge)

	body, err := ReadReplayable(strings.NewReader(sample), 0)
	require.NoError(t, err)
	assert.Equal(t, len(sample), body.Len())
}
