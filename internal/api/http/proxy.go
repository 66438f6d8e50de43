package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/edgeoptimizer/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/edgeoptimizer/internal/shared/id"
)

const copyChunk = 32 << 10

// hopHeaders are connection-scoped and never copied from the origin.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Proxy serves every route not claimed by the admin API.
func (h *Handlers) Proxy(c *gin.Context) {
	res := h.pipeline.Handle(c.Request.Context(), c.Request)
	defer res.Body.Close()

	header := c.Writer.Header()
	for k, vs := range res.Header {
		header[k] = append([]string(nil), vs...)
	}
	for _, k := range hopHeaders {
		header.Del(k)
	}

	compress := res.Outcome == monitoring.OutcomeOptimized && acceptsGzip(c.GetHeader("Accept-Encoding"))
	if compress {
		header.Set("Content-Encoding", "gzip")
		header.Add("Vary", "Accept-Encoding")
		header.Del("Content-Length")
	}

	c.Status(res.Status)
	if c.Request.Method == http.MethodHead {
		c.Writer.WriteHeaderNow()
		return
	}

	var (
		dst   io.Writer = c.Writer
		flush           = c.Writer.Flush
		gz    *gzip.Writer
	)
	if compress {
		gz = gzip.NewWriter(c.Writer)
		dst = gz
		flush = func() {
			_ = gz.Flush()
			c.Writer.Flush()
		}
	}

	err := stream(dst, res.Body, flush)
	if gz != nil {
		if cerr := gz.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		// Headers are already on the wire; the client sees a truncated body.
		h.logger.Warn("response stream aborted",
			zap.String("request_id", id.RequestIDFrom(c.Request.Context()).String()),
			zap.String("outcome", res.Outcome),
			zap.Error(err),
		)
		_ = c.Error(err)
	}
}

// stream copies src to dst, flushing after every chunk so rewritten output
// reaches the client as it is produced.
func stream(dst io.Writer, src io.Reader, flush func()) error {
	buf := make([]byte, copyChunk)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return werr
			}
			flush()
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// acceptsGzip reports whether the Accept-Encoding value allows gzip.
func acceptsGzip(header string) bool {
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(name), "gzip") {
			continue
		}
		q, ok := strings.CutPrefix(strings.TrimSpace(params), "q=")
		if !ok {
			return true
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(q), 64)
		return err != nil || v > 0
	}
	return false
}
