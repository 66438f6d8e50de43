package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/edgeoptimizer/internal/domain/pipeline"
	"github.com/GriffinCanCode/edgeoptimizer/internal/providers/origin"
)

// Health reports liveness and running totals.
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":  "ok",
		"advisor": h.advisorEnabled,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	}
	if h.metrics != nil {
		body["totals"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, body)
}

// Inspect runs the analysis stages for ?origin=&path= and returns what the
// rewrite pass would be given.
func (h *Handlers) Inspect(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u, err := url.Parse(path)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid path"})
		return
	}

	q := u.Query()
	if o := c.Query(origin.QueryParam); o != "" {
		q.Set(origin.QueryParam, o)
	}
	u.RawQuery = q.Encode()

	r := c.Request.Clone(c.Request.Context())
	r.URL = u
	r.Header.Del("Authorization")

	ins, err := h.pipeline.Inspect(c.Request.Context(), r)
	switch {
	case errors.Is(err, pipeline.ErrNotHTML):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "inspection": ins})
	case err != nil:
		h.logger.Warn("inspection failed", zap.String("path", path), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, ins)
	}
}
