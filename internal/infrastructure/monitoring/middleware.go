package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		c.Next()

		// Proxied paths are unbounded; collapse them to one label.
		route := c.FullPath()
		if route == "" {
			route = "proxy"
		}
		metrics.RecordHTTPRequest(method, route, strconv.Itoa(c.Writer.Status()), time.Since(start), int64(c.Writer.Size()))
	}
}

// Timer measures a pipeline stage
type Timer struct {
	start   time.Time
	metrics *Metrics
	stage   string
}

// StageTimer starts timing a pipeline stage. A nil receiver yields a no-op timer.
func (m *Metrics) StageTimer(stage string) *Timer {
	return &Timer{start: time.Now(), metrics: m, stage: stage}
}

// Stop records the stage duration and returns it
func (t *Timer) Stop() time.Duration {
	d := time.Since(t.start)
	if t.metrics != nil {
		t.metrics.StageDuration.WithLabelValues(t.stage).Observe(d.Seconds())
	}
	return d
}
