package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GriffinCanCode/edgeoptimizer/internal/api/middleware"
)

// AdminPrefix is the only path space the proxy does not forward.
const AdminPrefix = "/_edge"

// Register mounts the admin API and makes the proxy the catch-all handler.
// Health stays open for probes; inspect and metrics require the admin token.
func (h *Handlers) Register(router *gin.Engine, gatherer prometheus.Gatherer, adminTokenHash string) {
	admin := router.Group(AdminPrefix, middleware.CORS(middleware.DefaultCORSConfig()))
	// Preflights must match a route for the group middleware to run.
	admin.OPTIONS("/*any", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	admin.GET("/health", h.Health)

	protected := admin.Group("", middleware.AdminAuth(adminTokenHash))
	protected.GET("/inspect", h.Inspect)
	if gatherer != nil {
		protected.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	router.NoRoute(h.Proxy)
}
