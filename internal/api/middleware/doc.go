// Package middleware provides the gin middleware of the edge proxy.
//
// Applied to every request:
//   - RequestID: correlation id on the context and the X-Request-ID header
//   - RateLimit: per-IP token bucket with idle client eviction
//
// Applied to the /_edge admin group only, so proxied documents are untouched:
//   - CORS: cross-origin access for dashboards
//   - AdminAuth: bcrypt-checked bearer token
//
// Example Usage:
//
//	router.Use(middleware.RequestID())
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
//	admin := router.Group("/_edge", middleware.CORS(middleware.DefaultCORSConfig()), middleware.AdminAuth(hash))
package middleware
