// Package http exposes the edge proxy over gin.
//
// Every path outside /_edge is handed to the pipeline by Proxy. Optimized
// documents are gzip-compressed for clients that accept it and flushed chunk
// by chunk; passthrough and fallback bodies are copied as received.
//
// Admin routes:
//
//	GET /_edge/health   liveness and running totals
//	GET /_edge/inspect  page context and suggestion for ?origin=&path=
//	GET /_edge/metrics  Prometheus exposition
package http
