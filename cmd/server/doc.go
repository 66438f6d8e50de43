// Package main is the entry point for the edge optimizer proxy.
//
// Every request is forwarded to an origin chosen by ?origin=, the
// X-Origin-Domain header, ORIGIN_DOMAIN or the built-in fallback. HTML
// documents are rewritten on the way back; everything else streams through
// untouched.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Optional rewrite rules file (RULES_FILE, -rules)
//
// Usage:
//
//	# Production mode
//	ORIGIN_DOMAIN=shop.example.com ADVISOR_API_KEY=... ./server -port 8000
//
//	# Development mode (colored logs, debug level)
//	./server -dev -origin localhost:3000
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
