// Package origin resolves and fetches the customer origin behind the proxy.
//
// Resolution priority for the origin base URL:
//
//  1. the "origin" query parameter
//  2. the X-Origin-Domain request header
//  3. the configured default (ORIGIN_DOMAIN)
//  4. the configured fallback
//
// A bare hostname is promoted to https. The "origin" parameter is removed
// before the upstream URL is built from base + path + query.
//
// The Fetcher issues exactly one request per call and returns the raw
// response stream. Decoding and buffering for the HTML path live in
// decode.go and body.go.
package origin
