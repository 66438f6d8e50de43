// Package client provides the outbound HTTP client shared by the origin
// fetcher and the advisor.
//
// Built on go-resty/resty over the pooled transport from
// hashicorp/go-retryablehttp:
//   - Connection pooling and keep-alive
//   - Context-based cancellation and per-client timeouts, either for the
//     whole exchange or only up to the response headers
//   - Optional rate limiting (golang.org/x/time/rate)
//   - Optional circuit breaker (internal/infrastructure/resilience)
//
// Retries are disabled. A failed origin fetch is handled by the pipeline
// fallback and a failed advisor call simply yields no suggestion.
//
// Example Usage:
//
//	c := client.New(client.Options{Name: "origin", HeaderTimeout: 15 * time.Second})
//	req, err := c.Request(ctx)
//	resp, err := req.SetDoNotParseResponse(true).Get(url)
package client
