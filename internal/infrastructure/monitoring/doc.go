/*
Package monitoring provides Prometheus metrics for the proxy.

# Metrics

  - edge_http_requests_total / edge_http_request_duration_seconds: inbound traffic
  - edge_pipeline_outcomes_total{outcome}: optimized, passthrough, bypass, fallback, failed
  - edge_pipeline_stage_duration_seconds{stage}: fetch, extract, advise, rewrite
  - edge_advisor_calls_total{outcome}: hit, miss, disabled, error, open
  - edge_origin_body_bytes: size of decoded HTML documents

# Usage

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)
	router.Use(monitoring.Middleware(metrics))

	timer := metrics.StageTimer("extract")
	page, err := extractor.Extract(ctx, body)
	timer.Stop()

Metrics are registered on the supplied registerer so tests can build
isolated instances with prometheus.NewRegistry().
*/
package monitoring
