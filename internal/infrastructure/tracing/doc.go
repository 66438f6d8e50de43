/*
Package tracing provides lightweight request tracing for the proxy.

# Overview

Each inbound request gets a trace; every pipeline stage (fetch, extract,
advise, rewrite, fallback) records a span under it. Completed spans are
handed to a buffered collector goroutine that logs them through zap, so
tracing never blocks the response path.

# Propagation

Trace context travels in the X-Trace-ID and X-Span-ID headers. The gin
middleware accepts incoming values, starts the root span and echoes the ids
on the response.

# Usage

	tracer := tracing.New("edge", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	ctx, end := tracer.Stage(ctx, "extract")
	page, err := extractor.Extract(ctx, body)
	end(err)
*/
package tracing
