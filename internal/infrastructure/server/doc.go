// Package server wires configuration into the running edge proxy.
//
// Server Lifecycle:
//  1. Load configuration from environment/flags
//  2. Initialize logger (production or development)
//  3. Register Prometheus collectors and start the span tracer
//  4. Build origin client, fetcher, advisor, rewrite engine and pipeline
//  5. Mount middleware, admin routes and the catch-all proxy
//  6. Start HTTP server
//  7. Drain in-flight requests on signal
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	go srv.Run()
//	defer srv.Close()
package server
