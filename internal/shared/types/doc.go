// Package types provides shared data structures for the edge optimizer.
//
// These records flow between the pipeline stages of a single request:
//
//   - PageContext: structural signals collected from the origin document
//   - Suggestion: optional optimization hints returned by the advisor
//   - RewriteRules: tunable markers and limits consumed by the rewrite engine
//
// PageContext and Suggestion are created once per request and never shared
// across requests.
//
// Example Usage:
//
//	page := types.PageContext{Title: "Home", ExternalDomains: []string{"https://cdn.example.com"}}
//	if s != nil && s.HasDescription() {
//	    desc := s.Description()
//	}
package types
