// Package advisor asks a generative text service for content-aware
// optimization hints.
//
// Advise is best-effort: every failure (no credential, open breaker,
// transport error, error envelope, unparsable reply) yields a nil
// *types.Suggestion and is never returned to the caller. The reply text may
// wrap the JSON object in prose or code fences; the first complete JSON
// object found in it is decoded as a whole or not at all.
package advisor
