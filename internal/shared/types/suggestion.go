package types

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Suggestion is the advisor's optimization reply. A nil *Suggestion means
// "no suggestion" and every accessor below is safe to call on nil.
//
// Field presence follows the reply: a nil slice means the field was absent or
// null, an empty non-nil slice means the advisor explicitly returned [].
type Suggestion struct {
	StructuredSchema    json.RawMessage `json:"jsonLd"`
	ImprovedDescription *string         `json:"metaDescription"`
	PreconnectDomains   []string        `json:"preconnectDomains"`
	PreloadResources    []string        `json:"criticalResources"`
}

// HasSchema reports whether a non-empty structured data payload is present.
func (s *Suggestion) HasSchema() bool {
	if s == nil {
		return false
	}
	raw := bytes.TrimSpace(s.StructuredSchema)
	switch string(raw) {
	case "", "null", "false", `""`, "0":
		return false
	}
	return true
}

// HasDescription reports whether the advisor proposed a replacement description.
func (s *Suggestion) HasDescription() bool {
	return s != nil && s.ImprovedDescription != nil && strings.TrimSpace(*s.ImprovedDescription) != ""
}

// Description returns the proposed description or "".
func (s *Suggestion) Description() string {
	if !s.HasDescription() {
		return ""
	}
	return *s.ImprovedDescription
}

// HasPreconnect reports whether the advisor supplied its own preconnect list.
func (s *Suggestion) HasPreconnect() bool {
	return s != nil && s.PreconnectDomains != nil
}

// HasPreload reports whether the advisor listed at least one critical resource.
func (s *Suggestion) HasPreload() bool {
	return s != nil && len(s.PreloadResources) > 0
}
