package types

// PageContext holds the signals extracted from one origin document.
// It is immutable once the extraction pass returns.
type PageContext struct {
	Title           string   `json:"title"`
	Heading         string   `json:"heading"`
	Description     string   `json:"description"`
	ImageSources    []string `json:"imageSources"`
	ExternalDomains []string `json:"externalDomains"` // distinct scheme+host, first-seen order
}

// DomainsRange returns ExternalDomains[from:to] clamped to the slice bounds.
func (p PageContext) DomainsRange(from, to int) []string {
	n := len(p.ExternalDomains)
	if from < 0 {
		from = 0
	}
	if to > n {
		to = n
	}
	if from >= to {
		return nil
	}
	out := make([]string, to-from)
	copy(out, p.ExternalDomains[from:to])
	return out
}

// DomainSet accumulates distinct origins while preserving first-seen order.
type DomainSet struct {
	seen  map[string]struct{}
	items []string
}

// NewDomainSet creates an empty set.
func NewDomainSet() *DomainSet {
	return &DomainSet{seen: make(map[string]struct{})}
}

// Add inserts origin and reports whether it was new.
func (s *DomainSet) Add(origin string) bool {
	if _, ok := s.seen[origin]; ok {
		return false
	}
	s.seen[origin] = struct{}{}
	s.items = append(s.items, origin)
	return true
}

// Contains reports membership.
func (s *DomainSet) Contains(origin string) bool {
	_, ok := s.seen[origin]
	return ok
}

// Len returns the number of distinct origins.
func (s *DomainSet) Len() int { return len(s.items) }

// Items returns a copy in insertion order.
func (s *DomainSet) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}
