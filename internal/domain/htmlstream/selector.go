package htmlstream

import "strings"

// Selector matches start tags by name and an optional attribute predicate.
type Selector struct {
	tag   string
	attr  string
	match func(string) bool
}

// Tag selects elements by name. "*" selects every element.
func Tag(name string) Selector {
	return Selector{tag: strings.ToLower(name)}
}

// Has narrows the selector to elements carrying attr.
func (s Selector) Has(attr string) Selector {
	s.attr = strings.ToLower(attr)
	s.match = nil
	return s
}

// Where narrows the selector to elements whose attr satisfies match.
func (s Selector) Where(attr string, match func(string) bool) Selector {
	s.attr = strings.ToLower(attr)
	s.match = match
	return s
}

// Equals matches an attribute value case-insensitively after trimming.
func Equals(want string) func(string) bool {
	return func(v string) bool {
		return strings.EqualFold(strings.TrimSpace(v), want)
	}
}

// HasToken matches a whitespace-separated attribute value containing token.
func HasToken(token string) func(string) bool {
	return func(v string) bool {
		for _, f := range strings.Fields(v) {
			if strings.EqualFold(f, token) {
				return true
			}
		}
		return false
	}
}

func (s Selector) matches(el *Element) bool {
	if s.tag != "*" && s.tag != el.tag {
		return false
	}
	if s.attr == "" {
		return true
	}
	v, ok := el.GetAttribute(s.attr)
	if !ok {
		return false
	}
	return s.match == nil || s.match(v)
}
