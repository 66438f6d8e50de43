package advisor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/edgeoptimizer/internal/shared/types"
	"github.com/GriffinCanCode/edgeoptimizer/internal/shared/utils"
)

var (
	// ErrNoJSON is returned when the reply contains no complete JSON object.
	ErrNoJSON = errors.New("no JSON object in advisor reply")
	// ErrMalformed is returned when the JSON object does not fit a suggestion.
	ErrMalformed = errors.New("malformed advisor suggestion")
)

// ParseReply decodes the first complete JSON object embedded in text.
func ParseReply(text string) (*types.Suggestion, error) {
	obj, ok := FirstObject(text)
	if !ok {
		return nil, ErrNoJSON
	}

	var s types.Suggestion
	if err := sonic.UnmarshalString(obj, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if s.HasSchema() {
		if err := utils.SchemaValidator().ValidateJSON(s.StructuredSchema); err != nil {
			return nil, fmt.Errorf("%w: jsonLd: %v", ErrMalformed, err)
		}
	}
	return &s, nil
}

// FirstObject returns the first balanced {...} substring of text that is
// valid JSON. Braces inside JSON strings are ignored while balancing.
func FirstObject(text string) (string, bool) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end, ok := matchBrace(text, start); ok {
			candidate := text[start : end+1]
			if sonic.Valid([]byte(candidate)) {
				return candidate, true
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchBrace returns the index of the brace closing the one at start.
func matchBrace(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
