package utils

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Limits for advisor-supplied structured data embedded into documents.
const (
	MaxSchemaSize  = 64 * 1024 // 64KB
	MaxSchemaDepth = 32
)

// JSONSizeValidator validates JSON size limits
type JSONSizeValidator struct {
	maxSize  int
	maxDepth int
}

// NewJSONSizeValidator creates a validator. maxDepth <= 0 disables the depth check.
func NewJSONSizeValidator(maxSize, maxDepth int) *JSONSizeValidator {
	return &JSONSizeValidator{maxSize: maxSize, maxDepth: maxDepth}
}

// SchemaValidator returns the validator applied to JSON-LD payloads.
func SchemaValidator() *JSONSizeValidator {
	return NewJSONSizeValidator(MaxSchemaSize, MaxSchemaDepth)
}

// ValidateSize checks if the data size is within limits
func (v *JSONSizeValidator) ValidateSize(data []byte) error {
	if size := len(data); size > v.maxSize {
		return fmt.Errorf("JSON size %d bytes exceeds maximum %d bytes", size, v.maxSize)
	}
	return nil
}

// ValidateJSON checks size, syntax and nesting depth.
func (v *JSONSizeValidator) ValidateJSON(data []byte) error {
	// Size first, it is cheaper than parsing.
	if err := v.ValidateSize(data); err != nil {
		return err
	}

	var js interface{}
	if err := sonic.Unmarshal(data, &js); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if v.maxDepth > 0 {
		return ValidateJSONDepth(js, v.maxDepth)
	}
	return nil
}

// ValidateJSONDepth checks if JSON nesting depth is within limits
func ValidateJSONDepth(data interface{}, maxDepth int) error {
	return checkDepth(data, 0, maxDepth)
}

func checkDepth(data interface{}, currentDepth int, maxDepth int) error {
	if currentDepth > maxDepth {
		return fmt.Errorf("JSON nesting depth %d exceeds maximum %d", currentDepth, maxDepth)
	}

	switch v := data.(type) {
	case map[string]interface{}:
		for _, value := range v {
			if err := checkDepth(value, currentDepth+1, maxDepth); err != nil {
				return err
			}
		}
	case []interface{}:
		for _, value := range v {
			if err := checkDepth(value, currentDepth+1, maxDepth); err != nil {
				return err
			}
		}
	}

	return nil
}
