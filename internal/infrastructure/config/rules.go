package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/edgeoptimizer/internal/shared/types"
)

// LoadRules reads rewrite rule tuning from a YAML or TOML file. An empty
// path yields the built-in defaults. Fields left unset keep their defaults.
func LoadRules(path string) (types.RewriteRules, error) {
	if path == "" {
		return types.DefaultRewriteRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return types.RewriteRules{}, fmt.Errorf("read rules file: %w", err)
	}
	return ParseRules(data, filepath.Ext(path))
}

// ParseRules decodes rule tuning in the format named by ext (".yaml", ".yml" or ".toml").
func ParseRules(data []byte, ext string) (types.RewriteRules, error) {
	var rules types.RewriteRules

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &rules); err != nil {
			return types.RewriteRules{}, fmt.Errorf("parse yaml rules: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &rules); err != nil {
			return types.RewriteRules{}, fmt.Errorf("parse toml rules: %w", err)
		}
	default:
		return types.RewriteRules{}, fmt.Errorf("unsupported rules format %q", ext)
	}

	return rules.WithDefaults(), nil
}
