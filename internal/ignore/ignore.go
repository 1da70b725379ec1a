// Package ignore filters parsed procedures through user-supplied glob
// patterns before comparison.
package ignore

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the default name of the ignore file
const FileName = ".procdiffignore"

// Config represents the TOML structure of the ignore file:
//
//	[procedures]
//	patterns = ["*.dbo.tmp_*", "scratch.*"]
//
// Patterns match against the lower-cased qualified name using path.Match
// syntax.
type Config struct {
	Procedures PatternConfig `toml:"procedures"`
}

// PatternConfig holds a list of glob patterns.
type PatternConfig struct {
	Patterns []string `toml:"patterns"`
}

// Load reads an ignore file from the given path. A missing file yields a
// nil config; ignoring is optional.
func Load(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ignore file %s: %w", filePath, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse ignore file %s: %w", filePath, err)
	}
	return &cfg, nil
}

// Match reports whether a qualified name is excluded from comparison.
// A nil config matches nothing.
func (c *Config) Match(qualifiedName string) bool {
	if c == nil {
		return false
	}
	name := strings.ToLower(qualifiedName)
	for _, pattern := range c.Procedures.Patterns {
		if ok, err := path.Match(strings.ToLower(pattern), name); err == nil && ok {
			return true
		}
	}
	return false
}
