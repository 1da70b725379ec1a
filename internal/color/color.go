// Package color provides minimal ANSI coloring for the console summary.
package color

import "os"

// ANSI color codes
const (
	reset  = "\033[0m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	bold   = "\033[1m"
)

// Color wraps text in ANSI escapes when enabled.
type Color struct {
	enabled bool
}

// New creates a colorizer. The enabled argument is combined with
// environment checks (NO_COLOR, TERM).
func New(enabled bool) *Color {
	return &Color{enabled: enabled && shouldEnableColor()}
}

// shouldEnableColor determines if color should be enabled based on environment
func shouldEnableColor() bool {
	// Check NO_COLOR environment variable (https://no-color.org/)
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	term := os.Getenv("TERM")
	if term == "dumb" || term == "" {
		return false
	}
	return true
}

// Missing colors text for entities absent from the target (red).
func (c *Color) Missing(text string) string {
	if !c.enabled {
		return text
	}
	return red + text + reset
}

// Extra colors text for entities absent from the source (green).
func (c *Color) Extra(text string) string {
	if !c.enabled {
		return text
	}
	return green + text + reset
}

// Changed colors text for entities whose definitions differ (yellow).
func (c *Color) Changed(text string) string {
	if !c.enabled {
		return text
	}
	return yellow + text + reset
}

// Bold makes text bold.
func (c *Color) Bold(text string) string {
	if !c.enabled {
		return text
	}
	return bold + text + reset
}
