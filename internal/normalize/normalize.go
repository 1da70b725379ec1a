// Package normalize canonicalizes definition text before comparison.
// Definitions that differ only in comments, whitespace, or letter casing
// normalize to the same string.
package normalize

import (
	"path/filepath"
	"strings"
)

// Syntax describes the comment markers of the text being normalized.
// An empty marker disables that removal step.
type Syntax struct {
	LineComment string
	BlockStart  string
	BlockEnd    string
}

var (
	// SQL covers T-SQL style definitions: -- line comments and /* */ blocks.
	SQL = Syntax{LineComment: "--", BlockStart: "/*", BlockEnd: "*/"}

	// Hash covers script-style sources that only use # line comments.
	Hash = Syntax{LineComment: "#"}
)

// ForFilename picks a comment syntax based on the file extension.
// SQL-ish extensions get SQL syntax, everything else gets Hash.
func ForFilename(name string) Syntax {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".sql", ".ddl", ".prc", ".proc", ".tsql":
		return SQL
	default:
		return Hash
	}
}

// Text canonicalizes s for equality comparison. The steps run in a fixed
// order: line comments are removed, then block comments, then all
// whitespace runs collapse to single spaces, then the result is
// lower-cased and trimmed. An unterminated block comment swallows the
// rest of the text.
func Text(s string, syn Syntax) string {
	s = stripLineComments(s, syn.LineComment)
	s = stripBlockComments(s, syn.BlockStart, syn.BlockEnd)
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToLower(s)
}

func stripLineComments(s, marker string) string {
	if marker == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if idx := strings.Index(line, marker); idx >= 0 {
			lines[i] = line[:idx]
		}
	}
	return strings.Join(lines, "\n")
}

func stripBlockComments(s, open, close string) string {
	if open == "" || close == "" {
		return s
	}
	var b strings.Builder
	for {
		start := strings.Index(s, open)
		if start < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:start])
		rest := s[start+len(open):]
		end := strings.Index(rest, close)
		if end < 0 {
			// Unterminated block comment: the rest of the text is
			// treated as commented out.
			return b.String()
		}
		s = rest[end+len(close):]
	}
}
