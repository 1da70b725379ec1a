// Package sourcefile treats whole source files as comparable definitions.
// It reuses the same normalize/fingerprint/diff pipeline as stored
// procedures; the parse step is a light line scan extracting structural
// metadata (imports, function and class names) for script-style sources.
package sourcefile

import (
	"regexp"
	"slices"
	"strings"

	"github.com/procdiff/procdiff/internal/compare"
	"github.com/procdiff/procdiff/internal/fingerprint"
	"github.com/procdiff/procdiff/internal/normalize"
)

var (
	funcRe  = regexp.MustCompile(`^def\s+(\w+)\s*\(`)
	classRe = regexp.MustCompile(`^class\s+(\w+)\s*[(:]`)
)

// File is one source file with its content and structural metadata.
type File struct {
	Name      string
	Content   string
	Lines     int
	Size      int
	Imports   []string
	Functions []string
	Classes   []string

	fingerprint fingerprint.Fingerprint
}

// Scan builds a File from raw content, extracting structural metadata by
// line scanning. The comment syntax used for normalization is chosen from
// the file name.
func Scan(name, content string) *File {
	f := &File{
		Name:    name,
		Content: content,
		Size:    len(content),
	}
	lines := strings.Split(content, "\n")
	f.Lines = len(lines)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "from "):
			f.Imports = append(f.Imports, trimmed)
		case strings.HasPrefix(trimmed, "def "):
			if m := funcRe.FindStringSubmatch(trimmed); m != nil {
				f.Functions = append(f.Functions, m[1])
			}
		case strings.HasPrefix(trimmed, "class "):
			if m := classRe.FindStringSubmatch(trimmed); m != nil {
				f.Classes = append(f.Classes, m[1])
			}
		}
	}
	f.fingerprint = fingerprint.Compute(content, normalize.ForFilename(name))
	return f
}

// DisplayName implements compare.Entity.
func (f *File) DisplayName() string { return f.Name }

// Body implements compare.Entity.
func (f *File) Body() string { return f.Content }

// Fingerprint implements compare.Entity.
func (f *File) Fingerprint() fingerprint.Fingerprint { return f.fingerprint }

// ChangeDetail implements compare.Detailer with per-file flags for
// metadata-level changes.
func (f *File) ChangeDetail(target compare.Entity) map[string]any {
	other, ok := target.(*File)
	if !ok {
		return nil
	}
	return map[string]any{
		"source_lines":      f.Lines,
		"target_lines":      other.Lines,
		"imports_changed":   !slices.Equal(f.Imports, other.Imports),
		"functions_changed": !slices.Equal(f.Functions, other.Functions),
		"classes_changed":   !slices.Equal(f.Classes, other.Classes),
		"size_difference":   other.Size - f.Size,
	}
}

// Entities adapts a scanned file mapping for the comparator.
func Entities(files map[string]*File) map[string]compare.Entity {
	entities := make(map[string]compare.Entity, len(files))
	for key, file := range files {
		entities[key] = file
	}
	return entities
}
