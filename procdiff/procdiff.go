// Package procdiff provides a programmatic API for comparing database
// stored-procedure exports. It wraps the parse, normalize, compare, and
// report steps the CLI drives, so the engine can be embedded in other
// tools. Runs are independent; callers may execute them concurrently as
// long as report output names do not collide.
package procdiff

import (
	"fmt"

	"github.com/procdiff/procdiff/internal/compare"
	"github.com/procdiff/procdiff/internal/export"
	"github.com/procdiff/procdiff/internal/report"
	"github.com/procdiff/procdiff/internal/textfile"
)

// Options control parsing and diff rendering for one comparison run.
type Options struct {
	// CaseSensitiveKeys disables the default lower-casing of qualified
	// names before set operations.
	CaseSensitiveKeys bool

	// ContextLines is the number of unchanged lines around diff hunks.
	ContextLines int

	// Encodings overrides the decode fallback order
	// (default: utf-8-sig, utf-8, latin-1).
	Encodings []string
}

// Re-export important types for external consumption

// Result is the outcome of one comparison run.
type Result = compare.Result

// Change records one procedure whose definition differs between exports.
type Change = compare.Change

// Procedure is a stored-procedure record parsed from an export file.
type Procedure = export.Procedure

// Artifacts lists the report files written for a run.
type Artifacts = report.Artifacts

// ParseExport parses export text into a mapping keyed by qualified name.
func ParseExport(text string, opts Options) map[string]*Procedure {
	return export.Parse(text, export.Options{CaseSensitiveKeys: opts.CaseSensitiveKeys})
}

// CompareExports compares two export texts already in memory.
func CompareExports(sourceText, targetText string, opts Options) (*Result, error) {
	parseOpts := export.Options{CaseSensitiveKeys: opts.CaseSensitiveKeys}
	source := export.Parse(sourceText, parseOpts)
	target := export.Parse(targetText, parseOpts)
	return compare.Run(export.Entities(source), export.Entities(target), compare.Options{
		Context: opts.ContextLines,
	})
}

// CompareExportFiles reads and compares two export files.
func CompareExportFiles(sourcePath, targetPath string, opts Options) (*Result, error) {
	sourceText, err := textfile.Read(sourcePath, opts.Encodings)
	if err != nil {
		return nil, fmt.Errorf("failed to read source export: %w", err)
	}
	targetText, err := textfile.Read(targetPath, opts.Encodings)
	if err != nil {
		return nil, fmt.Errorf("failed to read target export: %w", err)
	}
	return CompareExports(sourceText, targetText, opts)
}

// WriteReports writes the summary, detail, and JSON artifacts for a
// stored-procedure comparison into outputDir.
func WriteReports(result *Result, outputDir string) (*Artifacts, error) {
	writer := &report.Writer{
		Dir:         outputDir,
		Title:       "STORED PROCEDURE COMPARISON SUMMARY",
		DetailTitle: "DETAILED PROCEDURE DIFFERENCES",
		Label:       "PROCEDURE",
		Noun:        "procedures",
	}
	return writer.Write(result)
}
