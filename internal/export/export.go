// Package export parses stored-procedure export files. An export is a
// text file of delimited blocks, each carrying labeled metadata lines and
// a verbatim definition span:
//
//	=== STORED PROCEDURE START ===
//	Database: Sales
//	Schema: dbo
//	Name: GetUser
//	CreateDate: 2021-03-01
//	ModifyDate: 2024-11-20
//	--- DEFINITION START ---
//	CREATE PROCEDURE dbo.GetUser ...
//	--- DEFINITION END ---
//	=== STORED PROCEDURE END ===
//
// Text outside blocks is ignored. Blocks missing a required field are
// skipped so one corrupt block never aborts a comparison run.
package export

import (
	"strings"

	"github.com/procdiff/procdiff/internal/compare"
	"github.com/procdiff/procdiff/internal/fingerprint"
	"github.com/procdiff/procdiff/internal/logger"
	"github.com/procdiff/procdiff/internal/normalize"
)

const (
	blockStart = "=== STORED PROCEDURE START ==="
	blockEnd   = "=== STORED PROCEDURE END ==="
	defStart   = "--- DEFINITION START ---"
	defEnd     = "--- DEFINITION END ---"
)

// Procedure is one stored-procedure definition parsed from an export.
// Records are immutable once parsed.
type Procedure struct {
	Database   string
	Schema     string
	Name       string
	CreateDate string
	ModifyDate string
	Definition string

	qualified   string
	fingerprint fingerprint.Fingerprint
}

// QualifiedName returns database.schema.name in its original casing.
func (p *Procedure) QualifiedName() string { return p.qualified }

// DisplayName implements compare.Entity.
func (p *Procedure) DisplayName() string { return p.qualified }

// Body implements compare.Entity.
func (p *Procedure) Body() string { return p.Definition }

// Fingerprint implements compare.Entity.
func (p *Procedure) Fingerprint() fingerprint.Fingerprint { return p.fingerprint }

// Options control how parsed records are keyed.
type Options struct {
	// CaseSensitiveKeys keeps the qualified name's original casing as the
	// mapping key. The default lower-cases keys so inconsistent identifier
	// casing across exports does not produce false missing/extra results.
	CaseSensitiveKeys bool
}

// Parse extracts all well-formed procedure blocks from an export text.
// Duplicate qualified names are last-wins, mirroring a single linear pass
// building a map.
func Parse(text string, opts Options) map[string]*Procedure {
	procs := make(map[string]*Procedure)
	rest := text
	for {
		start := strings.Index(rest, blockStart)
		if start < 0 {
			break
		}
		rest = rest[start+len(blockStart):]
		end := strings.Index(rest, blockEnd)
		if end < 0 {
			break
		}
		block := rest[:end]
		rest = rest[end+len(blockEnd):]

		proc := parseBlock(block)
		if proc == nil {
			logger.Get().Debug("skipping malformed export block", "block_prefix", prefix(block, 80))
			continue
		}
		key := proc.qualified
		if !opts.CaseSensitiveKeys {
			key = strings.ToLower(key)
		}
		procs[key] = proc
	}
	return procs
}

// Entities adapts a parsed mapping for the comparator.
func Entities(procs map[string]*Procedure) map[string]compare.Entity {
	entities := make(map[string]compare.Entity, len(procs))
	for key, proc := range procs {
		entities[key] = proc
	}
	return entities
}

func parseBlock(block string) *Procedure {
	proc := &Procedure{
		Database:   fieldValue(block, "Database:"),
		Schema:     fieldValue(block, "Schema:"),
		Name:       fieldValue(block, "Name:"),
		CreateDate: fieldValue(block, "CreateDate:"),
		ModifyDate: fieldValue(block, "ModifyDate:"),
		Definition: definitionText(block),
	}
	if proc.Database == "" || proc.Schema == "" || proc.Name == "" || proc.Definition == "" {
		return nil
	}
	proc.qualified = proc.Database + "." + proc.Schema + "." + proc.Name
	proc.fingerprint = fingerprint.Compute(proc.Definition, normalize.SQL)
	return proc
}

// fieldValue returns the first non-empty remainder of a line starting
// with the label, wherever the line sits within the block.
func fieldValue(block, label string) string {
	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, label) {
			continue
		}
		if value := strings.TrimSpace(trimmed[len(label):]); value != "" {
			return value
		}
	}
	return ""
}

// definitionText extracts the nested definition span verbatim, trimming
// leading and trailing blank lines only. An unterminated span counts as
// missing.
func definitionText(block string) string {
	start := strings.Index(block, defStart)
	if start < 0 {
		return ""
	}
	inner := block[start+len(defStart):]
	end := strings.Index(inner, defEnd)
	if end < 0 {
		return ""
	}
	return trimBlankLines(inner[:end])
}

func trimBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	first := 0
	for first < len(lines) && strings.TrimSpace(lines[first]) == "" {
		first++
	}
	last := len(lines)
	for last > first && strings.TrimSpace(lines[last-1]) == "" {
		last--
	}
	return strings.Join(lines[first:last], "\n")
}

func prefix(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}
