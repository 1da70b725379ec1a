// Package report renders comparison results into summary, detail, and
// JSON artifacts. File names embed a run timestamp so repeated runs never
// overwrite prior reports.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/procdiff/procdiff/internal/compare"
)

const (
	timestampLayout = "20060102_150405"
	ruleWidth       = 80
)

// Artifacts lists the files produced for one comparison run.
type Artifacts struct {
	SummaryPath string
	DetailPath  string // empty when no definitions changed
	JSONPath    string
}

// Writer renders a comparison result into timestamped report files.
type Writer struct {
	// Dir is the output directory, created if absent.
	Dir string

	// Tag is an optional file-name prefix so concurrent runs in the same
	// second produce distinct artifacts, e.g. "orders_".
	Tag string

	// Title heads the summary file, e.g. "STORED PROCEDURE COMPARISON SUMMARY".
	Title string

	// DetailTitle heads the detailed differences file.
	DetailTitle string

	// Label prefixes each entry in the detail file, e.g. "PROCEDURE".
	Label string

	// Noun names the compared entities in counts, e.g. "procedures".
	Noun string

	// Now overrides the report timestamp; zero means time.Now().
	Now time.Time
}

// Write produces the report files for a result. The summary and JSON
// artifacts are always written; the detail artifact only when definitions
// changed.
func (w *Writer) Write(result *compare.Result) (*Artifacts, error) {
	now := w.Now
	if now.IsZero() {
		now = time.Now()
	}
	ts := now.Format(timestampLayout)

	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", w.Dir, err)
	}

	artifacts := &Artifacts{
		SummaryPath: filepath.Join(w.Dir, fmt.Sprintf("%scomparison_summary_%s.txt", w.Tag, ts)),
		JSONPath:    filepath.Join(w.Dir, fmt.Sprintf("%scomparison_results_%s.json", w.Tag, ts)),
	}

	if err := os.WriteFile(artifacts.SummaryPath, []byte(w.summaryText(result, now)), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write summary report: %w", err)
	}

	if len(result.Changed) > 0 {
		artifacts.DetailPath = filepath.Join(w.Dir, fmt.Sprintf("%sdetailed_differences_%s.txt", w.Tag, ts))
		if err := os.WriteFile(artifacts.DetailPath, []byte(w.detailText(result)), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write detail report: %w", err)
		}
	}

	jsonData, err := w.resultJSON(result, now)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(artifacts.JSONPath, jsonData, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write JSON report: %w", err)
	}

	return artifacts, nil
}

func (w *Writer) summaryText(result *compare.Result, now time.Time) string {
	noun := w.Noun
	upperNoun := strings.ToUpper(noun)
	capNoun := strings.ToUpper(noun[:1]) + noun[1:]

	var b strings.Builder
	b.WriteString(w.Title + "\n")
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n\n")
	fmt.Fprintf(&b, "Generated on: %s\n\n", now.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(&b, "Total %s in source: %d\n", noun, result.SourceTotal)
	fmt.Fprintf(&b, "Total %s in target: %d\n", noun, result.TargetTotal)
	fmt.Fprintf(&b, "%s only in source: %d\n", capNoun, len(result.OnlyInSource))
	fmt.Fprintf(&b, "%s only in target: %d\n", capNoun, len(result.OnlyInTarget))
	fmt.Fprintf(&b, "%s with differences: %d\n\n", capNoun, len(result.Changed))

	if !result.HasDifferences() {
		fmt.Fprintf(&b, "All %s match.\n", noun)
		return b.String()
	}

	if len(result.OnlyInSource) > 0 {
		fmt.Fprintf(&b, "%s ONLY IN SOURCE (Missing in Target):\n", upperNoun)
		b.WriteString(strings.Repeat("-", ruleWidth) + "\n")
		for _, name := range result.OnlyInSource {
			fmt.Fprintf(&b, "  - %s\n", name)
		}
		b.WriteString("\n")
	}

	if len(result.OnlyInTarget) > 0 {
		fmt.Fprintf(&b, "%s ONLY IN TARGET (Not in Source):\n", upperNoun)
		b.WriteString(strings.Repeat("-", ruleWidth) + "\n")
		for _, name := range result.OnlyInTarget {
			fmt.Fprintf(&b, "  - %s\n", name)
		}
		b.WriteString("\n")
	}

	if len(result.Changed) > 0 {
		fmt.Fprintf(&b, "%s WITH DIFFERENCES:\n", upperNoun)
		b.WriteString(strings.Repeat("-", ruleWidth) + "\n")
		for _, change := range result.Changed {
			fmt.Fprintf(&b, "  - %s\n", change.Name)
			writeChangeDetail(&b, change.Detail)
		}
	}

	return b.String()
}

// writeChangeDetail renders the structural flags the source-file variant
// attaches to a change. Stored-procedure changes carry no detail.
func writeChangeDetail(b *strings.Builder, detail map[string]any) {
	if detail == nil {
		return
	}
	if src, ok := detail["source_lines"].(int); ok {
		tgt, _ := detail["target_lines"].(int)
		fmt.Fprintf(b, "    Source lines: %d, Target lines: %d\n", src, tgt)
	}
	if delta, ok := detail["size_difference"].(int); ok {
		fmt.Fprintf(b, "    Size difference: %+d bytes\n", delta)
	}
	for _, flag := range []struct{ key, message string }{
		{"imports_changed", "Imports have changed"},
		{"functions_changed", "Functions have changed"},
		{"classes_changed", "Classes have changed"},
	} {
		if changed, ok := detail[flag.key].(bool); ok && changed {
			fmt.Fprintf(b, "    ! %s\n", flag.message)
		}
	}
}

func (w *Writer) detailText(result *compare.Result) string {
	var b strings.Builder
	b.WriteString(w.DetailTitle + "\n")
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n\n")

	for _, change := range result.Changed {
		fmt.Fprintf(&b, "\n%s: %s\n", w.Label, change.Name)
		b.WriteString(strings.Repeat("-", ruleWidth) + "\n")
		b.WriteString(change.Diff)
		if !strings.HasSuffix(change.Diff, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

type summaryJSON struct {
	SourceTotal  int `json:"source_total"`
	TargetTotal  int `json:"target_total"`
	OnlyInSource int `json:"only_in_source"`
	OnlyInTarget int `json:"only_in_target"`
	Different    int `json:"different"`
}

type resultJSON struct {
	Timestamp    string                    `json:"timestamp"`
	Summary      summaryJSON               `json:"summary"`
	OnlyInSource []string                  `json:"only_in_source"`
	OnlyInTarget []string                  `json:"only_in_target"`
	Different    []string                  `json:"different"`
	FileDetails  map[string]map[string]any `json:"file_details,omitempty"`
}

func (w *Writer) resultJSON(result *compare.Result, now time.Time) ([]byte, error) {
	out := resultJSON{
		Timestamp: now.Format(time.RFC3339),
		Summary: summaryJSON{
			SourceTotal:  result.SourceTotal,
			TargetTotal:  result.TargetTotal,
			OnlyInSource: len(result.OnlyInSource),
			OnlyInTarget: len(result.OnlyInTarget),
			Different:    len(result.Changed),
		},
		OnlyInSource: result.OnlyInSource,
		OnlyInTarget: result.OnlyInTarget,
		Different:    result.ChangedNames(),
	}
	for _, change := range result.Changed {
		if change.Detail == nil {
			continue
		}
		if out.FileDetails == nil {
			out.FileDetails = make(map[string]map[string]any)
		}
		out.FileDetails[change.Name] = change.Detail
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal comparison results: %w", err)
	}
	return data, nil
}
