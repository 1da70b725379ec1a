// Package compare computes set differences and per-entity change
// detection between two parsed collections of named definitions.
package compare

import (
	"fmt"
	"sort"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/procdiff/procdiff/internal/fingerprint"
)

// Entity is one named, comparable definition from a parsed input. The map
// key an entity is stored under decides identity; DisplayName keeps the
// original casing for output.
type Entity interface {
	DisplayName() string
	Body() string
	Fingerprint() fingerprint.Fingerprint
}

// Detailer is implemented by entities that expose structural metadata.
// ChangeDetail is consulted for entities present in both inputs whose
// definitions differ, and its result is carried into the JSON report.
type Detailer interface {
	ChangeDetail(target Entity) map[string]any
}

// Options control diff rendering.
type Options struct {
	// SourceLabel and TargetLabel name the two inputs in diff headers.
	// Empty values default to "Source" and "Target".
	SourceLabel string
	TargetLabel string

	// QualifyLabels appends "/<entity name>" to the labels, the way
	// per-file diffs are conventionally headed.
	QualifyLabels bool

	// Context is the number of unchanged lines around each hunk.
	Context int
}

// Change records one entity present in both inputs with differing
// definitions.
type Change struct {
	Name   string
	Diff   string
	Detail map[string]any
}

// Result is the outcome of comparing two collections. All name lists are
// sorted and the three buckets are pairwise disjoint.
type Result struct {
	SourceTotal  int
	TargetTotal  int
	OnlyInSource []string
	OnlyInTarget []string
	Changed      []Change
}

// ChangedNames returns the sorted display names of changed entities.
func (r *Result) ChangedNames() []string {
	names := make([]string, 0, len(r.Changed))
	for _, c := range r.Changed {
		names = append(names, c.Name)
	}
	return names
}

// HasDifferences reports whether any bucket is non-empty.
func (r *Result) HasDifferences() bool {
	return len(r.OnlyInSource) > 0 || len(r.OnlyInTarget) > 0 || len(r.Changed) > 0
}

// Run compares two collections keyed by entity identity. Entities present
// on one side only land in the OnlyIn buckets; for keys present in both,
// normalized-content fingerprints decide whether a unified diff over the
// raw definitions is recorded.
func Run(source, target map[string]Entity, opts Options) (*Result, error) {
	result := &Result{
		SourceTotal:  len(source),
		TargetTotal:  len(target),
		OnlyInSource: []string{},
		OnlyInTarget: []string{},
	}

	for key, entity := range source {
		if _, ok := target[key]; !ok {
			result.OnlyInSource = append(result.OnlyInSource, entity.DisplayName())
		}
	}
	for key, entity := range target {
		if _, ok := source[key]; !ok {
			result.OnlyInTarget = append(result.OnlyInTarget, entity.DisplayName())
		}
	}

	for key, src := range source {
		tgt, ok := target[key]
		if !ok {
			continue
		}
		if src.Fingerprint() == tgt.Fingerprint() {
			continue
		}
		diff, err := unifiedDiff(src, tgt, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to diff %s: %w", src.DisplayName(), err)
		}
		change := Change{Name: src.DisplayName(), Diff: diff}
		if d, ok := src.(Detailer); ok {
			change.Detail = d.ChangeDetail(tgt)
		}
		result.Changed = append(result.Changed, change)
	}

	sort.Strings(result.OnlyInSource)
	sort.Strings(result.OnlyInTarget)
	sort.Slice(result.Changed, func(i, j int) bool {
		return result.Changed[i].Name < result.Changed[j].Name
	})
	return result, nil
}

func unifiedDiff(src, tgt Entity, opts Options) (string, error) {
	from := opts.SourceLabel
	if from == "" {
		from = "Source"
	}
	to := opts.TargetLabel
	if to == "" {
		to = "Target"
	}
	if opts.QualifyLabels {
		from += "/" + src.DisplayName()
		to += "/" + tgt.DisplayName()
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(src.Body()),
		B:        difflib.SplitLines(tgt.Body()),
		FromFile: from,
		ToFile:   to,
		Context:  opts.Context,
	})
}
