package compare

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/procdiff/procdiff/internal/fingerprint"
	"github.com/procdiff/procdiff/internal/normalize"
)

// stub is a minimal Entity for comparator tests.
type stub struct {
	name string
	body string
}

func (s *stub) DisplayName() string { return s.name }
func (s *stub) Body() string        { return s.body }
func (s *stub) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.Compute(s.body, normalize.SQL)
}

func entities(stubs ...*stub) map[string]Entity {
	out := make(map[string]Entity, len(stubs))
	for _, s := range stubs {
		out[strings.ToLower(s.name)] = s
	}
	return out
}

func TestRunEmptyInputs(t *testing.T) {
	result, err := Run(map[string]Entity{}, map[string]Entity{}, Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.HasDifferences() {
		t.Error("empty inputs should produce no differences")
	}
	if result.SourceTotal != 0 || result.TargetTotal != 0 {
		t.Errorf("totals should be zero, got %d/%d", result.SourceTotal, result.TargetTotal)
	}
}

func TestRunBuckets(t *testing.T) {
	// Source {A, B}, target {B, C}; B differs only in a comment.
	source := entities(
		&stub{name: "db.dbo.A", body: "SELECT 1"},
		&stub{name: "db.dbo.B", body: "SELECT 2 -- note"},
	)
	target := entities(
		&stub{name: "db.dbo.B", body: "SELECT 2"},
		&stub{name: "db.dbo.C", body: "SELECT 3"},
	)

	result, err := Run(source, target, Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if diff := cmp.Diff([]string{"db.dbo.A"}, result.OnlyInSource); diff != "" {
		t.Errorf("OnlyInSource mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"db.dbo.C"}, result.OnlyInTarget); diff != "" {
		t.Errorf("OnlyInTarget mismatch (-want +got):\n%s", diff)
	}
	if len(result.Changed) != 0 {
		t.Errorf("comment-only difference should be suppressed, got %v", result.ChangedNames())
	}
}

func TestRunDetectsRealChange(t *testing.T) {
	source := entities(&stub{name: "db.dbo.X", body: "SELECT 1"})
	target := entities(&stub{name: "db.dbo.X", body: "SELECT  1;"})

	result, err := Run(source, target, Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.Changed) != 1 {
		t.Fatalf("expected one changed entity, got %d", len(result.Changed))
	}
	change := result.Changed[0]
	if change.Name != "db.dbo.X" {
		t.Errorf("changed name = %q", change.Name)
	}
	if change.Diff == "" {
		t.Fatal("expected a non-empty unified diff")
	}
	if !strings.Contains(change.Diff, "-SELECT 1") || !strings.Contains(change.Diff, "+SELECT  1;") {
		t.Errorf("diff missing expected lines:\n%s", change.Diff)
	}
	if !strings.Contains(change.Diff, "--- Source") || !strings.Contains(change.Diff, "+++ Target") {
		t.Errorf("diff missing default labels:\n%s", change.Diff)
	}
}

func TestRunIdenticalBodiesNeverChanged(t *testing.T) {
	body := "CREATE PROCEDURE dbo.P AS SELECT 42"
	source := entities(&stub{name: "db.dbo.P", body: body})
	target := entities(&stub{name: "db.dbo.P", body: body})

	result, err := Run(source, target, Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.HasDifferences() {
		t.Errorf("byte-identical definitions reported as different: %+v", result)
	}
}

func TestRunCaseInsensitiveKeys(t *testing.T) {
	// Keys are lower-cased by the callers (here via entities); display
	// names keep their original casing.
	source := entities(&stub{name: "DB.dbo.GetUser", body: "SELECT 1"})
	target := entities(&stub{name: "db.DBO.getuser", body: "select 1"})

	result, err := Run(source, target, Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.HasDifferences() {
		t.Errorf("case-only differences should vanish, got %+v", result)
	}
}

func TestRunBucketsDisjoint(t *testing.T) {
	source := entities(
		&stub{name: "db.dbo.A", body: "SELECT 1"},
		&stub{name: "db.dbo.B", body: "SELECT 2"},
		&stub{name: "db.dbo.C", body: "SELECT 3"},
	)
	target := entities(
		&stub{name: "db.dbo.B", body: "SELECT 2 CHANGED"},
		&stub{name: "db.dbo.C", body: "SELECT 3"},
		&stub{name: "db.dbo.D", body: "SELECT 4"},
	)

	result, err := Run(source, target, Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	seen := map[string]int{}
	for _, n := range result.OnlyInSource {
		seen[n]++
	}
	for _, n := range result.OnlyInTarget {
		seen[n]++
	}
	for _, n := range result.ChangedNames() {
		seen[n]++
	}
	for name, count := range seen {
		if count > 1 {
			t.Errorf("entity %s appears in %d buckets", name, count)
		}
	}
}

func TestRunQualifiedLabelsAndContext(t *testing.T) {
	source := entities(&stub{name: "api.py", body: "a\nb\nc\nd\n"})
	target := entities(&stub{name: "api.py", body: "a\nb\nX\nd\n"})

	result, err := Run(source, target, Options{QualifyLabels: true, Context: 1})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.Changed) != 1 {
		t.Fatalf("expected one change, got %d", len(result.Changed))
	}
	diff := result.Changed[0].Diff
	if !strings.Contains(diff, "--- Source/api.py") || !strings.Contains(diff, "+++ Target/api.py") {
		t.Errorf("expected qualified labels in diff:\n%s", diff)
	}
	// Context 1 keeps the unchanged neighbors b and d in the hunk.
	if !strings.Contains(diff, " b\n") || !strings.Contains(diff, " d\n") {
		t.Errorf("expected one line of context around the hunk:\n%s", diff)
	}
}
