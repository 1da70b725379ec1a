package procs

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exportA = `=== STORED PROCEDURE START ===
Database: Sales
Schema: dbo
Name: GetUser
--- DEFINITION START ---
SELECT * FROM Users
--- DEFINITION END ---
=== STORED PROCEDURE END ===
`

const exportB = `=== STORED PROCEDURE START ===
Database: Sales
Schema: dbo
Name: GetUser
--- DEFINITION START ---
SELECT * FROM Users WHERE Active = 1
--- DEFINITION END ---
=== STORED PROCEDURE END ===
`

func TestProcsCommandFlags(t *testing.T) {
	flags := ProcsCmd.Flags()

	for _, name := range []string{"output", "pattern", "context", "case-sensitive", "encoding", "ignore-file", "no-color"} {
		if flags.Lookup(name) == nil {
			t.Errorf("expected --%s flag to be defined", name)
		}
	}
	if got := flags.Lookup("context").DefValue; got != "0" {
		t.Errorf("expected default context of 0, got %s", got)
	}
}

func runProcsCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	ProcsCmd.SetOut(&buf)
	ProcsCmd.SetErr(&buf)
	ProcsCmd.SetArgs(args)
	err := ProcsCmd.Execute()
	return buf.String(), err
}

func TestProcsCommandSingleRun(t *testing.T) {
	dir := t.TempDir()
	sourcePath := filepath.Join(dir, "source.sql")
	targetPath := filepath.Join(dir, "target.sql")
	outDir := filepath.Join(dir, "results")
	require.NoError(t, os.WriteFile(sourcePath, []byte(exportA), 0o644))
	require.NoError(t, os.WriteFile(targetPath, []byte(exportB), 0o644))

	output, err := runProcsCmd(t, sourcePath, targetPath, "-o", outDir, "--no-color")
	require.NoError(t, err)

	assert.Contains(t, output, "Found 1 stored procedures in source")
	assert.Contains(t, output, "Procedures with differences: 1")
	assert.Contains(t, output, "Reports generated:")

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	var summaries, details, jsons int
	for _, e := range entries {
		switch {
		case strings.HasPrefix(e.Name(), "comparison_summary_"):
			summaries++
		case strings.HasPrefix(e.Name(), "detailed_differences_"):
			details++
		case strings.HasPrefix(e.Name(), "comparison_results_"):
			jsons++
		}
	}
	assert.Equal(t, 1, summaries, "expected one summary report")
	assert.Equal(t, 1, details, "expected one detail report")
	assert.Equal(t, 1, jsons, "expected one JSON report")
}

func TestProcsCommandMissingInput(t *testing.T) {
	dir := t.TempDir()
	targetPath := filepath.Join(dir, "target.sql")
	require.NoError(t, os.WriteFile(targetPath, []byte(exportA), 0o644))

	_, err := runProcsCmd(t, filepath.Join(dir, "missing.sql"), targetPath, "-o", dir, "--no-color")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source path")
}

func TestProcsCommandDirectoryMode(t *testing.T) {
	dir := t.TempDir()
	sourceDir := filepath.Join(dir, "source")
	targetDir := filepath.Join(dir, "target")
	outDir := filepath.Join(dir, "results")
	require.NoError(t, os.MkdirAll(sourceDir, 0o755))
	require.NoError(t, os.MkdirAll(targetDir, 0o755))

	// orders.sql exists on both sides, legacy.sql only in source.
	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, "orders.sql"), []byte(exportA), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(targetDir, "orders.sql"), []byte(exportB), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, "legacy.sql"), []byte(exportA), 0o644))

	output, err := runProcsCmd(t, sourceDir, targetDir, "-o", outDir, "--no-color")
	require.NoError(t, err)

	assert.Contains(t, output, "Skipping legacy.sql")

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	var tagged int
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "orders_comparison_summary_") {
			tagged++
		}
	}
	assert.Equal(t, 1, tagged, "expected a report tagged with the pair basename")
}

func TestProcsCommandIgnoreFile(t *testing.T) {
	dir := t.TempDir()
	sourcePath := filepath.Join(dir, "source.sql")
	targetPath := filepath.Join(dir, "target.sql")
	ignorePath := filepath.Join(dir, ".procdiffignore")
	outDir := filepath.Join(dir, "results")
	require.NoError(t, os.WriteFile(sourcePath, []byte(exportA), 0o644))
	require.NoError(t, os.WriteFile(targetPath, []byte(exportB), 0o644))
	require.NoError(t, os.WriteFile(ignorePath, []byte("[procedures]\npatterns = [\"sales.dbo.*\"]\n"), 0o644))

	output, err := runProcsCmd(t, sourcePath, targetPath,
		"-o", outDir, "--ignore-file", ignorePath, "--no-color")
	require.NoError(t, err)

	assert.Contains(t, output, "Found 0 stored procedures in source")
	assert.Contains(t, output, "All procedures match.")
}
