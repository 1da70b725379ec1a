package files

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/procdiff/procdiff/cmd/util"
	"github.com/procdiff/procdiff/internal/color"
	"github.com/procdiff/procdiff/internal/compare"
	"github.com/procdiff/procdiff/internal/logger"
	"github.com/procdiff/procdiff/internal/report"
	"github.com/procdiff/procdiff/internal/sourcefile"
	"github.com/procdiff/procdiff/internal/textfile"
)

var (
	outputDir    string
	pattern      string
	contextLines int
	encodings    []string
	noColor      bool
)

var FilesCmd = &cobra.Command{
	Use:   "files SOURCE TARGET",
	Short: "Compare source files as whole definitions",
	Long: `Compare source files between two environments. SOURCE and TARGET are two
files, or two directories whose files matching --pattern are compared by
basename in a single run.

Each file is treated as one definition: content is normalized before
comparison and structural metadata (imports, functions, classes) is
extracted so the reports can flag what kind of change happened.`,
	Args:         cobra.ExactArgs(2),
	RunE:         runFiles,
	SilenceUsage: true,
}

func init() {
	FilesCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory for reports (default: PROCDIFF_OUTPUT or current directory)")
	FilesCmd.Flags().StringVar(&pattern, "pattern", "*.py", "Filename glob applied in directory mode")
	FilesCmd.Flags().IntVar(&contextLines, "context", 0, "Unchanged context lines around each diff hunk")
	FilesCmd.Flags().StringArrayVar(&encodings, "encoding", nil, "Encoding fallback order (repeatable; default: utf-8-sig, utf-8, latin-1)")
	FilesCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

func runFiles(cmd *cobra.Command, args []string) error {
	sourcePath, targetPath := args[0], args[1]

	sourceInfo, err := os.Stat(sourcePath)
	if err != nil {
		return fmt.Errorf("source path %s: %w", sourcePath, err)
	}
	targetInfo, err := os.Stat(targetPath)
	if err != nil {
		return fmt.Errorf("target path %s: %w", targetPath, err)
	}
	if sourceInfo.IsDir() != targetInfo.IsDir() {
		return fmt.Errorf("SOURCE and TARGET must both be files or both be directories")
	}

	var source, target map[string]*sourcefile.File
	if sourceInfo.IsDir() {
		if source, err = loadDirectory(sourcePath); err != nil {
			return err
		}
		if target, err = loadDirectory(targetPath); err != nil {
			return err
		}
	} else {
		// Single-file mode keys both sides by the source basename so the
		// pair compares as one entity even when the target is named
		// differently.
		key := filepath.Base(sourcePath)
		if source, err = loadFile(sourcePath, key); err != nil {
			return err
		}
		if target, err = loadFile(targetPath, key); err != nil {
			return err
		}
	}

	result, err := compare.Run(sourcefile.Entities(source), sourcefile.Entities(target), compare.Options{
		QualifyLabels: true,
		Context:       contextLines,
	})
	if err != nil {
		return err
	}

	outDir := outputDir
	if outDir == "" {
		outDir = util.DefaultOutputDir()
	}
	writer := &report.Writer{
		Dir:         outDir,
		Tag:         "files_",
		Title:       "SOURCE FILE COMPARISON SUMMARY",
		DetailTitle: "DETAILED SOURCE FILE DIFFERENCES",
		Label:       "FILE",
		Noun:        "files",
	}
	artifacts, err := writer.Write(result)
	if err != nil {
		return err
	}

	printSummary(cmd, result, artifacts)
	return nil
}

func loadFile(path, key string) (map[string]*sourcefile.File, error) {
	content, err := textfile.Read(path, encodings)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return map[string]*sourcefile.File{
		key: sourcefile.Scan(filepath.Base(path), content),
	}, nil
}

// loadDirectory scans every file matching the glob. Files that cannot be
// read or decoded are skipped so one bad file does not abort the run.
func loadDirectory(dir string) (map[string]*sourcefile.File, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	files := make(map[string]*sourcefile.File, len(matches))
	for _, path := range matches {
		content, err := textfile.Read(path, encodings)
		if err != nil {
			logger.Get().Debug("skipping unreadable file", "path", path, "error", err)
			continue
		}
		base := filepath.Base(path)
		files[base] = sourcefile.Scan(base, content)
	}
	return files, nil
}

func printSummary(cmd *cobra.Command, result *compare.Result, artifacts *report.Artifacts) {
	c := color.New(!noColor)
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Found %d files in source\n", result.SourceTotal)
	fmt.Fprintf(out, "Found %d files in target\n", result.TargetTotal)
	if result.HasDifferences() {
		fmt.Fprintln(out, c.Missing(fmt.Sprintf("Files only in source: %d", len(result.OnlyInSource))))
		fmt.Fprintln(out, c.Extra(fmt.Sprintf("Files only in target: %d", len(result.OnlyInTarget))))
		fmt.Fprintln(out, c.Changed(fmt.Sprintf("Files with differences: %d", len(result.Changed))))
	} else {
		fmt.Fprintln(out, "All files match.")
	}
	fmt.Fprintln(out, "Reports generated:")
	fmt.Fprintf(out, "  - Summary: %s\n", artifacts.SummaryPath)
	if artifacts.DetailPath != "" {
		fmt.Fprintf(out, "  - Detailed differences: %s\n", artifacts.DetailPath)
	}
	fmt.Fprintf(out, "  - JSON results: %s\n", artifacts.JSONPath)
}
