package procs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/procdiff/procdiff/cmd/util"
	"github.com/procdiff/procdiff/internal/color"
	"github.com/procdiff/procdiff/internal/compare"
	"github.com/procdiff/procdiff/internal/export"
	"github.com/procdiff/procdiff/internal/ignore"
	"github.com/procdiff/procdiff/internal/logger"
	"github.com/procdiff/procdiff/internal/report"
	"github.com/procdiff/procdiff/internal/textfile"
)

var (
	outputDir     string
	pattern       string
	contextLines  int
	caseSensitive bool
	encodings     []string
	ignoreFile    string
	noColor       bool
)

// pairRuns limits how many export pairs compare concurrently in
// directory mode. Each pair is an independent run with its own tagged
// report files.
func pairRuns() int {
	return util.GetEnvIntWithDefault("PROCDIFF_CONCURRENCY", 4)
}

var ProcsCmd = &cobra.Command{
	Use:   "procs SOURCE TARGET",
	Short: "Compare stored-procedure export files",
	Long: `Compare two stored-procedure export files and report procedures that are
missing, extra, or changed. SOURCE and TARGET are export files, or two
directories whose export files are paired by basename (one comparison run
per pair).

Definitions are normalized (comments, whitespace, and casing removed)
before comparison, so only real changes are reported. Each run writes a
summary, a detailed unified-diff report when definitions changed, and a
JSON results file.`,
	Args:         cobra.ExactArgs(2),
	RunE:         runProcs,
	SilenceUsage: true,
}

func init() {
	ProcsCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory for reports (default: PROCDIFF_OUTPUT or current directory)")
	ProcsCmd.Flags().StringVar(&pattern, "pattern", "*.sql", "Filename glob used to pair export files in directory mode")
	ProcsCmd.Flags().IntVar(&contextLines, "context", 0, "Unchanged context lines around each diff hunk")
	ProcsCmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "Match qualified names case-sensitively")
	ProcsCmd.Flags().StringArrayVar(&encodings, "encoding", nil, "Encoding fallback order (repeatable; default: utf-8-sig, utf-8, latin-1)")
	ProcsCmd.Flags().StringVar(&ignoreFile, "ignore-file", ignore.FileName, "Path to the TOML ignore file")
	ProcsCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

// pair is one source/target comparison run. Tag prefixes report names so
// concurrent runs never collide.
type pair struct {
	Source string
	Target string
	Tag    string
}

func runProcs(cmd *cobra.Command, args []string) error {
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

	ignoreCfg, err := ignore.Load(ignoreFile)
	if err != nil {
		return err
	}

	outDir := outputDir
	if outDir == "" {
		outDir = util.DefaultOutputDir()
	}

	if sourceInfo.IsDir() {
		return compareDirectories(cmd, sourcePath, targetPath, outDir, ignoreCfg)
	}
	return comparePair(cmd, pair{Source: sourcePath, Target: targetPath}, outDir, ignoreCfg)
}

func comparePair(cmd *cobra.Command, p pair, outDir string, ignoreCfg *ignore.Config) error {
	sourceText, err := textfile.Read(p.Source, encodings)
	if err != nil {
		return fmt.Errorf("failed to read source export: %w", err)
	}
	targetText, err := textfile.Read(p.Target, encodings)
	if err != nil {
		return fmt.Errorf("failed to read target export: %w", err)
	}

	opts := export.Options{CaseSensitiveKeys: caseSensitive}
	sourceProcs := export.Parse(sourceText, opts)
	targetProcs := export.Parse(targetText, opts)
	filterIgnored(sourceProcs, ignoreCfg)
	filterIgnored(targetProcs, ignoreCfg)

	logger.Get().Debug("parsed exports",
		"source", p.Source, "source_procs", len(sourceProcs),
		"target", p.Target, "target_procs", len(targetProcs))

	result, err := compare.Run(export.Entities(sourceProcs), export.Entities(targetProcs), compare.Options{Context: contextLines})
	if err != nil {
		return err
	}

	writer := &report.Writer{
		Dir:         outDir,
		Tag:         p.Tag,
		Title:       "STORED PROCEDURE COMPARISON SUMMARY",
		DetailTitle: "DETAILED PROCEDURE DIFFERENCES",
		Label:       "PROCEDURE",
		Noun:        "procedures",
	}
	artifacts, err := writer.Write(result)
	if err != nil {
		return err
	}

	printSummary(cmd, p, result, artifacts)
	return nil
}

func compareDirectories(cmd *cobra.Command, sourceDir, targetDir, outDir string, ignoreCfg *ignore.Config) error {
	pairs, unmatched, err := matchPairs(sourceDir, targetDir, pattern)
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		return fmt.Errorf("no export files matching %q present in both directories", pattern)
	}
	for _, name := range unmatched {
		fmt.Fprintf(cmd.OutOrStdout(), "Skipping %s: present in only one directory\n", name)
	}

	var g errgroup.Group
	g.SetLimit(pairRuns())
	for _, p := range pairs {
		p := p
		g.Go(func() error {
			return comparePair(cmd, p, outDir, ignoreCfg)
		})
	}
	return g.Wait()
}

// matchPairs pairs export files in two directories by basename.
func matchPairs(sourceDir, targetDir, glob string) ([]pair, []string, error) {
	sourceFiles, err := filepath.Glob(filepath.Join(sourceDir, glob))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid pattern %q: %w", glob, err)
	}
	targetFiles, err := filepath.Glob(filepath.Join(targetDir, glob))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid pattern %q: %w", glob, err)
	}

	targetByBase := make(map[string]string, len(targetFiles))
	for _, f := range targetFiles {
		targetByBase[filepath.Base(f)] = f
	}

	var pairs []pair
	var unmatched []string
	matched := make(map[string]bool)
	for _, f := range sourceFiles {
		base := filepath.Base(f)
		target, ok := targetByBase[base]
		if !ok {
			unmatched = append(unmatched, base)
			continue
		}
		matched[base] = true
		pairs = append(pairs, pair{
			Source: f,
			Target: target,
			Tag:    strings.TrimSuffix(base, filepath.Ext(base)) + "_",
		})
	}
	for base := range targetByBase {
		if !matched[base] {
			unmatched = append(unmatched, base)
		}
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Source < pairs[j].Source })
	sort.Strings(unmatched)
	return pairs, unmatched, nil
}

func filterIgnored(procs map[string]*export.Procedure, cfg *ignore.Config) {
	if cfg == nil {
		return
	}
	for key, proc := range procs {
		if cfg.Match(proc.QualifiedName()) {
			logger.Get().Debug("ignoring procedure", "name", proc.QualifiedName())
			delete(procs, key)
		}
	}
}

// printMu keeps per-pair console summaries from interleaving in
// directory mode.
var printMu sync.Mutex

func printSummary(cmd *cobra.Command, p pair, result *compare.Result, artifacts *report.Artifacts) {
	c := color.New(!noColor)

	printMu.Lock()
	defer printMu.Unlock()

	out := cmd.OutOrStdout()
	if p.Tag != "" {
		fmt.Fprintln(out, c.Bold(fmt.Sprintf("%s vs %s", p.Source, p.Target)))
	}
	fmt.Fprintf(out, "Found %d stored procedures in source\n", result.SourceTotal)
	fmt.Fprintf(out, "Found %d stored procedures in target\n", result.TargetTotal)
	if result.HasDifferences() {
		fmt.Fprintln(out, c.Missing(fmt.Sprintf("Procedures only in source: %d", len(result.OnlyInSource))))
		fmt.Fprintln(out, c.Extra(fmt.Sprintf("Procedures only in target: %d", len(result.OnlyInTarget))))
		fmt.Fprintln(out, c.Changed(fmt.Sprintf("Procedures with differences: %d", len(result.Changed))))
	} else {
		fmt.Fprintln(out, "All procedures match.")
	}
	fmt.Fprintln(out, "Reports generated:")
	fmt.Fprintf(out, "  - Summary: %s\n", artifacts.SummaryPath)
	if artifacts.DetailPath != "" {
		fmt.Fprintf(out, "  - Detailed differences: %s\n", artifacts.DetailPath)
	}
	fmt.Fprintf(out, "  - JSON results: %s\n", artifacts.JSONPath)
}
