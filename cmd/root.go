package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/procdiff/procdiff/cmd/files"
	"github.com/procdiff/procdiff/cmd/procs"
	"github.com/procdiff/procdiff/internal/logger"
	"github.com/procdiff/procdiff/internal/version"
)

var Debug bool

var RootCmd = &cobra.Command{
	Use:   "procdiff",
	Short: "Compare database object exports between environments",
	Long: fmt.Sprintf(`procdiff compares two snapshots of database stored-procedure definitions
and reports procedures that are missing, extra, or textually changed.

Version: %s@%s %s %s

Commands:
  procs   Compare stored-procedure export files
  files   Compare source files as whole definitions

Use "procdiff [command] --help" for more information about a command.`,
		version.Version(), version.GitCommit, version.Platform(), version.BuildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "Enable debug logging")
	RootCmd.AddCommand(procs.ProcsCmd)
	RootCmd.AddCommand(files.FilesCmd)
	RootCmd.AddCommand(VersionCmd)
}

func setupLogger() {
	level := slog.LevelInfo
	if Debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	logger.SetGlobal(slog.New(handler))
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
