package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/procdiff/procdiff/internal/version"
)

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display the version number of procdiff",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "procdiff v%s@%s %s %s\n",
			version.Version(), version.GitCommit, version.Platform(), version.BuildDate)
	},
}
