package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/navfolio/internal/common"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		common.LoadVersionFromFile()
		fmt.Fprintf(cmd.OutOrStdout(), "navfolio %s %s/%s\n\nBuild: %s\nCommit: %s\nBuilt with: %s\n",
			common.GetVersion(), runtime.GOOS, runtime.GOARCH,
			common.GetBuild(), common.GetGitCommit(), runtime.Version())
	},
}
