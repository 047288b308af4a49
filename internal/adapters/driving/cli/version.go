package cli

import (
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("treeutils version %s\n", version)
		if gitCommit != "" {
			cmd.Printf("commit %s (%s)\n", gitCommit, gitURL)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
