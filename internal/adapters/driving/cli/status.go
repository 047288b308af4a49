package cli

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show service status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	svc, err := requireTreeService()
	if err != nil {
		return err
	}

	status := svc.Status(cmd.Context())
	cmd.Printf("State:   %s\n", status.State)
	if status.Message != "" {
		cmd.Printf("Message: %s\n", status.Message)
	}
	cmd.Printf("Version: %s\n", status.Version)
	if status.GitCommitHash != "" {
		cmd.Printf("Commit:  %s\n", status.GitCommitHash)
	}
	if status.GitURL != "" {
		cmd.Printf("Source:  %s\n", status.GitURL)
	}
	return nil
}
