// Package cli implements the treeutils command line.
//
// Commands share a single tree service. It is built lazily from the
// configuration file the first time a command needs it, so commands
// such as version and validate run without any backend configured.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/treeutils/internal/core/ports/driving"
	"github.com/custodia-labs/treeutils/internal/logger"
)

// Build information, set via -ldflags at release time.
var (
	version   = "dev"
	gitURL    = ""
	gitCommit = ""
)

// Global flags.
var (
	configPath string
	verbose    bool
)

var (
	// treeService is shared by all commands. Tests assign it directly.
	treeService driving.TreeService

	// closeTreeService releases the backend behind treeService.
	// It is nil when the service was not built from configuration.
	closeTreeService func() error
)

var rootCmd = &cobra.Command{
	Use:   "treeutils",
	Short: "Fetch, validate, save and export phylogenetic trees",
	Long: `treeutils stores and retrieves phylogenetic tree objects held as newick
strings, and exports them as newick files.

Trees live in a workspace backend: the remote KBase Workspace service, a
local SQLite database, or process memory. The backend and its endpoints are
read from ~/.treeutils/config.toml; SDK_CALLBACK_URL, KB_AUTH_TOKEN and
KBASE_WORKSPACE_URL override the file.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return releaseTreeService()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.treeutils/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// requireTreeService returns the shared tree service, building it from
// configuration on first use.
func requireTreeService() (driving.TreeService, error) {
	if treeService != nil {
		return treeService, nil
	}

	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	svc, closer, err := buildTreeService(settings)
	if err != nil {
		return nil, err
	}

	treeService = svc
	closeTreeService = closer
	return treeService, nil
}

// releaseTreeService closes a service built from configuration.
// Injected services are left alone.
func releaseTreeService() error {
	if closeTreeService == nil {
		return nil
	}
	err := closeTreeService()
	treeService = nil
	closeTreeService = nil
	return err
}
