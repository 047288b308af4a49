package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/treeutils/internal/adapters/driving/rpc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON-RPC server",
	Long: `Start the JSON-RPC 1.1 server. Calls are POSTed to / as
{"version":"1.1","method":"TreeUtils.<name>","params":[{...}],"id":"..."}.
The Authorization header is passed on to the workspace backend.
Prometheus metrics are served at /metrics.`,
	RunE: runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default server.addr or :5000)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr := serveAddr
	if addr == "" {
		s, err := loadSettings()
		if err != nil {
			return err
		}
		addr = s.Addr
	}

	svc, err := requireTreeService()
	if err != nil {
		return err
	}

	server, err := rpc.NewServer(svc)
	if err != nil {
		return err
	}
	return server.Run(cmd.Context(), addr)
}
