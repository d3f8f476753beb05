package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/netkit/internal/web"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the operations as a JSON API",
	Long: `Start an HTTP server exposing every operation as a JSON endpoint.

Endpoints:
  POST /api/{operation}   run an operation; the body holds its parameters
  GET  /api/operations    list operation names
  GET  /api/tools         external tool availability
  GET  /api/history       journaled results (?limit=, ?operation=)
  GET  /api/report        Markdown report of the journal (?since=24h)
  GET  /api/status        version, uptime and journal size

Examples:
  netkit serve
  netkit serve --port 9090`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		port := servePort
		if port == 0 {
			port = cfg.WebPort
		}

		tk, history, done := newToolkit()
		defer done()

		fmt.Printf("Starting API server on http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")

		srv := web.NewServer(tk, history, cfg, port)
		return srv.Start(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "web server port (default from config)")
}
