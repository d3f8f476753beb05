package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/user/netkit/internal/model"
	"github.com/user/netkit/internal/toolkit"
)

var (
	pingCount   int
	pingTimeout int
	traceHops   int
)

var pingCmd = &cobra.Command{
	Use:   "ping <host>",
	Short: "Ping a host with the system ping",
	Long: `Send ICMP echo requests through the system ping binary and summarize
packet loss and round-trip times.

Examples:
  netkit ping example.com
  netkit ping 10.0.0.1 --count 10 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tk, _, done := newToolkit()
		defer done()

		params := toolkit.PingParams{Host: args[0], Count: pingCount, TimeoutMs: pingTimeout}
		return run(cmd, "Pinging "+args[0], func(ctx context.Context) model.PingResult {
			return tk.Ping(ctx, params)
		})
	},
}

var traceCmd = &cobra.Command{
	Use:     "trace <host>",
	Aliases: []string{"traceroute"},
	Short:   "Trace the route to a host",
	Long: `Trace the network path to a host with the system traceroute (tracert on
Windows). Use -o markdown for a Mermaid diagram of the path.

Examples:
  netkit trace example.com
  netkit trace 8.8.8.8 --max-hops 15 -o markdown`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tk, _, done := newToolkit()
		defer done()

		params := toolkit.TracerouteParams{Host: args[0], MaxHops: traceHops}
		return run(cmd, "Tracing route to "+args[0], func(ctx context.Context) model.TracerouteResult {
			return tk.Traceroute(ctx, params)
		})
	},
}

func init() {
	pingCmd.Flags().IntVarP(&pingCount, "count", "c", 0, "echo requests to send (default from config)")
	pingCmd.Flags().IntVarP(&pingTimeout, "timeout", "t", 0, "per-reply timeout in milliseconds (default from config)")

	traceCmd.Flags().IntVarP(&traceHops, "max-hops", "m", 0, "maximum number of hops (default from config)")
}
