package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/user/netkit/internal/model"
	"github.com/user/netkit/internal/toolkit"
)

var (
	scanPorts    string
	scanTimeout  int
	sweepTimeout int
)

var portsCmd = &cobra.Command{
	Use:   "ports <host>",
	Short: "Scan TCP ports on a host",
	Long: `Classify TCP ports as open, closed or filtered with plain connect probes.
Without --ports the well-known service ports are scanned.

Examples:
  netkit ports 192.168.1.10
  netkit ports example.com --ports 22,80,443,8000-8100`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tk, _, done := newToolkit()
		defer done()

		params := toolkit.PortScanParams{Host: args[0], Ports: toolkit.PortSpec{Spec: scanPorts}, TimeoutMs: scanTimeout}
		return run(cmd, "Scanning ports on "+args[0], func(ctx context.Context) model.PortScanResult {
			return tk.ScanPorts(ctx, params)
		})
	},
}

var discoverCmd = &cobra.Command{
	Use:   "discover <cidr>",
	Short: "Find live hosts in a subnet",
	Long: `Sweep every host address of a subnet (at most 1024 addresses) with a TCP
connect to port 80. A refused connection also counts as alive. Hosts that
silently drop port 80 are not found.

Examples:
  netkit discover 192.168.1.0/24`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tk, _, done := newToolkit()
		defer done()

		params := toolkit.NetworkScanParams{Subnet: args[0], TimeoutMs: sweepTimeout}
		return run(cmd, "Sweeping "+args[0], func(ctx context.Context) model.NetworkScanResult {
			return tk.ScanNetwork(ctx, params)
		})
	},
}

func init() {
	portsCmd.Flags().StringVarP(&scanPorts, "ports", "p", "", "ports to scan, e.g. 22,80,1000-2000")
	portsCmd.Flags().IntVarP(&scanTimeout, "timeout", "t", 0, "per-port timeout in milliseconds (default from config)")

	discoverCmd.Flags().IntVarP(&sweepTimeout, "timeout", "t", 0, "per-host timeout in milliseconds (default from config)")
}
