package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/user/netkit/internal/model"
	"github.com/user/netkit/internal/toolkit"
)

var (
	wolBroadcast string
	wolPort      int
)

var subnetCmd = &cobra.Command{
	Use:   "subnet <cidr>",
	Short: "Calculate IPv4 subnet details",
	Long: `Break an IPv4 CIDR block down into its network, broadcast and host range.

Examples:
  netkit subnet 192.168.1.0/24
  netkit subnet 10.0.0.0/30 -q .info.usableHosts`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tk, _, done := newToolkit()
		defer done()

		return emit(cmd.OutOrStdout(), tk.CalculateSubnet(toolkit.SubnetParams{CIDR: args[0]}))
	},
}

var wolCmd = &cobra.Command{
	Use:   "wol <mac>",
	Short: "Send a Wake-on-LAN magic packet",
	Long: `Broadcast a Wake-on-LAN magic packet for a MAC address. Success means the
packet was sent; whether the machine wakes cannot be confirmed.

Examples:
  netkit wol AA:BB:CC:DD:EE:FF
  netkit wol aa-bb-cc-dd-ee-ff --broadcast 192.168.1.255 --port 7`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tk, _, done := newToolkit()
		defer done()

		params := toolkit.WakeOnLANParams{MAC: args[0], Broadcast: wolBroadcast, Port: wolPort}
		return emit(cmd.OutOrStdout(), tk.WakeOnLAN(cmd.Context(), params))
	},
}

var ifacesCmd = &cobra.Command{
	Use:   "ifaces",
	Short: "List local network interfaces",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tk, _, done := newToolkit()
		defer done()

		return emit(cmd.OutOrStdout(), tk.Interfaces())
	},
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Check which external tools are installed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tk, _, done := newToolkit()
		defer done()

		return run(cmd, "Checking tools", func(ctx context.Context) model.ToolsResult {
			return tk.Tools(ctx)
		})
	},
}

func init() {
	wolCmd.Flags().StringVarP(&wolBroadcast, "broadcast", "b", "", "broadcast address (default from config)")
	wolCmd.Flags().IntVarP(&wolPort, "port", "p", 0, "UDP port (default from config)")
}
