package main

import (
	"context"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/user/netkit/internal/model"
	"github.com/user/netkit/internal/toolkit"
)

var (
	dnsType string
	tlsPort int
)

var dnsCmd = &cobra.Command{
	Use:   "dns <domain>",
	Short: "Look up DNS records",
	Long: `Resolve DNS records of one type (A, AAAA, MX, TXT, NS, SOA, CNAME, SRV) or
ALL, which combines A, AAAA, MX, NS and TXT.

Examples:
  netkit dns example.com
  netkit dns example.com --type MX
  netkit dns example.com -t ALL -q '.records[].value'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tk, _, done := newToolkit()
		defer done()

		params := toolkit.DNSParams{Domain: args[0], Type: dnsType}
		return run(cmd, "Resolving "+args[0], func(ctx context.Context) model.DNSResult {
			return tk.LookupDNS(ctx, params)
		})
	},
}

var rdnsCmd = &cobra.Command{
	Use:   "rdns <ip>",
	Short: "Reverse-resolve an IP address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tk, _, done := newToolkit()
		defer done()

		return run(cmd, "Resolving "+args[0], func(ctx context.Context) model.ReverseDNSResult {
			return tk.ReverseDNS(ctx, toolkit.ReverseDNSParams{IP: args[0]})
		})
	},
}

var certCmd = &cobra.Command{
	Use:   "cert <host[:port]>",
	Short: "Inspect a TLS certificate",
	Long: `Fetch the certificate a TLS server presents, including expired or
untrusted ones, and report its validity, chain and fingerprints.

Examples:
  netkit cert example.com
  netkit cert mail.example.com:993`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tk, _, done := newToolkit()
		defer done()

		params := toolkit.TLSParams{Host: args[0], Port: tlsPort}
		if host, port, ok := splitHostPort(args[0]); ok {
			params.Host, params.Port = host, port
		}
		return run(cmd, "Inspecting "+args[0], func(ctx context.Context) model.SSLCertificateInfo {
			return tk.InspectTLS(ctx, params)
		})
	},
}

var headersCmd = &cobra.Command{
	Use:   "headers <url>",
	Short: "Show HTTP response headers",
	Long: `Send a HEAD request and list the response headers, flagging missing
security headers. Redirects are reported, not followed.

Examples:
  netkit headers example.com
  netkit headers http://localhost:8080/health`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tk, _, done := newToolkit()
		defer done()

		return run(cmd, "Requesting "+args[0], func(ctx context.Context) model.HTTPHeadersResult {
			return tk.HTTPHeaders(ctx, toolkit.HTTPHeadersParams{URL: args[0]})
		})
	},
}

var whoisCmd = &cobra.Command{
	Use:   "whois <domain>",
	Short: "Query domain registration data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tk, _, done := newToolkit()
		defer done()

		return run(cmd, "Querying WHOIS for "+args[0], func(ctx context.Context) model.WhoisResult {
			return tk.Whois(ctx, toolkit.WhoisParams{Domain: args[0]})
		})
	},
}

func init() {
	dnsCmd.Flags().StringVarP(&dnsType, "type", "t", "A", "record type (A, AAAA, MX, TXT, NS, SOA, CNAME, SRV, ALL)")
	certCmd.Flags().IntVarP(&tlsPort, "port", "p", 443, "TLS port")
}

// splitHostPort splits host:port or [v6]:port; a bare host is not split.
func splitHostPort(s string) (string, int, bool) {
	host, p, err := net.SplitHostPort(s)
	if err != nil {
		return "", 0, false
	}
	port, err := strconv.Atoi(p)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, false
	}
	return host, port, true
}
