// Package report renders netkit results and journal summaries as Markdown.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/user/netkit/internal/model"
)

// Markdown renders a result record. Records without a dedicated layout are
// rendered as fenced JSON.
func Markdown(v interface{}) string {
	switch r := v.(type) {
	case model.TracerouteResult:
		return tracerouteMarkdown(r)
	case model.PortScanResult:
		return portScanMarkdown(r)
	case model.NetworkScanResult:
		return networkScanMarkdown(r)
	case model.SSLCertificateInfo:
		return certificateMarkdown(r)
	case model.PingResult:
		return pingMarkdown(r)
	default:
		return jsonMarkdown(v)
	}
}

func tracerouteMarkdown(r model.TracerouteResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Traceroute to %s\n\n", r.Host))
	writeFailure(&sb, r.Success, r.Error)
	if len(r.Hops) == 0 {
		return sb.String()
	}

	sb.WriteString(TracerouteDiagram(r))
	sb.WriteString("\n| Hop | Host | IP | Avg (ms) |\n")
	sb.WriteString("|-----|------|----|----------|\n")
	for _, hop := range r.Hops {
		avg := "*"
		if !hop.Timeout {
			avg = fmt.Sprintf("%.2f", hop.AvgTime)
		}
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n", hop.Hop, cell(hop.Host), cell(hop.IP), avg))
	}
	return sb.String()
}

func portScanMarkdown(r model.PortScanResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Port scan of %s\n\n", r.Host))
	writeFailure(&sb, r.Success, r.Error)

	sb.WriteString(fmt.Sprintf("Scanned %d ports in %d ms: %d open, %d closed, %d filtered.\n\n",
		r.TotalPorts, r.ScanTimeMs, len(r.OpenPorts), len(r.ClosedPorts), len(r.FilteredPorts)))
	if len(r.OpenPorts) == 0 {
		return sb.String()
	}

	sb.WriteString("| Port | Service |\n")
	sb.WriteString("|------|---------|\n")
	for _, p := range r.OpenPorts {
		sb.WriteString(fmt.Sprintf("| %d | %s |\n", p.Port, p.Service))
	}
	return sb.String()
}

func networkScanMarkdown(r model.NetworkScanResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Network scan of %s\n\n", r.Subnet))
	writeFailure(&sb, r.Success, r.Error)
	if !r.Success {
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("%d of %d hosts responded in %d ms.\n\n", len(r.Hosts), r.ScannedCount, r.ScanTimeMs))
	if len(r.Hosts) == 0 {
		return sb.String()
	}

	sb.WriteString("| IP | Hostname | Response (ms) |\n")
	sb.WriteString("|----|----------|---------------|\n")
	for _, h := range r.Hosts {
		sb.WriteString(fmt.Sprintf("| %s | %s | %.2f |\n", h.IP, cell(h.Hostname), h.ResponseTimeMs))
	}
	return sb.String()
}

func certificateMarkdown(r model.SSLCertificateInfo) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Certificate for %s:%d\n\n", r.Host, r.Port))
	writeFailure(&sb, r.Success, r.Error)
	if !r.Success {
		return sb.String()
	}

	valid := "yes"
	if !r.IsValid {
		valid = "no (" + r.AuthorizationError + ")"
	}
	rows := [][2]string{
		{"Subject", r.Subject.CommonName},
		{"Issuer", r.Issuer.CommonName},
		{"Valid from", r.ValidFrom.Format("2006-01-02 15:04 MST")},
		{"Valid to", r.ValidTo.Format("2006-01-02 15:04 MST")},
		{"Days until expiry", fmt.Sprintf("%d", r.DaysUntilExpiry)},
		{"Trusted", valid},
		{"Protocol", r.Protocol},
		{"Cipher", r.Cipher},
		{"Serial", r.SerialNumber},
		{"SHA-256", r.Fingerprint256},
		{"Alt names", strings.Join(r.SubjectAltNames, ", ")},
	}
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", row[0], cell(row[1])))
	}

	if len(r.Chain) > 0 {
		sb.WriteString("\n## Chain\n\n")
		for i, link := range r.Chain {
			sb.WriteString(fmt.Sprintf("%d. %s (issued by %s)\n", i+1, link.Subject.CommonName, link.Issuer.CommonName))
		}
	}
	return sb.String()
}

func pingMarkdown(r model.PingResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Ping %s\n\n", r.Host))
	writeFailure(&sb, r.Success, r.Error)

	sb.WriteString(fmt.Sprintf("%d sent, %d received, %d%% loss.\n", r.Sent, r.Received, r.LossPercent))
	if r.Received > 0 {
		sb.WriteString(fmt.Sprintf("\nRTT min/avg/max: %.3f / %.3f / %.3f ms\n", r.Min, r.Avg, r.Max))
	}
	return sb.String()
}

func jsonMarkdown(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("Failed to render result: %v\n", err)
	}
	return "```json\n" + string(data) + "\n```\n"
}

func writeFailure(sb *strings.Builder, success bool, errMsg string) {
	if !success && errMsg != "" {
		sb.WriteString(fmt.Sprintf("> **Error:** %s\n\n", errMsg))
	}
}

// cell escapes a value for use inside a Markdown table.
func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", "\\|")
}
