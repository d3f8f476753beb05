package tui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/user/netkit/internal/model"
)

const sectionWidth = 64

// Render formats a result record for a terminal.
func Render(v interface{}) string {
	switch r := v.(type) {
	case model.PingResult:
		return renderPing(r)
	case model.TracerouteResult:
		return renderTraceroute(r)
	case model.PortScanResult:
		return renderPortScan(r)
	case model.DNSResult:
		return renderDNS(r)
	case model.ReverseDNSResult:
		return section("Reverse DNS", failure(r.Success, r.Error)+
			field("IP", r.IP)+field("Hostnames", strings.Join(r.Hostnames, ", ")))
	case model.SSLCertificateInfo:
		return renderCertificate(r)
	case model.WhoisResult:
		return renderWhois(r)
	case model.HTTPHeadersResult:
		return renderHeaders(r)
	case model.SubnetResult:
		return renderSubnet(r)
	case model.WakeOnLANResult:
		return section("Wake-on-LAN", failure(r.Success, r.Error)+
			field("MAC", r.MAC)+field("Sent to", fmt.Sprintf("%s:%d", r.Broadcast, r.Port))+
			field("Status", RenderStatus(r.Success, "magic packet sent", "not sent")))
	case model.NetworkScanResult:
		return renderNetworkScan(r)
	case model.InterfacesResult:
		return renderInterfaces(r)
	case model.ToolsResult:
		return renderTools(r)
	case []model.HistoryEntry:
		return renderHistory(r)
	default:
		data, _ := json.MarshalIndent(v, "", "  ")
		return string(data) + "\n"
	}
}

func section(title, content string) string {
	return SectionStyle.Width(sectionWidth).Render(
		SectionTitleStyle.Render(title)+"\n"+strings.TrimRight(content, "\n")) + "\n"
}

func field(label, value string) string {
	if value == "" {
		value = DimStyle.Render("-")
	} else {
		value = ValueStyle.Render(value)
	}
	return LabelStyle.Render(label+":") + " " + value + "\n"
}

func failure(success bool, errMsg string) string {
	if success || errMsg == "" {
		return ""
	}
	return ErrorStyle.Render("✗ "+errMsg) + "\n\n"
}

func renderPing(r model.PingResult) string {
	var sb strings.Builder
	sb.WriteString(failure(r.Success, r.Error))
	sb.WriteString(field("Host", r.Host))
	sb.WriteString(field("Packets", fmt.Sprintf("%d sent, %d received, %d lost", r.Sent, r.Received, r.Lost)))
	sb.WriteString(LabelStyle.Render("Loss:") + " " + RenderBar(r.LossPercent, 100, 20) +
		fmt.Sprintf(" %d%%\n", r.LossPercent))
	if r.Received > 0 {
		sb.WriteString(field("RTT", fmt.Sprintf("min %.3f / avg %.3f / max %.3f ms", r.Min, r.Avg, r.Max)))
	}
	return section("Ping", sb.String())
}

func renderTraceroute(r model.TracerouteResult) string {
	var sb strings.Builder
	sb.WriteString(failure(r.Success, r.Error))
	sb.WriteString(field("Target", r.Host))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%-4s %-30s %-16s %s\n", "Hop", "Host", "IP", "Avg"))
	sb.WriteString(strings.Repeat("─", 60) + "\n")
	for _, hop := range r.Hops {
		if hop.Timeout {
			sb.WriteString(DimStyle.Render(fmt.Sprintf("%-4d %-30s", hop.Hop, "* * *")) + "\n")
			continue
		}
		sb.WriteString(fmt.Sprintf("%-4d %-30s %-16s %.2f ms\n", hop.Hop, truncate(hop.Host, 28), hop.IP, hop.AvgTime))
	}
	return section("Traceroute", sb.String())
}

func renderPortScan(r model.PortScanResult) string {
	var sb strings.Builder
	sb.WriteString(failure(r.Success, r.Error))
	sb.WriteString(field("Host", r.Host))
	sb.WriteString(field("Ports", fmt.Sprintf("%d scanned in %d ms", r.TotalPorts, r.ScanTimeMs)))
	sb.WriteString(field("Summary", fmt.Sprintf("%d open, %d closed, %d filtered",
		len(r.OpenPorts), len(r.ClosedPorts), len(r.FilteredPorts))))
	if len(r.OpenPorts) > 0 {
		sb.WriteString("\n")
		for _, p := range r.OpenPorts {
			sb.WriteString(SuccessStyle.Render(fmt.Sprintf("%6d/tcp", p.Port)) + "  " + p.Service + "\n")
		}
	}
	return section("Port scan", sb.String())
}

func renderDNS(r model.DNSResult) string {
	var sb strings.Builder
	sb.WriteString(failure(r.Success, r.Error))
	sb.WriteString(field("Domain", r.Domain))
	sb.WriteString(field("Query", fmt.Sprintf("%s in %d ms", r.Type, r.QueryTimeMs)))
	if len(r.Records) > 0 {
		sb.WriteString("\n")
	}
	for _, rec := range r.Records {
		var value string
		switch rr := rec.(type) {
		case model.ValueRecord:
			value = rr.Value
		case model.MXRecord:
			value = fmt.Sprintf("%d %s", rr.Priority, rr.Value)
		case model.SRVRecord:
			value = fmt.Sprintf("%d %d %d %s", rr.Priority, rr.Weight, rr.Port, rr.Value)
		case model.SOARecord:
			value = fmt.Sprintf("%s %s %d %d %d %d %d", rr.NSName, rr.Hostmaster, rr.Serial, rr.Refresh, rr.Retry, rr.Expire, rr.MinTTL)
		}
		sb.WriteString(fmt.Sprintf("%-6s %s\n", ValueStyle.Render(string(rec.RecordType())), value))
	}
	return section("DNS", sb.String())
}

func renderCertificate(r model.SSLCertificateInfo) string {
	var sb strings.Builder
	sb.WriteString(failure(r.Success, r.Error))
	sb.WriteString(field("Endpoint", fmt.Sprintf("%s:%d", r.Host, r.Port)))
	if !r.Success {
		return section("TLS certificate", sb.String())
	}

	sb.WriteString(field("Subject", r.Subject.CommonName))
	sb.WriteString(field("Issuer", r.Issuer.CommonName))
	sb.WriteString(field("Valid", r.ValidFrom.Format("2006-01-02")+" → "+r.ValidTo.Format("2006-01-02")))

	expiry := fmt.Sprintf("%d days", r.DaysUntilExpiry)
	switch {
	case r.DaysUntilExpiry < 0:
		expiry = ErrorStyle.Render("expired " + fmt.Sprintf("%d days ago", -r.DaysUntilExpiry))
	case r.DaysUntilExpiry < 30:
		expiry = WarningStyle.Render(expiry)
	}
	sb.WriteString(LabelStyle.Render("Expires in:") + " " + expiry + "\n")
	sb.WriteString(LabelStyle.Render("Trusted:") + " " + RenderStatus(r.IsValid, "yes", r.AuthorizationError) + "\n")
	sb.WriteString(field("Protocol", r.Protocol+" "+r.Cipher))
	sb.WriteString(field("SHA-256", r.Fingerprint256))
	sb.WriteString(field("Alt names", strings.Join(r.SubjectAltNames, ", ")))
	for i, link := range r.Chain {
		sb.WriteString(DimStyle.Render(fmt.Sprintf("%s%s", strings.Repeat("  ", i), link.Subject.CommonName)) + "\n")
	}
	return section("TLS certificate", sb.String())
}

func renderWhois(r model.WhoisResult) string {
	var sb strings.Builder
	sb.WriteString(failure(r.Success, r.Error))
	p := r.Parsed
	sb.WriteString(field("Domain", r.Domain))
	sb.WriteString(field("Registrar", p.Registrar))
	sb.WriteString(field("Registrant", strings.TrimSpace(p.RegistrantName+" "+p.RegistrantOrg)))
	sb.WriteString(field("Created", p.CreationDate))
	sb.WriteString(field("Updated", p.UpdatedDate))
	sb.WriteString(field("Expires", p.ExpirationDate))
	sb.WriteString(field("Name servers", strings.Join(p.NameServers, ", ")))
	for _, s := range p.Status {
		sb.WriteString(field("Status", s))
	}
	return section("WHOIS", sb.String())
}

func renderHeaders(r model.HTTPHeadersResult) string {
	var sb strings.Builder
	sb.WriteString(failure(r.Success, r.Error))
	sb.WriteString(field("URL", r.URL))
	if !r.Success {
		return section("HTTP headers", sb.String())
	}
	sb.WriteString(field("Status", fmt.Sprintf("%d %s in %d ms", r.StatusCode, r.StatusMessage, r.Timing.ResponseTimeMs)))

	sb.WriteString("\n")
	for _, name := range sortedNames(r.SecurityHeaders) {
		ok := r.SecurityHeaders[name] != nil
		sb.WriteString(RenderStatus(ok, name, name+" missing") + "\n")
	}

	sb.WriteString("\n")
	for _, name := range sortedNames(r.Headers) {
		sb.WriteString(DimStyle.Render(name+":") + " " + r.Headers[name] + "\n")
	}
	return section("HTTP headers", sb.String())
}

func renderSubnet(r model.SubnetResult) string {
	var sb strings.Builder
	sb.WriteString(failure(r.Success, r.Error))
	sb.WriteString(field("CIDR", r.CIDR))
	if i := r.Info; i != nil {
		private := "no"
		if i.IsPrivate {
			private = "yes"
		}
		sb.WriteString(field("Network", i.NetworkAddress))
		sb.WriteString(field("Broadcast", i.BroadcastAddress))
		sb.WriteString(field("Mask", fmt.Sprintf("%s (/%d)", i.SubnetMask, i.Prefix)))
		sb.WriteString(field("Wildcard", i.WildcardMask))
		sb.WriteString(field("Binary", i.BinaryMask))
		sb.WriteString(field("Hosts", i.FirstHost+" - "+i.LastHost))
		sb.WriteString(field("Usable", fmt.Sprintf("%d of %d", i.UsableHosts, i.TotalHosts)))
		sb.WriteString(field("Class", i.IPClass))
		sb.WriteString(field("Private", private))
	}
	return section("Subnet", sb.String())
}

func renderNetworkScan(r model.NetworkScanResult) string {
	var sb strings.Builder
	sb.WriteString(failure(r.Success, r.Error))
	sb.WriteString(field("Subnet", r.Subnet))
	if !r.Success {
		return section("Discovered hosts", sb.String())
	}
	sb.WriteString(field("Found", fmt.Sprintf("%d of %d in %d ms", len(r.Hosts), r.ScannedCount, r.ScanTimeMs)))

	if len(r.Hosts) == 0 {
		sb.WriteString(DimStyle.Render("No hosts responded") + "\n")
		return section("Discovered hosts", sb.String())
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%-16s %-30s %s\n", "IP", "Hostname", "Latency"))
	sb.WriteString(strings.Repeat("─", 58) + "\n")
	for _, h := range r.Hosts {
		hostname := h.Hostname
		if hostname == "" {
			hostname = "-"
		}
		sb.WriteString(fmt.Sprintf("%-16s %-30s %.1f ms\n", h.IP, truncate(hostname, 28), h.ResponseTimeMs))
	}
	return section("Discovered hosts", sb.String())
}

func renderInterfaces(r model.InterfacesResult) string {
	if len(r.Interfaces) == 0 {
		return section("Interfaces", DimStyle.Render("No non-loopback interfaces found"))
	}
	var sb strings.Builder
	for _, i := range r.Interfaces {
		sb.WriteString(fmt.Sprintf("%-12s %-5s %-40s %s\n", i.Name, i.Family, i.CIDR, DimStyle.Render(i.MAC)))
	}
	return section("Interfaces", sb.String())
}

func renderTools(r model.ToolsResult) string {
	var sb strings.Builder
	for _, t := range r.Tools {
		sb.WriteString(RenderStatus(t.Available, t.ToolName+" ("+t.Command+")", t.ToolName+" ("+t.Command+") not found") + "\n")
	}
	return section("External tools", sb.String())
}

func renderHistory(entries []model.HistoryEntry) string {
	if len(entries) == 0 {
		return DimStyle.Render("No results recorded yet") + "\n"
	}

	var rows []string
	rows = append(rows, TableHeaderStyle.Render(fmt.Sprintf("%-6s %-16s %-9s %-28s %8s", "ID", "When", "Operation", "Target", "Duration")))
	for i, e := range entries {
		status := SuccessStyle.Render("✓")
		if !e.Success {
			status = ErrorStyle.Render("✗")
		}
		line := fmt.Sprintf("%-6d %-16s %-9s %-28s %6dms", e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04"),
			e.Operation, truncate(e.Target, 28), e.DurationMs)
		style := TableRowStyle
		if i%2 == 1 {
			style = TableRowAltStyle
		}
		rows = append(rows, style.Render(line)+" "+status)
	}
	return strings.Join(rows, "\n") + "\n"
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
