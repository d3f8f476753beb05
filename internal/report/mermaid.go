package report

import (
	"fmt"
	"strings"

	"github.com/user/netkit/internal/model"
)

// TracerouteDiagram creates a Mermaid flowchart for a traceroute.
func TracerouteDiagram(trace model.TracerouteResult) string {
	var sb strings.Builder

	sb.WriteString("```mermaid\n")
	sb.WriteString("flowchart LR\n")
	sb.WriteString("    style Source fill:#90EE90\n")
	sb.WriteString("    style Target fill:#87CEEB\n")
	sb.WriteString("\n")

	sb.WriteString("    Source[Your Network]\n")

	prevNode := "Source"
	for _, hop := range trace.Hops {
		nodeID := fmt.Sprintf("H%d", hop.Hop)

		if hop.Timeout {
			sb.WriteString(fmt.Sprintf("    %s[\"Hop %d<br/>* * *\"]:::lost\n", nodeID, hop.Hop))
		} else {
			label := hop.IP
			if label == "" {
				label = hop.Host
			} else if hop.Host != "" && hop.Host != hop.IP {
				label = fmt.Sprintf("%s<br/>%s", shortenHostname(hop.Host), hop.IP)
			}
			sb.WriteString(fmt.Sprintf("    %s[\"Hop %d<br/>%s<br/>%.1fms\"]\n", nodeID, hop.Hop, escapeLabel(label), hop.AvgTime))
		}

		sb.WriteString(fmt.Sprintf("    %s --> %s\n", prevNode, nodeID))
		prevNode = nodeID
	}

	sb.WriteString(fmt.Sprintf("    Target[\"%s\"]\n", escapeLabel(trace.Host)))
	sb.WriteString(fmt.Sprintf("    %s --> Target\n", prevNode))

	sb.WriteString("\n")
	sb.WriteString("    classDef lost fill:#FFB6C1,stroke:#FF0000\n")
	sb.WriteString("```\n")

	return sb.String()
}

// TraceComparison creates a Mermaid diagram comparing two traces to the same
// target. Hops that are new in the later trace are highlighted.
func TraceComparison(older, newer model.TracerouteResult) string {
	var sb strings.Builder

	sb.WriteString("```mermaid\n")
	sb.WriteString("flowchart TB\n")
	sb.WriteString("    subgraph Before\n")
	sb.WriteString("    direction LR\n")

	prevNode := "OldSrc"
	sb.WriteString("    OldSrc((Start))\n")
	for i, hop := range older.Hops {
		nodeID := fmt.Sprintf("O%d", i+1)
		if hop.Timeout {
			sb.WriteString(fmt.Sprintf("    %s[*]\n", nodeID))
		} else {
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", nodeID, escapeLabel(hopLabel(hop))))
		}
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", prevNode, nodeID))
		prevNode = nodeID
	}
	sb.WriteString("    end\n\n")

	sb.WriteString("    subgraph After\n")
	sb.WriteString("    direction LR\n")

	prevNode = "NewSrc"
	sb.WriteString("    NewSrc((Start))\n")
	for i, hop := range newer.Hops {
		nodeID := fmt.Sprintf("N%d", i+1)
		switch {
		case hop.Timeout:
			sb.WriteString(fmt.Sprintf("    %s[*]\n", nodeID))
		case !containsHop(older.Hops, hop.IP):
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]:::new\n", nodeID, escapeLabel(hopLabel(hop))))
		default:
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", nodeID, escapeLabel(hopLabel(hop))))
		}
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", prevNode, nodeID))
		prevNode = nodeID
	}
	sb.WriteString("    end\n\n")

	sb.WriteString("    classDef new fill:#90EE90,stroke:#228B22\n")
	sb.WriteString("```\n")

	return sb.String()
}

func hopLabel(hop model.TraceHop) string {
	if hop.IP != "" {
		return hop.IP
	}
	return hop.Host
}

func shortenHostname(hostname string) string {
	if len(hostname) > 20 {
		parts := strings.Split(hostname, ".")
		if len(parts) > 2 {
			return parts[0] + "..."
		}
		return hostname[:17] + "..."
	}
	return hostname
}

// escapeLabel keeps quotes from terminating a Mermaid node label.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}

func containsHop(hops []model.TraceHop, ip string) bool {
	if ip == "" {
		return false
	}
	for _, hop := range hops {
		if hop.IP == ip {
			return true
		}
	}
	return false
}
