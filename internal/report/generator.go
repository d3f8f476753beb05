package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/user/netkit/internal/model"
	"github.com/user/netkit/internal/toolkit"
	"github.com/user/netkit/internal/util"
)

// HistorySource provides journaled results.
type HistorySource interface {
	Since(since time.Time) ([]model.HistoryEntry, error)
}

// Generator summarizes the result journal over a time window.
type Generator struct {
	history HistorySource
}

// NewGenerator creates a new report generator.
func NewGenerator(history HistorySource) *Generator {
	return &Generator{history: history}
}

// OperationStats counts the runs of one operation.
type OperationStats struct {
	Operation string
	Runs      int
	Failures  int
	AvgMs     int64
}

// ReportData holds all data for a report.
type ReportData struct {
	GeneratedAt time.Time
	Since       time.Time

	Entries    int
	Operations []OperationStats
	Failures   []model.HistoryEntry

	TraceChanges []TraceChange
	PortChanges  []PortChange
}

// TraceChange represents a traceroute path change between two runs.
type TraceChange struct {
	Target    string
	Older     model.TracerouteResult
	Newer     model.TracerouteResult
	Added     []string
	Removed   []string
	Timestamp time.Time
}

// PortChange represents a port whose state differs between two scans.
type PortChange struct {
	Host      string
	Port      int
	OldState  string
	NewState  string
	Timestamp time.Time
}

// Generate builds a report of everything journaled since the given time.
func (g *Generator) Generate(since time.Time) (*ReportData, error) {
	entries, err := g.history.Since(since)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	data := &ReportData{
		GeneratedAt: time.Now(),
		Since:       since,
		Entries:     len(entries),
		Operations:  operationStats(entries),
	}
	for _, e := range entries {
		if !e.Success {
			data.Failures = append(data.Failures, e)
		}
	}

	// Entries arrive newest first; change detection walks oldest first.
	traces := make(map[string][]timed[model.TracerouteResult])
	scans := make(map[string][]timed[model.PortScanResult])
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if !e.Success {
			continue
		}
		switch toolkit.Operation(e.Operation) {
		case toolkit.OpTraceroute:
			var r model.TracerouteResult
			if err := json.Unmarshal([]byte(e.Payload), &r); err != nil {
				util.Debug("Skipping unreadable trace %d: %v", e.ID, err)
				continue
			}
			traces[e.Target] = append(traces[e.Target], timed[model.TracerouteResult]{r, e.CreatedAt})
		case toolkit.OpPortScan:
			var r model.PortScanResult
			if err := json.Unmarshal([]byte(e.Payload), &r); err != nil {
				util.Debug("Skipping unreadable port scan %d: %v", e.ID, err)
				continue
			}
			scans[e.Target] = append(scans[e.Target], timed[model.PortScanResult]{r, e.CreatedAt})
		}
	}

	for _, target := range sortedKeys(traces) {
		data.TraceChanges = append(data.TraceChanges, detectTraceChanges(target, traces[target])...)
	}
	for _, host := range sortedKeys(scans) {
		data.PortChanges = append(data.PortChanges, detectPortChanges(host, scans[host])...)
	}

	return data, nil
}

type timed[T any] struct {
	result T
	at     time.Time
}

func operationStats(entries []model.HistoryEntry) []OperationStats {
	byOp := make(map[string]*OperationStats)
	totals := make(map[string]int64)
	for _, e := range entries {
		s, ok := byOp[e.Operation]
		if !ok {
			s = &OperationStats{Operation: e.Operation}
			byOp[e.Operation] = s
		}
		s.Runs++
		if !e.Success {
			s.Failures++
		}
		totals[e.Operation] += e.DurationMs
	}

	stats := make([]OperationStats, 0, len(byOp))
	for op, s := range byOp {
		s.AvgMs = totals[op] / int64(s.Runs)
		stats = append(stats, *s)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Operation < stats[j].Operation })
	return stats
}

func detectTraceChanges(target string, traces []timed[model.TracerouteResult]) []TraceChange {
	var changes []TraceChange

	for i := 1; i < len(traces); i++ {
		prev, curr := traces[i-1], traces[i]
		prevHops := getHopIPs(prev.result.Hops)
		currHops := getHopIPs(curr.result.Hops)

		if !equalHops(prevHops, currHops) {
			added, removed := diffHops(prevHops, currHops)
			changes = append(changes, TraceChange{
				Target:    target,
				Older:     prev.result,
				Newer:     curr.result,
				Added:     added,
				Removed:   removed,
				Timestamp: curr.at,
			})
		}
	}

	return changes
}

func detectPortChanges(host string, scans []timed[model.PortScanResult]) []PortChange {
	var changes []PortChange

	for i := 1; i < len(scans); i++ {
		prev := portStates(scans[i-1].result)
		curr := portStates(scans[i].result)

		ports := make([]int, 0, len(curr))
		for port := range curr {
			ports = append(ports, port)
		}
		sort.Ints(ports)

		for _, port := range ports {
			old, seen := prev[port]
			if seen && old != curr[port] {
				changes = append(changes, PortChange{
					Host:      host,
					Port:      port,
					OldState:  old,
					NewState:  curr[port],
					Timestamp: scans[i].at,
				})
			}
		}
	}

	return changes
}

func portStates(r model.PortScanResult) map[int]string {
	states := make(map[int]string, r.TotalPorts)
	for _, p := range r.OpenPorts {
		states[p.Port] = "open"
	}
	for _, p := range r.ClosedPorts {
		states[p] = "closed"
	}
	for _, p := range r.FilteredPorts {
		states[p] = "filtered"
	}
	return states
}

func getHopIPs(hops []model.TraceHop) []string {
	ips := make([]string, 0, len(hops))
	for _, hop := range hops {
		if !hop.Timeout && hop.IP != "" {
			ips = append(ips, hop.IP)
		}
	}
	return ips
}

func equalHops(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func diffHops(old, new []string) (added, removed []string) {
	oldSet := make(map[string]bool)
	newSet := make(map[string]bool)

	for _, h := range old {
		oldSet[h] = true
	}
	for _, h := range new {
		newSet[h] = true
	}

	for _, h := range new {
		if !oldSet[h] {
			added = append(added, h)
		}
	}
	for _, h := range old {
		if !newSet[h] {
			removed = append(removed, h)
		}
	}

	return
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FormatMarkdown renders a report.
func FormatMarkdown(data *ReportData) string {
	var sb strings.Builder

	sb.WriteString("# netkit report\n\n")
	sb.WriteString(fmt.Sprintf("Generated %s, covering results since %s.\n\n",
		data.GeneratedAt.Format("2006-01-02 15:04"), data.Since.Format("2006-01-02 15:04")))

	sb.WriteString("## Operations\n\n")
	if data.Entries == 0 {
		sb.WriteString("No results were recorded in this period.\n")
		return sb.String()
	}
	sb.WriteString("| Operation | Runs | Failures | Avg (ms) |\n")
	sb.WriteString("|-----------|------|----------|----------|\n")
	for _, s := range data.Operations {
		sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d |\n", s.Operation, s.Runs, s.Failures, s.AvgMs))
	}

	if len(data.Failures) > 0 {
		sb.WriteString("\n## Failures\n\n")
		for _, f := range data.Failures {
			sb.WriteString(fmt.Sprintf("- %s `%s %s`: %s\n",
				f.CreatedAt.Local().Format("2006-01-02 15:04"), f.Operation, f.Target, f.Error))
		}
	}

	if len(data.TraceChanges) > 0 {
		sb.WriteString("\n## Route changes\n\n")
		for _, c := range data.TraceChanges {
			sb.WriteString(fmt.Sprintf("### %s at %s\n\n", c.Target, c.Timestamp.Local().Format("2006-01-02 15:04")))
			if len(c.Added) > 0 {
				sb.WriteString(fmt.Sprintf("Added: %s\n\n", strings.Join(c.Added, ", ")))
			}
			if len(c.Removed) > 0 {
				sb.WriteString(fmt.Sprintf("Removed: %s\n\n", strings.Join(c.Removed, ", ")))
			}
			sb.WriteString(TraceComparison(c.Older, c.Newer))
			sb.WriteString("\n")
		}
	}

	if len(data.PortChanges) > 0 {
		sb.WriteString("\n## Port changes\n\n")
		sb.WriteString("| Host | Port | Before | After | When |\n")
		sb.WriteString("|------|------|--------|-------|------|\n")
		for _, c := range data.PortChanges {
			sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s |\n",
				c.Host, c.Port, c.OldState, c.NewState, c.Timestamp.Local().Format("2006-01-02 15:04")))
		}
	}

	return sb.String()
}
