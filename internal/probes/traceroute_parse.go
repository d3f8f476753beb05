package probes

import (
	"net"
	"regexp"
	"strconv"
	"strings"

	"github.com/user/netkit/internal/model"
)

// traceAcc collects hops while parsing traceroute output.
type traceAcc struct {
	hops []model.TraceHop
}

var (
	probeTimeRe   = regexp.MustCompile(`<?\s*(\d+(?:[.,]\d+)?)\s*ms`)
	namedHostRe   = regexp.MustCompile(`([^\s*()\[\]]+)\s+[(\[]([^)\]]+)[)\]]`)
	ipv4TokenRe   = regexp.MustCompile(`\b(\d{1,3}(?:\.\d{1,3}){3})\b`)
	ipv6TokenRe   = regexp.MustCompile(`(?:^|\s)([0-9a-fA-F]*:[0-9a-fA-F:]+)(?:\s|$)`)
	winProbeStrip = regexp.MustCompile(`^(?:(?:<?\s*\d+\s*ms|\*)\s*)+`)
)

var unixTracePatterns = []linePattern[traceAcc]{
	// " 1  gateway (192.168.1.1)  0.512 ms  0.470 ms  0.455 ms"
	// " 2  * * *"
	{
		re: regexp.MustCompile(`^\s*(\d+)\s+(.*)$`),
		apply: func(m []string, acc *traceAcc) {
			num, _ := strconv.Atoi(m[1])
			acc.add(unixHop(num, m[2]))
		},
	},
	// Continuation line listing another router answering the same hop:
	// "    other.router (10.1.1.1)  11.2 ms"
	{
		re: regexp.MustCompile(`^\s+\D.*\d\s*ms`),
		apply: func(m []string, acc *traceAcc) {
			acc.extend(extractTimes(m[0]))
		},
	},
}

var windowsTracePatterns = []linePattern[traceAcc]{
	// "  1    <1 ms    <1 ms    <1 ms  192.168.1.1"
	// "  2     *        *        *     Request timed out."
	// "  3    10 ms     9 ms     9 ms  host.isp.net [10.0.0.1]"
	{
		re: regexp.MustCompile(`^\s*(\d+)\s+(.*)$`),
		apply: func(m []string, acc *traceAcc) {
			num, _ := strconv.Atoi(m[1])
			acc.add(windowsHop(num, m[2]))
		},
	},
}

// add appends hop, dropping lines that would make hop numbers decrease.
func (a *traceAcc) add(hop model.TraceHop) {
	if n := len(a.hops); n > 0 && hop.Hop < a.hops[n-1].Hop {
		return
	}
	a.hops = append(a.hops, hop)
}

// extend adds probe times to the most recent hop.
func (a *traceAcc) extend(times []float64) {
	n := len(a.hops)
	if n == 0 || len(times) == 0 {
		return
	}
	hop := &a.hops[n-1]
	hop.Times = append(hop.Times, times...)
	hop.Timeout = false
	hop.AvgTime = average(hop.Times)
}

func unixHop(num int, rest string) model.TraceHop {
	hop := newHop(num, extractTimes(rest))
	if hop.Timeout {
		return hop
	}

	if m := namedHostRe.FindStringSubmatch(rest); m != nil {
		hop.Host, hop.IP = m[1], m[2]
	} else if ip := findIP(rest); ip != "" {
		hop.Host, hop.IP = ip, ip
	}
	return hop
}

func windowsHop(num int, rest string) model.TraceHop {
	hop := newHop(num, extractTimes(rest))
	if hop.Timeout {
		return hop
	}

	target := strings.TrimSpace(winProbeStrip.ReplaceAllString(strings.TrimSpace(rest), ""))
	if m := namedHostRe.FindStringSubmatch(target); m != nil {
		hop.Host, hop.IP = m[1], m[2]
	} else if net.ParseIP(target) != nil {
		hop.Host, hop.IP = target, target
	} else if target != "" {
		hop.Host = target
	}
	return hop
}

func newHop(num int, times []float64) model.TraceHop {
	hop := model.TraceHop{Hop: num, Host: "*", Times: []float64{}}
	if len(times) == 0 {
		hop.Timeout = true
		return hop
	}
	hop.Times = times
	hop.AvgTime = average(times)
	return hop
}

func extractTimes(s string) []float64 {
	var times []float64
	for _, m := range probeTimeRe.FindAllStringSubmatch(s, -1) {
		if v, ok := parseMillis(m[1]); ok {
			times = append(times, v)
		}
	}
	return times
}

func findIP(s string) string {
	if m := ipv4TokenRe.FindStringSubmatch(s); m != nil && net.ParseIP(m[1]) != nil {
		return m[1]
	}
	if m := ipv6TokenRe.FindStringSubmatch(s); m != nil && net.ParseIP(m[1]) != nil {
		return m[1]
	}
	return ""
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return roundMillis(sum / float64(len(values)))
}

// parseTracerouteOutput parses traceroute (or tracert) output into hops.
func parseTracerouteOutput(output, goos string) []model.TraceHop {
	patterns := unixTracePatterns
	if goos == "windows" {
		patterns = windowsTracePatterns
	}
	var acc traceAcc
	applyPatterns(output, patterns, &acc)
	return acc.hops
}
