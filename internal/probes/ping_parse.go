package probes

import (
	"bufio"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// pingStats accumulates values extracted from ping output.
type pingStats struct {
	sent, received int
	haveSummary    bool
	times          []float64
	min, max, avg  float64
	haveRTT        bool
}

// linePattern pairs a regular expression with the extractor applied to its
// submatches. Patterns are tried in order and the first match wins for a
// given line; new locales are supported by appending patterns.
type linePattern[T any] struct {
	re    *regexp.Regexp
	apply func(m []string, acc *T)
}

var windowsPingPatterns = []linePattern[pingStats]{
	// Reply line: "time=14ms", "time<1ms", "tiempo=14ms", "tiempo<1m",
	// "temps=14 ms", "Zeit=14ms".
	{
		re: regexp.MustCompile(`(?i)(?:time|tiempo|temps|zeit|tempo|durata)\s*[=<]\s*(\d+(?:[.,]\d+)?)\s*ms?\b`),
		apply: func(m []string, s *pingStats) {
			if v, ok := parseMillis(m[1]); ok {
				s.times = append(s.times, v)
			}
		},
	},
	// Summary: "Packets: Sent = 4, Received = 4, Lost = 0 (0% loss)" and
	// "Paquetes: enviados = 4, recibidos = 4, perdidos = 0 (0% perdidos)".
	{
		re: regexp.MustCompile(`(?i)^\s*[^:]+:\s*[^=,]+=\s*(\d+),\s*[^=,]+=\s*(\d+),\s*[^=,]+=\s*(\d+)`),
		apply: func(m []string, s *pingStats) {
			s.sent, _ = strconv.Atoi(m[1])
			s.received, _ = strconv.Atoi(m[2])
			s.haveSummary = true
		},
	},
	// Round trip: "Minimum = 14ms, Maximum = 15ms, Average = 14ms" and
	// "Mínimo = 14ms, Máximo = 15ms, Media = 14ms".
	{
		re: regexp.MustCompile(`(?i)^\s*[^=,]+=\s*(\d+(?:[.,]\d+)?)\s*ms,\s*[^=,]+=\s*(\d+(?:[.,]\d+)?)\s*ms,\s*[^=,]+=\s*(\d+(?:[.,]\d+)?)\s*ms`),
		apply: func(m []string, s *pingStats) {
			s.min, _ = parseMillis(m[1])
			s.max, _ = parseMillis(m[2])
			s.avg, _ = parseMillis(m[3])
			s.haveRTT = true
		},
	},
}

var unixPingPatterns = []linePattern[pingStats]{
	// "64 bytes from 8.8.8.8: icmp_seq=1 ttl=117 time=14.2 ms"
	{
		re: regexp.MustCompile(`time[=<]\s*(\d+(?:\.\d+)?)\s*ms`),
		apply: func(m []string, s *pingStats) {
			if v, ok := parseMillis(m[1]); ok {
				s.times = append(s.times, v)
			}
		},
	},
	// Linux: "4 packets transmitted, 4 received, 0% packet loss"
	// macOS: "4 packets transmitted, 4 packets received, 0.0% packet loss"
	{
		re: regexp.MustCompile(`(\d+)\s+packets transmitted,\s+(\d+)\s+(?:packets )?received`),
		apply: func(m []string, s *pingStats) {
			s.sent, _ = strconv.Atoi(m[1])
			s.received, _ = strconv.Atoi(m[2])
			s.haveSummary = true
		},
	},
	// "rtt min/avg/max/mdev = 1.1/2.2/3.3/0.4 ms" or
	// "round-trip min/avg/max/stddev = 1.1/2.2/3.3/0.4 ms"
	{
		re: regexp.MustCompile(`(?:rtt|round-trip)\s+min/avg/max(?:/(?:mdev|stddev))?\s*=\s*(\d+(?:\.\d+)?)/(\d+(?:\.\d+)?)/(\d+(?:\.\d+)?)`),
		apply: func(m []string, s *pingStats) {
			s.min, _ = parseMillis(m[1])
			s.avg, _ = parseMillis(m[2])
			s.max, _ = parseMillis(m[3])
			s.haveRTT = true
		},
	},
}

// applyPatterns runs every line of output through patterns and reports
// whether any line matched.
func applyPatterns[T any](output string, patterns []linePattern[T], acc *T) bool {
	matched := false
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		for _, p := range patterns {
			if m := p.re.FindStringSubmatch(line); m != nil {
				p.apply(m, acc)
				matched = true
				break
			}
		}
	}
	return matched
}

// parsePingOutput extracts statistics from ping output for goos. When the
// summary line is missing, sent falls back to requested and received to the
// number of reply samples.
func parsePingOutput(output, goos string, requested int) (pingStats, bool) {
	var s pingStats
	patterns := unixPingPatterns
	if goos == "windows" {
		patterns = windowsPingPatterns
	}
	matched := applyPatterns(output, patterns, &s)

	if !s.haveSummary {
		s.sent = requested
		s.received = len(s.times)
	}
	if s.received > s.sent {
		s.received = s.sent
	}
	if s.received < 0 {
		s.received = 0
	}

	if !s.haveRTT && len(s.times) > 0 {
		s.min, s.max = s.times[0], s.times[0]
		var sum float64
		for _, t := range s.times {
			s.min = math.Min(s.min, t)
			s.max = math.Max(s.max, t)
			sum += t
		}
		s.avg = roundMillis(sum / float64(len(s.times)))
	}

	return s, matched
}

// lossPercent returns round(lost/sent*100), or 0 when nothing was sent.
func lossPercent(sent, lost int) int {
	if sent <= 0 {
		return 0
	}
	return int(math.Round(float64(lost) / float64(sent) * 100))
}

func parseMillis(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func roundMillis(v float64) float64 {
	return math.Round(v*1000) / 1000
}
