package probes

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/user/netkit/internal/model"
	"github.com/user/netkit/internal/util"
)

const (
	defaultPingCount   = 4
	maxPingCount       = 100
	defaultPingTimeout = 5 * time.Second
	processSlack       = 5 * time.Second
)

// PingProbe runs the system ping binary.
type PingProbe struct {
	runner CommandRunner
	goos   string
}

// NewPingProbe creates a new ping probe.
func NewPingProbe(runner CommandRunner, goos string) *PingProbe {
	return &PingProbe{runner: runner, goos: goos}
}

// pingSpec builds the platform-specific ping invocation.
func pingSpec(goos, host string, count int, timeout time.Duration) CommandSpec {
	var args []string
	switch goos {
	case "windows":
		args = []string{"-n", strconv.Itoa(count), "-w", strconv.FormatInt(timeout.Milliseconds(), 10), host}
	case "darwin":
		args = []string{"-c", strconv.Itoa(count), "-W", strconv.FormatInt(timeout.Milliseconds(), 10), host}
	default:
		secs := int(math.Ceil(timeout.Seconds()))
		if secs < 1 {
			secs = 1
		}
		args = []string{"-c", strconv.Itoa(count), "-W", strconv.Itoa(secs), host}
	}
	return CommandSpec{
		Tool:    ToolPing,
		Args:    args,
		Timeout: timeout*time.Duration(count) + processSlack,
	}
}

// Ping sends count echo requests to host and summarizes the replies.
func (p *PingProbe) Ping(ctx context.Context, host string, count int, timeout time.Duration) model.PingResult {
	host = SanitizeTarget(host)
	if count <= 0 {
		count = defaultPingCount
	}
	if count > maxPingCount {
		count = maxPingCount
	}
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}

	result := model.PingResult{Host: host, Sent: count, Times: []float64{}}
	if host == "" {
		result.Error = "host is required"
		return result
	}

	start := time.Now()
	out, err := p.runner.Run(ctx, pingSpec(p.goos, host, count, timeout))
	result.DurationMs = time.Since(start).Milliseconds()

	if out == nil {
		result.Lost = count
		result.LossPercent = 100
		result.Error = errorText(err, "ping failed")
		return result
	}

	result.RawOutput = out.Combined()
	stats, matched := parsePingOutput(out.Stdout, p.goos, count)

	result.Sent = stats.sent
	result.Received = stats.received
	result.Lost = stats.sent - stats.received
	result.LossPercent = lossPercent(stats.sent, result.Lost)
	result.Min, result.Max, result.Avg = stats.min, stats.max, stats.avg
	if len(stats.times) > 0 {
		result.Times = stats.times
	}
	result.Success = result.Received > 0

	switch {
	case err != nil:
		result.Error = err.Error()
	case !matched && result.RawOutput != "":
		result.Error = fmt.Sprintf("could not parse ping output (exit status %d)", out.ExitCode)
	case !result.Success:
		result.Error = fmt.Sprintf("no replies from %s", host)
	}

	util.Debug("Ping %s: %d/%d received, avg %.2fms", host, result.Received, result.Sent, result.Avg)
	return result
}

func errorText(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	return err.Error()
}
