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
	defaultMaxHops   = 30
	maxMaxHops       = 64
	defaultTraceWait = 3 * time.Second
	probesPerHop     = 3
)

// TracerouteProbe runs the system traceroute (tracert on Windows).
type TracerouteProbe struct {
	runner  CommandRunner
	goos    string
	maxHops int
	wait    time.Duration
}

// NewTracerouteProbe creates a new traceroute probe.
func NewTracerouteProbe(runner CommandRunner, goos string) *TracerouteProbe {
	return &TracerouteProbe{
		runner:  runner,
		goos:    goos,
		maxHops: defaultMaxHops,
		wait:    defaultTraceWait,
	}
}

// SetMaxHops sets the maximum number of hops.
func (p *TracerouteProbe) SetMaxHops(max int) {
	if max > 0 && max <= maxMaxHops {
		p.maxHops = max
	}
}

// SetWait sets the per-probe wait time.
func (p *TracerouteProbe) SetWait(wait time.Duration) {
	if wait > 0 {
		p.wait = wait
	}
}

// traceSpec builds the platform-specific traceroute invocation. The process
// budget covers every probe of every hop timing out, plus slack.
func traceSpec(goos, host string, maxHops int, wait time.Duration) CommandSpec {
	var args []string
	if goos == "windows" {
		args = []string{"-h", strconv.Itoa(maxHops), "-w", strconv.FormatInt(wait.Milliseconds(), 10), host}
	} else {
		secs := int(math.Ceil(wait.Seconds()))
		if secs < 1 {
			secs = 1
		}
		args = []string{"-m", strconv.Itoa(maxHops), "-w", strconv.Itoa(secs), "-q", strconv.Itoa(probesPerHop), host}
	}
	return CommandSpec{
		Tool:    ToolTraceroute,
		Args:    args,
		Timeout: wait*time.Duration(maxHops*probesPerHop) + 2*processSlack,
	}
}

// Trace performs a traceroute to host.
func (p *TracerouteProbe) Trace(ctx context.Context, host string) model.TracerouteResult {
	host = SanitizeTarget(host)
	result := model.TracerouteResult{Host: host, Hops: []model.TraceHop{}}
	if host == "" {
		result.Error = "host is required"
		return result
	}

	out, err := p.runner.Run(ctx, traceSpec(p.goos, host, p.maxHops, p.wait))
	if out == nil {
		result.Error = errorText(err, "traceroute failed")
		return result
	}

	result.RawOutput = out.Combined()
	if hops := parseTracerouteOutput(out.Stdout, p.goos); len(hops) > 0 {
		result.Hops = hops
	}
	result.Success = len(result.Hops) > 0

	switch {
	case err != nil:
		result.Error = fmt.Sprintf("%v (%d hops captured)", err, len(result.Hops))
	case !result.Success && result.RawOutput != "":
		result.Error = fmt.Sprintf("could not parse traceroute output (exit status %d)", out.ExitCode)
	case !result.Success:
		result.Error = "traceroute produced no output"
	}

	util.Debug("Traceroute to %s: %d hops", host, len(result.Hops))
	return result
}
