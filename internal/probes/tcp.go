package probes

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// PortState is the classification of a single TCP connect attempt.
type PortState string

const (
	PortOpen     PortState = "open"
	PortClosed   PortState = "closed"
	PortFiltered PortState = "filtered"
)

// ProbeResult is the outcome of one TCP connect.
type ProbeResult struct {
	State   PortState
	Latency time.Duration
	Err     error
}

// Alive reports whether the remote host answered at all. A refused
// connection proves the host is up.
func (r ProbeResult) Alive() bool {
	return r.State == PortOpen || r.State == PortClosed
}

// Dialer opens network connections.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// TCPProbe opens a single TCP connection and classifies the outcome.
type TCPProbe struct {
	dialer Dialer
}

// NewTCPProbe creates a probe using a plain net.Dialer.
func NewTCPProbe() *TCPProbe {
	return &TCPProbe{dialer: &net.Dialer{}}
}

// NewTCPProbeWithDialer creates a probe using d.
func NewTCPProbeWithDialer(d Dialer) *TCPProbe {
	return &TCPProbe{dialer: d}
}

// Probe connects to host:port. Success is open, a refusal is closed, and a
// timeout or any other failure is filtered.
func (p *TCPProbe) Probe(ctx context.Context, host string, port int, timeout time.Duration) ProbeResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	start := time.Now()
	conn, err := p.dialer.DialContext(ctx, "tcp", addr)
	latency := time.Since(start)

	if err == nil {
		conn.Close()
		return ProbeResult{State: PortOpen, Latency: latency}
	}
	if isConnectionRefused(err) {
		return ProbeResult{State: PortClosed, Latency: latency, Err: err}
	}
	return ProbeResult{State: PortFiltered, Latency: latency, Err: err}
}

func isConnectionRefused(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		msg := strings.ToLower(opErr.Error())
		// Windows reports WSAECONNREFUSED with its own wording.
		return strings.Contains(msg, "connection refused") ||
			strings.Contains(msg, "actively refused")
	}
	return false
}
