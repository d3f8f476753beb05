package probes

import (
	"context"
	"time"

	"github.com/user/netkit/internal/model"
	"github.com/user/netkit/internal/util"
)

const (
	portScanWidth      = 100
	defaultScanTimeout = 2 * time.Second
)

// PortScanner classifies TCP ports on a single host.
type PortScanner struct {
	probe   *TCPProbe
	limiter *Limiter
	timeout time.Duration
}

// NewPortScanner creates a new port scanner.
func NewPortScanner(probe *TCPProbe, timeout time.Duration) *PortScanner {
	if probe == nil {
		probe = NewTCPProbe()
	}
	if timeout <= 0 {
		timeout = defaultScanTimeout
	}
	return &PortScanner{
		probe:   probe,
		limiter: NewLimiter(portScanWidth),
		timeout: timeout,
	}
}

// Scan probes every port on host. Ports must already be validated; each one
// lands in exactly one of the open, closed or filtered lists.
func (s *PortScanner) Scan(ctx context.Context, host string, ports []int) model.PortScanResult {
	result := model.PortScanResult{
		Host:          host,
		TotalPorts:    len(ports),
		OpenPorts:     []model.OpenPort{},
		ClosedPorts:   []int{},
		FilteredPorts: []int{},
	}

	start := time.Now()
	states := RunAll(ctx, s.limiter, ports, func(ctx context.Context, port int) PortState {
		if ctx.Err() != nil {
			return PortFiltered
		}
		return s.probe.Probe(ctx, host, port, s.timeout).State
	})
	result.ScanTimeMs = time.Since(start).Milliseconds()

	for i, port := range ports {
		switch states[i] {
		case PortOpen:
			result.OpenPorts = append(result.OpenPorts, model.OpenPort{Port: port, Service: ServiceName(port)})
		case PortClosed:
			result.ClosedPorts = append(result.ClosedPorts, port)
		default:
			result.FilteredPorts = append(result.FilteredPorts, port)
		}
	}
	result.Success = true

	util.Debug("Port scan %s: %d open, %d closed, %d filtered in %dms",
		host, len(result.OpenPorts), len(result.ClosedPorts), len(result.FilteredPorts), result.ScanTimeMs)
	return result
}
