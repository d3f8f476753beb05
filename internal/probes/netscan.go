package probes

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/user/netkit/internal/model"
	"github.com/user/netkit/internal/util"
)

const (
	// MaxScanHosts caps the subnet size a network scan will accept.
	MaxScanHosts        = 1024
	networkScanWidth    = 50
	quickPingPort       = 80
	defaultSweepTimeout = time.Second
	hostnameBudget      = 2 * time.Second
)

// NetworkScanner discovers live hosts in an IPv4 subnet.
type NetworkScanner struct {
	probe    *TCPProbe
	limiter  *Limiter
	resolver *DNSResolver
}

// NewNetworkScanner creates a scanner. A nil resolver disables hostname
// enrichment.
func NewNetworkScanner(probe *TCPProbe, resolver *DNSResolver) *NetworkScanner {
	if probe == nil {
		probe = NewTCPProbe()
	}
	return &NetworkScanner{
		probe:    probe,
		limiter:  NewLimiter(networkScanWidth),
		resolver: resolver,
	}
}

type sweepHit struct {
	alive   bool
	latency time.Duration
}

// Scan sweeps every host address of subnet with a TCP connect to port 80.
// Hosts with port 80 filtered are reported down.
func (s *NetworkScanner) Scan(ctx context.Context, subnet string, timeout time.Duration) model.NetworkScanResult {
	if timeout <= 0 {
		timeout = defaultSweepTimeout
	}
	result := model.NetworkScanResult{Subnet: subnet, Hosts: []model.ScanHost{}}

	info, err := CalculateSubnet(subnet)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.SubnetInfo = info
	if info.TotalHosts > MaxScanHosts {
		result.Error = fmt.Sprintf("subnet %s has %d addresses; network scans are limited to %d hosts",
			subnet, info.TotalHosts, MaxScanHosts)
		return result
	}

	candidates := hostRange(info)
	result.ScannedCount = len(candidates)
	util.Info("Sweeping %d hosts in %s", len(candidates), subnet)

	start := time.Now()
	hits := RunAll(ctx, s.limiter, candidates, func(ctx context.Context, ip string) sweepHit {
		r := s.probe.Probe(ctx, ip, quickPingPort, timeout)
		return sweepHit{alive: r.Alive(), latency: r.Latency}
	})

	for i, ip := range candidates {
		if !hits[i].alive {
			continue
		}
		result.Hosts = append(result.Hosts, model.ScanHost{
			IP:             ip,
			ResponseTimeMs: roundMillis(float64(hits[i].latency.Microseconds()) / 1000),
		})
	}
	s.addHostnames(ctx, result.Hosts)
	result.ScanTimeMs = time.Since(start).Milliseconds()

	sort.Slice(result.Hosts, func(i, j int) bool {
		a, _ := IPToInt(result.Hosts[i].IP)
		b, _ := IPToInt(result.Hosts[j].IP)
		return a < b
	})
	result.Success = true

	util.Info("Sweep of %s found %d live hosts in %dms", subnet, len(result.Hosts), result.ScanTimeMs)
	return result
}

func (s *NetworkScanner) addHostnames(ctx context.Context, hosts []model.ScanHost) {
	if s.resolver == nil || len(hosts) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, hostnameBudget)
	defer cancel()

	names := RunAll(ctx, s.limiter, hosts, func(ctx context.Context, h model.ScanHost) string {
		r := s.resolver.Reverse(ctx, h.IP)
		if !r.Success {
			return ""
		}
		return r.Hostnames[0]
	})
	for i := range hosts {
		hosts[i].Hostname = names[i]
	}
}
