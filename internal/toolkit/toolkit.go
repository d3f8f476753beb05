// Package toolkit is the request/response boundary of netkit: one method per
// operation, each taking a flat parameter struct and returning a result
// record. Required inputs are validated before any I/O.
package toolkit

import (
	"context"
	"strings"
	"time"

	"github.com/user/netkit/internal/model"
	"github.com/user/netkit/internal/probes"
	"github.com/user/netkit/internal/util"
)

// Version is the netkit release.
const Version = "1.0.0"

// Record describes one completed operation.
type Record struct {
	Operation Operation
	Target    string
	Success   bool
	Error     string
	Duration  time.Duration
	Result    interface{}
}

// Recorder receives every completed operation.
type Recorder func(Record)

// Toolkit wires the probes together with configured defaults.
type Toolkit struct {
	cfg        *util.Config
	resolver   *probes.CommandResolver
	runner     probes.CommandRunner
	dns        *probes.DNSResolver
	tcp        *probes.TCPProbe
	tls        *probes.TLSInspector
	headers    *probes.HeaderInspector
	wol        *probes.WakeOnLAN
	interfaces *probes.InterfaceEnumerator
	recorder   Recorder
}

// New creates a toolkit. A nil resolver detects tools on the running
// platform.
func New(cfg *util.Config, resolver *probes.CommandResolver) *Toolkit {
	if cfg == nil {
		cfg = util.DefaultConfig()
	}
	if resolver == nil {
		resolver = probes.NewCommandResolver()
	}
	return &Toolkit{
		cfg:        cfg,
		resolver:   resolver,
		runner:     probes.NewProcessRunner(resolver),
		dns:        probes.NewDNSResolver(cfg.DNSServer),
		tcp:        probes.NewTCPProbe(),
		tls:        probes.NewTLSInspector(cfg.TLSTimeout),
		headers:    probes.NewHeaderInspector(cfg.HTTPUserAgent, cfg.HTTPTimeout),
		wol:        probes.NewWakeOnLAN(),
		interfaces: probes.NewInterfaceEnumerator(nil),
	}
}

// SetRecorder installs a hook called after every operation.
func (t *Toolkit) SetRecorder(r Recorder) {
	t.recorder = r
}

// SetRunner replaces the command runner used by ping, traceroute and whois.
func (t *Toolkit) SetRunner(r probes.CommandRunner) {
	t.runner = r
}

func finish[R any](t *Toolkit, op Operation, target string, start time.Time, result R, success bool, errMsg string) R {
	d := time.Since(start)
	if success {
		util.Debug("%s %s succeeded in %s", op, target, d.Round(time.Millisecond))
	} else {
		util.Debug("%s %s failed in %s: %s", op, target, d.Round(time.Millisecond), errMsg)
	}
	if t.recorder != nil {
		t.recorder(Record{
			Operation: op,
			Target:    target,
			Success:   success,
			Error:     errMsg,
			Duration:  d,
			Result:    result,
		})
	}
	return result
}

func millis(ms int, fallback time.Duration) time.Duration {
	if ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

// Ping runs the system ping against a host.
func (t *Toolkit) Ping(ctx context.Context, p PingParams) model.PingResult {
	start := time.Now()
	host := strings.TrimSpace(p.Host)
	if host == "" {
		res := model.PingResult{Times: []float64{}, Error: "host is required"}
		return finish(t, OpPing, host, start, res, false, res.Error)
	}

	count := p.Count
	if count <= 0 {
		count = t.cfg.PingCount
	}
	timeout := t.cfg.PingTimeout
	if p.TimeoutSeconds > 0 {
		timeout = time.Duration(p.TimeoutSeconds) * time.Second
	}
	res := probes.NewPingProbe(t.runner, t.resolver.GOOS()).
		Ping(ctx, host, count, millis(p.TimeoutMs, timeout))
	return finish(t, OpPing, host, start, res, res.Success, res.Error)
}

// Traceroute maps the route to a host.
func (t *Toolkit) Traceroute(ctx context.Context, p TracerouteParams) model.TracerouteResult {
	start := time.Now()
	host := strings.TrimSpace(p.Host)
	if host == "" {
		res := model.TracerouteResult{Hops: []model.TraceHop{}, Error: "host is required"}
		return finish(t, OpTraceroute, host, start, res, false, res.Error)
	}

	probe := probes.NewTracerouteProbe(t.runner, t.resolver.GOOS())
	probe.SetWait(t.cfg.TraceWait)
	if p.MaxHops > 0 {
		probe.SetMaxHops(p.MaxHops)
	} else {
		probe.SetMaxHops(t.cfg.TraceMaxHops)
	}
	res := probe.Trace(ctx, host)
	return finish(t, OpTraceroute, host, start, res, res.Success, res.Error)
}

// ScanPorts classifies TCP ports on a host.
func (t *Toolkit) ScanPorts(ctx context.Context, p PortScanParams) model.PortScanResult {
	start := time.Now()
	host := strings.TrimSpace(p.Host)
	res := model.PortScanResult{
		Host:          host,
		OpenPorts:     []model.OpenPort{},
		ClosedPorts:   []int{},
		FilteredPorts: []int{},
	}
	if host == "" {
		res.Error = "host is required"
		return finish(t, OpPortScan, host, start, res, false, res.Error)
	}

	ports, err := p.Ports.Resolve()
	if err != nil {
		res.Error = err.Error()
		return finish(t, OpPortScan, host, start, res, false, res.Error)
	}

	scanner := probes.NewPortScanner(t.tcp, millis(p.TimeoutMs, t.cfg.ScanTimeout))
	res = scanner.Scan(ctx, host, ports)
	return finish(t, OpPortScan, host, start, res, res.Success, res.Error)
}

// LookupDNS resolves records of one type, or of every common type for ALL.
func (t *Toolkit) LookupDNS(ctx context.Context, p DNSParams) model.DNSResult {
	start := time.Now()
	domain := strings.TrimSpace(p.Domain)
	res := model.DNSResult{Domain: domain, Type: strings.ToUpper(p.Type), Records: []model.DNSRecord{}}
	if domain == "" {
		res.Error = "domain is required"
		return finish(t, OpDNS, domain, start, res, false, res.Error)
	}

	rtype, err := probes.ParseRecordType(p.Type)
	if err != nil {
		res.Error = err.Error()
		return finish(t, OpDNS, domain, start, res, false, res.Error)
	}
	res = t.dns.Lookup(ctx, domain, rtype)
	return finish(t, OpDNS, domain, start, res, res.Success, res.Error)
}

// ReverseDNS resolves the host names of an IP address.
func (t *Toolkit) ReverseDNS(ctx context.Context, p ReverseDNSParams) model.ReverseDNSResult {
	start := time.Now()
	ip := strings.TrimSpace(p.IP)
	if ip == "" {
		res := model.ReverseDNSResult{Hostnames: []string{}, Error: "ip is required"}
		return finish(t, OpReverseDNS, ip, start, res, false, res.Error)
	}
	res := t.dns.Reverse(ctx, ip)
	return finish(t, OpReverseDNS, ip, start, res, res.Success, res.Error)
}

// InspectTLS reads the certificate of a TLS endpoint.
func (t *Toolkit) InspectTLS(ctx context.Context, p TLSParams) model.SSLCertificateInfo {
	start := time.Now()
	host := strings.TrimSpace(p.Host)
	if host == "" {
		res := model.SSLCertificateInfo{Port: p.Port, SubjectAltNames: []string{}, Chain: []model.ChainLink{}, Error: "host is required"}
		return finish(t, OpTLS, host, start, res, false, res.Error)
	}
	if p.Port < 0 || p.Port > 65535 {
		res := model.SSLCertificateInfo{Host: host, Port: p.Port, SubjectAltNames: []string{}, Chain: []model.ChainLink{}, Error: "port must be between 1 and 65535"}
		return finish(t, OpTLS, host, start, res, false, res.Error)
	}
	res := t.tls.Inspect(ctx, host, p.Port)
	return finish(t, OpTLS, host, start, res, res.Success, res.Error)
}

// Whois queries registration data for a domain.
func (t *Toolkit) Whois(ctx context.Context, p WhoisParams) model.WhoisResult {
	start := time.Now()
	domain := strings.TrimSpace(p.Domain)
	if domain == "" {
		res := model.WhoisResult{
			Parsed: model.WhoisFields{NameServers: []string{}, Status: []string{}},
			Error:  "domain is required",
		}
		return finish(t, OpWhois, domain, start, res, false, res.Error)
	}
	res := probes.NewWhoisClient(t.runner, t.cfg.WhoisTimeout).Lookup(ctx, domain)
	return finish(t, OpWhois, domain, start, res, res.Success, res.Error)
}

// HTTPHeaders fetches response headers with a HEAD request.
func (t *Toolkit) HTTPHeaders(ctx context.Context, p HTTPHeadersParams) model.HTTPHeadersResult {
	start := time.Now()
	url := strings.TrimSpace(p.URL)
	if url == "" {
		res := model.HTTPHeadersResult{
			Headers:         map[string]string{},
			SecurityHeaders: map[string]*string{},
			Error:           "url is required",
		}
		return finish(t, OpHeaders, url, start, res, false, res.Error)
	}
	res := t.headers.Inspect(ctx, url)
	return finish(t, OpHeaders, res.URL, start, res, res.Success, res.Error)
}

// CalculateSubnet describes an IPv4 CIDR block.
func (t *Toolkit) CalculateSubnet(p SubnetParams) model.SubnetResult {
	start := time.Now()
	cidr := strings.TrimSpace(p.CIDR)
	res := model.SubnetResult{CIDR: cidr}
	if cidr == "" {
		res.Error = "cidr is required"
		return finish(t, OpSubnet, cidr, start, res, false, res.Error)
	}

	info, err := probes.CalculateSubnet(cidr)
	if err != nil {
		res.Error = err.Error()
	} else {
		res.Info = info
		res.Success = true
	}
	return finish(t, OpSubnet, cidr, start, res, res.Success, res.Error)
}

// WakeOnLAN broadcasts a magic packet.
func (t *Toolkit) WakeOnLAN(ctx context.Context, p WakeOnLANParams) model.WakeOnLANResult {
	start := time.Now()
	mac := strings.TrimSpace(p.MAC)
	broadcast := p.Broadcast
	if broadcast == "" {
		broadcast = t.cfg.WOLBroadcast
	}
	port := p.Port
	if port == 0 {
		port = t.cfg.WOLPort
	}
	if mac == "" {
		res := model.WakeOnLANResult{Broadcast: broadcast, Port: port, Error: "mac is required"}
		return finish(t, OpWakeOnLAN, mac, start, res, false, res.Error)
	}
	res := t.wol.Send(ctx, mac, broadcast, port)
	return finish(t, OpWakeOnLAN, mac, start, res, res.Success, res.Error)
}

// ScanNetwork discovers live hosts in a subnet of at most 1024 addresses.
func (t *Toolkit) ScanNetwork(ctx context.Context, p NetworkScanParams) model.NetworkScanResult {
	start := time.Now()
	subnet := strings.TrimSpace(p.Subnet)
	if subnet == "" {
		res := model.NetworkScanResult{Hosts: []model.ScanHost{}, Error: "subnet is required"}
		return finish(t, OpNetworkScan, subnet, start, res, false, res.Error)
	}
	res := probes.NewNetworkScanner(t.tcp, t.dns).Scan(ctx, subnet, millis(p.TimeoutMs, t.cfg.SweepTimeout))
	return finish(t, OpNetworkScan, subnet, start, res, res.Success, res.Error)
}

// Interfaces lists local non-loopback interface addresses.
func (t *Toolkit) Interfaces() model.InterfacesResult {
	start := time.Now()
	res := t.interfaces.List()
	return finish(t, OpInterfaces, "", start, res, res.Success, res.Error)
}

// Tools reports which external binaries are installed.
func (t *Toolkit) Tools(ctx context.Context) model.ToolsResult {
	return model.ToolsResult{Tools: t.resolver.Availability(ctx), Success: true}
}
