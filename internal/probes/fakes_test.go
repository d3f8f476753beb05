package probes

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"syscall"
)

// fakeRunner returns canned output and records every spec it was given.
type fakeRunner struct {
	mu    sync.Mutex
	out   *ProcessOutput
	err   error
	specs []CommandSpec
}

func (f *fakeRunner) Run(_ context.Context, spec CommandSpec) (*ProcessOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.specs = append(f.specs, spec)
	return f.out, f.err
}

// fakeDialer answers from a per-address table. Unknown addresses block
// until the context expires, like a silently dropped SYN.
type fakeDialer struct {
	open    map[string]bool
	refused map[string]bool
	calls   atomic.Int32
}

func (d *fakeDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	d.calls.Add(1)
	switch {
	case d.open[address]:
		client, server := net.Pipe()
		server.Close()
		return client, nil
	case d.refused[address]:
		return nil, &net.OpError{Op: "dial", Net: network, Err: syscall.ECONNREFUSED}
	}
	<-ctx.Done()
	return nil, &net.OpError{Op: "dial", Net: network, Err: ctx.Err()}
}

// fakeLookuper serves DNS answers from maps; missing entries are NXDOMAIN.
type fakeLookuper struct {
	ips   map[string][]net.IP
	mx    []*net.MX
	txt   []string
	ns    []*net.NS
	cname string
	srv   []*net.SRV
	addrs map[string][]string
}

func notFound(name string) error {
	return &net.DNSError{Err: "no such host", Name: name, IsNotFound: true}
}

func (f *fakeLookuper) LookupIP(_ context.Context, network, host string) ([]net.IP, error) {
	if ips, ok := f.ips[network]; ok {
		return ips, nil
	}
	return nil, notFound(host)
}

func (f *fakeLookuper) LookupMX(_ context.Context, name string) ([]*net.MX, error) {
	if f.mx == nil {
		return nil, notFound(name)
	}
	return f.mx, nil
}

func (f *fakeLookuper) LookupTXT(_ context.Context, name string) ([]string, error) {
	if f.txt == nil {
		return nil, notFound(name)
	}
	return f.txt, nil
}

func (f *fakeLookuper) LookupNS(_ context.Context, name string) ([]*net.NS, error) {
	if f.ns == nil {
		return nil, notFound(name)
	}
	return f.ns, nil
}

func (f *fakeLookuper) LookupCNAME(_ context.Context, host string) (string, error) {
	if f.cname == "" {
		return "", notFound(host)
	}
	return f.cname, nil
}

func (f *fakeLookuper) LookupSRV(_ context.Context, _, _, name string) (string, []*net.SRV, error) {
	if f.srv == nil {
		return "", nil, notFound(name)
	}
	return name, f.srv, nil
}

func (f *fakeLookuper) LookupAddr(_ context.Context, addr string) ([]string, error) {
	if names, ok := f.addrs[addr]; ok {
		return names, nil
	}
	if addr == "192.0.2.99" {
		return nil, errors.New("server misbehaving")
	}
	return nil, notFound(addr)
}
