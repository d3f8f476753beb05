package probes

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"
	"golang.org/x/sync/errgroup"

	"github.com/user/netkit/internal/model"
	"github.com/user/netkit/internal/util"
)

const (
	resolvConf     = "/etc/resolv.conf"
	soaTimeout     = 5 * time.Second
	serverDialWait = 2 * time.Second
)

// allRecordTypes are the types queried by an ALL lookup, in result order.
var allRecordTypes = []model.RecordType{
	model.RecordA, model.RecordAAAA, model.RecordMX, model.RecordNS, model.RecordTXT,
}

// Lookuper is the subset of *net.Resolver used for forward and reverse
// lookups.
type Lookuper interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupTXT(ctx context.Context, name string) ([]string, error)
	LookupNS(ctx context.Context, name string) ([]*net.NS, error)
	LookupCNAME(ctx context.Context, host string) (string, error)
	LookupSRV(ctx context.Context, service, proto, name string) (string, []*net.SRV, error)
	LookupAddr(ctx context.Context, addr string) ([]string, error)
}

// SOALookup resolves the SOA record of a zone.
type SOALookup func(ctx context.Context, domain string) ([]model.DNSRecord, error)

// DNSResolver performs DNS queries through the system resolver, or through
// a specific server when one is configured.
type DNSResolver struct {
	lookup Lookuper
	soa    SOALookup
}

// NewDNSResolver creates a resolver. An empty server uses the system
// resolver; otherwise server is "host" or "host:port".
func NewDNSResolver(server string) *DNSResolver {
	addr := serverAddr(server)
	var resolver *net.Resolver
	if addr == "" {
		resolver = net.DefaultResolver
	} else {
		resolver = &net.Resolver{
			PreferGo: true,
			Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
				d := net.Dialer{Timeout: serverDialWait}
				return d.DialContext(ctx, network, addr)
			},
		}
	}
	return &DNSResolver{
		lookup: resolver,
		soa:    soaVia(addr),
	}
}

// NewDNSResolverWith creates a resolver from explicit backends.
func NewDNSResolverWith(lookup Lookuper, soa SOALookup) *DNSResolver {
	return &DNSResolver{lookup: lookup, soa: soa}
}

func serverAddr(server string) string {
	server = strings.TrimSpace(server)
	if server == "" {
		return ""
	}
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	return net.JoinHostPort(server, "53")
}

// ParseRecordType validates a record type name. Empty means A.
func ParseRecordType(s string) (model.RecordType, error) {
	t := model.RecordType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case "":
		return model.RecordA, nil
	case model.RecordA, model.RecordAAAA, model.RecordMX, model.RecordTXT, model.RecordNS,
		model.RecordSOA, model.RecordCNAME, model.RecordSRV, model.RecordALL:
		return t, nil
	}
	return "", fmt.Errorf("unsupported record type %q", s)
}

// Lookup queries records of type t for domain. ALL queries A, AAAA, MX, NS
// and TXT independently; a type with no answer does not fail the lookup.
func (r *DNSResolver) Lookup(ctx context.Context, domain string, t model.RecordType) model.DNSResult {
	result := model.DNSResult{Domain: domain, Type: string(t), Records: []model.DNSRecord{}}
	start := time.Now()

	var (
		records []model.DNSRecord
		err     error
	)
	if t == model.RecordALL {
		records, err = r.lookupAll(ctx, domain)
	} else {
		records, err = r.lookupType(ctx, domain, t)
	}
	if len(records) > 0 {
		result.Records = records
	}
	result.QueryTimeMs = time.Since(start).Milliseconds()

	switch {
	case err != nil:
		result.Error = err.Error()
	case len(result.Records) == 0:
		result.Error = fmt.Sprintf("no %s records found for %s", t, domain)
	default:
		result.Success = true
	}

	util.Debug("DNS %s %s: %d records in %dms", t, domain, len(result.Records), result.QueryTimeMs)
	return result
}

func (r *DNSResolver) lookupAll(ctx context.Context, domain string) ([]model.DNSRecord, error) {
	perType := make([][]model.DNSRecord, len(allRecordTypes))
	var (
		mu      sync.Mutex
		lastErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	for i, t := range allRecordTypes {
		i, t := i, t
		g.Go(func() error {
			records, err := r.lookupType(gctx, domain, t)
			if err != nil {
				util.Debug("DNS ALL %s: %s lookup failed: %v", domain, t, err)
				mu.Lock()
				lastErr = err
				mu.Unlock()
				return nil
			}
			perType[i] = records
			return nil
		})
	}
	g.Wait()

	var all []model.DNSRecord
	for _, records := range perType {
		all = append(all, records...)
	}
	if len(all) == 0 && lastErr != nil {
		return nil, fmt.Errorf("no records found for %s: %w", domain, lastErr)
	}
	return all, nil
}

func (r *DNSResolver) lookupType(ctx context.Context, domain string, t model.RecordType) ([]model.DNSRecord, error) {
	var records []model.DNSRecord

	switch t {
	case model.RecordA, model.RecordAAAA:
		network := "ip4"
		if t == model.RecordAAAA {
			network = "ip6"
		}
		ips, err := r.lookup.LookupIP(ctx, network, domain)
		if err != nil {
			return nil, err
		}
		for _, ip := range ips {
			records = append(records, model.NewValueRecord(t, ip.String()))
		}

	case model.RecordMX:
		mxs, err := r.lookup.LookupMX(ctx, domain)
		if err != nil {
			return nil, err
		}
		for _, mx := range mxs {
			records = append(records, model.MXRecord{Type: t, Priority: mx.Pref, Value: trimDot(mx.Host)})
		}

	case model.RecordTXT:
		txts, err := r.lookup.LookupTXT(ctx, domain)
		if err != nil {
			return nil, err
		}
		for _, txt := range txts {
			records = append(records, model.NewValueRecord(t, txt))
		}

	case model.RecordNS:
		nss, err := r.lookup.LookupNS(ctx, domain)
		if err != nil {
			return nil, err
		}
		for _, ns := range nss {
			records = append(records, model.NewValueRecord(t, trimDot(ns.Host)))
		}

	case model.RecordCNAME:
		cname, err := r.lookup.LookupCNAME(ctx, domain)
		if err != nil {
			return nil, err
		}
		// The resolver answers with the name itself when there is no alias.
		if cname = trimDot(cname); cname != "" && !strings.EqualFold(cname, trimDot(domain)) {
			records = append(records, model.NewValueRecord(t, cname))
		}

	case model.RecordSRV:
		_, srvs, err := r.lookup.LookupSRV(ctx, "", "", domain)
		if err != nil {
			return nil, err
		}
		for _, srv := range srvs {
			records = append(records, model.SRVRecord{
				Type:     t,
				Priority: srv.Priority,
				Weight:   srv.Weight,
				Port:     srv.Port,
				Value:    trimDot(srv.Target),
			})
		}

	case model.RecordSOA:
		if r.soa == nil {
			return nil, errors.New("SOA lookups are not supported by this resolver")
		}
		return r.soa(ctx, domain)

	default:
		return nil, fmt.Errorf("unsupported record type %q", t)
	}

	return records, nil
}

// Reverse resolves the PTR names of ip. No names is a soft failure.
func (r *DNSResolver) Reverse(ctx context.Context, ip string) model.ReverseDNSResult {
	result := model.ReverseDNSResult{IP: ip, Hostnames: []string{}}
	if net.ParseIP(ip) == nil {
		result.Error = fmt.Sprintf("invalid IP address %q", ip)
		return result
	}

	names, err := r.lookup.LookupAddr(ctx, ip)
	for _, name := range names {
		if name = trimDot(name); name != "" {
			result.Hostnames = append(result.Hostnames, name)
		}
	}

	switch {
	case len(result.Hostnames) > 0:
		result.Success = true
	case err != nil && !isNotFound(err):
		result.Error = err.Error()
	default:
		result.Error = "no hostname found"
	}
	return result
}

// soaVia returns an SOALookup that queries server, or the first name server
// from resolv.conf when server is empty.
func soaVia(server string) SOALookup {
	return func(ctx context.Context, domain string) ([]model.DNSRecord, error) {
		addr := server
		if addr == "" {
			conf, err := dns.ClientConfigFromFile(resolvConf)
			if err != nil {
				return nil, fmt.Errorf("no DNS server available for SOA lookup: %w", err)
			}
			if len(conf.Servers) == 0 {
				return nil, errors.New("no DNS server available for SOA lookup")
			}
			addr = net.JoinHostPort(conf.Servers[0], conf.Port)
		}

		msg := new(dns.Msg)
		msg.SetQuestion(dns.Fqdn(domain), dns.TypeSOA)

		client := &dns.Client{Timeout: soaTimeout}
		in, _, err := client.ExchangeContext(ctx, msg, addr)
		if err != nil {
			return nil, fmt.Errorf("SOA query to %s failed: %w", addr, err)
		}
		if in.Rcode != dns.RcodeSuccess {
			return nil, fmt.Errorf("SOA query for %s: %s", domain, dns.RcodeToString[in.Rcode])
		}

		var records []model.DNSRecord
		for _, rr := range in.Answer {
			if soa, ok := rr.(*dns.SOA); ok {
				records = append(records, model.SOARecord{
					Type:       model.RecordSOA,
					NSName:     trimDot(soa.Ns),
					Hostmaster: trimDot(soa.Mbox),
					Serial:     soa.Serial,
					Refresh:    soa.Refresh,
					Retry:      soa.Retry,
					Expire:     soa.Expire,
					MinTTL:     soa.Minttl,
				})
			}
		}
		return records, nil
	}
}

func trimDot(s string) string {
	return strings.TrimSuffix(s, ".")
}

func isNotFound(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr) && dnsErr.IsNotFound
}
