package probes

import (
	"bytes"
	"context"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/user/netkit/internal/model"
	"github.com/user/netkit/internal/util"
)

const (
	defaultTLSPort    = 443
	defaultTLSTimeout = 10 * time.Second
)

// TLSInspector fetches and describes the certificate a server presents.
type TLSInspector struct {
	timeout time.Duration
	roots   *x509.CertPool
	now     func() time.Time
}

// NewTLSInspector creates an inspector that judges validity against the
// system roots.
func NewTLSInspector(timeout time.Duration) *TLSInspector {
	if timeout <= 0 {
		timeout = defaultTLSTimeout
	}
	return &TLSInspector{timeout: timeout, now: time.Now}
}

// SetRoots overrides the trust roots used for the validity verdict.
func (i *TLSInspector) SetRoots(roots *x509.CertPool) {
	i.roots = roots
}

// Inspect connects to host:port without verifying the peer, so expired and
// self-signed certificates can still be read, and then verifies the chain
// separately to report isValid.
func (i *TLSInspector) Inspect(ctx context.Context, host string, port int) model.SSLCertificateInfo {
	if port == 0 {
		port = defaultTLSPort
	}
	info := model.SSLCertificateInfo{Host: host, Port: port, SubjectAltNames: []string{}, Chain: []model.ChainLink{}}

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	cfg := &tls.Config{InsecureSkipVerify: true}
	if net.ParseIP(host) == nil {
		cfg.ServerName = host
	}
	dialer := &tls.Dialer{NetDialer: &net.Dialer{}, Config: cfg}

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		info.Error = err.Error()
		return info
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		info.Error = "server presented no certificate"
		return info
	}

	leaf := state.PeerCertificates[0]
	info.Subject = certName(leaf.Subject)
	info.Issuer = certName(leaf.Issuer)
	info.ValidFrom = leaf.NotBefore.UTC()
	info.ValidTo = leaf.NotAfter.UTC()
	info.SerialNumber = strings.ToUpper(leaf.SerialNumber.Text(16))
	info.Fingerprint = fingerprint(sha1Sum(leaf.Raw))
	info.Fingerprint256 = fingerprint(sha256Sum(leaf.Raw))
	info.SubjectAltNames = subjectAltNames(leaf)
	info.DaysUntilExpiry = daysUntil(leaf.NotAfter, i.now())
	info.Protocol = tls.VersionName(state.Version)
	info.Cipher = tls.CipherSuiteName(state.CipherSuite)
	info.Chain = walkChain(state.PeerCertificates)

	if err := i.verify(host, state.PeerCertificates); err != nil {
		info.AuthorizationError = err.Error()
	} else {
		info.IsValid = true
	}
	info.Success = true

	util.Debug("TLS %s:%d: %s, expires in %d days, valid=%v", host, port, info.Protocol, info.DaysUntilExpiry, info.IsValid)
	return info
}

func (i *TLSInspector) verify(host string, certs []*x509.Certificate) error {
	intermediates := x509.NewCertPool()
	for _, c := range certs[1:] {
		intermediates.AddCert(c)
	}
	_, err := certs[0].Verify(x509.VerifyOptions{
		DNSName:       host,
		Roots:         i.roots,
		Intermediates: intermediates,
		CurrentTime:   i.now(),
	})
	return err
}

// walkChain follows issuer links from the leaf through the presented
// certificates, stopping at a self-signed root or a missing issuer.
func walkChain(certs []*x509.Certificate) []model.ChainLink {
	chain := []model.ChainLink{}
	seen := make(map[*x509.Certificate]bool)

	for cur := certs[0]; cur != nil && !seen[cur]; {
		seen[cur] = true
		chain = append(chain, model.ChainLink{Subject: certName(cur.Subject), Issuer: certName(cur.Issuer)})
		if bytes.Equal(cur.RawIssuer, cur.RawSubject) {
			break
		}
		cur = findIssuer(cur, certs)
	}
	return chain
}

func findIssuer(cert *x509.Certificate, pool []*x509.Certificate) *x509.Certificate {
	for _, c := range pool {
		if c != cert && bytes.Equal(c.RawSubject, cert.RawIssuer) {
			return c
		}
	}
	return nil
}

func certName(n pkix.Name) model.CertName {
	return model.CertName{
		CommonName:         n.CommonName,
		Organization:       n.Organization,
		OrganizationalUnit: n.OrganizationalUnit,
		Country:            n.Country,
		Province:           n.Province,
		Locality:           n.Locality,
	}
}

func subjectAltNames(c *x509.Certificate) []string {
	sans := make([]string, 0, len(c.DNSNames)+len(c.IPAddresses))
	sans = append(sans, c.DNSNames...)
	for _, ip := range c.IPAddresses {
		sans = append(sans, ip.String())
	}
	sans = append(sans, c.EmailAddresses...)
	for _, u := range c.URIs {
		sans = append(sans, u.String())
	}
	return sans
}

// daysUntil returns whole days from now to t; negative once t has passed.
func daysUntil(t, now time.Time) int {
	return int(math.Floor(t.Sub(now).Hours() / 24))
}

func sha1Sum(b []byte) []byte {
	sum := sha1.Sum(b)
	return sum[:]
}

func sha256Sum(b []byte) []byte {
	sum := sha256.Sum256(b)
	return sum[:]
}

// fingerprint renders a digest as colon-separated upper-case hex pairs.
func fingerprint(sum []byte) string {
	parts := make([]string, len(sum))
	for i, b := range sum {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, ":")
}
