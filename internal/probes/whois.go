package probes

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/user/netkit/internal/model"
	"github.com/user/netkit/internal/util"
)

const defaultWhoisTimeout = 15 * time.Second

// WhoisClient queries the system whois binary.
type WhoisClient struct {
	runner  CommandRunner
	timeout time.Duration
}

// NewWhoisClient creates a new WHOIS client.
func NewWhoisClient(runner CommandRunner, timeout time.Duration) *WhoisClient {
	if timeout <= 0 {
		timeout = defaultWhoisTimeout
	}
	return &WhoisClient{runner: runner, timeout: timeout}
}

// Lookup runs whois for domain and extracts the registration fields.
func (c *WhoisClient) Lookup(ctx context.Context, domain string) model.WhoisResult {
	domain = SanitizeTarget(domain)
	result := model.WhoisResult{
		Domain: domain,
		Parsed: model.WhoisFields{NameServers: []string{}, Status: []string{}},
	}
	if domain == "" {
		result.Error = "domain is required"
		return result
	}

	out, err := c.runner.Run(ctx, CommandSpec{
		Tool:    ToolWhois,
		Args:    []string{domain},
		Timeout: c.timeout,
	})
	if out == nil {
		result.Error = errorText(err, "whois failed")
		return result
	}

	result.RawData = out.Stdout
	if strings.TrimSpace(result.RawData) == "" {
		result.RawData = out.Combined()
	}
	result.Parsed = parseWhois(result.RawData)
	result.Success = strings.TrimSpace(out.Stdout) != ""

	switch {
	case err != nil:
		result.Error = err.Error()
	case !result.Success:
		result.Error = "whois returned no data"
		if s := strings.TrimSpace(out.Stderr); s != "" {
			result.Error = s
		}
	}

	util.Debug("Whois %s: registrar=%q, %d name servers", domain, result.Parsed.Registrar, len(result.Parsed.NameServers))
	return result
}

var (
	whoisRegistrarRe      = regexp.MustCompile(`(?im)^\s*(?:Registrar|Sponsoring Registrar|registrar name):[ \t]*(\S.*?)\s*$`)
	whoisRegistrantNameRe = regexp.MustCompile(`(?im)^\s*Registrant(?: Name)?:[ \t]*(\S.*?)\s*$`)
	whoisRegistrantOrgRe  = regexp.MustCompile(`(?im)^\s*Registrant Organi[sz]ation:[ \t]*(\S.*?)\s*$`)
	whoisCreationRe       = regexp.MustCompile(`(?im)^\s*(?:Creation Date|Created On|Created|Registered On|Domain Registration Date):[ \t]*(\S.*?)\s*$`)
	whoisExpirationRe     = regexp.MustCompile(`(?im)^\s*(?:Registry Expiry Date|Registrar Registration Expiration Date|Expiry Date|Expiration Date|Expires On|paid-till):[ \t]*(\S.*?)\s*$`)
	whoisUpdatedRe        = regexp.MustCompile(`(?im)^\s*(?:Updated Date|Last Updated On|Last Modified|last-modified):[ \t]*(\S.*?)\s*$`)
	whoisNameServerRe     = regexp.MustCompile(`(?im)^\s*(?:Name Server|Nameserver|nserver):[ \t]*(\S+)`)
	whoisStatusRe         = regexp.MustCompile(`(?im)^\s*(?:Domain Status|Status|state):[ \t]*(\S.*?)\s*$`)
)

// parseWhois extracts normalized fields from raw WHOIS text. Single-valued
// fields take the first match; name servers and status collect every line.
func parseWhois(raw string) model.WhoisFields {
	fields := model.WhoisFields{
		Registrar:      firstMatch(whoisRegistrarRe, raw),
		RegistrantName: firstMatch(whoisRegistrantNameRe, raw),
		RegistrantOrg:  firstMatch(whoisRegistrantOrgRe, raw),
		CreationDate:   firstMatch(whoisCreationRe, raw),
		ExpirationDate: firstMatch(whoisExpirationRe, raw),
		UpdatedDate:    firstMatch(whoisUpdatedRe, raw),
		NameServers:    []string{},
		Status:         []string{},
	}

	seenNS := make(map[string]bool)
	for _, m := range whoisNameServerRe.FindAllStringSubmatch(raw, -1) {
		ns := strings.ToLower(strings.TrimSuffix(m[1], "."))
		if ns == "" || seenNS[ns] {
			continue
		}
		seenNS[ns] = true
		fields.NameServers = append(fields.NameServers, ns)
	}

	seenStatus := make(map[string]bool)
	for _, m := range whoisStatusRe.FindAllStringSubmatch(raw, -1) {
		status := strings.TrimSpace(m[1])
		if status == "" || seenStatus[status] {
			continue
		}
		seenStatus[status] = true
		fields.Status = append(fields.Status, status)
	}

	return fields
}

func firstMatch(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
