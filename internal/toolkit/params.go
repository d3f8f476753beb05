package toolkit

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/user/netkit/internal/probes"
)

// PingParams are the inputs of a ping. The per-reply timeout may be given
// in seconds or milliseconds; TimeoutMs wins when both are set.
type PingParams struct {
	Host           string `json:"host"`
	Count          int    `json:"count,omitempty"`
	TimeoutSeconds int    `json:"timeoutSeconds,omitempty"`
	TimeoutMs      int    `json:"timeoutMs,omitempty"`
}

// TracerouteParams are the inputs of a traceroute.
type TracerouteParams struct {
	Host    string `json:"host"`
	MaxHops int    `json:"maxHops,omitempty"`
}

// PortScanParams are the inputs of a port scan. An empty Ports scans the
// well-known ports.
type PortScanParams struct {
	Host      string   `json:"host"`
	Ports     PortSpec `json:"ports"`
	TimeoutMs int      `json:"timeoutMs,omitempty"`
}

// PortSpec selects ports either as a spec string such as "22,80,8000-8100"
// or as an explicit list. In JSON it is a string, a list of numbers or a
// single number.
type PortSpec struct {
	Spec string
	List []int
}

// PortList returns a PortSpec for an explicit list of ports.
func PortList(ports ...int) PortSpec {
	return PortSpec{List: append([]int{}, ports...)}
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *PortSpec) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*s = PortSpec{}
	switch {
	case bytes.Equal(data, []byte("null")):
		return nil
	case len(data) > 0 && data[0] == '[':
		s.List = []int{}
		return json.Unmarshal(data, &s.List)
	case len(data) > 0 && data[0] == '"':
		return json.Unmarshal(data, &s.Spec)
	default:
		var port int
		if err := json.Unmarshal(data, &port); err != nil {
			return err
		}
		s.List = []int{port}
		return nil
	}
}

// MarshalJSON implements json.Marshaler.
func (s PortSpec) MarshalJSON() ([]byte, error) {
	if s.List != nil {
		return json.Marshal(s.List)
	}
	return json.Marshal(s.Spec)
}

// Resolve returns the sorted, de-duplicated ports to scan. A list is
// validated as given; an empty spec yields the well-known ports.
func (s PortSpec) Resolve() ([]int, error) {
	if s.List != nil {
		return probes.ValidatePorts(s.List)
	}
	if strings.TrimSpace(s.Spec) == "" {
		return probes.TopPorts(), nil
	}
	return probes.ParsePortSpec(s.Spec)
}

// DNSParams are the inputs of a DNS lookup.
type DNSParams struct {
	Domain string `json:"domain"`
	Type   string `json:"type,omitempty"`
}

// ReverseDNSParams are the inputs of a reverse lookup.
type ReverseDNSParams struct {
	IP string `json:"ip"`
}

// TLSParams are the inputs of a certificate inspection.
type TLSParams struct {
	Host string `json:"host"`
	Port int    `json:"port,omitempty"`
}

// WhoisParams are the inputs of a WHOIS query.
type WhoisParams struct {
	Domain string `json:"domain"`
}

// HTTPHeadersParams are the inputs of a header inspection.
type HTTPHeadersParams struct {
	URL string `json:"url"`
}

// SubnetParams are the inputs of a subnet calculation.
type SubnetParams struct {
	CIDR string `json:"cidr"`
}

// WakeOnLANParams are the inputs of a Wake-on-LAN send.
type WakeOnLANParams struct {
	MAC       string `json:"mac"`
	Broadcast string `json:"broadcast,omitempty"`
	Port      int    `json:"port,omitempty"`
}

// NetworkScanParams are the inputs of a subnet host discovery.
type NetworkScanParams struct {
	Subnet    string `json:"subnet"`
	TimeoutMs int    `json:"timeoutMs,omitempty"`
}
