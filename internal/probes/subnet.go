package probes

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/user/netkit/internal/model"
)

// ErrInvalidCIDR is returned for malformed IPv4 CIDR strings.
var ErrInvalidCIDR = errors.New("invalid CIDR")

var cidrRe = regexp.MustCompile(`^(\d{1,3})\.(\d{1,3})\.(\d{1,3})\.(\d{1,3})/(\d{1,2})$`)

// ParseCIDR splits "A.B.C.D/prefix" into its 32-bit address and prefix.
func ParseCIDR(cidr string) (uint32, int, error) {
	m := cidrRe.FindStringSubmatch(strings.TrimSpace(cidr))
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q is not in A.B.C.D/prefix form", ErrInvalidCIDR, cidr)
	}

	var ip uint32
	for i := 1; i <= 4; i++ {
		octet, _ := strconv.Atoi(m[i])
		if octet > 255 {
			return 0, 0, fmt.Errorf("%w: octet %d out of range 0-255", ErrInvalidCIDR, octet)
		}
		ip = ip<<8 | uint32(octet)
	}

	prefix, _ := strconv.Atoi(m[5])
	if prefix > 32 {
		return 0, 0, fmt.Errorf("%w: prefix /%d out of range 0-32", ErrInvalidCIDR, prefix)
	}
	return ip, prefix, nil
}

// IPToInt converts a dotted IPv4 address to its 32-bit value.
func IPToInt(s string) (uint32, error) {
	ip, _, err := ParseCIDR(s + "/32")
	return ip, err
}

// IntToIP converts a 32-bit value to dotted IPv4 notation.
func IntToIP(v uint32) string {
	return fmt.Sprintf("%d.%d.%d.%d", v>>24, v>>16&0xFF, v>>8&0xFF, v&0xFF)
}

// PrefixMask returns the netmask for prefix.
func PrefixMask(prefix int) uint32 {
	if prefix <= 0 {
		return 0
	}
	return ^uint32(0) << (32 - prefix)
}

// CalculateSubnet breaks an IPv4 CIDR block down into its addresses and
// host range. /31 is a point-to-point link with two usable addresses and
// /32 a single host.
func CalculateSubnet(cidr string) (*model.SubnetInfo, error) {
	ip, prefix, err := ParseCIDR(cidr)
	if err != nil {
		return nil, err
	}

	mask := PrefixMask(prefix)
	wildcard := ^mask
	network := ip & mask
	broadcast := network | wildcard
	total := int64(1) << (32 - prefix)

	var first, last uint32
	var usable int64
	switch prefix {
	case 32:
		first, last, usable = network, network, 1
	case 31:
		first, last, usable = network, broadcast, 2
	default:
		first, last, usable = network+1, broadcast-1, total-2
	}

	return &model.SubnetInfo{
		NetworkAddress:   IntToIP(network),
		BroadcastAddress: IntToIP(broadcast),
		SubnetMask:       IntToIP(mask),
		WildcardMask:     IntToIP(wildcard),
		FirstHost:        IntToIP(first),
		LastHost:         IntToIP(last),
		TotalHosts:       total,
		UsableHosts:      usable,
		Prefix:           prefix,
		IPClass:          ipClass(ip),
		IsPrivate:        isPrivate(ip),
		BinaryMask:       binaryMask(mask),
	}, nil
}

func ipClass(ip uint32) string {
	first := ip >> 24
	switch {
	case first < 128:
		return "A"
	case first < 192:
		return "B"
	case first < 224:
		return "C"
	case first < 240:
		return "D"
	default:
		return "E"
	}
}

// privateRanges are 10/8, 172.16/12, 192.168/16 and loopback 127/8.
var privateRanges = []struct {
	network uint32
	prefix  int
}{
	{10 << 24, 8},
	{172<<24 | 16<<16, 12},
	{192<<24 | 168<<16, 16},
	{127 << 24, 8},
}

func isPrivate(ip uint32) bool {
	for _, r := range privateRanges {
		if ip&PrefixMask(r.prefix) == r.network {
			return true
		}
	}
	return false
}

func binaryMask(mask uint32) string {
	parts := make([]string, 4)
	for i := 0; i < 4; i++ {
		parts[i] = fmt.Sprintf("%08b", mask>>(24-8*i)&0xFF)
	}
	return strings.Join(parts, ".")
}

// hostRange returns every candidate host address of info in order.
func hostRange(info *model.SubnetInfo) []string {
	first, _ := IPToInt(info.FirstHost)
	last, _ := IPToInt(info.LastHost)

	hosts := make([]string, 0, last-first+1)
	for v := first; ; v++ {
		hosts = append(hosts, IntToIP(v))
		if v == last {
			break
		}
	}
	return hosts
}
