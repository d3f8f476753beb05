package probes

import (
	"net"
	"strconv"

	"github.com/user/netkit/internal/model"
	"github.com/user/netkit/internal/util"
)

const zeroMAC = "00:00:00:00:00:00"

// InterfaceAddrs is one interface together with its addresses.
type InterfaceAddrs struct {
	Name         string
	Flags        net.Flags
	HardwareAddr net.HardwareAddr
	Addrs        []net.Addr
}

// InterfaceSource lists the host's interfaces.
type InterfaceSource func() ([]InterfaceAddrs, error)

// SystemInterfaces reads interfaces from the operating system. Interfaces
// whose addresses cannot be read are returned without addresses.
func SystemInterfaces() ([]InterfaceAddrs, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	out := make([]InterfaceAddrs, 0, len(ifaces))
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			util.Debug("Skipping addresses of %s: %v", iface.Name, err)
		}
		out = append(out, InterfaceAddrs{
			Name:         iface.Name,
			Flags:        iface.Flags,
			HardwareAddr: iface.HardwareAddr,
			Addrs:        addrs,
		})
	}
	return out, nil
}

// InterfaceEnumerator flattens local interfaces into one entry per address.
type InterfaceEnumerator struct {
	source InterfaceSource
}

// NewInterfaceEnumerator creates an enumerator. A nil source reads the
// system interfaces.
func NewInterfaceEnumerator(source InterfaceSource) *InterfaceEnumerator {
	if source == nil {
		source = SystemInterfaces
	}
	return &InterfaceEnumerator{source: source}
}

// List returns every non-loopback interface address. Platform errors yield
// an empty, successful result.
func (e *InterfaceEnumerator) List() model.InterfacesResult {
	result := model.InterfacesResult{Interfaces: []model.NetworkInterfaceInfo{}, Success: true}

	ifaces, err := e.source()
	if err != nil {
		util.Debug("Interface enumeration failed: %v", err)
		return result
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		mac := zeroMAC
		if len(iface.HardwareAddr) > 0 {
			mac = iface.HardwareAddr.String()
		}
		for _, addr := range iface.Addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok || ipNet.IP == nil || ipNet.IP.IsLoopback() {
				continue
			}
			result.Interfaces = append(result.Interfaces, describeAddr(iface.Name, mac, ipNet))
		}
	}
	return result
}

func describeAddr(name, mac string, ipNet *net.IPNet) model.NetworkInterfaceInfo {
	info := model.NetworkInterfaceInfo{Name: name, MAC: mac, Address: ipNet.IP.String()}
	mask := ipNet.Mask

	if ip4 := ipNet.IP.To4(); ip4 != nil {
		info.Family = "IPv4"
		info.Address = ip4.String()
		if len(mask) == net.IPv6len {
			mask = mask[12:]
		}
	} else {
		info.Family = "IPv6"
	}
	if len(mask) > 0 {
		info.Netmask = net.IP(mask).String()
		ones, _ := mask.Size()
		info.CIDR = info.Address + "/" + strconv.Itoa(ones)
	}
	return info
}
