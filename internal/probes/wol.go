package probes

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"

	"github.com/user/netkit/internal/model"
	"github.com/user/netkit/internal/util"
)

const (
	DefaultWOLBroadcast = "255.255.255.255"
	DefaultWOLPort      = 9
	magicPacketSize     = 6 + 16*6
)

// ErrInvalidMAC is returned for MAC addresses that are not 12 hex digits.
var ErrInvalidMAC = errors.New("invalid MAC address")

var macRe = regexp.MustCompile(`^[0-9A-F]{12}$`)

// NormalizeMAC strips ':', '-' and '.' separators and upper-cases the
// address, returning the 12 hex digits.
func NormalizeMAC(mac string) (string, error) {
	n := strings.ToUpper(strings.NewReplacer(":", "", "-", "", ".", "", " ", "").Replace(mac))
	if !macRe.MatchString(n) {
		return "", fmt.Errorf("%w: %q", ErrInvalidMAC, mac)
	}
	return n, nil
}

// BuildMagicPacket returns six 0xFF bytes followed by the MAC repeated 16
// times.
func BuildMagicPacket(mac string) ([]byte, error) {
	n, err := NormalizeMAC(mac)
	if err != nil {
		return nil, err
	}
	hw, _ := hex.DecodeString(n)

	packet := make([]byte, 0, magicPacketSize)
	for i := 0; i < 6; i++ {
		packet = append(packet, 0xFF)
	}
	for i := 0; i < 16; i++ {
		packet = append(packet, hw...)
	}
	return packet, nil
}

// WakeOnLAN sends magic packets over UDP broadcast.
type WakeOnLAN struct {
	listen func(ctx context.Context) (net.PacketConn, error)
}

// NewWakeOnLAN creates a sender using a broadcast-enabled UDP socket.
func NewWakeOnLAN() *WakeOnLAN {
	return &WakeOnLAN{listen: listenBroadcast}
}

func listenBroadcast(ctx context.Context) (net.PacketConn, error) {
	lc := net.ListenConfig{Control: enableBroadcast}
	return lc.ListenPacket(ctx, "udp4", ":0")
}

// Send builds the magic packet for mac and sends it to broadcast:port.
// Success means the packet left the socket; receipt cannot be confirmed.
func (w *WakeOnLAN) Send(ctx context.Context, mac, broadcast string, port int) model.WakeOnLANResult {
	if broadcast == "" {
		broadcast = DefaultWOLBroadcast
	}
	if port == 0 {
		port = DefaultWOLPort
	}
	result := model.WakeOnLANResult{MAC: mac, Broadcast: broadcast, Port: port}

	packet, err := BuildMagicPacket(mac)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.MAC = formatMAC(mac)

	ip := net.ParseIP(broadcast).To4()
	if ip == nil {
		result.Error = fmt.Sprintf("invalid broadcast address %q", broadcast)
		return result
	}
	if port < 1 || port > maxPort {
		result.Error = fmt.Sprintf("invalid port %d", port)
		return result
	}

	conn, err := w.listen(ctx)
	if err != nil {
		result.Error = fmt.Sprintf("failed to open UDP socket: %v", err)
		return result
	}
	defer conn.Close()

	addr := &net.UDPAddr{IP: ip, Port: port}
	if _, err := conn.WriteTo(packet, addr); err != nil {
		result.Error = fmt.Sprintf("failed to send magic packet: %v", err)
		return result
	}

	util.Info("Sent magic packet for %s to %s", result.MAC, net.JoinHostPort(broadcast, strconv.Itoa(port)))
	result.Success = true
	return result
}

// formatMAC renders a valid MAC as colon-separated upper-case pairs.
func formatMAC(mac string) string {
	n, err := NormalizeMAC(mac)
	if err != nil {
		return mac
	}
	parts := make([]string, 0, 6)
	for i := 0; i < len(n); i += 2 {
		parts = append(parts, n[i:i+2])
	}
	return strings.Join(parts, ":")
}
