//go:build unix

package probes

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// enableBroadcast is a net.ListenConfig control function that sets
// SO_BROADCAST on the socket.
func enableBroadcast(network, address string, c syscall.RawConn) error {
	var opErr error
	err := c.Control(func(fd uintptr) {
		opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
	})
	if err != nil {
		return err
	}
	return opErr
}
