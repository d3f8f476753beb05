//go:build !unix && !windows

package probes

import "syscall"

func enableBroadcast(network, address string, c syscall.RawConn) error {
	return nil
}
