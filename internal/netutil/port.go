// Package netutil provides small TCP reachability helpers.
package netutil

import (
	"context"
	"fmt"
	"net"
	"time"
)

const (
	probeInterval = 1 * time.Second
	dialTimeout   = 2 * time.Second
)

// WaitForPort waits for a TCP port on host to accept connections. It probes
// immediately and then once per second until the timeout elapses.
func WaitForPort(ctx context.Context, host string, port int, timeout time.Duration) error {
	address := net.JoinHostPort(host, fmt.Sprintf("%d", port))

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(probeInterval)
	defer ticker.Stop()

	for {
		conn, err := net.DialTimeout("tcp", address, dialTimeout)
		if err == nil {
			_ = conn.Close()
			return nil
		}

		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return fmt.Errorf("timeout waiting for %s", address)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
