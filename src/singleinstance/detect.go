package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strconv"
	"time"
)

// ErrNoResident means no port in the range answered the PING handshake.
var ErrNoResident = errors.New("no resident instance answered")

const defaultPingTimeout = 300 * time.Millisecond

// FindResident returns the port of the running resident. Ports that accept
// a connection but do not answer PONG belong to someone else and are skipped.
func FindResident(ctx context.Context) (int, error) {
	timeout := pingTimeout(ctx, defaultPingTimeout)
	start, end := getPortRange()
	for port := start; port <= end; port++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if ping(ctx, residentAddr(port), timeout) {
			return port, nil
		}
	}
	return 0, ErrNoResident
}

func residentAddr(port int) string {
	return net.JoinHostPort(residentHost, strconv.Itoa(port))
}

// pingTimeout bounds a single handshake by the context deadline when one is set.
func pingTimeout(ctx context.Context, def time.Duration) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < def {
			return d
		}
	}
	return def
}

func ping(ctx context.Context, addr string, timeout time.Duration) bool {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))
	if _, err := conn.Write([]byte(pingRequest)); err != nil {
		return false
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	return err == nil && resp == pongResponse
}
