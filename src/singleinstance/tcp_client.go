package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

type tcpClient struct{}

func newTcpClient() Client { return &tcpClient{} }

func (c *tcpClient) Send(ctx context.Context, cmd string) (bool, string, error) {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" || strings.ContainsAny(cmd, "\r\n") {
		return false, "", fmt.Errorf("invalid command %q", cmd)
	}
	port, err := FindResident(ctx)
	if errors.Is(err, ErrNoResident) {
		return false, "", nil
	}
	if err != nil {
		return false, "", err
	}
	return exchange(residentAddr(port), cmd, pingTimeout(ctx, 2*time.Second))
}

func exchange(addr, cmd string, timeout time.Duration) (bool, string, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false, "", nil
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(commandPrefix + cmd + "\n"); err != nil {
		return true, "", err
	}
	if err := w.Flush(); err != nil {
		return true, "", err
	}
	br := bufio.NewReader(conn)
	status, err := br.ReadString('\n')
	if err != nil {
		return true, "", err
	}
	body, _ := io.ReadAll(br)
	switch status {
	case okResponse:
		return true, string(body), nil
	case errorResponse:
		return true, "", errors.New(string(body))
	default:
		return true, "", fmt.Errorf("unexpected response %q", strings.TrimSpace(status))
	}
}
