package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"time"
)

type tcpClient struct{}

func newTcpClient() Client { return &tcpClient{} }

func (c *tcpClient) Send(ctx context.Context, cmd Command) (bool, string, error) {
	port, ok := DetectResidentPort(ctx)
	if !ok {
		return false, "", nil
	}
	timeout := timeoutFrom(ctx, 2*time.Second)
	addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false, "", nil
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(string(cmd) + "\n"); err != nil {
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
	case successResponse:
		return true, string(body), nil
	case errorResponse:
		return true, "", errors.New(string(body))
	}
	return true, "", errors.New("unexpected response from resident")
}

// DetectResidentPort scans the port range and returns (port, true) if a resident responds to PING.
func DetectResidentPort(ctx context.Context) (int, bool) {
	timeout := timeoutFrom(ctx, 300*time.Millisecond)
	start, end := getPortRange()
	for port := start; port <= end; port++ {
		addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
		if ping(addr, timeout) {
			return port, true
		}
	}
	return 0, false
}

func ping(addr string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))
	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(pingRequest); err != nil {
		return false
	}
	if err := w.Flush(); err != nil {
		return false
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	return err == nil && resp == pongResponse
}

func timeoutFrom(ctx context.Context, def time.Duration) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < def {
			return d
		}
	}
	return def
}
