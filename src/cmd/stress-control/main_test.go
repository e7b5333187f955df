package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"screen-translate-overlay/src/singleinstance"
)

func TestNewRootCmdDefaults(t *testing.T) {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if opts.n != 50 {
		t.Fatalf("Expected default n=50, got %d", opts.n)
	}
	if opts.command != "STATUS" {
		t.Fatalf("Expected default command=STATUS, got %q", opts.command)
	}
	if opts.deadline != 5*time.Second {
		t.Fatalf("Expected default deadline=5s, got %v", opts.deadline)
	}
}

func TestUnknownCommandRejected(t *testing.T) {
	cmd := newRootCmd(&stressOptions{})
	cmd.SetArgs([]string{"--command", "reboot", "--n", "1"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("Expected unknown command error")
	}
}

type countingClient struct {
	calls int32
}

func (c *countingClient) Send(ctx context.Context, cmd singleinstance.Command) (bool, string, error) {
	switch atomic.AddInt32(&c.calls, 1) % 3 {
	case 0:
		return false, "", errors.New("reset")
	case 1:
		return true, "ok", nil
	}
	return false, "", nil
}

func TestStressTallies(t *testing.T) {
	client := &countingClient{}
	got := stress(client, singleinstance.CommandStatus, 9, time.Second)
	if got.ok != 3 || got.missed != 3 || got.failed != 3 {
		t.Fatalf("Unexpected tally %+v", got)
	}

	var out bytes.Buffer
	report(&out, 9, got, time.Second)
	if !strings.HasPrefix(out.String(), "launched=9 ok=3 missed=3 err=3") {
		t.Errorf("Unexpected report %q", out.String())
	}
}
