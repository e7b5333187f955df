// Package singleinstance keeps one resident overlay per user session and lets
// later launches forward commands to it over loopback TCP.
package singleinstance

import (
	"context"
	"fmt"
	"strings"
)

// Command is a control request forwarded to the resident process.
type Command string

const (
	CommandToggle Command = "TOGGLE" // show/hide the overlay
	CommandPause  Command = "PAUSE"  // pause/resume capture
	CommandCopy   Command = "COPY"   // copy current translations to the clipboard
	CommandStatus Command = "STATUS"
	CommandQuit   Command = "QUIT"
)

// ParseCommand accepts a command name in any case.
func ParseCommand(s string) (Command, error) {
	c := Command(strings.ToUpper(strings.TrimSpace(s)))
	switch c {
	case CommandToggle, CommandPause, CommandCopy, CommandStatus, CommandQuit:
		return c, nil
	}
	return "", fmt.Errorf("unknown command %q", s)
}

// Server owns the TCP endpoint and answers forwarded commands.
type Server interface {
	// Start begins listening on the first port of the configured range.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted connection as a Conn, or the ctx error.
	// Callers stop it by cancelling ctx.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn represents one client connection and exposes request + response API.
type Conn interface {
	Request() Request
	RespondSuccess(text string) error
	RespondError(msg string) error
	Close() error
}

// Request represents a single forwarded command.
type Request struct {
	Command Command
}

// Client forwards commands to a resident server.
type Client interface {
	// Send scans the port range and delivers cmd to the resident.
	// If no resident is found, returns delivered=false, err=nil.
	Send(ctx context.Context, cmd Command) (delivered bool, reply string, err error)
}

// NewServer returns TCP implementation.
func NewServer() Server { return newTcpServer() }

// NewClient returns TCP implementation.
func NewClient() Client { return newTcpClient() }
