//go:build !windows

package config

const defaultCaptureBackend = "command"
