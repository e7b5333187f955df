//go:build windows

package config

// Windows has no spectacle; capture the virtual screen in-process.
const defaultCaptureBackend = "display"
