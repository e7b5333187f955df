//go:build !windows

package tray

import "log"

// UpdateTooltip logs the state; the desktop tray used off Windows has no
// hover text.
func UpdateTooltip(text string) { log.Printf("Tray: %s", text) }
