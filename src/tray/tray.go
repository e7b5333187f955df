// Package tray describes the overlay's tray menu and draws its icon.
package tray

import "log"

// Actions are the callbacks behind the tray menu. Nil actions are omitted.
type Actions struct {
	TogglePause   func()
	ToggleVisible func()
	Copy          func()
	Quit          func()
}

// Item is one menu entry.
type Item struct {
	Label   string
	Tooltip string
	Action  func()
}

// Items returns the menu in display order.
func Items(a Actions) []Item {
	all := []Item{
		{Label: "Pause / Resume", Tooltip: "Stop or resume capturing the screen", Action: a.TogglePause},
		{Label: "Show / Hide", Tooltip: "Show or hide translated text", Action: a.ToggleVisible},
		{Label: "Copy Translations", Tooltip: "Copy the current translations to the clipboard", Action: a.Copy},
		{Label: "Quit", Tooltip: "Quit the overlay", Action: a.Quit},
	}
	var items []Item
	for _, it := range all {
		if it.Action != nil {
			items = append(items, it)
		}
	}
	return items
}

// Tooltip summarizes the overlay state for the tray.
func Tooltip(title string, paused, visible bool) string {
	switch {
	case paused:
		return title + " (paused)"
	case !visible:
		return title + " (hidden)"
	}
	return title
}

func safeCall(label string, f func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Tray: PANIC in %q: %v", label, r)
		}
	}()
	f()
}
