//go:build windows

package tray

import (
	"log"

	"github.com/getlantern/systray"
)

// Run shows the tray icon and blocks until Quit.
func Run(title string, actions Actions) {
	systray.Run(func() { onReady(title, actions) }, func() {
		log.Printf("Tray: exited")
	})
}

// Quit removes the tray icon.
func Quit() { systray.Quit() }

// UpdateTooltip changes the hover text.
func UpdateTooltip(text string) { systray.SetTooltip(text) }

func onReady(title string, actions Actions) {
	systray.SetIcon(IconICO())
	systray.SetTitle(title)
	systray.SetTooltip(title)

	for _, it := range Items(actions) {
		if it.Label == "Quit" {
			systray.AddSeparator()
		}
		mi := systray.AddMenuItem(it.Label, it.Tooltip)
		go func(it Item, mi *systray.MenuItem) {
			for range mi.ClickedCh {
				safeCall(it.Label, it.Action)
			}
		}(it, mi)
	}
}
