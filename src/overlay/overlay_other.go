//go:build !windows

package overlay

import (
	"context"
	"log"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"

	"screen-translate-overlay/src/tray"
)

// fyneHost shows the frames in a borderless full-screen window. Fyne cannot
// make a window click-through or per-pixel transparent, so this host is a
// preview surface rather than a true overlay.
type fyneHost struct {
	opts Options
}

func newHost(opts Options) Host { return &fyneHost{opts: opts} }

func (h *fyneHost) Run(ctx context.Context) error {
	a := app.NewWithID("screen-translate-overlay")
	icon := fyne.NewStaticResource("icon.png", tray.IconPNG())
	a.SetIcon(icon)

	w := a.NewWindow(h.opts.Title)
	w.SetPadded(false)
	img := canvas.NewImageFromImage(h.opts.Frame(time.Now()))
	img.FillMode = canvas.ImageFillStretch
	img.ScaleMode = canvas.ImageScalePixels
	w.SetContent(img)
	w.Resize(fyne.NewSize(float32(h.opts.Bounds.Dx()), float32(h.opts.Bounds.Dy())))
	w.SetFullScreen(true)

	if desk, ok := a.(desktop.App); ok {
		var items []*fyne.MenuItem
		for _, it := range tray.Items(h.opts.Tray) {
			if it.Label == "Quit" {
				// The desktop tray adds its own Quit entry.
				continue
			}
			items = append(items, fyne.NewMenuItem(it.Label, it.Action))
		}
		desk.SetSystemTrayMenu(fyne.NewMenu(h.opts.Title, items...))
		desk.SetSystemTrayIcon(icon)
	}

	ticker := time.NewTicker(h.opts.FrameInterval)
	done := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				fyne.Do(a.Quit)
				return
			case <-done:
				return
			case <-ticker.C:
				fyne.Do(func() {
					img.Image = h.opts.Frame(time.Now())
					img.Refresh()
				})
			}
		}
	}()

	w.SetOnClosed(func() {
		if h.opts.Tray.Quit != nil {
			h.opts.Tray.Quit()
		}
	})
	log.Printf("Overlay: fyne window %dx%d", h.opts.Bounds.Dx(), h.opts.Bounds.Dy())
	w.ShowAndRun()
	close(done)
	return nil
}
