// Package overlay hosts the full-screen, always-on-top window the translated
// sentences are painted into.
package overlay

import (
	"context"
	"image"
	"log"
	"time"

	"screen-translate-overlay/src/screenshot"
	"screen-translate-overlay/src/tray"
)

// DefaultFrameInterval is roughly one 60Hz display refresh.
const DefaultFrameInterval = 16 * time.Millisecond

// FrameFunc produces the next frame. It is called from the host's UI thread
// only, once per refresh, and the host always asks for another.
type FrameFunc func(now time.Time) *image.RGBA

// Options configures a Host.
type Options struct {
	Title         string
	Bounds        image.Rectangle // virtual-screen rectangle the window covers
	FrameInterval time.Duration
	Frame         FrameFunc
	Tray          tray.Actions
}

// Host runs the window until ctx is cancelled or the window is closed.
type Host interface {
	Run(ctx context.Context) error
}

// New returns the platform host.
func New(opts Options) Host {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}
	if opts.Title == "" {
		opts.Title = "Screen Translate Overlay"
	}
	return newHost(opts)
}

// ScreenBounds returns the union of all displays, or a 1920x1080 fallback
// when no display can be queried.
func ScreenBounds() image.Rectangle {
	b, err := screenshot.GetDisplayBounds()
	if err != nil || b.Empty() {
		log.Printf("Overlay: display bounds unavailable (%v), using 1920x1080", err)
		return image.Rect(0, 0, 1920, 1080)
	}
	return b
}
