// Package render paints translated sentences over the regions they replace.
package render

import (
	"fmt"
	"image"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"

	"screen-translate-overlay/src/sentence"
)

// Painter is the raster backend the renderer draws through.
type Painter interface {
	FillRect(r image.Rectangle, c color.Color)
	DrawText(x, y int, size float64, text string, c color.Color)
}

// Surface is a Painter that can also measure text.
type Surface interface {
	Painter
	TextMeasurer
}

const (
	DefaultBaseSize  = 20
	DefaultDecrement = 2
	DefaultMinSize   = 8
	DefaultAlpha     = 200
)

// Style controls colors and font sizing.
type Style struct {
	BaseSize  float64
	Decrement float64
	MinSize   float64
	Occlusion color.Color
	Text      color.Color
}

// DefaultStyle is near-opaque black boxes with white text.
func DefaultStyle() Style {
	return Style{
		BaseSize:  DefaultBaseSize,
		Decrement: DefaultDecrement,
		MinSize:   DefaultMinSize,
		Occlusion: color.NRGBA{A: DefaultAlpha},
		Text:      color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

// ParseColor reads a hex color ("#1e1e1e" or "#fff") and applies alpha.
func ParseColor(hex string, alpha uint8) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// Renderer draws a sentence set onto a Surface.
type Renderer struct {
	style Style
}

func New(style Style) *Renderer {
	if style.MinSize <= 0 || style.MinSize > style.BaseSize {
		style.MinSize = style.BaseSize
	}
	return &Renderer{style: style}
}

func (r *Renderer) Style() Style { return r.style }

// Draw paints every sentence with non-empty text, in order: first the
// occlusion rectangle, then the fitted lines. It returns the number of
// sentences drawn.
func (r *Renderer) Draw(s Surface, set sentence.Set) int {
	drawn := 0
	for _, sn := range set {
		if sn.Text == "" {
			continue
		}
		s.FillRect(sn.Box.Rect(), r.style.Occlusion)
		layout := Fit(s, sn.Text, sn.Box, r.style.BaseSize, r.style.Decrement, r.style.MinSize)
		for _, l := range layout.Lines {
			s.DrawText(l.X, l.Y, layout.Size, l.Text, r.style.Text)
		}
		drawn++
	}
	return drawn
}
