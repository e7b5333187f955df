package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Canvas is a transparent RGBA frame that implements Surface with an
// OpenType font.
type Canvas struct {
	img   *image.RGBA
	font  *opentype.Font
	faces map[float64]font.Face
}

// LoadFont parses the font at path, or the built-in Go Regular face when
// path is empty.
func LoadFont(path string) (*opentype.Font, error) {
	data := goregular.TTF
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load font: %w", err)
		}
		data = b
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return f, nil
}

func NewCanvas(bounds image.Rectangle, f *opentype.Font) *Canvas {
	return &Canvas{
		img:   image.NewRGBA(bounds),
		font:  f,
		faces: make(map[float64]font.Face),
	}
}

// Image returns the backing frame. It is reused between frames.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Resize reallocates the frame if bounds changed.
func (c *Canvas) Resize(bounds image.Rectangle) {
	if c.img.Bounds() != bounds {
		c.img = image.NewRGBA(bounds)
	}
}

// Clear makes the whole frame fully transparent.
func (c *Canvas) Clear() {
	clear(c.img.Pix)
}

func (c *Canvas) FillRect(r image.Rectangle, col color.Color) {
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Over)
}

func (c *Canvas) DrawText(x, y int, size float64, text string, col color.Color) {
	face := c.face(size)
	if face == nil {
		return
	}
	ascent := face.Metrics().Ascent
	dr := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(x),
			Y: fixed.I(y) + ascent,
		},
	}
	dr.DrawString(text)
}

func (c *Canvas) Width(text string, size float64) int {
	face := c.face(size)
	if face == nil {
		return 0
	}
	return font.MeasureString(face, text).Ceil()
}

func (c *Canvas) LineHeight(size float64) int {
	face := c.face(size)
	if face == nil {
		return int(size)
	}
	return face.Metrics().Height.Ceil()
}

// Close releases cached faces.
func (c *Canvas) Close() {
	for size, f := range c.faces {
		_ = f.Close()
		delete(c.faces, size)
	}
}

func (c *Canvas) face(size float64) font.Face {
	if f, ok := c.faces[size]; ok {
		return f
	}
	f, err := opentype.NewFace(c.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil
	}
	c.faces[size] = f
	return f
}
