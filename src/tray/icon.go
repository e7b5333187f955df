package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const iconSize = 32

// IconPNG draws the tray icon: two overlapping speech boxes, a dark one
// occluded by a light one.
func IconPNG() []byte {
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))
	back := colorful.Hsv(210, 0.75, 0.55)
	front := colorful.Hsv(210, 0.10, 0.98)

	fill(img, image.Rect(2, 4, 22, 20), back)
	fill(img, image.Rect(10, 12, 30, 28), front)
	// Three text lines on the front box.
	for i, w := range []int{14, 10, 12} {
		y := 16 + i*4
		fill(img, image.Rect(13, y, 13+w, y+2), back)
	}

	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func fill(img *image.NRGBA, r image.Rectangle, c colorful.Color) {
	red, green, blue := c.Clamped().RGB255()
	draw.Draw(img, r, image.NewUniform(color.NRGBA{R: red, G: green, B: blue, A: 255}), image.Point{}, draw.Src)
}

// IconICO wraps IconPNG in a single-image ICO container, which the Windows
// tray requires.
func IconICO() []byte {
	data := IconPNG()
	var buf bytes.Buffer
	// ICONDIR
	binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, 1})
	// ICONDIRENTRY
	buf.Write([]byte{iconSize, iconSize, 0, 0})
	binary.Write(&buf, binary.LittleEndian, uint16(1))  // planes
	binary.Write(&buf, binary.LittleEndian, uint16(32)) // bpp
	binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
	binary.Write(&buf, binary.LittleEndian, uint32(6+16))
	buf.Write(data)
	return buf.Bytes()
}
