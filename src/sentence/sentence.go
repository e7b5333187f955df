package sentence

import (
	"fmt"
	"image"
)

// BoundingBox is an axis-aligned rectangle in screen pixel coordinates.
// Max is exclusive, matching image.Rectangle.
type BoundingBox struct {
	MinX int `json:"min_x"`
	MinY int `json:"min_y"`
	MaxX int `json:"max_x"`
	MaxY int `json:"max_y"`
}

// FromXYWH converts the min+size representation into the canonical min+max form.
// Negative sizes are folded so the result is always well-formed.
func FromXYWH(x, y, w, h int) BoundingBox {
	if w < 0 {
		x, w = x+w, -w
	}
	if h < 0 {
		y, h = y+h, -h
	}
	return BoundingBox{MinX: x, MinY: y, MaxX: x + w, MaxY: y + h}
}

func (b BoundingBox) Width() int  { return b.MaxX - b.MinX }
func (b BoundingBox) Height() int { return b.MaxY - b.MinY }

// Empty reports whether the box covers no pixels.
func (b BoundingBox) Empty() bool { return b.Width() <= 0 || b.Height() <= 0 }

// Rect returns the box as an image.Rectangle.
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.MinX, b.MinY, b.MaxX, b.MaxY)
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", b.MinX, b.MinY, b.MaxX, b.MaxY)
}

// Sentence is one detected, translated unit of on-screen text.
type Sentence struct {
	Text string      `json:"text"`
	Box  BoundingBox `json:"box"`
}

// Set is the sentence list produced by one detection cycle. A Set is replaced
// wholesale and never modified after it has been published.
type Set []Sentence

// Clone returns an independent copy of s.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	copy(out, s)
	return out
}

// SameBoxes reports whether a and b hold the same boxes in the same order.
func SameBoxes(a, b []BoundingBox) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
