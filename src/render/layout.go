package render

import (
	"strings"

	"screen-translate-overlay/src/sentence"
)

// TextMeasurer reports text metrics at a given font size, in pixels.
type TextMeasurer interface {
	Width(text string, size float64) int
	LineHeight(size float64) int
}

// Line is one positioned line of text. X,Y is the top-left of the line box.
type Line struct {
	Text string
	X, Y int
}

// Layout is the fitted text for one sentence.
type Layout struct {
	Size  float64
	Lines []Line
}

// Fit wraps text to the box width at the base size, then shrinks the font by
// decrement per extra line (never below minSize). The block is vertically
// centered in the box and every line starts at the box's left edge.
func Fit(m TextMeasurer, text string, box sentence.BoundingBox, base, decrement, minSize float64) Layout {
	lines := Wrap(m, text, box.Width(), base)
	if len(lines) == 0 {
		return Layout{Size: base}
	}

	size := base - decrement*float64(len(lines)-1)
	if size < minSize {
		size = minSize
	}

	lh := m.LineHeight(size)
	top := box.MinY + (box.Height()-lh*len(lines))/2

	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = Line{Text: l, X: box.MinX, Y: top + i*lh}
	}
	return Layout{Size: size, Lines: out}
}

// Wrap breaks text into lines no wider than maxWidth at size. Words wider
// than the box are split between runes. Existing newlines are kept.
func Wrap(m TextMeasurer, text string, maxWidth int, size float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}
		cur := ""
		for _, w := range words {
			cand := w
			if cur != "" {
				cand = cur + " " + w
			}
			if m.Width(cand, size) <= maxWidth {
				cur = cand
				continue
			}
			if cur != "" {
				lines = append(lines, cur)
				cur = ""
			}
			if m.Width(w, size) <= maxWidth {
				cur = w
				continue
			}
			parts := splitRunes(m, w, maxWidth, size)
			lines = append(lines, parts[:len(parts)-1]...)
			cur = parts[len(parts)-1]
		}
		if cur != "" {
			lines = append(lines, cur)
		}
	}
	return lines
}

// splitRunes cuts a single word into chunks that fit. A chunk always holds at
// least one rune, even if that rune alone is too wide.
func splitRunes(m TextMeasurer, word string, maxWidth int, size float64) []string {
	var parts []string
	runes := []rune(word)
	start := 0
	for start < len(runes) {
		end := start + 1
		for end < len(runes) && m.Width(string(runes[start:end+1]), size) <= maxWidth {
			end++
		}
		parts = append(parts, string(runes[start:end]))
		start = end
	}
	return parts
}
