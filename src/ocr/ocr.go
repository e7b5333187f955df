// Package ocr finds text lines and their bounding boxes in a screenshot.
//
// The Tesseract engine (gosseract) is only available in cgo builds; other
// builds get an engine constructor that always fails, which the detection
// gateway reports like any other session construction failure.
package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"regexp"
	"strings"
	"unicode"

	"github.com/disintegration/imaging"

	"screen-translate-overlay/src/sentence"
)

// Line is one recognized line of text in image pixel coordinates.
type Line struct {
	Text       string
	Box        sentence.BoundingBox
	Confidence float64
}

// Engine recognizes text lines in an image file. An engine lives as long as
// the detection session that owns it.
type Engine interface {
	Detect(imagePath string) ([]Line, error)
}

// ErrUnavailable is returned when the binary was built without Tesseract support.
var ErrUnavailable = errors.New("tesseract OCR is not available in this build (requires cgo)")

// DefaultMinConfidence drops lines Tesseract is unsure about (0-100 scale).
const DefaultMinConfidence = 50

// contrastBoost is applied after grayscale conversion; screen text is usually
// crisp, so a moderate boost helps anti-aliased glyphs without clipping.
const contrastBoost = 20

// Preprocess loads an image and returns grayscale, contrast-boosted PNG bytes.
// Dimensions are unchanged, so boxes found on the result map 1:1 onto the source.
func Preprocess(imagePath string) ([]byte, error) {
	img, err := imaging.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", imagePath, err)
	}
	gray := imaging.AdjustContrast(imaging.Grayscale(img), contrastBoost)

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, fmt.Errorf("failed to encode preprocessed image: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	alnumOnly       = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	joinedBySymbols = regexp.MustCompile(`[A-Za-z0-9]+[^\p{L}\p{N}_\s]+[A-Za-z0-9]+`)
	mixedLetterNum  = regexp.MustCompile(`\d+[A-Za-z]+|[A-Za-z]+\d+`)
)

// Translatable reports whether a recognized line is worth translating.
// Tesseract returns whole lines, so the token rules apply word by word: a
// line is kept when at least one word with a letter is not noise. Noise is
// a number, an identifier such as "abc:123" or "abc-abc", or a letter/digit
// mix such as "v2". A line that is a single bare alphanumeric token such as
// "Hello" or "OK" is skipped too.
func Translatable(text string) bool {
	words := strings.Fields(text)
	if len(words) == 0 {
		return false
	}
	if len(words) == 1 && alnumOnly.MatchString(words[0]) {
		return false
	}
	for _, w := range words {
		if hasLetter(w) && !noise(w) {
			return true
		}
	}
	return false
}

func noise(word string) bool {
	return isDigits(word) || joinedBySymbols.MatchString(word) || mixedLetterNum.MatchString(word)
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Filter keeps the lines that are confident enough and translatable.
func Filter(lines []Line, minConfidence float64) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.Box.Empty() || l.Confidence < minConfidence {
			continue
		}
		if !Translatable(l.Text) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// splitLangs turns "jpn+eng" into Tesseract language codes.
func splitLangs(langs string) []string {
	var out []string
	for _, p := range strings.Split(langs, "+") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
