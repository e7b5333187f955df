//go:build cgo

package ocr

import (
	"fmt"
	"log"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"screen-translate-overlay/src/sentence"
)

// Tesseract is a long-lived gosseract client bound to a language set.
// It is not safe for concurrent use.
type Tesseract struct {
	client        *gosseract.Client
	minConfidence float64
}

// NewTesseract creates a client for "+"-joined Tesseract language codes
// such as "jpn+eng".
func NewTesseract(langs string, minConfidence float64) (Engine, error) {
	codes := splitLangs(langs)
	if len(codes) == 0 {
		return nil, fmt.Errorf("no OCR language configured")
	}
	client := gosseract.NewClient()
	if err := client.SetLanguage(codes...); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to set language %q: %w", langs, err)
	}
	log.Printf("OCR: tesseract %s ready (languages=%v)", gosseract.Version(), codes)
	return &Tesseract{client: client, minConfidence: minConfidence}, nil
}

// Detect returns text lines found in the image at imagePath.
func (t *Tesseract) Detect(imagePath string) ([]Line, error) {
	data, err := Preprocess(imagePath)
	if err != nil {
		return nil, err
	}
	if err := t.client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}
	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("failed to get text lines: %w", err)
	}

	lines := make([]Line, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		lines = append(lines, Line{
			Text: text,
			Box: sentence.BoundingBox{
				MinX: b.Box.Min.X,
				MinY: b.Box.Min.Y,
				MaxX: b.Box.Max.X,
				MaxY: b.Box.Max.Y,
			},
			Confidence: b.Confidence,
		})
	}
	kept := Filter(lines, t.minConfidence)
	log.Printf("OCR: %d lines recognized, %d kept", len(lines), len(kept))
	return kept, nil
}
