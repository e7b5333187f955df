//go:build !cgo

package ocr

// NewTesseract always fails without cgo.
func NewTesseract(langs string, minConfidence float64) (Engine, error) {
	return nil, ErrUnavailable
}
