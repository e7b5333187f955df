package detection

import (
	"context"
	"fmt"
	"log"

	"github.com/corona10/goimagehash"

	"screen-translate-overlay/src/ocr"
	"screen-translate-overlay/src/sentence"
)

// Translator turns source strings into target-language strings, one for one.
type Translator interface {
	Translate(ctx context.Context, texts []string) ([]string, error)
}

// Pipeline is the in-process backend: OCR then translation. It remembers the
// previous result so unchanged frames and unchanged layouts cost nothing.
type Pipeline struct {
	engine     ocr.Engine
	translator Translator
	frames     *frameCache

	prevBoxes  []sentence.BoundingBox
	prevResult sentence.Set
}

// NewPipeline combines an OCR engine and a translator. hashDistance < 0
// disables the unchanged-frame check.
func NewPipeline(engine ocr.Engine, translator Translator, hashDistance int) *Pipeline {
	return &Pipeline{
		engine:     engine,
		translator: translator,
		frames:     newFrameCache(hashDistance),
	}
}

func (p *Pipeline) Process(ctx context.Context, imagePath string) (sentence.Set, error) {
	frame := p.frames.hash(imagePath)
	if p.prevResult != nil && p.frames.same(frame) {
		log.Printf("Detection: frame unchanged, reusing %d sentences", len(p.prevResult))
		return p.prevResult.Clone(), nil
	}

	lines, err := p.engine.Detect(imagePath)
	if err != nil {
		return nil, &DetectionError{Op: OpDetect, Err: err}
	}
	if len(lines) == 0 {
		log.Printf("Detection: no text detected")
		p.remember(frame, nil, sentence.Set{})
		return sentence.Set{}, nil
	}

	boxes := make([]sentence.BoundingBox, len(lines))
	texts := make([]string, len(lines))
	for i, l := range lines {
		boxes[i] = l.Box
		texts[i] = l.Text
	}

	if p.prevResult != nil && sentence.SameBoxes(boxes, p.prevBoxes) {
		log.Printf("Detection: text layout unchanged, no translation request sent")
		p.frames.commit(frame)
		return p.prevResult.Clone(), nil
	}

	translated, err := p.translator.Translate(ctx, texts)
	if err != nil {
		return nil, &DetectionError{Op: OpTranslate, Err: err}
	}
	if len(translated) != len(lines) {
		return nil, &DetectionError{Op: OpDecode, Err: fmt.Errorf("got %d translations for %d lines", len(translated), len(lines))}
	}

	set := make(sentence.Set, len(lines))
	for i := range lines {
		set[i] = sentence.Sentence{Text: translated[i], Box: boxes[i]}
	}
	p.remember(frame, boxes, set)
	return set.Clone(), nil
}

func (p *Pipeline) remember(frame *goimagehash.ExtImageHash, boxes []sentence.BoundingBox, set sentence.Set) {
	p.frames.commit(frame)
	p.prevBoxes = boxes
	p.prevResult = set
}
