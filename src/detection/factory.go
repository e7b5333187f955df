package detection

import (
	"time"

	"screen-translate-overlay/src/llm"
	"screen-translate-overlay/src/ocr"
)

// PipelineOptions configures the Tesseract + LLM backend.
type PipelineOptions struct {
	Model         string
	Providers     []string
	TargetLang    string
	Timeout       time.Duration
	MinConfidence float64
	HashDistance  int
}

// PipelineFactory builds the in-process OCR + translation session.
func PipelineFactory(opts PipelineOptions) SessionFactory {
	return func(lang, credential string) (Session, error) {
		tr, err := llm.New(llm.Config{
			APIKey:     credential,
			Model:      opts.Model,
			Providers:  opts.Providers,
			TargetLang: opts.TargetLang,
			Timeout:    opts.Timeout,
		})
		if err != nil {
			return nil, err
		}
		engine, err := ocr.NewTesseract(lang, opts.MinConfidence)
		if err != nil {
			return nil, err
		}
		return NewPipeline(engine, tr, opts.HashDistance), nil
	}
}

// CommandFactory builds a session around an external detector program.
func CommandFactory(command string, args []string) SessionFactory {
	return func(lang, credential string) (Session, error) {
		s, err := NewCommandSession(command, args, lang, credential)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}
