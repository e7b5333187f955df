package runtimeinit

import (
	"fmt"
	"log"
	"time"

	"golang.org/x/image/font/opentype"

	"screen-translate-overlay/src/config"
	"screen-translate-overlay/src/detection"
	"screen-translate-overlay/src/llm"
	"screen-translate-overlay/src/logutil"
	"screen-translate-overlay/src/render"
	"screen-translate-overlay/src/screenshot"
)

type Options struct {
	LoadOptions  config.LoadOptions
	SetupLogging func(bool)
}

// Runtime is everything the overlay needs, built once at startup.
type Runtime struct {
	Config   *config.Config
	Capturer screenshot.Capturer
	Gateway  *detection.Gateway
	Style    render.Style
	Font     *opentype.Font
}

func Bootstrap(opts Options) (*Runtime, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Detector == config.DetectorPipeline && cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY is required. Checked key file %s, OPENROUTER_API_KEY env var and %s", cfg.APIKeyPath, displayPath(cfg.ConfigPath))
	}
	if cfg.Model == "" {
		cfg.Model = llm.DefaultModel
	}

	capturer, err := screenshot.New(cfg.CaptureBackend, cfg.CaptureCommand, cfg.CaptureArgs)
	if err != nil {
		return nil, err
	}

	style, err := Style(cfg)
	if err != nil {
		return nil, err
	}
	font, err := render.LoadFont(cfg.FontFile)
	if err != nil {
		return nil, err
	}

	log.Printf("Source language: %s, target: %s", cfg.LangFrom, cfg.LangTo)
	log.Printf("Detector: %s, capture: %s, mode: %s, interval: %v", cfg.Detector, cfg.CaptureBackend, cfg.CaptureMode, cfg.CaptureInterval)
	log.Printf("Using model: %s, API key: %s", cfg.Model, logutil.RedactKey(cfg.APIKey))

	return &Runtime{
		Config:   cfg,
		Capturer: capturer,
		Gateway:  detection.New(cfg.APIKey, Factory(cfg)),
		Style:    style,
		Font:     font,
	}, nil
}

// Factory returns the session factory for the configured detector. Nothing
// is constructed until the gateway's first call.
func Factory(cfg *config.Config) detection.SessionFactory {
	if cfg.Detector == config.DetectorCommand {
		return detection.CommandFactory(cfg.DetectorCommand, nil)
	}
	return detection.PipelineFactory(detection.PipelineOptions{
		Model:         cfg.Model,
		Providers:     cfg.Providers,
		TargetLang:    cfg.LangTo,
		Timeout:       time.Duration(cfg.TranslateTimeoutSec) * time.Second,
		MinConfidence: cfg.MinConfidence,
		HashDistance:  cfg.HashDistance,
	})
}

// Style converts the configured colors and sizes into a render style.
func Style(cfg *config.Config) (render.Style, error) {
	occlusion, err := render.ParseColor(cfg.OcclusionColor, cfg.OcclusionAlpha)
	if err != nil {
		return render.Style{}, fmt.Errorf("OCCLUSION_COLOR: %w", err)
	}
	text, err := render.ParseColor(cfg.TextColor, 255)
	if err != nil {
		return render.Style{}, fmt.Errorf("TEXT_COLOR: %w", err)
	}
	return render.Style{
		BaseSize:  cfg.FontSize,
		Decrement: cfg.FontDecrement,
		MinSize:   cfg.MinFontSize,
		Occlusion: occlusion,
		Text:      text,
	}, nil
}

func displayPath(p string) string {
	if p == "" {
		return "no config.toml"
	}
	return p
}
