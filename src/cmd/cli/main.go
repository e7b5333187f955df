package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"screen-translate-overlay/src/config"
	"screen-translate-overlay/src/detection"
	"screen-translate-overlay/src/llm"
	"screen-translate-overlay/src/logutil"
	"screen-translate-overlay/src/render"
	"screen-translate-overlay/src/runtimeinit"
	"screen-translate-overlay/src/sentence"
)

const (
	maxFileSizeMB = 10
	maxFileSize   = maxFileSizeMB * 1024 * 1024
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

type cliOptions struct {
	filePath   string
	jsonOutput bool
	verbose    bool
	apiKeyPath string
	configPath string
	lang       string
	renderPath string
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"translate-image"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "translate-image",
		Short:         "Detect and translate text in a PNG image",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(*opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.filePath, "file", "", "Path to PNG file (use '-' for stdin)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output sentences as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	cmd.Flags().StringVar(&opts.apiKeyPath, "api-key-path", "", "Path to API key file (highest precedence)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to config.toml")
	cmd.Flags().StringVar(&opts.lang, "lang", "", "Source language codes (overrides LANG_FROM)")
	cmd.Flags().StringVar(&opts.renderPath, "render", "", "Write the image with the overlay painted on it to this PNG path")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runWithOptions(opts cliOptions, out io.Writer) error {
	// Configure logging before anything else logs.
	if !opts.verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stderr)
	}

	cfg, err := config.LoadWithOptions(config.LoadOptions{
		APIKeyPathOverride: opts.apiKeyPath,
		ConfigPathOverride: opts.configPath,
	})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.lang != "" {
		cfg.LangFrom = opts.lang
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Detector == config.DetectorPipeline && cfg.APIKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY not found. Checked key file %s and OPENROUTER_API_KEY env var", cfg.APIKeyPath)
	}
	if cfg.Model == "" {
		cfg.Model = llm.DefaultModel
	}
	log.Printf("Config loaded: detector=%s model=%s key=%s", cfg.Detector, cfg.Model, logutil.RedactKey(cfg.APIKey))

	data, err := readImage(opts.filePath)
	if err != nil {
		return err
	}

	// The gateway works on files, like the resident's capture directory.
	dir, err := os.MkdirTemp("", "translate-image")
	if err != nil {
		return fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(dir)
	imagePath := filepath.Join(dir, "input.png")
	if err := os.WriteFile(imagePath, data, 0600); err != nil {
		return fmt.Errorf("failed to stage image: %w", err)
	}

	gw := detection.New(cfg.APIKey, runtimeinit.Factory(cfg))
	start := time.Now()
	sentences, err := gw.DetectAndTranslate(context.Background(), cfg.LangFrom, imagePath)
	elapsed := time.Since(start)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}
	log.Printf("Detected %d sentences in %v", len(sentences), elapsed)

	if opts.renderPath != "" {
		if err := renderOverlay(cfg, data, sentences, opts.renderPath); err != nil {
			return err
		}
	}
	return outputResult(out, sentences, opts.filePath, elapsed, opts.jsonOutput)
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		for _, name := range []string{"file", "json", "verbose", "api-key-path", "config", "lang", "render"} {
			arg := normalized[i]
			if arg == "-"+name || strings.HasPrefix(arg, "-"+name+"=") {
				normalized[i] = "-" + arg
				break
			}
		}
	}

	return normalized
}

func readImage(filePath string) ([]byte, error) {
	var data []byte
	var err error
	if filePath == "-" {
		data, err = io.ReadAll(io.LimitReader(os.Stdin, maxFileSize+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
		}
	}
	if err := validatePNG(data); err != nil {
		return nil, err
	}
	return data, nil
}

func validatePNG(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("input file is empty")
	}
	if len(data) > maxFileSize {
		return fmt.Errorf("input file exceeds maximum size of %d MB", maxFileSizeMB)
	}
	if len(data) < len(pngMagic) || !bytes.Equal(data[:len(pngMagic)], pngMagic) {
		return fmt.Errorf("input is not a valid PNG file (invalid magic number)")
	}
	return nil
}

// renderOverlay paints the sentences over the source image exactly as the
// resident overlay would and writes the result as PNG.
func renderOverlay(cfg *config.Config, data []byte, sentences sentence.Set, outPath string) error {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}
	style, err := runtimeinit.Style(cfg)
	if err != nil {
		return err
	}
	font, err := render.LoadFont(cfg.FontFile)
	if err != nil {
		return err
	}

	b := src.Bounds()
	canvas := render.NewCanvas(image.Rect(0, 0, b.Dx(), b.Dy()), font)
	defer canvas.Close()
	draw.Draw(canvas.Image(), canvas.Image().Bounds(), src, b.Min, draw.Src)
	render.New(style).Draw(canvas, sentences)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas.Image()); err != nil {
		return fmt.Errorf("failed to encode overlay: %w", err)
	}
	return os.WriteFile(outPath, buf.Bytes(), 0644)
}

// Result is the JSON output of one run.
type Result struct {
	Source    string       `json:"source"`
	Timestamp string       `json:"timestamp"`
	Duration  float64      `json:"duration_seconds"`
	Sentences []jsonResult `json:"sentences"`
}

type jsonResult struct {
	Text string `json:"text"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	W    int    `json:"w"`
	H    int    `json:"h"`
}

func outputResult(w io.Writer, sentences sentence.Set, sourcePath string, elapsed time.Duration, jsonOutput bool) error {
	if !jsonOutput {
		for _, s := range sentences {
			fmt.Fprintf(w, "[%d,%d %dx%d] %s\n", s.Box.MinX, s.Box.MinY, s.Box.Width(), s.Box.Height(), s.Text)
		}
		return nil
	}

	result := Result{
		Source:    sourcePath,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Duration:  elapsed.Seconds(),
		Sentences: make([]jsonResult, 0, len(sentences)),
	}
	for _, s := range sentences {
		result.Sentences = append(result.Sentences, jsonResult{
			Text: s.Text,
			X:    s.Box.MinX,
			Y:    s.Box.MinY,
			W:    s.Box.Width(),
			H:    s.Box.Height(),
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}
