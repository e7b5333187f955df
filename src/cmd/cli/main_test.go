package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestNormalizeLegacyArgs(t *testing.T) {
	got := normalizeLegacyArgs([]string{"translate-image", "-file", "a.png", "-json", "-lang=jpn", "-v"})
	want := []string{"translate-image", "--file", "a.png", "--json", "--lang=jpn", "-v"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("normalizeLegacyArgs() = %v, want %v", got, want)
	}
}

func TestValidatePNG(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr string
	}{
		{"empty", nil, "empty"},
		{"not png", []byte("GIF89a-not-a-png"), "magic"},
		{"too large", append(append([]byte{}, pngMagic...), make([]byte, maxFileSize)...), "maximum size"},
		{"valid", append(append([]byte{}, pngMagic...), 0, 0), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePNG(tt.data)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestFileFlagRequired(t *testing.T) {
	if err := runWithArgs([]string{"translate-image"}); err == nil {
		t.Fatal("Expected error without --file")
	}
}

// setupDetector installs a shell detector that reports one sentence.
func setupDetector(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell detector needs a POSIX shell")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "detector.sh")
	body := "#!/bin/sh\necho '[{\"text\": \"Hello\", \"box\": [4, 4, 40, 12]}]'\n"
	if err := os.WriteFile(script, []byte(body), 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DETECTOR", "command")
	t.Setenv("DETECTOR_COMMAND", script)
	t.Setenv("LANG_FROM", "eng")
	t.Setenv("CONFIG_FILE", "")

	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	input := filepath.Join(dir, "input.png")
	if err := os.WriteFile(input, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return input
}

func TestRunPlainOutput(t *testing.T) {
	input := setupDetector(t)
	var out bytes.Buffer
	if err := runWithOptions(cliOptions{filePath: input}, &out); err != nil {
		t.Fatalf("runWithOptions failed: %v", err)
	}
	if got := out.String(); got != "[4,4 40x12] Hello\n" {
		t.Errorf("Unexpected output %q", got)
	}
}

func TestRunJSONOutput(t *testing.T) {
	input := setupDetector(t)
	var out bytes.Buffer
	if err := runWithOptions(cliOptions{filePath: input, jsonOutput: true}, &out); err != nil {
		t.Fatalf("runWithOptions failed: %v", err)
	}
	var result Result
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("Invalid JSON output: %v\n%s", err, out.String())
	}
	if len(result.Sentences) != 1 {
		t.Fatalf("Expected 1 sentence, got %d", len(result.Sentences))
	}
	s := result.Sentences[0]
	if s.Text != "Hello" || s.X != 4 || s.Y != 4 || s.W != 40 || s.H != 12 {
		t.Errorf("Unexpected sentence %+v", s)
	}
}

func TestRunRendersOverlay(t *testing.T) {
	input := setupDetector(t)
	t.Setenv("OCCLUSION_COLOR", "#000000")
	t.Setenv("OCCLUSION_ALPHA", "255")
	t.Setenv("TEXT_COLOR", "#000000")
	outPath := filepath.Join(t.TempDir(), "overlay.png")

	var out bytes.Buffer
	if err := runWithOptions(cliOptions{filePath: input, renderPath: outPath}, &out); err != nil {
		t.Fatalf("runWithOptions failed: %v", err)
	}
	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("Overlay not written: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	// Inside the box everything painted is black.
	if got := color.RGBAModel.Convert(img.At(43, 15)).(color.RGBA); got.R != 0 || got.A != 255 {
		t.Errorf("Expected occluded pixel, got %+v", got)
	}
	// Outside the box the source is untouched.
	if got := color.RGBAModel.Convert(img.At(60, 30)).(color.RGBA); got.R != 255 {
		t.Errorf("Expected source pixel outside box, got %+v", got)
	}
}

func TestRunMissingLanguage(t *testing.T) {
	input := setupDetector(t)
	t.Setenv("LANG_FROM", "")
	err := runWithOptions(cliOptions{filePath: input}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "source language") {
		t.Fatalf("Expected language error, got %v", err)
	}
	if err := runWithOptions(cliOptions{filePath: input, lang: "eng"}, &bytes.Buffer{}); err != nil {
		t.Fatalf("--lang should satisfy the language requirement: %v", err)
	}
}
