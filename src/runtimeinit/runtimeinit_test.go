package runtimeinit

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"screen-translate-overlay/src/config"
	"screen-translate-overlay/src/screenshot"
)

func TestStyle(t *testing.T) {
	cfg := &config.Config{
		FontSize:       22,
		FontDecrement:  3,
		MinFontSize:    10,
		OcclusionColor: "#101010",
		OcclusionAlpha: 180,
		TextColor:      "#ffffff",
	}
	s, err := Style(cfg)
	if err != nil {
		t.Fatalf("Style failed: %v", err)
	}
	if s.BaseSize != 22 || s.Decrement != 3 || s.MinSize != 10 {
		t.Errorf("Unexpected sizes: %+v", s)
	}
	if s.Occlusion != (color.NRGBA{R: 16, G: 16, B: 16, A: 180}) {
		t.Errorf("Unexpected occlusion color %+v", s.Occlusion)
	}

	cfg.TextColor = "white"
	if _, err := Style(cfg); err == nil || !strings.Contains(err.Error(), "TEXT_COLOR") {
		t.Errorf("Expected TEXT_COLOR error, got %v", err)
	}
}

func TestBootstrapRequiresLanguage(t *testing.T) {
	t.Setenv("LANG_FROM", "")
	t.Setenv("OPENROUTER_API_KEY", "key")
	_, err := Bootstrap(Options{LoadOptions: config.LoadOptions{APIKeyPathOverride: filepath.Join(t.TempDir(), "missing")}})
	if err == nil {
		t.Error("Expected error without a source language")
	}
}

func TestBootstrapRequiresKeyForPipeline(t *testing.T) {
	t.Setenv("LANG_FROM", "jpn")
	t.Setenv("OPENROUTER_API_KEY", "")
	_, err := Bootstrap(Options{LoadOptions: config.LoadOptions{APIKeyPathOverride: filepath.Join(t.TempDir(), "missing")}})
	if err == nil || !strings.Contains(err.Error(), "OPENROUTER_API_KEY") {
		t.Errorf("Expected missing key error, got %v", err)
	}
}

func TestBootstrap(t *testing.T) {
	t.Setenv("LANG_FROM", "jpn")
	t.Setenv("OPENROUTER_API_KEY", "sk-test-123456789")
	t.Setenv("MODEL", "")
	var logging *bool
	rt, err := Bootstrap(Options{
		LoadOptions:  config.LoadOptions{APIKeyPathOverride: filepath.Join(t.TempDir(), "missing")},
		SetupLogging: func(b bool) { logging = &b },
	})
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	if logging == nil {
		t.Error("Expected logging setup to be called")
	}
	if rt.Config.Model == "" {
		t.Error("Expected default model to be filled in")
	}
	if rt.Gateway == nil || rt.Capturer == nil || rt.Font == nil {
		t.Errorf("Incomplete runtime: %+v", rt)
	}
}

func TestBootstrapCaptureCommandArgs(t *testing.T) {
	t.Setenv("LANG_FROM", "jpn")
	t.Setenv("OPENROUTER_API_KEY", "sk-test-123456789")
	t.Setenv("CAPTURE_BACKEND", "command")

	tests := []struct {
		command string
		args    string
		setArgs bool
		want    []string
	}{
		{"spectacle", "", false, screenshot.DefaultArgs},
		{"grim", "", false, nil},
		{"scrot", "--overwrite -z", true, []string{"--overwrite", "-z"}},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			t.Setenv("CAPTURE_COMMAND", tt.command)
			if tt.setArgs {
				t.Setenv("CAPTURE_ARGS", tt.args)
			} else {
				// t.Setenv restores the variable; unset it for this case.
				t.Setenv("CAPTURE_ARGS", "")
				os.Unsetenv("CAPTURE_ARGS")
			}
			rt, err := Bootstrap(Options{LoadOptions: config.LoadOptions{APIKeyPathOverride: filepath.Join(t.TempDir(), "missing")}})
			if err != nil {
				t.Fatalf("Bootstrap failed: %v", err)
			}
			c, ok := rt.Capturer.(*screenshot.CommandCapturer)
			if !ok {
				t.Fatalf("Expected *CommandCapturer, got %T", rt.Capturer)
			}
			if c.Command != tt.command || strings.Join(c.Args, " ") != strings.Join(tt.want, " ") {
				t.Errorf("Got %s %q, want %s %q", c.Command, c.Args, tt.command, tt.want)
			}
		})
	}
}
