package screenshot

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCommandCapturerSuccess(t *testing.T) {
	dir := t.TempDir()
	var gotName string
	var gotArgs []string
	c := &CommandCapturer{
		Command: DefaultCommand,
		Args:    DefaultArgs,
		Run: func(name string, args ...string) error {
			gotName, gotArgs = name, args
			return os.WriteFile(args[len(args)-1], []byte("jpeg"), 0600)
		},
	}

	path, err := c.Capture(dir)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	expected := filepath.Join(dir, CommandFileName)
	if path != expected {
		t.Errorf("Expected path %s, got %s", expected, path)
	}
	if gotName != "spectacle" {
		t.Errorf("Expected spectacle, got %s", gotName)
	}
	want := []string{"-b", "-n", "-a", "-o", expected}
	if len(gotArgs) != len(want) {
		t.Fatalf("Expected args %v, got %v", want, gotArgs)
	}
	for i := range want {
		if gotArgs[i] != want[i] {
			t.Errorf("arg[%d] = %q, expected %q", i, gotArgs[i], want[i])
		}
	}
}

func TestCommandCapturerDoesNotMutateArgs(t *testing.T) {
	args := make([]string, 1, 8)
	args[0] = "-x"
	c := &CommandCapturer{Command: "tool", Args: args, Run: func(string, ...string) error { return nil }}
	_, _ = c.Capture(t.TempDir())
	_, _ = c.Capture(t.TempDir())
	if len(c.Args) != 1 {
		t.Errorf("Capture must not grow the configured args, got %v", c.Args)
	}
}

func TestNewCommandCapturerArgs(t *testing.T) {
	tests := []struct {
		name    string
		command string
		args    []string
		want    []string
	}{
		{"empty selects spectacle", "", nil, DefaultArgs},
		{"spectacle gets its flags", "spectacle", nil, DefaultArgs},
		{"spectacle by path", "/usr/bin/spectacle", nil, DefaultArgs},
		{"other tool gets none", "grim", nil, nil},
		{"explicit args kept", "scrot", []string{"-o"}, []string{"-o"}},
		{"explicit empty kept for spectacle", "spectacle", []string{}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCommandCapturer(tt.command, tt.args)
			if strings.Join(c.Args, " ") != strings.Join(tt.want, " ") {
				t.Errorf("Args = %q, want %q", c.Args, tt.want)
			}
		})
	}
}

func TestCommandCapturerNonZeroExit(t *testing.T) {
	boom := errors.New("exit status 1")
	c := &CommandCapturer{Command: "spectacle", Run: func(string, ...string) error { return boom }}

	_, err := c.Capture(t.TempDir())
	var capErr *CaptureError
	if !errors.As(err, &capErr) {
		t.Fatalf("Expected *CaptureError, got %T (%v)", err, err)
	}
	if !errors.Is(err, boom) {
		t.Error("Expected CaptureError to wrap the process error")
	}
}

func TestCommandCapturerMissingOutput(t *testing.T) {
	c := &CommandCapturer{Command: "spectacle", Run: func(string, ...string) error { return nil }}
	_, err := c.Capture(t.TempDir())
	var capErr *CaptureError
	if !errors.As(err, &capErr) {
		t.Fatalf("Expected *CaptureError when no file was written, got %v", err)
	}
}

func TestCommandCapturerSpawnError(t *testing.T) {
	c := NewCommandCapturer("definitely-not-a-real-screenshot-tool", nil)
	_, err := c.Capture(t.TempDir())
	var capErr *CaptureError
	if !errors.As(err, &capErr) {
		t.Fatalf("Expected *CaptureError for missing binary, got %v", err)
	}
}

func TestDisplayCapturerWritesPNG(t *testing.T) {
	dir := t.TempDir()
	c := &DisplayCapturer{grab: func() (*image.RGBA, error) {
		return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
	}}
	path, err := c.Capture(dir)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if filepath.Base(path) != DisplayFileName {
		t.Errorf("Expected %s, got %s", DisplayFileName, path)
	}
	if st, err := os.Stat(path); err != nil || st.Size() == 0 {
		t.Errorf("Expected non-empty PNG at %s (err=%v)", path, err)
	}
}

func TestDisplayCapturerError(t *testing.T) {
	c := &DisplayCapturer{grab: func() (*image.RGBA, error) { return nil, ErrNoDisplays }}
	_, err := c.Capture(t.TempDir())
	if !errors.Is(err, ErrNoDisplays) {
		t.Errorf("Expected ErrNoDisplays, got %v", err)
	}
}

func TestNew(t *testing.T) {
	if _, err := New("", "", nil); err != nil {
		t.Errorf("Expected default backend, got %v", err)
	}
	if c, _ := New("display", "", nil); c == nil {
		t.Error("Expected display capturer")
	}
	if _, err := New("bogus", "", nil); err == nil {
		t.Error("Expected error for unknown backend")
	}
}

func TestCapture(t *testing.T) {
	// Requires a display; just make sure it does not panic.
	_, err := Capture()
	if err != nil {
		t.Logf("Failed to capture screenshot (expected in headless environment): %v", err)
	}
}
