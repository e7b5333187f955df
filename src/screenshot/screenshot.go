package screenshot

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kbinani/screenshot"
)

const (
	// CommandFileName is the stable output name used by CommandCapturer. Only the
	// latest capture is ever needed, so it is overwritten each cycle.
	CommandFileName = "screenshot.jpg"
	// DisplayFileName is the stable output name used by DisplayCapturer.
	DisplayFileName = "screenshot.png"

	DefaultCommand = "spectacle"
)

// DefaultArgs are the spectacle flags: background, no notification, active
// window, output to the path that follows.
var DefaultArgs = []string{"-b", "-n", "-a", "-o"}

// Capturer produces one screenshot file inside outputDir and returns its path.
type Capturer interface {
	Capture(outputDir string) (string, error)
}

// CaptureError reports that the screenshot could not be produced.
type CaptureError struct {
	Tool string
	Path string
	Err  error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture with %s to %s failed: %v", e.Tool, e.Path, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// ErrNoDisplays is returned when no active display can be found.
var ErrNoDisplays = errors.New("no active displays found")

// RunFunc runs an external program to completion.
type RunFunc func(name string, args ...string) error

// CommandCapturer invokes an external screenshot utility synchronously.
type CommandCapturer struct {
	Command string
	Args    []string
	Run     RunFunc
}

// NewCommandCapturer returns a capturer for the given tool. An empty command
// selects spectacle. Nil args give spectacle DefaultArgs and any other tool
// no flags, so the output path is its only argument (grim, scrot).
func NewCommandCapturer(command string, args []string) *CommandCapturer {
	if command == "" {
		command = DefaultCommand
	}
	if args == nil && isSpectacle(command) {
		args = DefaultArgs
	}
	return &CommandCapturer{Command: command, Args: args, Run: runCommand}
}

func isSpectacle(command string) bool {
	name := strings.TrimSuffix(filepath.Base(command), ".exe")
	return name == DefaultCommand
}

func (c *CommandCapturer) Capture(outputDir string) (string, error) {
	out := filepath.Join(outputDir, CommandFileName)
	args := append(append([]string{}, c.Args...), out)

	run := c.Run
	if run == nil {
		run = runCommand
	}
	if err := run(c.Command, args...); err != nil {
		return "", &CaptureError{Tool: c.Command, Path: out, Err: err}
	}
	if _, err := os.Stat(out); err != nil {
		return "", &CaptureError{Tool: c.Command, Path: out, Err: fmt.Errorf("output not written: %w", err)}
	}
	return out, nil
}

func runCommand(name string, args ...string) error {
	var stderr bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return fmt.Errorf("%w: %s", err, bytes.TrimSpace(stderr.Bytes()))
		}
		return err
	}
	return nil
}

// DisplayCapturer grabs the whole virtual screen in-process.
type DisplayCapturer struct {
	grab func() (*image.RGBA, error)
}

func NewDisplayCapturer() *DisplayCapturer {
	return &DisplayCapturer{grab: Capture}
}

func (c *DisplayCapturer) Capture(outputDir string) (string, error) {
	out := filepath.Join(outputDir, DisplayFileName)
	img, err := c.grab()
	if err != nil {
		return "", &CaptureError{Tool: "display", Path: out, Err: err}
	}
	if err := writePNG(out, img); err != nil {
		return "", &CaptureError{Tool: "display", Path: out, Err: err}
	}
	return out, nil
}

func writePNG(path string, img image.Image) error {
	// Encode fully before touching the file so a failed encode never leaves a
	// truncated image behind for the detector.
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0600)
}

// New returns the capturer for the named backend ("command" or "display").
func New(backend, command string, args []string) (Capturer, error) {
	switch backend {
	case "", "command":
		return NewCommandCapturer(command, args), nil
	case "display":
		return NewDisplayCapturer(), nil
	default:
		return nil, fmt.Errorf("unknown capture backend %q", backend)
	}
}

// Capture captures the entire virtual screen across all active displays
func Capture() (*image.RGBA, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, ErrNoDisplays
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	img, err := screenshot.CaptureRect(union)
	if err != nil {
		return nil, err
	}
	log.Printf("Captured virtual screen %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	return img, nil
}

// GetDisplayBounds returns the union of all active display bounds.
func GetDisplayBounds() (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, ErrNoDisplays
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	return union, nil
}
