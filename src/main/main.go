package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"screen-translate-overlay/src/config"
	"screen-translate-overlay/src/eventloop"
	"screen-translate-overlay/src/hotkey"
	"screen-translate-overlay/src/logutil"
	"screen-translate-overlay/src/notification"
	"screen-translate-overlay/src/overlay"
	"screen-translate-overlay/src/render"
	"screen-translate-overlay/src/runtimeinit"
	"screen-translate-overlay/src/scheduler"
	"screen-translate-overlay/src/singleinstance"
	"screen-translate-overlay/src/tray"
)

const appTitle = "Screen Translate Overlay"

func init() {
	// Window systems want the UI on the main thread.
	runtime.LockOSThread()
}

type mainOptions struct {
	configPath string
	apiKeyPath string
	toggle     bool
	pause      bool
	copy       bool
	status     bool
	quit       bool
}

// command returns the control command requested on the command line, if any.
func (o mainOptions) command() (singleinstance.Command, bool) {
	switch {
	case o.quit:
		return singleinstance.CommandQuit, true
	case o.toggle:
		return singleinstance.CommandToggle, true
	case o.pause:
		return singleinstance.CommandPause, true
	case o.copy:
		return singleinstance.CommandCopy, true
	case o.status:
		return singleinstance.CommandStatus, true
	}
	return "", false
}

func main() {
	cmd := newRootCmd(&mainOptions{})
	cmd.SetArgs(normalizeLegacyArgs(os.Args)[1:])
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "screen-translate-overlay",
		Short:         "Translate on-screen text in place",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(*opts)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to config.toml")
	cmd.Flags().StringVar(&opts.apiKeyPath, "api-key-path", "", "Path to API key file (highest precedence)")
	cmd.Flags().BoolVar(&opts.toggle, "toggle", false, "Show or hide the running overlay")
	cmd.Flags().BoolVar(&opts.pause, "pause", false, "Pause or resume capture in the running overlay")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "Copy the running overlay's translations to the clipboard")
	cmd.Flags().BoolVar(&opts.status, "status", false, "Print the running overlay's status")
	cmd.Flags().BoolVar(&opts.quit, "quit", false, "Stop the running overlay")
	cmd.MarkFlagsMutuallyExclusive("toggle", "pause", "copy", "status", "quit")

	return cmd
}

// normalizeLegacyArgs maps single-dash long flags (-toggle) to GNU style.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return []string{"screen-translate-overlay"}
	}
	long := []string{"config", "api-key-path", "toggle", "pause", "copy", "status", "quit"}
	out := make([]string, len(args))
	copy(out, args)
	for i := 1; i < len(out); i++ {
		for _, name := range long {
			if out[i] == "-"+name || strings.HasPrefix(out[i], "-"+name+"=") {
				out[i] = "-" + out[i]
				break
			}
		}
	}
	return out
}

func run(opts mainOptions) error {
	loadOpts := config.LoadOptions{APIKeyPathOverride: opts.apiKeyPath, ConfigPathOverride: opts.configPath}
	// Load .env early so OVERLAY_PORT_* apply before talking to a resident.
	_, _ = config.LoadWithOptions(loadOpts)

	if cmd, ok := opts.command(); ok {
		reply, err := delegate(cmd, singleinstance.NewClient())
		if err != nil {
			return err
		}
		if reply != "" {
			fmt.Println(reply)
		}
		return nil
	}

	if port, ok := singleinstance.DetectResidentPort(context.Background()); ok {
		return fmt.Errorf("already running on port %d; use --toggle, --pause or --quit", port)
	}
	return runResident(loadOpts)
}

var errNoResident = errors.New("no running overlay found")

// delegate forwards cmd to the resident process.
func delegate(cmd singleinstance.Command, client singleinstance.Client) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	delivered, reply, err := client.Send(ctx, cmd)
	if err != nil {
		return "", fmt.Errorf("%s failed: %w", strings.ToLower(string(cmd)), err)
	}
	if !delivered {
		return "", errNoResident
	}
	log.Printf("Delegated %s to resident", cmd)
	return reply, nil
}

func runResident(loadOpts config.LoadOptions) error {
	enableDPIAwareness()

	rt, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:  loadOpts,
		SetupLogging: logutil.Setup,
	})
	if err != nil {
		notification.ShowBlockingError(appTitle, err.Error())
		return err
	}
	cfg := rt.Config
	logMonitorConfiguration()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bounds := overlay.ScreenBounds()
	sched := scheduler.New(rt.Capturer, rt.Gateway, scheduler.Options{
		Lang:      cfg.LangFrom,
		OutputDir: cfg.CaptureDir,
		Interval:  cfg.CaptureInterval,
	})
	canvas := render.NewCanvas(image.Rect(0, 0, bounds.Dx(), bounds.Dy()), rt.Font)
	loop := eventloop.New(sched, render.New(rt.Style), canvas, eventloop.Options{
		Sync:   cfg.CaptureMode == config.CaptureModeSync,
		OnQuit: cancel,
		OnStateChange: func(s eventloop.State) {
			tray.UpdateTooltip(tray.Tooltip(appTitle, s.Paused, s.Visible))
		},
	})
	defer func() {
		// Cancel first so an in-flight cycle stops before Close waits for it.
		cancel()
		loop.Close()
	}()

	hotkey.Listen(
		hotkey.Binding{Combo: cfg.HotkeyToggle, Action: func() { loop.ToggleVisible() }},
		hotkey.Binding{Combo: cfg.HotkeyPause, Action: func() { loop.TogglePause() }},
	)

	go func() {
		if err := loop.Serve(ctx, singleinstance.NewServer()); err != nil {
			log.Printf("singleinstance server stopped: %v", err)
		}
	}()

	// Handle SIGINT/SIGTERM
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
	}()

	host := overlay.New(overlay.Options{
		Title:  appTitle,
		Bounds: bounds,
		Frame: func(now time.Time) *image.RGBA {
			return loop.Frame(ctx, now)
		},
		Tray: tray.Actions{
			TogglePause:   func() { loop.TogglePause() },
			ToggleVisible: func() { loop.ToggleVisible() },
			Copy:          func() { _, _ = loop.CopyTranslations() },
			Quit:          cancel,
		},
	})
	log.Printf("%s started (hotkeys: toggle=%s pause=%s)", appTitle, cfg.HotkeyToggle, cfg.HotkeyPause)
	return host.Run(ctx)
}
