// Package eventloop coordinates the overlay: it is called once per display
// frame, applies finished cycles, starts new ones off the render path, and
// paints the current sentences.
package eventloop

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync/atomic"
	"time"

	"screen-translate-overlay/src/clipboard"
	"screen-translate-overlay/src/render"
	"screen-translate-overlay/src/scheduler"
	"screen-translate-overlay/src/singleinstance"
	"screen-translate-overlay/src/worker"
)

// Options configures a Loop.
type Options struct {
	// Sync runs capture and detection inside Frame. Frames stall while the
	// backend works.
	Sync bool
	// OnQuit is called when a QUIT command arrives.
	OnQuit func()
	// OnStateChange is called after pause or visibility changes.
	OnStateChange func(State)
}

// State is the user-controlled part of the loop.
type State struct {
	Paused  bool
	Visible bool
	Busy    bool
}

// Loop is the single-threaded render-tick coordinator. Frame must be called
// from one goroutine; the toggles are safe from any goroutine.
type Loop struct {
	sched    *scheduler.Scheduler
	pool     *worker.Pool
	renderer *render.Renderer
	canvas   *render.Canvas

	results chan result
	busy    bool
	opts    Options

	paused   atomic.Bool
	hidden   atomic.Bool
	inFlight atomic.Bool
	frames   atomic.Uint64
}

type result struct {
	res scheduler.CycleResult
	at  time.Time
}

// New creates a loop. It owns pool-side resources until Close.
func New(sched *scheduler.Scheduler, renderer *render.Renderer, canvas *render.Canvas, opts Options) *Loop {
	l := &Loop{
		sched:    sched,
		renderer: renderer,
		canvas:   canvas,
		results:  make(chan result, 1),
		opts:     opts,
	}
	if !opts.Sync {
		l.pool = worker.New(1)
	}
	return l
}

// Frame advances the loop by one display frame and returns the image to
// show. The caller always schedules another frame.
func (l *Loop) Frame(ctx context.Context, now time.Time) *image.RGBA {
	l.frames.Add(1)
	l.drain()

	if !l.paused.Load() {
		l.maybeStart(ctx, now)
	}

	l.canvas.Clear()
	if !l.hidden.Load() {
		l.renderer.Draw(l.canvas, l.sched.Sentences())
	}
	return l.canvas.Image()
}

// drain applies any finished background cycle.
func (l *Loop) drain() {
	for {
		select {
		case r := <-l.results:
			l.sched.Apply(r.res, r.at)
			l.setBusy(false)
		default:
			return
		}
	}
}

func (l *Loop) maybeStart(ctx context.Context, now time.Time) {
	if l.busy || !l.sched.Due(now) {
		return
	}

	if l.opts.Sync {
		l.sched.Tick(ctx, now)
		return
	}

	// ctx is only cancelled at shutdown. A slow backend keeps busy set until
	// its cycle really returns.
	l.setBusy(true)
	submitted := l.pool.Submit(ctx, l.sched.RunCycle, func(res scheduler.CycleResult) {
		l.results <- result{res: res, at: time.Now()}
	})
	if !submitted {
		log.Printf("Loop: worker busy, cycle skipped")
		l.setBusy(false)
	}
}

func (l *Loop) setBusy(b bool) {
	l.busy = b
	l.inFlight.Store(b)
}

// TogglePause stops or resumes capture. The last sentences stay on screen.
func (l *Loop) TogglePause() bool {
	p := !l.paused.Load()
	l.paused.Store(p)
	log.Printf("Loop: paused=%v", p)
	l.notify()
	return p
}

// ToggleVisible shows or hides the overlay without stopping capture.
func (l *Loop) ToggleVisible() bool {
	h := !l.hidden.Load()
	l.hidden.Store(h)
	log.Printf("Loop: visible=%v", !h)
	l.notify()
	return !h
}

// CopyTranslations puts the current sentences on the clipboard.
func (l *Loop) CopyTranslations() (string, error) {
	text, err := clipboard.WriteSentences(l.sched.Sentences())
	if err != nil {
		log.Printf("Loop: clipboard write failed: %v", err)
		return "", err
	}
	log.Printf("Loop: copied %d chars", len(text))
	return text, nil
}

func (l *Loop) State() State {
	return State{
		Paused:  l.paused.Load(),
		Visible: !l.hidden.Load(),
		Busy:    l.inFlight.Load(),
	}
}

func (l *Loop) notify() {
	if l.opts.OnStateChange != nil {
		l.opts.OnStateChange(l.State())
	}
}

// Handle executes one forwarded command and returns the reply text.
func (l *Loop) Handle(cmd singleinstance.Command) (string, error) {
	switch cmd {
	case singleinstance.CommandToggle:
		return fmt.Sprintf("visible=%v", l.ToggleVisible()), nil
	case singleinstance.CommandPause:
		return fmt.Sprintf("paused=%v", l.TogglePause()), nil
	case singleinstance.CommandCopy:
		return l.CopyTranslations()
	case singleinstance.CommandStatus:
		s := l.State()
		return fmt.Sprintf("paused=%v visible=%v busy=%v sentences=%d last_update=%s frames=%d",
			s.Paused, s.Visible, s.Busy, len(l.sched.Sentences()), l.sched.LastUpdate().Format(time.RFC3339), l.frames.Load()), nil
	case singleinstance.CommandQuit:
		if l.opts.OnQuit != nil {
			l.opts.OnQuit()
		}
		return "bye", nil
	}
	return "", fmt.Errorf("unsupported command %q", cmd)
}

// Serve answers forwarded commands until ctx is cancelled.
func (l *Loop) Serve(ctx context.Context, srv singleinstance.Server) error {
	if err := srv.Start(ctx); err != nil {
		return err
	}
	defer srv.Close()
	if p := srv.Port(); p > 0 {
		log.Printf("Resident listening on 127.0.0.1:%d", p)
	}

	for {
		conn, err := srv.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		reply, err := l.Handle(conn.Request().Command)
		if err != nil {
			_ = conn.RespondError(err.Error())
		} else {
			_ = conn.RespondSuccess(reply)
		}
		_ = conn.Close()
	}
}

// Close waits for the in-flight cycle, if any, and releases resources.
func (l *Loop) Close() {
	if l.pool != nil {
		l.pool.Close()
	}
	l.canvas.Close()
}
