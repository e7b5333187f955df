// Package scheduler runs capture + detection cycles at a bounded rate and
// holds the most recent sentence set.
package scheduler

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"screen-translate-overlay/src/screenshot"
	"screen-translate-overlay/src/sentence"
)

// MinInterval is the shortest allowed gap between two cycle starts.
const MinInterval = time.Second

// Detector is the detection gateway as seen by the scheduler.
type Detector interface {
	DetectAndTranslate(ctx context.Context, lang, imagePath string) ([]sentence.Sentence, error)
}

// Stage names where a cycle stopped.
type Stage string

const (
	StageCapture Stage = "capture"
	StageDetect  Stage = "detect"
	StageDone    Stage = "done"
)

// CycleResult is the outcome of one capture + detection cycle. On failure
// Sentences is empty and Err says why.
type CycleResult struct {
	Sentences sentence.Set
	Err       error
	Stage     Stage
}

// Options configures a Scheduler.
type Options struct {
	Lang      string
	OutputDir string
	Interval  time.Duration
}

// Scheduler decides when a cycle is due, runs it, and publishes the result.
type Scheduler struct {
	capture  screenshot.Capturer
	detector Detector
	lang     string
	dir      string
	interval time.Duration

	mu         sync.Mutex
	lastUpdate time.Time

	current atomic.Pointer[sentence.Set]
}

// New returns a scheduler whose first cycle is due immediately. Intervals
// below MinInterval are raised to it.
func New(capture screenshot.Capturer, detector Detector, opts Options) *Scheduler {
	interval := opts.Interval
	if interval < MinInterval {
		interval = MinInterval
	}
	s := &Scheduler{
		capture:  capture,
		detector: detector,
		lang:     opts.Lang,
		dir:      opts.OutputDir,
		interval: interval,
	}
	empty := sentence.Set{}
	s.current.Store(&empty)
	return s
}

func (s *Scheduler) Interval() time.Duration { return s.interval }

// Due reports whether at least one interval has passed since the last update.
func (s *Scheduler) Due(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUpdate.IsZero() || now.Sub(s.lastUpdate) >= s.interval
}

// Tick runs one cycle inline if one is due. The bool is false when nothing
// was run; state is then left untouched.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) (CycleResult, bool) {
	if !s.Due(now) {
		return CycleResult{}, false
	}
	res := s.RunCycle(ctx)
	s.Apply(res, now)
	return res, true
}

// RunCycle captures the screen and, if that worked, detects and translates
// it. It does not publish the result; see Apply.
func (s *Scheduler) RunCycle(ctx context.Context) CycleResult {
	path, err := s.capture.Capture(s.dir)
	if err != nil {
		log.Printf("Scheduler: capture failed: %v", err)
		return CycleResult{Sentences: sentence.Set{}, Err: err, Stage: StageCapture}
	}

	found, err := s.detector.DetectAndTranslate(ctx, s.lang, path)
	if err != nil {
		log.Printf("Scheduler: detection failed: %v", err)
		return CycleResult{Sentences: sentence.Set{}, Err: err, Stage: StageDetect}
	}
	set := sentence.Set(found)
	if set == nil {
		set = sentence.Set{}
	}
	log.Printf("Scheduler: cycle produced %d sentences", len(set))
	return CycleResult{Sentences: set, Stage: StageDone}
}

// Apply publishes a cycle result and records at as the last update time.
func (s *Scheduler) Apply(res CycleResult, at time.Time) {
	set := res.Sentences
	if set == nil {
		set = sentence.Set{}
	}
	s.current.Store(&set)

	s.mu.Lock()
	s.lastUpdate = at
	s.mu.Unlock()
}

// Sentences returns the current set. The returned slice must not be modified.
func (s *Scheduler) Sentences() sentence.Set {
	return *s.current.Load()
}

func (s *Scheduler) LastUpdate() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUpdate
}
