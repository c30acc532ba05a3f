// Package orchestrator drives one end-to-end auto-capture run: countdown,
// the capture-and-act loop, concurrent analysis, and final persistence, as a
// single-writer state machine.
package orchestrator

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/mj1618/autodoc-cli/internal/analysis"
	"github.com/mj1618/autodoc-cli/internal/model"
	"github.com/mj1618/autodoc-cli/internal/platform"
)

// Phase is one step of the auto-capture state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePreparing
	PhaseCapturing
	PhaseProcessing
	PhaseSaving
	PhaseCompleted
	PhasePartiallyCompleted
	PhaseError
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhasePreparing:
		return "preparing"
	case PhaseCapturing:
		return "capturing"
	case PhaseProcessing:
		return "processing"
	case PhaseSaving:
		return "saving"
	case PhaseCompleted:
		return "completed"
	case PhasePartiallyCompleted:
		return "partiallyCompleted"
	case PhaseError:
		return "error"
	default:
		return "idle"
	}
}

// State is a snapshot of the orchestrator, rich enough for a caller to pick
// the right recovery action: restart, retry-failed, or re-save.
type State struct {
	Phase     Phase
	Current   int // capture or analysis progress within the phase
	Total     int
	Succeeded int // analysis outcome counts, set from processing onward
	Failed    int
	Message   string // human-readable error context
	Location  string // output directory, set on completion
}

// Config tunes a run. Zero values fall back to sensible defaults.
type Config struct {
	Countdown     time.Duration // focus-switch grace before capturing
	TakePreview   bool          // capture one throwaway preview frame first
	MaxConcurrent int           // analysis pool width
	Prompt        string        // analysis prompt
	Scale         float64       // frame downscale factor before analysis
	OutputRoot    string        // parent directory for run output
	ActionPacing  time.Duration // pacing inside the between-capture action
}

// Orchestrator owns all mutable run state; external callbacks only observe
// snapshots. A single Run (or RetryFailed / SaveWithGaps) executes at a
// time.
type Orchestrator struct {
	frames platform.FrameSource
	input  platform.Inputter
	pool   *analysis.Pool
	cfg    Config

	// OnState receives a snapshot at every phase boundary and progress
	// tick.
	OnState func(State)

	mu       sync.Mutex
	state    State
	running  bool
	job      model.CaptureJob
	captured []image.Image
	results  []model.ImageProcessingResult
}

// New wires an orchestrator from its collaborators.
func New(frames platform.FrameSource, input platform.Inputter, provider analysis.Provider, cfg Config) *Orchestrator {
	if cfg.Countdown == 0 {
		cfg.Countdown = 3 * time.Second
	}
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = analysis.DefaultMaxConcurrent
	}
	if cfg.Prompt == "" {
		cfg.Prompt = analysis.DefaultPrompt
	}
	if cfg.Scale <= 0 || cfg.Scale > 1 {
		cfg.Scale = 1
	}
	if cfg.ActionPacing == 0 {
		cfg.ActionPacing = 25 * time.Millisecond
	}
	o := &Orchestrator{
		frames: frames,
		input:  input,
		cfg:    cfg,
	}
	o.pool = analysis.NewPool(provider, cfg.MaxConcurrent)
	o.pool.OnProgress = func(done, total int) {
		o.setState(func(s *State) {
			s.Current = done
			s.Total = total
		})
	}
	return o
}

// State returns the current snapshot.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Results returns a copy of the per-frame tracking records from the last
// processing phase.
func (o *Orchestrator) Results() []model.ImageProcessingResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]model.ImageProcessingResult, len(o.results))
	copy(out, o.results)
	return out
}

// Run executes one auto-capture job. It may only be called from idle,
// completed, or error. On cancellation it discards captured frames, returns
// ctx.Err(), and goes back to idle; cancellation is a normal terminal
// outcome, not an error state.
func (o *Orchestrator) Run(ctx context.Context, job model.CaptureJob) error {
	if err := job.Validate(); err != nil {
		return err
	}
	if err := o.begin(job); err != nil {
		return err
	}

	if err := o.prepare(ctx); err != nil {
		return o.terminate(ctx, err)
	}
	if err := o.capture(ctx); err != nil {
		return o.terminate(ctx, err)
	}
	return o.process(ctx)
}

// RetryFailed resubmits only the analyses that failed, preserving the
// already-succeeded results, then proceeds to saving if everything is now
// complete. Only valid from partiallyCompleted.
func (o *Orchestrator) RetryFailed(ctx context.Context) error {
	o.mu.Lock()
	if o.state.Phase != PhasePartiallyCompleted || o.running {
		phase := o.state.Phase
		o.mu.Unlock()
		return fmt.Errorf("cannot retry from %s", phase)
	}
	o.running = true
	o.mu.Unlock()

	o.setState(func(s *State) {
		_, failed := analysis.Summarize(o.results)
		*s = State{Phase: PhaseProcessing, Total: failed}
	})
	o.pool.Retry(ctx, o.results, o.cfg.Prompt)
	if ctx.Err() != nil {
		return o.terminate(ctx, ctx.Err())
	}
	return o.classify(ctx)
}

// SaveWithGaps force-saves a partially completed run, leaving failed steps
// marked in the document. Only valid from partiallyCompleted.
func (o *Orchestrator) SaveWithGaps(ctx context.Context) error {
	o.mu.Lock()
	if o.state.Phase != PhasePartiallyCompleted || o.running {
		phase := o.state.Phase
		o.mu.Unlock()
		return fmt.Errorf("cannot save from %s", phase)
	}
	o.running = true
	o.mu.Unlock()
	return o.save(ctx)
}

// begin transitions into a fresh run if the current phase allows it.
func (o *Orchestrator) begin(job model.CaptureJob) error {
	o.mu.Lock()
	switch o.state.Phase {
	case PhaseIdle, PhaseCompleted, PhaseError:
	default:
		phase := o.state.Phase
		o.mu.Unlock()
		return fmt.Errorf("cannot start a run while %s", phase)
	}
	if o.running {
		o.mu.Unlock()
		return fmt.Errorf("a run is already in progress")
	}
	o.running = true
	o.job = job
	o.captured = nil
	o.results = nil
	o.state = State{Phase: PhasePreparing}
	snapshot := o.state
	o.mu.Unlock()
	o.notify(snapshot)
	return nil
}

// terminate resolves a failed or cancelled run. Cancellation resets to
// idle; real failures land in the error phase with their message.
func (o *Orchestrator) terminate(ctx context.Context, err error) error {
	o.mu.Lock()
	o.running = false
	if ctx.Err() != nil {
		// Frames captured so far are discarded.
		o.captured = nil
		o.state = State{Phase: PhaseIdle}
		snapshot := o.state
		o.mu.Unlock()
		o.notify(snapshot)
		return ctx.Err()
	}
	o.state = State{Phase: PhaseError, Message: err.Error()}
	snapshot := o.state
	o.mu.Unlock()
	o.notify(snapshot)
	return err
}

// prepare optionally grabs a preview frame, then counts down so the user
// can switch focus to the target application. Cancelling here aborts before
// anything destructive happens.
func (o *Orchestrator) prepare(ctx context.Context) error {
	if o.cfg.TakePreview {
		if _, err := o.frames.Capture(ctx, o.job.Target); err != nil {
			return fmt.Errorf("preview capture: %w", err)
		}
	}
	return sleepCtx(ctx, o.cfg.Countdown)
}

// capture runs the capture-and-act loop. Any capture failure aborts the
// run; nothing is partially saved.
func (o *Orchestrator) capture(ctx context.Context) error {
	n := o.job.CaptureCount
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		o.setState(func(s *State) {
			*s = State{Phase: PhaseCapturing, Current: i + 1, Total: n}
		})

		frame, err := o.frames.Capture(ctx, o.job.Target)
		if err != nil {
			return fmt.Errorf("capture %d/%d: %w", i+1, n, err)
		}
		o.mu.Lock()
		o.captured = append(o.captured, frame)
		o.mu.Unlock()

		if i < n-1 {
			if err := o.performNext(); err != nil {
				return fmt.Errorf("next action after capture %d: %w", i+1, err)
			}
			if err := sleepCtx(ctx, o.job.Interval); err != nil {
				return err
			}
		}
	}
	return nil
}

// performNext synthesizes the configured between-capture action.
func (o *Orchestrator) performNext() error {
	next := o.job.Next
	pace := func() { time.Sleep(o.cfg.ActionPacing) }
	switch next.Kind {
	case model.NextClick:
		if err := o.input.MoveMouse(next.X, next.Y); err != nil {
			return err
		}
		pace()
		if err := o.input.ButtonDown(next.X, next.Y, next.Button, 1); err != nil {
			return err
		}
		pace()
		return o.input.ButtonUp(next.X, next.Y, next.Button, 1)
	default:
		if err := o.input.KeyDown(next.KeyCode, next.Modifiers); err != nil {
			return err
		}
		pace()
		return o.input.KeyUp(next.KeyCode, next.Modifiers)
	}
}

// process fans the captured frames out to the analysis pool and classifies
// the outcome. Cancellation stops submitting new analysis work; in-flight
// calls drain on their own.
func (o *Orchestrator) process(ctx context.Context) error {
	o.mu.Lock()
	frames := make([]image.Image, len(o.captured))
	for i, f := range o.captured {
		frames[i] = ScaleFrame(f, o.cfg.Scale)
	}
	o.mu.Unlock()

	o.setState(func(s *State) {
		*s = State{Phase: PhaseProcessing, Total: len(frames)}
	})

	results := o.pool.Analyze(ctx, frames, o.cfg.Prompt)
	o.mu.Lock()
	o.results = results
	o.mu.Unlock()

	if ctx.Err() != nil {
		return o.terminate(ctx, ctx.Err())
	}
	return o.classify(ctx)
}

// classify inspects analysis outcomes and either proceeds to saving, stops
// in partiallyCompleted, or fails the run when nothing succeeded.
func (o *Orchestrator) classify(ctx context.Context) error {
	succeeded, failed := analysis.Summarize(o.results)
	switch {
	case failed == 0:
		return o.save(ctx)
	case succeeded == 0:
		return o.terminate(ctx, fmt.Errorf("all %d analyses failed: %s", failed, firstError(o.results)))
	default:
		o.mu.Lock()
		o.running = false
		o.state = State{Phase: PhasePartiallyCompleted, Succeeded: succeeded, Failed: failed}
		snapshot := o.state
		o.mu.Unlock()
		o.notify(snapshot)
		return nil
	}
}

func (o *Orchestrator) setState(mutate func(*State)) {
	o.mu.Lock()
	mutate(&o.state)
	snapshot := o.state
	o.mu.Unlock()
	o.notify(snapshot)
}

// notify delivers a snapshot to the observer outside the lock, so callbacks
// may call back into the orchestrator.
func (o *Orchestrator) notify(s State) {
	if o.OnState != nil {
		o.OnState(s)
	}
}

func firstError(results []model.ImageProcessingResult) string {
	for i := range results {
		if results[i].Status == model.StatusFailed && results[i].Error != "" {
			return results[i].Error
		}
	}
	return "unknown error"
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
