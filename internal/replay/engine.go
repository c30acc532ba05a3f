// Package replay reproduces a recorded ActionSequence as synthetic input,
// capturing a frame after every non-delay action.
package replay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mj1618/autodoc-cli/internal/model"
	"github.com/mj1618/autodoc-cli/internal/platform"
)

// State is the engine lifecycle state.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "idle"
	}
}

// Config controls replay timing. SpeedMultiplier scales only explicit delay
// actions; the fixed intra-action pacing below emulates human input timing
// and is never scaled.
type Config struct {
	SpeedMultiplier float64
	StepPacing      time.Duration
	CharPacing      time.Duration
	SettleTime      time.Duration
	DragSteps       int
	PausePoll       time.Duration
}

// DefaultConfig returns the standard replay timing.
func DefaultConfig() Config {
	return Config{
		SpeedMultiplier: 1.0,
		StepPacing:      25 * time.Millisecond,
		CharPacing:      20 * time.Millisecond,
		SettleTime:      150 * time.Millisecond,
		DragSteps:       20,
		PausePoll:       100 * time.Millisecond,
	}
}

// Engine replays action sequences. Replay is strictly sequential: input
// devices are a single shared physical resource, so no two actions are ever
// synthesized concurrently.
type Engine struct {
	input  platform.Inputter
	frames platform.FrameSource
	gate   platform.PermissionGate
	cfg    Config

	// OnCaptureError is invoked when a post-action frame capture fails.
	// The failure is reported and replay continues with the next action.
	OnCaptureError func(step int, err error)

	mu      sync.Mutex
	state   State
	current int
	total   int
}

// New returns an idle engine.
func New(input platform.Inputter, frames platform.FrameSource, gate platform.PermissionGate, cfg Config) *Engine {
	if cfg.SpeedMultiplier <= 0 {
		cfg.SpeedMultiplier = 1.0
	}
	if cfg.DragSteps <= 0 {
		cfg.DragSteps = 20
	}
	return &Engine{input: input, frames: frames, gate: gate, cfg: cfg}
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Progress returns the fraction of actions completed, monotonically
// non-decreasing over a run.
func (e *Engine) Progress() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.total == 0 {
		return 0
	}
	return float64(e.current) / float64(e.total)
}

// Pause suspends replay at the next action boundary.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StatePlaying {
		return fmt.Errorf("cannot pause while %s", e.state)
	}
	e.state = StatePaused
	return nil
}

// Resume continues a paused replay.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StatePaused {
		return fmt.Errorf("cannot resume while %s", e.state)
	}
	e.state = StatePlaying
	return nil
}

// Play replays the sequence, capturing a frame of target after every
// non-delay action. It returns the session with whatever was captured; on
// cancellation the error is ctx.Err() and the session holds the captures
// taken so far. Cancellation and pause are observed at action boundaries;
// an action is always completed atomically once started.
func (e *Engine) Play(ctx context.Context, seq *model.ActionSequence, target model.Region) (*model.PlaybackSession, error) {
	if !e.gate.Granted() {
		return nil, model.ErrPermissionDenied
	}

	e.mu.Lock()
	if e.state != StateIdle {
		e.mu.Unlock()
		return nil, fmt.Errorf("cannot play while %s", e.state)
	}
	e.state = StatePlaying
	e.current = 0
	e.total = len(seq.Actions)
	e.mu.Unlock()

	session := &model.PlaybackSession{
		SequenceID: seq.ID,
		StartedAt:  time.Now(),
	}
	finish := func(err error) (*model.PlaybackSession, error) {
		now := time.Now()
		session.CompletedAt = &now
		e.mu.Lock()
		e.state = StateIdle
		e.mu.Unlock()
		return session, err
	}

	step := 0
	for _, action := range seq.Actions {
		if err := e.waitWhilePaused(ctx); err != nil {
			return finish(err)
		}

		if d, ok := action.(model.Delay); ok {
			scaled := time.Duration(d.Seconds / e.cfg.SpeedMultiplier * float64(time.Second))
			if err := sleepCtx(ctx, scaled); err != nil {
				return finish(err)
			}
			e.advance()
			continue
		}

		if err := e.synthesize(action); err != nil {
			return finish(fmt.Errorf("synthesize %s: %w", model.Describe(action), err))
		}

		// Let the UI settle before capturing the result of the action.
		time.Sleep(e.cfg.SettleTime)
		step++
		frame, err := e.frames.Capture(ctx, target)
		if err != nil {
			if e.OnCaptureError != nil {
				e.OnCaptureError(step, err)
			}
		} else {
			session.Captures = append(session.Captures, model.PlaybackCapture{Step: step, Frame: frame})
		}
		e.advance()
	}
	return finish(nil)
}

func (e *Engine) advance() {
	e.mu.Lock()
	e.current++
	e.mu.Unlock()
}

// waitWhilePaused polls the pause flag, honoring cancellation between polls.
func (e *Engine) waitWhilePaused(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if e.State() != StatePaused {
			return nil
		}
		if err := sleepCtx(ctx, e.cfg.PausePoll); err != nil {
			return err
		}
	}
}

// synthesize reproduces a single non-delay action. It is never interrupted
// once started.
func (e *Engine) synthesize(action model.Action) error {
	pace := func() { time.Sleep(e.cfg.StepPacing) }

	switch a := action.(type) {
	case model.Click:
		if err := e.input.MoveMouse(a.X, a.Y); err != nil {
			return err
		}
		pace()
		if err := e.input.ButtonDown(a.X, a.Y, a.Button, 1); err != nil {
			return err
		}
		pace()
		return e.input.ButtonUp(a.X, a.Y, a.Button, 1)

	case model.DoubleClick:
		if err := e.input.MoveMouse(a.X, a.Y); err != nil {
			return err
		}
		pace()
		for count := 1; count <= 2; count++ {
			if err := e.input.ButtonDown(a.X, a.Y, a.Button, count); err != nil {
				return err
			}
			pace()
			if err := e.input.ButtonUp(a.X, a.Y, a.Button, count); err != nil {
				return err
			}
			pace()
		}
		return nil

	case model.Drag:
		if err := e.input.MoveMouse(a.FromX, a.FromY); err != nil {
			return err
		}
		pace()
		if err := e.input.ButtonDown(a.FromX, a.FromY, model.MouseLeft, 1); err != nil {
			return err
		}
		for i := 1; i <= e.cfg.DragSteps; i++ {
			t := float64(i) / float64(e.cfg.DragSteps)
			x := a.FromX + (a.ToX-a.FromX)*t
			y := a.FromY + (a.ToY-a.FromY)*t
			if err := e.input.MoveMouse(x, y); err != nil {
				return err
			}
			pace()
		}
		return e.input.ButtonUp(a.ToX, a.ToY, model.MouseLeft, 1)

	case model.Scroll:
		if err := e.input.MoveMouse(a.X, a.Y); err != nil {
			return err
		}
		pace()
		return e.input.Scroll(a.X, a.Y, a.DeltaX, a.DeltaY)

	case model.KeyPress:
		if err := e.input.KeyDown(a.KeyCode, a.Modifiers); err != nil {
			return err
		}
		pace()
		return e.input.KeyUp(a.KeyCode, a.Modifiers)

	case model.TypeText:
		for _, ch := range a.Text {
			if err := e.input.TypeChar(ch); err != nil {
				return err
			}
			time.Sleep(e.cfg.CharPacing)
		}
		return nil

	default:
		return fmt.Errorf("unknown action type %T", action)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
