package replay

import (
	"context"
	"errors"
	"fmt"
	"image"
	"testing"
	"time"

	"github.com/mj1618/autodoc-cli/internal/model"
)

// fakeInputter records every synthesized event as a string.
type fakeInputter struct {
	calls []string
	fail  error
}

func (f *fakeInputter) record(format string, args ...interface{}) error {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	return f.fail
}

func (f *fakeInputter) MoveMouse(x, y float64) error {
	return f.record("move(%.0f,%.0f)", x, y)
}

func (f *fakeInputter) ButtonDown(x, y float64, b model.MouseButton, count int) error {
	return f.record("down(%s,%d)", b, count)
}

func (f *fakeInputter) ButtonUp(x, y float64, b model.MouseButton, count int) error {
	return f.record("up(%s,%d)", b, count)
}

func (f *fakeInputter) Scroll(x, y, dx, dy float64) error {
	return f.record("scroll(%.0f,%.0f)", dx, dy)
}

func (f *fakeInputter) KeyDown(code uint16, mods model.Modifiers) error {
	return f.record("keydown(%d)", code)
}

func (f *fakeInputter) KeyUp(code uint16, mods model.Modifiers) error {
	return f.record("keyup(%d)", code)
}

func (f *fakeInputter) TypeChar(ch rune) error {
	return f.record("char(%c)", ch)
}

// fakeFrames serves a tiny image, optionally failing on given capture calls.
type fakeFrames struct {
	captures int
	failOn   map[int]bool
}

func (f *fakeFrames) Capture(ctx context.Context, target model.Region) (image.Image, error) {
	f.captures++
	if f.failOn[f.captures] {
		return nil, fmt.Errorf("%w: backend unavailable", model.ErrCaptureFailed)
	}
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

type allowGate struct{ granted bool }

func (g allowGate) Granted() bool { return g.granted }

// fastConfig removes pacing so tests run instantly.
func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.StepPacing = 0
	cfg.CharPacing = 0
	cfg.SettleTime = 0
	cfg.PausePoll = time.Millisecond
	return cfg
}

func seq(actions ...model.Action) *model.ActionSequence {
	return &model.ActionSequence{ID: "seq-1", Name: "test", CreatedAt: time.Now(), Actions: actions}
}

func TestClickSynthesis(t *testing.T) {
	in := &fakeInputter{}
	e := New(in, &fakeFrames{}, allowGate{true}, fastConfig())

	_, err := e.Play(context.Background(), seq(model.Click{X: 10, Y: 20, Button: model.MouseRight}), model.FullScreen())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"move(10,20)", "down(right,1)", "up(right,1)"}
	assertCalls(t, in.calls, want)
}

func TestDoubleClickSynthesis(t *testing.T) {
	in := &fakeInputter{}
	e := New(in, &fakeFrames{}, allowGate{true}, fastConfig())

	_, err := e.Play(context.Background(), seq(model.DoubleClick{X: 5, Y: 5, Button: model.MouseLeft}), model.FullScreen())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"move(5,5)", "down(left,1)", "up(left,1)", "down(left,2)", "up(left,2)"}
	assertCalls(t, in.calls, want)
}

func TestDragInterpolation(t *testing.T) {
	in := &fakeInputter{}
	cfg := fastConfig()
	cfg.DragSteps = 4
	e := New(in, &fakeFrames{}, allowGate{true}, cfg)

	_, err := e.Play(context.Background(), seq(model.Drag{FromX: 0, FromY: 0, ToX: 100, ToY: 200}), model.FullScreen())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"move(0,0)", "down(left,1)",
		"move(25,50)", "move(50,100)", "move(75,150)", "move(100,200)",
		"up(left,1)",
	}
	assertCalls(t, in.calls, want)
}

func TestTypeTextPerCharacter(t *testing.T) {
	in := &fakeInputter{}
	e := New(in, &fakeFrames{}, allowGate{true}, fastConfig())

	_, err := e.Play(context.Background(), seq(model.TypeText{Text: "hi"}), model.FullScreen())
	if err != nil {
		t.Fatal(err)
	}
	assertCalls(t, in.calls, []string{"char(h)", "char(i)"})
}

func TestKeyPressSynthesis(t *testing.T) {
	in := &fakeInputter{}
	e := New(in, &fakeFrames{}, allowGate{true}, fastConfig())

	_, err := e.Play(context.Background(), seq(model.KeyPress{KeyCode: 36}), model.FullScreen())
	if err != nil {
		t.Fatal(err)
	}
	assertCalls(t, in.calls, []string{"keydown(36)", "keyup(36)"})
}

func TestCapturesTaggedByStep(t *testing.T) {
	frames := &fakeFrames{}
	e := New(&fakeInputter{}, frames, allowGate{true}, fastConfig())

	session, err := e.Play(context.Background(), seq(
		model.Click{X: 1, Y: 1},
		model.Delay{Seconds: 0},
		model.TypeText{Text: "a"},
	), model.FullScreen())
	if err != nil {
		t.Fatal(err)
	}
	// Delay actions do not capture: two frames, steps 1 and 2.
	if len(session.Captures) != 2 {
		t.Fatalf("got %d captures, want 2", len(session.Captures))
	}
	for i, c := range session.Captures {
		if c.Step != i+1 {
			t.Errorf("capture %d step = %d, want %d", i, c.Step, i+1)
		}
	}
	if session.CompletedAt == nil {
		t.Error("session not finalized")
	}
}

func TestSpeedMultiplierScalesOnlyDelays(t *testing.T) {
	cfg := fastConfig()
	cfg.SpeedMultiplier = 2.0
	e := New(&fakeInputter{}, &fakeFrames{}, allowGate{true}, cfg)

	start := time.Now()
	_, err := e.Play(context.Background(), seq(model.Delay{Seconds: 0.4}), model.FullScreen())
	if err != nil {
		t.Fatal(err)
	}
	elapsed := time.Since(start)
	if elapsed < 150*time.Millisecond || elapsed > 350*time.Millisecond {
		t.Errorf("delay(0.4) at 2x took %v, want ~200ms", elapsed)
	}
}

func TestCaptureFailureReportsAndContinues(t *testing.T) {
	frames := &fakeFrames{failOn: map[int]bool{1: true}}
	e := New(&fakeInputter{}, frames, allowGate{true}, fastConfig())

	var failedSteps []int
	e.OnCaptureError = func(step int, err error) {
		if !errors.Is(err, model.ErrCaptureFailed) {
			t.Errorf("callback error = %v, want ErrCaptureFailed", err)
		}
		failedSteps = append(failedSteps, step)
	}

	session, err := e.Play(context.Background(), seq(
		model.Click{X: 1, Y: 1},
		model.Click{X: 2, Y: 2},
	), model.FullScreen())
	if err != nil {
		t.Fatal(err)
	}
	if len(failedSteps) != 1 || failedSteps[0] != 1 {
		t.Errorf("failed steps = %v, want [1]", failedSteps)
	}
	if len(session.Captures) != 1 || session.Captures[0].Step != 2 {
		t.Errorf("captures = %v, want just step 2", session.Captures)
	}
}

func TestPermissionDenied(t *testing.T) {
	e := New(&fakeInputter{}, &fakeFrames{}, allowGate{false}, fastConfig())
	_, err := e.Play(context.Background(), seq(model.Click{}), model.FullScreen())
	if !errors.Is(err, model.ErrPermissionDenied) {
		t.Errorf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestCancelDuringDelay(t *testing.T) {
	e := New(&fakeInputter{}, &fakeFrames{}, allowGate{true}, fastConfig())
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	session, err := e.Play(ctx, seq(
		model.Delay{Seconds: 10},
		model.Click{X: 1, Y: 1},
	), model.FullScreen())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(session.Captures) != 0 {
		t.Errorf("captured %d frames after cancel, want 0", len(session.Captures))
	}
	if e.State() != StateIdle {
		t.Errorf("state = %s, want idle", e.State())
	}
}

func TestProgress(t *testing.T) {
	e := New(&fakeInputter{}, &fakeFrames{}, allowGate{true}, fastConfig())
	if e.Progress() != 0 {
		t.Errorf("initial progress = %f, want 0", e.Progress())
	}
	_, err := e.Play(context.Background(), seq(
		model.Click{X: 1, Y: 1},
		model.Click{X: 2, Y: 2},
	), model.FullScreen())
	if err != nil {
		t.Fatal(err)
	}
	if e.Progress() != 1.0 {
		t.Errorf("final progress = %f, want 1.0", e.Progress())
	}
}

func TestPauseBlocksNextAction(t *testing.T) {
	in := &fakeInputter{}
	e := New(in, &fakeFrames{}, allowGate{true}, fastConfig())

	done := make(chan struct{})
	started := make(chan struct{})
	go func() {
		defer close(done)
		close(started)
		_, err := e.Play(context.Background(), seq(
			model.Delay{Seconds: 0.05},
			model.Click{X: 1, Y: 1},
		), model.FullScreen())
		if err != nil {
			t.Errorf("play: %v", err)
		}
	}()
	<-started
	// Pause while the delay runs, then resume and let it finish.
	time.Sleep(10 * time.Millisecond)
	if err := e.Pause(); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	if err := e.Resume(); err != nil {
		t.Fatal(err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("replay did not finish after resume")
	}
}

func assertCalls(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d calls %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %s, want %s", i, got[i], want[i])
		}
	}
}
