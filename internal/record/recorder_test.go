package record

import (
	"sync"
	"testing"
	"time"

	"github.com/mj1618/autodoc-cli/internal/model"
)

// fakeSource is a channel-backed event source. Stop closes the current
// channel, matching the hook backend's contract.
type fakeSource struct {
	mu sync.Mutex
	ch chan model.RawEvent
}

func (f *fakeSource) Start() (<-chan model.RawEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ch = make(chan model.RawEvent, 64)
	return f.ch, nil
}

func (f *fakeSource) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ch != nil {
		close(f.ch)
		f.ch = nil
	}
}

func (f *fakeSource) send(ev model.RawEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ch <- ev
}

type fakeGate struct{ granted bool }

func (g fakeGate) Granted() bool { return g.granted }

func TestRecordClick(t *testing.T) {
	src := &fakeSource{}
	rec := New(src, fakeGate{granted: true})

	if err := rec.Start("click-test"); err != nil {
		t.Fatal(err)
	}
	if rec.State() != StateRecording {
		t.Fatalf("state: got %s, want recording", rec.State())
	}

	now := time.Now()
	src.send(model.RawEvent{Kind: model.RawMouseDown, Time: now, X: 100, Y: 200, Button: model.MouseLeft})
	src.send(model.RawEvent{Kind: model.RawMouseUp, Time: now.Add(50 * time.Millisecond), X: 100, Y: 200, Button: model.MouseLeft})

	seq, err := rec.Stop()
	if err != nil {
		t.Fatal(err)
	}
	if rec.State() != StateIdle {
		t.Fatalf("state after stop: got %s, want idle", rec.State())
	}
	if seq.Name != "click-test" {
		t.Errorf("name: got %q", seq.Name)
	}
	if seq.ID == "" {
		t.Error("sequence id should be set")
	}
	if len(seq.Actions) != 1 {
		t.Fatalf("got %d actions, want 1: %v", len(seq.Actions), seq.Actions)
	}
	click, ok := seq.Actions[0].(model.Click)
	if !ok {
		t.Fatalf("got %T, want Click", seq.Actions[0])
	}
	if click.X != 100 || click.Y != 200 {
		t.Errorf("click at (%v,%v), want (100,200)", click.X, click.Y)
	}
}

func TestStartPermissionDenied(t *testing.T) {
	rec := New(&fakeSource{}, fakeGate{granted: false})
	if err := rec.Start("x"); err != model.ErrPermissionDenied {
		t.Fatalf("got %v, want ErrPermissionDenied", err)
	}
	if rec.State() != StateIdle {
		t.Errorf("state: got %s, want idle", rec.State())
	}
}

func TestLifecycleGuards(t *testing.T) {
	src := &fakeSource{}
	rec := New(src, fakeGate{granted: true})

	if _, err := rec.Stop(); err == nil {
		t.Error("stop while idle should fail")
	}
	if err := rec.Pause(); err == nil {
		t.Error("pause while idle should fail")
	}
	if err := rec.Resume(); err == nil {
		t.Error("resume while idle should fail")
	}

	if err := rec.Start("guard-test"); err != nil {
		t.Fatal(err)
	}
	if err := rec.Start("again"); err == nil {
		t.Error("start while recording should fail")
	}
	if err := rec.Resume(); err == nil {
		t.Error("resume while recording should fail")
	}
	if _, err := rec.Stop(); err != nil {
		t.Fatal(err)
	}
}

func TestPausePreservesTextRun(t *testing.T) {
	src := &fakeSource{}
	rec := New(src, fakeGate{granted: true})

	if err := rec.Start("pause-test"); err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	src.send(model.RawEvent{Kind: model.RawKeyDown, Time: now, KeyCode: 4, Char: 'h'})
	src.send(model.RawEvent{Kind: model.RawKeyDown, Time: now.Add(40 * time.Millisecond), KeyCode: 14, Char: 'e'})

	if err := rec.Pause(); err != nil {
		t.Fatal(err)
	}
	if rec.State() != StatePaused {
		t.Fatalf("state: got %s, want paused", rec.State())
	}
	if err := rec.Resume(); err != nil {
		t.Fatal(err)
	}

	src.send(model.RawEvent{Kind: model.RawKeyDown, Time: now.Add(80 * time.Millisecond), KeyCode: 16, Char: 'y'})

	seq, err := rec.Stop()
	if err != nil {
		t.Fatal(err)
	}
	if len(seq.Actions) != 1 {
		t.Fatalf("got %d actions, want 1: %v", len(seq.Actions), seq.Actions)
	}
	text, ok := seq.Actions[0].(model.TypeText)
	if !ok {
		t.Fatalf("got %T, want TypeText", seq.Actions[0])
	}
	if text.Text != "hey" {
		t.Errorf("text: got %q, want %q", text.Text, "hey")
	}
}

func TestStopDrainsBufferedEvents(t *testing.T) {
	src := &fakeSource{}
	rec := New(src, fakeGate{granted: true})

	if err := rec.Start("drain-test"); err != nil {
		t.Fatal(err)
	}

	// A burst larger than one scheduler pass; every event must survive the
	// stop drain.
	now := time.Now()
	for i := 0; i < 10; i++ {
		base := now.Add(time.Duration(i*700) * time.Millisecond)
		src.send(model.RawEvent{Kind: model.RawMouseDown, Time: base, X: float64(i), Y: 0, Button: model.MouseLeft})
		src.send(model.RawEvent{Kind: model.RawMouseUp, Time: base.Add(30 * time.Millisecond), X: float64(i), Y: 0, Button: model.MouseLeft})
	}

	seq, err := rec.Stop()
	if err != nil {
		t.Fatal(err)
	}
	clicks := 0
	for _, a := range seq.Actions {
		if _, ok := a.(model.Click); ok {
			clicks++
		}
	}
	if clicks != 10 {
		t.Errorf("got %d clicks, want 10: %v", clicks, seq.Actions)
	}
}
