// Package record owns a recording session: it consumes raw events from the
// platform hook on a single goroutine, classifies them, and appends the
// resulting actions to an ActionSequence.
package record

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mj1618/autodoc-cli/internal/classifier"
	"github.com/mj1618/autodoc-cli/internal/model"
	"github.com/mj1618/autodoc-cli/internal/platform"
)

// State is the recorder lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRecording
	StatePaused
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateRecording:
		return "recording"
	case StatePaused:
		return "paused"
	default:
		return "idle"
	}
}

// flushInterval drives the debounce check for held clicks and text runs.
const flushInterval = 100 * time.Millisecond

// Recorder classifies a live event stream into an ActionSequence. All
// sequence mutation happens on the consume goroutine; external callers only
// transition lifecycle state.
type Recorder struct {
	source platform.EventSource
	gate   platform.PermissionGate

	mu    sync.Mutex
	state State
	seq   *model.ActionSequence
	cls   *classifier.Classifier

	stop chan struct{}
	done chan struct{}
}

// New returns an idle recorder.
func New(source platform.EventSource, gate platform.PermissionGate) *Recorder {
	return &Recorder{source: source, gate: gate}
}

// State returns the current lifecycle state.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start begins a new recording. It fails fast with ErrPermissionDenied when
// input observation is not allowed, before any partial recording happens.
func (r *Recorder) Start(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateIdle {
		return fmt.Errorf("cannot start recording while %s", r.state)
	}
	if !r.gate.Granted() {
		return model.ErrPermissionDenied
	}

	events, err := r.source.Start()
	if err != nil {
		return fmt.Errorf("start event source: %w", err)
	}

	r.seq = &model.ActionSequence{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	r.cls = classifier.New()
	r.state = StateRecording
	r.spawnLocked(events, r.cls)
	return nil
}

// Pause stops event observation but preserves the classifier buffers, so a
// text run or pending click survives across the pause boundary.
func (r *Recorder) Pause() error {
	r.mu.Lock()
	if r.state != StateRecording {
		r.mu.Unlock()
		return fmt.Errorf("cannot pause while %s", r.state)
	}
	r.state = StatePaused
	stop, done := r.stop, r.done
	r.mu.Unlock()

	r.source.Stop()
	close(stop)
	<-done
	return nil
}

// Resume re-attaches event observation after a pause.
func (r *Recorder) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StatePaused {
		return fmt.Errorf("cannot resume while %s", r.state)
	}
	events, err := r.source.Start()
	if err != nil {
		return fmt.Errorf("restart event source: %w", err)
	}
	r.state = StateRecording
	r.spawnLocked(events, r.cls)
	return nil
}

// Stop ends the recording, flushes anything still buffered, and returns the
// finished sequence. The sequence is immutable from here on.
func (r *Recorder) Stop() (*model.ActionSequence, error) {
	r.mu.Lock()
	state := r.state
	stop, done := r.stop, r.done
	r.mu.Unlock()

	switch state {
	case StateIdle:
		return nil, fmt.Errorf("not recording")
	case StateRecording:
		r.source.Stop()
		close(stop)
		<-done
	case StatePaused:
		// Consume loop already stopped.
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq.Actions = append(r.seq.Actions, r.cls.Flush()...)
	seq := r.seq
	r.seq = nil
	r.cls = nil
	r.state = StateIdle
	return seq, nil
}

// spawnLocked starts the consume goroutine. Caller holds r.mu.
func (r *Recorder) spawnLocked(events <-chan model.RawEvent, cls *classifier.Classifier) {
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	go r.consume(events, cls, r.stop, r.done)
}

// consume is the single writer for the sequence under construction.
func (r *Recorder) consume(events <-chan model.RawEvent, cls *classifier.Classifier, stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.append(cls.Process(ev))
		case <-ticker.C:
			r.append(cls.FlushExpired(time.Now()))
		case <-stop:
			// Drain anything the hook delivered before it stopped.
			for {
				select {
				case ev, ok := <-events:
					if !ok {
						return
					}
					r.append(cls.Process(ev))
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) append(actions []model.Action) {
	if len(actions) == 0 {
		return
	}
	r.mu.Lock()
	r.seq.Actions = append(r.seq.Actions, actions...)
	r.mu.Unlock()
}
