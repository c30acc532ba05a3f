package robot

import (
	"sync"
	"time"

	hook "github.com/robotn/gohook"

	"github.com/mj1618/autodoc-cli/internal/model"
)

// gohook modifier masks, left and right variants.
const (
	maskShift   = 0x0001 | 0x0010
	maskControl = 0x0002 | 0x0020
	maskMeta    = 0x0004 | 0x0040
	maskAlt     = 0x0008 | 0x0080
)

// EventSource streams global input events from gohook.
type EventSource struct {
	mu      sync.Mutex
	out     chan model.RawEvent
	done    chan struct{}
	running bool
}

// NewEventSource returns an idle event source. Start installs the hook.
func NewEventSource() *EventSource { return &EventSource{} }

// Start installs the global hook and begins streaming events. The returned
// channel is closed when Stop is called.
func (s *EventSource) Start() (<-chan model.RawEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return s.out, nil
	}
	s.out = make(chan model.RawEvent, 256)
	s.done = make(chan struct{})
	s.running = true

	evChan := hook.Start()
	go s.pump(evChan, s.out, s.done)
	return s.out, nil
}

// Stop uninstalls the hook and closes the event channel.
func (s *EventSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	hook.End()
	close(s.done)
}

func (s *EventSource) pump(in chan hook.Event, out chan model.RawEvent, done chan struct{}) {
	defer close(out)
	for {
		select {
		case <-done:
			return
		case ev, ok := <-in:
			if !ok {
				return
			}
			raw, ok := translate(ev)
			if !ok {
				continue
			}
			select {
			case out <- raw:
			case <-done:
				return
			}
		}
	}
}

func translate(ev hook.Event) (model.RawEvent, bool) {
	raw := model.RawEvent{
		Time:      time.Now(),
		X:         float64(ev.X),
		Y:         float64(ev.Y),
		Modifiers: translateMask(ev.Mask),
	}
	switch ev.Kind {
	case hook.MouseDown:
		raw.Kind = model.RawMouseDown
		raw.Button = translateButton(ev.Button)
	case hook.MouseUp:
		raw.Kind = model.RawMouseUp
		raw.Button = translateButton(ev.Button)
	case hook.MouseDrag:
		raw.Kind = model.RawMouseDrag
		raw.Button = translateButton(ev.Button)
	case hook.MouseWheel:
		raw.Kind = model.RawMouseWheel
		x, y := robotCursor()
		raw.X, raw.Y = x, y
		if ev.Direction == 4 {
			raw.DeltaX = float64(ev.Rotation)
		} else {
			raw.DeltaY = float64(ev.Rotation)
		}
	case hook.KeyDown, hook.KeyHold:
		raw.Kind = model.RawKeyDown
		raw.KeyCode = ev.Rawcode
		raw.Char = ev.Keychar
	default:
		return model.RawEvent{}, false
	}
	return raw, true
}

func translateButton(b uint16) model.MouseButton {
	switch b {
	case 2:
		return model.MouseRight
	case 3:
		return model.MouseCenter
	default:
		return model.MouseLeft
	}
}

func translateMask(mask uint16) model.Modifiers {
	var mods model.Modifiers
	if mask&maskShift != 0 {
		mods |= model.ModShift
	}
	if mask&maskControl != 0 {
		mods |= model.ModControl
	}
	if mask&maskAlt != 0 {
		mods |= model.ModOption
	}
	if mask&maskMeta != 0 {
		mods |= model.ModCommand
	}
	return mods
}
