// Package classifier turns a raw stream of low-level pointer and keyboard
// events into a minimal, replayable sequence of discrete actions.
package classifier

import (
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/mj1618/autodoc-cli/internal/model"
)

const (
	// Pointer travel beyond this many units between down and up is a drag.
	dragThreshold = 10.0

	// A second click within this window and radius of the first collapses
	// into a double-click.
	doubleClickWindow = 300 * time.Millisecond
	doubleClickRadius = 5.0

	// Wheel deltas at or below this magnitude are sub-pixel jitter, not
	// actions.
	scrollNoiseFloor = 0.1

	// A gap between mouse events longer than this is recorded as an
	// explicit delay. Keyboard events do not contribute to the gap, so
	// normal typing cadence never produces spurious delays.
	idleGapThreshold = 500 * time.Millisecond

	// Printable keystrokes batch into one typeText action until input goes
	// quiet for this long.
	textDebounce = 500 * time.Millisecond
)

// Key codes that always flush pending text and emit their own keyPress,
// never merging into typed text.
var specialKeyCodes = map[uint16]bool{
	36:  true, // return
	48:  true, // tab
	51:  true, // delete
	53:  true, // escape
	76:  true, // enter (keypad)
	123: true, // left arrow
	124: true, // right arrow
	125: true, // down arrow
	126: true, // up arrow
}

// pointerDown tracks an in-flight button press.
type pointerDown struct {
	x, y   float64
	button model.MouseButton
	at     time.Time
}

// clickCandidate is a click held back for the double-click window before
// being emitted, so two rapid clicks collapse into one doubleClick.
type clickCandidate struct {
	x, y   float64
	button model.MouseButton
	at     time.Time
}

// Classifier is a pure state machine: all timing decisions use event
// timestamps, so it is deterministic under test. It is not safe for
// concurrent use; the recorder is its single caller.
type Classifier struct {
	lastMouse time.Time
	down      *pointerDown
	pending   *clickCandidate

	textBuf  strings.Builder
	textLast time.Time
}

// New returns an empty classifier.
func New() *Classifier {
	return &Classifier{}
}

// Process consumes one raw event and returns the actions it completes, in
// order. Most events return nothing; actions are emitted when a gesture
// resolves (pointer-up, debounce expiry, special key).
func (c *Classifier) Process(ev model.RawEvent) []model.Action {
	switch ev.Kind {
	case model.RawMouseDown:
		return c.mouseDown(ev)
	case model.RawMouseUp:
		return c.mouseUp(ev)
	case model.RawMouseDrag:
		c.lastMouse = ev.Time
		return nil
	case model.RawMouseWheel:
		return c.mouseWheel(ev)
	case model.RawKeyDown:
		return c.keyDown(ev)
	default:
		return nil
	}
}

// FlushExpired emits any buffered gesture whose hold window has passed as of
// now. The recorder calls this on a short ticker so held clicks and text
// runs are not delayed indefinitely by input silence.
func (c *Classifier) FlushExpired(now time.Time) []model.Action {
	var out []model.Action
	if c.pending != nil && now.Sub(c.pending.at) >= doubleClickWindow {
		out = append(out, c.flushClick()...)
	}
	if c.textBuf.Len() > 0 && now.Sub(c.textLast) >= textDebounce {
		out = append(out, c.flushText()...)
	}
	return out
}

// Flush emits everything still buffered, regardless of age. Called when
// recording stops.
func (c *Classifier) Flush() []model.Action {
	out := c.flushClick()
	out = append(out, c.flushText()...)
	return out
}

func (c *Classifier) mouseDown(ev model.RawEvent) []model.Action {
	// Older buffered gestures flush before the gap delay so emitted order
	// matches the order things actually happened.
	var out []model.Action
	if c.pending != nil && ev.Time.Sub(c.pending.at) >= doubleClickWindow {
		out = append(out, c.flushClick()...)
	}
	out = append(out, c.flushText()...)
	out = append(out, c.idleGap(ev.Time)...)
	c.down = &pointerDown{x: ev.X, y: ev.Y, button: ev.Button, at: ev.Time}
	c.lastMouse = ev.Time
	return out
}

func (c *Classifier) mouseUp(ev model.RawEvent) []model.Action {
	c.lastMouse = ev.Time
	down := c.down
	c.down = nil
	if down == nil {
		return nil
	}

	if dist(down.x, down.y, ev.X, ev.Y) > dragThreshold {
		out := c.flushClick()
		return append(out, model.Drag{FromX: down.x, FromY: down.y, ToX: ev.X, ToY: ev.Y})
	}

	// Click candidate. If it completes a double-click, emit that and reset
	// so a third rapid click starts a fresh click, not another double.
	if p := c.pending; p != nil &&
		p.button == ev.Button &&
		ev.Time.Sub(p.at) < doubleClickWindow &&
		dist(p.x, p.y, ev.X, ev.Y) < doubleClickRadius {
		c.pending = nil
		return []model.Action{model.DoubleClick{X: p.x, Y: p.y, Button: p.button}}
	}

	out := c.flushClick()
	c.pending = &clickCandidate{x: ev.X, y: ev.Y, button: ev.Button, at: ev.Time}
	return out
}

func (c *Classifier) mouseWheel(ev model.RawEvent) []model.Action {
	if math.Abs(ev.DeltaX) <= scrollNoiseFloor && math.Abs(ev.DeltaY) <= scrollNoiseFloor {
		// Jitter: not an action, and not a gap reset either.
		return nil
	}
	out := c.flushClick()
	out = append(out, c.flushText()...)
	out = append(out, c.idleGap(ev.Time)...)
	c.lastMouse = ev.Time
	return append(out, model.Scroll{X: ev.X, Y: ev.Y, DeltaX: ev.DeltaX, DeltaY: ev.DeltaY})
}

func (c *Classifier) keyDown(ev model.RawEvent) []model.Action {
	out := c.flushClick()

	if ev.Modifiers.HasCommandLike() || specialKeyCodes[ev.KeyCode] {
		out = append(out, c.flushText()...)
		return append(out, c.makeKeyPress(ev))
	}

	if ev.Char != 0 && (unicode.IsPrint(ev.Char) || ev.Char == ' ') {
		// Shift alone is fine: the char already reflects it.
		if c.textBuf.Len() > 0 && ev.Time.Sub(c.textLast) >= textDebounce {
			out = append(out, c.flushText()...)
		}
		c.textBuf.WriteRune(ev.Char)
		c.textLast = ev.Time
		return out
	}

	out = append(out, c.flushText()...)
	return append(out, c.makeKeyPress(ev))
}

// idleGap emits a delay action when the pause since the last mouse event
// exceeds the threshold.
func (c *Classifier) idleGap(now time.Time) []model.Action {
	if c.lastMouse.IsZero() {
		return nil
	}
	gap := now.Sub(c.lastMouse)
	if gap <= idleGapThreshold {
		return nil
	}
	return []model.Action{model.Delay{Seconds: gap.Seconds()}}
}

func (c *Classifier) flushClick() []model.Action {
	p := c.pending
	if p == nil {
		return nil
	}
	c.pending = nil
	return []model.Action{model.Click{X: p.x, Y: p.y, Button: p.button}}
}

func (c *Classifier) flushText() []model.Action {
	if c.textBuf.Len() == 0 {
		return nil
	}
	text := c.textBuf.String()
	c.textBuf.Reset()
	return []model.Action{model.TypeText{Text: text}}
}

func (c *Classifier) makeKeyPress(ev model.RawEvent) model.Action {
	char := ""
	if ev.Char != 0 && unicode.IsPrint(ev.Char) {
		char = string(ev.Char)
	}
	return model.KeyPress{KeyCode: ev.KeyCode, Character: char, Modifiers: ev.Modifiers}
}

func dist(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}
