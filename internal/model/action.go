package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MouseButton represents a mouse button.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseCenter
)

// String returns the wire name of the button.
func (b MouseButton) String() string {
	switch b {
	case MouseRight:
		return "right"
	case MouseCenter:
		return "center"
	default:
		return "left"
	}
}

// ParseMouseButton converts a string to a MouseButton.
func ParseMouseButton(s string) (MouseButton, error) {
	switch strings.ToLower(s) {
	case "left":
		return MouseLeft, nil
	case "right":
		return MouseRight, nil
	case "center", "middle":
		return MouseCenter, nil
	default:
		return MouseLeft, fmt.Errorf("unknown mouse button: %q (expected left, right, or center)", s)
	}
}

// MarshalJSON encodes the button as its wire name.
func (b MouseButton) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON decodes a button wire name.
func (b *MouseButton) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseMouseButton(s)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// Modifiers is a bit-set of keyboard modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModControl
	ModOption
	ModCommand
	ModCapsLock
	ModFunction
)

// Has reports whether all bits in m are set.
func (mods Modifiers) Has(m Modifiers) bool { return mods&m == m }

// HasCommandLike reports whether any of command, control, or option is held.
// These chords are never merged into typed text.
func (mods Modifiers) HasCommandLike() bool {
	return mods&(ModCommand|ModControl|ModOption) != 0
}

// Names returns the wire names of the set modifiers, in a stable order.
func (mods Modifiers) Names() []string {
	var names []string
	for _, m := range []struct {
		bit  Modifiers
		name string
	}{
		{ModShift, "shift"},
		{ModControl, "control"},
		{ModOption, "option"},
		{ModCommand, "command"},
		{ModCapsLock, "capsLock"},
		{ModFunction, "function"},
	} {
		if mods.Has(m.bit) {
			names = append(names, m.name)
		}
	}
	return names
}

// ParseModifiers converts wire names back into a bit-set.
func ParseModifiers(names []string) (Modifiers, error) {
	var mods Modifiers
	for _, name := range names {
		switch name {
		case "shift":
			mods |= ModShift
		case "control":
			mods |= ModControl
		case "option", "alt":
			mods |= ModOption
		case "command", "cmd":
			mods |= ModCommand
		case "capsLock":
			mods |= ModCapsLock
		case "function", "fn":
			mods |= ModFunction
		default:
			return 0, fmt.Errorf("unknown modifier: %q", name)
		}
	}
	return mods, nil
}

// Action is one discrete, replayable unit of recorded user input.
// Coordinates are global screen coordinates with a top-left origin.
type Action interface {
	// Kind returns the wire discriminator for this action variant.
	Kind() string
}

// Click is a single mouse click at a screen position.
type Click struct {
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Button MouseButton `json:"button"`
}

// DoubleClick is two rapid clicks at (nearly) the same position.
type DoubleClick struct {
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Button MouseButton `json:"button"`
}

// Drag is a press-move-release gesture between two points.
type Drag struct {
	FromX float64 `json:"fromX"`
	FromY float64 `json:"fromY"`
	ToX   float64 `json:"toX"`
	ToY   float64 `json:"toY"`
}

// Scroll is a wheel event at a screen position.
type Scroll struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	DeltaX float64 `json:"deltaX"`
	DeltaY float64 `json:"deltaY"`
}

// KeyPress is a single key-down/up with modifiers.
type KeyPress struct {
	KeyCode   uint16    `json:"keyCode"`
	Character string    `json:"character,omitempty"`
	Modifiers Modifiers `json:"-"`
}

// TypeText is a batched run of printable characters.
type TypeText struct {
	Text string `json:"text"`
}

// Delay is an explicit pause, also used to encode observed idle gaps.
type Delay struct {
	Seconds float64 `json:"seconds"`
}

func (Click) Kind() string       { return "click" }
func (DoubleClick) Kind() string { return "doubleClick" }
func (Drag) Kind() string        { return "drag" }
func (Scroll) Kind() string      { return "scroll" }
func (KeyPress) Kind() string    { return "keyPress" }
func (TypeText) Kind() string    { return "typeText" }
func (Delay) Kind() string       { return "delay" }

// actionEnvelope is the on-disk shape of an Action: a flat object with a
// "type" discriminator plus only the fields relevant to that variant.
// The schema is stable independent of the in-memory representation.
type actionEnvelope struct {
	Type string `json:"type"`

	X      *float64     `json:"x,omitempty"`
	Y      *float64     `json:"y,omitempty"`
	Button *MouseButton `json:"button,omitempty"`

	FromX *float64 `json:"fromX,omitempty"`
	FromY *float64 `json:"fromY,omitempty"`
	ToX   *float64 `json:"toX,omitempty"`
	ToY   *float64 `json:"toY,omitempty"`

	DeltaX *float64 `json:"deltaX,omitempty"`
	DeltaY *float64 `json:"deltaY,omitempty"`

	KeyCode   *uint16  `json:"keyCode,omitempty"`
	Character string   `json:"character,omitempty"`
	Modifiers []string `json:"modifiers,omitempty"`

	Text *string `json:"text,omitempty"`

	Seconds *float64 `json:"seconds,omitempty"`
}

// MarshalAction encodes an Action into its discriminated envelope.
func MarshalAction(a Action) ([]byte, error) {
	env := actionEnvelope{Type: a.Kind()}
	switch v := a.(type) {
	case Click:
		env.X, env.Y, env.Button = &v.X, &v.Y, &v.Button
	case DoubleClick:
		env.X, env.Y, env.Button = &v.X, &v.Y, &v.Button
	case Drag:
		env.FromX, env.FromY, env.ToX, env.ToY = &v.FromX, &v.FromY, &v.ToX, &v.ToY
	case Scroll:
		env.X, env.Y, env.DeltaX, env.DeltaY = &v.X, &v.Y, &v.DeltaX, &v.DeltaY
	case KeyPress:
		env.KeyCode = &v.KeyCode
		env.Character = v.Character
		env.Modifiers = v.Modifiers.Names()
	case TypeText:
		env.Text = &v.Text
	case Delay:
		env.Seconds = &v.Seconds
	default:
		return nil, fmt.Errorf("unknown action type %T", a)
	}
	return json.Marshal(env)
}

// UnmarshalAction decodes a discriminated envelope into an Action.
func UnmarshalAction(data []byte) (Action, error) {
	var env actionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	f := func(p *float64) float64 {
		if p == nil {
			return 0
		}
		return *p
	}
	switch env.Type {
	case "click", "doubleClick":
		button := MouseLeft
		if env.Button != nil {
			button = *env.Button
		}
		if env.Type == "doubleClick" {
			return DoubleClick{X: f(env.X), Y: f(env.Y), Button: button}, nil
		}
		return Click{X: f(env.X), Y: f(env.Y), Button: button}, nil
	case "drag":
		return Drag{FromX: f(env.FromX), FromY: f(env.FromY), ToX: f(env.ToX), ToY: f(env.ToY)}, nil
	case "scroll":
		return Scroll{X: f(env.X), Y: f(env.Y), DeltaX: f(env.DeltaX), DeltaY: f(env.DeltaY)}, nil
	case "keyPress":
		var code uint16
		if env.KeyCode != nil {
			code = *env.KeyCode
		}
		mods, err := ParseModifiers(env.Modifiers)
		if err != nil {
			return nil, err
		}
		return KeyPress{KeyCode: code, Character: env.Character, Modifiers: mods}, nil
	case "typeText":
		var text string
		if env.Text != nil {
			text = *env.Text
		}
		return TypeText{Text: text}, nil
	case "delay":
		return Delay{Seconds: f(env.Seconds)}, nil
	default:
		return nil, fmt.Errorf("unknown action type: %q", env.Type)
	}
}

// Describe returns a short human-readable summary of an action.
func Describe(a Action) string {
	switch v := a.(type) {
	case Click:
		return fmt.Sprintf("click %s at (%.0f, %.0f)", v.Button, v.X, v.Y)
	case DoubleClick:
		return fmt.Sprintf("double-click %s at (%.0f, %.0f)", v.Button, v.X, v.Y)
	case Drag:
		return fmt.Sprintf("drag (%.0f, %.0f) -> (%.0f, %.0f)", v.FromX, v.FromY, v.ToX, v.ToY)
	case Scroll:
		return fmt.Sprintf("scroll (%.1f, %.1f) at (%.0f, %.0f)", v.DeltaX, v.DeltaY, v.X, v.Y)
	case KeyPress:
		if v.Character != "" {
			return fmt.Sprintf("key %q", v.Character)
		}
		return fmt.Sprintf("key code %d", v.KeyCode)
	case TypeText:
		return fmt.Sprintf("type %q", v.Text)
	case Delay:
		return fmt.Sprintf("wait %.1fs", v.Seconds)
	default:
		return "unknown"
	}
}
