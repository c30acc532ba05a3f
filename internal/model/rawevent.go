package model

import "time"

// RawEventKind identifies a low-level input event.
type RawEventKind int

const (
	RawMouseDown RawEventKind = iota
	RawMouseUp
	RawMouseDrag
	RawMouseWheel
	RawKeyDown
)

// RawEvent is a single low-level pointer or keyboard event as delivered by
// the platform event hook, before classification into Actions.
type RawEvent struct {
	Kind   RawEventKind
	Time   time.Time
	X, Y   float64
	Button MouseButton

	// Wheel deltas, in line units.
	DeltaX, DeltaY float64

	// Keyboard fields.
	KeyCode   uint16
	Char      rune
	Modifiers Modifiers
}
