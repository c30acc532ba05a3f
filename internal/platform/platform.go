package platform

import (
	"context"
	"image"

	"github.com/mj1618/autodoc-cli/internal/model"
)

// FrameSource captures screen frames on demand.
type FrameSource interface {
	// Capture returns an image of the given region. Failures wrap
	// model.ErrCaptureFailed.
	Capture(ctx context.Context, target model.Region) (image.Image, error)
}

// Inputter synthesizes low-level mouse and keyboard events. Implementations
// post real OS input; replay is strictly sequential because input devices
// are a single shared physical resource.
type Inputter interface {
	MoveMouse(x, y float64) error

	// ButtonDown/ButtonUp press and release a mouse button at a position.
	// clickCount tags multi-click events (1 for single, 2 for the second
	// click of a double-click).
	ButtonDown(x, y float64, button model.MouseButton, clickCount int) error
	ButtonUp(x, y float64, button model.MouseButton, clickCount int) error

	Scroll(x, y float64, deltaX, deltaY float64) error

	KeyDown(keyCode uint16, mods model.Modifiers) error
	KeyUp(keyCode uint16, mods model.Modifiers) error

	// TypeChar synthesizes one down/up pair carrying the character's code
	// point, independent of keyboard layout.
	TypeChar(ch rune) error
}

// EventSource observes global input events for recording. Events are
// delivered on the returned channel; the recorder is the only consumer.
type EventSource interface {
	// Start begins observation and returns the event channel. The channel
	// is closed by Stop.
	Start() (<-chan model.RawEvent, error)
	Stop()
}

// PermissionGate reports whether the OS allows input observation and
// synthesis. Both recording and replay check this up front and fail fast
// with model.ErrPermissionDenied rather than attempting partial operation.
type PermissionGate interface {
	Granted() bool
}
