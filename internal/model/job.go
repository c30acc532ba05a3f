package model

import (
	"fmt"
	"time"
)

// RegionKind identifies what a capture targets.
type RegionKind int

const (
	RegionFullScreen RegionKind = iota
	RegionRect
	RegionWindow
)

// Region describes the screen area a FrameSource should capture.
type Region struct {
	Kind RegionKind

	// Rectangle bounds, used when Kind is RegionRect.
	X, Y, Width, Height int

	// Process ID of the target window, used when Kind is RegionWindow.
	PID int
}

// FullScreen returns a region covering the whole display.
func FullScreen() Region { return Region{Kind: RegionFullScreen} }

// Rect returns a rectangular region in screen coordinates.
func Rect(x, y, w, h int) Region {
	return Region{Kind: RegionRect, X: x, Y: y, Width: w, Height: h}
}

// Window returns a region targeting the frontmost window of a process.
func Window(pid int) Region { return Region{Kind: RegionWindow, PID: pid} }

// String describes the region for messages and logs.
func (r Region) String() string {
	switch r.Kind {
	case RegionRect:
		return fmt.Sprintf("rect(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
	case RegionWindow:
		return fmt.Sprintf("window(pid %d)", r.PID)
	default:
		return "fullscreen"
	}
}

// NextActionKind identifies the action performed between auto-captures.
type NextActionKind int

const (
	NextKeyPress NextActionKind = iota
	NextClick
)

// NextAction is the single input performed between captures in an
// auto-capture run, e.g. pressing the right arrow to advance a slide.
type NextAction struct {
	Kind NextActionKind

	// Key fields, used when Kind is NextKeyPress.
	KeyCode   uint16
	Modifiers Modifiers

	// Click fields, used when Kind is NextClick.
	X, Y   float64
	Button MouseButton
}

// CaptureJob is the ephemeral configuration for one auto-capture run.
// It is consumed once and never persisted as a sequence.
type CaptureJob struct {
	Target       Region
	Next         NextAction
	CaptureCount int
	Interval     time.Duration
	OutputName   string
}

// Validate checks the job is runnable.
func (j CaptureJob) Validate() error {
	if j.CaptureCount < 1 {
		return fmt.Errorf("capture count must be at least 1, got %d", j.CaptureCount)
	}
	if j.Interval < 0 {
		return fmt.Errorf("capture interval must not be negative")
	}
	if j.OutputName == "" {
		return fmt.Errorf("output name is required")
	}
	return nil
}
