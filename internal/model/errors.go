package model

import "errors"

// Failure taxonomy for recording, replay, and auto-capture runs. These are
// matched with errors.Is; wrap them with fmt.Errorf("...: %w", ...) to add
// context.
var (
	// ErrPermissionDenied means the OS input-observation or screen-capture
	// permission is missing. Fatal to the requesting operation, never
	// retried automatically.
	ErrPermissionDenied = errors.New("input observation permission denied")

	// ErrCaptureFailed means a frame could not be captured. Aborts the
	// current capturing phase.
	ErrCaptureFailed = errors.New("frame capture failed")

	// ErrAnalysisFailed means a single frame's analysis call failed. It is
	// isolated per item and never aborts the batch.
	ErrAnalysisFailed = errors.New("analysis failed")

	// ErrSaveFailed means writing the output artifacts failed. Terminal for
	// the run.
	ErrSaveFailed = errors.New("save failed")
)
