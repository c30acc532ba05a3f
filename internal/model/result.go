package model

import (
	"image"
	"time"
)

// ProcessingStatus tracks one frame through the analysis pool.
type ProcessingStatus int

const (
	StatusPending ProcessingStatus = iota
	StatusProcessing
	StatusSuccess
	StatusFailed
)

// String returns the wire name of the status.
func (s ProcessingStatus) String() string {
	switch s {
	case StatusProcessing:
		return "processing"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

// ImageProcessingResult is the per-frame tracking record for one analysis
// run. Index is the stable originating order of the frame; results are
// always delivered sorted by Index regardless of completion order.
type ImageProcessingResult struct {
	Index  int
	Frame  image.Image
	Status ProcessingStatus
	Text   string
	Error  string
}

// PlaybackCapture is one frame captured during replay, tagged with its
// 1-based step number.
type PlaybackCapture struct {
	Step  int
	Frame image.Image
}

// PlaybackSession groups the captures produced during one replay run.
type PlaybackSession struct {
	SequenceID  string
	StartedAt   time.Time
	CompletedAt *time.Time
	Captures    []PlaybackCapture
}
