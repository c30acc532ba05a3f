package robot

import (
	"context"
	"fmt"
	"image"

	"github.com/go-vgo/robotgo"

	"github.com/mj1618/autodoc-cli/internal/model"
)

// FrameSource captures screen frames through robotgo.
type FrameSource struct{}

// NewFrameSource returns a robotgo-backed frame source.
func NewFrameSource() *FrameSource { return &FrameSource{} }

// Capture grabs a frame of the requested region. Window regions capture the
// bounds of the process's frontmost window.
func (f *FrameSource) Capture(ctx context.Context, region model.Region) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		img image.Image
		err error
	)
	switch region.Kind {
	case model.RegionRect:
		img, err = robotgo.CaptureImg(region.X, region.Y, region.Width, region.Height)
	case model.RegionWindow:
		x, y, w, h := robotgo.GetBounds(region.PID)
		if w == 0 || h == 0 {
			return nil, fmt.Errorf("%w: no window bounds for pid %d", model.ErrCaptureFailed, region.PID)
		}
		img, err = robotgo.CaptureImg(x, y, w, h)
	default:
		img, err = robotgo.CaptureImg()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrCaptureFailed, err)
	}
	return img, nil
}

func robotCursor() (float64, float64) {
	x, y := robotgo.Location()
	return float64(x), float64(y)
}
