package platform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mj1618/autodoc-cli/internal/model"
)

// ParseBBox parses a "x,y,w,h" string into a rectangular capture region.
func ParseBBox(s string) (model.Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return model.Region{}, fmt.Errorf("invalid bbox %q: expected x,y,w,h", s)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return model.Region{}, fmt.Errorf("invalid bbox %q: %w", s, err)
		}
		vals[i] = v
	}
	if vals[2] <= 0 || vals[3] <= 0 {
		return model.Region{}, fmt.Errorf("invalid bbox %q: width and height must be positive", s)
	}
	return model.Rect(vals[0], vals[1], vals[2], vals[3]), nil
}
