// Package analysis fans frame analysis out to an external vision provider
// with bounded concurrency, preserving frame order in the results.
package analysis

import (
	"context"
	"image"
)

// Provider converts an image plus a prompt into analysis text. Calls may run
// concurrently; implementations must be safe for concurrent use.
type Provider interface {
	Analyze(ctx context.Context, img image.Image, prompt string) (string, error)
}

// DefaultPrompt is the documentation prompt used when none is configured.
const DefaultPrompt = `Analyze this UI screenshot and generate markdown documentation.

Describe:
1. What UI elements are visible (buttons, menus, text fields, etc.)
2. The current state of the interface
3. Any text content visible
4. The layout and organization

Format your response as clean markdown suitable for documentation.`
