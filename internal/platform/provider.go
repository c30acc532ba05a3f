package platform

import (
	"fmt"
	"runtime"
)

// Provider bundles all platform backends for the current OS.
type Provider struct {
	Frames      FrameSource
	Inputter    Inputter
	Events      EventSource
	Permissions PermissionGate
}

// ErrUnsupported is returned on unsupported platforms.
var ErrUnsupported = fmt.Errorf("autodoc-cli is not supported on %s/%s", runtime.GOOS, runtime.GOARCH)

// NewProviderFunc is set by backend packages via init().
// See internal/platform/robot for the robotgo-backed registration.
var NewProviderFunc func() (*Provider, error)

// NewProvider returns a Provider for the current OS.
func NewProvider() (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc()
}
