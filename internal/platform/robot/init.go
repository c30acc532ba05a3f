package robot

import "github.com/mj1618/autodoc-cli/internal/platform"

func init() {
	platform.NewProviderFunc = func() (*platform.Provider, error) {
		return &platform.Provider{
			Frames:      NewFrameSource(),
			Inputter:    NewInputter(),
			Events:      NewEventSource(),
			Permissions: NewPermissionGate(),
		}, nil
	}
}
