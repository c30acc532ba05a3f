//go:build darwin && cgo

package robot

/*
#cgo LDFLAGS: -framework ApplicationServices
#include <ApplicationServices/ApplicationServices.h>

static int accessibilityTrusted() {
	return AXIsProcessTrusted() ? 1 : 0;
}
*/
import "C"

// PermissionGate reports whether the process holds the accessibility
// permission required for event taps and input synthesis.
type PermissionGate struct{}

// NewPermissionGate returns the macOS accessibility gate.
func NewPermissionGate() *PermissionGate { return &PermissionGate{} }

// Granted reports whether accessibility access has been granted. It never
// prompts; the caller surfaces instructions when this returns false.
func (g *PermissionGate) Granted() bool {
	return C.accessibilityTrusted() == 1
}
