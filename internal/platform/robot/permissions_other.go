//go:build !darwin || !cgo

package robot

// PermissionGate is a pass-through on platforms without a distinct
// accessibility permission model.
type PermissionGate struct{}

// NewPermissionGate returns the pass-through gate.
func NewPermissionGate() *PermissionGate { return &PermissionGate{} }

// Granted always reports true.
func (g *PermissionGate) Granted() bool { return true }
