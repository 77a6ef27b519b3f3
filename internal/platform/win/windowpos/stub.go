//go:build !windows

// Package windowpos compiles to no-ops on platforms other than Windows.
package windowpos

import "fyne.io/fyne/v2"

// Placement is a native top-left window coordinate pair.
type Placement struct {
	X, Y int
}

// Capture always reports failure off Windows.
func Capture(fyne.Window) (Placement, bool) {
	return Placement{}, false
}

// Apply is a no-op off Windows.
func (Placement) Apply(fyne.Window) bool {
	return false
}
