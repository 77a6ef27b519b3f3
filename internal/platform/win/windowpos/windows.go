//go:build windows

// Package windowpos persists and restores native window placement on
// Windows, where fyne does not expose screen coordinates directly.
package windowpos

import (
	"sync"
	"syscall"
	"unsafe"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver"
)

var (
	user32            = syscall.NewLazyDLL("user32.dll")
	procGetWindowRect = user32.NewProc("GetWindowRect")
	procSetWindowPos  = user32.NewProc("SetWindowPos")
)

type winRect struct {
	Left   int32
	Top    int32
	Right  int32
	Bottom int32
}

const (
	swpNOSIZE     = 0x0001
	swpNOZORDER   = 0x0004
	swpNOACTIVATE = 0x0010
)

// Placement is a native top-left window coordinate pair.
type Placement struct {
	X, Y int
}

// Capture reads the current native placement of w. The bool reports whether
// a coordinate could be retrieved.
func Capture(w fyne.Window) (Placement, bool) {
	var p Placement
	ok := withHWND(w, func(hwnd uintptr) bool {
		var rect winRect
		ret, _, err := procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&rect)))
		if ret == 0 {
			if err != syscall.Errno(0) {
				fyne.LogError("GetWindowRect failed", err)
			}
			return false
		}
		p = Placement{X: int(rect.Left), Y: int(rect.Top)}
		return true
	})
	return p, ok
}

// Apply moves w to the placement without resizing or changing the Z-order.
func (p Placement) Apply(w fyne.Window) bool {
	return withHWND(w, func(hwnd uintptr) bool {
		ret, _, err := procSetWindowPos.Call(hwnd, 0, uintptr(int32(p.X)), uintptr(int32(p.Y)), 0, 0, swpNOSIZE|swpNOZORDER|swpNOACTIVATE)
		if ret == 0 {
			if err != syscall.Errno(0) {
				fyne.LogError("SetWindowPos failed", err)
			}
			return false
		}
		return true
	})
}

// withHWND resolves the HWND behind a fyne window, runs fn with it on the
// GUI thread, and waits for the result.
func withHWND(w fyne.Window, fn func(hwnd uintptr) bool) bool {
	nw, ok := w.(driver.NativeWindow)
	if !ok {
		return false
	}
	var (
		success bool
		wg      sync.WaitGroup
	)
	wg.Add(1)
	nw.RunNative(func(ctx any) {
		defer wg.Done()
		winCtx, ok := ctx.(driver.WindowsWindowContext)
		if !ok || winCtx.HWND == 0 {
			return
		}
		success = fn(winCtx.HWND)
	})
	wg.Wait()
	return success
}
