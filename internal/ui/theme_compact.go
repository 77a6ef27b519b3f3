package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// compactControlsTheme shrinks the sizes the parameter row depends on: the
// inline icon size (which also drives slider thumbs) and the inner padding,
// so the transport bar stays low and leaves room for the waveform.
type compactControlsTheme struct{ fyne.Theme }

func (t compactControlsTheme) Size(n fyne.ThemeSizeName) float32 {
	switch n {
	case theme.SizeNameInlineIcon:
		return t.Theme.Size(n) * 0.5
	case theme.SizeNameInnerPadding:
		return t.Theme.Size(n) * 0.75
	default:
		return t.Theme.Size(n)
	}
}

// UseCompactControlsTheme wraps the current app theme so transport controls
// render at reduced size.
func UseCompactControlsTheme() {
	app := fyne.CurrentApp()
	if app == nil {
		return
	}
	app.Settings().SetTheme(compactControlsTheme{Theme: app.Settings().Theme()})
}
