// Package waveapp wires the waveform view, player, and configuration layers
// together to present the WaveScope desktop application window.
package waveapp

import (
	"fmt"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog/log"

	"wavescope/internal/config"
	"wavescope/internal/decode"
	"wavescope/internal/platform/win/windowpos"
	playerpkg "wavescope/internal/player"
	"wavescope/internal/thumbnail"
	"wavescope/internal/ui"
	"wavescope/internal/waveview"
)

// positionLabelInterval is how often the elapsed/total time label refreshes.
const positionLabelInterval = 500 * time.Millisecond

// App owns the fyne application, main window, player, thumbnail, and the
// waveform view. It orchestrates user input, playback, and configuration
// persistence.
type App struct {
	fa     fyne.App
	w      fyne.Window
	player *playerpkg.Player
	thumb  *thumbnail.Image
	view   *waveview.WaveformPositionView
	ruler  *ui.TimeRuler
	config *config.Config

	openBtn *widget.Button
	playBtn *widget.Button
	stopBtn *widget.Button
	posLbl  *widget.Label

	volSlider    *ui.ParamSlider
	zoomSlider   *ui.ParamSlider
	vzoomSlider  *ui.ParamSlider
	offsetSlider *ui.ParamSlider
	cursorCheck  *widget.Check

	root fyne.CanvasObject

	startupFile string
	posDone     chan struct{}
}

// NewApp wires configuration, player, thumbnail, and fyne scaffolding into a
// ready-to-run App instance.
func NewApp() *App {
	cfg, err := config.Load()
	if err != nil {
		log.Warn().Err(err).Msg("config load failed, using defaults")
		cfg = &config.Config{
			Volume: config.DefaultVolume, ZoomRatio: 1, VerticalZoomRatio: 1,
			WindowW: config.DefaultWidth, WindowH: config.DefaultHeight,
			BackgroundColor: config.DefaultBackgroundColor,
			WaveformColor:   config.DefaultWaveformColor,
		}
	}

	fa := app.NewWithID(config.AppID)
	fa.Settings().SetTheme(theme.DarkTheme())
	ui.UseCompactControlsTheme()

	w := fa.NewWindow("WaveScope")
	w.SetMaster()
	w.Resize(fyne.NewSize(float32(cfg.WindowW), float32(cfg.WindowH)))

	p := playerpkg.New()
	thumb := thumbnail.NewImage(0, 0)

	view := waveview.New(thumb, p)
	view.SetBackgroundColor(cfg.BackgroundNRGBA())
	view.SetWaveformColor(cfg.WaveformNRGBA())
	view.SetZoomRatio(cfg.ZoomRatio)
	view.SetVerticalZoomRatio(cfg.VerticalZoomRatio)
	view.SetStartOffsetRatio(cfg.StartOffsetRatio)
	view.SetCursorDisplayed(!cfg.CursorHidden)

	a := &App{
		fa:     fa,
		w:      w,
		player: p,
		thumb:  thumb,
		view:   view,
		ruler:  ui.NewTimeRuler(),
		config: cfg,
	}

	a.buildUI()
	a.restoreWindowPlacement()
	a.startPositionTicker()

	w.SetCloseIntercept(func() {
		a.persistState()
		_ = cfg.Save()
		a.teardown()
		w.Close()
		fa.Quit()
	})

	w.Canvas().SetOnTypedKey(a.handleShortcutKey)

	return a
}

// OpenOnStart requests that path be loaded once VLC initialization completes,
// overriding the remembered last file.
func (a *App) OpenOnStart(path string) {
	a.startupFile = path
}

func (a *App) initialFile() string {
	if a.startupFile != "" {
		return a.startupFile
	}
	return a.config.LastFile
}

// Run shows the window and enters the fyne main loop. VLC is initialized on
// a background goroutine so the window appears immediately.
func (a *App) Run() {
	go func() {
		if err := a.player.Init(a.config.Volume, a.config.Muted); err != nil {
			ui.CallOnMain(func() {
				dialog.ShowError(fmt.Errorf("cannot initialize VLC: %w\n\nInstall VLC or place libvlc next to the executable together with its plugins directory.", err), a.w)
			})
			return
		}
		_ = a.player.SetVolume(a.config.Volume)
		if a.config.Muted {
			_ = a.player.SetMute(true)
		}
		if path := a.initialFile(); path != "" {
			ui.CallOnMain(func() { a.openFile(path) })
		}
	}()
	a.w.Show()
	a.fa.Run()
}

func (a *App) buildUI() {
	a.openBtn = widget.NewButtonWithIcon("Open", theme.FolderOpenIcon(), a.showOpenDialog)
	a.playBtn = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), a.togglePlay)
	a.stopBtn = widget.NewButtonWithIcon("", theme.MediaStopIcon(), a.stopPlayback)
	a.posLbl = widget.NewLabel("0:00 / 0:00")

	a.volSlider = ui.NewParamSlider(0, 100, 1)
	a.volSlider.Value = float64(a.config.Volume)
	a.volSlider.OnChanged = func(v float64) {
		a.config.Volume = int(v)
		_ = a.player.SetVolume(int(v))
	}

	a.zoomSlider = ui.NewParamSlider(0.25, 8, 0.25)
	a.zoomSlider.Value = a.config.ZoomRatio
	a.zoomSlider.OnChanged = func(v float64) {
		a.config.ZoomRatio = v
		a.view.SetZoomRatio(v)
		a.updateRuler()
	}

	a.vzoomSlider = ui.NewParamSlider(0.25, 4, 0.25)
	a.vzoomSlider.Value = a.config.VerticalZoomRatio
	a.vzoomSlider.OnChanged = func(v float64) {
		a.config.VerticalZoomRatio = v
		a.view.SetVerticalZoomRatio(v)
	}

	a.offsetSlider = ui.NewParamSlider(0, 0.9, 0.01)
	a.offsetSlider.Value = a.config.StartOffsetRatio
	a.offsetSlider.OnChanged = func(v float64) {
		a.config.StartOffsetRatio = v
		a.view.SetStartOffsetRatio(v)
		a.updateRuler()
	}

	a.cursorCheck = widget.NewCheck("Cursor", func(on bool) {
		a.config.CursorHidden = !on
		a.view.SetCursorDisplayed(on)
	})
	a.cursorCheck.SetChecked(!a.config.CursorHidden)

	transport := container.NewHBox(
		a.openBtn, a.playBtn, a.stopBtn, a.posLbl,
		widget.NewLabel("Vol"), a.volSlider,
		a.cursorCheck,
	)
	params := container.NewHBox(
		widget.NewLabel("Zoom"), a.zoomSlider,
		widget.NewLabel("Height"), a.vzoomSlider,
		widget.NewLabel("Offset"), a.offsetSlider,
	)
	bottom := container.NewVBox(a.ruler, params)

	a.root = container.NewBorder(transport, bottom, nil, nil, a.view)
	a.w.SetContent(a.root)
}

// showOpenDialog presents a native-style file picker filtered to the audio
// formats the decoder understands.
func (a *App) showOpenDialog() {
	fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		path := rc.URI().Path()
		_ = rc.Close()
		a.openFile(path)
	}, a.w)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".wav", ".mp3", ".flac"}))
	fd.Show()
}

// openFile loads path into the player and kicks off the background decode
// that feeds the waveform thumbnail.
func (a *App) openFile(path string) {
	if err := a.player.Load(path); err != nil {
		log.Error().Err(err).Str("file", path).Msg("load failed")
		dialog.ShowError(err, a.w)
		return
	}
	a.config.RememberFile(path)
	a.w.SetTitle("WaveScope — " + filepath.Base(path))
	a.updateRuler()

	go func() {
		samples, info, err := decode.ReadMono(path)
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("decode failed")
			ui.CallOnMain(func() { dialog.ShowError(err, a.w) })
			return
		}
		ui.CallOnMain(func() { a.thumb.SetSource(samples, info.SampleRate) })
	}()
}

func (a *App) togglePlay() {
	if a.player.CurrentReader() == nil {
		return
	}
	if a.player.IsPlaying() {
		if err := a.player.Pause(true); err == nil {
			a.playBtn.SetIcon(theme.MediaPlayIcon())
		}
		return
	}
	if err := a.player.Play(); err != nil {
		log.Error().Err(err).Msg("play failed")
		return
	}
	a.playBtn.SetIcon(theme.MediaPauseIcon())
}

func (a *App) stopPlayback() {
	a.player.Stop()
	a.playBtn.SetIcon(theme.MediaPlayIcon())
}

func (a *App) seekBy(delta float64) {
	if a.player.CurrentReader() == nil {
		return
	}
	a.player.SetPosition(a.player.CurrentPosition() + delta)
}

func (a *App) updateRuler() {
	a.ruler.SetMapping(a.player.LengthSeconds(), a.config.ZoomRatio, a.config.StartOffsetRatio)
}

// handleShortcutKey centralizes keyboard shortcuts regardless of which widget
// currently owns focus.
func (a *App) handleShortcutKey(ke *fyne.KeyEvent) {
	if ke == nil {
		return
	}
	switch ke.Name {
	case fyne.KeySpace:
		a.togglePlay()
	case fyne.KeyLeft:
		a.seekBy(-5)
	case fyne.KeyRight:
		a.seekBy(+5)
	case fyne.KeyUp:
		a.volSlider.SetValue(a.volSlider.Value + 10)
	case fyne.KeyDown:
		a.volSlider.SetValue(a.volSlider.Value - 10)
	}
}

// startPositionTicker refreshes the elapsed/total label on a slow cadence;
// the waveform cursor has its own, faster poll inside the view.
func (a *App) startPositionTicker() {
	done := make(chan struct{})
	a.posDone = done
	go func() {
		t := time.NewTicker(positionLabelInterval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				pos := a.player.CurrentPosition()
				length := a.player.LengthSeconds()
				text := ui.FormatTimestamp(pos) + " / " + ui.FormatTimestamp(length)
				ui.CallOnMain(func() { a.posLbl.SetText(text) })
			}
		}
	}()
}

// persistState copies the live window and view state back into the config
// before saving.
func (a *App) persistState() {
	sz := a.w.Canvas().Size()
	a.config.WindowW = int(sz.Width)
	a.config.WindowH = int(sz.Height)
	a.captureWindowPlacement()
}

func (a *App) teardown() {
	if a.posDone != nil {
		close(a.posDone)
		a.posDone = nil
	}
	a.view.Close()
	a.thumb.Close()
	a.player.Release()
}

// restoreWindowPlacement loads persisted window coordinates when supported.
func (a *App) restoreWindowPlacement() {
	if a == nil || a.w == nil || a.config == nil || !a.config.WindowPosValid {
		return
	}
	try := func() bool {
		return windowpos.Placement{X: a.config.WindowX, Y: a.config.WindowY}.Apply(a.w)
	}
	if try() {
		return
	}
	go func() {
		const attempts = 10
		for i := 0; i < attempts; i++ {
			time.Sleep(150 * time.Millisecond)
			if !a.config.WindowPosValid {
				return
			}
			if try() {
				return
			}
		}
	}()
}

// captureWindowPlacement stores native window coordinates so the next start
// can restore them.
func (a *App) captureWindowPlacement() {
	if a == nil || a.w == nil || a.config == nil {
		return
	}
	if p, ok := windowpos.Capture(a.w); ok {
		a.config.WindowX = p.X
		a.config.WindowY = p.Y
		a.config.WindowPosValid = true
	}
}
