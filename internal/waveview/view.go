package waveview

import (
	"image"
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"wavescope/internal/decode"
	"wavescope/internal/thumbnail"
	"wavescope/internal/ui"
)

// defaultSampleRate is assumed whenever the transport has no reader loaded.
const defaultSampleRate = 44100.0

// Source is the waveform bitmap collaborator: it produces the raster the view
// displays and notifies registered listeners as that raster changes.
type Source interface {
	HasFinishedLoading() bool
	Bitmap() *image.RGBA
	SetBackgroundColor(color.Color)
	SetWaveformColor(color.Color)
	AddListener(thumbnail.Listener)
	RemoveListener(thumbnail.Listener)
}

// Transport is the playback engine surface the view needs: the current
// position for the cursor, the length for geometry, seeks for pointer
// interaction, and the loaded reader's metadata.
type Transport interface {
	CurrentPosition() float64
	LengthSeconds() float64
	SetPosition(seconds float64)
	CurrentReader() *decode.ReaderInfo
}

// playbackSnapshot caches the loaded file's metadata, including the
// reciprocal length so the poller multiplies instead of dividing each tick.
// A zero fileLength means no valid cursor position exists.
type playbackSnapshot struct {
	sampleRate    float64
	fileLength    float64
	invFileLength float64
}

// WaveformPositionView renders a generated waveform bitmap scaled and offset
// to its viewport, overlays a playback cursor polled from the transport, and
// translates pointer presses and drags into seek requests.
type WaveformPositionView struct {
	widget.BaseWidget

	source    Source
	transport Transport

	mu           sync.Mutex
	zoom         float64
	startOffset  float64
	verticalZoom float64
	showCursor   bool
	background   color.Color
	waveformCol  color.Color
	viewportW    int
	viewportH    int
	snap         playbackSnapshot
	cache        bitmapCache
	pressed      bool
	seekScale    float64 // seconds per pixel, cached at press time

	poller   *Poller
	renderer *waveRenderer
}

var (
	_ fyne.Widget        = (*WaveformPositionView)(nil)
	_ fyne.Draggable     = (*WaveformPositionView)(nil)
	_ desktop.Mouseable  = (*WaveformPositionView)(nil)
	_ desktop.Cursorable = (*WaveformPositionView)(nil)
	_ thumbnail.Listener = (*WaveformPositionView)(nil)
)

// New creates a view bound to its waveform source and playback transport and
// registers for source change notifications.
func New(source Source, transport Transport) *WaveformPositionView {
	v := &WaveformPositionView{
		source:       source,
		transport:    transport,
		zoom:         1.0,
		startOffset:  0.0,
		verticalZoom: 1.0,
		showCursor:   true,
		background:   color.Black,
		waveformCol:  color.RGBA{0x2E, 0xC2, 0x7E, 0xFF},
		snap:         playbackSnapshot{sampleRate: defaultSampleRate},
	}
	v.poller = NewPoller(v.pollPosition, v.pixelForPosition, v.viewportHeight, v.requestCursorRepaint)
	v.ExtendBaseWidget(v)
	source.AddListener(v)
	return v
}

// SetZoomRatio applies a new horizontal zoom. Values outside (0, 10000] are
// replaced with 1.0; the setter always succeeds.
func (v *WaveformPositionView) SetZoomRatio(ratio float64) {
	ratio = clampZoomRatio(ratio)
	v.mu.Lock()
	v.zoom = ratio
	v.mu.Unlock()
	v.Refresh()
}

// ZoomRatio returns the current horizontal zoom.
func (v *WaveformPositionView) ZoomRatio() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.zoom
}

// SetStartOffsetRatio sets the fraction of the viewport width reserved before
// waveform content begins.
func (v *WaveformPositionView) SetStartOffsetRatio(ratio float64) {
	v.mu.Lock()
	v.startOffset = ratio
	v.mu.Unlock()
	v.Refresh()
}

// SetVerticalZoomRatio scales the rendered waveform height. Content taller
// than the viewport is clipped by the canvas.
func (v *WaveformPositionView) SetVerticalZoomRatio(ratio float64) {
	v.mu.Lock()
	v.verticalZoom = ratio
	v.mu.Unlock()
	v.Refresh()
}

// SetCursorDisplayed toggles the playback cursor and its position poller.
func (v *WaveformPositionView) SetCursorDisplayed(show bool) {
	v.mu.Lock()
	v.showCursor = show
	v.mu.Unlock()
	v.updatePollerState()
	v.Refresh()
}

// CursorDisplayed reports whether the playback cursor is shown.
func (v *WaveformPositionView) CursorDisplayed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.showCursor
}

// SetBackgroundColor updates the view background and forwards the colour to
// the waveform source.
func (v *WaveformPositionView) SetBackgroundColor(c color.Color) {
	v.mu.Lock()
	v.background = c
	v.mu.Unlock()
	v.source.SetBackgroundColor(c)
	v.Refresh()
}

// SetWaveformColor forwards the waveform colour to the source.
func (v *WaveformPositionView) SetWaveformColor(c color.Color) {
	v.mu.Lock()
	v.waveformCol = c
	v.mu.Unlock()
	v.source.SetWaveformColor(c)
	v.Refresh()
}

// PollerRunning reports whether the cursor position poller is active.
func (v *WaveformPositionView) PollerRunning() bool {
	return v.poller.Running()
}

// Close stops the poller and unregisters from the source notification list so
// no notification can reach a partially torn-down view.
func (v *WaveformPositionView) Close() {
	v.poller.Stop()
	v.source.RemoveListener(v)
}

// ImageChanged handles a source identity change: the cached bitmap becomes
// stale, the playback metadata is refreshed from the transport, and the
// poller is started or stopped according to the new validity.
func (v *WaveformPositionView) ImageChanged() {
	v.mu.Lock()
	v.cache.invalidate()
	v.mu.Unlock()

	v.refreshSnapshot()
	v.updatePollerState()
	v.Refresh()
}

// ImageUpdated replaces the cached bitmap with the latest partial raster at
// its native resolution; rescaling waits until loading finishes.
func (v *WaveformPositionView) ImageUpdated() {
	bm := v.source.Bitmap()
	v.mu.Lock()
	v.cache.setNative(bm)
	v.mu.Unlock()
	v.Refresh()
}

// ImageFinished runs the same rebuild as a resize now that a full-quality
// rescale is possible.
func (v *WaveformPositionView) ImageFinished() {
	v.mu.Lock()
	w, h := v.viewportW, v.viewportH
	v.mu.Unlock()
	v.viewportResized(w, h)
	v.Refresh()
}

// MouseDown starts a seek gesture: the press coordinate is translated to a
// playback position and the seconds-per-pixel factor is cached for the
// following drag events. No-op while the cursor is hidden.
func (v *WaveformPositionView) MouseDown(ev *desktop.MouseEvent) {
	v.mu.Lock()
	if !v.showCursor {
		v.mu.Unlock()
		return
	}
	v.pressed = true
	v.seekScale = SeekScale(v.viewportW, v.zoom, v.snap.fileLength)
	pos := v.positionForPixelLocked(float64(ev.Position.X))
	v.mu.Unlock()

	v.transport.SetPosition(pos)
	v.Refresh()
}

// MouseUp ends the seek gesture and restores the default pointer.
func (v *WaveformPositionView) MouseUp(*desktop.MouseEvent) {
	v.mu.Lock()
	v.pressed = false
	v.mu.Unlock()
}

// Dragged reuses the scale factor cached at press time and issues a seek for
// every drag movement; the transport owns coalescing and clamping.
func (v *WaveformPositionView) Dragged(ev *fyne.DragEvent) {
	v.mu.Lock()
	if !v.showCursor {
		v.mu.Unlock()
		return
	}
	pos := v.positionForPixelLocked(float64(ev.Position.X))
	v.mu.Unlock()

	v.transport.SetPosition(pos)
}

// DragEnd ends the seek gesture.
func (v *WaveformPositionView) DragEnd() {
	v.mu.Lock()
	v.pressed = false
	v.mu.Unlock()
}

// Cursor shows a text-caret pointer while a seek gesture is active.
func (v *WaveformPositionView) Cursor() desktop.Cursor {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.showCursor && v.pressed {
		return desktop.TextCursor
	}
	return desktop.DefaultCursor
}

// CreateRenderer builds the canvas objects backing the view.
func (v *WaveformPositionView) CreateRenderer() fyne.WidgetRenderer {
	r := &waveRenderer{
		v:      v,
		bg:     canvas.NewRectangle(color.Black),
		wave:   canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1))),
		cursor: canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1))),
	}
	r.wave.FillMode = canvas.ImageFillStretch
	r.wave.ScaleMode = canvas.ImageScaleFastest
	r.cursor.FillMode = canvas.ImageFillStretch
	r.objects = []fyne.CanvasObject{r.bg, r.wave, r.cursor}
	v.renderer = r
	return r
}

// positionForPixelLocked converts a pixel coordinate to seconds using the
// gesture's cached scale factor. Caller holds v.mu.
func (v *WaveformPositionView) positionForPixelLocked(pixelX float64) float64 {
	startPixel := float64(v.viewportW) * v.startOffset
	return v.seekScale * (pixelX - startPixel)
}

// viewportResized rebuilds the cursor glyph for the new height and, once the
// source finished loading, rescales the cached bitmap to the viewport.
func (v *WaveformPositionView) viewportResized(w, h int) {
	v.mu.Lock()
	v.viewportW = w
	v.viewportH = h
	v.cache.rebuildCursor(h)
	v.mu.Unlock()

	if v.source.HasFinishedLoading() {
		bm := v.source.Bitmap()
		v.mu.Lock()
		v.cache.setScaled(bm, w, h)
		v.mu.Unlock()
	}
}

// refreshSnapshot re-reads the playback metadata, falling back to the default
// sample rate and zero length when no reader is available. A zero length
// leaves the reciprocal at zero so the poller never divides by zero.
func (v *WaveformPositionView) refreshSnapshot() {
	reader := v.transport.CurrentReader()

	v.mu.Lock()
	defer v.mu.Unlock()
	if reader != nil && reader.SampleRate > 0 {
		v.snap.sampleRate = reader.SampleRate
		v.snap.fileLength = v.transport.LengthSeconds()
		if v.snap.fileLength > 0 {
			v.snap.invFileLength = 1 / v.snap.fileLength
		} else {
			v.snap.invFileLength = 0
		}
	} else {
		v.snap = playbackSnapshot{sampleRate: defaultSampleRate}
	}
}

// updatePollerState applies the poller state machine: running only while the
// cursor is shown and a non-empty file is loaded.
func (v *WaveformPositionView) updatePollerState() {
	v.mu.Lock()
	active := v.showCursor && v.snap.fileLength > 0
	v.mu.Unlock()
	if active {
		v.poller.Start()
	} else {
		v.poller.Stop()
	}
}

func (v *WaveformPositionView) pollPosition() float64 {
	return v.transport.CurrentPosition()
}

func (v *WaveformPositionView) pixelForPosition(pos float64) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return int(PixelForPosition(pos, v.viewportW, v.startOffset, v.zoom, v.snap.invFileLength))
}

func (v *WaveformPositionView) viewportHeight() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.viewportH
}

// requestCursorRepaint translates a dirty band request into repositioning the
// cursor canvas object on the UI loop. Only the cursor is refreshed; a full
// widget repaint is never requested for cursor movement alone. The dispatch
// is detached so the tick never blocks on the UI loop.
func (v *WaveformPositionView) requestCursorRepaint(Rect) {
	go ui.CallOnMain(func() {
		if r := v.renderer; r != nil {
			r.moveCursor()
		}
	})
}

// paintState is the per-frame snapshot the renderer works from.
type paintState struct {
	background   color.Color
	zoom         float64
	startOffset  float64
	verticalZoom float64
	showCursor   bool
	bitmap       *image.RGBA
	cursorGlyph  *image.RGBA
	cursorX      int
}

func (v *WaveformPositionView) paintSnapshot() paintState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return paintState{
		background:   v.background,
		zoom:         v.zoom,
		startOffset:  v.startOffset,
		verticalZoom: v.verticalZoom,
		showCursor:   v.showCursor,
		bitmap:       v.cache.bitmap,
		cursorGlyph:  v.cache.cursor,
		cursorX:      v.poller.CurrentX(),
	}
}

// waveRenderer lays the background, the scaled waveform image, and the cursor
// glyph out according to the view's zoom, offset, and vertical placement.
type waveRenderer struct {
	v       *WaveformPositionView
	bg      *canvas.Rectangle
	wave    *canvas.Image
	cursor  *canvas.Image
	objects []fyne.CanvasObject
}

func (r *waveRenderer) Layout(size fyne.Size) {
	w, h := int(size.Width), int(size.Height)
	r.v.mu.Lock()
	changed := w != r.v.viewportW || h != r.v.viewportH
	r.v.mu.Unlock()
	if changed {
		r.v.viewportResized(w, h)
	}

	st := r.v.paintSnapshot()

	r.bg.Move(fyne.NewPos(0, 0))
	r.bg.Resize(size)

	startPixel := size.Width * float32(st.startOffset)
	drawnWidth := size.Width / float32(st.zoom)
	startY, drawnHeight := VerticalPlacement(h, st.verticalZoom)
	r.wave.Move(fyne.NewPos(startPixel, float32(startY)))
	r.wave.Resize(fyne.NewSize(drawnWidth, float32(drawnHeight)))

	r.cursor.Move(fyne.NewPos(float32(st.cursorX-1), 0))
	r.cursor.Resize(fyne.NewSize(cursorGlyphWidth, size.Height))
}

func (r *waveRenderer) MinSize() fyne.Size {
	return fyne.NewSize(64, 32)
}

func (r *waveRenderer) Refresh() {
	st := r.v.paintSnapshot()

	r.bg.FillColor = st.background
	if st.bitmap != nil {
		r.wave.Image = st.bitmap
		r.wave.Hidden = false
	} else {
		r.wave.Hidden = true
	}
	if st.cursorGlyph != nil {
		r.cursor.Image = st.cursorGlyph
	}
	r.cursor.Hidden = !st.showCursor || st.cursorGlyph == nil

	r.Layout(r.v.Size())
	canvas.Refresh(r.bg)
	if !r.wave.Hidden {
		canvas.Refresh(r.wave)
	}
	if !r.cursor.Hidden {
		canvas.Refresh(r.cursor)
	}
}

// moveCursor repositions only the cursor object; invoked from the poller's
// repaint requests.
func (r *waveRenderer) moveCursor() {
	st := r.v.paintSnapshot()
	if !st.showCursor {
		return
	}
	r.cursor.Move(fyne.NewPos(float32(st.cursorX-1), 0))
	canvas.Refresh(r.cursor)
}

func (r *waveRenderer) Objects() []fyne.CanvasObject { return r.objects }

// Destroy tears the view down: the poller halts and the view unregisters
// from the source notification list.
func (r *waveRenderer) Destroy() {
	r.v.Close()
}
