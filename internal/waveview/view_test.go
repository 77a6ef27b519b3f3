package waveview

import (
	"image"
	"image/color"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"

	"wavescope/internal/decode"
	"wavescope/internal/thumbnail"
)

type fakeSource struct {
	finished  bool
	bitmap    *image.RGBA
	listeners []thumbnail.Listener
	bg, wf    color.Color
}

func (f *fakeSource) HasFinishedLoading() bool        { return f.finished }
func (f *fakeSource) Bitmap() *image.RGBA             { return f.bitmap }
func (f *fakeSource) SetBackgroundColor(c color.Color) { f.bg = c }
func (f *fakeSource) SetWaveformColor(c color.Color)   { f.wf = c }
func (f *fakeSource) AddListener(l thumbnail.Listener) {
	f.listeners = append(f.listeners, l)
}
func (f *fakeSource) RemoveListener(l thumbnail.Listener) {
	for i, cur := range f.listeners {
		if cur == l {
			f.listeners = append(f.listeners[:i], f.listeners[i+1:]...)
			return
		}
	}
}

type fakeTransport struct {
	position float64
	length   float64
	reader   *decode.ReaderInfo
	seeks    []float64
}

func (f *fakeTransport) CurrentPosition() float64          { return f.position }
func (f *fakeTransport) LengthSeconds() float64            { return f.length }
func (f *fakeTransport) SetPosition(seconds float64)       { f.seeks = append(f.seeks, seconds) }
func (f *fakeTransport) CurrentReader() *decode.ReaderInfo { return f.reader }

func newTestView(t *testing.T, src *fakeSource, tr *fakeTransport) *WaveformPositionView {
	t.Helper()
	test.NewApp()
	v := New(src, tr)
	t.Cleanup(v.Close)
	test.WidgetRenderer(v)
	v.Resize(fyne.NewSize(800, 200))
	return v
}

func loadedTransport(length float64) *fakeTransport {
	return &fakeTransport{
		length: length,
		reader: &decode.ReaderInfo{SampleRate: 44100, Frames: int(length * 44100), LengthSeconds: length},
	}
}

func TestNewDefaults(t *testing.T) {
	src := &fakeSource{}
	v := newTestView(t, src, &fakeTransport{})

	if got := v.ZoomRatio(); got != 1.0 {
		t.Fatalf("default zoom %v, want 1.0", got)
	}
	if !v.CursorDisplayed() {
		t.Fatal("cursor hidden by default")
	}
	if v.PollerRunning() {
		t.Fatal("poller running before any file loads")
	}
	if len(src.listeners) != 1 {
		t.Fatalf("view registered %d listeners, want 1", len(src.listeners))
	}
}

func TestImageChangedWithoutReader(t *testing.T) {
	tr := &fakeTransport{}
	v := newTestView(t, &fakeSource{}, tr)

	v.ImageChanged()

	if v.PollerRunning() {
		t.Fatal("poller running with no reader loaded")
	}
	// the setter still works while degraded, it just cannot start the poller
	v.SetCursorDisplayed(true)
	if v.PollerRunning() {
		t.Fatal("poller started despite zero-length file")
	}
}

func TestImageChangedStartsPoller(t *testing.T) {
	tr := loadedTransport(100)
	v := newTestView(t, &fakeSource{}, tr)

	v.ImageChanged()
	if !v.PollerRunning() {
		t.Fatal("poller stopped after a valid file loaded")
	}

	v.SetCursorDisplayed(false)
	if v.PollerRunning() {
		t.Fatal("poller running with cursor hidden")
	}

	v.SetCursorDisplayed(true)
	if !v.PollerRunning() {
		t.Fatal("poller did not restart when cursor reappeared")
	}
}

func TestCloseStopsPollerAndUnregisters(t *testing.T) {
	src := &fakeSource{}
	tr := loadedTransport(10)
	v := newTestView(t, src, tr)
	v.ImageChanged()

	v.Close()
	if v.PollerRunning() {
		t.Fatal("poller running after Close")
	}
	if len(src.listeners) != 0 {
		t.Fatalf("%d listeners remain after Close, want 0", len(src.listeners))
	}
}

func TestMouseDownSeeks(t *testing.T) {
	tr := loadedTransport(100)
	v := newTestView(t, &fakeSource{}, tr)
	v.ImageChanged()

	v.MouseDown(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(400, 50)}})

	if len(tr.seeks) != 1 {
		t.Fatalf("press issued %d seeks, want 1", len(tr.seeks))
	}
	if got := tr.seeks[0]; got < 49.99 || got > 50.01 {
		t.Fatalf("press at centre sought to %v, want 50", got)
	}
}

func TestMouseDownIgnoredWhileCursorHidden(t *testing.T) {
	tr := loadedTransport(100)
	v := newTestView(t, &fakeSource{}, tr)
	v.ImageChanged()
	v.SetCursorDisplayed(false)

	v.MouseDown(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(400, 50)}})
	if len(tr.seeks) != 0 {
		t.Fatalf("hidden cursor still issued %d seeks", len(tr.seeks))
	}
}

func TestDraggedReusesPressScale(t *testing.T) {
	tr := loadedTransport(100)
	v := newTestView(t, &fakeSource{}, tr)
	v.ImageChanged()

	v.MouseDown(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(400, 50)}})
	// a zoom change mid-gesture must not affect the ongoing drag
	v.SetZoomRatio(4)
	v.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(200, 50)}})
	v.DragEnd()

	if len(tr.seeks) != 2 {
		t.Fatalf("gesture issued %d seeks, want 2", len(tr.seeks))
	}
	if got := tr.seeks[1]; got < 24.99 || got > 25.01 {
		t.Fatalf("drag sought to %v, want 25", got)
	}
}

func TestSetZoomRatioClamps(t *testing.T) {
	v := newTestView(t, &fakeSource{}, &fakeTransport{})

	v.SetZoomRatio(3)
	if got := v.ZoomRatio(); got != 3 {
		t.Fatalf("zoom %v, want 3", got)
	}
	v.SetZoomRatio(-1)
	if got := v.ZoomRatio(); got != 1 {
		t.Fatalf("invalid zoom left %v, want reset to 1", got)
	}
	v.SetZoomRatio(20000)
	if got := v.ZoomRatio(); got != 1 {
		t.Fatalf("oversized zoom left %v, want reset to 1", got)
	}
}

func TestColorSettersForwardToSource(t *testing.T) {
	src := &fakeSource{}
	v := newTestView(t, src, &fakeTransport{})

	bg := color.RGBA{0x10, 0x10, 0x10, 0xFF}
	wf := color.RGBA{0x2E, 0xC2, 0x7E, 0xFF}
	v.SetBackgroundColor(bg)
	v.SetWaveformColor(wf)

	if src.bg != bg {
		t.Fatalf("source background %v, want %v", src.bg, bg)
	}
	if src.wf != wf {
		t.Fatalf("source waveform colour %v, want %v", src.wf, wf)
	}
}

func TestCursorDuringGesture(t *testing.T) {
	tr := loadedTransport(100)
	v := newTestView(t, &fakeSource{}, tr)
	v.ImageChanged()

	if got := v.Cursor(); got != desktop.DefaultCursor {
		t.Fatalf("idle cursor %v, want default", got)
	}
	v.MouseDown(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(100, 10)}})
	if got := v.Cursor(); got != desktop.TextCursor {
		t.Fatalf("pressed cursor %v, want text", got)
	}
	v.MouseUp(nil)
	if got := v.Cursor(); got != desktop.DefaultCursor {
		t.Fatalf("released cursor %v, want default", got)
	}
}
