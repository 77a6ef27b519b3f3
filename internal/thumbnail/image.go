// Package thumbnail generates a waveform bitmap from decoded audio samples on
// a background goroutine and notifies listeners as the image evolves. Views
// consume the bitmap through read-only snapshots.
package thumbnail

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/rs/zerolog/log"

	"wavescope/internal/ui"
)

// Listener receives change notifications from an Image. ImageChanged fires
// when the source identity changes (new samples or cleared), ImageUpdated on
// every incremental content update while rendering, and ImageFinished once the
// bitmap reached its final state.
type Listener interface {
	ImageChanged()
	ImageUpdated()
	ImageFinished()
}

// updateBatchColumns is how many pixel columns are rendered between two
// ImageUpdated notifications.
const updateBatchColumns = 32

const (
	defaultRenderWidth  = 1024
	defaultRenderHeight = 256
)

// Image owns the waveform raster for one audio source. Rendering happens
// incrementally on a background goroutine; all exported methods are safe for
// concurrent use. A render superseded by a new source or colour change
// detects its own staleness through a generation counter and exits without
// publishing.
type Image struct {
	width, height int

	mu         sync.Mutex
	samples    []float64
	sampleRate float64
	img        *image.RGBA
	finished   bool
	listeners  []Listener
	background color.Color
	waveform   color.Color
	gen        uint64
}

// NewImage creates an Image rendering at the given resolution. Non-positive
// dimensions fall back to the defaults.
func NewImage(width, height int) *Image {
	if width < 1 {
		width = defaultRenderWidth
	}
	if height < 1 {
		height = defaultRenderHeight
	}
	return &Image{
		width:      width,
		height:     height,
		background: color.Black,
		waveform:   color.RGBA{0x2E, 0xC2, 0x7E, 0xFF},
	}
}

// AddListener registers l for change notifications.
func (t *Image) AddListener(l Listener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, l)
}

// RemoveListener unregisters l. Removing a listener that was never added is a
// no-op.
func (t *Image) RemoveListener(l Listener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, reg := range t.listeners {
		if reg == l {
			t.listeners = append(t.listeners[:i], t.listeners[i+1:]...)
			return
		}
	}
}

// SetSource replaces the audio samples backing the image and starts rendering
// from scratch. Listeners receive ImageChanged synchronously before the first
// render work happens.
func (t *Image) SetSource(samples []float64, sampleRate float64) {
	t.mu.Lock()
	t.gen++
	gen := t.gen
	t.samples = samples
	t.sampleRate = sampleRate
	t.img = nil
	t.finished = false
	t.mu.Unlock()

	t.notify(func(l Listener) { l.ImageChanged() })

	if len(samples) > 0 {
		t.startRender(gen)
	}
}

// ClearSource drops the samples and the rendered bitmap, notifying listeners
// that the source identity changed.
func (t *Image) ClearSource() {
	t.mu.Lock()
	t.gen++
	t.samples = nil
	t.sampleRate = 0
	t.img = nil
	t.finished = false
	t.mu.Unlock()

	t.notify(func(l Listener) { l.ImageChanged() })
}

// HasFinishedLoading reports whether the bitmap reached its final state.
func (t *Image) HasFinishedLoading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finished
}

// SampleRate returns the sample rate of the current source, or 0 when empty.
func (t *Image) SampleRate() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sampleRate
}

// Bitmap returns an independent snapshot of the current waveform raster, or
// nil when nothing has been rendered yet.
func (t *Image) Bitmap() *image.RGBA {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.img == nil {
		return nil
	}
	snap := image.NewRGBA(t.img.Bounds())
	draw.Draw(snap, snap.Bounds(), t.img, t.img.Bounds().Min, draw.Src)
	return snap
}

// SetBackgroundColor changes the raster background and re-renders when a
// source is present.
func (t *Image) SetBackgroundColor(c color.Color) {
	t.setColor(func() { t.background = c })
}

// SetWaveformColor changes the waveform colour and re-renders when a source
// is present.
func (t *Image) SetWaveformColor(c color.Color) {
	t.setColor(func() { t.waveform = c })
}

func (t *Image) setColor(apply func()) {
	t.mu.Lock()
	t.gen++
	gen := t.gen
	apply()
	hasSource := len(t.samples) > 0
	t.finished = false
	t.mu.Unlock()
	if hasSource {
		t.startRender(gen)
	}
}

// Close invalidates any in-flight render. The Image must not be reused after.
func (t *Image) Close() {
	t.mu.Lock()
	t.gen++
	t.mu.Unlock()
}

func (t *Image) startRender(gen uint64) {
	t.mu.Lock()
	samples := t.samples
	bg, wf := t.background, t.waveform
	t.mu.Unlock()
	go t.renderLoop(gen, samples, bg, wf)
}

// renderLoop rasterizes the waveform in column batches, publishing a snapshot
// and an ImageUpdated notification after each batch, then ImageFinished once
// the full width is covered.
func (t *Image) renderLoop(gen uint64, samples []float64, bg, wf color.Color) {
	work := image.NewRGBA(image.Rect(0, 0, t.width, t.height))
	draw.Draw(work, work.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	for x := 0; x < t.width; x += updateBatchColumns {
		end := x + updateBatchColumns
		if end > t.width {
			end = t.width
		}
		renderColumns(work, samples, x, end, wf)
		if !t.publish(gen, work, false) {
			return
		}
		t.notifyOnMain(func(l Listener) { l.ImageUpdated() })
	}

	if !t.publish(gen, work, true) {
		return
	}
	log.Debug().Int("width", t.width).Int("height", t.height).Msg("waveform render finished")
	t.notifyOnMain(func(l Listener) { l.ImageFinished() })
}

// publish stores an independent copy of work as the current bitmap. It
// reports false when this render has been superseded.
func (t *Image) publish(gen uint64, work *image.RGBA, finished bool) bool {
	snap := image.NewRGBA(work.Bounds())
	draw.Draw(snap, snap.Bounds(), work, image.Point{}, draw.Src)
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gen != gen {
		return false
	}
	t.img = snap
	t.finished = finished
	return true
}

// notify invokes fn for every registered listener on the calling goroutine.
func (t *Image) notify(fn func(Listener)) {
	t.mu.Lock()
	ls := make([]Listener, len(t.listeners))
	copy(ls, t.listeners)
	t.mu.Unlock()
	for _, l := range ls {
		fn(l)
	}
}

// notifyOnMain dispatches fn for every listener on the UI loop; used by the
// background renderer so listeners always run in event-loop context.
func (t *Image) notifyOnMain(fn func(Listener)) {
	t.mu.Lock()
	ls := make([]Listener, len(t.listeners))
	copy(ls, t.listeners)
	t.mu.Unlock()
	for _, l := range ls {
		l := l
		ui.CallOnMain(func() { fn(l) })
	}
}
