package ui

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// minTickSpacingPx keeps neighbouring labels from overlapping.
const minTickSpacingPx = 64.0

// tickSteps are the candidate label intervals in seconds, coarsest last.
var tickSteps = []float64{0.1, 0.5, 1, 2, 5, 10, 15, 30, 60, 120, 300, 600, 1800, 3600}

// TimeRuler draws a horizontal time axis whose tick positions follow the same
// zoom/offset mapping as the waveform above it. It rasterizes on layout and
// caches the image until the mapping or the size changes.
type TimeRuler struct {
	widget.BaseWidget

	mu            sync.Mutex
	lengthSeconds float64
	zoom          float64
	offset        float64
}

// NewTimeRuler creates an empty ruler; call SetMapping once a file is loaded.
func NewTimeRuler() *TimeRuler {
	t := &TimeRuler{zoom: 1}
	t.ExtendBaseWidget(t)
	return t
}

// SetMapping updates the ruler's view of the audio length and the horizontal
// zoom/offset, then re-renders.
func (t *TimeRuler) SetMapping(lengthSeconds, zoom, offset float64) {
	t.mu.Lock()
	t.lengthSeconds = lengthSeconds
	if zoom <= 0 {
		zoom = 1
	}
	t.zoom = zoom
	t.offset = offset
	t.mu.Unlock()
	t.Refresh()
}

func (t *TimeRuler) MinSize() fyne.Size {
	return fyne.NewSize(64, 18)
}

func (t *TimeRuler) CreateRenderer() fyne.WidgetRenderer {
	r := &timeRulerRenderer{
		t:   t,
		img: canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1))),
	}
	r.img.FillMode = canvas.ImageFillStretch
	return r
}

type timeRulerRenderer struct {
	t   *TimeRuler
	img *canvas.Image
}

func (r *timeRulerRenderer) Layout(sz fyne.Size) {
	w, h := int(sz.Width), int(sz.Height)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	r.t.mu.Lock()
	length, zoom, offset := r.t.lengthSeconds, r.t.zoom, r.t.offset
	r.t.mu.Unlock()

	r.img.Image = renderRuler(w, h, length, zoom, offset)
	r.img.Move(fyne.NewPos(0, 0))
	r.img.Resize(sz)
}

func (r *timeRulerRenderer) MinSize() fyne.Size { return r.t.MinSize() }

func (r *timeRulerRenderer) Refresh() {
	r.Layout(r.t.Size())
	canvas.Refresh(r.img)
}

func (r *timeRulerRenderer) Destroy() {}

func (r *timeRulerRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.img}
}

// renderRuler rasterizes the axis: a baseline, a tick per interval, and a
// timestamp label beside each tick.
func renderRuler(w, h int, lengthSeconds, zoom, offset float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	bg := color.NRGBA{0x18, 0x18, 0x18, 0xFF}
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	lineCol := color.NRGBA{0x60, 0x60, 0x60, 0xFF}
	for x := 0; x < w; x++ {
		img.Set(x, 0, lineCol)
	}
	if lengthSeconds <= 0 {
		return img
	}

	step := tickStep(w, lengthSeconds, zoom)
	face := pickRulerFace()
	if closer, ok := face.(interface{ Close() error }); ok {
		defer closer.Close()
	}
	d := &font.Drawer{
		Dst: img,
		Src: image.NewUniform(color.NRGBA{0xC0, 0xC0, 0xC0, 0xFF}),
	}
	d.Face = face

	for t := 0.0; t <= lengthSeconds; t += step {
		x := int(float64(w)*offset + (float64(w)*t/lengthSeconds)/zoom)
		if x < 0 || x >= w {
			continue
		}
		for y := 0; y < h/3; y++ {
			img.Set(x, y, lineCol)
		}
		d.Dot = fixed.P(x+3, h-4)
		d.DrawString(FormatTimestamp(t))
	}
	return img
}

// tickStep picks the smallest label interval whose on-screen spacing stays
// readable at the current zoom level.
func tickStep(viewportWidth int, lengthSeconds, zoom float64) float64 {
	if zoom <= 0 {
		zoom = 1
	}
	pixelsPerSecond := (float64(viewportWidth) / lengthSeconds) / zoom
	for _, s := range tickSteps {
		if s*pixelsPerSecond >= minTickSpacingPx {
			return s
		}
	}
	return tickSteps[len(tickSteps)-1]
}

// FormatTimestamp renders seconds as m:ss (or h:mm:ss past an hour).
func FormatTimestamp(seconds float64) string {
	total := int(seconds + 0.5)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// pickRulerFace loads the current theme font at a small size and falls back
// to a bitmap face when unavailable.
func pickRulerFace() font.Face {
	res := theme.TextFont()
	targetPt := 10.0 * currentScale()
	if targetPt < 6 {
		targetPt = 6
	}
	if res != nil {
		if data := res.Content(); len(data) > 0 {
			if ttf, err := opentype.Parse(data); err == nil {
				if face, err := opentype.NewFace(ttf, &opentype.FaceOptions{Size: targetPt, DPI: 96, Hinting: font.HintingFull}); err == nil {
					return face
				}
			}
		}
	}
	return basicfont.Face7x13
}
