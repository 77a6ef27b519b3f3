package thumbnail

import (
	"image"
	"image/color"
	"image/draw"
)

// columnExtent finds the min/max sample values covered by one pixel column.
// Samples are mono, in [-1, 1].
func columnExtent(samples []float64, col, width int) (lo, hi float64) {
	framesPerCol := len(samples) / width
	if framesPerCol < 1 {
		framesPerCol = 1
	}
	from := col * framesPerCol
	to := from + framesPerCol
	if from >= len(samples) {
		return 0, 0
	}
	if to > len(samples) {
		to = len(samples)
	}
	lo, hi = samples[from], samples[from]
	for _, s := range samples[from:to] {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	return lo, hi
}

// renderColumns draws the waveform columns [from, to) into dst. dst must
// already be filled with the background colour.
func renderColumns(dst *image.RGBA, samples []float64, from, to int, wf color.Color) {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 || len(samples) == 0 {
		return
	}
	centre := float64(h) / 2
	for x := from; x < to && x < w; x++ {
		lo, hi := columnExtent(samples, x, w)
		yTop := int(centre - hi*centre)
		yBot := int(centre - lo*centre)
		if yTop < 0 {
			yTop = 0
		}
		if yBot > h-1 {
			yBot = h - 1
		}
		for y := yTop; y <= yBot; y++ {
			dst.Set(x, y, wf)
		}
	}
}

// RenderWaveform rasterizes a complete min/max waveform for the given mono
// samples. Zero dimensions are substituted with 1.
func RenderWaveform(samples []float64, width, height int, bg, wf color.Color) *image.RGBA {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	renderColumns(img, samples, 0, width, wf)
	return img
}
