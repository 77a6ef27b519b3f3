// Package waveview provides the positionable waveform widget: it renders a
// pre-generated waveform bitmap scaled to the viewport, overlays a playback
// cursor that follows the transport, and turns pointer presses and drags into
// seek requests.
package waveview

import (
	"github.com/rs/zerolog/log"
)

const (
	// maxZoomRatio is the largest accepted horizontal zoom factor.
	maxZoomRatio = 10000.0
	// defaultZoomRatio replaces out-of-range zoom values.
	defaultZoomRatio = 1.0
)

// PixelForPosition maps a playback position in seconds to a horizontal pixel
// coordinate inside the viewport. invFileLength is the cached reciprocal of
// the file length in seconds; callers must not invoke this with a zero-length
// file (invFileLength would be meaningless).
func PixelForPosition(positionSeconds float64, viewportWidth int, startOffsetRatio, zoomRatio, invFileLength float64) float64 {
	w := float64(viewportWidth)
	startPixel := w * startOffsetRatio
	return startPixel + (w*invFileLength*positionSeconds)/zoomRatio
}

// PositionForPixel is the inverse of PixelForPosition: it maps a pixel X
// coordinate back to a playback position in seconds. The result is not
// clamped here; the playback engine owns range validation.
func PositionForPixel(pixelX float64, viewportWidth int, startOffsetRatio, zoomRatio, fileLengthSeconds float64) float64 {
	w := float64(viewportWidth)
	scale := (fileLengthSeconds / w) * zoomRatio
	return scale * (pixelX - w*startOffsetRatio)
}

// SeekScale returns the seconds-per-pixel factor used when translating pointer
// coordinates into seek positions. It is cached over a press/drag gesture so
// every drag event reuses the factor computed at press time.
func SeekScale(viewportWidth int, zoomRatio, fileLengthSeconds float64) float64 {
	return (fileLengthSeconds / float64(viewportWidth)) * zoomRatio
}

// VerticalPlacement computes the Y origin and height of the rendered waveform
// for a viewport height and vertical zoom. Content taller than the viewport
// starts at a negative origin and is clipped by the canvas.
func VerticalPlacement(viewportHeight int, verticalZoomRatio float64) (startY, height float64) {
	h := float64(viewportHeight)
	height = verticalZoomRatio * h
	startY = h*0.5 - height*0.5
	return startY, height
}

// clampZoomRatio validates a requested zoom ratio, substituting the default
// when the value is outside (0, 10000].
func clampZoomRatio(ratio float64) float64 {
	if ratio <= 0 || ratio > maxZoomRatio {
		log.Warn().Float64("zoomRatio", ratio).Msg("zoom ratio out of range, resetting to 1.0")
		return defaultZoomRatio
	}
	return ratio
}
