package waveview

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// cursorGlyphWidth is the pixel width of the pre-rendered playback cursor.
const cursorGlyphWidth = 3

// bitmapCache owns the viewport-sized copy of the source waveform bitmap and
// the pre-rendered cursor glyph. The cached bitmap may be nil before the
// source has produced anything; paint falls back to the background then.
type bitmapCache struct {
	bitmap *image.RGBA // scaled (or native, while loading) waveform copy
	cursor *image.RGBA // cursorGlyphWidth x viewport-height vertical line
}

// invalidate drops the cached waveform bitmap. The cursor glyph survives; it
// only depends on the viewport height.
func (c *bitmapCache) invalidate() {
	c.bitmap = nil
}

// valid reports whether a waveform bitmap is available for painting.
func (c *bitmapCache) valid() bool {
	return c.bitmap != nil
}

// rebuildCursor renders the cursor glyph for a new viewport height: a white
// centre line on black, clamped to a minimum height of 1.
func (c *bitmapCache) rebuildCursor(viewportHeight int) {
	h := viewportHeight
	if h < 1 {
		h = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, cursorGlyphWidth, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	white := color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	for y := 0; y < h; y++ {
		img.SetRGBA(1, y, white)
	}
	c.cursor = img
}

// setScaled stores an independent copy of src rescaled to the viewport size.
// Zero viewport dimensions are substituted with 1 so the scaler never sees a
// degenerate rectangle.
func (c *bitmapCache) setScaled(src image.Image, viewportWidth, viewportHeight int) {
	if src == nil {
		c.bitmap = nil
		return
	}
	w, h := viewportWidth, viewportHeight
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	c.bitmap = dst
}

// setNative stores an independent copy of src at its native resolution. Used
// while the source is still being generated incrementally, when rescaling
// every partial update would be wasted work.
func (c *bitmapCache) setNative(src image.Image) {
	if src == nil {
		c.bitmap = nil
		return
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	c.bitmap = dst
}
