package waveview

import (
	"math"
	"testing"
)

func TestPixelForPosition(t *testing.T) {
	tests := []struct {
		name     string
		position float64
		width    int
		offset   float64
		zoom     float64
		length   float64
		want     float64
	}{
		{name: "midpoint at unit zoom", position: 50, width: 800, offset: 0, zoom: 1, length: 100, want: 400},
		{name: "zoom halves the coordinate", position: 50, width: 800, offset: 0, zoom: 2, length: 100, want: 200},
		{name: "offset shifts the origin", position: 0, width: 800, offset: 0.25, zoom: 1, length: 100, want: 200},
		{name: "offset and zoom combine", position: 50, width: 800, offset: 0.25, zoom: 2, length: 100, want: 400},
		{name: "end of file at unit zoom", position: 100, width: 800, offset: 0, zoom: 1, length: 100, want: 800},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PixelForPosition(tt.position, tt.width, tt.offset, tt.zoom, 1/tt.length)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("want %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPositionForPixel(t *testing.T) {
	tests := []struct {
		name   string
		pixel  float64
		width  int
		offset float64
		zoom   float64
		length float64
		want   float64
	}{
		{name: "press at centre seeks to midpoint", pixel: 400, width: 800, offset: 0, zoom: 1, length: 100, want: 50},
		{name: "zoom doubles seconds per pixel", pixel: 400, width: 800, offset: 0, zoom: 2, length: 100, want: 100},
		{name: "offset subtracts before scaling", pixel: 400, width: 800, offset: 0.25, zoom: 1, length: 100, want: 25},
		{name: "left of content maps negative", pixel: 100, width: 800, offset: 0.25, zoom: 1, length: 100, want: -12.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PositionForPixel(tt.pixel, tt.width, tt.offset, tt.zoom, tt.length)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("want %v, got %v", tt.want, got)
			}
		})
	}
}

// The two mappings must be exact inverses over the visible range, for any
// combination of zoom and offset.
func TestPixelPositionRoundTrip(t *testing.T) {
	const width, length = 640, 237.5
	zooms := []float64{0.5, 1, 2, 7.25}
	offsets := []float64{0, 0.1, 0.5}
	for _, zoom := range zooms {
		for _, offset := range offsets {
			for px := 0.0; px <= width; px += 31.7 {
				pos := PositionForPixel(px, width, offset, zoom, length)
				back := PixelForPosition(pos, width, offset, zoom, 1/length)
				if math.Abs(back-px) > 1e-6 {
					t.Fatalf("zoom %v offset %v: pixel %v -> %v -> %v", zoom, offset, px, pos, back)
				}
			}
		}
	}
}

func TestSeekScale(t *testing.T) {
	if got := SeekScale(800, 1, 100); math.Abs(got-0.125) > 1e-9 {
		t.Fatalf("want 0.125, got %v", got)
	}
	if got := SeekScale(800, 2, 100); math.Abs(got-0.25) > 1e-9 {
		t.Fatalf("want 0.25, got %v", got)
	}
}

func TestVerticalPlacement(t *testing.T) {
	tests := []struct {
		name       string
		height     int
		zoom       float64
		wantY      float64
		wantHeight float64
	}{
		{name: "unit zoom fills viewport", height: 200, zoom: 1, wantY: 0, wantHeight: 200},
		{name: "double zoom overflows symmetrically", height: 200, zoom: 2, wantY: -100, wantHeight: 400},
		{name: "half zoom centres a band", height: 200, zoom: 0.5, wantY: 50, wantHeight: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y, h := VerticalPlacement(tt.height, tt.zoom)
			if math.Abs(y-tt.wantY) > 1e-9 || math.Abs(h-tt.wantHeight) > 1e-9 {
				t.Fatalf("want (%v, %v), got (%v, %v)", tt.wantY, tt.wantHeight, y, h)
			}
		})
	}
}

func TestClampZoomRatio(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
		want  float64
	}{
		{name: "zero resets", ratio: 0, want: 1},
		{name: "negative resets", ratio: -3, want: 1},
		{name: "above maximum resets", ratio: 10000.1, want: 1},
		{name: "maximum accepted", ratio: 10000, want: 10000},
		{name: "typical value accepted", ratio: 2.5, want: 2.5},
		{name: "small fraction accepted", ratio: 0.001, want: 0.001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clampZoomRatio(tt.ratio); got != tt.want {
				t.Fatalf("clampZoomRatio(%v) = %v, want %v", tt.ratio, got, tt.want)
			}
		})
	}
}
