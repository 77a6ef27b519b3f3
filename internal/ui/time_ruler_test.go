package ui

import "testing"

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{name: "zero", seconds: 0, want: "0:00"},
		{name: "sub-minute", seconds: 42, want: "0:42"},
		{name: "rounds half up", seconds: 59.6, want: "1:00"},
		{name: "minutes", seconds: 185, want: "3:05"},
		{name: "exactly one hour", seconds: 3600, want: "1:00:00"},
		{name: "hours with remainder", seconds: 3725, want: "1:02:05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTimestamp(tt.seconds); got != tt.want {
				t.Fatalf("FormatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestTickStep(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		length float64
		zoom   float64
		want   float64
	}{
		// 800px / 100s = 8 px/s; 10s ticks give 80px spacing
		{name: "unit zoom medium file", width: 800, length: 100, zoom: 1, want: 10},
		// zooming out to 2 halves the pixel density, forcing wider ticks
		{name: "zoomed out", width: 800, length: 100, zoom: 2, want: 30},
		// dense pixels allow sub-second ticks
		{name: "short file", width: 800, length: 1, zoom: 1, want: 0.1},
		// extremely long file exhausts the table and takes the last step
		{name: "very long file", width: 200, length: 100000, zoom: 1, want: 3600},
		{name: "non-positive zoom treated as unit", width: 800, length: 100, zoom: 0, want: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tickStep(tt.width, tt.length, tt.zoom); got != tt.want {
				t.Fatalf("tickStep(%d, %v, %v) = %v, want %v", tt.width, tt.length, tt.zoom, got, tt.want)
			}
		})
	}
}
