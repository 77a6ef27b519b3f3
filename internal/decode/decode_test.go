package decode

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// writeTestWAV creates a 16-bit PCM stereo WAV with the given number of
// frames of a constant sample value.
func writeTestWAV(t *testing.T, frames int, sampleRate uint32, value int16) string {
	t.Helper()

	const (
		channels      = 2
		bitsPerSample = 16
	)
	dataLen := frames * channels * bitsPerSample / 8

	buf := make([]byte, 0, 44+dataLen)
	put32 := func(v uint32) { buf = binary.LittleEndian.AppendUint32(buf, v) }
	put16 := func(v uint16) { buf = binary.LittleEndian.AppendUint16(buf, v) }

	buf = append(buf, "RIFF"...)
	put32(uint32(36 + dataLen))
	buf = append(buf, "WAVE"...)
	buf = append(buf, "fmt "...)
	put32(16)
	put16(1) // PCM
	put16(channels)
	put32(sampleRate)
	put32(sampleRate * channels * bitsPerSample / 8)
	put16(channels * bitsPerSample / 8)
	put16(bitsPerSample)
	buf = append(buf, "data"...)
	put32(uint32(dataLen))
	for i := 0; i < frames*channels; i++ {
		put16(uint16(value))
	}

	path := filepath.Join(t.TempDir(), "test.wav")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write test wav: %v", err)
	}
	return path
}

func TestProbe(t *testing.T) {
	path := writeTestWAV(t, 4410, 44100, 0)

	info, err := Probe(path)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if info.SampleRate != 44100 {
		t.Fatalf("sample rate %v, want 44100", info.SampleRate)
	}
	if info.Frames != 4410 {
		t.Fatalf("frames %d, want 4410", info.Frames)
	}
	if math.Abs(info.LengthSeconds-0.1) > 1e-9 {
		t.Fatalf("length %v, want 0.1s", info.LengthSeconds)
	}
}

func TestReadMono(t *testing.T) {
	// half-scale positive on both channels folds to half scale mono
	path := writeTestWAV(t, 1000, 48000, 16384)

	samples, info, err := ReadMono(path)
	if err != nil {
		t.Fatalf("ReadMono: %v", err)
	}
	if len(samples) != 1000 {
		t.Fatalf("got %d samples, want 1000", len(samples))
	}
	if info.SampleRate != 48000 {
		t.Fatalf("sample rate %v, want 48000", info.SampleRate)
	}
	for i, s := range samples {
		if math.Abs(s-0.5) > 0.01 {
			t.Fatalf("sample %d = %v, want ~0.5", i, s)
		}
	}
}

func TestDecodeUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.ogg")
	if err := os.WriteFile(path, []byte("not audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Decode(path); err == nil {
		t.Fatal("decoding an unsupported extension succeeded")
	}
}

func TestDecodeMissingFile(t *testing.T) {
	if _, _, err := Decode(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatal("decoding a missing file succeeded")
	}
}

func TestMonoMix(t *testing.T) {
	tests := []struct {
		name  string
		frame [2]float64
		want  float64
	}{
		{name: "equal channels", frame: [2]float64{0.5, 0.5}, want: 0.5},
		{name: "opposite channels cancel", frame: [2]float64{1, -1}, want: 0},
		{name: "single channel halves", frame: [2]float64{0.8, 0}, want: 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := monoMix(tt.frame); math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("monoMix(%v) = %v, want %v", tt.frame, got, tt.want)
			}
		})
	}
}
