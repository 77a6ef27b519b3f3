// Package decode opens local audio files through the beep decoder family and
// exposes the sample-level access the waveform generator and the playback
// metadata snapshot need.
package decode

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
)

// ReaderInfo describes an opened audio source. It is the "current reader"
// surface the view's playback snapshot is refreshed from.
type ReaderInfo struct {
	SampleRate    float64
	Frames        int
	LengthSeconds float64
}

// Decode opens path and returns a seekable sample stream plus its format.
// The format is chosen by file extension; callers own closing the streamer.
func Decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("open audio file: %w", err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	default:
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("unsupported audio format %q", filepath.Ext(path))
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return streamer, format, nil
}

// Probe opens path just long enough to read its length and sample rate.
func Probe(path string) (*ReaderInfo, error) {
	streamer, format, err := Decode(path)
	if err != nil {
		return nil, err
	}
	defer streamer.Close()
	return infoFor(streamer.Len(), format), nil
}

// ReadMono drains the whole file into mono float64 samples (channels
// averaged), returning the reader description alongside.
func ReadMono(path string) ([]float64, *ReaderInfo, error) {
	streamer, format, err := Decode(path)
	if err != nil {
		return nil, nil, err
	}
	defer streamer.Close()

	total := streamer.Len()
	mono := make([]float64, 0, total)
	buf := make([][2]float64, 2048)
	for {
		n, ok := streamer.Stream(buf)
		for _, frame := range buf[:n] {
			mono = append(mono, monoMix(frame))
		}
		if !ok {
			break
		}
	}
	if err := streamer.Err(); err != nil {
		return nil, nil, fmt.Errorf("stream %s: %w", filepath.Base(path), err)
	}
	return mono, infoFor(total, format), nil
}

// monoMix folds one interleaved stereo frame down to a single sample.
func monoMix(frame [2]float64) float64 {
	return (frame[0] + frame[1]) / 2
}

func infoFor(frames int, format beep.Format) *ReaderInfo {
	rate := float64(format.SampleRate)
	info := &ReaderInfo{SampleRate: rate, Frames: frames}
	if rate > 0 {
		info.LengthSeconds = float64(frames) / rate
	}
	return info
}
