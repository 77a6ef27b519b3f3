// Package player wraps libVLC playback of local audio files into a single
// serialised component. It owns position and seek handling for the waveform
// view and keeps the decoded reader metadata of the loaded file.
package player

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	vlc "github.com/adrg/libvlc-go/v3"
	"github.com/rs/zerolog/log"

	"wavescope/internal/decode"
)

// seekEpsilonSeconds is the smallest position delta a seek request must move
// before it is forwarded to libVLC. Rapid drag seeks below this threshold are
// coalesced into no-ops.
const seekEpsilonSeconds = 0.010

// Player is a thread-safe wrapper around libVLC that serialises every
// libVLC call and tracks the currently loaded file's reader metadata.
type Player struct {
	p     *vlc.Player
	media *vlc.Media

	volume    int
	muted     bool
	isPlaying bool
	path      string
	reader    *decode.ReaderInfo
	lastSeek  float64

	// single lock guarding all C/libVLC invocations
	vlcMu sync.Mutex

	// internal lock for Player fields (not for libVLC)
	mu sync.Mutex
}

// New constructs a Player with sane defaults but does not initialise libVLC.
// Call Init before attempting playback.
func New() *Player {
	return &Player{volume: 70, lastSeek: math.Inf(-1)}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Init configures libVLC (plugin path, audio-only arguments) and applies the
// initial volume/mute state. It must be called before Load/Play.
func (pl *Player) Init(volume int, muted bool) error {
	// let libVLC load plugins from a directory next to the executable
	if exe, err := os.Executable(); err == nil {
		plugins := filepath.Join(filepath.Dir(exe), "plugins")
		if st, err := os.Stat(plugins); err == nil && st.IsDir() {
			_ = os.Setenv("VLC_PLUGIN_PATH", plugins)
		}
	}

	args := []string{
		"--no-video",
		"--no-color",
	}
	if traceLogEnabled.Load() {
		args = append(args,
			"--verbose=2",
			"--file-logging",
			"--log-verbose=2",
			"--logfile=vlc.log",
		)
	}

	pl.vlcMu.Lock()
	err := vlc.Init(args...)
	pl.vlcMu.Unlock()
	if err != nil {
		return fmt.Errorf("libvlc init failed: %w", err)
	}

	pl.vlcMu.Lock()
	player, err := vlc.NewPlayer()
	pl.vlcMu.Unlock()
	if err != nil {
		pl.vlcMu.Lock()
		vlc.Release()
		pl.vlcMu.Unlock()
		return fmt.Errorf("new vlc player failed: %w", err)
	}
	pl.p = player

	pl.volume = clamp(volume, 0, 100)
	pl.vlcMu.Lock()
	_ = pl.p.SetVolume(pl.volume)
	if muted {
		_ = pl.p.ToggleMute()
		pl.muted = true
	}
	pl.vlcMu.Unlock()

	return nil
}

// Release frees VLC resources. The Player must not be used afterwards.
func (pl *Player) Release() {
	pl.vlcMu.Lock()
	if pl.p != nil {
		_ = pl.p.Stop()
		pl.p.Release()
		pl.p = nil
	}
	if pl.media != nil {
		pl.media.Release()
		pl.media = nil
	}
	vlc.Release()
	pl.vlcMu.Unlock()

	pl.mu.Lock()
	pl.isPlaying = false
	pl.reader = nil
	pl.mu.Unlock()
}

// Load prepares the given audio file for playback and probes its sample rate
// and length so CurrentReader/LengthSeconds answer immediately.
func (pl *Player) Load(path string) error {
	info, err := decode.Probe(path)
	if err != nil {
		return err
	}

	pl.vlcMu.Lock()
	if pl.p == nil {
		pl.vlcMu.Unlock()
		return fmt.Errorf("player not initialised")
	}
	if pl.media != nil {
		pl.media.Release()
		pl.media = nil
	}
	m, err := vlc.NewMediaFromPath(path)
	if err != nil {
		pl.vlcMu.Unlock()
		return fmt.Errorf("new media from path failed: %w", err)
	}
	if err := pl.p.SetMedia(m); err != nil {
		m.Release()
		pl.vlcMu.Unlock()
		return fmt.Errorf("set media failed: %w", err)
	}
	pl.media = m
	pl.vlcMu.Unlock()

	pl.mu.Lock()
	pl.path = path
	pl.reader = info
	pl.isPlaying = false
	pl.lastSeek = math.Inf(-1)
	pl.mu.Unlock()

	log.Info().Str("file", filepath.Base(path)).
		Float64("seconds", info.LengthSeconds).
		Float64("sampleRate", info.SampleRate).
		Msg("loaded audio file")
	return nil
}

// Unload stops playback and drops the loaded media and reader metadata.
func (pl *Player) Unload() {
	pl.vlcMu.Lock()
	if pl.p != nil {
		_ = pl.p.Stop()
	}
	if pl.media != nil {
		pl.media.Release()
		pl.media = nil
	}
	pl.vlcMu.Unlock()

	pl.mu.Lock()
	pl.path = ""
	pl.reader = nil
	pl.isPlaying = false
	pl.mu.Unlock()
}

// Play starts playback of the loaded media.
func (pl *Player) Play() error {
	pl.vlcMu.Lock()
	if pl.p == nil {
		pl.vlcMu.Unlock()
		return fmt.Errorf("player not initialised")
	}
	err := pl.p.Play()
	pl.vlcMu.Unlock()
	if err != nil {
		return fmt.Errorf("play failed: %w", err)
	}
	pl.mu.Lock()
	pl.isPlaying = true
	pl.mu.Unlock()
	return nil
}

// Pause suspends or resumes playback without moving the position.
func (pl *Player) Pause(paused bool) error {
	pl.vlcMu.Lock()
	if pl.p == nil {
		pl.vlcMu.Unlock()
		return fmt.Errorf("player not initialised")
	}
	err := pl.p.SetPause(paused)
	pl.vlcMu.Unlock()
	if err != nil {
		return fmt.Errorf("pause failed: %w", err)
	}
	pl.mu.Lock()
	pl.isPlaying = !paused
	pl.mu.Unlock()
	return nil
}

// Stop halts playback and rewinds to the start.
func (pl *Player) Stop() {
	pl.vlcMu.Lock()
	if pl.p != nil {
		_ = pl.p.Stop()
	}
	pl.vlcMu.Unlock()

	pl.mu.Lock()
	pl.isPlaying = false
	pl.mu.Unlock()
}

// IsPlaying reports whether libVLC currently plays audio.
func (pl *Player) IsPlaying() bool {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.isPlaying
}

// ToggleMute flips the mute state, returning the new muted flag and volume.
func (pl *Player) ToggleMute() (bool, int) {
	pl.vlcMu.Lock()
	if pl.p != nil {
		_ = pl.p.ToggleMute()
	}
	pl.vlcMu.Unlock()

	pl.mu.Lock()
	pl.muted = !pl.muted
	v := pl.volume
	pl.mu.Unlock()
	return pl.muted, v
}

// SetVolume clamps and applies an absolute volume level (0-100).
func (pl *Player) SetVolume(v int) error {
	v = clamp(v, 0, 100)
	pl.vlcMu.Lock()
	var err error
	if pl.p != nil {
		err = pl.p.SetVolume(v)
	}
	pl.vlcMu.Unlock()

	pl.mu.Lock()
	pl.volume = v
	pl.mu.Unlock()
	return err
}

// SetMute ensures libVLC reflects the requested mute state.
func (pl *Player) SetMute(m bool) error {
	pl.vlcMu.Lock()
	if pl.p != nil && m != pl.muted {
		_ = pl.p.ToggleMute()
	}
	pl.vlcMu.Unlock()

	pl.mu.Lock()
	pl.muted = m
	pl.mu.Unlock()
	return nil
}

// CurrentPosition returns the playback position in seconds, 0 when nothing
// is loaded or the engine cannot report a time yet.
func (pl *Player) CurrentPosition() float64 {
	pl.vlcMu.Lock()
	defer pl.vlcMu.Unlock()
	if pl.p == nil {
		return 0
	}
	ms, err := pl.p.MediaTime()
	if err != nil || ms < 0 {
		return 0
	}
	return float64(ms) / 1000
}

// SetPosition seeks to the requested position. The position is clamped to the
// file's valid range, and requests moving less than seekEpsilonSeconds from
// the previous seek are coalesced into no-ops.
func (pl *Player) SetPosition(seconds float64) {
	pl.mu.Lock()
	length := 0.0
	if pl.reader != nil {
		length = pl.reader.LengthSeconds
	}
	if seconds < 0 {
		seconds = 0
	}
	if length > 0 && seconds > length {
		seconds = length
	}
	if math.Abs(seconds-pl.lastSeek) < seekEpsilonSeconds {
		pl.mu.Unlock()
		return
	}
	pl.lastSeek = seconds
	pl.mu.Unlock()

	pl.vlcMu.Lock()
	defer pl.vlcMu.Unlock()
	if pl.p == nil {
		return
	}
	if err := pl.p.SetMediaTime(int(seconds * 1000)); err != nil {
		log.Debug().Err(err).Float64("seconds", seconds).Msg("seek rejected")
	}
}

// LengthSeconds returns the loaded file's duration, preferring the decoded
// frame count over libVLC's estimate. Zero when nothing is loaded.
func (pl *Player) LengthSeconds() float64 {
	pl.mu.Lock()
	reader := pl.reader
	pl.mu.Unlock()
	if reader != nil && reader.LengthSeconds > 0 {
		return reader.LengthSeconds
	}

	pl.vlcMu.Lock()
	defer pl.vlcMu.Unlock()
	if pl.p == nil {
		return 0
	}
	ms, err := pl.p.MediaLength()
	if err != nil || ms <= 0 {
		return 0
	}
	return float64(ms) / 1000
}

// CurrentReader returns the loaded file's reader metadata, or nil when no
// file is loaded.
func (pl *Player) CurrentReader() *decode.ReaderInfo {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.reader
}

// Path returns the loaded file path, empty when nothing is loaded.
func (pl *Player) Path() string {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.path
}
