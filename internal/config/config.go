// Package config defines the WaveScope configuration format and helpers for
// loading or saving it to disk.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
)

const (
	// AppID is the stable application identifier used for config storage.
	AppID = "wavescope"
	// AppConfigSubdir is the OS-specific directory that holds the config file.
	AppConfigSubdir = "WaveScope"
	// AppConfigName is the JSON file stored on disk.
	AppConfigName = "config.json"

	// DefaultWidth is the preferred window width when no persisted value exists.
	DefaultWidth = 900
	// DefaultHeight is the preferred window height.
	DefaultHeight = 320
	// DefaultVolume sets the safe initial playback level.
	DefaultVolume = 70
	// DefaultBackgroundColor is the waveform background as #RRGGBB hex.
	DefaultBackgroundColor = "#101010"
	// DefaultWaveformColor is the waveform trace colour as #RRGGBB hex.
	DefaultWaveformColor = "#2EC27E"

	// MaxZoomRatio bounds the persisted horizontal zoom.
	MaxZoomRatio = 10000.0
	// MaxRecentFiles caps the recent-file list length.
	MaxRecentFiles = 10
)

// Config aggregates every user-facing preference persisted between sessions.
type Config struct {
	LastFile          string   `json:"lastFile,omitempty"`
	RecentFiles       []string `json:"recentFiles,omitempty"`
	Volume            int      `json:"volume"`
	Muted             bool     `json:"muted"`
	ZoomRatio         float64  `json:"zoomRatio"`
	VerticalZoomRatio float64  `json:"verticalZoomRatio"`
	StartOffsetRatio  float64  `json:"startOffsetRatio"`
	CursorHidden      bool     `json:"cursorHidden,omitempty"`
	BackgroundColor   string   `json:"backgroundColor"`
	WaveformColor     string   `json:"waveformColor"`
	WindowW           int      `json:"windowW"`
	WindowH           int      `json:"windowH"`
	WindowX           int      `json:"windowX,omitempty"`
	WindowY           int      `json:"windowY,omitempty"`
	WindowPosValid    bool     `json:"windowPosValid,omitempty"`
}

// ConfigDir resolves the writable directory that should contain the config file.
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppConfigSubdir), nil
}

// ConfigPath is a helper that returns the full path to config.json.
func ConfigPath() (string, error) {
	d, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, AppConfigName), nil
}

// Load reads the config from disk, applying defaults when the file does not
// exist yet.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := newDefaultConfig()
			// Try saving an initial config, but still return defaults even if it fails.
			_ = cfg.Save()
			return cfg, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config parse error: %w", err)
	}
	cfg.applyRuntimeDefaults()
	return cfg, nil
}

// Save persists the configuration to disk, creating directories as needed.
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// RememberFile records path as the most recent file, deduplicating and
// trimming the list to MaxRecentFiles.
func (c *Config) RememberFile(path string) {
	c.LastFile = path
	recent := []string{path}
	for _, p := range c.RecentFiles {
		if p != path {
			recent = append(recent, p)
		}
	}
	if len(recent) > MaxRecentFiles {
		recent = recent[:MaxRecentFiles]
	}
	c.RecentFiles = recent
}

// BackgroundNRGBA parses the configured background colour.
func (c *Config) BackgroundNRGBA() color.NRGBA {
	col, err := ParseHexColor(c.BackgroundColor)
	if err != nil {
		col, _ = ParseHexColor(DefaultBackgroundColor)
	}
	return col
}

// WaveformNRGBA parses the configured waveform colour.
func (c *Config) WaveformNRGBA() color.NRGBA {
	col, err := ParseHexColor(c.WaveformColor)
	if err != nil {
		col, _ = ParseHexColor(DefaultWaveformColor)
	}
	return col
}

// ParseHexColor converts a #RRGGBB string to an opaque NRGBA colour.
func ParseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if len(s) != 7 || s[0] != '#' {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return color.NRGBA{R: r, G: g, B: b, A: 0xFF}, nil
}

// newDefaultConfig builds an in-memory config populated with safe defaults.
func newDefaultConfig() *Config {
	cfg := &Config{
		Volume:            DefaultVolume,
		ZoomRatio:         1.0,
		VerticalZoomRatio: 1.0,
		BackgroundColor:   DefaultBackgroundColor,
		WaveformColor:     DefaultWaveformColor,
		WindowW:           DefaultWidth,
		WindowH:           DefaultHeight,
	}
	cfg.applyRuntimeDefaults()
	return cfg
}

// applyRuntimeDefaults normalizes config values after a load or when defaults
// are constructed, ensuring the UI always receives sane inputs.
func (c *Config) applyRuntimeDefaults() {
	if c.WindowW == 0 {
		c.WindowW = DefaultWidth
	}
	if c.WindowH == 0 {
		c.WindowH = DefaultHeight
	}
	if c.Volume < 0 || c.Volume > 100 {
		c.Volume = DefaultVolume
	}
	if c.ZoomRatio <= 0 || c.ZoomRatio > MaxZoomRatio {
		c.ZoomRatio = 1.0
	}
	if c.VerticalZoomRatio <= 0 {
		c.VerticalZoomRatio = 1.0
	}
	if _, err := ParseHexColor(c.BackgroundColor); err != nil {
		c.BackgroundColor = DefaultBackgroundColor
	}
	if _, err := ParseHexColor(c.WaveformColor); err != nil {
		c.WaveformColor = DefaultWaveformColor
	}
	if !c.WindowPosValid && (c.WindowX != 0 || c.WindowY != 0) {
		c.WindowPosValid = true
	}
	if len(c.RecentFiles) > MaxRecentFiles {
		c.RecentFiles = c.RecentFiles[:MaxRecentFiles]
	}
}
