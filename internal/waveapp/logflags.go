package waveapp

import playerpkg "wavescope/internal/player"

// SetTraceLogEnabled forwards the trace flag to the playback layer.
func SetTraceLogEnabled(enabled bool) {
	playerpkg.SetTraceLoggingEnabled(enabled)
}
