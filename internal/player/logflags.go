package player

import "sync/atomic"

var traceLogEnabled atomic.Bool

// SetTraceLoggingEnabled enables or disables verbose libVLC file logging
// globally. Call before Init so the initialisation arguments can see it.
func SetTraceLoggingEnabled(enabled bool) {
	traceLogEnabled.Store(enabled)
}
