package internal

import (
	"strconv"
	"sync/atomic"
)

// Default number of accept workers when neither a flag nor a config file
// sets one.
const DefaultWorkers = 1

var (
	quietMode   atomic.Bool  // Only warnings and errors are logged.
	debugMode   atomic.Bool  // Debug records are logged.
	verboseMode atomic.Bool  // Records carry their source location.
	workers     atomic.Int64 // Build-time default worker count.
)

// Parses the linker flags into runtime defaults.
//
// The raw* variables are set via ldflags; unparsable values are ignored and
// the compiled-in defaults stay in effect.
func init() {
	if v, err := strconv.ParseBool(rawQuiet); err == nil {
		quietMode.Store(v)
	}
	if v, err := strconv.ParseBool(rawDebug); err == nil {
		debugMode.Store(v)
	}
	if v, err := strconv.ParseBool(rawVerbose); err == nil {
		verboseMode.Store(v)
	}

	workers.Store(DefaultWorkers)
	if v, err := strconv.Atoi(rawWorkers); err == nil && v > 0 {
		workers.Store(int64(v))
	}
}

// Enables or disables quiet mode.
func SetQuiet(enabled bool) {
	quietMode.Store(enabled)
}

// Returns true if quiet mode is enabled.
func IsQuiet() bool {
	return quietMode.Load()
}

// Enables or disables debug mode.
func SetDebug(enabled bool) {
	debugMode.Store(enabled)
}

// Returns true if debug mode is enabled.
func IsDebug() bool {
	return debugMode.Load()
}

// Enables or disables verbose logging.
func SetVerbose(enabled bool) {
	verboseMode.Store(enabled)
}

// Returns true if verbose logging is enabled.
func IsVerbose() bool {
	return verboseMode.Load()
}

// Returns the worker count baked into the binary, or [DefaultWorkers].
func Workers() int {
	return int(workers.Load())
}
