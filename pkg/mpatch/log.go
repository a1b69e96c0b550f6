package mpatch

import "log"

// debugLogging gates the verbose traces emitted while locating and applying
// hunks. Off by default; the CLI flips it on for --verbose.
var debugLogging = false

// SetDebugLogging enables or disables debug traces on the standard logger.
func SetDebugLogging(enabled bool) {
	debugLogging = enabled
}

func debugf(format string, args ...any) {
	if debugLogging {
		log.Printf("DEBUG: "+format, args...)
	}
}
