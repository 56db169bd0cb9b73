// Package applog is a thin wrapper around the standard log package,
// gated by a verbosity flag, used for the operational diagnostics the
// frame driver and presentation layer emit (bad DMA sources, pause and
// reset messages).
package applog

import "log"

var verbose = false

// SetVerbose toggles whether Debugf messages are emitted.
func SetVerbose(v bool) {
	verbose = v
}

// Warnf always logs, for conditions worth surfacing regardless of
// verbosity (a rejected DMA).
func Warnf(format string, args ...any) {
	log.Printf("warn: "+format, args...)
}

// Debugf logs only when verbose mode is enabled.
func Debugf(format string, args ...any) {
	if verbose {
		log.Printf("debug: "+format, args...)
	}
}
