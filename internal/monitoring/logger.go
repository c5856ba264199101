// Package monitoring holds the process-wide diagnostic logger shared by
// the driver, pipeline and web server.
package monitoring

import "log"

// Logf is the package-level diagnostic logger, defaulting to log.Printf.
// Replace it with SetLogger to redirect or mute output, e.g. in tests.
var Logf func(format string, v ...any) = log.Printf

// SetLogger swaps the package logger. A nil argument installs a no-op
// logger.
func SetLogger(f func(format string, v ...any)) {
	if f == nil {
		Logf = func(string, ...any) {}
		return
	}
	Logf = f
}
