// Package monitoring holds the diagnostic logger shared by the clustering,
// storage and API layers.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf and
// may be swapped with SetLogger so tests can capture or silence output.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces Logf and returns the previous logger so callers can
// restore it. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) (previous func(format string, v ...interface{})) {
	previous = Logf
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return previous
	}
	Logf = f
	return previous
}
