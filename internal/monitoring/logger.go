// Package monitoring holds the diagnostic logger shared by the simulation
// packages. Per-tick conditions that the core recovers from (an anchor key
// that no longer resolves, an unreadable pixel region, an empty candidate
// set) are reported here instead of being returned to the frame loop.
package monitoring

import (
	"log"
	"sync"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// RecoverableEvery controls how often a repeated recoverable condition of the
// same kind is re-logged. The first occurrence is always logged.
const RecoverableEvery = 120

var (
	recoverableMu     sync.Mutex
	recoverableCounts = make(map[string]int)
)

// Recoverablef logs a recoverable per-frame condition. A frame loop running
// at 60 Hz would otherwise flood the log with the same message, so only the
// first occurrence and every RecoverableEvery-th repeat of a kind are emitted.
func Recoverablef(kind string, format string, v ...interface{}) {
	recoverableMu.Lock()
	n := recoverableCounts[kind]
	recoverableCounts[kind] = n + 1
	recoverableMu.Unlock()

	if n%RecoverableEvery != 0 {
		return
	}
	if n == 0 {
		Logf("[%s] "+format, append([]interface{}{kind}, v...)...)
		return
	}
	Logf("[%s] (x%d) "+format, append([]interface{}{kind, n + 1}, v...)...)
}

// RecoverableCount returns how many times a kind has been reported.
func RecoverableCount(kind string) int {
	recoverableMu.Lock()
	defer recoverableMu.Unlock()
	return recoverableCounts[kind]
}

// ResetRecoverable clears the repeat counters.
func ResetRecoverable() {
	recoverableMu.Lock()
	recoverableCounts = make(map[string]int)
	recoverableMu.Unlock()
}
