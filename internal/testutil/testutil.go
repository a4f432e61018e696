// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/shieldball/internal/monitoring"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertVecNear fails the test if got and want differ by more than tol in
// either component.
func AssertVecNear(t testing.TB, got, want r2.Vec, tol float64) {
	t.Helper()
	if math.Abs(got.X-want.X) > tol || math.Abs(got.Y-want.Y) > tol {
		t.Errorf("vec = (%g, %g), want (%g, %g) ±%g", got.X, got.Y, want.X, want.Y, tol)
	}
}

// QuietLogs mutes the monitoring logger and clears the recoverable counters
// for the duration of the test.
func QuietLogs(t testing.TB) {
	t.Helper()
	prev := monitoring.Logf
	monitoring.SetLogger(nil)
	monitoring.ResetRecoverable()
	t.Cleanup(func() {
		monitoring.Logf = prev
		monitoring.ResetRecoverable()
	})
}

// Rand returns a deterministic random source for seed.
func Rand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
