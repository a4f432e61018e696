package testutil

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/shieldball/internal/monitoring"
)

// TestAssertNoError_NilErr tests nil error path.
func TestAssertNoError_NilErr(t *testing.T) {
	fakeT := &testing.T{}
	AssertNoError(fakeT, nil)
	if fakeT.Failed() {
		t.Error("expected no failure for nil error")
	}
}

// TestAssertError_WithErr tests non-nil error path.
func TestAssertError_WithErr(t *testing.T) {
	fakeT := &testing.T{}
	AssertError(fakeT, errors.New("something wrong"))
	if fakeT.Failed() {
		t.Error("expected no failure when error is present")
	}
}

func TestAssertVecNear_WithinTolerance(t *testing.T) {
	fakeT := &testing.T{}
	AssertVecNear(fakeT, r2.Vec{X: 1.0005, Y: -2}, r2.Vec{X: 1, Y: -2.0005}, 1e-3)
	if fakeT.Failed() {
		t.Error("expected no failure within tolerance")
	}
}

func TestQuietLogs(t *testing.T) {
	var calls int
	monitoring.SetLogger(func(string, ...interface{}) { calls++ })
	t.Cleanup(func() { monitoring.SetLogger(nil) })

	t.Run("muted", func(t *testing.T) {
		QuietLogs(t)
		monitoring.Recoverablef("test", "hidden")
		monitoring.Logf("hidden")
		if got := monitoring.RecoverableCount("test"); got != 1 {
			t.Errorf("RecoverableCount = %d, want 1", got)
		}
	})

	if calls != 0 {
		t.Errorf("logger called %d times while muted", calls)
	}
	monitoring.Logf("visible")
	if calls != 1 {
		t.Errorf("logger not restored: calls = %d", calls)
	}
	if got := monitoring.RecoverableCount("test"); got != 0 {
		t.Errorf("counters not reset: %d", got)
	}
}

func TestRand_Deterministic(t *testing.T) {
	a, b := Rand(7), Rand(7)
	for i := 0; i < 10; i++ {
		if x, y := a.Uint64(), b.Uint64(); x != y {
			t.Fatalf("draw %d differs: %d != %d", i, x, y)
		}
	}
}
