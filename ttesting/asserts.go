// Package ttesting holds assertion helpers shared by the package tests.
package ttesting

import (
	"math"
	"testing"
)

func AssertEqualInt(t *testing.T, name string, got, want int) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if got != want {
			t.Errorf("got %d; want %d", got, want)
		}
	})
}

func AssertEqualString(t *testing.T, name string, got, want string) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if got != want {
			t.Errorf("got %q; want %q", got, want)
		}
	})
}

// AssertNearFloat64 checks that got is within tolerance of want.
func AssertNearFloat64(t *testing.T, name string, got, want, tolerance float64) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if math.IsNaN(got) || math.Abs(got-want) > tolerance {
			t.Errorf("got %g; want %g (±%g)", got, want, tolerance)
		}
	})
}

func AssertInRangeFloat64(t *testing.T, name string, got, wantMin, wantMax float64) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if got < wantMin || got > wantMax {
			t.Errorf("got %g; want [%g,%g]", got, wantMin, wantMax)
		}
	})
}
