package validation

import (
	"testing"
	"time"
)

// SetNow replaces the validation clock for the duration of the test.
func SetNow(t testing.TB, clock func() time.Time) {
	t.Helper()
	prev := now
	now = clock
	t.Cleanup(func() { now = prev })
}
