package lifecycle

import "time"

// Clock supplies wall-clock time; injectable for deterministic tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the real wall clock.
func SystemClock() Clock { return systemClock{} }

// FixedClock pins Now to a constant instant.
type FixedClock struct{ T time.Time }

func (c FixedClock) Now() time.Time { return c.T }
