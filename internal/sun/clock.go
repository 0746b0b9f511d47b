package sun

import "time"

// Clock provides the current time. Tests inject a FixedClock so the
// per-minute pipeline is deterministic.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns time.Now().
func (RealClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant.
type FixedClock time.Time

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return time.Time(c)
}

var (
	_ Clock = RealClock{}
	_ Clock = FixedClock{}
)
