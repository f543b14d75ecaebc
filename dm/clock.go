package dm

import "time"

// Clock supplies the current time for diff deadlines. Production code uses
// RealClock; tests inject a clock they control so that deadline behavior
// is deterministic.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// deadline is the point after which a diff stops searching for a minimal
// edit script. The zero deadline never expires.
type deadline struct {
	clock Clock
	at    time.Time
}

func newDeadline(clock Clock, timeout time.Duration) deadline {
	if timeout <= 0 {
		return deadline{clock: clock}
	}
	return deadline{clock: clock, at: clock.Now().Add(timeout)}
}

func (d deadline) isUnbounded() bool { return d.at.IsZero() }

func (d deadline) expired() bool {
	return !d.at.IsZero() && d.clock.Now().After(d.at)
}
