// Package session tracks pause-aware active typing time.
package session

import "time"

// DefaultIdleThreshold is how long without input counts as a pause.
const DefaultIdleThreshold = 2 * time.Second

// Clock accumulates active typing time, excluding idle gaps. It is a value
// type: every transition returns an updated copy, so the caller owns the only
// mutable state. The zero value is a paused clock with nothing accumulated.
// A zero ActiveStart means the clock is paused.
type Clock struct {
	AccumulatedMs int64
	ActiveStart   time.Time
	LastActivity  time.Time
}

// Resume returns a paused clock carrying previously accumulated time.
func Resume(accumulatedMs int64) Clock {
	if accumulatedMs < 0 {
		accumulatedMs = 0
	}
	return Clock{AccumulatedMs: accumulatedMs}
}

// Running reports whether an active burst is open.
func (c Clock) Running() bool {
	return !c.ActiveStart.IsZero()
}

// Touch records input activity at now, opening a burst if the clock was
// paused and always refreshing the last-activity mark.
func (c Clock) Touch(now time.Time) Clock {
	if c.ActiveStart.IsZero() {
		c.ActiveStart = now
	}
	c.LastActivity = now
	return c
}

// Tick transitions running to paused once now is more than threshold past the
// last activity, folding the finished burst into AccumulatedMs. It is
// idempotent and a no-op while paused, so it is safe to drive at any rate.
func (c Clock) Tick(now time.Time, threshold time.Duration) Clock {
	if threshold <= 0 {
		threshold = DefaultIdleThreshold
	}
	if c.ActiveStart.IsZero() {
		return c
	}
	if now.Sub(c.LastActivity) <= threshold {
		return c
	}
	return c.fold()
}

// Pause closes any open burst, folding it into AccumulatedMs. Called before
// saving so idle tail time after the last keystroke never counts.
func (c Clock) Pause() Clock {
	if c.ActiveStart.IsZero() {
		return c
	}
	return c.fold()
}

// Elapsed returns total active time: accumulated bursts plus the open burst.
func (c Clock) Elapsed(now time.Time) time.Duration {
	d := time.Duration(c.AccumulatedMs) * time.Millisecond
	if !c.ActiveStart.IsZero() {
		if burst := now.Sub(c.ActiveStart); burst > 0 {
			d += burst
		}
	}
	return d
}

func (c Clock) fold() Clock {
	if burst := c.LastActivity.Sub(c.ActiveStart); burst > 0 {
		c.AccumulatedMs += burst.Milliseconds()
	}
	c.ActiveStart = time.Time{}
	return c
}
