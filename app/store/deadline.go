package store

import (
	"math"
	"time"
)

// Deadline marks the instant a key stops being visible.
//
// The zero value is an already-expired deadline. A forever deadline never
// expires; SecondsLeft and MillisLeft report -1 for it. Every query takes the
// caller's notion of "now" so one command compares all of its keys against
// the same instant.
type Deadline struct {
	at      time.Time
	forever bool
}

// Forever returns a deadline that never expires.
func Forever() Deadline {
	return Deadline{forever: true}
}

// ExpiresIn returns a deadline d after now. A non-positive d yields a deadline
// that has already expired at now; math.MaxInt64 yields Forever.
func ExpiresIn(now time.Time, d time.Duration) Deadline {
	if d == math.MaxInt64 {
		return Forever()
	}
	if d <= 0 {
		return Deadline{at: now}
	}
	return Deadline{at: now.Add(d)}
}

// ExpiresAt returns a deadline at the given instant.
func ExpiresAt(t time.Time) Deadline {
	return Deadline{at: t}
}

// ExpiresAtUnixSeconds returns a deadline at a Unix timestamp in seconds.
func ExpiresAtUnixSeconds(sec int64) Deadline {
	return Deadline{at: time.Unix(sec, 0)}
}

// ExpiresAtUnixMillis returns a deadline at a Unix timestamp in milliseconds.
func ExpiresAtUnixMillis(ms int64) Deadline {
	return Deadline{at: time.UnixMilli(ms)}
}

// IsForever reports whether the deadline never expires.
func (d Deadline) IsForever() bool {
	return d.forever
}

// HasExpired reports whether now is at or past the deadline.
func (d Deadline) HasExpired(now time.Time) bool {
	if d.forever {
		return false
	}
	return !now.Before(d.at)
}

// Time returns the absolute instant of the deadline. It is the zero time for
// a forever deadline.
func (d Deadline) Time() time.Time {
	return d.at
}

// UnixMillis returns the deadline as Unix milliseconds, or -1 for forever.
func (d Deadline) UnixMillis() int64 {
	if d.forever {
		return -1
	}
	return d.at.UnixMilli()
}

// Remaining returns the time left before the deadline: -1 for forever, zero
// once expired.
func (d Deadline) Remaining(now time.Time) time.Duration {
	if d.forever {
		return -1
	}
	if !now.Before(d.at) {
		return 0
	}
	return d.at.Sub(now)
}

// MillisLeft returns whole milliseconds left: -1 for forever, 0 once expired.
func (d Deadline) MillisLeft(now time.Time) int64 {
	if d.forever {
		return -1
	}
	return d.Remaining(now).Milliseconds()
}

// SecondsLeft returns the seconds left rounded to the nearest second: -1 for
// forever, 0 once expired.
func (d Deadline) SecondsLeft(now time.Time) int64 {
	if d.forever {
		return -1
	}
	return (d.MillisLeft(now) + 500) / 1000
}
