package store

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeadlineForever(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	d := Forever()

	assert.True(t, d.IsForever())
	assert.False(t, d.HasExpired(now))
	assert.False(t, d.HasExpired(now.Add(100*365*24*time.Hour)))
	assert.Equal(t, int64(-1), d.SecondsLeft(now))
	assert.Equal(t, int64(-1), d.MillisLeft(now))
	assert.Equal(t, int64(-1), d.UnixMillis())
}

func TestDeadlineExpiresIn(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	d := ExpiresIn(now, 10*time.Second)
	assert.False(t, d.HasExpired(now))
	assert.False(t, d.HasExpired(now.Add(9999*time.Millisecond)))
	assert.True(t, d.HasExpired(now.Add(10*time.Second)), "expiry is inclusive of the deadline itself")
	assert.Equal(t, int64(10), d.SecondsLeft(now))
	assert.Equal(t, int64(10_000), d.MillisLeft(now))
	assert.Equal(t, int64(0), d.SecondsLeft(now.Add(time.Minute)))
	assert.Equal(t, int64(0), d.MillisLeft(now.Add(time.Minute)))

	assert.True(t, ExpiresIn(now, 0).HasExpired(now))
	assert.True(t, ExpiresIn(now, -time.Second).HasExpired(now))
	assert.True(t, ExpiresIn(now, math.MaxInt64).IsForever())
}

func TestDeadlineSecondsLeftRounds(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	d := ExpiresIn(now, 10*time.Second)

	assert.Equal(t, int64(10), d.SecondsLeft(now.Add(400*time.Millisecond)))
	assert.Equal(t, int64(9), d.SecondsLeft(now.Add(600*time.Millisecond)))
}

func TestDeadlineAbsolute(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	sec := ExpiresAtUnixSeconds(1_700_000_005)
	assert.Equal(t, int64(5000), sec.MillisLeft(now))
	assert.Equal(t, int64(1_700_000_005_000), sec.UnixMillis())

	ms := ExpiresAtUnixMillis(1_700_000_000_250)
	assert.Equal(t, int64(250), ms.MillisLeft(now))

	at := ExpiresAt(now.Add(-time.Second))
	assert.True(t, at.HasExpired(now))
	assert.Equal(t, now.Add(-time.Second), at.Time())
}
