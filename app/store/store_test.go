package store

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Unix(1_700_000_000, 0)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(
		WithClock(func() time.Time { return epoch }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func mustSet(t *testing.T, s *Store, key, value string, now time.Time, tokens ...string) {
	t.Helper()
	opts, err := ParseSetOptions(tokens, now)
	require.NoError(t, err)
	res, err := s.Set(key, value, opts, now)
	require.NoError(t, err)
	require.True(t, res.Written)
}

func TestSetGetNX(t *testing.T) {
	s := newTestStore(t)

	mustSet(t, s, "name", "val", epoch)
	got, ok, err := s.Get("name", epoch)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "val", got)

	opts, err := ParseSetOptions([]string{"NX"}, epoch)
	require.NoError(t, err)
	res, err := s.Set("name", "val2", opts, epoch)
	require.NoError(t, err)
	assert.False(t, res.Written)

	got, _, _ = s.Get("name", epoch)
	assert.Equal(t, "val", got)
}

func TestSetXXAndGet(t *testing.T) {
	s := newTestStore(t)

	opts, _ := ParseSetOptions([]string{"XX", "GET"}, epoch)
	res, err := s.Set("k", "v", opts, epoch)
	require.NoError(t, err)
	assert.False(t, res.Written)
	assert.False(t, res.HadPrevious)
	assert.False(t, s.Contains("k", epoch))

	mustSet(t, s, "k", "old", epoch)
	res, err = s.Set("k", "new", opts, epoch)
	require.NoError(t, err)
	assert.True(t, res.Written)
	assert.True(t, res.HadPrevious)
	assert.Equal(t, "old", res.Previous)
}

func TestSetGetOnWrongTypeWritesNothing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.RPush("l", epoch, "a")
	require.NoError(t, err)

	opts, _ := ParseSetOptions([]string{"GET"}, epoch)
	_, err = s.Set("l", "v", opts, epoch)
	assert.ErrorIs(t, err, ErrWrongType)
	assert.Equal(t, "list", s.Type("l", epoch))

	// A plain SET replaces any kind.
	mustSet(t, s, "l", "v", epoch)
	assert.Equal(t, "string", s.Type("l", epoch))
}

func TestSetExpiryAndTTL(t *testing.T) {
	s := newTestStore(t)

	mustSet(t, s, "k", "v", epoch, "EX", "10")
	assert.Equal(t, int64(10), s.TTLSeconds("k", epoch))
	assert.Equal(t, int64(10_000), s.TTLMillis("k", epoch))

	later := epoch.Add(11 * time.Second)
	_, ok, err := s.Get("k", later)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(-2), s.TTLSeconds("k", later))
	assert.Equal(t, int64(-2), s.TTLMillis("k", later))
}

func TestSetTTLFlags(t *testing.T) {
	s := newTestStore(t)

	mustSet(t, s, "k", "v", epoch, "PX", "5000")
	mustSet(t, s, "k", "v2", epoch, "KEEPTTL")
	assert.Equal(t, int64(5000), s.TTLMillis("k", epoch))

	mustSet(t, s, "k", "v3", epoch)
	assert.Equal(t, int64(-1), s.TTLSeconds("k", epoch), "plain SET clears the ttl")

	mustSet(t, s, "k", "v4", epoch, "EX", "7")
	mustSet(t, s, "k", "v5", epoch, "PERSIST")
	assert.Equal(t, int64(-1), s.TTLSeconds("k", epoch))

	mustSet(t, s, "k", "v6", epoch, "PXAT", "1000")
	assert.False(t, s.Contains("k", epoch), "a deadline in the past erases the key")
}

func TestRejectedOptionsLeaveKeyUntouched(t *testing.T) {
	s := newTestStore(t)
	mustSet(t, s, "k", "v", epoch)

	_, err := ParseSetOptions([]string{"EX", "5", "PX", "100"}, epoch)
	require.ErrorIs(t, err, ErrSyntax)

	got, ok, err := s.Get("k", epoch)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", got)
	assert.Equal(t, int64(-1), s.TTLSeconds("k", epoch))
}

func TestIncrBy(t *testing.T) {
	s := newTestStore(t)

	n, err := s.IncrBy("c", 1, epoch)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	mustSet(t, s, "c", "41", epoch, "EX", "100")
	n, err = s.IncrBy("c", 1, epoch)
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
	assert.Equal(t, int64(100), s.TTLSeconds("c", epoch))

	mustSet(t, s, "c", "9223372036854775807", epoch)
	_, err = s.IncrBy("c", 1, epoch)
	assert.ErrorIs(t, err, ErrOverflow)

	mustSet(t, s, "c", "abc", epoch)
	_, err = s.IncrBy("c", 1, epoch)
	assert.ErrorIs(t, err, ErrNotInteger)
}

func TestExistsDelFlush(t *testing.T) {
	s := newTestStore(t)
	mustSet(t, s, "a", "1", epoch)
	mustSet(t, s, "b", "2", epoch)

	assert.Equal(t, int64(3), s.Exists([]string{"a", "a", "b", "c"}, epoch))
	assert.Equal(t, int64(1), s.Del([]string{"a", "c"}, epoch))
	assert.False(t, s.Contains("a", epoch))
	assert.Equal(t, 1, s.Len(epoch))

	s.Flush()
	assert.Equal(t, 0, s.Len(epoch))
	assert.False(t, s.Contains("b", epoch))
}

func TestSetTTLAndPersist(t *testing.T) {
	s := newTestStore(t)

	_, err := s.SetTTL("missing", time.Second, epoch)
	assert.ErrorIs(t, err, ErrNoSuchKey)

	mustSet(t, s, "k", "v", epoch)
	_, err = s.SetTTL("k", -time.Second, epoch)
	assert.ErrorIs(t, err, ErrNegativeTTL)
	assert.True(t, s.Contains("k", epoch))

	d, err := s.SetTTL("k", 30*time.Second, epoch)
	require.NoError(t, err)
	assert.Equal(t, epoch.Add(30*time.Second), d.Time())
	assert.Equal(t, int64(30), s.TTLSeconds("k", epoch))

	assert.True(t, s.Persist("k", epoch))
	assert.False(t, s.Persist("k", epoch))
	assert.Equal(t, int64(-1), s.TTLSeconds("k", epoch))

	_, err = s.SetTTL("k", 0, epoch)
	require.NoError(t, err)
	assert.False(t, s.Contains("k", epoch))
}

func TestExpireAt(t *testing.T) {
	s := newTestStore(t)
	mustSet(t, s, "k", "v", epoch)

	ok, err := s.ExpireAt("k", ExpiresAtUnixMillis(epoch.UnixMilli()+2500), epoch)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(2500), s.TTLMillis("k", epoch))

	ok, err = s.ExpireAt("k", ExpiresAt(epoch.Add(-time.Millisecond)), epoch)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, s.Contains("k", epoch))
}

func TestKeysAndType(t *testing.T) {
	s := newTestStore(t)
	mustSet(t, s, "user:1", "a", epoch)
	mustSet(t, s, "user:2", "b", epoch, "EX", "1")
	mustSet(t, s, "item/9", "c", epoch)
	_, err := s.SAdd("tags", epoch, "x")
	require.NoError(t, err)

	keys, err := s.Keys("*", epoch)
	require.NoError(t, err)
	assert.Equal(t, []string{"item/9", "tags", "user:1", "user:2"}, keys)

	keys, err = s.Keys("user:?", epoch.Add(2*time.Second))
	require.NoError(t, err)
	assert.Equal(t, []string{"user:1"}, keys)

	keys, err = s.Keys("i*9", epoch)
	require.NoError(t, err)
	assert.Equal(t, []string{"item/9"}, keys)

	_, err = s.Keys("user:[12", epoch)
	assert.ErrorIs(t, err, ErrBadPattern)

	assert.Equal(t, "set", s.Type("tags", epoch))
	assert.Equal(t, "none", s.Type("nope", epoch))
}

func TestTouchStampsLedger(t *testing.T) {
	s := newTestStore(t)
	mustSet(t, s, "k", "v", epoch)

	at, ok := s.LastAccess("k")
	require.True(t, ok)
	assert.Equal(t, epoch, at)

	later := epoch.Add(time.Minute)
	_, _, err := s.Get("k", later)
	require.NoError(t, err)
	at, _ = s.LastAccess("k")
	assert.Equal(t, later, at)

	s.Del([]string{"k"}, later)
	_, ok = s.LastAccess("k")
	assert.False(t, ok, "erasing a key drops its ledger stamp")

	// Reads of absent keys do not create stamps.
	_, _, _ = s.Get("ghost", later)
	_, ok = s.LastAccess("ghost")
	assert.False(t, ok)
}

func TestExpireHookSeesLazyErasures(t *testing.T) {
	type erased struct {
		key string
		at  time.Time
	}
	var got []erased
	s := New(
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithExpireHook(func(key string, now time.Time) { got = append(got, erased{key, now}) }),
	)
	mustSet(t, s, "a", "v", epoch, "PX", "100")
	mustSet(t, s, "b", "v", epoch, "EX", "1")
	mustSet(t, s, "c", "v", epoch)

	later := epoch.Add(500 * time.Millisecond)
	_, err := s.RPush("a", later, "x")
	require.NoError(t, err)
	assert.Equal(t, []erased{{"a", later}}, got)

	// Explicit deletes are not expiry.
	s.Del([]string{"c"}, later)
	assert.Len(t, got, 1)

	end := epoch.Add(2 * time.Second)
	assert.Equal(t, 1, s.Len(end))
	assert.Equal(t, []erased{{"a", later}, {"b", end}}, got)
}

func TestConcurrentAccess(t *testing.T) {
	s := newTestStore(t)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", i%10)
				now := epoch.Add(time.Duration(i) * time.Millisecond)
				switch (w + i) % 5 {
				case 0:
					opts, _ := ParseSetOptions([]string{"PX", "50"}, now)
					_, _ = s.Set(key, "v", opts, now)
				case 1:
					_, _, _ = s.Get(key, now)
				case 2:
					_, _ = s.RPush(key+":l", now, "x")
					_, _, _ = s.LPop(key+":l", 1, now)
				case 3:
					s.Del([]string{key}, now)
				default:
					_, _ = s.Keys("*", now)
					_ = s.TTLMillis(key, now)
				}
			}
		}(w)
	}
	wg.Wait()

	// Every surviving key must still resolve to a live value.
	keys, err := s.Keys("*", epoch.Add(time.Hour))
	require.NoError(t, err)
	for _, k := range keys {
		assert.NotEqual(t, "none", s.Type(k, epoch.Add(time.Hour)))
	}
}
