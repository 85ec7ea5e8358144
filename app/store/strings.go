package store

import (
	"math"
	"strconv"
	"time"
)

// Get returns the string at key. A missing key is reported with ok false;
// a key holding a list or set fails with ErrWrongType.
func (s *Store) Get(key string, now time.Time) (value string, ok bool, err error) {
	s.ExpireScan([]string{key}, now)
	defer s.Touch([]string{key}, now)

	release := s.acquire(readValues)
	defer release()

	e, found := s.liveLocked(key, now)
	if !found {
		return "", false, nil
	}
	str, isString := s.values.mustGet(e.Ref).(*String)
	if !isString {
		return "", false, ErrWrongType
	}
	return str.Text, true, nil
}

// SetResult describes what a SET did.
type SetResult struct {
	// Written is false when NX or XX turned the command into a no-op.
	Written bool
	// Previous holds the old string when GET was requested and one existed.
	Previous    string
	HadPrevious bool
}

// Set writes value at key according to opts. The previous value, of any
// kind, is destroyed; its ttl survives only under KEEPTTL. With GET the old
// value must be a string, otherwise nothing is written and ErrWrongType is
// returned.
func (s *Store) Set(key, value string, opts SetOptions, now time.Time) (SetResult, error) {
	s.ExpireScan([]string{key}, now)
	defer s.Touch([]string{key}, now)

	release := s.acquire(writeAll)
	defer release()

	var res SetResult
	e, exists := s.liveLocked(key, now)

	if exists && opts.Flags.Has(FlagGet) {
		str, isString := s.values.mustGet(e.Ref).(*String)
		if !isString {
			return SetResult{}, ErrWrongType
		}
		res.Previous, res.HadPrevious = str.Text, true
	}

	if (opts.Flags.Has(FlagNX) && exists) || (opts.Flags.Has(FlagXX) && !exists) {
		return res, nil
	}

	var ttl *Deadline
	switch {
	case opts.Deadline != nil:
		ttl = opts.Deadline
	case opts.Flags.Has(FlagKeepTTL) && exists:
		ttl = e.TTL
	}

	res.Written = true
	if ttl != nil && ttl.HasExpired(now) {
		// EXAT/PXAT in the past: the write is observable only as a delete.
		s.eraseLocked(key)
		return res, nil
	}
	s.writeLocked(key, NewString(value), ttl)
	return res, nil
}

// IncrBy adds delta to the integer stored at key, treating a missing key as
// 0, and returns the new value. The ttl is kept.
func (s *Store) IncrBy(key string, delta int64, now time.Time) (int64, error) {
	s.ExpireScan([]string{key}, now)
	defer s.Touch([]string{key}, now)

	release := s.acquire(writeAll)
	defer release()

	var (
		current int64
		ttl     *Deadline
	)
	if e, ok := s.liveLocked(key, now); ok {
		str, isString := s.values.mustGet(e.Ref).(*String)
		if !isString {
			return 0, ErrWrongType
		}
		n, err := strconv.ParseInt(str.Text, 10, 64)
		if err != nil {
			return 0, ErrNotInteger
		}
		current, ttl = n, e.TTL
	}

	if (delta > 0 && current > math.MaxInt64-delta) || (delta < 0 && current < math.MinInt64-delta) {
		return 0, ErrOverflow
	}
	current += delta
	s.writeLocked(key, NewString(strconv.FormatInt(current, 10)), ttl)
	return current, nil
}
