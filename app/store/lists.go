package store

import "time"

// listLocked returns the list at key. ok is false when the key is absent.
func (s *Store) listLocked(key string, now time.Time) (l *List, ok bool, err error) {
	e, found := s.liveLocked(key, now)
	if !found {
		return nil, false, nil
	}
	l, isList := s.values.mustGet(e.Ref).(*List)
	if !isList {
		return nil, false, ErrWrongType
	}
	return l, true, nil
}

// LPush inserts values at the head of the list at key, creating it if
// needed, and returns the new length.
func (s *Store) LPush(key string, now time.Time, values ...string) (int64, error) {
	return s.push(key, now, values, (*List).PushFront)
}

// RPush appends values to the tail of the list at key, creating it if
// needed, and returns the new length.
func (s *Store) RPush(key string, now time.Time, values ...string) (int64, error) {
	return s.push(key, now, values, (*List).PushBack)
}

func (s *Store) push(key string, now time.Time, values []string, insert func(*List, ...string)) (int64, error) {
	s.ExpireScan([]string{key}, now)
	defer s.Touch([]string{key}, now)

	release := s.acquire(writeAll)
	defer release()

	l, ok, err := s.listLocked(key, now)
	if err != nil {
		return 0, err
	}
	if !ok {
		l = NewList()
		s.writeLocked(key, l, nil)
	}
	insert(l, values...)
	return int64(l.Len()), nil
}

// LPop removes up to count elements from the head of the list at key. ok is
// false when the key is absent. Popping the last element erases the key.
func (s *Store) LPop(key string, count int, now time.Time) ([]string, bool, error) {
	return s.pop(key, count, now, (*List).PopFront)
}

// RPop is LPop from the tail.
func (s *Store) RPop(key string, count int, now time.Time) ([]string, bool, error) {
	return s.pop(key, count, now, (*List).PopBack)
}

func (s *Store) pop(key string, count int, now time.Time, take func(*List, int) []string) ([]string, bool, error) {
	s.ExpireScan([]string{key}, now)
	defer s.Touch([]string{key}, now)

	release := s.acquire(writeAll)
	defer release()

	l, ok, err := s.listLocked(key, now)
	if err != nil || !ok {
		return nil, false, err
	}
	out := take(l, count)
	if l.Len() == 0 {
		s.eraseLocked(key)
	}
	return out, true, nil
}

// LLen returns the length of the list at key, 0 when absent.
func (s *Store) LLen(key string, now time.Time) (int64, error) {
	s.ExpireScan([]string{key}, now)
	defer s.Touch([]string{key}, now)

	release := s.acquire(readValues)
	defer release()

	l, ok, err := s.listLocked(key, now)
	if err != nil || !ok {
		return 0, err
	}
	return int64(l.Len()), nil
}

// LRange returns the elements of the list at key between start and stop
// inclusive. An absent key yields an empty slice.
func (s *Store) LRange(key string, start, stop int64, now time.Time) ([]string, error) {
	s.ExpireScan([]string{key}, now)
	defer s.Touch([]string{key}, now)

	release := s.acquire(readValues)
	defer release()

	l, ok, err := s.listLocked(key, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []string{}, nil
	}
	return l.Range(start, stop), nil
}
