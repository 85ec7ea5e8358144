package store

import (
	"sort"
	"time"
)

func (s *Store) setLocked(key string, now time.Time) (set *Set, ok bool, err error) {
	e, found := s.liveLocked(key, now)
	if !found {
		return nil, false, nil
	}
	set, isSet := s.values.mustGet(e.Ref).(*Set)
	if !isSet {
		return nil, false, ErrWrongType
	}
	return set, true, nil
}

// SAdd adds members to the set at key, creating it if needed, and returns
// how many were not already present.
func (s *Store) SAdd(key string, now time.Time, members ...string) (int64, error) {
	s.ExpireScan([]string{key}, now)
	defer s.Touch([]string{key}, now)

	release := s.acquire(writeAll)
	defer release()

	set, ok, err := s.setLocked(key, now)
	if err != nil {
		return 0, err
	}
	if !ok {
		set = NewSet()
		s.writeLocked(key, set, nil)
	}
	return set.Add(members...), nil
}

// SRem removes members from the set at key and returns how many were
// present. A set left empty is erased.
func (s *Store) SRem(key string, now time.Time, members ...string) (int64, error) {
	s.ExpireScan([]string{key}, now)
	defer s.Touch([]string{key}, now)

	release := s.acquire(writeAll)
	defer release()

	set, ok, err := s.setLocked(key, now)
	if err != nil || !ok {
		return 0, err
	}
	n := set.Remove(members...)
	if set.Len() == 0 {
		s.eraseLocked(key)
	}
	return n, nil
}

// SCard returns the size of the set at key, 0 when absent.
func (s *Store) SCard(key string, now time.Time) (int64, error) {
	s.ExpireScan([]string{key}, now)
	defer s.Touch([]string{key}, now)

	release := s.acquire(readValues)
	defer release()

	set, ok, err := s.setLocked(key, now)
	if err != nil || !ok {
		return 0, err
	}
	return int64(set.Len()), nil
}

// SIsMember reports whether member belongs to the set at key.
func (s *Store) SIsMember(key, member string, now time.Time) (bool, error) {
	s.ExpireScan([]string{key}, now)
	defer s.Touch([]string{key}, now)

	release := s.acquire(readValues)
	defer release()

	set, ok, err := s.setLocked(key, now)
	if err != nil || !ok {
		return false, err
	}
	return set.Contains(member), nil
}

// SMembers returns the members of the set at key in sorted order.
func (s *Store) SMembers(key string, now time.Time) ([]string, error) {
	s.ExpireScan([]string{key}, now)
	defer s.Touch([]string{key}, now)

	release := s.acquire(readValues)
	defer release()

	set, ok, err := s.setLocked(key, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []string{}, nil
	}
	return set.Members(), nil
}

// SInter returns the members common to every set named by keys, sorted. Any
// absent key makes the result empty; any key holding another kind fails with
// ErrWrongType.
func (s *Store) SInter(keys []string, now time.Time) ([]string, error) {
	s.ExpireScan(keys, now)
	defer s.Touch(keys, now)

	release := s.acquire(readValues)
	defer release()

	sets := make([]*Set, 0, len(keys))
	for _, k := range keys {
		set, ok, err := s.setLocked(k, now)
		if err != nil {
			return nil, err
		}
		if !ok {
			return []string{}, nil
		}
		sets = append(sets, set)
	}
	if len(sets) == 0 {
		return []string{}, nil
	}

	sort.Slice(sets, func(i, j int) bool { return sets[i].Len() < sets[j].Len() })
	out := []string{}
	for m := range sets[0].members {
		inAll := true
		for _, other := range sets[1:] {
			if !other.Contains(m) {
				inAll = false
				break
			}
		}
		if inAll {
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}
