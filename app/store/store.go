package store

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Store is the keyspace: a key table, a value arena and an access ledger,
// each behind its own reader-writer lock.
//
// Every exported operation runs in three phases. The pre-phase erases keys
// whose ttl has passed at the caller's now (ExpireScan). The main phase reads
// or mutates under the weakest locks that suffice. The post-phase stamps the
// touched keys in the access ledger (Touch). Locks are only ever taken
// through acquire, which pins the order keys -> values -> ledger.
type Store struct {
	keysMu   sync.RWMutex
	valuesMu sync.RWMutex
	ledgerMu sync.RWMutex

	keys   *keyTable
	values *arena
	ledger *accessLedger

	clock    func() time.Time
	logger   *slog.Logger
	onExpire func(key string, now time.Time)
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now as the source of Now.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// WithLogger sets the logger used for expiry and flush events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithExpireHook registers fn to run for every key lazy expiry erases, with
// the instant of the erasure. fn runs under the store's exclusive locks and
// must not call back into the store.
func WithExpireHook(fn func(key string, now time.Time)) Option {
	return func(s *Store) { s.onExpire = fn }
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		keys:   newKeyTable(),
		values: newArena(),
		ledger: newAccessLedger(),
		clock:  time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now reads the store clock. Callers take it once per command and pass the
// same instant to every operation the command performs.
func (s *Store) Now() time.Time {
	return s.clock()
}

type access uint8

const (
	noAccess access = iota
	sharedAccess
	exclusiveAccess
)

// locks names the access a step needs on each structure.
type locks struct {
	keys, values, ledger access
}

var (
	readKeys    = locks{keys: sharedAccess}
	readValues  = locks{keys: sharedAccess, values: sharedAccess}
	stampLedger = locks{keys: sharedAccess, ledger: exclusiveAccess}
	readLedger  = locks{ledger: sharedAccess}
	writeAll    = locks{keys: exclusiveAccess, values: exclusiveAccess, ledger: exclusiveAccess}
)

// acquire takes the requested locks in the fixed order keys, values, ledger
// and returns a func releasing them in reverse.
func (s *Store) acquire(l locks) (release func()) {
	lockRW(&s.keysMu, l.keys)
	lockRW(&s.valuesMu, l.values)
	lockRW(&s.ledgerMu, l.ledger)
	return func() {
		unlockRW(&s.ledgerMu, l.ledger)
		unlockRW(&s.valuesMu, l.values)
		unlockRW(&s.keysMu, l.keys)
	}
}

func lockRW(mu *sync.RWMutex, a access) {
	switch a {
	case sharedAccess:
		mu.RLock()
	case exclusiveAccess:
		mu.Lock()
	}
}

func unlockRW(mu *sync.RWMutex, a access) {
	switch a {
	case sharedAccess:
		mu.RUnlock()
	case exclusiveAccess:
		mu.Unlock()
	}
}

// liveLocked returns the entry for name if it exists and has not expired at
// now. Callers hold at least the shared keys lock.
func (s *Store) liveLocked(name string, now time.Time) (*KeyEntry, bool) {
	e, ok := s.keys.lookup(name)
	if !ok || e.expired(now) {
		return nil, false
	}
	return e, true
}

// eraseLocked removes name from all three structures. Callers hold writeAll.
func (s *Store) eraseLocked(name string) bool {
	e, ok := s.keys.lookup(name)
	if !ok {
		return false
	}
	if !s.values.remove(e.Ref) {
		panic("store: key " + name + " points at a freed value " + e.Ref.String())
	}
	s.keys.remove(name)
	s.ledger.forget(name)
	return true
}

// writeLocked replaces whatever name held with v. The previous value is
// destroyed first; the entry is recreated rather than mutated. Callers hold
// writeAll.
func (s *Store) writeLocked(name string, v Value, ttl *Deadline) *KeyEntry {
	s.eraseLocked(name)
	e := &KeyEntry{Name: name, Ref: s.values.insert(v), TTL: ttl}
	s.keys.put(e)
	return e
}

// ExpireScan erases those of keys whose ttl has passed at now and returns
// how many it erased. The scan runs under the shared keys lock and only
// escalates to exclusive locks when something has to go.
func (s *Store) ExpireScan(keys []string, now time.Time) int {
	release := s.acquire(readKeys)
	var expired []string
	for _, k := range keys {
		if e, ok := s.keys.lookup(k); ok && e.expired(now) {
			expired = append(expired, k)
		}
	}
	release()
	return s.eraseExpired(expired, now)
}

// ExpireScanAll is ExpireScan over the whole keyspace.
func (s *Store) ExpireScanAll(now time.Time) int {
	release := s.acquire(readKeys)
	var expired []string
	for name, e := range s.keys.entries {
		if e.expired(now) {
			expired = append(expired, name)
		}
	}
	release()
	return s.eraseExpired(expired, now)
}

func (s *Store) eraseExpired(names []string, now time.Time) int {
	if len(names) == 0 {
		return 0
	}
	release := s.acquire(writeAll)
	defer release()

	n := 0
	for _, name := range names {
		// The key may have been rewritten between the scan and the escalation.
		if e, ok := s.keys.lookup(name); ok && e.expired(now) {
			s.eraseLocked(name)
			n++
			s.logger.Debug("key expired", "key", name)
			if s.onExpire != nil {
				s.onExpire(name, now)
			}
		}
	}
	return n
}

// Touch stamps the keys that still exist with now.
func (s *Store) Touch(keys []string, now time.Time) {
	release := s.acquire(stampLedger)
	defer release()

	for _, k := range keys {
		if _, ok := s.liveLocked(k, now); ok {
			s.ledger.stamp(k, now)
		}
	}
}

// LastAccess returns when key was last touched by a command.
func (s *Store) LastAccess(key string) (time.Time, bool) {
	release := s.acquire(readLedger)
	defer release()
	return s.ledger.lastAccess(key)
}

// Contains reports whether key is present at now, erasing it first if its
// ttl has passed.
func (s *Store) Contains(key string, now time.Time) bool {
	s.ExpireScan([]string{key}, now)

	release := s.acquire(readKeys)
	defer release()
	_, ok := s.liveLocked(key, now)
	return ok
}

// Exists counts how many of keys are present. A key named twice counts twice.
func (s *Store) Exists(keys []string, now time.Time) int64 {
	s.ExpireScan(keys, now)
	defer s.Touch(keys, now)

	release := s.acquire(readKeys)
	defer release()

	var n int64
	for _, k := range keys {
		if _, ok := s.liveLocked(k, now); ok {
			n++
		}
	}
	return n
}

// Erase removes key together with its value and ledger stamp. It reports
// whether the key existed.
func (s *Store) Erase(key string) bool {
	release := s.acquire(writeAll)
	defer release()
	return s.eraseLocked(key)
}

// Del erases keys and returns how many were present.
func (s *Store) Del(keys []string, now time.Time) int64 {
	s.ExpireScan(keys, now)

	release := s.acquire(writeAll)
	defer release()

	var n int64
	for _, k := range keys {
		if s.eraseLocked(k) {
			n++
		}
	}
	return n
}

// Flush removes every key, value and ledger stamp.
func (s *Store) Flush() {
	release := s.acquire(writeAll)
	defer release()

	n := s.keys.len()
	s.keys.clear()
	s.values.clear()
	s.ledger.clear()
	s.logger.Debug("keyspace flushed", "keys", n)
}

// Keys returns the present keys matching a glob pattern, sorted.
func (s *Store) Keys(pattern string, now time.Time) ([]string, error) {
	if err := validatePattern(pattern); err != nil {
		return nil, err
	}
	s.ExpireScanAll(now)

	release := s.acquire(readKeys)
	defer release()

	out := []string{}
	for name, e := range s.keys.entries {
		if e.expired(now) {
			continue
		}
		if matchPattern(pattern, name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Len returns the number of present keys.
func (s *Store) Len(now time.Time) int {
	s.ExpireScanAll(now)

	release := s.acquire(readKeys)
	defer release()
	return s.keys.len()
}

// Type returns the kind name of the value at key, or "none".
func (s *Store) Type(key string, now time.Time) string {
	s.ExpireScan([]string{key}, now)
	defer s.Touch([]string{key}, now)

	release := s.acquire(readValues)
	defer release()

	e, ok := s.liveLocked(key, now)
	if !ok {
		return "none"
	}
	return s.values.mustGet(e.Ref).Kind().String()
}

// TTLSeconds returns -2 when key is absent, -1 when it has no ttl, and the
// seconds left otherwise.
func (s *Store) TTLSeconds(key string, now time.Time) int64 {
	return s.ttl(key, now, Deadline.SecondsLeft)
}

// TTLMillis is TTLSeconds in milliseconds.
func (s *Store) TTLMillis(key string, now time.Time) int64 {
	return s.ttl(key, now, Deadline.MillisLeft)
}

func (s *Store) ttl(key string, now time.Time, left func(Deadline, time.Time) int64) int64 {
	s.ExpireScan([]string{key}, now)
	defer s.Touch([]string{key}, now)

	release := s.acquire(readKeys)
	defer release()

	e, ok := s.liveLocked(key, now)
	switch {
	case !ok:
		return -2
	case e.TTL == nil:
		return -1
	default:
		return left(*e.TTL, now)
	}
}

// SetTTL gives key a ttl of d from now. A zero d expires the key on the
// spot; a negative d is rejected.
func (s *Store) SetTTL(key string, d time.Duration, now time.Time) (Deadline, error) {
	if d < 0 {
		return Deadline{}, ErrNegativeTTL
	}
	deadline := ExpiresIn(now, d)
	if _, err := s.ExpireAt(key, deadline, now); err != nil {
		return Deadline{}, err
	}
	return deadline, nil
}

// ExpireAt attaches deadline to key. A deadline already passed at now erases
// the key. It fails with ErrNoSuchKey when key is absent.
func (s *Store) ExpireAt(key string, deadline Deadline, now time.Time) (bool, error) {
	s.ExpireScan([]string{key}, now)
	defer s.Touch([]string{key}, now)

	release := s.acquire(writeAll)
	defer release()

	e, ok := s.liveLocked(key, now)
	if !ok {
		return false, ErrNoSuchKey
	}
	if deadline.HasExpired(now) {
		s.eraseLocked(key)
		return true, nil
	}
	if deadline.IsForever() {
		e.TTL = nil
		return true, nil
	}
	e.TTL = &deadline
	return true, nil
}

// Persist drops the ttl of key and reports whether there was one.
func (s *Store) Persist(key string, now time.Time) bool {
	s.ExpireScan([]string{key}, now)
	defer s.Touch([]string{key}, now)

	release := s.acquire(writeAll)
	defer release()

	e, ok := s.liveLocked(key, now)
	if !ok || e.TTL == nil {
		return false
	}
	e.TTL = nil
	return true
}
