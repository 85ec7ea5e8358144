package store

import "time"

// KeyEntry binds a key name to its value in the arena and an optional ttl.
type KeyEntry struct {
	Name string
	Ref  Ref
	TTL  *Deadline
}

// expired reports whether the entry carries a ttl that has passed at now.
func (e *KeyEntry) expired(now time.Time) bool {
	return e.TTL != nil && e.TTL.HasExpired(now)
}

// keyTable maps key names to entries. Store guards it with its keys lock.
type keyTable struct {
	entries map[string]*KeyEntry
}

func newKeyTable() *keyTable {
	return &keyTable{entries: make(map[string]*KeyEntry)}
}

func (t *keyTable) lookup(name string) (*KeyEntry, bool) {
	e, ok := t.entries[name]
	return e, ok
}

func (t *keyTable) put(e *KeyEntry) {
	t.entries[e.Name] = e
}

func (t *keyTable) remove(name string) {
	delete(t.entries, name)
}

func (t *keyTable) clear() {
	t.entries = make(map[string]*KeyEntry)
}

func (t *keyTable) len() int {
	return len(t.entries)
}

// accessLedger records when each key was last touched by a command.
// Store guards it with its ledger lock.
type accessLedger struct {
	stamps map[string]time.Time
}

func newAccessLedger() *accessLedger {
	return &accessLedger{stamps: make(map[string]time.Time)}
}

func (l *accessLedger) stamp(name string, at time.Time) {
	l.stamps[name] = at
}

func (l *accessLedger) forget(name string) {
	delete(l.stamps, name)
}

func (l *accessLedger) lastAccess(name string) (time.Time, bool) {
	at, ok := l.stamps[name]
	return at, ok
}

func (l *accessLedger) clear() {
	l.stamps = make(map[string]time.Time)
}
