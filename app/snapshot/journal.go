package snapshot

import (
	"slices"
	"strings"
	"sync"
	"time"
)

// Entry is one journaled write and the instant it ran at.
type Entry struct {
	At   time.Time
	Argv []string
}

// Journal records the writes applied to the keyspace since the last FLUSHDB,
// in the order they were applied. Replaying every entry at its own instant
// rebuilds the keyspace, ttl deadlines included.
type Journal struct {
	mu      sync.Mutex
	entries []Entry
	changes int64
}

func NewJournal() *Journal {
	return &Journal{}
}

// Record appends argv run at now. FLUSHDB empties the journal instead.
func (j *Journal) Record(now time.Time, argv []string) {
	if len(argv) == 0 {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	j.changes++
	if strings.EqualFold(argv[0], "FLUSHDB") {
		j.entries = nil
		return
	}
	j.entries = append(j.entries, Entry{At: now, Argv: slices.Clone(argv)})
}

// Expired journals the lazy erasure of key as a DEL, so that writes which
// found the key gone replay against the same empty slot.
func (j *Journal) Expired(key string, now time.Time) {
	j.Record(now, []string{"DEL", key})
}

// Snapshot returns a copy of the entries and the change counter at the time
// of the copy.
func (j *Journal) Snapshot() (entries []Entry, changes int64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return slices.Clone(j.entries), j.changes
}

// Changes returns how many writes were recorded since the last MarkSaved.
func (j *Journal) Changes() int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.changes
}

// MarkSaved subtracts the n changes a save covered.
func (j *Journal) MarkSaved(n int64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.changes = max(j.changes-n, 0)
}

// Len returns the number of journaled commands.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}
