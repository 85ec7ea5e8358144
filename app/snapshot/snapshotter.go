package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tikarammardi/ledis/app/resp"
)

// ErrNoSnapshot is returned by Restore when nothing was saved yet.
var ErrNoSnapshot = errors.New("no snapshot saved")

// Clock stamps saves.
type Clock interface {
	Now() time.Time
}

// Executor runs a replayed command at the instant it was first run.
type Executor interface {
	ExecuteAt(now time.Time, name string, args []string) resp.RespValue
}

// Options controls autosave.
type Options struct {
	// Interval is how often Run checks for pending changes.
	Interval time.Duration
	// Changes is the minimum number of writes that triggers a save.
	Changes int64
}

// Snapshotter stores replay plans of the journal in SQLite.
type Snapshotter struct {
	db       *sql.DB
	journal  *Journal
	clock    Clock
	opts     Options
	logger   *slog.Logger

	saveMu   sync.Mutex
	mu       sync.RWMutex
	lastSave time.Time
}

func New(db *sql.DB, journal *Journal, clock Clock, opts Options, logger *slog.Logger) *Snapshotter {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Changes < 1 {
		opts.Changes = 1
	}
	return &Snapshotter{
		db:       db,
		journal:  journal,
		clock:    clock,
		opts:     opts,
		logger:   logger.With("component", "snapshot"),
	}
}

// Plan returns the journaled writes a save stores. Each entry keeps the
// instant it ran at, so replay sees the same ttls and the same lazy
// erasures as the original run did.
func (s *Snapshotter) Plan() (plan []Entry, changes int64) {
	return s.journal.Snapshot()
}

// Save writes the current plan as the newest snapshot and drops older ones.
func (s *Snapshotter) Save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	plan, changes := s.Plan()
	now := s.clock.Now()

	err := transact(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO snapshots (created_at, commands) VALUES (?, ?)`,
			now.UnixMilli(), len(plan))
		if err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO snapshot_commands (snapshot_id, seq, run_at, payload) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()

		for seq, entry := range plan {
			payload := resp.Marshal(resp.BulkArray(entry.Argv))
			if _, err := stmt.ExecContext(ctx, id, seq, entry.At.UnixNano(), payload); err != nil {
				return fmt.Errorf("insert command %d: %w", seq, err)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE id <> ?`, id); err != nil {
			return fmt.Errorf("prune snapshots: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.journal.MarkSaved(changes)
	s.mu.Lock()
	s.lastSave = now
	s.mu.Unlock()
	s.logger.Info("snapshot saved", "commands", len(plan), "changes", changes)
	return nil
}

// Restore replays the newest snapshot through executor, each command at its
// recorded instant, and returns how many commands ran. Commands that fail
// are logged and skipped.
func (s *Snapshotter) Restore(ctx context.Context, executor Executor) (int, error) {
	var (
		id        int64
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at FROM snapshots ORDER BY id DESC LIMIT 1`).Scan(&id, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNoSnapshot
	}
	if err != nil {
		return 0, fmt.Errorf("find snapshot: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT run_at, payload FROM snapshot_commands WHERE snapshot_id = ? ORDER BY seq`, id)
	if err != nil {
		return 0, fmt.Errorf("read snapshot %d: %w", id, err)
	}
	defer func() { _ = rows.Close() }()

	var plan []Entry
	for rows.Next() {
		var (
			runAt   int64
			payload []byte
		)
		if err := rows.Scan(&runAt, &payload); err != nil {
			return 0, err
		}
		frame, err := resp.Parse(payload)
		if err != nil {
			return 0, fmt.Errorf("decode snapshot %d: %w", id, err)
		}
		argv, err := frame.Strings()
		if err != nil || len(argv) == 0 {
			return 0, fmt.Errorf("decode snapshot %d: malformed command", id)
		}
		plan = append(plan, Entry{At: time.Unix(0, runAt), Argv: argv})
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, entry := range plan {
		argv := entry.Argv
		if reply := executor.ExecuteAt(entry.At, argv[0], argv[1:]); reply.IsError() {
			s.logger.Warn("replay failed", "command", argv[0], "error", reply.Str())
		}
	}
	s.journal.MarkSaved(s.journal.Changes())

	s.mu.Lock()
	s.lastSave = time.UnixMilli(createdAt)
	s.mu.Unlock()
	s.logger.Info("snapshot restored", "commands", len(plan))
	return len(plan), nil
}

// LastSave returns when the last snapshot was written or restored.
func (s *Snapshotter) LastSave() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSave
}

// Run saves every Interval when at least Changes writes happened, until ctx
// is done.
func (s *Snapshotter) Run(ctx context.Context) error {
	if s.opts.Interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if s.journal.Changes() < s.opts.Changes {
				continue
			}
			if err := s.Save(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("autosave failed", "error", err)
			}
		}
	}
}
