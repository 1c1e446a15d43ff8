package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"alsdoctor/internal/config"
)

// ErrLocked is returned when another process holds the writer lock.
var ErrLocked = errors.New("history is locked by another writer")

// Store manages analysis history backed by SQLite.
type Store struct {
	db       *sql.DB
	path     string
	lockPath string
}

// Writes are retried while SQLite reports SQLITE_BUSY, doubling the pause
// each time up to busyMaxPause.
const (
	sqliteBusyCode = 5
	busyAttempts   = 5
	busyFirstPause = 10 * time.Millisecond
	busyMaxPause   = 200 * time.Millisecond
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	var coded interface{ Code() int }
	if errors.As(err, &coded) {
		return coded.Code()&0xff == sqliteBusyCode
	}
	return err != nil && strings.Contains(err.Error(), "database is locked")
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	pause := busyFirstPause
	for attempt := 1; ; attempt++ {
		_, err := s.db.ExecContext(ctx, query, args...)
		if err == nil || !isSQLiteBusy(err) || attempt == busyAttempts {
			return err
		}
		timer := time.NewTimer(pause)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		pause = min(pause*2, busyMaxPause)
	}
}

// Open initializes or connects to the history database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.HistoryPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lockPath: cfg.HistoryLockPath()}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// LockWriter takes the exclusive writer lock without blocking. The returned
// function releases it.
func (s *Store) LockWriter() (func() error, error) {
	lock := flock.New(s.lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire history lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrLocked, s.lockPath)
	}
	return lock.Unlock, nil
}
