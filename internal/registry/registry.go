// Package registry keeps a sqlite history of session bootstrap and
// teardown for `quay list --all`. It stores bootstrap metadata only —
// never a session's Status, which is always re-derived from the event log
// tail.
package registry

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/benbjohnson/clock"
	_ "modernc.org/sqlite"

	"github.com/quayproject/quay/internal/event"
	"github.com/quayproject/quay/internal/logging"
)

var dbLog = logging.ForComponent(logging.CompDB)

// DB wraps the sqlite registry. Multiple quay processes can read/write
// concurrently via WAL mode + busy timeout.
type DB struct {
	db    *sql.DB
	clock clock.Clock
}

// Session is one recorded session lifetime.
type Session struct {
	Name      string
	Dir       string
	PaneRef   string
	CreatedAt time.Time
	KilledAt  time.Time // zero while the session is alive
}

// Alive reports whether the session has not been torn down.
func (s Session) Alive() bool {
	return s.KilledAt.IsZero()
}

// DefaultPath returns the registry database path (~/.quay/registry.db).
func DefaultPath() string {
	return filepath.Join(event.DataDir(), "registry.db")
}

// Open creates or opens the registry at dbPath.
func Open(dbPath string) (*DB, error) {
	return OpenWithClock(dbPath, clock.New())
}

// OpenWithClock opens the registry with an injected clock, for tests.
func OpenWithClock(dbPath string, c clock.Clock) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("registry: mkdir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("registry: open: %w", err)
	}

	// WAL allows concurrent readers while writing
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("registry: wal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("registry: busy timeout: %w", err)
	}

	r := &DB{db: db, clock: c}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// Close checkpoints WAL and closes the database.
func (r *DB) Close() error {
	_, _ = r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return r.db.Close()
}

func (r *DB) migrate() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL,
			dir        TEXT NOT NULL,
			pane_ref   TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			killed_at  INTEGER
		)
	`)
	if err != nil {
		return fmt.Errorf("registry: migrate: %w", err)
	}
	return nil
}

// RecordCreated inserts a session lifetime row.
func (r *DB) RecordCreated(name, dir, paneRef string) error {
	_, err := r.db.Exec(
		`INSERT INTO sessions (name, dir, pane_ref, created_at) VALUES (?, ?, ?, ?)`,
		name, dir, paneRef, r.clock.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("registry: record created: %w", err)
	}
	dbLog.Debug("session_recorded", "name", name, "dir", dir)
	return nil
}

// RecordKilled marks all live rows for name as torn down.
func (r *DB) RecordKilled(name string) error {
	_, err := r.db.Exec(
		`UPDATE sessions SET killed_at = ? WHERE name = ? AND killed_at IS NULL`,
		r.clock.Now().Unix(), name,
	)
	if err != nil {
		return fmt.Errorf("registry: record killed: %w", err)
	}
	return nil
}

// RecordAllKilled marks every live row as torn down. Used by kill-all.
func (r *DB) RecordAllKilled() error {
	_, err := r.db.Exec(
		`UPDATE sessions SET killed_at = ? WHERE killed_at IS NULL`,
		r.clock.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("registry: record all killed: %w", err)
	}
	return nil
}

// List returns recorded sessions, newest first. With includeDead false,
// only live rows are returned.
func (r *DB) List(includeDead bool) ([]Session, error) {
	query := `SELECT name, dir, pane_ref, created_at, killed_at FROM sessions`
	if !includeDead {
		query += ` WHERE killed_at IS NULL`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("registry: list: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		var created int64
		var killed sql.NullInt64
		if err := rows.Scan(&s.Name, &s.Dir, &s.PaneRef, &created, &killed); err != nil {
			return nil, fmt.Errorf("registry: scan: %w", err)
		}
		s.CreatedAt = time.Unix(created, 0)
		if killed.Valid {
			s.KilledAt = time.Unix(killed.Int64, 0)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
