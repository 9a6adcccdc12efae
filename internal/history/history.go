// Package history archives completed sessions in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fakeyudi/labclock/internal/schedule"
)

//go:embed migrations.sql
var migrationsFS embed.FS

// Entry is one archived session.
type Entry struct {
	ID         string
	Device     string
	Note       string
	StartedAt  time.Time
	EndedAt    time.Time
	ExportPath string
	ArchivedAt time.Time
	Tasks      schedule.Schedule // only populated by Get
}

// ErrNotFound is returned by Get for an unknown session ID.
var ErrNotFound = errors.New("session not found in history")

// Store is the session archive.
type Store struct {
	db *sql.DB
}

// DefaultPath returns history.db inside dataDir.
func DefaultPath(dataDir string) string {
	return filepath.Join(dataDir, "history.db")
}

// Open opens (creating if needed) the archive at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, _ = db.ExecContext(ctx, "PRAGMA journal_mode = WAL")
	_, _ = db.ExecContext(ctx, "PRAGMA foreign_keys = ON")

	st := &Store{db: db}
	if err := st.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating history: %w", err)
	}
	return st, nil
}

func (s *Store) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Archive stores a completed session and its final schedule. Archiving the
// same ID twice replaces the earlier record.
func (s *Store) Archive(ctx context.Context, e Entry, tasks schedule.Schedule) (err error) {
	if e.ArchivedAt.IsZero() {
		e.ArchivedAt = time.Now()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM session_tasks WHERE session_id = ?`, e.ID); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions(id, device, note, started_at, ended_at, export_path, archived_at)
		 VALUES(?,?,?,?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET
		   device=excluded.device, note=excluded.note, started_at=excluded.started_at,
		   ended_at=excluded.ended_at, export_path=excluded.export_path, archived_at=excluded.archived_at`,
		e.ID, e.Device, e.Note, fmtTime(e.StartedAt), fmtTime(e.EndedAt), nullStr(e.ExportPath), fmtTime(e.ArchivedAt),
	)
	if err != nil {
		return err
	}
	for i, t := range tasks {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO session_tasks(session_id, position, name, duration_s, planned_start, planned_end)
			 VALUES(?,?,?,?,?,?)`,
			e.ID, i, t.Name, int64(t.Duration/time.Second), fmtTime(t.PlannedStart), fmtTime(t.PlannedEnd),
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// List returns the most recently archived sessions first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	q := `SELECT id, device, note, started_at, ended_at, COALESCE(export_path, ''), archived_at
	      FROM sessions ORDER BY archived_at DESC, id`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Get returns one archived session with its tasks.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, device, note, started_at, ended_at, COALESCE(export_path, ''), archived_at
		 FROM sessions WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, duration_s, planned_start, planned_end
		 FROM session_tasks WHERE session_id = ? ORDER BY position`, id)
	if err != nil {
		return Entry{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			t          schedule.ScheduledTask
			secs       int64
			start, end string
		)
		if err := rows.Scan(&t.Name, &secs, &start, &end); err != nil {
			return Entry{}, err
		}
		t.Duration = time.Duration(secs) * time.Second
		if t.PlannedStart, err = parseTime(start); err != nil {
			return Entry{}, err
		}
		if t.PlannedEnd, err = parseTime(end); err != nil {
			return Entry{}, err
		}
		e.Tasks = append(e.Tasks, t)
	}
	return e, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(r scanner) (Entry, error) {
	var (
		e                        Entry
		started, ended, archived string
	)
	if err := r.Scan(&e.ID, &e.Device, &e.Note, &started, &ended, &e.ExportPath, &archived); err != nil {
		return Entry{}, err
	}
	var err error
	if e.StartedAt, err = parseTime(started); err != nil {
		return Entry{}, err
	}
	if e.EndedAt, err = parseTime(ended); err != nil {
		return Entry{}, err
	}
	if e.ArchivedAt, err = parseTime(archived); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// timeLayout is fixed-width so stored timestamps sort lexically. Values are
// stored in UTC and read back in local time.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func fmtTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q in history: %w", s, err)
	}
	return t.Local(), nil
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
