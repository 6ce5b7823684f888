// Package journal keeps a small sqlite index of finished recordings. It never
// holds in-flight session state; rows are written once at shutdown and a
// failure to write one is a recoverable runtime error.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Entry is one finished recording.
type Entry struct {
	ID        string
	StartedAt time.Time
	DurationS float64
	Output    string
	Markers   int
	Segments  int
	Language  string
}

type Store struct {
	db *sql.DB
}

// DefaultPath puts the journal next to the config.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "rcrd", "journal.sqlite")
}

// Open opens (creating if needed) the journal database.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("journal dir: %w", err)
	}
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_journal_mode=WAL", path))
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping journal: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS recordings (
			id TEXT PRIMARY KEY,
			started_at REAL NOT NULL,
			duration_s REAL NOT NULL,
			output TEXT NOT NULL,
			markers INTEGER NOT NULL,
			segments INTEGER NOT NULL,
			language TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Add inserts one entry, assigning an id when the caller left it empty.
func (s *Store) Add(e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := s.db.Exec(`
		INSERT INTO recordings (id, started_at, duration_s, output, markers, segments, language)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID, float64(e.StartedAt.UnixMilli())/1000, e.DurationS, e.Output, e.Markers, e.Segments, e.Language)
	if err != nil {
		return fmt.Errorf("insert recording: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (s *Store) Recent(n int) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, duration_s, output, markers, segments, language
		FROM recordings
		ORDER BY started_at DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("query recordings: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var startedAt float64
		if err := rows.Scan(&e.ID, &startedAt, &e.DurationS, &e.Output,
			&e.Markers, &e.Segments, &e.Language); err != nil {
			return nil, fmt.Errorf("scan recording: %w", err)
		}
		e.StartedAt = time.UnixMilli(int64(startedAt * 1000))
		out = append(out, e)
	}
	return out, rows.Err()
}
