// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/retype/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for completed sessions and resumable progress.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			path TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			correct_chars INTEGER NOT NULL,
			typed_chars INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			preserved_lines INTEGER NOT NULL,
			total_lines INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS progress (
			path TEXT PRIMARY KEY,
			target_text TEXT NOT NULL,
			typed_text TEXT NOT NULL,
			cursor_line INTEGER NOT NULL,
			cursor_col INTEGER NOT NULL,
			accumulated_ms INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_path ON sessions(path);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a completed typing run.
func (s *Store) InsertSession(ctx context.Context, rec model.SessionRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (path, started_at, ended_at, correct_chars, typed_chars, duration_ms, preserved_lines, total_lines)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Path,
		rec.StartedAt.Format(time.RFC3339Nano),
		rec.EndedAt.Format(time.RFC3339Nano),
		rec.CorrectChars,
		rec.TypedChars,
		rec.DurationMs,
		rec.PreservedLines,
		rec.TotalLines,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListSessions returns completed sessions filtered by stats config, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Path != "" {
		clauses = append(clauses, "path = ?")
		args = append(args, cfg.Path)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, path, started_at, ended_at, correct_chars, typed_chars, duration_ms, preserved_lines, total_lines
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionRecord
	for rows.Next() {
		var rec model.SessionRecord
		var startedAt, endedAt string
		if err := rows.Scan(&rec.ID, &rec.Path, &startedAt, &endedAt, &rec.CorrectChars, &rec.TypedChars, &rec.DurationMs, &rec.PreservedLines, &rec.TotalLines); err != nil {
			return nil, err
		}
		if rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if rec.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// SaveProgress upserts the resumable snapshot for a target file.
func (s *Store) SaveProgress(ctx context.Context, p model.Progress) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO progress (path, target_text, typed_text, cursor_line, cursor_col, accumulated_ms, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
			target_text = excluded.target_text,
			typed_text = excluded.typed_text,
			cursor_line = excluded.cursor_line,
			cursor_col = excluded.cursor_col,
			accumulated_ms = excluded.accumulated_ms,
			updated_at = excluded.updated_at`,
		p.Path,
		strings.Join(p.TargetLines, "\n"),
		strings.Join(p.TypedLines, "\n"),
		p.Cursor.Line,
		p.Cursor.Col,
		p.AccumulatedMs,
		p.UpdatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// LoadProgress returns the saved snapshot for a path, or nil when none exists.
func (s *Store) LoadProgress(ctx context.Context, path string) (*model.Progress, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT path, target_text, typed_text, cursor_line, cursor_col, accumulated_ms, updated_at
		 FROM progress WHERE path = ?`, path)

	var p model.Progress
	var targetText, typedText, updatedAt string
	err := row.Scan(&p.Path, &targetText, &typedText, &p.Cursor.Line, &p.Cursor.Col, &p.AccumulatedMs, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, err
	}
	p.TargetLines = strings.Split(targetText, "\n")
	p.TypedLines = strings.Split(typedText, "\n")
	return &p, nil
}

// DeleteProgress removes the saved snapshot for a path, if any.
func (s *Store) DeleteProgress(ctx context.Context, path string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM progress WHERE path = ?`, path)
	return err
}
