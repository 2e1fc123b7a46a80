// Package store persists chat sessions in SQLite so a conversation can be
// replayed into a fresh strategy after restart.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/petasbytes/go-agent-context/memory"
)

// ErrNotFound is returned for an unknown session id.
var ErrNotFound = errors.New("store: session not found")

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	mode       TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS turns (
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	seq        INTEGER NOT NULL,
	role       TEXT NOT NULL,
	text       TEXT NOT NULL,
	parent     INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	PRIMARY KEY (session_id, seq)
);
`

// timeFormat has a fixed-width fraction so stored timestamps sort as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Session describes one stored conversation.
type Session struct {
	ID        string
	Mode      string
	CreatedAt time.Time
	Turns     int
}

// SQLite stores sessions and their turns. Safe for concurrent use.
type SQLite struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// Open opens or creates the database at path (":memory:" for a private
// in-memory database) and ensures the schema exists. If logger is nil, the
// default slog logger is used.
func Open(ctx context.Context, path string, logger *slog.Logger) (*SQLite, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	// One connection: SQLite has a single writer and ":memory:" is per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, stmt := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
		schema,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: init: %w", err)
		}
	}
	return &SQLite{db: db, logger: logger, now: time.Now}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// CreateSession starts a new session with a time-ordered UUIDv7 id.
func (s *SQLite) CreateSession(ctx context.Context, mode string) (Session, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Session{}, fmt.Errorf("store: new session id: %w", err)
	}
	sess := Session{ID: id.String(), Mode: mode, CreatedAt: s.now().UTC()}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, mode, created_at) VALUES (?, ?, ?)`,
		sess.ID, sess.Mode, sess.CreatedAt.Format(timeFormat),
	); err != nil {
		return Session{}, fmt.Errorf("store: create session: %w", err)
	}
	s.logger.Debug("session created", "session", sess.ID, "mode", mode)
	return sess, nil
}

// Session returns the session with id.
func (s *SQLite) Session(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT s.id, s.mode, s.created_at, COUNT(t.seq)
		FROM sessions s LEFT JOIN turns t ON t.session_id = s.id
		WHERE s.id = ?
		GROUP BY s.id`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Session{}, fmt.Errorf("store: get session: %w", err)
	}
	return sess, nil
}

// Sessions lists every session, oldest first.
func (s *SQLite) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.mode, s.created_at, COUNT(t.seq)
		FROM sessions s LEFT JOIN turns t ON t.session_id = s.id
		GROUP BY s.id
		ORDER BY s.created_at, s.id`)
	if err != nil {
		return nil, fmt.Errorf("store: list sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan session: %w", err)
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list sessions: %w", err)
	}
	return out, nil
}

// Append adds recs to the end of the session in one transaction.
func (s *SQLite) Append(ctx context.Context, sessionID string, recs ...memory.Record) error {
	if len(recs) == 0 {
		return nil
	}
	for _, r := range recs {
		if err := r.Turn().Validate(); err != nil {
			return fmt.Errorf("store: append: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE id = ?`, sessionID).Scan(&exists); err != nil {
		return fmt.Errorf("store: append: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}

	var next int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM turns WHERE session_id = ?`, sessionID,
	).Scan(&next); err != nil {
		return fmt.Errorf("store: next seq: %w", err)
	}

	now := s.now().UTC().Format(timeFormat)
	for i, r := range recs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO turns (session_id, seq, role, text, parent, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			sessionID, next+int64(i), string(r.Role), r.Text, r.Parent, now,
		); err != nil {
			return fmt.Errorf("store: insert turn: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// Turns returns the session's records in the order they were appended.
func (s *SQLite) Turns(ctx context.Context, sessionID string) ([]memory.Record, error) {
	if _, err := s.Session(ctx, sessionID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, text, parent FROM turns WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("store: list turns: %w", err)
	}
	defer rows.Close()

	var out []memory.Record
	for rows.Next() {
		var r memory.Record
		var role string
		if err := rows.Scan(&role, &r.Text, &r.Parent); err != nil {
			return nil, fmt.Errorf("store: scan turn: %w", err)
		}
		r.Role = memory.Role(role)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list turns: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(sc scanner) (Session, error) {
	var sess Session
	var created string
	if err := sc.Scan(&sess.ID, &sess.Mode, &created, &sess.Turns); err != nil {
		return Session{}, err
	}
	t, err := time.Parse(timeFormat, created)
	if err != nil {
		return Session{}, err
	}
	sess.CreatedAt = t
	return sess, nil
}
