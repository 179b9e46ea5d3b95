// Package transcript persists finished conversation turns to a local sqlite
// database so sessions can be reviewed and exported after the fact.
package transcript

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/rosettacloud/shellchat/pkg/session"
)

// SessionInfo summarizes one recorded session.
type SessionInfo struct {
	SessionID string
	StartedAt time.Time
	Messages  int
}

type Store struct {
	db *sql.DB
}

func Open(dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("transcript store: empty dsn")
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "transcript store: open")
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			started_at_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at_ms INTEGER NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		);`,
		`CREATE INDEX IF NOT EXISTS messages_by_session ON messages(session_id, created_at_ms);`,
	}
	for _, st := range stmts {
		if _, err := s.db.Exec(st); err != nil {
			return errors.Wrap(err, "transcript store: migrate")
		}
	}
	return nil
}

// Record appends one message to a session's transcript, creating the
// session row on first use.
func (s *Store) Record(ctx context.Context, sessionID string, m session.Message) error {
	if strings.TrimSpace(sessionID) == "" {
		return errors.New("transcript store: empty session id")
	}
	now := time.Now().UnixMilli()
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO sessions (session_id, started_at_ms) VALUES (?, ?)`,
		sessionID, now,
	); err != nil {
		return errors.Wrap(err, "transcript store: upsert session")
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO messages (id, session_id, role, content, created_at_ms) VALUES (?, ?, ?, ?, ?)`,
		m.ID, sessionID, string(m.Role), m.Content, m.Timestamp.UnixMilli(),
	); err != nil {
		return errors.Wrap(err, "transcript store: insert message")
	}
	return nil
}

// Messages returns a session's transcript in insertion order.
func (s *Store) Messages(ctx context.Context, sessionID string) ([]session.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, role, content, created_at_ms FROM messages WHERE session_id = ? ORDER BY created_at_ms, id`,
		sessionID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "transcript store: query messages")
	}
	defer func() { _ = rows.Close() }()

	var out []session.Message
	for rows.Next() {
		var m session.Message
		var role string
		var createdMs int64
		if err := rows.Scan(&m.ID, &role, &m.Content, &createdMs); err != nil {
			return nil, errors.Wrap(err, "transcript store: scan message")
		}
		m.Role = session.Role(role)
		m.Timestamp = time.UnixMilli(createdMs)
		out = append(out, m)
	}
	return out, errors.Wrap(rows.Err(), "transcript store: iterate messages")
}

// Sessions lists recorded sessions, most recent first.
func (s *Store) Sessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.session_id, s.started_at_ms, COUNT(m.id)
		FROM sessions s
		LEFT JOIN messages m ON m.session_id = s.session_id
		GROUP BY s.session_id, s.started_at_ms
		ORDER BY s.started_at_ms DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "transcript store: query sessions")
	}
	defer func() { _ = rows.Close() }()

	var out []SessionInfo
	for rows.Next() {
		var info SessionInfo
		var startedMs int64
		if err := rows.Scan(&info.SessionID, &startedMs, &info.Messages); err != nil {
			return nil, errors.Wrap(err, "transcript store: scan session")
		}
		info.StartedAt = time.UnixMilli(startedMs)
		out = append(out, info)
	}
	return out, errors.Wrap(rows.Err(), "transcript store: iterate sessions")
}
