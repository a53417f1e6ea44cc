package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// SessionRow represents a session in the database.
type SessionRow struct {
	Code      string
	GameType  string
	PlayerID  string
	Seed      int64
	Status    string // "playing", "finished"
	CreatedAt time.Time
}

// ResultRow is the outcome of one finished deal.
type ResultRow struct {
	SessionCode string    `json:"sessionCode"`
	PlayerID    string    `json:"playerId"`
	Score       int       `json:"score"`
	Outcome     string    `json:"outcome"`
	Captures    int       `json:"captures"`
	Turns       int       `json:"turns"`
	FinishedAt  time.Time `json:"finishedAt"`
}

// Store handles SQLite persistence.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database and runs migrations.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// :memory: databases are per connection
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	// WAL mode for better concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			code       TEXT PRIMARY KEY,
			game_type  TEXT NOT NULL,
			player_id  TEXT NOT NULL,
			seed       INTEGER NOT NULL DEFAULT 0,
			status     TEXT NOT NULL DEFAULT 'playing',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS match_state (
			session_code TEXT PRIMARY KEY REFERENCES sessions(code),
			state_json   TEXT NOT NULL,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS results (
			session_code TEXT PRIMARY KEY,
			player_id    TEXT NOT NULL,
			score        INTEGER NOT NULL,
			outcome      TEXT NOT NULL,
			captures     INTEGER NOT NULL,
			turns        INTEGER NOT NULL,
			finished_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS results_score ON results(score DESC);
	`)
	return err
}

const sessionColumns = "code, game_type, player_id, seed, status, created_at"

// CreateSession inserts a new session.
func (s *Store) CreateSession(code, gameType, playerID string, seed int64) error {
	_, err := s.db.Exec(
		"INSERT INTO sessions (code, game_type, player_id, seed, status) VALUES (?, ?, ?, ?, 'playing')",
		code, gameType, playerID, seed,
	)
	return err
}

// GetSession retrieves a session by code.
func (s *Store) GetSession(code string) (*SessionRow, error) {
	row := s.db.QueryRow("SELECT "+sessionColumns+" FROM sessions WHERE code = ?", code)
	var sr SessionRow
	if err := row.Scan(&sr.Code, &sr.GameType, &sr.PlayerID, &sr.Seed, &sr.Status, &sr.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session %s: %w", code, ErrNotFound)
		}
		return nil, err
	}
	return &sr, nil
}

// UpdateSessionStatus changes a session's status.
func (s *Store) UpdateSessionStatus(code, status string) error {
	_, err := s.db.Exec("UPDATE sessions SET status = ? WHERE code = ?", status, code)
	return err
}

// ListSessions returns all sessions with the given status (or all if status is empty).
func (s *Store) ListSessions(status string) ([]SessionRow, error) {
	var rows *sql.Rows
	var err error
	if status == "" {
		rows, err = s.db.Query("SELECT " + sessionColumns + " FROM sessions ORDER BY created_at DESC")
	} else {
		rows, err = s.db.Query("SELECT "+sessionColumns+" FROM sessions WHERE status = ? ORDER BY created_at DESC", status)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []SessionRow
	for rows.Next() {
		var sr SessionRow
		if err := rows.Scan(&sr.Code, &sr.GameType, &sr.PlayerID, &sr.Seed, &sr.Status, &sr.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, sr)
	}
	return result, rows.Err()
}

// SaveMatchState upserts match state JSON.
func (s *Store) SaveMatchState(sessionCode, stateJSON string) error {
	_, err := s.db.Exec(`
		INSERT INTO match_state (session_code, state_json, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(session_code) DO UPDATE SET state_json = excluded.state_json, updated_at = excluded.updated_at
	`, sessionCode, stateJSON)
	return err
}

// GetMatchState retrieves match state JSON.
func (s *Store) GetMatchState(sessionCode string) (string, error) {
	var stateJSON string
	err := s.db.QueryRow("SELECT state_json FROM match_state WHERE session_code = ?", sessionCode).Scan(&stateJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("match state %s: %w", sessionCode, ErrNotFound)
	}
	return stateJSON, err
}

// RecordResult stores the outcome of a finished deal. Recording the same
// session twice keeps the first result.
func (s *Store) RecordResult(r ResultRow) error {
	_, err := s.db.Exec(`
		INSERT INTO results (session_code, player_id, score, outcome, captures, turns)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_code) DO NOTHING
	`, r.SessionCode, r.PlayerID, r.Score, r.Outcome, r.Captures, r.Turns)
	return err
}

// TopResults returns the best scores, most recent first among equal scores.
func (s *Store) TopResults(limit int) ([]ResultRow, error) {
	rows, err := s.db.Query(`
		SELECT session_code, player_id, score, outcome, captures, turns, finished_at
		FROM results ORDER BY score DESC, finished_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []ResultRow
	for rows.Next() {
		var r ResultRow
		if err := rows.Scan(&r.SessionCode, &r.PlayerID, &r.Score, &r.Outcome, &r.Captures, &r.Turns, &r.FinishedAt); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// DeleteSession removes a session and its match state. Results are kept.
func (s *Store) DeleteSession(code string) error {
	_, err := s.db.Exec("DELETE FROM match_state WHERE session_code = ?", code)
	if err != nil {
		return err
	}
	_, err = s.db.Exec("DELETE FROM sessions WHERE code = ?", code)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
