// Package store persists users, analysis sessions and chat transcripts
// in SQLite. Writes are best-effort: the engine works fine without a
// store, it just loses history.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/saishankar404/tidy/pkg/model"
)

// ErrNotFound is returned for missing rows.
var ErrNotFound = errors.New("not found")

// Store wraps the SQLite handle.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at basePath. Pass ":memory:" for
// an ephemeral store in tests.
func New(basePath string) (*Store, error) {
	var dbPath string
	if basePath == ":memory:" {
		dbPath = ":memory:"
	} else {
		if err := os.MkdirAll(basePath, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
		dbPath = filepath.Join(basePath, "tidy.db")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		settings TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL,
		last_active TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS analysis_sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL DEFAULT '',
		file_path TEXT NOT NULL,
		result TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_analysis_user ON analysis_sessions(user_id, created_at);

	CREATE TABLE IF NOT EXISTS chat_messages (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		code_suggestion TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_session ON chat_messages(user_id, session_id, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

// User is the persisted user record.
type User struct {
	ID         string          `json:"id"`
	Settings   json.RawMessage `json:"settings"`
	CreatedAt  time.Time       `json:"createdAt"`
	LastActive time.Time       `json:"lastActive"`
}

// GetUser loads one user or ErrNotFound.
func (s *Store) GetUser(id string) (*User, error) {
	var user User
	var settings, createdAt, lastActive string
	err := s.db.QueryRow(
		`SELECT id, settings, created_at, last_active FROM users WHERE id = ?`, id,
	).Scan(&user.ID, &settings, &createdAt, &lastActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	user.Settings = json.RawMessage(settings)
	user.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	user.LastActive, _ = time.Parse(time.RFC3339, lastActive)
	return &user, nil
}

// PutUser upserts a user's settings and bumps last_active.
func (s *Store) PutUser(id string, settings json.RawMessage) (*User, error) {
	if len(settings) == 0 {
		settings = json.RawMessage("{}")
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(`
		INSERT INTO users (id, settings, created_at, last_active)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET settings = excluded.settings, last_active = excluded.last_active`,
		id, string(settings), now, now)
	if err != nil {
		return nil, err
	}
	return s.GetUser(id)
}

// DeleteUser removes a user and their chat history.
func (s *Store) DeleteUser(id string) error {
	if _, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, id); err != nil {
		return err
	}
	_, err := s.db.Exec(`DELETE FROM chat_messages WHERE user_id = ?`, id)
	return err
}

// ---------------------------------------------------------------------------
// Analysis sessions
// ---------------------------------------------------------------------------

// AnalysisRecord is a stored analysis blob plus its metadata.
type AnalysisRecord struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId,omitempty"`
	FilePath  string          `json:"filePath"`
	Result    json.RawMessage `json:"result,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// SaveAnalysis persists one run result under a session id.
func (s *Store) SaveAnalysis(sessionID, userID, filePath string, result interface{}) error {
	blob, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal analysis result: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO analysis_sessions (id, user_id, file_path, result, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		sessionID, userID, filePath, string(blob), time.Now().UTC().Format(time.RFC3339))
	return err
}

// GetAnalysis loads the full blob of one session.
func (s *Store) GetAnalysis(sessionID string) (*AnalysisRecord, error) {
	var rec AnalysisRecord
	var result, createdAt string
	err := s.db.QueryRow(
		`SELECT id, user_id, file_path, result, created_at FROM analysis_sessions WHERE id = ?`,
		sessionID,
	).Scan(&rec.ID, &rec.UserID, &rec.FilePath, &result, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec.Result = json.RawMessage(result)
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &rec, nil
}

// ListAnalyses returns session metadata for a user, newest first,
// without the result blobs.
func (s *Store) ListAnalyses(userID string, limit int) ([]AnalysisRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, file_path, created_at FROM analysis_sessions
		WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AnalysisRecord
	for rows.Next() {
		var rec AnalysisRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.FilePath, &createdAt); err != nil {
			return nil, err
		}
		rec.UserID = userID
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ---------------------------------------------------------------------------
// Chat transcripts
// ---------------------------------------------------------------------------

// AppendChatMessage stores one transcript entry.
func (s *Store) AppendChatMessage(userID, sessionID string, msg model.ChatMessage) error {
	_, err := s.db.Exec(`
		INSERT INTO chat_messages (id, user_id, session_id, role, content, code_suggestion, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, userID, sessionID, msg.Role, msg.Content, msg.CodeSuggestion,
		msg.Timestamp.UTC().Format(time.RFC3339Nano))
	return err
}

// GetChatSession loads a transcript in order.
func (s *Store) GetChatSession(userID, sessionID string) ([]model.ChatMessage, error) {
	rows, err := s.db.Query(`
		SELECT id, role, content, code_suggestion, created_at FROM chat_messages
		WHERE user_id = ? AND session_id = ? ORDER BY created_at`, userID, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ChatMessage
	for rows.Next() {
		var msg model.ChatMessage
		var createdAt string
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &msg.CodeSuggestion, &createdAt); err != nil {
			return nil, err
		}
		msg.Timestamp, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, msg)
	}
	return out, rows.Err()
}
