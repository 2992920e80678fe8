package session

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jpalma/trak/internal/models"
)

//go:embed schema.sql
var schema string

// Keys under which the session is persisted
const (
	keyToken = "token"
	keyUser  = "user"
)

// Store holds the persisted session (bearer token plus cached user record)
// and miscellaneous app settings in a local sqlite database.
type Store struct {
	db *sql.DB
}

// Open creates the store at the default location under the XDG data directory.
func Open() (*Store, error) {
	path, err := storePath()
	if err != nil {
		return nil, err
	}
	return OpenAt(path)
}

// OpenAt creates the store at an explicit path and initializes the schema.
func OpenAt(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// storePath returns the path to the store file
func storePath() (string, error) {
	// Use XDG data directory or fallback to home directory
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}

	appDir := filepath.Join(dataDir, "trak")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", err
	}

	return filepath.Join(appDir, "trak.db"), nil
}

// Token returns the stored bearer token, or "" when signed out. Read fresh
// on every call so outgoing requests always carry the latest known token.
func (s *Store) Token() string {
	tok, err := s.GetSetting(keyToken)
	if err != nil {
		return ""
	}
	return tok
}

// Restore reads a previously saved session. It reports ok only when both
// the token and the user record are present. The token is not validated
// against the server; it is used until the server rejects it.
func (s *Store) Restore() (string, *models.User, bool) {
	tok, err := s.GetSetting(keyToken)
	if err != nil || tok == "" {
		return "", nil, false
	}
	raw, err := s.GetSetting(keyUser)
	if err != nil || raw == "" {
		return "", nil, false
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return "", nil, false
	}
	return tok, &user, true
}

// Save persists the token and user record in a single transaction.
func (s *Store) Save(token string, user *models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, kv := range [][2]string{{keyToken, token}, {keyUser, string(raw)}} {
		if _, err := tx.Exec(`
			INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, kv[0], kv[1]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Clear removes the persisted session. Safe to call repeatedly.
func (s *Store) Clear() error {
	_, err := s.db.Exec("DELETE FROM settings WHERE key IN (?, ?)", keyToken, keyUser)
	return err
}

// GetSetting retrieves a setting value by key
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetSetting sets a setting value
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
