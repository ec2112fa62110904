// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/pollen-tui/internal/model"
)

// Record keys. The two records are independent: saving one never touches
// the other.
const (
	keyChats    = "chats"
	keySettings = "settings"
)

// ErrNotFound is returned when a record has never been saved.
var ErrNotFound = errors.New("record not found")

// Schema: a single key-value table. Each record is replaced whole on
// every save, mirroring the read-modify-write-whole-collection strategy
// the rest of the app assumes.
const schema = `
CREATE TABLE IF NOT EXISTS records (
    key   TEXT PRIMARY KEY,
    value BLOB NOT NULL
) WITHOUT ROWID;
`

// Theme names accepted in settings.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// Settings is the persisted settings record.
type Settings struct {
	APIKey string `json:"apiKey"`
	Theme  string `json:"theme"`
}

// DefaultSettings returns the settings used before the first save.
func DefaultSettings() Settings {
	return Settings{Theme: ThemeSystem}
}

// Store is the durable record store.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the standard database location,
// ~/.pollen/pollen.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".pollen", "pollen.db"), nil
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// RELIABILITY: WAL keeps the previous record intact if the process
	// dies mid-save.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveChats replaces the chats record with the given list, preserving
// order.
func (s *Store) SaveChats(chats []*model.Chat) error {
	data, err := json.Marshal(chats)
	if err != nil {
		return fmt.Errorf("failed to encode chats: %w", err)
	}
	return s.put(keyChats, data)
}

// LoadChats returns the persisted chat list in saved order. A store that
// has never saved chats yields an empty list, not an error.
func (s *Store) LoadChats() ([]*model.Chat, error) {
	data, err := s.get(keyChats)
	if errors.Is(err, ErrNotFound) {
		return []*model.Chat{}, nil
	}
	if err != nil {
		return nil, err
	}

	var chats []*model.Chat
	if err := json.Unmarshal(data, &chats); err != nil {
		return nil, fmt.Errorf("failed to decode chats record: %w", err)
	}
	if chats == nil {
		chats = []*model.Chat{}
	}
	return chats, nil
}

// SaveSettings replaces the settings record.
func (s *Store) SaveSettings(settings Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return s.put(keySettings, data)
}

// LoadSettings returns the persisted settings, or defaults when none
// were ever saved.
func (s *Store) LoadSettings() (Settings, error) {
	data, err := s.get(keySettings)
	if errors.Is(err, ErrNotFound) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, err
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings record: %w", err)
	}
	if settings.Theme == "" {
		settings.Theme = ThemeSystem
	}
	return settings, nil
}

func (s *Store) put(key string, value []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO records (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write %s record: %w", key, err)
	}
	return nil
}

func (s *Store) get(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM records WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s record: %w", key, err)
	}
	return value, nil
}
