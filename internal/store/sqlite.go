// Package store provides storage backends for boothbot.
//
// This file implements the SQLite-backed store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/festibooth/boothbot/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists conversations and the message log in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN. The DSN
// is a file path; the parent directory is created when missing.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run SQLite migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied")

	return &SQLiteStore{db: db}, nil
}

// SaveConversation stores or replaces a conversation.
func (s *SQLiteStore) SaveConversation(c models.Conversation) error {
	dataJSON, err := marshalData(c.Data)
	if err != nil {
		slog.Error("SQLiteStore SaveConversation marshal failed", "error", err, "phone", c.Phone)
		return err
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO conversations (phone, current_state, data, state_version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.Phone, string(c.CurrentState), dataJSON, c.StateVersion, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		slog.Error("SQLiteStore SaveConversation failed", "error", err, "phone", c.Phone)
		return fmt.Errorf("failed to save conversation for %s: %w", c.Phone, err)
	}
	slog.Debug("SQLiteStore SaveConversation succeeded", "phone", c.Phone, "state", c.CurrentState, "version", c.StateVersion)
	return nil
}

// GetConversation retrieves a conversation, or nil when absent.
func (s *SQLiteStore) GetConversation(phone string) (*models.Conversation, error) {
	var c models.Conversation
	var state, dataJSON string

	err := s.db.QueryRow(`
		SELECT phone, current_state, data, state_version, created_at, updated_at
		FROM conversations WHERE phone = ?`, phone).Scan(
		&c.Phone, &state, &dataJSON, &c.StateVersion, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetConversation not found", "phone", phone)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetConversation failed", "error", err, "phone", phone)
		return nil, err
	}

	c.CurrentState = models.StateType(state)
	c.Data = unmarshalData(dataJSON, phone)
	slog.Debug("SQLiteStore GetConversation found", "phone", phone, "state", c.CurrentState)
	return &c, nil
}

// DeleteConversation removes a conversation.
func (s *SQLiteStore) DeleteConversation(phone string) error {
	_, err := s.db.Exec(`DELETE FROM conversations WHERE phone = ?`, phone)
	if err != nil {
		slog.Error("SQLiteStore DeleteConversation failed", "error", err, "phone", phone)
		return err
	}
	slog.Debug("SQLiteStore DeleteConversation succeeded", "phone", phone)
	return nil
}

// ListIdlePhones returns phones last updated before the cutoff.
func (s *SQLiteStore) ListIdlePhones(cutoff time.Time) ([]string, error) {
	rows, err := s.db.Query(`SELECT phone FROM conversations WHERE updated_at < ? ORDER BY phone`, cutoff)
	if err != nil {
		slog.Error("SQLiteStore ListIdlePhones query failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	var phones []string
	for rows.Next() {
		var phone string
		if err := rows.Scan(&phone); err != nil {
			slog.Error("SQLiteStore ListIdlePhones scan failed", "error", err)
			return nil, err
		}
		phones = append(phones, phone)
	}
	return phones, rows.Err()
}

// AddReceipt records an outbound send attempt.
func (s *SQLiteStore) AddReceipt(r models.Receipt) error {
	_, err := s.db.Exec(`INSERT INTO receipts (recipient, status, time) VALUES (?, ?, ?)`, r.To, r.Status, r.Time)
	if err != nil {
		slog.Error("SQLiteStore AddReceipt failed", "error", err, "to", r.To)
		return fmt.Errorf("failed to insert receipt for %s: %w", r.To, err)
	}
	return nil
}

// GetReceipts returns all recorded receipts.
func (s *SQLiteStore) GetReceipts() ([]models.Receipt, error) {
	rows, err := s.db.Query(`SELECT recipient, status, time FROM receipts`)
	if err != nil {
		slog.Error("SQLiteStore GetReceipts query failed", "error", err)
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	var receipts []models.Receipt
	for rows.Next() {
		var r models.Receipt
		if err := rows.Scan(&r.To, &r.Status, &r.Time); err != nil {
			slog.Error("SQLiteStore GetReceipts scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan receipt row: %w", err)
		}
		receipts = append(receipts, r)
	}
	return receipts, rows.Err()
}

// AddResponse records an inbound customer message.
func (s *SQLiteStore) AddResponse(r models.Response) error {
	_, err := s.db.Exec(`INSERT INTO responses (sender, body, time) VALUES (?, ?, ?)`, r.From, r.Body, r.Time)
	if err != nil {
		slog.Error("SQLiteStore AddResponse failed", "error", err, "from", r.From)
		return fmt.Errorf("failed to insert response from %s: %w", r.From, err)
	}
	return nil
}

// GetResponses returns all recorded inbound messages.
func (s *SQLiteStore) GetResponses() ([]models.Response, error) {
	rows, err := s.db.Query(`SELECT sender, body, time FROM responses`)
	if err != nil {
		slog.Error("SQLiteStore GetResponses query failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	var responses []models.Response
	for rows.Next() {
		var r models.Response
		if err := rows.Scan(&r.From, &r.Body, &r.Time); err != nil {
			slog.Error("SQLiteStore GetResponses scan failed", "error", err)
			return nil, err
		}
		responses = append(responses, r)
	}
	return responses, rows.Err()
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	return s.db.Close()
}

func marshalData(data map[models.DataKey]string) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalData(dataJSON, phone string) map[models.DataKey]string {
	if dataJSON == "" {
		return nil
	}
	data := make(map[models.DataKey]string)
	if err := json.Unmarshal([]byte(dataJSON), &data); err != nil {
		slog.Error("Store conversation data unmarshal failed", "error", err, "phone", phone)
		// Continue with empty data rather than failing the read.
		return make(map[models.DataKey]string)
	}
	return data
}
