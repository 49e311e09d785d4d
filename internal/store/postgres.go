// Package store provides storage backends for boothbot.
//
// This file implements the PostgreSQL-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/festibooth/boothbot/internal/models"
	_ "github.com/lib/pq"
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists conversations and the message log in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL store with the given DSN.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open PostgreSQL connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("PostgreSQL ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run PostgreSQL migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("PostgreSQL migrations applied")

	return &PostgresStore{db: db}, nil
}

// SaveConversation stores or replaces a conversation.
func (s *PostgresStore) SaveConversation(c models.Conversation) error {
	dataJSON, err := marshalData(c.Data)
	if err != nil {
		slog.Error("PostgresStore SaveConversation marshal failed", "error", err, "phone", c.Phone)
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO conversations (phone, current_state, data, state_version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (phone) DO UPDATE SET
			current_state = EXCLUDED.current_state,
			data = EXCLUDED.data,
			state_version = EXCLUDED.state_version,
			updated_at = EXCLUDED.updated_at`,
		c.Phone, string(c.CurrentState), dataJSON, c.StateVersion, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		slog.Error("PostgresStore SaveConversation failed", "error", err, "phone", c.Phone)
		return fmt.Errorf("failed to save conversation for %s: %w", c.Phone, err)
	}
	slog.Debug("PostgresStore SaveConversation succeeded", "phone", c.Phone, "state", c.CurrentState, "version", c.StateVersion)
	return nil
}

// GetConversation retrieves a conversation, or nil when absent.
func (s *PostgresStore) GetConversation(phone string) (*models.Conversation, error) {
	var c models.Conversation
	var state string
	var dataJSON sql.NullString

	err := s.db.QueryRow(`
		SELECT phone, current_state, data, state_version, created_at, updated_at
		FROM conversations WHERE phone = $1`, phone).Scan(
		&c.Phone, &state, &dataJSON, &c.StateVersion, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore GetConversation not found", "phone", phone)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetConversation failed", "error", err, "phone", phone)
		return nil, err
	}

	c.CurrentState = models.StateType(state)
	c.Data = unmarshalData(dataJSON.String, phone)
	slog.Debug("PostgresStore GetConversation found", "phone", phone, "state", c.CurrentState)
	return &c, nil
}

// DeleteConversation removes a conversation.
func (s *PostgresStore) DeleteConversation(phone string) error {
	_, err := s.db.Exec(`DELETE FROM conversations WHERE phone = $1`, phone)
	if err != nil {
		slog.Error("PostgresStore DeleteConversation failed", "error", err, "phone", phone)
		return err
	}
	slog.Debug("PostgresStore DeleteConversation succeeded", "phone", phone)
	return nil
}

// ListIdlePhones returns phones last updated before the cutoff.
func (s *PostgresStore) ListIdlePhones(cutoff time.Time) ([]string, error) {
	rows, err := s.db.Query(`SELECT phone FROM conversations WHERE updated_at < $1 ORDER BY phone`, cutoff)
	if err != nil {
		slog.Error("PostgresStore ListIdlePhones query failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	var phones []string
	for rows.Next() {
		var phone string
		if err := rows.Scan(&phone); err != nil {
			slog.Error("PostgresStore ListIdlePhones scan failed", "error", err)
			return nil, err
		}
		phones = append(phones, phone)
	}
	return phones, rows.Err()
}

// AddReceipt records an outbound send attempt.
func (s *PostgresStore) AddReceipt(r models.Receipt) error {
	_, err := s.db.Exec(`INSERT INTO receipts (recipient, status, time) VALUES ($1, $2, $3)`, r.To, r.Status, r.Time)
	if err != nil {
		slog.Error("PostgresStore AddReceipt failed", "error", err, "to", r.To)
		return fmt.Errorf("failed to insert receipt for %s: %w", r.To, err)
	}
	return nil
}

// GetReceipts returns all recorded receipts.
func (s *PostgresStore) GetReceipts() ([]models.Receipt, error) {
	rows, err := s.db.Query(`SELECT recipient, status, time FROM receipts`)
	if err != nil {
		slog.Error("PostgresStore GetReceipts query failed", "error", err)
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	var receipts []models.Receipt
	for rows.Next() {
		var r models.Receipt
		if err := rows.Scan(&r.To, &r.Status, &r.Time); err != nil {
			slog.Error("PostgresStore GetReceipts scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan receipt row: %w", err)
		}
		receipts = append(receipts, r)
	}
	return receipts, rows.Err()
}

// AddResponse records an inbound customer message.
func (s *PostgresStore) AddResponse(r models.Response) error {
	_, err := s.db.Exec(`INSERT INTO responses (sender, body, time) VALUES ($1, $2, $3)`, r.From, r.Body, r.Time)
	if err != nil {
		slog.Error("PostgresStore AddResponse failed", "error", err, "from", r.From)
		return fmt.Errorf("failed to insert response from %s: %w", r.From, err)
	}
	return nil
}

// GetResponses returns all recorded inbound messages.
func (s *PostgresStore) GetResponses() ([]models.Response, error) {
	rows, err := s.db.Query(`SELECT sender, body, time FROM responses`)
	if err != nil {
		slog.Error("PostgresStore GetResponses query failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	var responses []models.Response
	for rows.Next() {
		var r models.Response
		if err := rows.Scan(&r.From, &r.Body, &r.Time); err != nil {
			slog.Error("PostgresStore GetResponses scan failed", "error", err)
			return nil, err
		}
		responses = append(responses, r)
	}
	return responses, rows.Err()
}

// Close closes the PostgreSQL connection pool.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing PostgreSQL connection pool")
	return s.db.Close()
}
