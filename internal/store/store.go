// Package store provides storage backends for boothbot.
//
// It persists conversation state plus the inbound/outbound message log,
// with in-memory, SQLite, and PostgreSQL implementations behind one
// interface so persistence is swappable and testable without global
// state.
package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/festibooth/boothbot/internal/models"
)

// Store is the narrow persistence interface the funnel depends on.
type Store interface {
	// SaveConversation stores or replaces a conversation keyed by phone.
	SaveConversation(c models.Conversation) error

	// GetConversation retrieves a conversation, or nil when the sender
	// has never written.
	GetConversation(phone string) (*models.Conversation, error)

	// DeleteConversation removes a conversation.
	DeleteConversation(phone string) error

	// ListIdlePhones returns phones whose conversations were last
	// updated before the cutoff. Used by the eviction sweep.
	ListIdlePhones(cutoff time.Time) ([]string, error)

	// AddReceipt records an outbound send attempt.
	AddReceipt(r models.Receipt) error

	// GetReceipts returns all recorded receipts.
	GetReceipts() ([]models.Receipt, error)

	// AddResponse records an inbound customer message.
	AddResponse(r models.Response) error

	// GetResponses returns all recorded inbound messages.
	GetResponses() ([]models.Response, error)

	// Close releases backend resources.
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithSQLiteDSN sets a SQLite file path as the store DSN.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets a PostgreSQL connection string as the store DSN.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// InMemoryStore keeps everything in process memory. It backs tests and
// no-DSN deployments.
type InMemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]models.Conversation
	receipts      []models.Receipt
	responses     []models.Response
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{conversations: make(map[string]models.Conversation)}
}

// SaveConversation stores or replaces a conversation.
func (s *InMemoryStore) SaveConversation(c models.Conversation) error {
	if c.Phone == "" {
		return fmt.Errorf("conversation phone cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// Copy the data map so callers can keep mutating theirs.
	stored := c
	if c.Data != nil {
		stored.Data = make(map[models.DataKey]string, len(c.Data))
		for k, v := range c.Data {
			stored.Data[k] = v
		}
	}
	s.conversations[c.Phone] = stored
	return nil
}

// GetConversation retrieves a conversation, or nil when absent.
func (s *InMemoryStore) GetConversation(phone string) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conversations[phone]
	if !ok {
		return nil, nil
	}
	out := c
	if c.Data != nil {
		out.Data = make(map[models.DataKey]string, len(c.Data))
		for k, v := range c.Data {
			out.Data[k] = v
		}
	}
	return &out, nil
}

// DeleteConversation removes a conversation.
func (s *InMemoryStore) DeleteConversation(phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, phone)
	return nil
}

// ListIdlePhones returns phones last updated before the cutoff.
func (s *InMemoryStore) ListIdlePhones(cutoff time.Time) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var phones []string
	for phone, c := range s.conversations {
		if c.UpdatedAt.Before(cutoff) {
			phones = append(phones, phone)
		}
	}
	sort.Strings(phones)
	return phones, nil
}

// AddReceipt records an outbound send attempt.
func (s *InMemoryStore) AddReceipt(r models.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receipts = append(s.receipts, r)
	return nil
}

// GetReceipts returns all recorded receipts.
func (s *InMemoryStore) GetReceipts() ([]models.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Receipt(nil), s.receipts...), nil
}

// AddResponse records an inbound customer message.
func (s *InMemoryStore) AddResponse(r models.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, r)
	return nil
}

// GetResponses returns all recorded inbound messages.
func (s *InMemoryStore) GetResponses() ([]models.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Response(nil), s.responses...), nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }
