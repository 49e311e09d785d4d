package funnel

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/festibooth/boothbot/internal/models"
	"github.com/festibooth/boothbot/internal/store"
)

// StateManager is the narrow persistence surface the funnel mutates
// conversations through.
type StateManager interface {
	// Get retrieves a conversation, or nil when the sender is new.
	Get(phone string) (*models.Conversation, error)

	// Put stores the conversation, bumping its state version.
	Put(c *models.Conversation) error

	// Delete removes a conversation.
	Delete(phone string) error
}

// StoreBackedStateManager implements StateManager on top of a Store.
// Every Put increments StateVersion; the stale-reply guard compares
// versions, not states, so two visits to the same state are still
// distinguishable.
type StoreBackedStateManager struct {
	store store.Store
	now   func() time.Time
}

// NewStoreBackedStateManager creates a state manager over the given
// store.
func NewStoreBackedStateManager(st store.Store) *StoreBackedStateManager {
	return &StoreBackedStateManager{store: st, now: time.Now}
}

// Get retrieves a conversation, or nil when absent.
func (m *StoreBackedStateManager) Get(phone string) (*models.Conversation, error) {
	c, err := m.store.GetConversation(phone)
	if err != nil {
		slog.Error("StateManager Get failed", "error", err, "phone", phone)
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return c, nil
}

// Put bumps the state version and persists the conversation.
func (m *StoreBackedStateManager) Put(c *models.Conversation) error {
	if c == nil || c.Phone == "" {
		return fmt.Errorf("conversation with phone required")
	}
	now := m.now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	c.StateVersion++
	if err := m.store.SaveConversation(*c); err != nil {
		slog.Error("StateManager Put failed", "error", err, "phone", c.Phone, "state", c.CurrentState)
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	slog.Debug("StateManager Put succeeded", "phone", c.Phone, "state", c.CurrentState, "version", c.StateVersion)
	return nil
}

// Delete removes a conversation.
func (m *StoreBackedStateManager) Delete(phone string) error {
	if err := m.store.DeleteConversation(phone); err != nil {
		slog.Error("StateManager Delete failed", "error", err, "phone", phone)
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}
