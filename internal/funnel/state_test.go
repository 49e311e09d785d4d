package funnel

import (
	"testing"

	"github.com/festibooth/boothbot/internal/models"
	"github.com/festibooth/boothbot/internal/store"
)

func TestStateManagerPutBumpsVersion(t *testing.T) {
	m := NewStoreBackedStateManager(store.NewInMemoryStore())

	conv := &models.Conversation{
		Phone:        "5218110001111",
		CurrentState: models.StateInitialContact,
	}
	if err := m.Put(conv); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if conv.StateVersion != 1 {
		t.Errorf("StateVersion = %d, want 1", conv.StateVersion)
	}
	if conv.CreatedAt.IsZero() || conv.UpdatedAt.IsZero() {
		t.Error("Put must stamp CreatedAt and UpdatedAt")
	}

	created := conv.CreatedAt
	if err := m.Put(conv); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}
	if conv.StateVersion != 2 {
		t.Errorf("StateVersion = %d, want 2", conv.StateVersion)
	}
	if !conv.CreatedAt.Equal(created) {
		t.Error("CreatedAt must not change on subsequent Puts")
	}

	got, err := m.Get("5218110001111")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil || got.StateVersion != 2 {
		t.Errorf("stored conversation = %+v", got)
	}
}

func TestStateManagerPutRequiresPhone(t *testing.T) {
	m := NewStoreBackedStateManager(store.NewInMemoryStore())
	if err := m.Put(&models.Conversation{}); err == nil {
		t.Error("expected error for conversation without phone")
	}
	if err := m.Put(nil); err == nil {
		t.Error("expected error for nil conversation")
	}
}

func TestStateManagerGetUnknownPhone(t *testing.T) {
	m := NewStoreBackedStateManager(store.NewInMemoryStore())
	got, err := m.Get("5218110001111")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for unknown phone, got %+v", got)
	}
}

func TestStateManagerDelete(t *testing.T) {
	m := NewStoreBackedStateManager(store.NewInMemoryStore())
	_ = m.Put(&models.Conversation{Phone: "5218110001111", CurrentState: models.StateFinalized})
	if err := m.Delete("5218110001111"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	got, _ := m.Get("5218110001111")
	if got != nil {
		t.Error("expected nil after delete")
	}
}
