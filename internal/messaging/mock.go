package messaging

import (
	"context"
	"sync"

	"github.com/festibooth/boothbot/internal/models"
)

// MockService implements Service and records every send (for tests).
type MockService struct {
	mu    sync.Mutex
	Sends []MockSend

	// TextErr, when set, is returned from SendText.
	TextErr error
}

// MockSend is one recorded outbound call.
type MockSend struct {
	To      string
	Body    string
	Kind    string // "text", "buttons", "list", "image", "video"
	URL     string
	Buttons []models.Button
}

// NewMockService creates an empty recording service.
func NewMockService() *MockService {
	return &MockService{}
}

// ValidateAndCanonicalizeRecipient canonicalizes using the shared helper.
func (m *MockService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return CanonicalizePhone(recipient)
}

func (m *MockService) SendText(ctx context.Context, to, body string) error {
	if m.TextErr != nil {
		return m.TextErr
	}
	m.record(MockSend{To: to, Body: body, Kind: "text"})
	return nil
}

func (m *MockService) SendButtons(ctx context.Context, to, body string, buttons []models.Button) error {
	m.record(MockSend{To: to, Body: body, Kind: "buttons", Buttons: buttons})
	return nil
}

func (m *MockService) SendList(ctx context.Context, to, header, body string, sections []models.ListSection) error {
	m.record(MockSend{To: to, Body: body, Kind: "list"})
	return nil
}

func (m *MockService) SendImage(ctx context.Context, to, url, caption string) error {
	m.record(MockSend{To: to, Body: caption, Kind: "image", URL: url})
	return nil
}

func (m *MockService) SendVideo(ctx context.Context, to, url, caption string) error {
	m.record(MockSend{To: to, Body: caption, Kind: "video", URL: url})
	return nil
}

func (m *MockService) SendTyping(ctx context.Context, to string, typing bool) error {
	return nil
}

func (m *MockService) record(s MockSend) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sends = append(m.Sends, s)
}

// SentBodies returns the bodies of all recorded sends in order.
func (m *MockService) SentBodies() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Sends))
	for i, s := range m.Sends {
		out[i] = s.Body
	}
	return out
}

// LastSend returns the most recent send, or a zero value when none.
func (m *MockService) LastSend() MockSend {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sends) == 0 {
		return MockSend{}
	}
	return m.Sends[len(m.Sends)-1]
}
