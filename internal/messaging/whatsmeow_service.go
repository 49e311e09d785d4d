package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/festibooth/boothbot/internal/models"
	"github.com/festibooth/boothbot/internal/whatsapp"
)

// WhatsmeowService implements Service on top of a device-linked
// whatsmeow client. The linked-device transport only carries plain
// text here, so interactive messages are degraded to numbered menus
// and media is delivered as a captioned link.
type WhatsmeowService struct {
	client whatsapp.Sender
}

// NewWhatsmeowService creates a new WhatsmeowService around a whatsmeow
// sender (real client or mock).
func NewWhatsmeowService(client whatsapp.Sender) *WhatsmeowService {
	return &WhatsmeowService{client: client}
}

// ValidateAndCanonicalizeRecipient validates and canonicalizes a
// WhatsApp phone number.
func (s *WhatsmeowService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	canonical, err := CanonicalizePhone(recipient)
	if err != nil {
		slog.Debug("WhatsmeowService recipient validation failed", "error", err, "recipient", recipient)
		return "", err
	}
	return canonical, nil
}

// SendText sends a plain text message.
func (s *WhatsmeowService) SendText(ctx context.Context, to, body string) error {
	return s.client.SendMessage(ctx, to, body)
}

// SendButtons degrades the button message to a numbered text menu.
func (s *WhatsmeowService) SendButtons(ctx context.Context, to, body string, buttons []models.Button) error {
	return s.client.SendMessage(ctx, to, renderButtonsAsText(body, buttons))
}

// SendList degrades the list message to a numbered text menu.
func (s *WhatsmeowService) SendList(ctx context.Context, to, header, body string, sections []models.ListSection) error {
	return s.client.SendMessage(ctx, to, renderListAsText(header, body, sections))
}

// SendImage delivers the image as a captioned link.
func (s *WhatsmeowService) SendImage(ctx context.Context, to, url, caption string) error {
	return s.client.SendMessage(ctx, to, renderMediaAsText(url, caption))
}

// SendVideo delivers the video as a captioned link.
func (s *WhatsmeowService) SendVideo(ctx context.Context, to, url, caption string) error {
	return s.client.SendMessage(ctx, to, renderMediaAsText(url, caption))
}

// SendTyping is not wired through the whatsmeow wrapper.
func (s *WhatsmeowService) SendTyping(ctx context.Context, to string, typing bool) error {
	slog.Debug("WhatsmeowService SendTyping ignored", "to", to, "typing", typing)
	return nil
}

func renderMediaAsText(url, caption string) string {
	if caption == "" {
		return url
	}
	return fmt.Sprintf("%s\n%s", caption, url)
}
