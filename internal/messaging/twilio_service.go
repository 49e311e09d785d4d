package messaging

import (
	"context"
	"log/slog"

	"github.com/festibooth/boothbot/internal/models"
	"github.com/festibooth/boothbot/internal/twiliowhatsapp"
)

// TwilioService implements Service on top of the Twilio WhatsApp API.
// Twilio has no reply-button or list support, so interactive messages
// are degraded to numbered text menus.
type TwilioService struct {
	client twiliowhatsapp.Sender
}

// NewTwilioService creates a new TwilioService around a Twilio sender.
func NewTwilioService(client twiliowhatsapp.Sender) *TwilioService {
	return &TwilioService{client: client}
}

// ValidateAndCanonicalizeRecipient validates and canonicalizes a
// WhatsApp phone number.
func (s *TwilioService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	canonical, err := CanonicalizePhone(recipient)
	if err != nil {
		slog.Debug("TwilioService recipient validation failed", "error", err, "recipient", recipient)
		return "", err
	}
	return canonical, nil
}

// SendText sends a plain text message.
func (s *TwilioService) SendText(ctx context.Context, to, body string) error {
	return s.client.SendMessage(ctx, to, body)
}

// SendButtons degrades the button message to a numbered text menu.
func (s *TwilioService) SendButtons(ctx context.Context, to, body string, buttons []models.Button) error {
	return s.client.SendMessage(ctx, to, renderButtonsAsText(body, buttons))
}

// SendList degrades the list message to a numbered text menu.
func (s *TwilioService) SendList(ctx context.Context, to, header, body string, sections []models.ListSection) error {
	return s.client.SendMessage(ctx, to, renderListAsText(header, body, sections))
}

// SendImage sends an image by URL.
func (s *TwilioService) SendImage(ctx context.Context, to, url, caption string) error {
	return s.client.SendMedia(ctx, to, url, caption)
}

// SendVideo sends a video by URL.
func (s *TwilioService) SendVideo(ctx context.Context, to, url, caption string) error {
	return s.client.SendMedia(ctx, to, url, caption)
}

// SendTyping is not supported by the Twilio WhatsApp channel.
func (s *TwilioService) SendTyping(ctx context.Context, to string, typing bool) error {
	slog.Debug("TwilioService SendTyping ignored", "to", to, "typing", typing)
	return nil
}
