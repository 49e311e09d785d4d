package messaging

import (
	"context"
	"log/slog"

	"github.com/festibooth/boothbot/internal/cloudapi"
	"github.com/festibooth/boothbot/internal/models"
)

// CloudAPIService implements Service using the Meta WhatsApp Cloud API.
// It is the default provider and the only one with native interactive
// message support.
type CloudAPIService struct {
	client cloudapi.Sender
}

// NewCloudAPIService creates a new CloudAPIService around a Cloud API
// sender (real client or mock).
func NewCloudAPIService(client cloudapi.Sender) *CloudAPIService {
	return &CloudAPIService{client: client}
}

// ValidateAndCanonicalizeRecipient validates and canonicalizes a
// WhatsApp phone number.
func (s *CloudAPIService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	canonical, err := CanonicalizePhone(recipient)
	if err != nil {
		slog.Debug("CloudAPIService recipient validation failed", "error", err, "recipient", recipient)
		return "", err
	}
	return canonical, nil
}

// SendText sends a plain text message.
func (s *CloudAPIService) SendText(ctx context.Context, to, body string) error {
	return s.client.SendText(ctx, to, body)
}

// SendButtons sends an interactive reply-button message.
func (s *CloudAPIService) SendButtons(ctx context.Context, to, body string, buttons []models.Button) error {
	return s.client.SendButtons(ctx, to, body, buttons)
}

// SendList sends an interactive list message.
func (s *CloudAPIService) SendList(ctx context.Context, to, header, body string, sections []models.ListSection) error {
	return s.client.SendList(ctx, to, header, body, sections)
}

// SendImage sends an image by URL.
func (s *CloudAPIService) SendImage(ctx context.Context, to, url, caption string) error {
	return s.client.SendImage(ctx, to, url, caption)
}

// SendVideo sends a video by URL.
func (s *CloudAPIService) SendVideo(ctx context.Context, to, url, caption string) error {
	return s.client.SendVideo(ctx, to, url, caption)
}

// SendTyping is best-effort; the Cloud API ties typing indicators to a
// message id, which this sender does not track, so it is a logged no-op.
func (s *CloudAPIService) SendTyping(ctx context.Context, to string, typing bool) error {
	slog.Debug("CloudAPIService SendTyping ignored", "to", to, "typing", typing)
	return nil
}
