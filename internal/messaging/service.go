// Package messaging provides the pluggable message delivery abstraction
// the funnel sends through.
//
// Three implementations exist: the Cloud API service (full interactive
// support), and the Twilio and whatsmeow services, which degrade
// interactive messages to numbered text menus.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/festibooth/boothbot/internal/models"
)

// ErrServiceStopped is returned when sending through a stopped service.
var ErrServiceStopped = errors.New("messaging service stopped")

// phoneNumberRegex strips every non-digit during canonicalization.
var phoneNumberRegex = regexp.MustCompile(`[^0-9]`)

// Service defines the send capabilities the funnel depends on.
type Service interface {
	// ValidateAndCanonicalizeRecipient validates and canonicalizes a
	// recipient identifier, returning the canonical phone number.
	ValidateAndCanonicalizeRecipient(recipient string) (string, error)

	// SendText sends a plain text message.
	SendText(ctx context.Context, to, body string) error

	// SendButtons sends an interactive reply-button message.
	SendButtons(ctx context.Context, to, body string, buttons []models.Button) error

	// SendList sends an interactive list message.
	SendList(ctx context.Context, to, header, body string, sections []models.ListSection) error

	// SendImage sends an image by URL with an optional caption.
	SendImage(ctx context.Context, to, url, caption string) error

	// SendVideo sends a video by URL with an optional caption.
	SendVideo(ctx context.Context, to, url, caption string) error

	// SendTyping toggles the typing indicator where the transport
	// supports it; implementations may treat it as a no-op.
	SendTyping(ctx context.Context, to string, typing bool) error
}

// CanonicalizePhone removes all non-numeric characters and validates
// the result has at least 6 digits.
func CanonicalizePhone(recipient string) (string, error) {
	if recipient == "" {
		return "", fmt.Errorf("recipient cannot be empty")
	}
	canonical := phoneNumberRegex.ReplaceAllString(recipient, "")
	if canonical == "" {
		return "", fmt.Errorf("invalid phone number: no digits found in recipient %q", recipient)
	}
	if len(canonical) < 6 {
		return "", fmt.Errorf("invalid phone number: %q is too short (minimum 6 digits required)", canonical)
	}
	return canonical, nil
}

// renderButtonsAsText degrades a button message to a numbered menu for
// transports without interactive support.
func renderButtonsAsText(body string, buttons []models.Button) string {
	var b strings.Builder
	b.WriteString(body)
	for i, btn := range buttons {
		fmt.Fprintf(&b, "\n%d. %s", i+1, btn.Title)
	}
	b.WriteString("\nResponde con el nombre de la opción.")
	return b.String()
}

// renderListAsText degrades a list message to a numbered menu.
func renderListAsText(header, body string, sections []models.ListSection) string {
	var b strings.Builder
	if header != "" {
		b.WriteString(header)
		b.WriteString("\n")
	}
	b.WriteString(body)
	n := 0
	for _, section := range sections {
		for _, row := range section.Rows {
			n++
			if row.Description != "" {
				fmt.Fprintf(&b, "\n%d. %s — %s", n, row.Title, row.Description)
			} else {
				fmt.Fprintf(&b, "\n%d. %s", n, row.Title)
			}
		}
	}
	b.WriteString("\nResponde con el nombre de la opción.")
	return b.String()
}
