// Package crm forwards finalized booking requests to the sales team.
//
// Delivery is fire-and-forget: a lead notification must never block or
// fail the customer's conversation turn, so errors are logged and
// swallowed.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// DefaultTimeout bounds each lead delivery attempt.
const DefaultTimeout = 5 * time.Second

// Lead is the booking summary handed to sales when a conversation
// finalizes.
type Lead struct {
	Phone     string `json:"phone"`
	EventType string `json:"event_type"`
	EventDate string `json:"event_date"`
	Venue     string `json:"venue"`
	Services  string `json:"services"`
	Total     string `json:"total"`
	CreatedAt string `json:"created_at"`
}

// Reporter delivers leads to the sales channel.
type Reporter interface {
	Report(ctx context.Context, lead Lead)
}

// Opts holds configuration options for the HTTP reporter.
type Opts struct {
	WebhookURL string
	HTTPClient *http.Client
}

// Option defines a configuration option for the HTTP reporter.
type Option func(*Opts)

// WithWebhookURL sets the destination webhook.
func WithWebhookURL(url string) Option {
	return func(o *Opts) { o.WebhookURL = url }
}

// WithHTTPClient injects a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Opts) { o.HTTPClient = c }
}

// HTTPReporter posts each lead as JSON to a webhook.
type HTTPReporter struct {
	webhookURL string
	httpClient *http.Client
}

// NewHTTPReporter creates a webhook-backed reporter.
func NewHTTPReporter(opts ...Option) (*HTTPReporter, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.WebhookURL == "" {
		return nil, fmt.Errorf("webhook URL must be provided")
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTPReporter{webhookURL: cfg.WebhookURL, httpClient: cfg.HTTPClient}, nil
}

// Report delivers the lead in a background goroutine. Errors are
// logged, never returned.
func (r *HTTPReporter) Report(ctx context.Context, lead Lead) {
	go func() {
		body, err := json.Marshal(lead)
		if err != nil {
			slog.Error("CRM Report marshal failed", "error", err, "phone", lead.Phone)
			return
		}
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(sendCtx, http.MethodPost, r.webhookURL, bytes.NewReader(body))
		if err != nil {
			slog.Error("CRM Report request build failed", "error", err, "phone", lead.Phone)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := r.httpClient.Do(req)
		if err != nil {
			slog.Error("CRM Report delivery failed", "error", err, "phone", lead.Phone)
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			slog.Error("CRM Report rejected", "status", resp.StatusCode, "phone", lead.Phone)
			return
		}
		slog.Info("CRM Report delivered", "phone", lead.Phone, "event_date", lead.EventDate)
	}()
}

// NopReporter drops every lead (for deployments without a CRM hook and
// for tests).
type NopReporter struct{}

// Report does nothing.
func (NopReporter) Report(ctx context.Context, lead Lead) {}

// RecordingReporter records leads for test assertions.
type RecordingReporter struct {
	Leads []Lead
}

// Report appends the lead.
func (r *RecordingReporter) Report(ctx context.Context, lead Lead) {
	r.Leads = append(r.Leads, lead)
}
