// Package availability answers whether a calendar date still has
// capacity for an event.
//
// The HTTP checker queries the booking backend; when it cannot reach
// it, the funnel treats the date as unavailable for automatic booking
// and routes the customer to a human.
package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout bounds each availability lookup.
const DefaultTimeout = 5 * time.Second

// Checker reports whether an ISO date (YYYY-MM-DD) can still be booked.
type Checker interface {
	Check(ctx context.Context, isoDate string) (bool, error)
}

// Opts holds configuration options for the HTTP checker.
type Opts struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Option defines a configuration option for the HTTP checker.
type Option func(*Opts)

// WithBaseURL sets the booking backend root.
func WithBaseURL(u string) Option {
	return func(o *Opts) { o.BaseURL = u }
}

// WithHTTPClient injects a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Opts) { o.HTTPClient = c }
}

// HTTPChecker queries GET {base}/availability?date=YYYY-MM-DD and
// expects {"available": bool}.
type HTTPChecker struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPChecker creates a backend-backed availability checker.
func NewHTTPChecker(opts ...Option) (*HTTPChecker, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL must be provided")
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTPChecker{baseURL: cfg.BaseURL, httpClient: cfg.HTTPClient}, nil
}

// Check returns whether the date is available. Transport and decode
// failures return an error; the caller decides the fallback.
func (c *HTTPChecker) Check(ctx context.Context, isoDate string) (bool, error) {
	u := fmt.Sprintf("%s/availability?date=%s", c.baseURL, url.QueryEscape(isoDate))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build availability request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("Availability Check request failed", "error", err, "date", isoDate)
		return false, fmt.Errorf("availability request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Error("Availability Check rejected", "status", resp.StatusCode, "date", isoDate)
		return false, fmt.Errorf("availability check for %s failed with status %d", isoDate, resp.StatusCode)
	}

	var out struct {
		Available bool `json:"available"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("failed to decode availability response: %w", err)
	}
	slog.Debug("Availability Check succeeded", "date", isoDate, "available", out.Available)
	return out.Available, nil
}

// Static always answers the same; used in tests and for deployments
// without a booking backend.
type Static struct {
	Available bool
	Err       error
}

// Check returns the configured answer.
func (s Static) Check(ctx context.Context, isoDate string) (bool, error) {
	return s.Available, s.Err
}
