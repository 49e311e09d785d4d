// Package cloudapi wraps the Meta WhatsApp Cloud API for boothbot.
//
// It provides the outbound send capabilities the funnel depends on:
// text, interactive buttons, interactive lists, images, and videos, all
// delivered as REST calls against the Graph API messages endpoint.
package cloudapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/festibooth/boothbot/internal/models"
)

// DefaultBaseURL is the Graph API root used unless overridden.
const DefaultBaseURL = "https://graph.facebook.com/v19.0"

// DefaultTimeout bounds each outbound send. Sends are fire-and-forget
// from the conversation's point of view; a slow API must not stall a
// turn indefinitely.
const DefaultTimeout = 15 * time.Second

// Sender is the outbound capability interface (for production and testing).
type Sender interface {
	SendText(ctx context.Context, to, body string) error
	SendButtons(ctx context.Context, to, body string, buttons []models.Button) error
	SendList(ctx context.Context, to, header, body string, sections []models.ListSection) error
	SendImage(ctx context.Context, to, url, caption string) error
	SendVideo(ctx context.Context, to, url, caption string) error
}

// Opts holds configuration options for the Cloud API client.
type Opts struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	HTTPClient    *http.Client
}

// Option defines a configuration option for the Cloud API client.
type Option func(*Opts)

// WithAccessToken sets the Cloud API bearer token.
func WithAccessToken(token string) Option {
	return func(o *Opts) { o.AccessToken = token }
}

// WithPhoneNumberID sets the sending phone number id.
func WithPhoneNumberID(id string) Option {
	return func(o *Opts) { o.PhoneNumberID = id }
}

// WithBaseURL overrides the Graph API root (used in tests).
func WithBaseURL(url string) Option {
	return func(o *Opts) { o.BaseURL = url }
}

// WithHTTPClient injects a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Opts) { o.HTTPClient = c }
}

// Client talks to the Cloud API messages endpoint.
type Client struct {
	accessToken   string
	phoneNumberID string
	baseURL       string
	httpClient    *http.Client
}

// NewClient creates a Cloud API client, falling back to the
// WHATSAPP_ACCESS_TOKEN and WHATSAPP_PHONE_NUMBER_ID environment
// variables when options are not provided.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.AccessToken == "" {
		cfg.AccessToken = os.Getenv("WHATSAPP_ACCESS_TOKEN")
	}
	if cfg.PhoneNumberID == "" {
		cfg.PhoneNumberID = os.Getenv("WHATSAPP_PHONE_NUMBER_ID")
	}
	slog.Debug("CloudAPI client config loaded",
		"token_set", cfg.AccessToken != "",
		"phone_number_id_set", cfg.PhoneNumberID != "")

	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("access token must be provided")
	}
	if cfg.PhoneNumberID == "" {
		return nil, fmt.Errorf("phone number id must be provided")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}

	return &Client{
		accessToken:   cfg.AccessToken,
		phoneNumberID: cfg.PhoneNumberID,
		baseURL:       cfg.BaseURL,
		httpClient:    cfg.HTTPClient,
	}, nil
}

// Outbound payload shapes for the messages endpoint.

type outboundMessage struct {
	MessagingProduct string            `json:"messaging_product"`
	To               string            `json:"to"`
	Type             string            `json:"type"`
	Text             *textPayload      `json:"text,omitempty"`
	Interactive      *interactiveBlock `json:"interactive,omitempty"`
	Image            *mediaPayload     `json:"image,omitempty"`
	Video            *mediaPayload     `json:"video,omitempty"`
}

type textPayload struct {
	Body string `json:"body"`
}

type mediaPayload struct {
	Link    string `json:"link"`
	Caption string `json:"caption,omitempty"`
}

type interactiveBlock struct {
	Type   string             `json:"type"`
	Header *interactiveHeader `json:"header,omitempty"`
	Body   interactiveBody    `json:"body"`
	Action interactiveAction  `json:"action"`
}

type interactiveHeader struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type interactiveBody struct {
	Text string `json:"text"`
}

type interactiveAction struct {
	Buttons  []interactiveButton  `json:"buttons,omitempty"`
	Button   string               `json:"button,omitempty"`
	Sections []interactiveSection `json:"sections,omitempty"`
}

type interactiveButton struct {
	Type  string        `json:"type"`
	Reply models.Button `json:"reply"`
}

type interactiveSection struct {
	Title string           `json:"title"`
	Rows  []models.ListRow `json:"rows"`
}

// SendText sends a plain text message.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	return c.post(ctx, outboundMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             &textPayload{Body: body},
	})
}

// SendButtons sends an interactive button message. The Cloud API allows
// at most three buttons; extras are dropped with a warning.
func (c *Client) SendButtons(ctx context.Context, to, body string, buttons []models.Button) error {
	if len(buttons) > 3 {
		slog.Warn("CloudAPI SendButtons truncating to 3 buttons", "to", to, "requested", len(buttons))
		buttons = buttons[:3]
	}
	ib := make([]interactiveButton, len(buttons))
	for i, b := range buttons {
		ib[i] = interactiveButton{Type: "reply", Reply: b}
	}
	return c.post(ctx, outboundMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "interactive",
		Interactive: &interactiveBlock{
			Type:   "button",
			Body:   interactiveBody{Text: body},
			Action: interactiveAction{Buttons: ib},
		},
	})
}

// SendList sends an interactive list message.
func (c *Client) SendList(ctx context.Context, to, header, body string, sections []models.ListSection) error {
	is := make([]interactiveSection, len(sections))
	for i, s := range sections {
		is[i] = interactiveSection{Title: s.Title, Rows: s.Rows}
	}
	msg := outboundMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "interactive",
		Interactive: &interactiveBlock{
			Type:   "list",
			Body:   interactiveBody{Text: body},
			Action: interactiveAction{Button: "Ver opciones", Sections: is},
		},
	}
	if header != "" {
		msg.Interactive.Header = &interactiveHeader{Type: "text", Text: header}
	}
	return c.post(ctx, msg)
}

// SendImage sends an image by link.
func (c *Client) SendImage(ctx context.Context, to, url, caption string) error {
	return c.post(ctx, outboundMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "image",
		Image:            &mediaPayload{Link: url, Caption: caption},
	})
}

// SendVideo sends a video by link.
func (c *Client) SendVideo(ctx context.Context, to, url, caption string) error {
	return c.post(ctx, outboundMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "video",
		Video:            &mediaPayload{Link: url, Caption: caption},
	})
}

func (c *Client) post(ctx context.Context, payload outboundMessage) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("CloudAPI request failed", "error", err, "to", payload.To, "type", payload.Type)
		return fmt.Errorf("cloud api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Error("CloudAPI send rejected", "status", resp.StatusCode, "to", payload.To, "type", payload.Type, "body", string(snippet))
		return fmt.Errorf("cloud api send to %s failed with status %d", payload.To, resp.StatusCode)
	}

	slog.Debug("CloudAPI send succeeded", "to", payload.To, "type", payload.Type)
	return nil
}

// MockClient implements Sender and records every send (for tests).
type MockClient struct {
	Texts  []MockSend
	Lists  []MockSend
	Medias []MockSend
}

// MockSend is one recorded outbound call.
type MockSend struct {
	To   string
	Body string
	Kind string
}

// NewMockClient creates an empty recording client.
func NewMockClient() *MockClient { return &MockClient{} }

func (m *MockClient) SendText(ctx context.Context, to, body string) error {
	m.Texts = append(m.Texts, MockSend{To: to, Body: body, Kind: "text"})
	return nil
}

func (m *MockClient) SendButtons(ctx context.Context, to, body string, buttons []models.Button) error {
	m.Texts = append(m.Texts, MockSend{To: to, Body: body, Kind: "buttons"})
	return nil
}

func (m *MockClient) SendList(ctx context.Context, to, header, body string, sections []models.ListSection) error {
	m.Lists = append(m.Lists, MockSend{To: to, Body: body, Kind: "list"})
	return nil
}

func (m *MockClient) SendImage(ctx context.Context, to, url, caption string) error {
	m.Medias = append(m.Medias, MockSend{To: to, Body: url, Kind: "image"})
	return nil
}

func (m *MockClient) SendVideo(ctx context.Context, to, url, caption string) error {
	m.Medias = append(m.Medias, MockSend{To: to, Body: url, Kind: "video"})
	return nil
}
