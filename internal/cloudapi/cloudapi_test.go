package cloudapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/festibooth/boothbot/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	client, err := NewClient(
		WithAccessToken("test-token"),
		WithPhoneNumberID("12345"),
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
	)
	if err != nil {
		srv.Close()
		t.Fatalf("NewClient failed: %v", err)
	}
	return client, srv
}

func TestNewClientRequiresCredentials(t *testing.T) {
	t.Setenv("WHATSAPP_ACCESS_TOKEN", "")
	t.Setenv("WHATSAPP_PHONE_NUMBER_ID", "")
	if _, err := NewClient(); err == nil {
		t.Error("expected error without credentials")
	}
	if _, err := NewClient(WithAccessToken("tok")); err == nil {
		t.Error("expected error without phone number id")
	}
}

func TestSendText(t *testing.T) {
	var got outboundMessage
	var path, auth string
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode failed: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	if err := client.SendText(context.Background(), "5218110001111", "hola"); err != nil {
		t.Fatalf("SendText failed: %v", err)
	}
	if path != "/12345/messages" {
		t.Errorf("path = %q, want /12345/messages", path)
	}
	if auth != "Bearer test-token" {
		t.Errorf("auth = %q", auth)
	}
	if got.Type != "text" || got.Text == nil || got.Text.Body != "hola" || got.To != "5218110001111" {
		t.Errorf("unexpected payload: %+v", got)
	}
}

func TestSendButtonsTruncatesToThree(t *testing.T) {
	var got outboundMessage
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	buttons := []models.Button{
		{ID: "1", Title: "Uno"}, {ID: "2", Title: "Dos"},
		{ID: "3", Title: "Tres"}, {ID: "4", Title: "Cuatro"},
	}
	if err := client.SendButtons(context.Background(), "5218110001111", "elige", buttons); err != nil {
		t.Fatalf("SendButtons failed: %v", err)
	}
	if got.Interactive == nil || got.Interactive.Type != "button" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if len(got.Interactive.Action.Buttons) != 3 {
		t.Errorf("buttons = %d, want 3", len(got.Interactive.Action.Buttons))
	}
}

func TestSendListIncludesHeader(t *testing.T) {
	var got outboundMessage
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	sections := []models.ListSection{{Title: "Servicios", Rows: []models.ListRow{{ID: "r1", Title: "Cabina"}}}}
	if err := client.SendList(context.Background(), "5218110001111", "Catálogo", "elige", sections); err != nil {
		t.Fatalf("SendList failed: %v", err)
	}
	if got.Interactive == nil || got.Interactive.Type != "list" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if got.Interactive.Header == nil || got.Interactive.Header.Text != "Catálogo" {
		t.Errorf("header = %+v", got.Interactive.Header)
	}
	if len(got.Interactive.Action.Sections) != 1 {
		t.Errorf("sections = %d, want 1", len(got.Interactive.Action.Sections))
	}
}

func TestSendMedia(t *testing.T) {
	var got outboundMessage
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	if err := client.SendVideo(context.Background(), "5218110001111", "https://example.com/v.mp4", "mira"); err != nil {
		t.Fatalf("SendVideo failed: %v", err)
	}
	if got.Type != "video" || got.Video == nil || got.Video.Link != "https://example.com/v.mp4" || got.Video.Caption != "mira" {
		t.Errorf("unexpected payload: %+v", got)
	}
}

func TestSendRejectedStatus(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad token"}}`))
	})
	defer srv.Close()

	if err := client.SendText(context.Background(), "5218110001111", "hola"); err == nil {
		t.Error("expected error on 401 response")
	}
}

func TestMockClientRecords(t *testing.T) {
	m := NewMockClient()
	ctx := context.Background()
	_ = m.SendText(ctx, "111111", "hola")
	_ = m.SendButtons(ctx, "111111", "elige", nil)
	_ = m.SendList(ctx, "111111", "h", "b", nil)
	_ = m.SendImage(ctx, "111111", "u", "c")

	if len(m.Texts) != 2 || len(m.Lists) != 1 || len(m.Medias) != 1 {
		t.Errorf("unexpected records: texts=%d lists=%d medias=%d", len(m.Texts), len(m.Lists), len(m.Medias))
	}
}
