package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/festibooth/boothbot/internal/models"
)

// webhookHandler routes the Meta webhook: GET is the verification
// handshake, POST delivers message envelopes.
func (s *Server) webhookHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.verifyWebhookHandler(w, r)
	case http.MethodPost:
		s.receiveWebhookHandler(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// verifyWebhookHandler echoes hub.challenge when the verify token
// matches the configured secret.
func (s *Server) verifyWebhookHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode != "subscribe" || s.verifyToken == "" || token != s.verifyToken {
		slog.Warn("Webhook verification rejected", "mode", mode)
		w.WriteHeader(http.StatusForbidden)
		return
	}
	slog.Info("Webhook verification succeeded")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(challenge)); err != nil {
		slog.Error("Webhook verification write failed", "error", err)
	}
}

// receiveWebhookHandler decodes the envelope, logs inbound messages,
// and hands each one to the funnel asynchronously. The provider expects
// a prompt 200 regardless of processing outcome; anything else triggers
// redelivery storms.
func (s *Server) receiveWebhookHandler(w http.ResponseWriter, r *http.Request) {
	var payload models.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		slog.Warn("Webhook payload decode failed", "error", err)
		writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	messages := payload.ExtractMessages()
	slog.Debug("Webhook payload received", "messages", len(messages))

	for _, msg := range messages {
		if err := s.st.AddResponse(models.Response{From: msg.From, Body: msg.Text, Time: msg.Timestamp}); err != nil {
			slog.Error("Webhook response log failed", "error", err, "from", msg.From)
		}
		go func(m models.InboundMessage) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if err := s.funnel.HandleMessage(ctx, m); err != nil {
				slog.Error("Webhook message handling failed", "error", err, "from", m.From)
			}
		}(msg)
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "received"})
}

// receiptsHandler returns the outbound send log.
func (s *Server) receiptsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	receipts, err := s.st.GetReceipts()
	if err != nil {
		slog.Error("Receipts lookup failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, errorResponse{Error: "Failed to load receipts"})
		return
	}
	writeJSONResponse(w, http.StatusOK, receipts)
}
