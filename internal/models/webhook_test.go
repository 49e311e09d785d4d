package models

import "testing"

func envelope(msgs ...WebhookMessage) WebhookPayload {
	return WebhookPayload{
		Object: "whatsapp_business_account",
		Entry: []WebhookEntry{{
			Changes: []WebhookChange{{
				Field: "messages",
				Value: WebhookChangeValue{MessagingProduct: "whatsapp", Messages: msgs},
			}},
		}},
	}
}

func TestExtractMessagesText(t *testing.T) {
	p := envelope(WebhookMessage{
		From:      "5218110001111",
		Timestamp: "1756500000",
		Type:      "text",
		Text:      &WebhookText{Body: "hola"},
	})

	got := p.ExtractMessages()
	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got))
	}
	m := got[0]
	if m.Kind != MessageKindText || m.Text != "hola" || m.From != "5218110001111" {
		t.Errorf("unexpected message: %+v", m)
	}
	if m.Timestamp != 1756500000 {
		t.Errorf("timestamp = %d", m.Timestamp)
	}
	if m.ReplyID != "" {
		t.Errorf("text message must not carry a reply id: %q", m.ReplyID)
	}
}

func TestExtractMessagesButtonReply(t *testing.T) {
	p := envelope(WebhookMessage{
		From: "5218110001111",
		Type: "interactive",
		Interactive: &WebhookInteractive{
			Type:        "button_reply",
			ButtonReply: &WebhookReply{ID: "event_boda", Title: "Boda 💍"},
		},
	})

	got := p.ExtractMessages()
	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got))
	}
	m := got[0]
	if m.Kind != MessageKindInteractive || m.ReplyID != "event_boda" || m.Text != "Boda 💍" {
		t.Errorf("unexpected message: %+v", m)
	}
}

func TestExtractMessagesListReply(t *testing.T) {
	p := envelope(WebhookMessage{
		From: "5218110001111",
		Type: "interactive",
		Interactive: &WebhookInteractive{
			Type:      "list_reply",
			ListReply: &WebhookReply{ID: "svc_cabina", Title: "Cabina de fotos"},
		},
	})

	got := p.ExtractMessages()
	if len(got) != 1 || got[0].ReplyID != "svc_cabina" {
		t.Fatalf("unexpected messages: %+v", got)
	}
}

func TestExtractMessagesSkipsUnsupported(t *testing.T) {
	p := envelope(
		WebhookMessage{From: "111111", Type: "audio"},
		WebhookMessage{From: "111111", Type: "sticker"},
		WebhookMessage{From: "111111", Type: "text"}, // nil text body
		WebhookMessage{From: "111111", Type: "interactive", Interactive: &WebhookInteractive{Type: "nfm_reply"}},
		WebhookMessage{From: "111111", Type: "text", Text: &WebhookText{Body: "hola"}},
	)

	got := p.ExtractMessages()
	if len(got) != 1 || got[0].Text != "hola" {
		t.Fatalf("expected only the valid text message, got %+v", got)
	}
}

func TestExtractMessagesImage(t *testing.T) {
	p := envelope(WebhookMessage{From: "111111", Type: "image"})
	got := p.ExtractMessages()
	if len(got) != 1 || got[0].Kind != MessageKindImage {
		t.Fatalf("unexpected messages: %+v", got)
	}
}

func TestExtractMessagesMultipleEntries(t *testing.T) {
	p := WebhookPayload{
		Entry: []WebhookEntry{
			{Changes: []WebhookChange{{Value: WebhookChangeValue{Messages: []WebhookMessage{
				{From: "111111", Type: "text", Text: &WebhookText{Body: "uno"}},
			}}}}},
			{Changes: []WebhookChange{{Value: WebhookChangeValue{Messages: []WebhookMessage{
				{From: "222222", Type: "text", Text: &WebhookText{Body: "dos"}},
			}}}}},
		},
	}
	got := p.ExtractMessages()
	if len(got) != 2 || got[0].Text != "uno" || got[1].Text != "dos" {
		t.Fatalf("unexpected messages: %+v", got)
	}
}
