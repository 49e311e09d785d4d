// Package models defines shared data structures for boothbot.
//
// This file covers the Meta WhatsApp Cloud API webhook envelope. Only
// the fields the funnel consumes are mapped: sender, message text or
// interactive reply, and the message type discriminator.
package models

import "strconv"

// WebhookPayload is the top-level webhook delivery from the Cloud API.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

// WebhookEntry represents one business account entry.
type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

// WebhookChange wraps a single change notification.
type WebhookChange struct {
	Field string             `json:"field"`
	Value WebhookChangeValue `json:"value"`
}

// WebhookChangeValue holds the message data.
type WebhookChangeValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Metadata         WebhookMetadata  `json:"metadata"`
	Contacts         []WebhookContact `json:"contacts,omitempty"`
	Messages         []WebhookMessage `json:"messages,omitempty"`
}

// WebhookMetadata identifies the receiving phone number.
type WebhookMetadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// WebhookContact is a WhatsApp contact.
type WebhookContact struct {
	Profile WebhookContactProfile `json:"profile"`
	WaID    string                `json:"wa_id"`
}

// WebhookContactProfile has the display name.
type WebhookContactProfile struct {
	Name string `json:"name"`
}

// WebhookMessage represents one incoming WhatsApp message.
type WebhookMessage struct {
	From        string              `json:"from"`
	ID          string              `json:"id"`
	Timestamp   string              `json:"timestamp"`
	Type        string              `json:"type"`
	Text        *WebhookText        `json:"text,omitempty"`
	Interactive *WebhookInteractive `json:"interactive,omitempty"`
}

// WebhookText holds a text message body.
type WebhookText struct {
	Body string `json:"body"`
}

// WebhookInteractive holds an interactive reply (button or list).
type WebhookInteractive struct {
	Type        string        `json:"type"`
	ButtonReply *WebhookReply `json:"button_reply,omitempty"`
	ListReply   *WebhookReply `json:"list_reply,omitempty"`
}

// WebhookReply is the id/title pair of an interactive reply.
type WebhookReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ExtractMessages flattens the webhook envelope into the inbound
// messages the funnel consumes. Unsupported message types (audio,
// stickers, reactions) are skipped.
func (p *WebhookPayload) ExtractMessages() []InboundMessage {
	var out []InboundMessage
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				in, ok := distillMessage(msg)
				if ok {
					out = append(out, in)
				}
			}
		}
	}
	return out
}

func distillMessage(msg WebhookMessage) (InboundMessage, bool) {
	ts, _ := strconv.ParseInt(msg.Timestamp, 10, 64)
	in := InboundMessage{From: msg.From, Timestamp: ts}

	switch msg.Type {
	case "text":
		if msg.Text == nil {
			return in, false
		}
		in.Kind = MessageKindText
		in.Text = msg.Text.Body
	case "interactive":
		if msg.Interactive == nil {
			return in, false
		}
		in.Kind = MessageKindInteractive
		switch {
		case msg.Interactive.ButtonReply != nil:
			in.ReplyID = msg.Interactive.ButtonReply.ID
			in.Text = msg.Interactive.ButtonReply.Title
		case msg.Interactive.ListReply != nil:
			in.ReplyID = msg.Interactive.ListReply.ID
			in.Text = msg.Interactive.ListReply.Title
		default:
			return in, false
		}
	case "image":
		in.Kind = MessageKindImage
	case "video":
		in.Kind = MessageKindVideo
	default:
		return in, false
	}
	return in, true
}
