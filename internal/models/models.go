// Package models defines shared data structures for boothbot.
package models

// MessageKind discriminates inbound webhook message types.
type MessageKind string

// Message kind constants.
const (
	MessageKindText        MessageKind = "text"
	MessageKindInteractive MessageKind = "interactive"
	MessageKindImage       MessageKind = "image"
	MessageKindVideo       MessageKind = "video"
)

// InboundMessage is the distilled inbound payload the funnel consumes.
// For interactive replies, Text carries the reply title and ReplyID the
// reply identifier; for plain text messages ReplyID is empty.
type InboundMessage struct {
	From      string      `json:"from"`
	Kind      MessageKind `json:"kind"`
	Text      string      `json:"text"`
	ReplyID   string      `json:"reply_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// Button is one interactive reply button.
type Button struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ListRow is one selectable row in an interactive list message.
type ListRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ListSection groups rows in an interactive list message.
type ListSection struct {
	Title string    `json:"title"`
	Rows  []ListRow `json:"rows"`
}

// Receipt records an outbound send attempt.
type Receipt struct {
	To     string `json:"to"`
	Status string `json:"status"`
	Time   int64  `json:"time"`
}

// Message status constants for receipts.
const (
	MessageStatusSent   = "sent"
	MessageStatusFailed = "failed"
)

// Response records an inbound customer message.
type Response struct {
	From string `json:"from"`
	Body string `json:"body"`
	Time int64  `json:"time"`
}
