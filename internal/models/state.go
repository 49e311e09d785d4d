// Package models defines state management structures for boothbot conversations.
package models

import "time"

// Conversation represents the per-customer dialogue state, keyed by
// canonical phone number. StateVersion is bumped on every save and is
// checked by the funnel's stale-reply guard before delayed sends.
type Conversation struct {
	Phone        string             `json:"phone"`
	CurrentState StateType          `json:"current_state"`
	Data         map[DataKey]string `json:"data,omitempty"`
	StateVersion int64              `json:"state_version"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// GetData returns the value stored under key, or "" when absent.
func (c *Conversation) GetData(key DataKey) string {
	if c.Data == nil {
		return ""
	}
	return c.Data[key]
}

// SetData stores value under key, allocating the map on first use.
func (c *Conversation) SetData(key DataKey, value string) {
	if c.Data == nil {
		c.Data = make(map[DataKey]string)
	}
	c.Data[key] = value
}

// DeleteData removes key from the conversation data.
func (c *Conversation) DeleteData(key DataKey) {
	if c.Data != nil {
		delete(c.Data, key)
	}
}

// RecommendedPackage is the structured package suggestion stored once an
// event type is classified.
type RecommendedPackage struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	MediaURL    string `json:"media_url,omitempty"`
}
