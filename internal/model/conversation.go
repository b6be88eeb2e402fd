package model

import "time"

// Message roles. Role alternation is a convention, not enforced.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn in a conversation. Messages are immutable once
// appended.
type Message struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Conversation is an append-only message log, linked 1:1 to a completed
// source or standalone for general chat. Messages have no identity
// outside their conversation.
type Conversation struct {
	ID           string     `json:"id"`
	OwnerID      string     `json:"ownerId"`
	Title        string     `json:"title"`
	Kind         SourceKind `json:"type"`
	SourceID     string     `json:"sourceId,omitempty"`
	Messages     []Message  `json:"messages"`
	Active       bool       `json:"isActive"`
	LastActivity time.Time  `json:"lastActivity"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// LastMessage returns the most recent message, or nil for an empty log.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}

// RecentWindow returns the last n messages in order, most recent last.
// The returned slice is a copy; mutating it does not touch the log.
func (c *Conversation) RecentWindow(n int) []Message {
	if n <= 0 {
		return nil
	}
	start := 0
	if len(c.Messages) > n {
		start = len(c.Messages) - n
	}
	window := make([]Message, len(c.Messages)-start)
	copy(window, c.Messages[start:])
	return window
}
