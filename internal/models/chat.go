package models

import (
	"time"
)

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn. Immutable once created; ordering
// within a chat is the sole sequencing mechanism.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Chat represents a titled conversation. Messages never include the system
// instruction; it is prepended only when calling the completion endpoint.
type Chat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Messages  []Message `json:"messages"`
}

// ChatSummary is a lightweight view of a chat for listings.
type ChatSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
