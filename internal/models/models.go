package models

import "time"

// Message is one entry of the conversation transcript shown to the user:
// either an utterance (role "user") or a narration (role "assistant").
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Thread tracks the single durable assistant conversation for this installation.
type Thread struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
}
