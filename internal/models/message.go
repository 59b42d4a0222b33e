package models

import "time"

// Message roles. A query always produces one human turn followed by one assistant turn.
const (
	RoleHuman     = "human"
	RoleAssistant = "assistant"
)

// Message is a single role-tagged turn in a session's chat history.
type Message struct {
	ID        string    `json:"id" db:"id"`
	SessionID string    `json:"-" db:"chat_session_id"`
	Role      string    `json:"role" db:"role"`
	Content   string    `json:"content" db:"content"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}
