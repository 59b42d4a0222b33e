// Package models defines core data structures for sessions, messages, and document chunks.
package models

import "time"

// Session binds an opaque token to one document collection and one chat history.
type Session struct {
	ID             string    `json:"session_id" db:"session_id"`
	CollectionName string    `json:"collection_name" db:"collection_name"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
