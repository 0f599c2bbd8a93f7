package models

import "time"

// Session holds everything produced by one "process documents" action: the last
// structured extraction and the chat history. It is replaced wholesale on the next
// processing action. State is carried explicitly through this object, never in
// package-level globals.
type Session struct {
	ID        string          `json:"id"`
	Name      string          `json:"name,omitempty"`
	Data      *StructuredData `json:"data,omitempty"`
	Messages  []ChatMessage   `json:"messages,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
