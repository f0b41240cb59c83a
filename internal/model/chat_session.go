package model

import "time"

// Scope is the set of documents a chat session may retrieve from:
// exactly one of DocumentID or TopicID is non-zero.
type Scope struct {
	DocumentID uint `json:"document_id,omitempty"`
	TopicID    uint `json:"topic_id,omitempty"`
}

func (s Scope) Valid() bool {
	return (s.DocumentID == 0) != (s.TopicID == 0)
}

// ChatSession binds a conversation to a single document or a whole topic.
// The title is derived from the first exchange and never changed afterwards.
type ChatSession struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DocumentID uint      `gorm:"index" json:"document_id,omitempty"`
	TopicID    uint      `gorm:"index" json:"topic_id,omitempty"`
	Title      string    `gorm:"size:256;not null" json:"title"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (s *ChatSession) Scope() Scope {
	return Scope{DocumentID: s.DocumentID, TopicID: s.TopicID}
}
