package model

import (
	"encoding/json"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Citation points an assistant answer back at a retrieved chunk.
// The (DocumentID, Page) pair always corresponds to a chunk that was
// actually retrieved for that answer.
type Citation struct {
	DocumentID uint   `json:"document_id"`
	Page       int    `json:"page"`
	Snippet    string `json:"snippet"`
}

// Message is one turn in a chat session. Citations is a JSON array,
// set only on assistant messages. Messages are append-only.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID uint      `gorm:"not null;index" json:"session_id"`
	Role      string    `gorm:"size:16;not null;index" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Citations string    `gorm:"type:text" json:"-"` // JSON array of Citation
	CreatedAt time.Time `json:"created_at"`
}

// CitationList returns the parsed citations; empty on parse error.
func (m *Message) CitationList() []Citation {
	if m.Citations == "" {
		return nil
	}
	var v []Citation
	_ = json.Unmarshal([]byte(m.Citations), &v)
	return v
}

// SetCitations stores the citations as JSON.
func (m *Message) SetCitations(citations []Citation) {
	if len(citations) == 0 {
		m.Citations = "[]"
		return
	}
	b, _ := json.Marshal(citations)
	m.Citations = string(b)
}

// MarshalJSON inlines the parsed citations for API responses.
func (m Message) MarshalJSON() ([]byte, error) {
	type alias Message
	return json.Marshal(struct {
		alias
		Citations []Citation `json:"citations,omitempty"`
	}{
		alias:     alias(m),
		Citations: m.CitationList(),
	})
}
