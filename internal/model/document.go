package model

import "time"

const (
	DocumentStatusProcessing = "processing"
	DocumentStatusReady      = "ready"
	DocumentStatusFailed     = "failed"
)

// Document is an uploaded PDF tracked through the ingestion pipeline.
// Status only becomes "ready" after every chunk is embedded and stored.
type Document struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TopicID    uint      `gorm:"not null;index" json:"topic_id"`
	Title      string    `gorm:"size:256;not null" json:"title"`
	Pages      int       `gorm:"not null" json:"pages"`
	Status     string    `gorm:"size:16;not null;index" json:"status"`
	Progress   int       `gorm:"not null;default:0" json:"progress"`
	ChunkCount int       `gorm:"not null;default:0" json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}

func (d *Document) Ready() bool {
	return d.Status == DocumentStatusReady
}
