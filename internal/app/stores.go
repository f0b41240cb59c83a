package app

import (
	"context"

	"github.com/GhefinIndra/EduVate/internal/index"
	"github.com/GhefinIndra/EduVate/internal/model"
	"github.com/GhefinIndra/EduVate/internal/pkg/pdfextract"
)

// DocumentStore is the narrow persistence surface the engine needs for
// documents; repository.DocumentRepository implements it.
type DocumentStore interface {
	Create(doc *model.Document) error
	GetByID(documentID uint) (*model.Document, error)
	ListByTopicID(topicID uint) ([]model.Document, error)
	ListReadyByTopicID(topicID uint) ([]model.Document, error)
	UpdateProgress(documentID uint, progress int) error
	MarkReady(documentID uint, chunkCount int) error
	MarkFailed(documentID uint) error
	DeleteByID(documentID uint) error
}

type TopicStore interface {
	Create(topic *model.Topic) error
	GetByID(topicID uint) (*model.Topic, error)
	List() ([]model.Topic, error)
}

type SessionStore interface {
	Create(session *model.ChatSession) error
	GetByID(sessionID uint) (*model.ChatSession, error)
	ListByScope(scope model.Scope) ([]model.ChatSession, error)
	UpdateTitle(sessionID uint, title string) error
	Touch(sessionID uint) error
	DeleteByID(sessionID uint) error
}

type MessageStore interface {
	Create(message *model.Message) error
	CountBySessionID(sessionID uint) (int64, error)
	ListRange(sessionID uint, start, limit int) ([]model.Message, error)
	ListRecent(sessionID uint, n int) ([]model.Message, error)
	DeleteBySessionID(sessionID uint) error
}

// ChunkIndex is the embedding index surface; index.Index implements it.
type ChunkIndex interface {
	Upsert(ctx context.Context, documentID uint, chunks []model.Chunk) error
	Query(ctx context.Context, documentIDs []uint, queryText string, topK int) ([]index.ScoredChunk, error)
	Delete(ctx context.Context, documentID uint) error
}

// IngestJob carries one document's extracted pages to the ingestion worker.
// The original upload is never needed again after extraction.
type IngestJob struct {
	DocumentID uint              `json:"document_id"`
	TopicID    uint              `json:"topic_id"`
	Pages      []pdfextract.Page `json:"pages"`
}

type IngestPublisher interface {
	Publish(ctx context.Context, job IngestJob) error
}
