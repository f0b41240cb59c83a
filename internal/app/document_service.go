package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/GhefinIndra/EduVate/internal/model"
	"github.com/GhefinIndra/EduVate/internal/pkg/pdfextract"
)

// Progress milestones reported while a document moves through ingestion.
const (
	progressParsed    = 25
	progressChunking  = 60
	progressEmbedding = 75
)

// DocumentService registers uploads and hands their extracted pages to the
// ingestion queue. Chunking and embedding happen in the worker so uploads
// never block on the embedding API.
type DocumentService struct {
	topics    TopicStore
	docs      DocumentStore
	index     ChunkIndex
	publisher IngestPublisher
}

func NewDocumentService(topics TopicStore, docs DocumentStore, chunkIndex ChunkIndex, publisher IngestPublisher) *DocumentService {
	return &DocumentService{topics: topics, docs: docs, index: chunkIndex, publisher: publisher}
}

// Upload extracts per-page text, creates the document in processing state
// and enqueues the ingestion job. A document with zero extractable text is
// terminal: it is marked failed immediately and never produces chunks.
func (s *DocumentService) Upload(ctx context.Context, topicID uint, title string, file io.Reader) (*model.Document, error) {
	if topicID == 0 {
		return nil, ErrInvalidInput
	}
	topic, err := s.topics.GetByID(topicID)
	if err != nil {
		return nil, err
	}
	if topic == nil {
		return nil, ErrTopicNotFound
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = "Untitled"
	}

	extracted, err := pdfextract.ExtractPages(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	doc := &model.Document{
		TopicID:  topicID,
		Title:    title,
		Pages:    extracted.TotalPages,
		Status:   model.DocumentStatusProcessing,
		Progress: progressParsed,
	}
	if err := s.docs.Create(doc); err != nil {
		return nil, err
	}

	if len(extracted.Pages) == 0 {
		if err := s.docs.MarkFailed(doc.ID); err != nil {
			return nil, err
		}
		doc.Status = model.DocumentStatusFailed
		return doc, nil
	}

	job := IngestJob{DocumentID: doc.ID, TopicID: topicID, Pages: extracted.Pages}
	if err := s.publisher.Publish(ctx, job); err != nil {
		_ = s.docs.MarkFailed(doc.ID)
		return nil, fmt.Errorf("%w: %s", ErrIngestEnqueue, err)
	}
	return doc, nil
}

func (s *DocumentService) Get(documentID uint) (*model.Document, error) {
	if documentID == 0 {
		return nil, ErrInvalidInput
	}
	doc, err := s.docs.GetByID(documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

func (s *DocumentService) ListByTopic(topicID uint) ([]model.Document, error) {
	if topicID == 0 {
		return nil, ErrInvalidInput
	}
	return s.docs.ListByTopicID(topicID)
}

// Delete removes the document and cascades its chunks out of the index.
func (s *DocumentService) Delete(ctx context.Context, documentID uint) error {
	if documentID == 0 {
		return ErrInvalidInput
	}
	doc, err := s.docs.GetByID(documentID)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}
	if err := s.index.Delete(ctx, documentID); err != nil {
		return err
	}
	return s.docs.DeleteByID(documentID)
}
