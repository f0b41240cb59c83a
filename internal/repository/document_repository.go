package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/GhefinIndra/EduVate/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(doc *model.Document) error {
	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("create document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(documentID uint) (*model.Document, error) {
	var doc model.Document
	if err := r.db.First(&doc, documentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document failed: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) ListByTopicID(topicID uint) ([]model.Document, error) {
	var docs []model.Document
	if err := r.db.Where("topic_id = ?", topicID).Order("id ASC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	return docs, nil
}

// ListReadyByTopicID returns ready documents in upload order. Documents that
// are still processing or failed never participate in retrieval.
func (r *DocumentRepository) ListReadyByTopicID(topicID uint) ([]model.Document, error) {
	var docs []model.Document
	err := r.db.
		Where("topic_id = ? AND status = ?", topicID, model.DocumentStatusReady).
		Order("id ASC").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("list ready documents failed: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) UpdateProgress(documentID uint, progress int) error {
	err := r.db.Model(&model.Document{}).
		Where("id = ?", documentID).
		Update("progress", progress).Error
	if err != nil {
		return fmt.Errorf("update document progress failed: %w", err)
	}
	return nil
}

// MarkReady flips the document to ready in one update so retrieval never
// observes a ready document without its final chunk count.
func (r *DocumentRepository) MarkReady(documentID uint, chunkCount int) error {
	err := r.db.Model(&model.Document{}).
		Where("id = ?", documentID).
		Updates(map[string]interface{}{
			"status":      model.DocumentStatusReady,
			"progress":    100,
			"chunk_count": chunkCount,
		}).Error
	if err != nil {
		return fmt.Errorf("mark document ready failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) MarkFailed(documentID uint) error {
	err := r.db.Model(&model.Document{}).
		Where("id = ?", documentID).
		Update("status", model.DocumentStatusFailed).Error
	if err != nil {
		return fmt.Errorf("mark document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) DeleteByID(documentID uint) error {
	if err := r.db.Delete(&model.Document{}, documentID).Error; err != nil {
		return fmt.Errorf("delete document failed: %w", err)
	}
	return nil
}
