package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/GhefinIndra/EduVate/internal/model"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(session *model.ChatSession) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("create chat session failed: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetByID(sessionID uint) (*model.ChatSession, error) {
	var session model.ChatSession
	if err := r.db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get chat session failed: %w", err)
	}
	return &session, nil
}

// ListByScope filters sessions by document or topic; a zero scope lists all.
func (r *SessionRepository) ListByScope(scope model.Scope) ([]model.ChatSession, error) {
	query := r.db.Order("updated_at DESC")
	if scope.DocumentID != 0 {
		query = query.Where("document_id = ?", scope.DocumentID)
	} else if scope.TopicID != 0 {
		query = query.Where("topic_id = ?", scope.TopicID)
	}
	var sessions []model.ChatSession
	if err := query.Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list chat sessions failed: %w", err)
	}
	return sessions, nil
}

func (r *SessionRepository) UpdateTitle(sessionID uint, title string) error {
	err := r.db.Model(&model.ChatSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]interface{}{"title": title, "updated_at": time.Now()}).Error
	if err != nil {
		return fmt.Errorf("update chat session title failed: %w", err)
	}
	return nil
}

func (r *SessionRepository) Touch(sessionID uint) error {
	err := r.db.Model(&model.ChatSession{}).
		Where("id = ?", sessionID).
		Update("updated_at", time.Now()).Error
	if err != nil {
		return fmt.Errorf("touch chat session failed: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteByID(sessionID uint) error {
	if err := r.db.Delete(&model.ChatSession{}, sessionID).Error; err != nil {
		return fmt.Errorf("delete chat session failed: %w", err)
	}
	return nil
}
