package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/GhefinIndra/EduVate/internal/model"
)

type TopicRepository struct {
	db *gorm.DB
}

func NewTopicRepository(db *gorm.DB) *TopicRepository {
	return &TopicRepository{db: db}
}

func (r *TopicRepository) Create(topic *model.Topic) error {
	if err := r.db.Create(topic).Error; err != nil {
		return fmt.Errorf("create topic failed: %w", err)
	}
	return nil
}

func (r *TopicRepository) GetByID(topicID uint) (*model.Topic, error) {
	var topic model.Topic
	if err := r.db.First(&topic, topicID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get topic failed: %w", err)
	}
	return &topic, nil
}

func (r *TopicRepository) List() ([]model.Topic, error) {
	var topics []model.Topic
	if err := r.db.Order("created_at DESC").Find(&topics).Error; err != nil {
		return nil, fmt.Errorf("list topics failed: %w", err)
	}
	return topics, nil
}
