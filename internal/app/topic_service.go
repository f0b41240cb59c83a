package app

import (
	"strings"

	"github.com/GhefinIndra/EduVate/internal/model"
)

// TopicService is the minimal registry that lets a retrieval scope exist.
type TopicService struct {
	topics TopicStore
}

func NewTopicService(topics TopicStore) *TopicService {
	return &TopicService{topics: topics}
}

func (s *TopicService) Create(name string) (*model.Topic, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	topic := &model.Topic{Name: name}
	if err := s.topics.Create(topic); err != nil {
		return nil, err
	}
	return topic, nil
}

func (s *TopicService) List() ([]model.Topic, error) {
	return s.topics.List()
}
