package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GhefinIndra/EduVate/internal/app"
	"github.com/GhefinIndra/EduVate/internal/transport/http/response"
)

type TopicHandler struct {
	topicService *app.TopicService
}

type CreateTopicRequest struct {
	Name string `json:"name" binding:"required,max=128"`
}

func NewTopicHandler(topicService *app.TopicService) *TopicHandler {
	return &TopicHandler{topicService: topicService}
}

func (h *TopicHandler) Create(c *gin.Context) {
	var req CreateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	topic, err := h.topicService.Create(req.Name)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create topic failed")
		}
		return
	}

	response.Created(c, topic)
}

func (h *TopicHandler) List(c *gin.Context) {
	topics, err := h.topicService.List()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list topics failed")
		return
	}

	response.OK(c, topics)
}
