package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GhefinIndra/EduVate/internal/app"
	"github.com/GhefinIndra/EduVate/internal/model"
	"github.com/GhefinIndra/EduVate/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type CreateSessionRequest struct {
	DocumentID uint `json:"document_id"`
	TopicID    uint `json:"topic_id"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type HistoryResponse struct {
	Messages []model.Message `json:"messages"`
	Total    int64           `json:"total"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	session, err := h.chatService.CreateSession(model.Scope{
		DocumentID: req.DocumentID,
		TopicID:    req.TopicID,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "scope must name exactly one document or one topic")
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, "document not found")
		case errors.Is(err, app.ErrTopicNotFound):
			response.Error(c, http.StatusNotFound, response.CodeTopicNotFound, "topic not found")
		case errors.Is(err, app.ErrEmptyScope):
			response.Error(c, http.StatusUnprocessableEntity, response.CodeEmptyScope, "scope has no ready documents")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create session failed")
		}
		return
	}

	response.Created(c, session)
}

func (h *ChatHandler) ListSessions(c *gin.Context) {
	scope := model.Scope{
		DocumentID: queryID(c, "document_id"),
		TopicID:    queryID(c, "topic_id"),
	}
	if !scope.Valid() {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "pass exactly one of document_id or topic_id")
		return
	}

	sessions, err := h.chatService.ListSessions(scope)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list sessions failed")
		return
	}

	response.OK(c, sessions)
}

func (h *ChatHandler) DeleteSession(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid session id")
		return
	}

	if err := h.chatService.DeleteSession(sessionID); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete session failed")
		return
	}

	response.OK(c, gin.H{"deleted": true})
}

// SendMessage blocks until the grounded answer is generated, then returns
// the assistant message with its citations.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid session id")
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	message, err := h.chatService.SendMessage(c.Request.Context(), sessionID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, "session not found")
		case errors.Is(err, app.ErrMessageEmpty):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "message content must not be empty")
		case errors.Is(err, app.ErrGeneration):
			response.Error(c, http.StatusBadGateway, response.CodeGenerationFailed, "answer generation failed, please retry")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "send message failed")
		}
		return
	}

	response.OK(c, message)
}

func (h *ChatHandler) ListMessages(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid session id")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	messages, total, err := h.chatService.ListMessages(sessionID, limit, offset)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, "session not found")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list messages failed")
		}
		return
	}

	response.OK(c, HistoryResponse{Messages: messages, Total: total})
}

func queryID(c *gin.Context, name string) uint {
	return parseID(c.Query(name))
}
