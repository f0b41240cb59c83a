package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GhefinIndra/EduVate/internal/app"
	"github.com/GhefinIndra/EduVate/internal/transport/http/response"
)

type DocumentHandler struct {
	documentService *app.DocumentService
	maxUploadBytes  int64
}

func NewDocumentHandler(documentService *app.DocumentService, maxUploadMB int) *DocumentHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &DocumentHandler{
		documentService: documentService,
		maxUploadBytes:  int64(maxUploadMB) << 20,
	}
}

// Upload accepts a PDF as multipart form field "file" with its "topic_id"
// and enqueues it for indexing. The response carries the document in
// "processing" state; poll Get until it turns "ready" or "failed".
func (h *DocumentHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	topicID := formID(c, "topic_id")
	if topicID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid topic id")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file upload")
		return
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "only PDF uploads are supported")
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		title = strings.TrimSuffix(fileHeader.Filename, ".pdf")
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "unreadable file upload")
		return
	}
	defer file.Close()

	doc, err := h.documentService.Upload(c.Request.Context(), topicID, title, file)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrTopicNotFound):
			response.Error(c, http.StatusNotFound, response.CodeTopicNotFound, "topic not found")
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrIngestEnqueue):
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "enqueue ingestion failed")
		default:
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "could not parse PDF")
		}
		return
	}

	response.Accepted(c, doc)
}

func (h *DocumentHandler) ListByTopic(c *gin.Context) {
	topicID := queryID(c, "topic_id")
	if topicID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid topic id")
		return
	}

	docs, err := h.documentService.ListByTopic(topicID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrTopicNotFound):
			response.Error(c, http.StatusNotFound, response.CodeTopicNotFound, "topic not found")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		}
		return
	}

	response.OK(c, docs)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	documentID, ok := pathID(c, "id")
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}

	doc, err := h.documentService.Get(documentID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, "document not found")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get document failed")
		}
		return
	}

	response.OK(c, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	documentID, ok := pathID(c, "id")
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), documentID); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete document failed")
		return
	}

	response.OK(c, gin.H{"deleted": true})
}

func pathID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func formID(c *gin.Context, name string) uint {
	return parseID(c.PostForm(name))
}

func parseID(raw string) uint {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}
