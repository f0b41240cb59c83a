package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GhefinIndra/EduVate/internal/ai"
	appsvc "github.com/GhefinIndra/EduVate/internal/app"
	"github.com/GhefinIndra/EduVate/internal/bootstrap"
	"github.com/GhefinIndra/EduVate/internal/cache"
	"github.com/GhefinIndra/EduVate/internal/repository"
	"github.com/GhefinIndra/EduVate/internal/transport/http/handler"
	"github.com/GhefinIndra/EduVate/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestID(), gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	topicRepo := repository.NewTopicRepository(app.MySQL)
	docRepo := repository.NewDocumentRepository(app.MySQL)
	sessionRepo := repository.NewSessionRepository(app.MySQL)
	messageRepo := repository.NewMessageRepository(app.MySQL)

	llmClient := ai.NewOpenAICompatibleClient()
	chatModel := ai.NewChatModel(llmClient, ai.ChatConfig{
		BaseURL: app.Config.LLM.BaseURL,
		APIKey:  app.Config.LLM.APIKey,
		Model:   app.Config.LLM.Model,
	})

	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)

	topicService := appsvc.NewTopicService(topicRepo)
	documentService := appsvc.NewDocumentService(topicRepo, docRepo, app.Index, app.IngestPublisher)
	retriever := appsvc.NewRetriever(docRepo, app.Index, app.Config.RAG.TopK)
	generator := appsvc.NewGenerator(chatModel, app.Config.RAG.MaxContextMessage, app.Config.RAG.SnippetLength)
	chatService := appsvc.NewChatService(
		sessionRepo,
		messageRepo,
		docRepo,
		retriever,
		generator,
		historyCache,
		time.Duration(app.Config.LLM.RequestTimeoutSeconds)*time.Second,
		app.Config.RAG.MaxContextMessage,
		app.Config.RAG.TitleLength,
	)

	topicHandler := handler.NewTopicHandler(topicService)
	documentHandler := handler.NewDocumentHandler(documentService, app.Config.Ingest.MaxUploadMB)
	chatHandler := handler.NewChatHandler(chatService)

	v1 := router.Group("/api/v1")

	topicGroup := v1.Group("/topics")
	topicGroup.POST("", topicHandler.Create)
	topicGroup.GET("", topicHandler.List)

	docGroup := v1.Group("/documents")
	docGroup.POST("", documentHandler.Upload)
	docGroup.GET("", documentHandler.ListByTopic)
	docGroup.GET("/:id", documentHandler.Get)
	docGroup.DELETE("/:id", documentHandler.Delete)

	chatGroup := v1.Group("/chat")
	chatGroup.POST("/sessions", chatHandler.CreateSession)
	chatGroup.GET("/sessions", chatHandler.ListSessions)
	chatGroup.DELETE("/sessions/:id", chatHandler.DeleteSession)
	chatGroup.POST("/sessions/:id/messages", chatHandler.SendMessage)
	chatGroup.GET("/sessions/:id/messages", chatHandler.ListMessages)

	return router
}
