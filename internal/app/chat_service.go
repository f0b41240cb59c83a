package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/GhefinIndra/EduVate/internal/index"
	"github.com/GhefinIndra/EduVate/internal/model"
)

const (
	defaultGenerateTimeout = 90 * time.Second
	defaultPageLimit       = 50
	maxPageLimit           = 200
)

// HistoryCache holds the recent-message window used for prompt building.
// Dirty markers bridge the gap between an append and the next rebuild.
type HistoryCache interface {
	GetHistory(ctx context.Context, sessionID uint) ([]model.Message, bool, error)
	SetHistory(ctx context.Context, sessionID uint, messages []model.Message) error
	DeleteHistory(ctx context.Context, sessionID uint) error
	MarkDirty(ctx context.Context, sessionID uint) error
	IsDirty(ctx context.Context, sessionID uint) (bool, error)
}

// ChunkRetriever and AnswerGenerator are satisfied by Retriever and
// Generator; tests inject fakes through them.
type ChunkRetriever interface {
	Retrieve(ctx context.Context, scope model.Scope, question string) ([]index.ScoredChunk, error)
}

type AnswerGenerator interface {
	Generate(ctx context.Context, question string, retrieved []index.ScoredChunk, history []model.Message) (string, []model.Citation, error)
}

// ChatService owns chat sessions and message history. Each session is a
// small state machine (created, active, deleted) and every SendMessage is
// one serialized read-retrieve-generate-append unit per session.
type ChatService struct {
	sessions     SessionStore
	messages     MessageStore
	docs         DocumentStore
	retriever    ChunkRetriever
	generator    AnswerGenerator
	historyCache HistoryCache

	genTimeout time.Duration
	maxContext int
	titleLen   int

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewChatService(
	sessions SessionStore,
	messages MessageStore,
	docs DocumentStore,
	retriever ChunkRetriever,
	generator AnswerGenerator,
	historyCache HistoryCache,
	genTimeout time.Duration,
	maxContext int,
	titleLen int,
) *ChatService {
	if genTimeout <= 0 {
		genTimeout = defaultGenerateTimeout
	}
	if maxContext <= 0 {
		maxContext = defaultMaxHistory
	}
	return &ChatService{
		sessions:     sessions,
		messages:     messages,
		docs:         docs,
		retriever:    retriever,
		generator:    generator,
		historyCache: historyCache,
		genTimeout:   genTimeout,
		maxContext:   maxContext,
		titleLen:     titleLen,
		locks:        make(map[uint]*sync.Mutex),
	}
}

// CreateSession binds a new session to exactly one document or one topic.
// A scope with zero ready documents is rejected and no session is created.
func (s *ChatService) CreateSession(scope model.Scope) (*model.ChatSession, error) {
	if !scope.Valid() {
		return nil, ErrInvalidInput
	}

	if scope.DocumentID != 0 {
		doc, err := s.docs.GetByID(scope.DocumentID)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			return nil, ErrDocumentNotFound
		}
		if !doc.Ready() {
			return nil, ErrEmptyScope
		}
	} else {
		ready, err := s.docs.ListReadyByTopicID(scope.TopicID)
		if err != nil {
			return nil, err
		}
		if len(ready) == 0 {
			return nil, ErrEmptyScope
		}
	}

	session := &model.ChatSession{
		DocumentID: scope.DocumentID,
		TopicID:    scope.TopicID,
		Title:      "New Chat",
	}
	if err := s.sessions.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *ChatService) ListSessions(scope model.Scope) ([]model.ChatSession, error) {
	return s.sessions.ListByScope(scope)
}

// SendMessage appends the user message, retrieves scoped chunks, generates
// a grounded answer and appends it. Concurrent calls on the same session
// are serialized; other sessions proceed in parallel. Generation runs on a
// detached context so a disconnected caller still gets its answer into
// history, bounded by the configured timeout. On generation failure no
// assistant message is persisted and the user message stays, so a retry
// does not duplicate it.
func (s *ChatService) SendMessage(ctx context.Context, sessionID uint, content string) (*model.Message, error) {
	if sessionID == 0 {
		return nil, ErrInvalidInput
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrMessageEmpty
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.sessions.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	history, err := s.promptHistory(sessionID)
	if err != nil {
		return nil, err
	}

	s.invalidateHistory(sessionID)
	userMessage := &model.Message{
		SessionID: sessionID,
		Role:      model.RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.messages.Create(userMessage); err != nil {
		return nil, err
	}

	// From here on the caller may be gone; the pipeline runs to completion
	// on its own context so history stays consistent for later readers.
	opCtx, cancel := context.WithTimeout(context.Background(), s.genTimeout)
	defer cancel()

	retrieved, err := s.retriever.Retrieve(opCtx, session.Scope(), content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrGeneration, err)
	}
	answer, citations, err := s.generator.Generate(opCtx, content, retrieved, history)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrGeneration, err)
	}

	assistantMessage := &model.Message{
		SessionID: sessionID,
		Role:      model.RoleAssistant,
		Content:   answer,
		CreatedAt: time.Now(),
	}
	assistantMessage.SetCitations(citations)
	if err := s.messages.Create(assistantMessage); err != nil {
		return nil, err
	}
	s.invalidateHistory(sessionID)

	if err := s.finishExchange(session, content); err != nil {
		return nil, err
	}
	return assistantMessage, nil
}

// finishExchange touches the session and, on the very first exchange,
// derives its title. Later exchanges never change the title.
func (s *ChatService) finishExchange(session *model.ChatSession, question string) error {
	count, err := s.messages.CountBySessionID(session.ID)
	if err != nil {
		return err
	}
	if count == 2 {
		return s.sessions.UpdateTitle(session.ID, DeriveTitle(question, s.titleLen))
	}
	return s.sessions.Touch(session.ID)
}

// ListMessages pages chronologically with the offset counted back from the
// newest message: offset 0 is the latest page, larger offsets reach older
// history. The total lets the caller compute whether more history exists.
func (s *ChatService) ListMessages(sessionID uint, limit, offset int) ([]model.Message, int64, error) {
	if sessionID == 0 {
		return nil, 0, ErrInvalidInput
	}
	session, err := s.sessions.GetByID(sessionID)
	if err != nil {
		return nil, 0, err
	}
	if session == nil {
		return nil, 0, ErrSessionNotFound
	}

	if limit <= 0 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	total, err := s.messages.CountBySessionID(sessionID)
	if err != nil {
		return nil, 0, err
	}

	start := int(total) - offset - limit
	size := limit
	if start < 0 {
		size += start
		start = 0
	}
	if size <= 0 {
		return []model.Message{}, total, nil
	}

	messages, err := s.messages.ListRange(sessionID, start, size)
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

// DeleteSession removes the session and its messages. Deleting a session
// that no longer exists is a no-op. It takes the same per-session lock as
// SendMessage, so an exchange in flight finishes first and its messages are
// swept with the rest; nothing can append to the session afterwards.
func (s *ChatService) DeleteSession(sessionID uint) error {
	if sessionID == 0 {
		return ErrInvalidInput
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.sessions.GetByID(sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}
	if err := s.messages.DeleteBySessionID(sessionID); err != nil {
		return err
	}
	if err := s.sessions.DeleteByID(sessionID); err != nil {
		return err
	}
	s.invalidateHistory(sessionID)
	s.dropSessionLock(sessionID)
	return nil
}

// dropSessionLock forgets the deleted session's mutex so the map does not
// grow with session churn. A SendMessage still waiting on the old mutex
// proceeds, re-checks the session and gets ErrSessionNotFound.
func (s *ChatService) dropSessionLock(sessionID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, sessionID)
}

func (s *ChatService) sessionLock(sessionID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	return lock
}

func (s *ChatService) promptHistory(sessionID uint) ([]model.Message, error) {
	ctx := context.Background()
	if s.historyCache != nil {
		if dirty, err := s.historyCache.IsDirty(ctx, sessionID); err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, sessionID); cacheErr == nil && hit {
				return cached, nil
			}
		}
	}

	messages, err := s.messages.ListRecent(sessionID, s.maxContext)
	if err != nil {
		return nil, err
	}
	if s.historyCache != nil {
		if dirty, err := s.historyCache.IsDirty(ctx, sessionID); err == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, sessionID, messages)
		}
	}
	return messages, nil
}

func (s *ChatService) invalidateHistory(sessionID uint) {
	if s.historyCache == nil {
		return
	}
	ctx := context.Background()
	_ = s.historyCache.MarkDirty(ctx, sessionID)
	_ = s.historyCache.DeleteHistory(ctx, sessionID)
}
