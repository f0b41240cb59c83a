package app

import (
	"context"
	"sort"
	"sync"

	"github.com/GhefinIndra/EduVate/internal/index"
	"github.com/GhefinIndra/EduVate/internal/model"
)

// In-memory store fakes shared by the service tests. They mimic the
// repository contracts closely enough for the services not to notice.

type fakeTopicStore struct {
	mu     sync.Mutex
	nextID uint
	topics map[uint]model.Topic
}

func newFakeTopicStore() *fakeTopicStore {
	return &fakeTopicStore{topics: make(map[uint]model.Topic)}
}

func (s *fakeTopicStore) Create(topic *model.Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	topic.ID = s.nextID
	s.topics[topic.ID] = *topic
	return nil
}

func (s *fakeTopicStore) GetByID(topicID uint) (*model.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if topic, ok := s.topics[topicID]; ok {
		return &topic, nil
	}
	return nil, nil
}

func (s *fakeTopicStore) List() ([]model.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Topic, 0, len(s.topics))
	for _, topic := range s.topics {
		out = append(out, topic)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeDocStore struct {
	mu     sync.Mutex
	nextID uint
	docs   map[uint]model.Document
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{docs: make(map[uint]model.Document)}
}

func (s *fakeDocStore) Create(doc *model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	doc.ID = s.nextID
	s.docs[doc.ID] = *doc
	return nil
}

func (s *fakeDocStore) GetByID(documentID uint) (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[documentID]; ok {
		return &doc, nil
	}
	return nil, nil
}

func (s *fakeDocStore) listByTopic(topicID uint, onlyReady bool) []model.Document {
	var out []model.Document
	for _, doc := range s.docs {
		if doc.TopicID != topicID {
			continue
		}
		if onlyReady && !doc.Ready() {
			continue
		}
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *fakeDocStore) ListByTopicID(topicID uint) ([]model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listByTopic(topicID, false), nil
}

func (s *fakeDocStore) ListReadyByTopicID(topicID uint) ([]model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listByTopic(topicID, true), nil
}

func (s *fakeDocStore) UpdateProgress(documentID uint, progress int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[documentID]; ok {
		doc.Progress = progress
		s.docs[documentID] = doc
	}
	return nil
}

func (s *fakeDocStore) MarkReady(documentID uint, chunkCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[documentID]; ok {
		doc.Status = model.DocumentStatusReady
		doc.Progress = 100
		doc.ChunkCount = chunkCount
		s.docs[documentID] = doc
	}
	return nil
}

func (s *fakeDocStore) MarkFailed(documentID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[documentID]; ok {
		doc.Status = model.DocumentStatusFailed
		s.docs[documentID] = doc
	}
	return nil
}

func (s *fakeDocStore) DeleteByID(documentID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, documentID)
	return nil
}

func (s *fakeDocStore) seed(doc model.Document) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	doc.ID = s.nextID
	s.docs[doc.ID] = doc
	return doc.ID
}

type fakeSessionStore struct {
	mu       sync.Mutex
	nextID   uint
	sessions map[uint]model.ChatSession
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[uint]model.ChatSession)}
}

func (s *fakeSessionStore) Create(session *model.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	session.ID = s.nextID
	s.sessions[session.ID] = *session
	return nil
}

func (s *fakeSessionStore) GetByID(sessionID uint) (*model.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[sessionID]; ok {
		return &session, nil
	}
	return nil, nil
}

func (s *fakeSessionStore) ListByScope(scope model.Scope) ([]model.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ChatSession
	for _, session := range s.sessions {
		if session.DocumentID == scope.DocumentID && session.TopicID == scope.TopicID {
			out = append(out, session)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeSessionStore) UpdateTitle(sessionID uint, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[sessionID]; ok {
		session.Title = title
		s.sessions[sessionID] = session
	}
	return nil
}

func (s *fakeSessionStore) Touch(sessionID uint) error {
	return nil
}

func (s *fakeSessionStore) DeleteByID(sessionID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

type fakeMessageStore struct {
	mu     sync.Mutex
	nextID uint
	rows   []model.Message
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{}
}

func (s *fakeMessageStore) Create(message *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	message.ID = s.nextID
	s.rows = append(s.rows, *message)
	return nil
}

func (s *fakeMessageStore) bySession(sessionID uint) []model.Message {
	var out []model.Message
	for _, m := range s.rows {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out
}

func (s *fakeMessageStore) CountBySessionID(sessionID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.bySession(sessionID))), nil
}

func (s *fakeMessageStore) ListRange(sessionID uint, start, limit int) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.bySession(sessionID)
	if start >= len(all) {
		return nil, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return append([]model.Message(nil), all[start:end]...), nil
}

func (s *fakeMessageStore) ListRecent(sessionID uint, n int) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.bySession(sessionID)
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return append([]model.Message(nil), all...), nil
}

func (s *fakeMessageStore) DeleteBySessionID(sessionID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.rows[:0]
	for _, m := range s.rows {
		if m.SessionID != sessionID {
			kept = append(kept, m)
		}
	}
	s.rows = kept
	return nil
}

type fakeChunkIndex struct {
	mu         sync.Mutex
	byDocument map[uint][]model.Chunk
	results    []index.ScoredChunk
	queryErr   error
	upsertErr  error
	queries    [][]uint
}

func newFakeChunkIndex() *fakeChunkIndex {
	return &fakeChunkIndex{byDocument: make(map[uint][]model.Chunk)}
}

func (f *fakeChunkIndex) Upsert(_ context.Context, documentID uint, chunks []model.Chunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.byDocument[documentID] = append([]model.Chunk(nil), chunks...)
	return nil
}

func (f *fakeChunkIndex) Query(_ context.Context, documentIDs []uint, _ string, _ int) ([]index.ScoredChunk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	f.queries = append(f.queries, append([]uint(nil), documentIDs...))
	return f.results, nil
}

func (f *fakeChunkIndex) Delete(_ context.Context, documentID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byDocument, documentID)
	return nil
}

type fakePublisher struct {
	mu   sync.Mutex
	jobs []IngestJob
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, job IngestJob) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, job)
	return nil
}

type fakeRetriever struct {
	results []index.ScoredChunk
	err     error
}

func (r *fakeRetriever) Retrieve(_ context.Context, _ model.Scope, _ string) ([]index.ScoredChunk, error) {
	return r.results, r.err
}

type fakeGenerator struct {
	mu       sync.Mutex
	answer   string
	err      error
	delay    func()
	inFlight int
	maxSeen  int
}

func (g *fakeGenerator) Generate(_ context.Context, _ string, retrieved []index.ScoredChunk, _ []model.Message) (string, []model.Citation, error) {
	g.mu.Lock()
	g.inFlight++
	if g.inFlight > g.maxSeen {
		g.maxSeen = g.inFlight
	}
	g.mu.Unlock()

	if g.delay != nil {
		g.delay()
	}

	g.mu.Lock()
	g.inFlight--
	g.mu.Unlock()

	if g.err != nil {
		return "", nil, g.err
	}
	var citations []model.Citation
	if len(retrieved) > 0 {
		c := retrieved[0].Chunk
		citations = append(citations, model.Citation{DocumentID: c.DocumentID, Page: c.Page, Snippet: c.Content})
	}
	return g.answer, citations, nil
}
