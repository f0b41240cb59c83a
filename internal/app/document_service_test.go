package app

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GhefinIndra/EduVate/internal/model"
)

type docFixture struct {
	svc       *DocumentService
	topics    *fakeTopicStore
	docs      *fakeDocStore
	index     *fakeChunkIndex
	publisher *fakePublisher
	topicID   uint
}

func newDocFixture(t *testing.T) *docFixture {
	t.Helper()
	f := &docFixture{
		topics:    newFakeTopicStore(),
		docs:      newFakeDocStore(),
		index:     newFakeChunkIndex(),
		publisher: &fakePublisher{},
	}
	topic := &model.Topic{Name: "Biology"}
	require.NoError(t, f.topics.Create(topic))
	f.topicID = topic.ID
	f.svc = NewDocumentService(f.topics, f.docs, f.index, f.publisher)
	return f
}

func TestDocumentService_Upload_UnknownTopic(t *testing.T) {
	f := newDocFixture(t)

	_, err := f.svc.Upload(context.Background(), 99, "notes", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrTopicNotFound)

	_, err = f.svc.Upload(context.Background(), 0, "notes", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDocumentService_Upload_UnparseableFile(t *testing.T) {
	f := newDocFixture(t)

	_, err := f.svc.Upload(context.Background(), f.topicID, "notes", bytes.NewReader([]byte("not a pdf at all")))

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, f.publisher.jobs)
}

func TestDocumentService_Upload_NoExtractableTextFailsTerminally(t *testing.T) {
	f := newDocFixture(t)

	// an empty upload parses to zero pages of text
	doc, err := f.svc.Upload(context.Background(), f.topicID, "scanned slides", strings.NewReader(""))

	require.NoError(t, err)
	assert.Equal(t, model.DocumentStatusFailed, doc.Status)
	assert.Empty(t, f.publisher.jobs, "failed documents are never enqueued")

	stored, err := f.docs.GetByID(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentStatusFailed, stored.Status)
}

func TestDocumentService_GetAndList(t *testing.T) {
	f := newDocFixture(t)
	id := f.docs.seed(model.Document{TopicID: f.topicID, Title: "Lecture 1", Status: model.DocumentStatusReady})
	f.docs.seed(model.Document{TopicID: f.topicID, Title: "Lecture 2", Status: model.DocumentStatusProcessing})

	doc, err := f.svc.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Lecture 1", doc.Title)

	_, err = f.svc.Get(999)
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	docs, err := f.svc.ListByTopic(f.topicID)
	require.NoError(t, err)
	assert.Len(t, docs, 2, "listing includes documents in every status")
}

func TestDocumentService_Delete_CascadesIndex(t *testing.T) {
	f := newDocFixture(t)
	id := f.docs.seed(model.Document{TopicID: f.topicID, Status: model.DocumentStatusReady})
	require.NoError(t, f.index.Upsert(context.Background(), id, []model.Chunk{{DocumentID: id, Content: "x"}}))

	require.NoError(t, f.svc.Delete(context.Background(), id))

	assert.Empty(t, f.index.byDocument[id])
	doc, err := f.docs.GetByID(id)
	require.NoError(t, err)
	assert.Nil(t, doc)

	assert.ErrorIs(t, f.svc.Delete(context.Background(), id), ErrDocumentNotFound)
}
