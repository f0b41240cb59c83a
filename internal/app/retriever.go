package app

import (
	"context"

	"github.com/GhefinIndra/EduVate/internal/index"
	"github.com/GhefinIndra/EduVate/internal/model"
)

const defaultTopK = 5

// Retriever resolves a session's scope to the documents it may see and
// queries the embedding index. Only ready documents participate; a scope
// with no ready documents yields an empty result, not an error.
type Retriever struct {
	docs  DocumentStore
	index ChunkIndex
	topK  int
}

func NewRetriever(docs DocumentStore, chunkIndex ChunkIndex, topK int) *Retriever {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &Retriever{docs: docs, index: chunkIndex, topK: topK}
}

func (r *Retriever) Retrieve(ctx context.Context, scope model.Scope, question string) ([]index.ScoredChunk, error) {
	docIDs, err := r.resolveScope(scope)
	if err != nil {
		return nil, err
	}
	if len(docIDs) == 0 {
		return nil, nil
	}
	return r.index.Query(ctx, docIDs, question, r.topK)
}

// resolveScope returns the scoped document ids in upload order.
func (r *Retriever) resolveScope(scope model.Scope) ([]uint, error) {
	switch {
	case scope.DocumentID != 0:
		doc, err := r.docs.GetByID(scope.DocumentID)
		if err != nil {
			return nil, err
		}
		if doc == nil || !doc.Ready() {
			return nil, nil
		}
		return []uint{doc.ID}, nil
	case scope.TopicID != 0:
		docs, err := r.docs.ListReadyByTopicID(scope.TopicID)
		if err != nil {
			return nil, err
		}
		ids := make([]uint, 0, len(docs))
		for _, d := range docs {
			ids = append(ids, d.ID)
		}
		return ids, nil
	default:
		return nil, ErrInvalidInput
	}
}
