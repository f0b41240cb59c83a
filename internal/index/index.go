// Package index is the embedding index: it stores chunk vectors alongside
// chunk metadata and answers cosine-similarity queries over a set of
// documents. Partitioning is by document id; callers scope queries by
// passing only the documents a session may see.
package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/GhefinIndra/EduVate/internal/model"
)

const (
	defaultTopK        = 5
	embeddingBatchSize = 10 // embedding APIs often limit batch size
)

// Embedder is the fixed embedding function of the index. The same function
// must be used at upsert time and query time.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// ChunkStore persists chunk rows with their vectors. Replace and delete are
// atomic with respect to concurrent reads.
type ChunkStore interface {
	ReplaceForDocument(documentID uint, chunks []model.Chunk) error
	ListByDocumentIDs(documentIDs []uint) ([]model.Chunk, error)
	DeleteByDocumentID(documentID uint) error
}

type ScoredChunk struct {
	Chunk model.Chunk `json:"chunk"`
	Score float32     `json:"score"`
}

type Index struct {
	store    ChunkStore
	embedder Embedder
}

func New(store ChunkStore, embedder Embedder) *Index {
	return &Index{store: store, embedder: embedder}
}

// Upsert embeds every chunk and replaces the document's stored chunks in a
// single transaction.
func (ix *Index) Upsert(ctx context.Context, documentID uint, chunks []model.Chunk) error {
	if len(chunks) == 0 {
		return errors.New("no chunks to index")
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}

	var embeddings [][]float32
	for i := 0; i < len(texts); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := ix.embedder.EmbedBatch(ctx, texts[i:end])
		if err != nil {
			return fmt.Errorf("embed chunk batch failed: %w", err)
		}
		embeddings = append(embeddings, batch...)
	}
	if len(embeddings) != len(chunks) {
		return errors.New("embedding count mismatch")
	}

	for i := range chunks {
		chunks[i].SetEmbedding(embeddings[i])
	}
	return ix.store.ReplaceForDocument(documentID, chunks)
}

// Query embeds the question with the index's embedding function and returns
// the topK most similar chunks among the given documents. Ties are broken by
// document upload order, then page, then ordinal, so results are
// deterministic.
func (ix *Index) Query(ctx context.Context, documentIDs []uint, queryText string, topK int) ([]ScoredChunk, error) {
	if topK <= 0 {
		topK = defaultTopK
	}
	if len(documentIDs) == 0 {
		return nil, nil
	}

	chunks, err := ix.store.ListByDocumentIDs(documentIDs)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	queryVec, err := ix.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embed query failed: %w", err)
	}

	docRank := make(map[uint]int, len(documentIDs))
	for i, id := range documentIDs {
		docRank[id] = i
	}

	scored := make([]ScoredChunk, len(chunks))
	for i := range chunks {
		scored[i] = ScoredChunk{
			Chunk: chunks[i],
			Score: cosineSimilarity(queryVec, chunks[i].EmbeddingVector()),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if docRank[a.Chunk.DocumentID] != docRank[b.Chunk.DocumentID] {
			return docRank[a.Chunk.DocumentID] < docRank[b.Chunk.DocumentID]
		}
		if a.Chunk.Page != b.Chunk.Page {
			return a.Chunk.Page < b.Chunk.Page
		}
		return a.Chunk.Ordinal < b.Chunk.Ordinal
	})

	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK], nil
}

// Delete removes every chunk of the document from the index.
func (ix *Index) Delete(ctx context.Context, documentID uint) error {
	return ix.store.DeleteByDocumentID(documentID)
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return dot / float32(math.Sqrt(float64(normA))*math.Sqrt(float64(normB)))
}
