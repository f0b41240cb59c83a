package app

import (
	"context"
	"fmt"
	"log"

	"github.com/GhefinIndra/EduVate/internal/chunker"
)

// Ingestor turns one document's extracted pages into indexed chunks. It is
// driven by the ingestion worker, one job at a time per document. The
// document becomes ready only after every chunk is embedded and stored;
// any failure leaves it failed with no partial chunks indexed.
type Ingestor struct {
	docs     DocumentStore
	index    ChunkIndex
	chunkCfg chunker.Config
}

func NewIngestor(docs DocumentStore, chunkIndex ChunkIndex, chunkCfg chunker.Config) *Ingestor {
	return &Ingestor{docs: docs, index: chunkIndex, chunkCfg: chunkCfg}
}

func (ing *Ingestor) Process(ctx context.Context, job IngestJob) error {
	doc, err := ing.docs.GetByID(job.DocumentID)
	if err != nil {
		return err
	}
	if doc == nil {
		// Deleted while the job was queued; nothing to do.
		log.Printf("ingest: document %d no longer exists, dropping job", job.DocumentID)
		return nil
	}

	_ = ing.docs.UpdateProgress(doc.ID, progressChunking)
	chunks := chunker.ChunkPages(ing.chunkCfg, doc.ID, job.Pages)
	if len(chunks) == 0 {
		log.Printf("ingest: document %d has no chunkable text, marking failed", doc.ID)
		return ing.docs.MarkFailed(doc.ID)
	}

	_ = ing.docs.UpdateProgress(doc.ID, progressEmbedding)
	if err := ing.index.Upsert(ctx, doc.ID, chunks); err != nil {
		_ = ing.docs.MarkFailed(doc.ID)
		return fmt.Errorf("index document %d failed: %w", doc.ID, err)
	}

	return ing.docs.MarkReady(doc.ID, len(chunks))
}
