package chunker

import (
	"strings"

	"github.com/GhefinIndra/EduVate/internal/model"
	"github.com/GhefinIndra/EduVate/internal/pkg/pdfextract"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
)

// Config fixes the window geometry for the lifetime of an index. Sizes are
// counted in runes so behavior is language-agnostic and deterministic.
type Config struct {
	Size    int
	Overlap int
}

func (c Config) normalized() Config {
	if c.Size <= 0 {
		c.Size = defaultChunkSize
	}
	if c.Overlap < 0 || c.Overlap >= c.Size {
		c.Overlap = c.Size / 5
	}
	return c
}

// ChunkPages splits the extracted pages of one document into overlapping
// windows. A window never spans two pages, so every chunk carries exactly
// one page number. Identical input always produces identical chunks.
func ChunkPages(cfg Config, documentID uint, pages []pdfextract.Page) []model.Chunk {
	cfg = cfg.normalized()

	var chunks []model.Chunk
	ordinal := 0
	for _, page := range pages {
		for _, w := range chunkPage(cfg, page.Text) {
			chunks = append(chunks, model.Chunk{
				DocumentID: documentID,
				Page:       page.Number,
				Ordinal:    ordinal,
				Content:    w.text,
				CharStart:  w.start,
				CharEnd:    w.end,
			})
			ordinal++
		}
	}
	return chunks
}

type window struct {
	text  string
	start int
	end   int
}

func chunkPage(cfg Config, text string) []window {
	runes := []rune(text)
	step := cfg.Size - cfg.Overlap

	var windows []window
	for start := 0; start < len(runes); start += step {
		end := start + cfg.Size
		if end > len(runes) {
			end = len(runes)
		}
		content := strings.TrimSpace(string(runes[start:end]))
		if content != "" {
			windows = append(windows, window{text: content, start: start, end: end})
		}
		if end == len(runes) {
			break
		}
	}
	return windows
}
