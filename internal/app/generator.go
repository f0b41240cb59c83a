package app

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/GhefinIndra/EduVate/internal/ai"
	"github.com/GhefinIndra/EduVate/internal/index"
	"github.com/GhefinIndra/EduVate/internal/model"
)

const (
	defaultSnippetLength = 200
	defaultMaxHistory    = 10

	// NoMaterialAnswer is returned without a model call when retrieval
	// found nothing to ground an answer in.
	NoMaterialAnswer = "I couldn't find anything in your uploaded material that answers this question. Try rephrasing it, or upload the document it refers to."

	systemInstruction = "You are EduVate, a study assistant. Answer the question using only the " +
		"excerpts provided below. Each excerpt is tagged like [S1] together with its document and " +
		"page. Whenever a claim is supported by an excerpt, append that excerpt's tag to the claim, " +
		"for example [S2]. If the excerpts do not contain the answer, say so plainly. Never cite an " +
		"excerpt that was not provided and never make up facts."
)

// Completer is the single synchronous language-model call the generator
// makes per user message.
type Completer interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

// Generator grounds answers in retrieved chunks. Every citation it returns
// traces back to a chunk in the retrieved set: markers that do not resolve
// are dropped and logged, never surfaced.
type Generator struct {
	completer  Completer
	maxHistory int
	snippetLen int
}

func NewGenerator(completer Completer, maxHistory, snippetLen int) *Generator {
	if maxHistory <= 0 {
		maxHistory = defaultMaxHistory
	}
	if snippetLen <= 0 {
		snippetLen = defaultSnippetLength
	}
	return &Generator{completer: completer, maxHistory: maxHistory, snippetLen: snippetLen}
}

func (g *Generator) Generate(
	ctx context.Context,
	question string,
	retrieved []index.ScoredChunk,
	history []model.Message,
) (string, []model.Citation, error) {
	if len(retrieved) == 0 {
		return NoMaterialAnswer, nil, nil
	}

	answer, err := g.completer.Complete(ctx, g.buildPrompt(question, retrieved, history))
	if err != nil {
		return "", nil, fmt.Errorf("llm completion failed: %w", err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = "The model returned an empty response."
	}

	return answer, g.resolveCitations(answer, retrieved), nil
}

// buildPrompt assembles system instruction, a bounded window of prior
// turns, and the tagged excerpts with the question.
func (g *Generator) buildPrompt(question string, retrieved []index.ScoredChunk, history []model.Message) []ai.ChatMessage {
	if len(history) > g.maxHistory {
		history = history[len(history)-g.maxHistory:]
	}

	messages := make([]ai.ChatMessage, 0, len(history)+2)
	messages = append(messages, ai.ChatMessage{Role: "system", Content: systemInstruction})
	for _, item := range history {
		role := item.Role
		if role == "" {
			role = model.RoleUser
		}
		messages = append(messages, ai.ChatMessage{Role: role, Content: item.Content})
	}

	var b strings.Builder
	b.WriteString("Excerpts:\n")
	for i, sc := range retrieved {
		fmt.Fprintf(&b, "\n[S%d] (document %d, page %d):\n%s\n---\n",
			i+1, sc.Chunk.DocumentID, sc.Chunk.Page, sc.Chunk.Content)
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	messages = append(messages, ai.ChatMessage{Role: model.RoleUser, Content: b.String()})
	return messages
}

// resolveCitations parses the answer into text and marker segments, then
// maps each marker back to the retrieved chunk it refers to. Citations are
// deduplicated per (document, page) and sorted for stable output.
func (g *Generator) resolveCitations(answer string, retrieved []index.ScoredChunk) []model.Citation {
	type pageKey struct {
		doc  uint
		page int
	}
	seen := make(map[pageKey]bool)
	var citations []model.Citation

	for _, seg := range splitMarkers(answer) {
		if !seg.isMarker {
			continue
		}
		if seg.ref < 1 || seg.ref > len(retrieved) {
			log.Printf("grounding violation: marker %s has no retrieved excerpt, dropping citation", seg.text)
			continue
		}
		chunk := retrieved[seg.ref-1].Chunk
		key := pageKey{doc: chunk.DocumentID, page: chunk.Page}
		if seen[key] {
			continue
		}
		seen[key] = true
		citations = append(citations, model.Citation{
			DocumentID: chunk.DocumentID,
			Page:       chunk.Page,
			Snippet:    snippet(chunk.Content, g.snippetLen),
		})
	}

	sort.Slice(citations, func(i, j int) bool {
		if citations[i].DocumentID != citations[j].DocumentID {
			return citations[i].DocumentID < citations[j].DocumentID
		}
		return citations[i].Page < citations[j].Page
	})
	return citations
}

type segment struct {
	text     string
	ref      int
	isMarker bool
}

// splitMarkers scans model output into a sequence of text and [S<n>]
// marker segments. Anything that only looks like a marker stays text.
func splitMarkers(s string) []segment {
	var segs []segment
	rest := s
	for {
		i := strings.Index(rest, "[S")
		if i < 0 {
			break
		}
		j := i + 2
		k := j
		for k < len(rest) && rest[k] >= '0' && rest[k] <= '9' {
			k++
		}
		if k == j || k >= len(rest) || rest[k] != ']' {
			segs = append(segs, segment{text: rest[:j]})
			rest = rest[j:]
			continue
		}
		if i > 0 {
			segs = append(segs, segment{text: rest[:i]})
		}
		ref, _ := strconv.Atoi(rest[j:k])
		segs = append(segs, segment{text: rest[i : k+1], ref: ref, isMarker: true})
		rest = rest[k+1:]
	}
	if rest != "" {
		segs = append(segs, segment{text: rest})
	}
	return segs
}

func snippet(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return strings.TrimSpace(string(runes[:maxRunes])) + "..."
}

// DeriveTitle builds a short session title from the first question of a
// session: prefix and quote cleanup, whitespace collapse, rune truncation.
func DeriveTitle(question string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = 50
	}
	title := strings.TrimSpace(question)
	for _, prefix := range []string{"title:", "judul:", "topic:"} {
		if len(title) >= len(prefix) && strings.EqualFold(title[:len(prefix)], prefix) {
			title = strings.TrimSpace(title[len(prefix):])
		}
	}
	title = strings.Trim(title, "\"'")
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return "New Chat"
	}
	runes := []rune(title)
	if len(runes) > maxRunes {
		title = strings.TrimSpace(string(runes[:maxRunes])) + "..."
	}
	return title
}
