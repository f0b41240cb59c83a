package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GhefinIndra/EduVate/internal/ai"
	"github.com/GhefinIndra/EduVate/internal/index"
	"github.com/GhefinIndra/EduVate/internal/model"
)

type fakeCompleter struct {
	answer   string
	err      error
	received []ai.ChatMessage
	calls    int
}

func (f *fakeCompleter) Complete(_ context.Context, messages []ai.ChatMessage) (string, error) {
	f.calls++
	f.received = messages
	return f.answer, f.err
}

func retrievedFixture() []index.ScoredChunk {
	return []index.ScoredChunk{
		{Chunk: model.Chunk{DocumentID: 1, Page: 3, Ordinal: 0, Content: "The mitochondria is the powerhouse of the cell."}, Score: 0.91},
		{Chunk: model.Chunk{DocumentID: 1, Page: 5, Ordinal: 4, Content: "ATP synthesis happens across the inner membrane."}, Score: 0.84},
		{Chunk: model.Chunk{DocumentID: 2, Page: 1, Ordinal: 0, Content: "Cellular respiration converts glucose to energy."}, Score: 0.80},
	}
}

func TestGenerator_Generate_NoMaterialSkipsModelCall(t *testing.T) {
	completer := &fakeCompleter{answer: "should never be used"}
	gen := NewGenerator(completer, 10, 200)

	answer, citations, err := gen.Generate(context.Background(), "anything", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, NoMaterialAnswer, answer)
	assert.Empty(t, citations)
	assert.Zero(t, completer.calls)
}

func TestGenerator_Generate_CitationsResolveToRetrievedChunks(t *testing.T) {
	completer := &fakeCompleter{answer: "Energy comes from respiration [S3] and ATP synthesis [S2]."}
	gen := NewGenerator(completer, 10, 200)

	answer, citations, err := gen.Generate(context.Background(), "where does energy come from?", retrievedFixture(), nil)

	require.NoError(t, err)
	assert.Contains(t, answer, "[S3]")
	require.Len(t, citations, 2)
	// sorted by document then page
	assert.Equal(t, uint(1), citations[0].DocumentID)
	assert.Equal(t, 5, citations[0].Page)
	assert.Equal(t, uint(2), citations[1].DocumentID)
	assert.Equal(t, 1, citations[1].Page)
	assert.Equal(t, "ATP synthesis happens across the inner membrane.", citations[0].Snippet)
}

func TestGenerator_Generate_UnresolvableMarkerDropped(t *testing.T) {
	completer := &fakeCompleter{answer: "True fact [S1]. Fabricated fact [S9]."}
	gen := NewGenerator(completer, 10, 200)

	_, citations, err := gen.Generate(context.Background(), "q", retrievedFixture(), nil)

	require.NoError(t, err)
	require.Len(t, citations, 1)
	assert.Equal(t, uint(1), citations[0].DocumentID)
	assert.Equal(t, 3, citations[0].Page)
}

func TestGenerator_Generate_DeduplicatesByDocumentAndPage(t *testing.T) {
	retrieved := []index.ScoredChunk{
		{Chunk: model.Chunk{DocumentID: 1, Page: 2, Ordinal: 0, Content: "first window"}},
		{Chunk: model.Chunk{DocumentID: 1, Page: 2, Ordinal: 1, Content: "second window, same page"}},
	}
	completer := &fakeCompleter{answer: "Claim A [S1]. Claim B [S2]. Claim A again [S1]."}
	gen := NewGenerator(completer, 10, 200)

	_, citations, err := gen.Generate(context.Background(), "q", retrieved, nil)

	require.NoError(t, err)
	require.Len(t, citations, 1)
	assert.Equal(t, 2, citations[0].Page)
}

func TestGenerator_Generate_CompletionErrorPropagates(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("upstream 500")}
	gen := NewGenerator(completer, 10, 200)

	_, _, err := gen.Generate(context.Background(), "q", retrievedFixture(), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm completion failed")
}

func TestGenerator_Generate_EmptyAnswerFallback(t *testing.T) {
	completer := &fakeCompleter{answer: "   \n  "}
	gen := NewGenerator(completer, 10, 200)

	answer, citations, err := gen.Generate(context.Background(), "q", retrievedFixture(), nil)

	require.NoError(t, err)
	assert.Equal(t, "The model returned an empty response.", answer)
	assert.Empty(t, citations)
}

func TestGenerator_BuildPrompt_BoundsHistoryWindow(t *testing.T) {
	completer := &fakeCompleter{answer: "ok [S1]"}
	gen := NewGenerator(completer, 4, 200)

	history := make([]model.Message, 0, 12)
	for i := 0; i < 12; i++ {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		history = append(history, model.Message{Role: role, Content: strings.Repeat("m", i+1)})
	}

	_, _, err := gen.Generate(context.Background(), "q", retrievedFixture(), history)
	require.NoError(t, err)

	// system + 4 history turns + final user message
	require.Len(t, completer.received, 6)
	assert.Equal(t, "system", completer.received[0].Role)
	assert.Equal(t, strings.Repeat("m", 9), completer.received[1].Content)
	final := completer.received[len(completer.received)-1]
	assert.Equal(t, model.RoleUser, final.Role)
	assert.Contains(t, final.Content, "[S1] (document 1, page 3)")
	assert.Contains(t, final.Content, "Question: q")
}

func TestSplitMarkers(t *testing.T) {
	segs := splitMarkers("claim [S1] and [S12], but [Snot] and [S stays text")

	var markers []int
	for _, seg := range segs {
		if seg.isMarker {
			markers = append(markers, seg.ref)
		}
	}
	assert.Equal(t, []int{1, 12}, markers)

	var rebuilt strings.Builder
	for _, seg := range segs {
		rebuilt.WriteString(seg.text)
	}
	assert.Equal(t, "claim [S1] and [S12], but [Snot] and [S stays text", rebuilt.String())
}

func TestSnippet_TruncatesOnRunes(t *testing.T) {
	assert.Equal(t, "short", snippet("short", 10))
	long := strings.Repeat("é", 30)
	got := snippet(long, 10)
	assert.Equal(t, strings.Repeat("é", 10)+"...", got)
}

func TestDeriveTitle(t *testing.T) {
	cases := []struct {
		name     string
		question string
		want     string
	}{
		{"plain", "What is photosynthesis?", "What is photosynthesis?"},
		{"prefix stripped", "Title: Cell Biology Basics", "Cell Biology Basics"},
		{"indonesian prefix", "judul: Fotosintesis", "Fotosintesis"},
		{"quotes trimmed", `"Thermodynamics"`, "Thermodynamics"},
		{"whitespace collapsed", "  multiple \n spaces \t here ", "multiple spaces here"},
		{"empty falls back", "   ", "New Chat"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveTitle(tc.question, 50))
		})
	}
}

func TestDeriveTitle_Truncation(t *testing.T) {
	long := strings.Repeat("word ", 30)
	got := DeriveTitle(long, 20)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len([]rune(got)), 23)
}
