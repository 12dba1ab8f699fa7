package service

import (
	"context"
	"errors"
	"testing"

	"finreport-rag-go/internal/model"
	"finreport-rag-go/pkg/es"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) CreateEmbedding(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	return f.vector, f.err
}

type fakeRetriever struct {
	hits  []es.SearchHit
	err   error
	lastK int
}

func (f *fakeRetriever) Search(_ context.Context, _ []float32, k int) ([]es.SearchHit, error) {
	f.lastK = k
	return f.hits, f.err
}

type fakeLLM struct {
	answer     string
	err        error
	lastPrompt string
	calls      int
}

func (f *fakeLLM) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	return f.answer, f.err
}

func hit(text string) es.SearchHit {
	return es.SearchHit{Document: model.EsDocument{TextContent: text}}
}

func TestFormatHistory_Empty(t *testing.T) {
	assert.Equal(t, "No previous conversation.", formatHistory(nil))
	assert.Equal(t, "No previous conversation.", formatHistory([]model.ChatTurn{}))
}

func TestFormatHistory_PreservesCallerOrder(t *testing.T) {
	history := []model.ChatTurn{
		{Type: model.RoleHuman, Content: "What was revenue in 2023?"},
		{Type: model.RoleAssistant, Content: "Revenue was 10M."},
		{Type: model.RoleHuman, Content: "And in 2024?"},
	}
	expected := "Human: What was revenue in 2023?\n" +
		"Assistant: Revenue was 10M.\n" +
		"Human: And in 2024?"
	assert.Equal(t, expected, formatHistory(history))
}

func TestFormatContext(t *testing.T) {
	assert.Equal(t, "", formatContext(nil))
	assert.Equal(t, "chunk one", formatContext([]es.SearchHit{hit("chunk one")}))
	assert.Equal(t, "chunk one\n\nchunk two", formatContext([]es.SearchHit{hit("chunk one"), hit("chunk two")}))
}

func TestAnswer_SingleChunkContextVerbatim(t *testing.T) {
	chunkText := "The company reported net income of 2.4M in Q3."
	llm := &fakeLLM{answer: "generated answer"}
	retriever := &fakeRetriever{hits: []es.SearchHit{hit(chunkText)}}
	svc := NewChatService(&fakeEmbedder{vector: []float32{0.1, 0.2}}, retriever, llm, 3)

	answer, err := svc.Answer(context.Background(), "What was net income?", nil)
	require.NoError(t, err)
	assert.Equal(t, "generated answer", answer)
	assert.Equal(t, 3, retriever.lastK)
	assert.Contains(t, llm.lastPrompt, chunkText)
	assert.Contains(t, llm.lastPrompt, "No previous conversation.")
	assert.Contains(t, llm.lastPrompt, "What was net income?")
}

func TestAnswer_EmptyStoreStillGenerates(t *testing.T) {
	llm := &fakeLLM{answer: "insufficient context answer"}
	svc := NewChatService(&fakeEmbedder{vector: []float32{0.1}}, &fakeRetriever{}, llm, 3)

	answer, err := svc.Answer(context.Background(), "Anything stored?", nil)
	require.NoError(t, err)
	assert.Equal(t, "insufficient context answer", answer)
	// 零命中不短路：仍然调用生成，上下文渲染为空
	assert.Equal(t, 1, llm.calls)
	assert.Contains(t, llm.lastPrompt, "**Context:**   \n")
}

func TestAnswer_HistoryRenderedInPrompt(t *testing.T) {
	llm := &fakeLLM{answer: "ok"}
	svc := NewChatService(&fakeEmbedder{vector: []float32{0.1}}, &fakeRetriever{}, llm, 3)

	history := []model.ChatTurn{
		{Type: model.RoleHuman, Content: "first question"},
		{Type: model.RoleAssistant, Content: "first answer"},
	}
	_, err := svc.Answer(context.Background(), "follow-up", history)
	require.NoError(t, err)
	assert.Contains(t, llm.lastPrompt, "Human: first question\nAssistant: first answer")
	assert.NotContains(t, llm.lastPrompt, "No previous conversation.")
}

func TestAnswer_StageFailuresAreTyped(t *testing.T) {
	embedErr := &fakeEmbedder{err: errors.New("endpoint unreachable")}
	svc := NewChatService(embedErr, &fakeRetriever{}, &fakeLLM{}, 3)
	_, err := svc.Answer(context.Background(), "q", nil)
	assert.ErrorIs(t, err, model.ErrEmbedding)

	svc = NewChatService(&fakeEmbedder{vector: []float32{0.1}}, &fakeRetriever{err: errors.New("search failed")}, &fakeLLM{}, 3)
	_, err = svc.Answer(context.Background(), "q", nil)
	assert.ErrorIs(t, err, model.ErrVectorStore)

	svc = NewChatService(&fakeEmbedder{vector: []float32{0.1}}, &fakeRetriever{}, &fakeLLM{err: errors.New("llm down")}, 3)
	_, err = svc.Answer(context.Background(), "q", nil)
	assert.ErrorIs(t, err, model.ErrGeneration)
}
