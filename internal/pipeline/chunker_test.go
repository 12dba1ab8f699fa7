package pipeline

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/schema"
)

func TestSplitter_ChunksRespectMaxSize(t *testing.T) {
	c := NewChunker(100, 20)

	paragraph := strings.Repeat("Quarterly revenue increased across all segments. ", 8)
	text := paragraph + "\n\n" + paragraph + "\n\n" + paragraph

	chunks, err := c.splitter.SplitText(text)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 100)
		assert.NotEmpty(t, strings.TrimSpace(chunk))
	}
}

func TestSplitter_ShortTextSingleChunk(t *testing.T) {
	c := NewChunker(1000, 150)

	chunks, err := c.splitter.SplitText("A short report summary.")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "A short report summary.", chunks[0])
}

func TestToChunks_CarriesBackReferences(t *testing.T) {
	docs := []schema.Document{
		{PageContent: "first chunk", Metadata: map[string]any{"page": 1}},
		{PageContent: "second chunk", Metadata: map[string]any{"page": 2}},
		{PageContent: "no page metadata", Metadata: map[string]any{}},
	}

	chunks := toChunks(docs, "report.pdf")
	require.Len(t, chunks, 3)

	assert.Equal(t, "first chunk", chunks[0].Text)
	assert.Equal(t, "report.pdf", chunks[0].FileName)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, 2, chunks[1].Page)
	assert.Equal(t, 0, chunks[2].Page)
}

func TestToChunks_PreservesDocumentOrder(t *testing.T) {
	docs := []schema.Document{
		{PageContent: "a"}, {PageContent: "b"}, {PageContent: "c"},
	}
	chunks := toChunks(docs, "f.pdf")
	require.Len(t, chunks, 3)
	assert.Equal(t, "a", chunks[0].Text)
	assert.Equal(t, "b", chunks[1].Text)
	assert.Equal(t, "c", chunks[2].Text)
}
