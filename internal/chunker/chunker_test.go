package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdekker/ragserve/pkg/types"
)

func TestNewUnknownStrategy(t *testing.T) {
	_, err := New("recursive", Config{})
	require.Error(t, err)
	assert.Equal(t, types.KindValidation, types.KindOf(err))
}

func TestNewDefaultStrategy(t *testing.T) {
	c, err := New("", Config{})
	require.NoError(t, err)
	assert.Equal(t, StrategyFixed, c.strategy)
}

func TestChunkEmpty(t *testing.T) {
	c, err := New(StrategyFixed, Config{})
	require.NoError(t, err)
	assert.Empty(t, c.Chunk(""))
}

func TestChunkBelowMinimum(t *testing.T) {
	c, err := New(StrategyFixed, Config{})
	require.NoError(t, err)

	chunks := c.Chunk("short text")
	require.Len(t, chunks, 1)
	assert.Equal(t, "complete", chunks[0].Type)
	assert.Equal(t, "short text", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 1, chunks[0].Total)
}

func TestChunkFixed(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 100; i++ {
		fmt.Fprintf(&sb, "Sentence number %d has a bit of filler in it. ", i)
	}
	text := sb.String()

	c, err := New(StrategyFixed, Config{ChunkSize: 500, Overlap: 100, MinChunkSize: 50})
	require.NoError(t, err)

	chunks := c.Chunk(text)
	require.Greater(t, len(chunks), 1)

	for i, ch := range chunks {
		assert.Equal(t, i, ch.Index)
		assert.Equal(t, len(chunks), ch.Total)
		assert.Equal(t, "fixed", ch.Type)
		assert.Equal(t, text[ch.CharStart:ch.CharEnd], ch.Text)
		assert.LessOrEqual(t, len(ch.Text), 500+boundaryWindow)
	}

	// Adjacent chunks overlap: the next chunk starts before the previous
	// one ends.
	for i := 1; i < len(chunks); i++ {
		assert.Less(t, chunks[i].CharStart, chunks[i-1].CharEnd)
	}
}

func TestChunkFixedNoOverlapLoop(t *testing.T) {
	// Overlap >= chunk size must not stall the walk.
	text := strings.Repeat("abcdefghij", 100)
	c, err := New(StrategyFixed, Config{ChunkSize: 200, Overlap: 200, MinChunkSize: 50})
	require.NoError(t, err)

	chunks := c.Chunk(text)
	require.NotEmpty(t, chunks)
	for i := 1; i < len(chunks); i++ {
		assert.Greater(t, chunks[i].CharStart, chunks[i-1].CharStart)
	}
}

func TestChunkParagraph(t *testing.T) {
	paras := []string{
		strings.Repeat("First paragraph text. ", 10),
		strings.Repeat("Second paragraph text. ", 10),
		strings.Repeat("Third paragraph text. ", 10),
	}
	text := strings.Join(paras, "\n\n")

	c, err := New(StrategyParagraph, Config{ChunkSize: 300, Overlap: 0, MinChunkSize: 50})
	require.NoError(t, err)

	chunks := c.Chunk(text)
	require.Greater(t, len(chunks), 1)
	for _, ch := range chunks {
		assert.Equal(t, "paragraph", ch.Type)
		assert.NotEmpty(t, ch.Text)
	}
}

func TestChunkParagraphSinglePacked(t *testing.T) {
	text := strings.Repeat("Alpha beta gamma. ", 10) + "\n\n" + strings.Repeat("Delta epsilon. ", 5)

	c, err := New(StrategyParagraph, Config{ChunkSize: 5000, Overlap: 0, MinChunkSize: 50})
	require.NoError(t, err)

	chunks := c.Chunk(text)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Text, "Alpha beta gamma.")
	assert.Contains(t, chunks[0].Text, "Delta epsilon.")
}

func TestChunkSemanticAlias(t *testing.T) {
	c, err := New(StrategySemantic, Config{ChunkSize: 300, MinChunkSize: 50})
	require.NoError(t, err)

	text := strings.Repeat("Lorem ipsum dolor sit amet. ", 30)
	chunks := c.Chunk(text)
	require.NotEmpty(t, chunks)
	assert.Equal(t, "paragraph", chunks[0].Type)
}

func TestChunkCodePython(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&sb, "def handler_%d(request):\n    value = compute(request)\n    return value\n\n", i)
	}
	text := sb.String()

	c, err := New(StrategyCode, Config{ChunkSize: 400, MinChunkSize: 50, Language: "python"})
	require.NoError(t, err)

	chunks := c.Chunk(text)
	require.Greater(t, len(chunks), 1)
	for _, ch := range chunks {
		assert.Equal(t, "code_block", ch.Type)
		assert.Contains(t, ch.Text, "def handler_")
	}
}

func TestChunkCodeBraceLanguage(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 15; i++ {
		fmt.Fprintf(&sb, "func process%d(in string) string {\n\treturn strings.ToUpper(in)\n}\n\n", i)
	}
	text := sb.String()

	c, err := New(StrategyCode, Config{ChunkSize: 400, MinChunkSize: 50, Language: "go"})
	require.NoError(t, err)

	chunks := c.Chunk(text)
	require.Greater(t, len(chunks), 1)
	assert.Equal(t, "code_block", chunks[0].Type)
}

func TestChunkCodeFallsBackToFixed(t *testing.T) {
	// Prose has no code boundaries.
	text := strings.Repeat("Plain narrative text without any definitions at all. ", 30)

	c, err := New(StrategyCode, Config{ChunkSize: 400, Overlap: 50, MinChunkSize: 50, Language: "python"})
	require.NoError(t, err)

	chunks := c.Chunk(text)
	require.NotEmpty(t, chunks)
	assert.Equal(t, "fixed", chunks[0].Type)
}

func TestLanguageForExtension(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{".go", "go"},
		{".py", "python"},
		{".ts", "typescript"},
		{".md", "markdown"},
		{".PY", "python"},
		{".weird", "unknown"},
		{"", "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LanguageForExtension(tt.ext), "ext %q", tt.ext)
	}
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 25, EstimateTokens(strings.Repeat("a", 100)))
}

func TestID(t *testing.T) {
	assert.Equal(t, "src/main.go#a1b2c3d4#chunk_0", ID("src/main.go", "a1b2c3d4", 0))
	assert.Equal(t, "docs/guide.md#deadbeef#chunk_7", ID("docs/guide.md", "deadbeef", 7))
}
