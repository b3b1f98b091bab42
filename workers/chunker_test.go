package workers

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberedWords(n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return words
}

func TestChunk_StrideAndTrailingWindow(t *testing.T) {
	words := numberedWords(1000)
	chunker := ProvideChunker(500, 50)

	chunks := chunker.Chunk(strings.Join(words, " "))
	require.Len(t, chunks, 3)

	assert.Equal(t, strings.Join(words[0:500], " "), chunks[0])
	assert.Equal(t, strings.Join(words[450:950], " "), chunks[1])
	assert.Equal(t, strings.Join(words[900:1000], " "), chunks[2])
}

func TestChunk_ShorterThanWindow(t *testing.T) {
	chunker := ProvideChunker(500, 50)
	chunks := chunker.Chunk("just a few words here")
	require.Len(t, chunks, 1)
	assert.Equal(t, "just a few words here", chunks[0])
}

func TestChunk_ExactWindow(t *testing.T) {
	words := numberedWords(500)
	chunker := ProvideChunker(500, 50)
	chunks := chunker.Chunk(strings.Join(words, " "))
	require.Len(t, chunks, 1)
}

func TestChunk_EmptyInput(t *testing.T) {
	chunker := ProvideChunker(500, 50)
	assert.Empty(t, chunker.Chunk(""))
	assert.Empty(t, chunker.Chunk("   \n\t  "))
}

func TestProvideChunker_BadConfigFallsBackToDefaults(t *testing.T) {
	chunker := ProvideChunker(0, -1)
	assert.Equal(t, defaultChunkSize, chunker.size)
	assert.Equal(t, defaultChunkOverlap, chunker.overlap)

	// overlap >= size would never advance
	chunker = ProvideChunker(100, 100)
	assert.Equal(t, defaultChunkOverlap, chunker.overlap)
}
