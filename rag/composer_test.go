package rag

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ai-synapse/ocr-core/db"
	"github.com/ai-synapse/ocr-core/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLLM struct {
	answer string
	err    error
	called bool
	prompt string
}

func (s *stubLLM) GenerateInference(_ context.Context, messages []llm.Message, callback func(chunk string) error, _ ...llm.LLMOption) error {
	s.called = true
	if len(messages) > 0 {
		s.prompt = messages[len(messages)-1].Content
	}
	if s.err != nil {
		return s.err
	}
	return callback(s.answer)
}

func (s *stubLLM) GetModel() string { return "stub" }

func someHits() []Hit {
	return []Hit{
		{Record: db.EmbeddingModel{DocumentID: "doc-a", PageNumber: 2, Text: "the totals were reconciled", Confidence: 0.9}, Score: 0.8},
		{Record: db.EmbeddingModel{DocumentID: "doc-b", PageNumber: 5, TableID: "t-1", Text: strings.Repeat("x", 300), Confidence: 0.7}, Score: 0.6},
	}
}

func TestCompose_GroundedAnswer(t *testing.T) {
	client := &stubLLM{answer: "The totals were reconciled. [1]"}
	composer := NewComposer(client)

	answer := composer.Compose(context.Background(), "were the totals reconciled?", someHits())

	assert.Equal(t, "The totals were reconciled. [1]", answer.Text)
	assert.InDelta(t, 0.8, answer.Confidence, 1e-9)
	require.Len(t, answer.Citations, 2)

	assert.Equal(t, "doc-a", answer.Citations[0].DocumentID)
	assert.Equal(t, 2, answer.Citations[0].PageNumber)
	assert.Equal(t, "the totals were reconciled", answer.Citations[0].Snippet)

	// long text gets clipped with an ellipsis
	assert.Equal(t, "t-1", answer.Citations[1].TableID)
	assert.Len(t, answer.Citations[1].Snippet, snippetLimit+3)
	assert.True(t, strings.HasSuffix(answer.Citations[1].Snippet, "..."))

	// the model saw the numbered context
	assert.Contains(t, client.prompt, "[1] (document doc-a, page 2)")
	assert.Contains(t, client.prompt, "were the totals reconciled?")
}

func TestCompose_NoHitsSkipsModel(t *testing.T) {
	client := &stubLLM{answer: "should never be used"}
	composer := NewComposer(client)

	answer := composer.Compose(context.Background(), "anything?", nil)

	assert.Equal(t, noResultsAnswer, answer.Text)
	assert.Empty(t, answer.Citations)
	assert.Zero(t, answer.Confidence)
	assert.False(t, client.called)
}

func TestCompose_ModelFailureDropsCitations(t *testing.T) {
	client := &stubLLM{err: errors.New("overloaded")}
	composer := NewComposer(client)

	answer := composer.Compose(context.Background(), "q", someHits())

	assert.Equal(t, llmFailedAnswer, answer.Text)
	assert.Empty(t, answer.Citations)
	assert.Zero(t, answer.Confidence)
}

func TestSnippet_TruncatesOnRuneBoundary(t *testing.T) {
	clipped := snippet(strings.Repeat("日", 300))

	assert.True(t, utf8.ValidString(clipped))
	assert.Equal(t, snippetLimit, utf8.RuneCountInString(strings.TrimSuffix(clipped, "...")))
	assert.True(t, strings.HasSuffix(clipped, "..."))

	short := snippet("日本語のテキスト")
	assert.Equal(t, "日本語のテキスト", short)
}
