package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ai-synapse/ocr-core/db"
	"github.com/ai-synapse/ocr-core/llm"
	"github.com/ai-synapse/ocr-core/rag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	if text == "" {
		return nil, nil
	}
	return []float32{1, 0, 0}, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		var err error
		if out[i], err = s.Embed(ctx, t); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type stubEmbeddingStore struct {
	records []db.EmbeddingModel
}

func (s *stubEmbeddingStore) Insert(_ context.Context, record db.EmbeddingModel) error {
	s.records = append(s.records, record)
	return nil
}

func (s *stubEmbeddingStore) Fetch(_ context.Context, _ []string) ([]db.EmbeddingModel, error) {
	return s.records, nil
}

func (s *stubEmbeddingStore) DeleteByDocument(_ context.Context, _ string) error { return nil }

type stubHistoryStore struct {
	entries []db.QueryHistoryModel
	err     error
}

func (s *stubHistoryStore) Save(_ context.Context, entry db.QueryHistoryModel) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubHistoryStore) List(_ context.Context, userID string, _ int64) ([]db.QueryHistoryModel, error) {
	var out []db.QueryHistoryModel
	for _, e := range s.entries {
		if e.UserId == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

type stubLLM struct {
	answer string
	called bool
}

func (s *stubLLM) GenerateInference(_ context.Context, _ []llm.Message, callback func(chunk string) error, _ ...llm.LLMOption) error {
	s.called = true
	return callback(s.answer)
}

func (s *stubLLM) GetModel() string { return "stub" }

func newQueryService(store *stubEmbeddingStore, history *stubHistoryStore, model *stubLLM, embedErr error) *QueryService {
	return ProvideQueryService(
		&stubEmbedder{err: embedErr},
		rag.NewRetriever(store, 5),
		rag.NewComposer(model),
		history,
	)
}

func TestQuery_EmptyCorpusGivesCannedAnswer(t *testing.T) {
	model := &stubLLM{answer: "should not be asked"}
	history := &stubHistoryStore{}
	svc := newQueryService(&stubEmbeddingStore{}, history, model, nil)

	answer, err := svc.Query(context.Background(), "u1", "what does the report say?", nil)
	require.NoError(t, err)

	assert.Empty(t, answer.Citations)
	assert.Zero(t, answer.Confidence)
	assert.False(t, model.called)
	assert.NotEmpty(t, answer.Text)

	// the miss is still recorded
	require.Len(t, history.entries, 1)
	assert.Equal(t, "what does the report say?", history.entries[0].Query)
}

func TestQuery_AnswersWithCitations(t *testing.T) {
	store := &stubEmbeddingStore{records: []db.EmbeddingModel{
		{EmbeddingID: "e1", DocumentID: "doc-a", PageNumber: 1, Text: "revenue grew 12 percent",
			Vector: []float32{1, 0, 0}, Confidence: 0.85},
	}}
	model := &stubLLM{answer: "Revenue grew 12 percent. [1]"}
	history := &stubHistoryStore{}
	svc := newQueryService(store, history, model, nil)

	answer, err := svc.Query(context.Background(), "u1", "how much did revenue grow?", nil)
	require.NoError(t, err)

	assert.Equal(t, "Revenue grew 12 percent. [1]", answer.Text)
	require.Len(t, answer.Citations, 1)
	assert.Equal(t, "doc-a", answer.Citations[0].DocumentID)
	assert.InDelta(t, 0.85, answer.Confidence, 1e-9)
	require.Len(t, history.entries, 1)
	assert.Equal(t, answer.Text, history.entries[0].Answer)
}

func TestQuery_EmbedFailureIsInternal(t *testing.T) {
	svc := newQueryService(&stubEmbeddingStore{}, &stubHistoryStore{}, &stubLLM{}, errors.New("ollama down"))

	_, err := svc.Query(context.Background(), "u1", "q", nil)
	require.Error(t, err)
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestQuery_HistoryFailureDoesNotFailQuery(t *testing.T) {
	history := &stubHistoryStore{err: errors.New("mongo down")}
	svc := newQueryService(&stubEmbeddingStore{}, history, &stubLLM{}, nil)

	_, err := svc.Query(context.Background(), "u1", "q", nil)
	assert.NoError(t, err)
}

func TestHistory_FiltersByUser(t *testing.T) {
	history := &stubHistoryStore{entries: []db.QueryHistoryModel{
		{ID: "1", UserId: "u1", Query: "a"},
		{ID: "2", UserId: "u2", Query: "b"},
	}}
	svc := newQueryService(&stubEmbeddingStore{}, history, &stubLLM{}, nil)

	entries, err := svc.History(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].Query)
}
