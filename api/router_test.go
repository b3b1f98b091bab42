package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ai-synapse/ocr-core/db"
	"github.com/ai-synapse/ocr-core/embedding"
	"github.com/ai-synapse/ocr-core/llm"
	"github.com/ai-synapse/ocr-core/rag"
	"github.com/ai-synapse/ocr-core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memDocumentStore struct {
	docs map[string]db.DocumentModel
}

func newMemDocumentStore() *memDocumentStore {
	return &memDocumentStore{docs: map[string]db.DocumentModel{}}
}

func (s *memDocumentStore) Create(_ context.Context, doc db.DocumentModel) error {
	s.docs[doc.DocumentID] = doc
	return nil
}

func (s *memDocumentStore) Get(_ context.Context, id string) (*db.DocumentModel, error) {
	if doc, ok := s.docs[id]; ok {
		return &doc, nil
	}
	return nil, nil
}

func (s *memDocumentStore) SetStatus(_ context.Context, id string, status db.DocumentStatus) error {
	doc := s.docs[id]
	doc.Status = status
	s.docs[id] = doc
	return nil
}

func (s *memDocumentStore) MarkStarted(ctx context.Context, id string) error {
	return s.SetStatus(ctx, id, db.StatusPreprocessing)
}

func (s *memDocumentStore) SetPageCount(_ context.Context, _ string, _ int) error { return nil }

func (s *memDocumentStore) SaveOCRResults(_ context.Context, _ string, _ []db.OCRResult) error {
	return nil
}

func (s *memDocumentStore) SaveTables(_ context.Context, _ string, _ []db.TableData) error {
	return nil
}

func (s *memDocumentStore) MarkCompleted(ctx context.Context, id string) error {
	return s.SetStatus(ctx, id, db.StatusCompleted)
}

func (s *memDocumentStore) MarkFailed(ctx context.Context, id string, _ string) error {
	return s.SetStatus(ctx, id, db.StatusFailed)
}

func (s *memDocumentStore) Delete(_ context.Context, id string) error {
	delete(s.docs, id)
	return nil
}

type memEmbeddingStore struct {
	records []db.EmbeddingModel
}

func (s *memEmbeddingStore) Insert(_ context.Context, r db.EmbeddingModel) error {
	s.records = append(s.records, r)
	return nil
}

func (s *memEmbeddingStore) Fetch(_ context.Context, _ []string) ([]db.EmbeddingModel, error) {
	return s.records, nil
}

func (s *memEmbeddingStore) DeleteByDocument(_ context.Context, _ string) error { return nil }

type memBlobStore struct {
	blobs map[string][]byte
}

func (s *memBlobStore) Store(_ context.Context, path string, data []byte) (string, error) {
	if s.blobs == nil {
		s.blobs = map[string][]byte{}
	}
	s.blobs[path] = data
	return path, nil
}

func (s *memBlobStore) Retrieve(_ context.Context, path string) ([]byte, error) {
	return s.blobs[path], nil
}

type memHistoryStore struct {
	entries []db.QueryHistoryModel
}

func (s *memHistoryStore) Save(_ context.Context, e db.QueryHistoryModel) error {
	s.entries = append(s.entries, e)
	return nil
}

func (s *memHistoryStore) List(_ context.Context, _ string, _ int64) ([]db.QueryHistoryModel, error) {
	return s.entries, nil
}

type fixedEmbedder struct{}

func (fixedEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, nil
	}
	return []float32{1, 0, 0}, nil
}

func (f fixedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = f.Embed(ctx, t)
	}
	return out, nil
}

type echoLLM struct{}

func (echoLLM) GenerateInference(_ context.Context, _ []llm.Message, callback func(chunk string) error, _ ...llm.LLMOption) error {
	return callback("answer [1]")
}

func (echoLLM) GetModel() string { return "echo" }

var _ embedding.Embedder = fixedEmbedder{}

func newTestServer(docs *memDocumentStore, embeds *memEmbeddingStore) *httptest.Server {
	documentService := services.ProvideDocumentService(docs, embeds, &memBlobStore{}, nil, "ocrCore", "acme")
	queryService := services.ProvideQueryService(fixedEmbedder{},
		rag.NewRetriever(embeds, 5), rag.NewComposer(echoLLM{}), &memHistoryStore{})

	return httptest.NewServer(NewRouter(documentService, queryService))
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(newMemDocumentStore(), &memEmbeddingStore{})
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUploadAndStatus(t *testing.T) {
	docs := newMemDocumentStore()
	server := newTestServer(docs, &memEmbeddingStore{})
	defer server.Close()

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	part, err := writer.CreateFormFile("file", "invoice.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 test"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	resp, err := http.Post(server.URL+"/api/v1/documents/upload", writer.FormDataContentType(), &form)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var doc db.DocumentModel
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, db.StatusUploaded, doc.Status)

	statusResp, err := http.Get(server.URL + "/api/v1/documents/" + doc.DocumentID)
	require.NoError(t, err)
	defer statusResp.Body.Close()
	assert.Equal(t, http.StatusOK, statusResp.StatusCode)
}

func TestTriggerConflictsForInFlightDocument(t *testing.T) {
	docs := newMemDocumentStore()
	docs.docs["doc-1"] = db.DocumentModel{DocumentID: "doc-1", Status: db.StatusOcrProcessing}
	server := newTestServer(docs, &memEmbeddingStore{})
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/v1/documents/doc-1/process", "application/json",
		bytes.NewBufferString(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestQueryEmptyCorpus(t *testing.T) {
	server := newTestServer(newMemDocumentStore(), &memEmbeddingStore{})
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/v1/query", "application/json",
		bytes.NewBufferString(`{"userId":"u1","question":"what changed?"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var answer rag.Answer
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&answer))
	assert.Empty(t, answer.Citations)
	assert.Zero(t, answer.Confidence)
	assert.NotEmpty(t, answer.Text)
}

func TestQueryWithIndexedContent(t *testing.T) {
	embeds := &memEmbeddingStore{records: []db.EmbeddingModel{
		{EmbeddingID: "e1", DocumentID: "doc-a", PageNumber: 1, Text: "totals reconciled",
			Vector: []float32{1, 0, 0}, Confidence: 0.8},
	}}
	server := newTestServer(newMemDocumentStore(), embeds)
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/v1/query", "application/json",
		bytes.NewBufferString(`{"userId":"u1","question":"were totals reconciled?"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var answer rag.Answer
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&answer))
	assert.Equal(t, "answer [1]", answer.Text)
	require.Len(t, answer.Citations, 1)
}

func TestDeleteDocument(t *testing.T) {
	docs := newMemDocumentStore()
	docs.docs["doc-1"] = db.DocumentModel{DocumentID: "doc-1", Status: db.StatusCompleted}
	server := newTestServer(docs, &memEmbeddingStore{})
	defer server.Close()

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/v1/documents/doc-1", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.NotContains(t, docs.docs, "doc-1")
}
