package services

import (
	"context"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/ai-synapse/ocr-core/db"
	"github.com/ai-synapse/ocr-core/embedding"
	"github.com/ai-synapse/ocr-core/rag"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// QueryService answers questions over the indexed documents: embed the
// question, retrieve the closest chunks, compose a cited answer. Every
// answered query lands in history; a history write failure never fails the
// query.
type QueryService struct {
	embedder  embedding.Embedder
	retriever *rag.Retriever
	composer  *rag.Composer
	history   db.QueryHistoryStore
}

func ProvideQueryService(embedder embedding.Embedder, retriever *rag.Retriever, composer *rag.Composer, history db.QueryHistoryStore) *QueryService {
	return &QueryService{
		embedder:  embedder,
		retriever: retriever,
		composer:  composer,
		history:   history,
	}
}

// Query answers the question, optionally restricted to the given documents.
func (s *QueryService) Query(ctx context.Context, userID, question string, documentIDs []string) (rag.Answer, error) {
	start := time.Now()

	queryVector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		logger.Error("Failed to embed query", zap.Error(err))
		return rag.Answer{}, status.Error(codes.Internal, "failed to embed query")
	}

	hits, err := s.retriever.Retrieve(ctx, queryVector, documentIDs)
	if err != nil {
		logger.Error("Retrieval failed", zap.Error(err))
		return rag.Answer{}, status.Error(codes.Internal, "retrieval failed")
	}

	answer := s.composer.Compose(ctx, question, hits)
	s.saveHistory(ctx, userID, question, answer, time.Since(start).Milliseconds())
	return answer, nil
}

func (s *QueryService) History(ctx context.Context, userID string, limit int64) ([]db.QueryHistoryModel, error) {
	entries, err := s.history.List(ctx, userID, limit)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to load query history")
	}
	return entries, nil
}

func (s *QueryService) saveHistory(ctx context.Context, userID, question string, answer rag.Answer, elapsedMs int64) {
	entry := db.QueryHistoryModel{
		ID:         uuid.New().String(),
		UserId:     userID,
		Query:      question,
		Answer:     answer.Text,
		Citations:  answer.Citations,
		Confidence: answer.Confidence,
		ElapsedMs:  elapsedMs,
		CreatedOn:  time.Now().UnixMilli(),
	}

	if err := s.history.Save(ctx, entry); err != nil {
		logger.Error("Failed to save query history", zap.Error(err))
	}
}
