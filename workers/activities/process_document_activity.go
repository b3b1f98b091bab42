package activities

import (
	"context"
	"errors"
	"strings"

	"github.com/ai-synapse/ocr-core/db"
	"github.com/ai-synapse/ocr-core/embedding"
	"github.com/ai-synapse/ocr-core/engines"
	"github.com/ai-synapse/ocr-core/vision"
	"github.com/ai-synapse/ocr-core/workers"
)

// ProcessDocument runs the document pipeline for one tenant's document. The
// engine names come from the trigger request; an empty list falls back to the
// configured default set.
func (s *Activities) ProcessDocument(ctx context.Context, tenant, documentID string, engineNames []string) error {
	if len(engineNames) == 0 {
		for _, name := range strings.Split(s.ccfg.OcrEngines, ",") {
			if name = strings.TrimSpace(name); name != "" {
				engineNames = append(engineNames, name)
			}
		}
	}
	kinds := engines.ParseKinds(engineNames)
	if len(kinds) == 0 {
		return errors.New("no usable ocr engine configured")
	}

	tesseract := engines.NewTesseractEngine(s.ccfg.TesseractLanguage)

	pipeline := workers.NewDocumentPipeline(
		db.NewMongoDocumentStore(s.mongo, tenant),
		db.NewMongoEmbeddingStore(s.mongo, tenant),
		db.NewAzureBlobStore(s.az, tenant),
		engines.NewOrchestrator(s.registry),
		vision.NewTableDetector(tesseract.RecognizeCell),
		embedding.NewOllamaEmbedder(s.ollamaClient),
		workers.ProvideChunker(s.ccfg.ChunkSize, s.ccfg.ChunkOverlap),
	)

	return pipeline.Run(ctx, documentID, kinds)
}
