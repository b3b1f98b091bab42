package workers

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/ai-synapse/ocr-core/db"
	"github.com/ai-synapse/ocr-core/embedding"
	"github.com/ai-synapse/ocr-core/engines"
	"github.com/ai-synapse/ocr-core/vision"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DocumentPipeline drives one document from uploaded to completed:
// preprocess pages, recognize text, extract tables, embed everything.
// A stage error marks the document failed with the captured message;
// already-persisted stage outputs stay behind for inspection.
type DocumentPipeline struct {
	documents    db.DocumentStore
	embeddings   db.EmbeddingStore
	blobs        db.BlobStore
	orchestrator *engines.Orchestrator
	tables       *vision.TableDetector
	embedder     embedding.Embedder
	chunker      *Chunker
}

func NewDocumentPipeline(
	documents db.DocumentStore,
	embeddings db.EmbeddingStore,
	blobs db.BlobStore,
	orchestrator *engines.Orchestrator,
	tables *vision.TableDetector,
	embedder embedding.Embedder,
	chunker *Chunker,
) *DocumentPipeline {
	return &DocumentPipeline{
		documents:    documents,
		embeddings:   embeddings,
		blobs:        blobs,
		orchestrator: orchestrator,
		tables:       tables,
		embedder:     embedder,
		chunker:      chunker,
	}
}

func (p *DocumentPipeline) Run(ctx context.Context, documentID string, kinds []engines.Kind) error {
	doc, err := p.documents.Get(ctx, documentID)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("document %s not found", documentID)
	}

	if err := p.process(ctx, doc, kinds); err != nil {
		logger.Error("Document processing failed",
			zap.String("documentId", documentID), zap.Error(err))
		if markErr := p.documents.MarkFailed(ctx, documentID, err.Error()); markErr != nil {
			logger.Error("Failed to mark document failed",
				zap.String("documentId", documentID), zap.Error(markErr))
		}
		return err
	}

	return p.documents.MarkCompleted(ctx, documentID)
}

func (p *DocumentPipeline) process(ctx context.Context, doc *db.DocumentModel, kinds []engines.Kind) error {
	documentID := doc.DocumentID

	// preprocessing
	if err := p.documents.MarkStarted(ctx, documentID); err != nil {
		return err
	}

	data, err := p.blobs.Retrieve(ctx, doc.BlobPath)
	if err != nil {
		return fmt.Errorf("retrieve document blob: %w", err)
	}

	rawPages, err := vision.PageImages(doc.FileName, data)
	if err != nil {
		return err
	}

	pages := make([]*image.Gray, len(rawPages))
	for i, raw := range rawPages {
		pages[i] = vision.Preprocess(raw)
	}

	if err := p.documents.SetPageCount(ctx, documentID, len(pages)); err != nil {
		return err
	}

	// ocr_processing
	if err := p.documents.SetStatus(ctx, documentID, db.StatusOcrProcessing); err != nil {
		return err
	}

	results := make([]db.OCRResult, 0, len(pages))
	for i, page := range pages {
		results = append(results, p.orchestrator.RecognizePage(ctx, page, i+1, kinds))
	}
	if err := p.documents.SaveOCRResults(ctx, documentID, results); err != nil {
		return err
	}

	// table_extraction
	if err := p.documents.SetStatus(ctx, documentID, db.StatusTableExtraction); err != nil {
		return err
	}

	var tables []db.TableData
	for i, page := range pages {
		tables = append(tables, p.tables.DetectTables(ctx, page, i+1)...)
	}
	if err := p.documents.SaveTables(ctx, documentID, tables); err != nil {
		return err
	}

	// embedding_generation
	if err := p.documents.SetStatus(ctx, documentID, db.StatusEmbeddingGeneration); err != nil {
		return err
	}

	if err := p.embedPages(ctx, documentID, results); err != nil {
		return err
	}
	return p.embedTables(ctx, documentID, tables)
}

func (p *DocumentPipeline) embedPages(ctx context.Context, documentID string, results []db.OCRResult) error {
	for _, result := range results {
		chunks := p.chunker.Chunk(result.Text)
		for i, chunk := range chunks {
			vector, err := p.embedder.Embed(ctx, chunk)
			if err != nil {
				return fmt.Errorf("embed page %d chunk %d: %w", result.PageNumber, i, err)
			}
			if len(vector) == 0 {
				continue
			}

			record := db.EmbeddingModel{
				EmbeddingID: uuid.New().String(),
				DocumentID:  documentID,
				Text:        chunk,
				Vector:      vector,
				PageNumber:  result.PageNumber,
				ChunkIndex:  i,
				SourceType:  db.SourceOcrText,
				Engine:      result.Engine,
				Confidence:  result.Confidence,
				CreatedOn:   time.Now().UnixMilli(),
			}
			if err := p.embeddings.Insert(ctx, record); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *DocumentPipeline) embedTables(ctx context.Context, documentID string, tables []db.TableData) error {
	for _, table := range tables {
		text := SerializeTable(table)
		if text == "" {
			continue
		}

		vector, err := p.embedder.Embed(ctx, text)
		if err != nil {
			return fmt.Errorf("embed table %s: %w", table.TableID, err)
		}
		if len(vector) == 0 {
			continue
		}

		record := db.EmbeddingModel{
			EmbeddingID: uuid.New().String(),
			DocumentID:  documentID,
			Text:        text,
			Vector:      vector,
			PageNumber:  table.PageNumber,
			SourceType:  db.SourceTable,
			Confidence:  table.Confidence,
			TableID:     table.TableID,
			Rows:        table.Rows,
			Columns:     table.Columns,
			CreatedOn:   time.Now().UnixMilli(),
		}
		if err := p.embeddings.Insert(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

// SerializeTable flattens a table into retrievable text, one line per row with
// cells joined by pipes. Tables with no reconstructed rows serialize to "".
func SerializeTable(table db.TableData) string {
	if table.Rows == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Table on page %d:", table.PageNumber)
	for i, row := range table.Cells {
		fmt.Fprintf(&b, "\nRow %d: %s", i+1, strings.Join(row, " | "))
	}
	return b.String()
}
