package db

import "github.com/google/uuid"

// Source types for embedding records.
const (
	SourceOcrText = "ocr_text"
	SourceTable   = "table"
)

// EmbeddingModel is one embedded unit of document content: a word-window of a
// page's OCR text or a serialized table. Never mutated after insert; deleted
// together with the owning document.
type EmbeddingModel struct {
	EmbeddingID string    `bson:"_id" json:"embeddingId"`
	DocumentID  string    `bson:"documentId" json:"documentId"`
	Text        string    `bson:"text" json:"text"`
	Vector      []float32 `bson:"vector" json:"-"`
	PageNumber  int       `bson:"pageNumber" json:"pageNumber"`
	ChunkIndex  int       `bson:"chunkIndex" json:"chunkIndex"`
	SourceType  string    `bson:"sourceType" json:"sourceType"`

	// Provenance metadata: engine/confidence for OCR text, table id and
	// dimensions for serialized tables.
	Engine     string  `bson:"engine,omitempty" json:"engine,omitempty"`
	Confidence float64 `bson:"confidence" json:"confidence"`
	TableID    string  `bson:"tableId,omitempty" json:"tableId,omitempty"`
	Rows       int     `bson:"rows,omitempty" json:"rows,omitempty"`
	Columns    int     `bson:"columns,omitempty" json:"columns,omitempty"`

	CreatedOn int64 `bson:"createdOn" json:"createdOn"`
}

func (m EmbeddingModel) Id() string {
	if len(m.EmbeddingID) == 0 {
		return uuid.New().String()
	}
	return m.EmbeddingID
}

func (m EmbeddingModel) CollectionName() string { return "embeddings" }
