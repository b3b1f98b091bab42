package db

// DocumentStatus is the processing lifecycle of an uploaded document.
// Transitions are monotonic; failed is reachable from any non-terminal state.
type DocumentStatus string

const (
	StatusUploaded            DocumentStatus = "uploaded"
	StatusPreprocessing       DocumentStatus = "preprocessing"
	StatusOcrProcessing       DocumentStatus = "ocr_processing"
	StatusTableExtraction     DocumentStatus = "table_extraction"
	StatusEmbeddingGeneration DocumentStatus = "embedding_generation"
	StatusCompleted           DocumentStatus = "completed"
	StatusFailed              DocumentStatus = "failed"
)

func (s DocumentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Triggerable reports whether a fresh processing run may be started.
// In-flight and completed documents are rejected at the trigger point.
func (s DocumentStatus) Triggerable() bool {
	return s == StatusUploaded || s == StatusFailed
}

// BoundingBox locates a detected element on a page, origin upper-left, pixels.
type BoundingBox struct {
	X      float64 `bson:"x" json:"x"`
	Y      float64 `bson:"y" json:"y"`
	Width  float64 `bson:"width" json:"width"`
	Height float64 `bson:"height" json:"height"`
}

// OCRResult is the surviving recognition output for one page. Immutable.
type OCRResult struct {
	Engine     string  `bson:"engine" json:"engine"`
	Text       string  `bson:"text" json:"text"`
	Confidence float64 `bson:"confidence" json:"confidence"` // [0,1]
	ElapsedMs  int64   `bson:"elapsedMs" json:"elapsedMs"`
	PageNumber int     `bson:"pageNumber" json:"pageNumber"` // 1-based
}

// TableData is a reconstructed table. Rows/Columns always match the cell
// matrix dimensions; both are zero when extraction failed.
type TableData struct {
	TableID          string      `bson:"tableId" json:"tableId"`
	PageNumber       int         `bson:"pageNumber" json:"pageNumber"`
	Bounds           BoundingBox `bson:"bounds" json:"bounds"`
	Rows             int         `bson:"rows" json:"rows"`
	Columns          int         `bson:"columns" json:"columns"`
	Cells            [][]string  `bson:"cells" json:"cells"`
	Confidence       float64     `bson:"confidence" json:"confidence"`
	ExtractionMethod string      `bson:"extractionMethod" json:"extractionMethod"`
}

type DocumentModel struct {
	DocumentID          string         `bson:"_id" json:"documentId"`
	UserId              string         `bson:"userId" json:"userId"`
	FileName            string         `bson:"fileName" json:"fileName"`
	BlobPath            string         `bson:"blobPath" json:"blobPath"`
	MimeType            string         `bson:"mimeType" json:"mimeType"`
	FileSize            int64          `bson:"fileSize" json:"fileSize"`
	Status              DocumentStatus `bson:"status" json:"status"`
	PageCount           int            `bson:"pageCount" json:"pageCount"`
	TableCount          int            `bson:"tableCount" json:"tableCount"`
	OCRResults          []OCRResult    `bson:"ocrResults" json:"ocrResults"`
	Tables              []TableData    `bson:"tables" json:"tables"`
	EmbeddingsGenerated bool           `bson:"embeddingsGenerated" json:"embeddingsGenerated"`
	ErrorMessage        string         `bson:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	CreatedOn           int64          `bson:"createdOn" json:"createdOn"`
	UpdatedOn           int64          `bson:"updatedOn" json:"updatedOn"`
	ProcessingStartedOn int64          `bson:"processingStartedOn,omitempty" json:"processingStartedOn,omitempty"`
	ProcessingEndedOn   int64          `bson:"processingEndedOn,omitempty" json:"processingEndedOn,omitempty"`
}

func (m DocumentModel) Id() string { return m.DocumentID }

func (m DocumentModel) CollectionName() string { return "documents" }
