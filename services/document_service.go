package services

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/ai-synapse/ocr-core/db"
	"github.com/ai-synapse/ocr-core/workers/workflows"
	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	temporalClient "go.temporal.io/sdk/client"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DocumentService owns the document lifecycle outside the pipeline: starting
// runs, reporting status and deleting documents with their derived data.
type DocumentService struct {
	documents  db.DocumentStore
	embeddings db.EmbeddingStore
	blobs      db.BlobStore
	temporal   temporalClient.Client
	taskQueue  string
	tenant     string
}

func ProvideDocumentService(documents db.DocumentStore, embeddings db.EmbeddingStore, blobs db.BlobStore, temporal temporalClient.Client, taskQueue, tenant string) *DocumentService {
	return &DocumentService{
		documents:  documents,
		embeddings: embeddings,
		blobs:      blobs,
		temporal:   temporal,
		taskQueue:  taskQueue,
		tenant:     tenant,
	}
}

// Upload stores the raw file and registers the document as uploaded. Only
// scanned formats the pipeline can decode are accepted.
func (s *DocumentService) Upload(ctx context.Context, userID, fileName, mimeType string, data []byte) (*db.DocumentModel, error) {
	if len(data) == 0 {
		return nil, status.Error(codes.InvalidArgument, "uploaded file is empty")
	}
	if !supportedUpload(fileName) {
		return nil, status.Errorf(codes.InvalidArgument, "unsupported file type %s", fileName)
	}

	documentID := uuid.New().String()
	blobPath := "documents/" + documentID + "/" + fileName

	if _, err := s.blobs.Store(ctx, blobPath, data); err != nil {
		logger.Error("Failed to store upload", zap.String("fileName", fileName), zap.Error(err))
		return nil, status.Error(codes.Internal, "failed to store file")
	}

	now := time.Now().UnixMilli()
	doc := db.DocumentModel{
		DocumentID: documentID,
		UserId:     userID,
		FileName:   fileName,
		BlobPath:   blobPath,
		MimeType:   mimeType,
		FileSize:   int64(len(data)),
		Status:     db.StatusUploaded,
		CreatedOn:  now,
		UpdatedOn:  now,
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, status.Error(codes.Internal, "failed to save document")
	}
	return &doc, nil
}

func supportedUpload(fileName string) bool {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf", ".png", ".jpg", ".jpeg", ".tif", ".tiff":
		return true
	}
	return false
}

// TriggerProcessing starts one pipeline run for the document. The workflow id
// is derived from the document id and conflicts fail, so two concurrent
// triggers can never run the pipeline twice; the status check catches the
// stale retrigger of an already completed or in-flight document.
func (s *DocumentService) TriggerProcessing(ctx context.Context, documentID string, engineNames []string) (string, error) {
	doc, err := s.documents.Get(ctx, documentID)
	if err != nil || doc == nil {
		return "", status.Errorf(codes.NotFound, "document %s not found", documentID)
	}
	if !doc.Status.Triggerable() {
		return "", status.Errorf(codes.FailedPrecondition,
			"document %s is %s and cannot be reprocessed", documentID, doc.Status)
	}

	options := temporalClient.StartWorkflowOptions{
		ID:                       "process-document-" + documentID,
		TaskQueue:                s.taskQueue,
		WorkflowIDReusePolicy:    enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		WorkflowIDConflictPolicy: enumspb.WORKFLOW_ID_CONFLICT_POLICY_FAIL,
	}

	run, err := s.temporal.ExecuteWorkflow(ctx, options, workflows.ProcessDocumentWorkflow,
		workflows.ProcessDocumentWorkflowInput{
			Tenant:     s.tenant,
			DocumentID: documentID,
			Engines:    engineNames,
		})
	if err != nil {
		logger.Error("Failed to start document workflow",
			zap.String("documentId", documentID), zap.Error(err))
		return "", status.Error(codes.AlreadyExists, "processing already in progress")
	}

	logger.Info("Document processing started",
		zap.String("documentId", documentID), zap.String("workflowId", run.GetID()))
	return run.GetID(), nil
}

func (s *DocumentService) Status(ctx context.Context, documentID string) (*db.DocumentModel, error) {
	doc, err := s.documents.Get(ctx, documentID)
	if err != nil || doc == nil {
		return nil, status.Errorf(codes.NotFound, "document %s not found", documentID)
	}
	return doc, nil
}

// Delete removes the document record and every embedding derived from it.
// In-flight documents cannot be deleted out from under the pipeline.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	doc, err := s.documents.Get(ctx, documentID)
	if err != nil || doc == nil {
		return status.Errorf(codes.NotFound, "document %s not found", documentID)
	}
	if doc.Status != db.StatusUploaded && !doc.Status.Terminal() {
		return status.Errorf(codes.FailedPrecondition,
			"document %s is still processing", documentID)
	}

	if err := s.embeddings.DeleteByDocument(ctx, documentID); err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	return s.documents.Delete(ctx, documentID)
}
