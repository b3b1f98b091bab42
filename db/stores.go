package db

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/SaiNageswarS/go-api-boot/cloud"
	"github.com/SaiNageswarS/go-api-boot/odm"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// DocumentStore is the pipeline's view of document persistence. Updates are
// field-level: the pipeline touches status and per-stage outputs, nothing else.
type DocumentStore interface {
	Create(ctx context.Context, doc DocumentModel) error
	Get(ctx context.Context, documentID string) (*DocumentModel, error)
	SetStatus(ctx context.Context, documentID string, status DocumentStatus) error
	MarkStarted(ctx context.Context, documentID string) error
	SetPageCount(ctx context.Context, documentID string, pages int) error
	SaveOCRResults(ctx context.Context, documentID string, results []OCRResult) error
	SaveTables(ctx context.Context, documentID string, tables []TableData) error
	MarkCompleted(ctx context.Context, documentID string) error
	MarkFailed(ctx context.Context, documentID string, message string) error
	Delete(ctx context.Context, documentID string) error
}

type EmbeddingStore interface {
	Insert(ctx context.Context, record EmbeddingModel) error
	// Fetch returns all records, or only those owned by the given documents
	// when the allow-list is non-empty.
	Fetch(ctx context.Context, documentIDs []string) ([]EmbeddingModel, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}

// QueryHistoryStore records answered queries. Writes are best-effort from the
// caller's point of view.
type QueryHistoryStore interface {
	Save(ctx context.Context, entry QueryHistoryModel) error
	List(ctx context.Context, userID string, limit int64) ([]QueryHistoryModel, error)
}

// BlobStore is the part of the raw-file store the core consumes. Uploading and
// lifecycle of blobs belong to the upload surface, not to this module.
type BlobStore interface {
	Store(ctx context.Context, path string, data []byte) (string, error)
	Retrieve(ctx context.Context, path string) ([]byte, error)
}

// ─────────────────────────────── Mongo ───────────────────────────────

type MongoDocumentStore struct {
	mongo  *mongo.Client
	tenant string
}

func NewMongoDocumentStore(mongoClient *mongo.Client, tenant string) *MongoDocumentStore {
	return &MongoDocumentStore{mongo: mongoClient, tenant: tenant}
}

func (s *MongoDocumentStore) Create(ctx context.Context, doc DocumentModel) error {
	_, err := async.Await(odm.CollectionOf[DocumentModel](s.mongo, s.tenant).Save(ctx, doc))
	return err
}

func (s *MongoDocumentStore) Get(ctx context.Context, documentID string) (*DocumentModel, error) {
	doc, err := async.Await(odm.CollectionOf[DocumentModel](s.mongo, s.tenant).FindOneByID(ctx, documentID))
	if err != nil {
		return nil, errors.New("failed to find document: " + err.Error())
	}
	return doc, nil
}

func (s *MongoDocumentStore) SetStatus(ctx context.Context, documentID string, status DocumentStatus) error {
	return s.set(ctx, documentID, bson.M{"status": status})
}

func (s *MongoDocumentStore) MarkStarted(ctx context.Context, documentID string) error {
	return s.set(ctx, documentID, bson.M{
		"status":              StatusPreprocessing,
		"processingStartedOn": time.Now().UnixMilli(),
		"errorMessage":        "",
	})
}

func (s *MongoDocumentStore) SetPageCount(ctx context.Context, documentID string, pages int) error {
	return s.set(ctx, documentID, bson.M{"pageCount": pages})
}

func (s *MongoDocumentStore) SaveOCRResults(ctx context.Context, documentID string, results []OCRResult) error {
	return s.set(ctx, documentID, bson.M{"ocrResults": results})
}

func (s *MongoDocumentStore) SaveTables(ctx context.Context, documentID string, tables []TableData) error {
	return s.set(ctx, documentID, bson.M{"tables": tables, "tableCount": len(tables)})
}

func (s *MongoDocumentStore) MarkCompleted(ctx context.Context, documentID string) error {
	return s.set(ctx, documentID, bson.M{
		"status":              StatusCompleted,
		"embeddingsGenerated": true,
		"processingEndedOn":   time.Now().UnixMilli(),
	})
}

func (s *MongoDocumentStore) MarkFailed(ctx context.Context, documentID string, message string) error {
	return s.set(ctx, documentID, bson.M{
		"status":            StatusFailed,
		"errorMessage":      message,
		"processingEndedOn": time.Now().UnixMilli(),
	})
}

func (s *MongoDocumentStore) Delete(ctx context.Context, documentID string) error {
	_, err := s.collection().DeleteOne(ctx, bson.M{"_id": documentID})
	return err
}

func (s *MongoDocumentStore) set(ctx context.Context, documentID string, fields bson.M) error {
	fields["updatedOn"] = time.Now().UnixMilli()
	_, err := s.collection().UpdateByID(ctx, documentID, bson.M{"$set": fields})
	return err
}

func (s *MongoDocumentStore) collection() *mongo.Collection {
	return s.mongo.Database(s.tenant).Collection(DocumentModel{}.CollectionName())
}

type MongoEmbeddingStore struct {
	mongo  *mongo.Client
	tenant string
}

func NewMongoEmbeddingStore(mongoClient *mongo.Client, tenant string) *MongoEmbeddingStore {
	return &MongoEmbeddingStore{mongo: mongoClient, tenant: tenant}
}

func (s *MongoEmbeddingStore) Insert(ctx context.Context, record EmbeddingModel) error {
	_, err := async.Await(odm.CollectionOf[EmbeddingModel](s.mongo, s.tenant).Save(ctx, record))
	return err
}

func (s *MongoEmbeddingStore) Fetch(ctx context.Context, documentIDs []string) ([]EmbeddingModel, error) {
	filter := bson.M{}
	if len(documentIDs) > 0 {
		filter["documentId"] = bson.M{"$in": documentIDs}
	}

	records, err := async.Await(odm.CollectionOf[EmbeddingModel](s.mongo, s.tenant).Find(ctx, filter, nil, 0, 0))
	if err != nil {
		return nil, errors.New("failed to fetch embeddings: " + err.Error())
	}
	return records, nil
}

func (s *MongoEmbeddingStore) DeleteByDocument(ctx context.Context, documentID string) error {
	collection := s.mongo.Database(s.tenant).Collection(EmbeddingModel{}.CollectionName())
	_, err := collection.DeleteMany(ctx, bson.M{"documentId": documentID})
	return err
}

type MongoQueryHistoryStore struct {
	mongo  *mongo.Client
	tenant string
}

func NewMongoQueryHistoryStore(mongoClient *mongo.Client, tenant string) *MongoQueryHistoryStore {
	return &MongoQueryHistoryStore{mongo: mongoClient, tenant: tenant}
}

func (s *MongoQueryHistoryStore) Save(ctx context.Context, entry QueryHistoryModel) error {
	_, err := async.Await(odm.CollectionOf[QueryHistoryModel](s.mongo, s.tenant).Save(ctx, entry))
	return err
}

func (s *MongoQueryHistoryStore) List(ctx context.Context, userID string, limit int64) ([]QueryHistoryModel, error) {
	entries, err := async.Await(odm.CollectionOf[QueryHistoryModel](s.mongo, s.tenant).
		Find(ctx, bson.M{"userId": userID}, nil, limit, 0))
	if err != nil {
		return nil, errors.New("failed to load query history: " + err.Error())
	}
	return entries, nil
}

// ─────────────────────────────── Blob ────────────────────────────────

// AzureBlobStore keeps one container per tenant, matching the indexing layout.
type AzureBlobStore struct {
	az     *cloud.Azure
	tenant string
}

func NewAzureBlobStore(az *cloud.Azure, tenant string) *AzureBlobStore {
	return &AzureBlobStore{az: az, tenant: tenant}
}

func (s *AzureBlobStore) Store(ctx context.Context, path string, data []byte) (string, error) {
	return s.az.UploadBuffer(ctx, s.tenant, path, data)
}

func (s *AzureBlobStore) Retrieve(ctx context.Context, path string) ([]byte, error) {
	localPath, err := s.az.DownloadFile(ctx, s.tenant, path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, errors.New("failed to read downloaded blob: " + err.Error())
	}
	return data, nil
}
