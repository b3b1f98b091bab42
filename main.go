package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SaiNageswarS/go-api-boot/cloud"
	"github.com/SaiNageswarS/go-api-boot/config"
	"github.com/SaiNageswarS/go-api-boot/dotenv"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-api-boot/odm"
	"github.com/SaiNageswarS/go-api-boot/server"
	"github.com/ai-synapse/ocr-core/api"
	"github.com/ai-synapse/ocr-core/appconfig"
	"github.com/ai-synapse/ocr-core/db"
	"github.com/ai-synapse/ocr-core/embedding"
	"github.com/ai-synapse/ocr-core/engines"
	"github.com/ai-synapse/ocr-core/llm"
	"github.com/ai-synapse/ocr-core/rag"
	"github.com/ai-synapse/ocr-core/services"
	"github.com/ai-synapse/ocr-core/workers/activities"
	"github.com/ai-synapse/ocr-core/workers/workflows"
	ollama "github.com/ollama/ollama/api"
	"go.mongodb.org/mongo-driver/v2/mongo"
	temporalClient "go.temporal.io/sdk/client"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"
)

func main() {

	dotenv.LoadEnv()

	// load config file
	ccfgg := &appconfig.AppConfig{}
	err := config.LoadConfig("config.ini", ccfgg)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	az := cloud.ProvideAzure(&ccfgg.BootConfig)

	ollamaClient, err := ollama.ClientFromEnvironment()
	if err != nil {
		logger.Fatal("Failed to create Ollama client", zap.Error(err))
	}

	mongoClient, err := odm.GetClient()
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}

	if err := db.InitOcrCoreDB(context.Background(), mongoClient, ccfgg.Tenant); err != nil {
		logger.Fatal("Failed to ensure indexes", zap.Error(err))
	}

	registry := engines.NewRegistry(
		engines.NewTesseractEngine(ccfgg.TesseractLanguage),
		engines.NewLlavaEngine(ollamaClient),
		engines.NewMiniCPMEngine(ollamaClient),
	)

	boot, err := server.New().
		GRPCPort(":50051"). // or ":0" for dynamic
		HTTPPort(":8081").
		Provide(ccfgg).
		Provide(az).
		Provide(ollamaClient).
		Provide(registry).
		Provide(mongoClient).
		// Add Workers
		WithTemporal(ccfgg.TemporalGoTaskQueue, &temporalClient.Options{
			HostPort: ccfgg.TemporalHostPort,
		}).
		RegisterTemporalActivity(activities.ProvideActivities).
		RegisterTemporalWorkflow(workflows.ProcessDocumentWorkflow).
		ApplySettings(getStreamingOptimizations()).
		Build()

	if err != nil {
		logger.Fatal("Dependency Injection Failed", zap.Error(err))
	}

	temporal, err := temporalClient.Dial(temporalClient.Options{HostPort: ccfgg.TemporalHostPort})
	if err != nil {
		logger.Fatal("Failed to connect to Temporal", zap.Error(err))
	}
	defer temporal.Close()

	rawMongo := mongoClient.(*mongo.Client)
	documentStore := db.NewMongoDocumentStore(rawMongo, ccfgg.Tenant)
	embeddingStore := db.NewMongoEmbeddingStore(rawMongo, ccfgg.Tenant)
	blobStore := db.NewAzureBlobStore(az, ccfgg.Tenant)
	embedder := embedding.NewOllamaEmbedder(ollamaClient)

	documentService := services.ProvideDocumentService(documentStore, embeddingStore, blobStore,
		temporal, ccfgg.TemporalGoTaskQueue, ccfgg.Tenant)
	queryService := services.ProvideQueryService(
		embedder,
		rag.NewRetriever(embeddingStore, ccfgg.RetrievalTopK),
		rag.NewComposer(llm.ClientForModel(ccfgg.AnswerModel)),
		db.NewMongoQueryHistoryStore(rawMongo, ccfgg.Tenant),
	)

	go func() {
		router := api.NewRouter(documentService, queryService)
		logger.Info("REST API listening", zap.String("port", ccfgg.RestPort))
		if err := http.ListenAndServe(ccfgg.RestPort, router); err != nil {
			logger.Fatal("REST API failed", zap.Error(err))
		}
	}()

	ctx := getCancellableContext()
	// catch SIGINT ‑> cancel
	_ = boot.Serve(ctx)
}

func getCancellableContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		cancel()
	}()

	return ctx
}

func getStreamingOptimizations() []grpc.ServerOption {
	return []grpc.ServerOption{
		// Increase message size limits for large responses
		grpc.MaxRecvMsgSize(20 * 1024 * 1024), // 20MB
		grpc.MaxSendMsgSize(20 * 1024 * 1024), // 20MB

		// Configure keepalive for streaming connections
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     30 * time.Second, // Close idle connections after 30s
			MaxConnectionAge:      5 * time.Minute,  // Close connections after 5 minutes
			MaxConnectionAgeGrace: 10 * time.Second, // Grace period for closing
			Time:                  30 * time.Second, // Send pings every 30s
			Timeout:               5 * time.Second,  // Ping timeout
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             10 * time.Second, // Minimum time between pings
			PermitWithoutStream: true,             // Allow pings without active streams
		}),
	}
}
