package activities

import (
	"context"

	"github.com/SaiNageswarS/go-api-boot/cloud"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/ai-synapse/ocr-core/appconfig"
	"github.com/ai-synapse/ocr-core/engines"
	"github.com/ollama/ollama/api"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"
)

type Activities struct {
	ccfg *appconfig.AppConfig
	az   *cloud.Azure

	ollamaClient *api.Client
	registry     *engines.Registry

	mongo *mongo.Client
}

func ProvideActivities(ccfg *appconfig.AppConfig, az *cloud.Azure, ollamaClient *api.Client, registry *engines.Registry, mongo *mongo.Client) *Activities {
	if err := az.EnsureBlob(context.Background()); err != nil {
		logger.Fatal("Failed to ensure Azure Blob Client", zap.Error(err))
	}

	return &Activities{
		ccfg:         ccfg,
		az:           az,
		ollamaClient: ollamaClient,
		registry:     registry,
		mongo:        mongo,
	}
}
