package db

import (
	"context"

	"github.com/SaiNageswarS/go-api-boot/odm"
)

func InitOcrCoreDB(ctx context.Context, mongo odm.MongoClient, tenant string) error {
	err := odm.EnsureIndexes[DocumentModel](ctx, mongo, tenant)
	if err != nil {
		return err
	}

	err = odm.EnsureIndexes[EmbeddingModel](ctx, mongo, tenant)
	if err != nil {
		return err
	}

	err = odm.EnsureIndexes[QueryHistoryModel](ctx, mongo, tenant)
	if err != nil {
		return err
	}

	return nil
}
