package service

import (
	"context"

	"fabric-digital-system/models"
)

// CatalogSyncServiceInterface defines the contract for catalog write and read operations
type CatalogSyncServiceInterface interface {
	Submit(ctx context.Context, req models.SubmitRequest) (*models.SubmitResult, error)
	Lookup(ctx context.Context, table, code string) (*models.FabricRecord, error)
	List(ctx context.Context, table string) ([]map[string]string, error)
	History(ctx context.Context, code string) ([]models.SubmissionLog, error)
}
