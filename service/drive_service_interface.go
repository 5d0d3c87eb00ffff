package service

import (
	"context"

	"fabric-digital-system/models"
)

// DriveServiceInterface defines the contract for Google Drive operations
type DriveServiceInterface interface {
	ResolveFolder(ctx context.Context, name string) (string, bool, error)
	ResolveSpreadsheet(ctx context.Context, name string) (string, bool, error)
	UploadImage(ctx context.Context, localPath, folderID, ownerEmail string) (*models.UploadResult, error)
	DownloadImage(ctx context.Context, fileID string) ([]byte, error)
}
