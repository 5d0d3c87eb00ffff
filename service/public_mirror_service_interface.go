package service

import "context"

// PublicMirrorServiceInterface defines the contract for the unauthenticated read path
type PublicMirrorServiceInterface interface {
	FetchAll(ctx context.Context, sheetID string) []map[string]string
	FetchAllWithStatus(ctx context.Context, sheetID string) ([]map[string]string, error)
	FindByCode(ctx context.Context, sheetID, code string) (map[string]string, bool)
	Invalidate(sheetID string)
}
