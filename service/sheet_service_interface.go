package service

import "context"

// SheetServiceInterface defines the contract for the tabular store
type SheetServiceInterface interface {
	EnsureSchema(ctx context.Context, table string) error
	AppendRow(ctx context.Context, table string, values []string) bool
	FindByKey(ctx context.Context, table, keyColumn, keyValue string) (map[string]string, bool, error)
	ListRecords(ctx context.Context, table string) ([]map[string]string, error)
}
