package service

import (
	"context"

	"fabric-digital-system/models"
)

// LabelServiceInterface defines the contract for printable fabric labels
type LabelServiceInterface interface {
	RenderLabelHTML(ctx context.Context, record *models.FabricRecord) (string, error)
	GeneratePDF(ctx context.Context, record *models.FabricRecord) ([]byte, error)
}

// Ensure LabelService implements LabelServiceInterface
var _ LabelServiceInterface = (*LabelService)(nil)
