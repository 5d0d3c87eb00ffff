package repository

import (
	"context"

	"fabric-digital-system/models"
)

// SubmissionRepositoryInterface defines the contract for the submission journal
type SubmissionRepositoryInterface interface {
	Insert(ctx context.Context, entry *models.SubmissionLog) error
	ListByCode(ctx context.Context, code string) ([]models.SubmissionLog, error)
}
