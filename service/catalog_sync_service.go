package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"fabric-digital-system/models"
	"fabric-digital-system/repository"

	"github.com/google/uuid"
)

// CatalogSyncService persists fabric records with their images and reads them back.
// Implements CatalogSyncServiceInterface
type CatalogSyncService struct {
	driveService DriveServiceInterface
	sheetService SheetServiceInterface
	folders      *IdentityResolver
	journal      repository.SubmissionRepositoryInterface
}

// NewCatalogSyncService creates a new CatalogSyncService
func NewCatalogSyncService(
	driveService DriveServiceInterface,
	sheetService SheetServiceInterface,
	folders *IdentityResolver,
	journal repository.SubmissionRepositoryInterface,
) *CatalogSyncService {
	if journal == nil {
		journal = repository.NopSubmissionRepository{}
	}
	return &CatalogSyncService{
		driveService: driveService,
		sheetService: sheetService,
		folders:      folders,
		journal:      journal,
	}
}

// Ensure CatalogSyncService implements CatalogSyncServiceInterface
var _ CatalogSyncServiceInterface = (*CatalogSyncService)(nil)

// Submit uploads the request's images and appends the record to the table.
// An image failure is returned as an error and nothing is written to the table.
// Every other failure is reported through the result, never as an error.
func (s *CatalogSyncService) Submit(ctx context.Context, req models.SubmitRequest) (*models.SubmitResult, error) {
	record := req.Record
	log.Printf("🔄 Starting submission of fabric '%s' to table '%s' (%d images)", record.Code, req.Table, len(req.ImagePaths))

	if err := record.Validate(); err != nil {
		return s.finish(ctx, req, &record, nil, models.StageValidate, fmt.Sprintf("Validation error: %v", err)), nil
	}

	uploads, err := s.uploadImages(ctx, req)
	if err != nil {
		s.finish(ctx, req, &record, nil, models.StageImages, fmt.Sprintf("Images did not save: %v", err))
		return nil, err
	}

	if len(uploads) > 0 {
		record.MainImageID = uploads[0].AssetID
		record.WashImageIDs = nil
		for _, u := range uploads[1:] {
			record.WashImageIDs = append(record.WashImageIDs, u.AssetID)
		}
		if err := record.Validate(); err != nil {
			return s.finish(ctx, req, &record, uploads, models.StageRecord, recordFailureMessage(uploads, err)), nil
		}
	}

	if err := s.sheetService.EnsureSchema(ctx, req.Table); err != nil {
		return s.finish(ctx, req, &record, uploads, models.StageRecord, recordFailureMessage(uploads, err)), nil
	}

	if !s.sheetService.AppendRow(ctx, req.Table, record.ToRow()) {
		return s.finish(ctx, req, &record, uploads, models.StageRecord, recordFailureMessage(uploads, fmt.Errorf("append failed"))), nil
	}

	return s.finish(ctx, req, &record, uploads, models.StageDone, "Saved successfully!"), nil
}

// uploadImages resolves the destination folder once and uploads every image in order
func (s *CatalogSyncService) uploadImages(ctx context.Context, req models.SubmitRequest) ([]models.UploadResult, error) {
	if len(req.ImagePaths) == 0 {
		return nil, nil
	}

	folder, err := s.folders.Resolve(ctx, req.ImageFolder)
	if err != nil {
		return nil, fmt.Errorf("%w: could not resolve folder '%s': %w", ErrUpload, req.ImageFolder, err)
	}

	uploads := make([]models.UploadResult, 0, len(req.ImagePaths))
	for i, path := range req.ImagePaths {
		log.Printf("📤 Uploading image %d/%d: %s", i+1, len(req.ImagePaths), path)
		result, err := s.driveService.UploadImage(ctx, path, folder.ID(), req.OwnerEmail)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, *result)
	}
	return uploads, nil
}

// finish builds the result, journals it and updates the submission metrics
func (s *CatalogSyncService) finish(ctx context.Context, req models.SubmitRequest, record *models.FabricRecord, uploads []models.UploadResult, stage, message string) *models.SubmitResult {
	success := stage == models.StageDone
	result := &models.SubmitResult{
		Success: success,
		Message: message,
		Stage:   stage,
		Code:    record.Code,
		Uploads: uploads,
	}
	for i := range uploads {
		result.Warnings = append(result.Warnings, uploads[i].Warnings()...)
	}

	outcome := "success"
	if !success {
		outcome = "failure"
	}
	SubmissionsTotal.WithLabelValues(stage, outcome).Inc()

	if success {
		log.Printf("✅ Fabric '%s' saved to '%s' (%d warnings)", record.Code, req.Table, len(result.Warnings))
	} else {
		log.Printf("❌ Fabric '%s' not saved at stage %s: %s", record.Code, stage, message)
	}

	entry := &models.SubmissionLog{
		ID:           uuid.NewString(),
		FabricCode:   record.Code,
		TableRef:     req.Table,
		MainImageID:  record.MainImageID,
		WashImageIDs: strings.Join(record.WashImageIDs, ","),
		Stage:        stage,
		Success:      success,
		Message:      message,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.journal.Insert(ctx, entry); err != nil {
		log.Printf("⚠️  Warning: could not journal submission of '%s': %v", record.Code, err)
	}

	return result
}

// recordFailureMessage tells the user whether images were already stored
func recordFailureMessage(uploads []models.UploadResult, err error) string {
	if len(uploads) == 0 {
		return fmt.Sprintf("Failed to save to Sheet: %v", err)
	}
	return fmt.Sprintf("Images were stored (%d) but the record did not save: %v", len(uploads), err)
}

// Lookup returns the record stored under code, or nil when there is none
func (s *CatalogSyncService) Lookup(ctx context.Context, table, code string) (*models.FabricRecord, error) {
	row, found, err := s.sheetService.FindByKey(ctx, table, models.ColFabricCode, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up fabric '%s': %w", code, err)
	}
	if !found {
		return nil, nil
	}
	return models.FabricRecordFromRow(row), nil
}

// List returns every row of the table keyed by its header
func (s *CatalogSyncService) List(ctx context.Context, table string) ([]map[string]string, error) {
	return s.sheetService.ListRecords(ctx, table)
}

// History returns the journaled submissions for a fabric code
func (s *CatalogSyncService) History(ctx context.Context, code string) ([]models.SubmissionLog, error) {
	return s.journal.ListByCode(ctx, code)
}
