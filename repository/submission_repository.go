package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"fabric-digital-system/models"
)

const createSubmissionsTable = `
	CREATE TABLE IF NOT EXISTS fabric_submissions (
		id             UUID PRIMARY KEY,
		fabric_code    TEXT NOT NULL,
		table_ref      TEXT NOT NULL,
		main_image_id  TEXT NOT NULL DEFAULT '',
		wash_image_ids TEXT NOT NULL DEFAULT '',
		stage          TEXT NOT NULL,
		success        BOOLEAN NOT NULL,
		message        TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL
	)
`

const createSubmissionsCodeIndex = `CREATE INDEX IF NOT EXISTS fabric_submissions_code_idx ON fabric_submissions (fabric_code)`

// SubmissionRepository journals submission outcomes in Postgres
// Implements SubmissionRepositoryInterface
type SubmissionRepository struct {
	db *sql.DB
}

// NewSubmissionRepository creates a new SubmissionRepository
func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Ensure SubmissionRepository implements SubmissionRepositoryInterface
var _ SubmissionRepositoryInterface = (*SubmissionRepository)(nil)

// EnsureTable creates the journal table when it does not exist
func (r *SubmissionRepository) EnsureTable(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createSubmissionsTable); err != nil {
		return fmt.Errorf("failed to create fabric_submissions table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createSubmissionsCodeIndex); err != nil {
		return fmt.Errorf("failed to create fabric_submissions index: %w", err)
	}
	log.Printf("✓ fabric_submissions table ready")
	return nil
}

// Insert stores one submission outcome
func (r *SubmissionRepository) Insert(ctx context.Context, entry *models.SubmissionLog) error {
	query := `
		INSERT INTO fabric_submissions (
			id, fabric_code, table_ref, main_image_id, wash_image_ids, stage, success, message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.FabricCode,
		entry.TableRef,
		entry.MainImageID,
		entry.WashImageIDs,
		entry.Stage,
		entry.Success,
		entry.Message,
		entry.CreatedAt,
	)
	if err != nil {
		log.Printf("❌ Error journaling submission of %s: %v", entry.FabricCode, err)
		return fmt.Errorf("failed to insert submission: %w", err)
	}

	log.Printf("💾 Submission journaled: code=%s, stage=%s, success=%v", entry.FabricCode, entry.Stage, entry.Success)
	return nil
}

// ListByCode returns the submissions of a fabric code, newest first
func (r *SubmissionRepository) ListByCode(ctx context.Context, code string) ([]models.SubmissionLog, error) {
	query := `
		SELECT id, fabric_code, table_ref, main_image_id, wash_image_ids, stage, success, message, created_at
		FROM fabric_submissions
		WHERE fabric_code = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, code)
	if err != nil {
		log.Printf("❌ Error fetching submissions for %s: %v", code, err)
		return nil, fmt.Errorf("failed to get submissions: %w", err)
	}
	defer rows.Close()

	var entries []models.SubmissionLog
	for rows.Next() {
		var e models.SubmissionLog
		if err := rows.Scan(
			&e.ID,
			&e.FabricCode,
			&e.TableRef,
			&e.MainImageID,
			&e.WashImageIDs,
			&e.Stage,
			&e.Success,
			&e.Message,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}

	log.Printf("✓ Fetched %d submissions for %s", len(entries), code)
	return entries, nil
}

// NopSubmissionRepository discards entries; used when no database is configured
type NopSubmissionRepository struct{}

// Ensure NopSubmissionRepository implements SubmissionRepositoryInterface
var _ SubmissionRepositoryInterface = NopSubmissionRepository{}

func (NopSubmissionRepository) Insert(context.Context, *models.SubmissionLog) error { return nil }

func (NopSubmissionRepository) ListByCode(context.Context, string) ([]models.SubmissionLog, error) {
	return nil, nil
}
