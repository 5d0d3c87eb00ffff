package repository

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"fabric-digital-system/models"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// openTestDB connects to TEST_DATABASE_URL or skips the test
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := conn.Ping(); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	return conn
}

func TestSubmissionRepository_InsertAndList(t *testing.T) {
	conn := openTestDB(t)
	repo := NewSubmissionRepository(conn)
	ctx := context.Background()

	if err := repo.EnsureTable(ctx); err != nil {
		t.Fatalf("EnsureTable() error = %v", err)
	}

	code := "TEST-" + uuid.NewString()[:8]
	t.Cleanup(func() {
		conn.Exec(`DELETE FROM fabric_submissions WHERE fabric_code = $1`, code)
	})

	first := &models.SubmissionLog{
		ID:         uuid.NewString(),
		FabricCode: code,
		TableRef:   "fabric_library",
		Stage:      models.StageRecord,
		Message:    "Failed to save to Sheet",
		CreatedAt:  time.Now().Add(-time.Minute).UTC(),
	}
	second := &models.SubmissionLog{
		ID:           uuid.NewString(),
		FabricCode:   code,
		TableRef:     "fabric_library",
		MainImageID:  "img-1",
		WashImageIDs: "img-2,img-3",
		Stage:        models.StageDone,
		Success:      true,
		Message:      "Saved successfully!",
		CreatedAt:    time.Now().UTC(),
	}

	for _, e := range []*models.SubmissionLog{first, second} {
		if err := repo.Insert(ctx, e); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	entries, err := repo.ListByCode(ctx, code)
	if err != nil {
		t.Fatalf("ListByCode() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ListByCode() returned %d entries, want 2", len(entries))
	}
	if entries[0].ID != second.ID {
		t.Errorf("entries[0].ID = %q, want newest %q", entries[0].ID, second.ID)
	}
	if !entries[0].Success || entries[0].WashImageIDs != "img-2,img-3" {
		t.Errorf("entries[0] = %+v", entries[0])
	}
}

func TestNopSubmissionRepository(t *testing.T) {
	var repo SubmissionRepositoryInterface = NopSubmissionRepository{}

	if err := repo.Insert(context.Background(), &models.SubmissionLog{FabricCode: "X"}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	entries, err := repo.ListByCode(context.Background(), "X")
	if err != nil || len(entries) != 0 {
		t.Errorf("ListByCode() = %v, %v; want empty", entries, err)
	}
}
