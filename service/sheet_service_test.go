package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"fabric-digital-system/models"
)

func newTestSheetService(t *testing.T, fake *fakeGoogle, strict bool) *SheetService {
	t.Helper()
	session := newFakeSession(t, fake)
	return NewSheetService(session, NewSpreadsheetResolver(NewDriveService(session)), strict)
}

func TestSheetService_EnsureSchema_WritesHeaderOnce(t *testing.T) {
	fake := newFakeGoogle()
	sheetID := fake.addSpreadsheet("fabric_library")
	s := newTestSheetService(t, fake, false)

	for i := 0; i < 2; i++ {
		if err := s.EnsureSchema(context.Background(), "fabric_library"); err != nil {
			t.Fatalf("EnsureSchema() call %d error = %v", i+1, err)
		}
	}

	rows := fake.sheetRows(sheetID)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1 header row", len(rows))
	}
	if len(rows[0]) != len(models.ColumnSchema) || rows[0][0] != models.ColFabricCode {
		t.Errorf("header = %v, want column schema", rows[0])
	}
}

func TestSheetService_EnsureSchema_TableNotFound(t *testing.T) {
	s := newTestSheetService(t, newFakeGoogle(), false)

	err := s.EnsureSchema(context.Background(), "missing_table")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("EnsureSchema() error = %v, want ErrNotFound", err)
	}
}

func TestSheetService_EnsureSchema_HeaderMismatch(t *testing.T) {
	fake := newFakeGoogle()
	fake.addSpreadsheet("legacy", []interface{}{"Code", "Supplier"})

	lenient := newTestSheetService(t, fake, false)
	if err := lenient.EnsureSchema(context.Background(), "legacy"); err != nil {
		t.Errorf("EnsureSchema() lenient error = %v, want nil", err)
	}

	strict := newTestSheetService(t, fake, true)
	if err := strict.EnsureSchema(context.Background(), "legacy"); !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("EnsureSchema() strict error = %v, want ErrSchemaMismatch", err)
	}
}

func TestSheetService_AppendRow(t *testing.T) {
	fake := newFakeGoogle()
	sheetID := fake.addSpreadsheet("fabric_library", headerRow())
	s := newTestSheetService(t, fake, false)

	if !s.AppendRow(context.Background(), "fabric_library", []string{"ABC1", "Mill"}) {
		t.Fatal("AppendRow() = false, want true")
	}
	// Duplicates are not checked
	if !s.AppendRow(context.Background(), "fabric_library", []string{"ABC1", "Mill"}) {
		t.Fatal("second AppendRow() = false, want true")
	}
	if rows := fake.sheetRows(sheetID); len(rows) != 3 {
		t.Errorf("rows = %d, want 3", len(rows))
	}

	fake.set(func(f *fakeGoogle) { f.failAppend = true })
	if s.AppendRow(context.Background(), "fabric_library", []string{"X"}) {
		t.Error("AppendRow() = true on a rejected append")
	}
	if s.AppendRow(context.Background(), "missing_table", []string{"X"}) {
		t.Error("AppendRow() = true on a missing table")
	}
}

func TestSheetService_FindByKey(t *testing.T) {
	fake := newFakeGoogle()
	fake.addSpreadsheet("fabric_library",
		[]interface{}{"Fabric_Code", "Shade"},
		[]interface{}{"abc1", "Ecru"},
		[]interface{}{"ABC1", "Indigo"},
		[]interface{}{"ABC1", "Black"},
		[]interface{}{"ZZ9"},
	)
	s := newTestSheetService(t, fake, false)
	ctx := context.Background()

	row, found, err := s.FindByKey(ctx, "fabric_library", models.ColFabricCode, "ABC1")
	if err != nil || !found {
		t.Fatalf("FindByKey() = (%v, %v, %v), want found", row, found, err)
	}
	if row["Shade"] != "Indigo" {
		t.Errorf("Shade = %q, want first exact match %q", row["Shade"], "Indigo")
	}

	row, found, err = s.FindByKey(ctx, "fabric_library", models.ColFabricCode, "ZZ9")
	if err != nil || !found || row["Shade"] != "" {
		t.Errorf("FindByKey(short row) = (%v, %v, %v), want padded row", row, found, err)
	}

	_, found, err = s.FindByKey(ctx, "fabric_library", models.ColFabricCode, "NOPE")
	if err != nil || found {
		t.Errorf("FindByKey(miss) = (%v, %v), want (false, nil)", found, err)
	}

	_, _, err = s.FindByKey(ctx, "missing_table", models.ColFabricCode, "ABC1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByKey(missing table) error = %v, want ErrNotFound", err)
	}
}

func TestSheetService_ListRecords_LiteralKeyFallback(t *testing.T) {
	fake := newFakeGoogle()
	sheetID := fake.addSpreadsheet("some other name",
		[]interface{}{"Fabric_Code"},
		[]interface{}{"A"},
		[]interface{}{"B"},
	)
	s := newTestSheetService(t, fake, false)

	// The spreadsheet key itself resolves when no sheet carries that name
	records, err := s.ListRecords(context.Background(), sheetID)
	if err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}
	if len(records) != 2 || records[1]["Fabric_Code"] != "B" {
		t.Errorf("records = %v", records)
	}
}

func TestSheetService_Unauthorized(t *testing.T) {
	fake := newFakeGoogle()
	fake.addSpreadsheet("fabric_library")
	fake.unauthorized = true
	s := newTestSheetService(t, fake, false)

	if err := s.EnsureSchema(context.Background(), "fabric_library"); !errors.Is(err, ErrAuth) {
		t.Errorf("EnsureSchema() error = %v, want ErrAuth", err)
	}
	if err := s.EnsureSchema(context.Background(), "fabric_library"); !errors.Is(err, ErrAuth) {
		t.Errorf("EnsureSchema() after invalidation error = %v, want ErrAuth", err)
	}
}

func TestSheetService_NilSession(t *testing.T) {
	s := NewSheetService(nil, nil, false)
	if _, err := s.ListRecords(context.Background(), "fabric_library"); !errors.Is(err, ErrAuth) {
		t.Errorf("ListRecords() error = %v, want ErrAuth", err)
	}
}

func TestSheetService_BlankTableName(t *testing.T) {
	s := newTestSheetService(t, newFakeGoogle(), false)

	if _, err := s.ListRecords(context.Background(), "   "); !errors.Is(err, ErrNotFound) {
		t.Errorf("ListRecords(blank) error = %v, want ErrNotFound", err)
	}
}

func TestSheetService_SlowStoreTimesOut(t *testing.T) {
	fake := newFakeGoogle()
	fake.addSpreadsheet("fabric_library")
	fake.delay = 2 * time.Second
	session := newFakeSessionWithTimeout(t, fake, 50*time.Millisecond)
	s := NewSheetService(session, NewSpreadsheetResolver(NewDriveService(session)), false)

	start := time.Now()
	err := s.EnsureSchema(context.Background(), "fabric_library")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("EnsureSchema() error = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("EnsureSchema() took %s, want it bounded by the session timeout", elapsed)
	}
	if !session.Valid() {
		t.Error("session invalidated by a timeout")
	}
}
