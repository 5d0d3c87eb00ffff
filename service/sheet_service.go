package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"fabric-digital-system/models"

	"google.golang.org/api/sheets/v4"
)

const (
	// Reads cover the whole first worksheet
	readRange = "A:ZZ"
	// Appends let Sheets find the end of the table on the first worksheet
	appendRange = "A1"
)

// SheetService manages fabric tables stored in Google Sheets
// Implements SheetServiceInterface
type SheetService struct {
	session      *Session
	tables       *IdentityResolver
	strictSchema bool
}

// NewSheetService creates a new SheetService.
// tables resolves sheet names to spreadsheet keys; with strictSchema an existing
// header row that differs from models.ColumnSchema is an error instead of a warning.
func NewSheetService(session *Session, tables *IdentityResolver, strictSchema bool) *SheetService {
	return &SheetService{
		session:      session,
		tables:       tables,
		strictSchema: strictSchema,
	}
}

// Ensure SheetService implements SheetServiceInterface
var _ SheetServiceInterface = (*SheetService)(nil)

// EnsureSchema writes the header row when the table is empty.
// Missing tables are never created.
func (s *SheetService) EnsureSchema(ctx context.Context, table string) error {
	client, spreadsheetID, err := s.open(ctx, table)
	if err != nil {
		return err
	}

	rows, err := s.readValues(ctx, client, spreadsheetID)
	if err != nil {
		return fmt.Errorf("failed to open table '%s': %w", table, err)
	}

	if len(rows) == 0 {
		if err := s.appendValues(ctx, client, spreadsheetID, models.ColumnSchema); err != nil {
			return fmt.Errorf("failed to write headers to '%s': %w", table, err)
		}
		log.Printf("✓ Headers initialized for table '%s'", table)
		return nil
	}

	if !headerMatches(rows[0]) {
		if s.strictSchema {
			return fmt.Errorf("table '%s': %w (got %v)", table, ErrSchemaMismatch, rows[0])
		}
		log.Printf("⚠️  Warning: header row of '%s' differs from the column schema: %v", table, rows[0])
		return nil
	}

	log.Printf("🔍 Table '%s' already has data (%d rows)", table, len(rows))
	return nil
}

// AppendRow appends one row at the end of the table. There is no uniqueness check.
// Any failure is logged and reported as false.
func (s *SheetService) AppendRow(ctx context.Context, table string, values []string) bool {
	client, spreadsheetID, err := s.open(ctx, table)
	if err != nil {
		log.Printf("❌ Failed to append row to '%s': %v", table, err)
		return false
	}

	if err := s.appendValues(ctx, client, spreadsheetID, values); err != nil {
		log.Printf("❌ Failed to append row to '%s': %v", table, err)
		return false
	}

	log.Printf("💾 Row appended to '%s'", table)
	return true
}

// FindByKey scans the whole table and returns the first row whose keyColumn
// equals keyValue exactly. A miss is (nil, false, nil); an unreadable table is an error.
func (s *SheetService) FindByKey(ctx context.Context, table, keyColumn, keyValue string) (map[string]string, bool, error) {
	records, err := s.ListRecords(ctx, table)
	if err != nil {
		return nil, false, err
	}

	for _, record := range records {
		if record[keyColumn] == keyValue {
			log.Printf("✓ Found %s=%s in '%s'", keyColumn, keyValue, table)
			return record, true, nil
		}
	}

	log.Printf("🔍 %s=%s not found in '%s' (%d rows scanned)", keyColumn, keyValue, table, len(records))
	return nil, false, nil
}

// ListRecords returns every data row of the table keyed by the header row
func (s *SheetService) ListRecords(ctx context.Context, table string) ([]map[string]string, error) {
	client, spreadsheetID, err := s.open(ctx, table)
	if err != nil {
		return nil, err
	}

	rows, err := s.readValues(ctx, client, spreadsheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to open table '%s': %w", table, err)
	}

	return recordsFromRows(rows), nil
}

// open resolves the table name and returns the client to use
func (s *SheetService) open(ctx context.Context, table string) (*sheets.Service, string, error) {
	client, err := s.session.Sheets()
	if err != nil {
		return nil, "", err
	}

	resolution, err := s.tables.Resolve(ctx, table)
	if err != nil {
		return nil, "", err
	}
	if resolution.IsEmpty() {
		return nil, "", fmt.Errorf("%w: empty table name", ErrNotFound)
	}

	return client, resolution.ID(), nil
}

func (s *SheetService) readValues(ctx context.Context, client *sheets.Service, spreadsheetID string) ([][]string, error) {
	var values [][]interface{}
	start := time.Now()
	err := s.session.call(ctx, func(ctx context.Context) error {
		vr, err := client.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
		if err != nil {
			return err
		}
		values = vr.Values
		return nil
	})
	observe("sheets", "get_values", start, err)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("spreadsheet %s: %w", spreadsheetID, err)
		}
		return nil, err
	}

	rows := make([][]string, 0, len(values))
	for _, row := range values {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = fmt.Sprint(cell)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func (s *SheetService) appendValues(ctx context.Context, client *sheets.Service, spreadsheetID string, values []string) error {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}

	start := time.Now()
	err := s.session.call(ctx, func(ctx context.Context) error {
		_, err := client.Spreadsheets.Values.Append(spreadsheetID, appendRange, &sheets.ValueRange{
			Values: [][]interface{}{row},
		}).
			ValueInputOption("RAW").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()
		return err
	})
	observe("sheets", "append_values", start, err)
	return err
}

// headerMatches reports whether a header row equals models.ColumnSchema
func headerMatches(header []string) bool {
	if len(header) != len(models.ColumnSchema) {
		return false
	}
	for i, col := range models.ColumnSchema {
		if header[i] != col {
			return false
		}
	}
	return true
}
