package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultExportURL is the published CSV export of a Google Sheet; %s is the sheet ID
const DefaultExportURL = "https://docs.google.com/spreadsheets/d/%s/export?format=csv"

// codeColumns are the header spellings accepted for the fabric code
var codeColumns = []string{"Fabric_Code", "fabric_code", "Code"}

// PublicMirrorService reads fabric rows from the unauthenticated published export.
// It never fails loudly: network or parse failures read as "no data".
// Implements PublicMirrorServiceInterface
type PublicMirrorService struct {
	client    *http.Client
	exportURL string
	cache     *expirable.LRU[string, []map[string]string]
}

// NewPublicMirrorService creates a new PublicMirrorService.
// exportURL must contain one %s for the sheet ID. cacheSize <= 0 disables caching.
func NewPublicMirrorService(exportURL string, timeout time.Duration, cacheSize int, cacheTTL time.Duration) *PublicMirrorService {
	if exportURL == "" {
		exportURL = DefaultExportURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	s := &PublicMirrorService{
		client:    &http.Client{Timeout: timeout},
		exportURL: exportURL,
	}
	if cacheSize > 0 {
		s.cache = expirable.NewLRU[string, []map[string]string](cacheSize, nil, cacheTTL)
	}
	return s
}

// Ensure PublicMirrorService implements PublicMirrorServiceInterface
var _ PublicMirrorServiceInterface = (*PublicMirrorService)(nil)

// FetchAll returns every row of the published sheet keyed by its header row.
// Failures are logged and return an empty result.
func (s *PublicMirrorService) FetchAll(ctx context.Context, sheetID string) []map[string]string {
	rows, err := s.FetchAllWithStatus(ctx, sheetID)
	if err != nil {
		log.Printf("⚠️  Warning: public export of %s unavailable: %v", sheetID, err)
		return []map[string]string{}
	}
	return rows
}

// FetchAllWithStatus is FetchAll for callers that need to tell "no data" from "error".
// Returned rows are the caller's own; changing them does not touch the cache.
func (s *PublicMirrorService) FetchAllWithStatus(ctx context.Context, sheetID string) ([]map[string]string, error) {
	if s.cache != nil {
		if rows, ok := s.cache.Get(sheetID); ok {
			mirrorCacheHitsTotal.Inc()
			return copyRows(rows), nil
		}
		mirrorCacheMissesTotal.Inc()
	}

	start := time.Now()
	rows, err := s.fetch(ctx, sheetID)
	observe("public_export", "fetch", start, err)
	if err != nil {
		return nil, err
	}

	records := recordsFromRows(rows)
	if records == nil {
		records = []map[string]string{}
	}
	if s.cache != nil {
		s.cache.Add(sheetID, copyRows(records))
	}

	log.Printf("✓ Public export of %s fetched: %d rows", sheetID, len(records))
	return records, nil
}

func (s *PublicMirrorService) fetch(ctx context.Context, sheetID string) ([][]string, error) {
	exportURL := fmt.Sprintf(s.exportURL, url.PathEscape(sheetID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build export request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch export: %w", classifyError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("export returned status %d", resp.StatusCode)
	}
	// Unpublished sheets answer with a sign-in page instead of CSV
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return nil, fmt.Errorf("export returned HTML, is the sheet published?")
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse export: %w", err)
	}
	return rows, nil
}

// FindByCode returns the first row whose code column matches code,
// ignoring case and surrounding whitespace
func (s *PublicMirrorService) FindByCode(ctx context.Context, sheetID, code string) (map[string]string, bool) {
	want := normalizeCode(code)
	if want == "" {
		return nil, false
	}

	for _, row := range s.FetchAll(ctx, sheetID) {
		for _, col := range codeColumns {
			if v, ok := row[col]; ok && normalizeCode(v) == want {
				return row, true
			}
		}
	}

	log.Printf("🔍 Code '%s' not found in public export of %s", code, sheetID)
	return nil, false
}

// Invalidate drops the cached export of a sheet
func (s *PublicMirrorService) Invalidate(sheetID string) {
	if s.cache != nil {
		s.cache.Remove(sheetID)
	}
}

// copyRows deep-copies header-keyed rows
func copyRows(rows []map[string]string) []map[string]string {
	out := make([]map[string]string, len(rows))
	for i, row := range rows {
		out[i] = make(map[string]string, len(row))
		for k, v := range row {
			out[i][k] = v
		}
	}
	return out
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
