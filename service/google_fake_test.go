package service

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"fabric-digital-system/models"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// fakeGoogle is an in-process stand-in for the Drive v3 and Sheets v4 REST APIs
type fakeGoogle struct {
	mu          sync.Mutex
	nextID      int
	files       map[string]*fakeFile
	order       []string
	rows        map[string][][]interface{}
	permissions []fakePermission
	queries     []string

	delay        time.Duration
	unauthorized bool
	failOwner    bool
	failPublic   bool
	failCreate   bool
	failAppend   bool
}

type fakeFile struct {
	ID       string
	Name     string
	MimeType string
	Parents  []string
	Data     []byte
}

type fakePermission struct {
	FileID            string
	Role              string
	Type              string
	EmailAddress      string
	TransferOwnership bool
}

var queryPattern = regexp.MustCompile(`mimeType = '([^']*)' and name = '((?:[^'\\]|\\.)*)' and trashed = false`)

func newFakeGoogle() *fakeGoogle {
	return &fakeGoogle{
		files: make(map[string]*fakeFile),
		rows:  make(map[string][][]interface{}),
	}
}

func (f *fakeGoogle) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeGoogle) put(file *fakeFile) {
	f.files[file.ID] = file
	f.order = append(f.order, file.ID)
}

func (f *fakeGoogle) addFolder(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.id("folder")
	f.put(&fakeFile{ID: id, Name: name, MimeType: folderMimeType})
	return id
}

func (f *fakeGoogle) addSpreadsheet(name string, rows ...[]interface{}) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.id("sheet")
	f.put(&fakeFile{ID: id, Name: name, MimeType: spreadsheetMimeType})
	f.rows[id] = rows
	return id
}

func (f *fakeGoogle) sheetRows(id string) [][]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]interface{}(nil), f.rows[id]...)
}

func (f *fakeGoogle) grants() []fakePermission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fakePermission(nil), f.permissions...)
}

func (f *fakeGoogle) listQueries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func (f *fakeGoogle) set(fn func(f *fakeGoogle)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeGoogle) uploads() []*fakeFile {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*fakeFile
	for _, id := range f.order {
		if file := f.files[id]; file.Data != nil {
			out = append(out, file)
		}
	}
	return out
}

func (f *fakeGoogle) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	delay := f.delay
	f.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.unauthorized {
		writeGoogleError(w, http.StatusUnauthorized, "Request had invalid authentication credentials.")
		return
	}

	path := r.URL.Path
	switch {
	case strings.HasPrefix(path, "/v4/spreadsheets/"):
		f.serveSheets(w, r, strings.TrimPrefix(path, "/v4/spreadsheets/"))
	case r.Method == http.MethodGet && path == "/files":
		f.listFiles(w, r)
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/files"):
		f.createFile(w, r)
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/permissions"):
		f.createPermission(w, r, strings.TrimSuffix(strings.TrimPrefix(path, "/files/"), "/permissions"))
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/files/"):
		f.getFile(w, r, strings.TrimPrefix(path, "/files/"))
	default:
		writeGoogleError(w, http.StatusNotFound, "no route for "+r.Method+" "+path)
	}
}

func (f *fakeGoogle) listFiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	f.queries = append(f.queries, q)

	m := queryPattern.FindStringSubmatch(q)
	if m == nil {
		writeGoogleError(w, http.StatusBadRequest, "unsupported query: "+q)
		return
	}
	mimeType := m[1]
	name := strings.NewReplacer(`\'`, `'`, `\\`, `\`).Replace(m[2])

	files := []*drive.File{}
	for _, id := range f.order {
		file := f.files[id]
		if file.MimeType == mimeType && file.Name == name {
			files = append(files, &drive.File{Id: file.ID, Name: file.Name})
		}
	}
	writeJSONBody(w, &drive.FileList{Files: files})
}

func (f *fakeGoogle) createFile(w http.ResponseWriter, r *http.Request) {
	if f.failCreate {
		writeGoogleError(w, http.StatusForbidden, "The user's Drive storage quota has been exceeded.")
		return
	}

	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		writeGoogleError(w, http.StatusBadRequest, "expected multipart upload")
		return
	}

	reader := multipart.NewReader(r.Body, params["boundary"])
	metaPart, err := reader.NextPart()
	if err != nil {
		writeGoogleError(w, http.StatusBadRequest, "missing metadata part")
		return
	}
	var meta drive.File
	if err := json.NewDecoder(metaPart).Decode(&meta); err != nil {
		writeGoogleError(w, http.StatusBadRequest, "bad metadata")
		return
	}
	mediaPart, err := reader.NextPart()
	if err != nil {
		writeGoogleError(w, http.StatusBadRequest, "missing media part")
		return
	}
	data, err := io.ReadAll(mediaPart)
	if err != nil {
		writeGoogleError(w, http.StatusBadRequest, "bad media")
		return
	}

	id := f.id("file")
	f.put(&fakeFile{
		ID:       id,
		Name:     meta.Name,
		MimeType: meta.MimeType,
		Parents:  meta.Parents,
		Data:     data,
	})
	writeJSONBody(w, &drive.File{Id: id})
}

func (f *fakeGoogle) createPermission(w http.ResponseWriter, r *http.Request, fileID string) {
	if _, ok := f.files[fileID]; !ok {
		writeGoogleError(w, http.StatusNotFound, "File not found: "+fileID)
		return
	}

	var perm drive.Permission
	if err := json.NewDecoder(r.Body).Decode(&perm); err != nil {
		writeGoogleError(w, http.StatusBadRequest, "bad permission")
		return
	}
	if perm.Role == "owner" && f.failOwner {
		writeGoogleError(w, http.StatusForbidden, "Consent is required to transfer ownership of a file to another user.")
		return
	}
	if perm.Role == "reader" && f.failPublic {
		writeGoogleError(w, http.StatusForbidden, "Sharing with anyone is disabled by the domain.")
		return
	}

	f.permissions = append(f.permissions, fakePermission{
		FileID:            fileID,
		Role:              perm.Role,
		Type:              perm.Type,
		EmailAddress:      perm.EmailAddress,
		TransferOwnership: r.URL.Query().Get("transferOwnership") == "true",
	})
	writeJSONBody(w, &drive.Permission{Id: f.id("perm"), Role: perm.Role, Type: perm.Type})
}

func (f *fakeGoogle) getFile(w http.ResponseWriter, r *http.Request, fileID string) {
	file, ok := f.files[fileID]
	if !ok {
		writeGoogleError(w, http.StatusNotFound, "File not found: "+fileID)
		return
	}
	if r.URL.Query().Get("alt") == "media" {
		w.Header().Set("Content-Type", file.MimeType)
		w.Write(file.Data)
		return
	}
	writeJSONBody(w, &drive.File{Id: file.ID, Name: file.Name, MimeType: file.MimeType})
}

func (f *fakeGoogle) serveSheets(w http.ResponseWriter, r *http.Request, rest string) {
	parts := strings.SplitN(rest, "/values/", 2)
	if len(parts) != 2 {
		writeGoogleError(w, http.StatusNotFound, "no route for "+r.URL.Path)
		return
	}
	spreadsheetID, valueRange := parts[0], parts[1]

	rows, ok := f.rows[spreadsheetID]
	if !ok {
		writeGoogleError(w, http.StatusNotFound, "Requested entity was not found.")
		return
	}

	if r.Method == http.MethodPost && strings.HasSuffix(valueRange, ":append") {
		if f.failAppend {
			writeGoogleError(w, http.StatusForbidden, "The caller does not have permission")
			return
		}
		var vr sheets.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			writeGoogleError(w, http.StatusBadRequest, "bad values")
			return
		}
		f.rows[spreadsheetID] = append(rows, vr.Values...)
		writeJSONBody(w, &sheets.AppendValuesResponse{SpreadsheetId: spreadsheetID})
		return
	}

	writeJSONBody(w, &sheets.ValueRange{
		Range:          "Sheet1!" + valueRange,
		MajorDimension: "ROWS",
		Values:         rows,
	})
}

func writeJSONBody(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeGoogleError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":    status,
			"message": message,
		},
	})
}

// newFakeSession starts a fake Google server and returns a session bound to it
func newFakeSession(t *testing.T, fake *fakeGoogle) *Session {
	t.Helper()
	return newFakeSessionWithTimeout(t, fake, 5*time.Second)
}

func newFakeSessionWithTimeout(t *testing.T, fake *fakeGoogle, timeout time.Duration) *Session {
	t.Helper()

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	session, err := NewSession(context.Background(), timeout,
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	return session
}

// writeTestImage writes a w x h PNG into dir and returns its path
func writeTestImage(t *testing.T, dir, name string, w, h int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}

	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	return path
}

// headerRow returns models.ColumnSchema as a sheet row
func headerRow() []interface{} {
	row := make([]interface{}, 0, len(models.ColumnSchema))
	for _, col := range models.ColumnSchema {
		row = append(row, col)
	}
	return row
}
