package controller

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fabric-digital-system/models"
	"fabric-digital-system/service"
	"fabric-digital-system/utils"

	"github.com/go-chi/chi/v5"
)

const maxUploadMemory = 32 << 20

// Multipart file fields, uploaded in this order: the first image becomes the main image
var imageFields = []string{"main_image", "wash_images", "images"}

// FabricDefaults are the table and image settings used when a request does not name its own
type FabricDefaults struct {
	Table       string
	ImageFolder string
	OwnerEmail  string
}

// FabricController handles HTTP requests for fabric records
type FabricController struct {
	syncService service.CatalogSyncServiceInterface
	defaults    FabricDefaults
	onSubmitted func(code string)
}

// NewFabricController creates a new FabricController.
// onSubmitted, when set, runs after every successful submission.
func NewFabricController(syncService service.CatalogSyncServiceInterface, defaults FabricDefaults, onSubmitted func(code string)) *FabricController {
	return &FabricController{
		syncService: syncService,
		defaults:    defaults,
		onSubmitted: onSubmitted,
	}
}

func (c *FabricController) table(r *http.Request) string {
	if t := strings.TrimSpace(r.URL.Query().Get("table")); t != "" {
		return t
	}
	return c.defaults.Table
}

// ListFabrics handles GET /api/fabrics
func (c *FabricController) ListFabrics(w http.ResponseWriter, r *http.Request) {
	rows, err := c.syncService.List(r.Context(), c.table(r))
	if err != nil {
		log.Printf("❌ ListFabrics: %v", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// GetFabric handles GET /api/fabrics/{code}
func (c *FabricController) GetFabric(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	record, err := c.syncService.Lookup(r.Context(), c.table(r), code)
	if err != nil {
		log.Printf("❌ GetFabric: %v", err)
		writeServiceError(w, err)
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("fabric '%s' not found", code))
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// CreateFabric handles POST /api/fabrics.
// Accepts a JSON object of fields, or a multipart form with fields and image files.
func (c *FabricController) CreateFabric(w http.ResponseWriter, r *http.Request) {
	req := models.SubmitRequest{
		Table:       c.table(r),
		ImageFolder: c.defaults.ImageFolder,
		OwnerEmail:  c.defaults.OwnerEmail,
	}

	var fields map[string]string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			writeServiceError(w, fmt.Errorf("%w: %v", service.ErrInvalidRecord, err))
			return
		}
		defer r.MultipartForm.RemoveAll()

		fields = make(map[string]string, len(r.MultipartForm.Value))
		for key, values := range r.MultipartForm.Value {
			if len(values) > 0 {
				fields[key] = values[0]
			}
		}

		tmpDir, err := os.MkdirTemp("", "fabric-upload-*")
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to stage images: %v", err))
			return
		}
		defer os.RemoveAll(tmpDir)

		paths, err := stageImages(tmpDir, r.MultipartForm)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to stage images: %v", err))
			return
		}
		req.ImagePaths = paths
	} else {
		var err error
		fields, err = decodeJSONFields(r.Body)
		if err != nil {
			writeServiceError(w, fmt.Errorf("%w: %v", service.ErrInvalidRecord, err))
			return
		}
	}

	if folder := strings.TrimSpace(fields["image_folder"]); folder != "" {
		req.ImageFolder = folder
	}
	req.Record = utils.FabricRecordFromFields(fields)

	result, err := c.syncService.Submit(r.Context(), req)
	if err != nil {
		log.Printf("❌ CreateFabric: %v", err)
		writeServiceError(w, err)
		return
	}

	status := http.StatusCreated
	switch result.Stage {
	case models.StageValidate:
		status = http.StatusBadRequest
	case models.StageRecord:
		status = http.StatusBadGateway
	}
	if result.Success && c.onSubmitted != nil {
		c.onSubmitted(result.Code)
	}
	writeJSON(w, status, result)
}

// decodeJSONFields reads a flat JSON object of field values.
// Numbers keep their literal text so codes like 12345678 are stored as sent.
func decodeJSONFields(body io.Reader) (map[string]string, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}

	fields := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
		case string:
			fields[key] = v
		case json.Number:
			fields[key] = v.String()
		case bool:
			fields[key] = strconv.FormatBool(v)
		default:
			return nil, fmt.Errorf("field %q must be a string, number or boolean", key)
		}
	}
	return fields, nil
}

// stageImages copies uploaded files to dir, keeping their extensions, in field order
func stageImages(dir string, form *multipart.Form) ([]string, error) {
	var paths []string
	for _, field := range imageFields {
		for _, fh := range form.File[field] {
			path, err := stageImage(dir, len(paths), fh)
			if err != nil {
				return nil, err
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}

func stageImage(dir string, index int, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// The uploaded name is kept since it becomes the stored asset name
	name := filepath.Base(fh.Filename)
	if name == "." || name == string(filepath.Separator) {
		name = "image"
	}
	sub := filepath.Join(dir, fmt.Sprintf("%02d", index))
	if err := os.Mkdir(sub, 0o700); err != nil {
		return "", err
	}
	path := filepath.Join(sub, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return path, nil
}

// GetHistory handles GET /api/submissions/{code}
func (c *FabricController) GetHistory(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	entries, err := c.syncService.History(r.Context(), code)
	if err != nil {
		log.Printf("❌ GetHistory: %v", err)
		writeServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []models.SubmissionLog{}
	}
	writeJSON(w, http.StatusOK, entries)
}
