package controller

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"fabric-digital-system/codec"
	"fabric-digital-system/service"
	"fabric-digital-system/utils"

	"github.com/go-chi/chi/v5"
)

const maxScanBytes = 10 << 20

// ScanResponse is returned by POST /api/scan
type ScanResponse struct {
	Code   string            `json:"code"`
	Found  bool              `json:"found"`
	Record map[string]string `json:"record,omitempty"`
}

// QRController handles QR encoding and scan-to-lookup requests
type QRController struct {
	mirror        service.PublicMirrorServiceInterface
	publicSheetID string
}

// NewQRController creates a new QRController
func NewQRController(mirror service.PublicMirrorServiceInterface, publicSheetID string) *QRController {
	return &QRController{
		mirror:        mirror,
		publicSheetID: publicSheetID,
	}
}

// GetQRCode handles GET /api/qr/{code}?size=300
func (c *QRController) GetQRCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	size := codec.DefaultSize
	if s := r.URL.Query().Get("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 64 || n > 2048 {
			writeError(w, http.StatusBadRequest, "size must be an integer between 64 and 2048")
			return
		}
		size = n
	}

	png, err := codec.Encode(code, size)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, utils.QRFileName(code)))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// Scan handles POST /api/scan.
// The image is read from the "image" multipart field or from the raw body.
func (c *QRController) Scan(w http.ResponseWriter, r *http.Request) {
	data, err := readScanImage(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	code, ok, err := codec.Decode(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "no QR code found in image")
		return
	}
	log.Printf("🔍 Scanned code '%s'", code)

	resp := ScanResponse{Code: code}
	if c.publicSheetID != "" {
		resp.Record, resp.Found = c.mirror.FindByCode(r.Context(), c.publicSheetID, code)
	}
	writeJSON(w, http.StatusOK, resp)
}

func readScanImage(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxScanBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("image")
		if err != nil {
			return nil, fmt.Errorf("image field is required: %w", err)
		}
		defer file.Close()
		return io.ReadAll(file)
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image body is required")
	}
	return data, nil
}
