package controller

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"fabric-digital-system/service"
	"fabric-digital-system/utils"

	"github.com/go-chi/chi/v5"
)

// LabelController handles HTTP requests for printable fabric labels
type LabelController struct {
	syncService  service.CatalogSyncServiceInterface
	labelService service.LabelServiceInterface
	table        string
}

// NewLabelController creates a new LabelController
func NewLabelController(syncService service.CatalogSyncServiceInterface, labelService service.LabelServiceInterface, table string) *LabelController {
	return &LabelController{
		syncService:  syncService,
		labelService: labelService,
		table:        table,
	}
}

// GetLabel handles GET /api/labels/{code}?format=pdf|html
func (c *LabelController) GetLabel(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "pdf"
	}
	if format != "pdf" && format != "html" {
		writeError(w, http.StatusBadRequest, "Invalid format. Valid formats: html, pdf")
		return
	}

	record, err := c.syncService.Lookup(r.Context(), c.table, code)
	if err != nil {
		log.Printf("❌ GetLabel: %v", err)
		writeServiceError(w, err)
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("fabric '%s' not found", code))
		return
	}

	if format == "html" {
		html, err := c.labelService.RenderLabelHTML(r.Context(), record)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(html))
		return
	}

	pdf, err := c.labelService.GeneratePDF(r.Context(), record)
	if err != nil {
		log.Printf("❌ GetLabel: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, utils.LabelFileName(record.Code)))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
