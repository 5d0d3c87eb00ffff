package controller

import (
	"fmt"
	"net/http"

	"fabric-digital-system/service"

	"github.com/go-chi/chi/v5"
)

// PublicController serves fabric data from the published export, without credentials
type PublicController struct {
	mirror        service.PublicMirrorServiceInterface
	publicSheetID string
}

// NewPublicController creates a new PublicController
func NewPublicController(mirror service.PublicMirrorServiceInterface, publicSheetID string) *PublicController {
	return &PublicController{
		mirror:        mirror,
		publicSheetID: publicSheetID,
	}
}

// ListFabrics handles GET /public/fabrics
func (c *PublicController) ListFabrics(w http.ResponseWriter, r *http.Request) {
	if c.publicSheetID == "" {
		writeError(w, http.StatusServiceUnavailable, "public sheet is not configured")
		return
	}
	writeJSON(w, http.StatusOK, c.mirror.FetchAll(r.Context(), c.publicSheetID))
}

// GetFabric handles GET /public/fabrics/{code}
func (c *PublicController) GetFabric(w http.ResponseWriter, r *http.Request) {
	if c.publicSheetID == "" {
		writeError(w, http.StatusServiceUnavailable, "public sheet is not configured")
		return
	}

	code := chi.URLParam(r, "code")
	row, found := c.mirror.FindByCode(r.Context(), c.publicSheetID, code)
	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("fabric '%s' not found", code))
		return
	}
	writeJSON(w, http.StatusOK, row)
}
