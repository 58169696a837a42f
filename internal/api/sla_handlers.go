package api

import (
	"net/http"
	"strings"

	"github.com/helpout/helpout-api/internal/sla"
)

// SLAHandlers holds dependencies for the organisation SLA endpoint.
type SLAHandlers struct {
	service *sla.Service
}

// NewSLAHandlers creates an SLAHandlers instance.
func NewSLAHandlers(service *sla.Service) *SLAHandlers {
	return &SLAHandlers{service: service}
}

// GetOrgSLA handles GET /orgs/{id}/sla.
func (h *SLAHandlers) GetOrgSLA(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		errorWithCode(w, r, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/orgs/"), "/")
	if len(pathParts) != 2 || pathParts[0] == "" || pathParts[1] != "sla" {
		errorWithCode(w, r, http.StatusNotFound, ErrCodeNotFound, "Not found")
		return
	}
	orgID := pathParts[0]

	snap, err := h.service.Get(r.Context(), orgID)
	if err != nil {
		errorWithCode(w, r, http.StatusInternalServerError, ErrCodeInternal, "SLA lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, snap)
}
