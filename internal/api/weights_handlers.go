package api

import (
	"encoding/json"
	"net/http"

	"github.com/helpout/helpout-api/internal/weights"
)

// WeightsHandlers holds dependencies for the admin weights endpoints.
type WeightsHandlers struct {
	cache *weights.Cache
}

// NewWeightsHandlers creates a WeightsHandlers instance.
func NewWeightsHandlers(cache *weights.Cache) *WeightsHandlers {
	return &WeightsHandlers{cache: cache}
}

// Handle dispatches GET and PUT /admin/weights.
func (h *WeightsHandlers) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.put(w, r)
	default:
		errorWithCode(w, r, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
	}
}

func (h *WeightsHandlers) get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cache.Get(r.Context()))
}

func (h *WeightsHandlers) put(w http.ResponseWriter, r *http.Request) {
	var req weights.Weights
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorWithCode(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body")
		return
	}

	if err := req.Validate(); err != nil {
		errorWithCode(w, r, http.StatusUnprocessableEntity, ErrCodeInvalidWeights, err.Error())
		return
	}

	if err := h.cache.Update(r.Context(), req); err != nil {
		errorWithCode(w, r, http.StatusInternalServerError, ErrCodeInternal, "Storing weights failed")
		return
	}

	writeJSON(w, http.StatusOK, req)
}
