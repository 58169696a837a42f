package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/helpout/helpout-api/internal/retrieval"
)

// RankHandlers holds dependencies for the ranking endpoints.
type RankHandlers struct {
	pipeline *retrieval.Pipeline
}

// NewRankHandlers creates a RankHandlers instance.
func NewRankHandlers(pipeline *retrieval.Pipeline) *RankHandlers {
	return &RankHandlers{pipeline: pipeline}
}

// RankVacanciesResponse is the body of GET /rank/vacancies.
type RankVacanciesResponse struct {
	VolunteerID string                    `json:"volunteer_id"`
	Results     []retrieval.RankedVacancy `json:"results"`
}

// RankVolunteersResponse is the body of GET /rank/volunteers.
type RankVolunteersResponse struct {
	VacancyID string                      `json:"vacancy_id"`
	Results   []retrieval.RankedVolunteer `json:"results"`
}

func parseLimit(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return limit, true
}

// RankVacancies handles GET /rank/vacancies?volunteer_id&limit.
func (h *RankHandlers) RankVacancies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		errorWithCode(w, r, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	volunteerID := r.URL.Query().Get("volunteer_id")
	if volunteerID == "" {
		errorWithCode(w, r, http.StatusBadRequest, ErrCodeValidation, "volunteer_id is required")
		return
	}
	limit, ok := parseLimit(r)
	if !ok {
		errorWithCode(w, r, http.StatusBadRequest, ErrCodeValidation, "limit must be an integer")
		return
	}

	ranked, err := h.pipeline.RankVacancies(r.Context(), volunteerID, limit)
	if err != nil {
		if errors.Is(err, retrieval.ErrVolunteerNotFound) {
			errorWithCode(w, r, http.StatusNotFound, ErrCodeNotFound, "Volunteer not found")
			return
		}
		errorWithCode(w, r, http.StatusInternalServerError, ErrCodeInternal, "Ranking failed")
		return
	}

	writeJSON(w, http.StatusOK, RankVacanciesResponse{
		VolunteerID: volunteerID,
		Results:     ranked,
	})
}

// RankVolunteers handles GET /rank/volunteers?vacancy_id&limit.
func (h *RankHandlers) RankVolunteers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		errorWithCode(w, r, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	vacancyID := r.URL.Query().Get("vacancy_id")
	if vacancyID == "" {
		errorWithCode(w, r, http.StatusBadRequest, ErrCodeValidation, "vacancy_id is required")
		return
	}
	limit, ok := parseLimit(r)
	if !ok {
		errorWithCode(w, r, http.StatusBadRequest, ErrCodeValidation, "limit must be an integer")
		return
	}

	ranked, err := h.pipeline.RankVolunteers(r.Context(), vacancyID, limit)
	if err != nil {
		if errors.Is(err, retrieval.ErrVacancyNotFound) {
			errorWithCode(w, r, http.StatusNotFound, ErrCodeNotFound, "Vacancy not found")
			return
		}
		errorWithCode(w, r, http.StatusInternalServerError, ErrCodeInternal, "Ranking failed")
		return
	}

	writeJSON(w, http.StatusOK, RankVolunteersResponse{
		VacancyID: vacancyID,
		Results:   ranked,
	})
}
