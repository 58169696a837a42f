package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/helpout/helpout-api/internal/match"
	"github.com/helpout/helpout-api/internal/retrieval"
	"github.com/helpout/helpout-api/internal/scoring"
	"github.com/helpout/helpout-api/internal/swipe"
	"github.com/helpout/helpout-api/internal/weights"
)

// Swipe sides. Volunteers swipe on vacancies; organisations swipe on
// volunteers through one of their vacancies.
const (
	SideVolunteer    = "volunteer"
	SideOrganization = "organization"
)

// SwipeHandlers holds dependencies for the swipe endpoints.
type SwipeHandlers struct {
	swipes     *swipe.Service
	matches    *match.Service
	volunteers retrieval.VolunteerReader
	vacancies  retrieval.VacancyReader
	weights    *weights.Cache
}

// NewSwipeHandlers creates a SwipeHandlers instance.
func NewSwipeHandlers(swipes *swipe.Service, matches *match.Service, volunteers retrieval.VolunteerReader, vacancies retrieval.VacancyReader, w *weights.Cache) *SwipeHandlers {
	return &SwipeHandlers{swipes: swipes, matches: matches, volunteers: volunteers, vacancies: vacancies, weights: w}
}

// CreateSwipeRequest is the body of POST /swipes.
type CreateSwipeRequest struct {
	Side        string  `json:"side"`
	VolunteerID string  `json:"volunteer_id"`
	VacancyID   string  `json:"vacancy_id"`
	Direction   string  `json:"direction"`
	Reason      *string `json:"reason,omitempty"`
}

// CreateSwipeResponse is the body of a successful POST /swipes.
type CreateSwipeResponse struct {
	Swipe          *swipe.Swipe `json:"swipe"`
	Matched        bool         `json:"matched"`
	Match          *match.Match `json:"match,omitempty"`
	ConversationID *string      `json:"conversation_id,omitempty"`
	RemainingToday int          `json:"remaining_today"`
}

// UndoSwipeResponse is the body of a successful DELETE /swipes/latest.
type UndoSwipeResponse struct {
	Undone         *swipe.Swipe `json:"undone"`
	RemainingToday int          `json:"remaining_today"`
}

// CreateSwipe handles POST /swipes. A volunteer's interested swipe
// opens a PENDING match; the organisation's swipe resolves it, creating
// the conversation on acceptance.
func (h *SwipeHandlers) CreateSwipe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		errorWithCode(w, r, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	var req CreateSwipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorWithCode(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body")
		return
	}
	if req.VolunteerID == "" || req.VacancyID == "" {
		errorWithCode(w, r, http.StatusBadRequest, ErrCodeValidation, "volunteer_id and vacancy_id are required")
		return
	}
	if req.Side != SideVolunteer && req.Side != SideOrganization {
		errorWithCode(w, r, http.StatusBadRequest, ErrCodeValidation, "side must be volunteer or organization")
		return
	}

	direction, err := swipe.ParseDirection(req.Direction)
	if err != nil {
		errorWithCode(w, r, http.StatusUnprocessableEntity, ErrCodeInvalidDirection, "Unknown swipe direction")
		return
	}

	vacancy, err := h.vacancies.GetVacancy(r.Context(), req.VacancyID)
	if err != nil {
		if errors.Is(err, retrieval.ErrVacancyNotFound) {
			errorWithCode(w, r, http.StatusNotFound, ErrCodeNotFound, "Vacancy not found")
			return
		}
		errorWithCode(w, r, http.StatusInternalServerError, ErrCodeInternal, "Vacancy lookup failed")
		return
	}

	sw := &swipe.Swipe{
		Direction: direction,
		Reason:    req.Reason,
	}
	if req.Side == SideVolunteer {
		sw.SubjectID = req.VolunteerID
		sw.CandidateID = req.VacancyID
		sw.Score = h.scoreSnapshot(r, req.VolunteerID, vacancy)
	} else {
		sw.SubjectID = req.VacancyID
		sw.CandidateID = req.VolunteerID
	}

	result, err := h.swipes.Record(r.Context(), sw)
	if err != nil {
		switch {
		case errors.Is(err, swipe.ErrDailyCapExceeded):
			errorWithCode(w, r, http.StatusConflict, ErrCodeDailyCapExceeded, "Daily swipe limit reached")
		case errors.Is(err, swipe.ErrInvalidDirection):
			errorWithCode(w, r, http.StatusUnprocessableEntity, ErrCodeInvalidDirection, "Unknown swipe direction")
		default:
			errorWithCode(w, r, http.StatusInternalServerError, ErrCodeInternal, "Recording swipe failed")
		}
		return
	}

	resp := CreateSwipeResponse{Swipe: result.Swipe}

	if req.Side == SideVolunteer {
		m, _, err := h.matches.OnSwipe(r.Context(), result.Swipe, vacancy.OrgID)
		if err != nil {
			errorWithCode(w, r, http.StatusInternalServerError, ErrCodeInternal, "Match creation failed")
			return
		}
		resp.Match = m
	} else {
		m, conv, err := h.resolveMatch(r, req.VolunteerID, req.VacancyID, direction)
		if err != nil {
			errorWithCode(w, r, http.StatusInternalServerError, ErrCodeInternal, "Match resolution failed")
			return
		}
		resp.Match = m
		if conv != nil {
			resp.Matched = true
			resp.ConversationID = &conv.ID
		}
	}

	count, err := h.swipes.TodayCount(r.Context(), sw.SubjectID)
	if err == nil {
		resp.RemainingToday = h.swipes.DailyCap() - count
	}

	writeJSON(w, http.StatusCreated, resp)
}

// scoreSnapshot computes the pair's MatchScore at swipe time. The
// snapshot is analytics data only; a failed profile lookup skips it
// rather than failing the swipe.
func (h *SwipeHandlers) scoreSnapshot(r *http.Request, volunteerID string, vacancy *scoring.Vacancy) *scoring.MatchScore {
	volunteer, err := h.volunteers.GetVolunteer(r.Context(), volunteerID)
	if err != nil {
		return nil
	}
	score := scoring.Score(volunteer, vacancy, h.weights.Get(r.Context()), time.Now())
	return &score
}

// resolveMatch applies the organisation's decision to the pair's
// PENDING match. No match, or a match already resolved, is not an
// error: the swipe stands on its own.
func (h *SwipeHandlers) resolveMatch(r *http.Request, volunteerID, vacancyID string, direction swipe.Direction) (*match.Match, *match.Conversation, error) {
	m, err := h.matches.Get(r.Context(), volunteerID, vacancyID)
	if errors.Is(err, match.ErrMatchNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if m.Status != match.StatusPending {
		return m, nil, nil
	}

	if direction.Interested() {
		accepted, conv, err := h.matches.Accept(r.Context(), m.ID)
		if errors.Is(err, match.ErrTerminalState) {
			return m, nil, nil
		}
		if err != nil {
			return nil, nil, err
		}
		return accepted, conv, nil
	}

	rejected, err := h.matches.Reject(r.Context(), m.ID)
	if errors.Is(err, match.ErrTerminalState) {
		return m, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return rejected, nil, nil
}

// UndoLatest handles DELETE /swipes/latest?subject_id&swipe_id. Only
// the subject's most recent swipe can be undone; a match the
// organisation already acted on survives the undo.
func (h *SwipeHandlers) UndoLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		errorWithCode(w, r, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	subjectID := r.URL.Query().Get("subject_id")
	swipeID := r.URL.Query().Get("swipe_id")
	if subjectID == "" || swipeID == "" {
		errorWithCode(w, r, http.StatusBadRequest, ErrCodeValidation, "subject_id and swipe_id are required")
		return
	}

	undone, err := h.swipes.Undo(r.Context(), subjectID, swipeID)
	if err != nil {
		switch {
		case errors.Is(err, swipe.ErrSwipeNotFound):
			errorWithCode(w, r, http.StatusNotFound, ErrCodeNotFound, "Swipe not found")
		case errors.Is(err, swipe.ErrNotLatestSwipe):
			errorWithCode(w, r, http.StatusConflict, ErrCodeNotLatestSwipe, "Only the most recent swipe can be undone")
		default:
			errorWithCode(w, r, http.StatusInternalServerError, ErrCodeInternal, "Undo failed")
		}
		return
	}

	if err := h.matches.OnUndo(r.Context(), undone); err != nil {
		errorWithCode(w, r, http.StatusInternalServerError, ErrCodeInternal, "Undo failed")
		return
	}

	resp := UndoSwipeResponse{Undone: undone}
	count, err := h.swipes.TodayCount(r.Context(), subjectID)
	if err == nil {
		resp.RemainingToday = h.swipes.DailyCap() - count
	}

	writeJSON(w, http.StatusOK, resp)
}
