package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/helpout/helpout-api/internal/match"
	"github.com/helpout/helpout-api/internal/profile"
	"github.com/helpout/helpout-api/internal/retrieval"
	"github.com/helpout/helpout-api/internal/scoring"
	"github.com/helpout/helpout-api/internal/swipe"
	"github.com/helpout/helpout-api/internal/weights"
)

func newSwipeFixture(dailyCap int) (*SwipeHandlers, *retrieval.InMemoryCatalog) {
	catalog := retrieval.NewInMemoryCatalog()
	catalog.PutVolunteer(&profile.Volunteer{
		ID:        "vol-1",
		Interests: []string{"environment"},
	})
	catalog.PutVacancy(&scoring.Vacancy{
		ID:         "vac-1",
		OrgID:      "org-1",
		Title:      "Community garden help",
		Categories: []string{"environment"},
		Remote:     true,
		CreatedAt:  time.Now(),
	})

	swipes := swipe.NewService(swipe.NewInMemoryRepository(), nil, dailyCap, nil)
	matches := match.NewService(match.NewInMemoryRepository(), nil, nil, nil, nil)
	cache := weights.NewCache(weights.NewInMemoryStore(), 0, nil)
	return NewSwipeHandlers(swipes, matches, catalog, catalog, cache), catalog
}

func postSwipe(t *testing.T, h *SwipeHandlers, req CreateSwipeRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	rec := httptest.NewRecorder()
	h.CreateSwipe(rec, httptest.NewRequest(http.MethodPost, "/swipes", bytes.NewReader(body)))
	return rec
}

func decodeSwipeResponse(t *testing.T, rec *httptest.ResponseRecorder) CreateSwipeResponse {
	t.Helper()
	var resp CreateSwipeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

// TestCreateSwipeVolunteerOpensPendingMatch verifies the volunteer-side
// like records the swipe and opens a PENDING match.
func TestCreateSwipeVolunteerOpensPendingMatch(t *testing.T) {
	h, _ := newSwipeFixture(10)

	rec := postSwipe(t, h, CreateSwipeRequest{
		Side: SideVolunteer, VolunteerID: "vol-1", VacancyID: "vac-1", Direction: "LIKE",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	resp := decodeSwipeResponse(t, rec)
	if resp.Matched {
		t.Error("volunteer like alone must not report matched")
	}
	if resp.Match == nil || resp.Match.Status != match.StatusPending {
		t.Errorf("expected PENDING match, got %+v", resp.Match)
	}
	if resp.RemainingToday != 9 {
		t.Errorf("remaining = %d, want 9", resp.RemainingToday)
	}
}

// TestCreateSwipeMutualInterestAccepts verifies the organisation's like
// on a pending pair accepts the match and returns the conversation.
func TestCreateSwipeMutualInterestAccepts(t *testing.T) {
	h, _ := newSwipeFixture(10)

	postSwipe(t, h, CreateSwipeRequest{
		Side: SideVolunteer, VolunteerID: "vol-1", VacancyID: "vac-1", Direction: "LIKE",
	})

	rec := postSwipe(t, h, CreateSwipeRequest{
		Side: SideOrganization, VolunteerID: "vol-1", VacancyID: "vac-1", Direction: "LIKE",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	resp := decodeSwipeResponse(t, rec)
	if !resp.Matched {
		t.Error("expected matched = true")
	}
	if resp.ConversationID == nil || *resp.ConversationID == "" {
		t.Error("expected conversation ID")
	}
	if resp.Match == nil || resp.Match.Status != match.StatusAccepted {
		t.Errorf("expected ACCEPTED match, got %+v", resp.Match)
	}
}

// TestCreateSwipeOrgDislikeRejects verifies the organisation's dislike
// rejects the pending match without a conversation.
func TestCreateSwipeOrgDislikeRejects(t *testing.T) {
	h, _ := newSwipeFixture(10)

	postSwipe(t, h, CreateSwipeRequest{
		Side: SideVolunteer, VolunteerID: "vol-1", VacancyID: "vac-1", Direction: "LIKE",
	})

	rec := postSwipe(t, h, CreateSwipeRequest{
		Side: SideOrganization, VolunteerID: "vol-1", VacancyID: "vac-1", Direction: "DISLIKE",
	})
	resp := decodeSwipeResponse(t, rec)
	if resp.Matched {
		t.Error("dislike must not match")
	}
	if resp.Match == nil || resp.Match.Status != match.StatusRejected {
		t.Errorf("expected REJECTED match, got %+v", resp.Match)
	}
}

// TestCreateSwipeStoresScoreSnapshot verifies the volunteer swipe
// carries the pair's MatchScore and the stored row returns it intact.
func TestCreateSwipeStoresScoreSnapshot(t *testing.T) {
	h, _ := newSwipeFixture(10)

	rec := postSwipe(t, h, CreateSwipeRequest{
		Side: SideVolunteer, VolunteerID: "vol-1", VacancyID: "vac-1", Direction: "LIKE",
	})
	resp := decodeSwipeResponse(t, rec)

	if resp.Swipe.Score == nil {
		t.Fatal("expected a score snapshot on the volunteer swipe")
	}
	if resp.Swipe.Score.Total <= 0 {
		t.Errorf("snapshot total = %v, want > 0", resp.Swipe.Score.Total)
	}

	// The repository round-trips the snapshot on undo.
	undoRec := httptest.NewRecorder()
	h.UndoLatest(undoRec, httptest.NewRequest(http.MethodDelete,
		"/swipes/latest?subject_id=vol-1&swipe_id="+resp.Swipe.ID, nil))
	if undoRec.Code != http.StatusOK {
		t.Fatalf("undo status = %d: %s", undoRec.Code, undoRec.Body.String())
	}
	var undone UndoSwipeResponse
	if err := json.NewDecoder(undoRec.Body).Decode(&undone); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if undone.Undone.Score == nil || undone.Undone.Score.Total != resp.Swipe.Score.Total {
		t.Errorf("stored snapshot = %+v, want total %v", undone.Undone.Score, resp.Swipe.Score.Total)
	}
}

// TestCreateSwipeOrgLikeBeforeVolunteer pins the ordering rule: an
// organisation's like with no prior volunteer interest stands alone, and
// the later volunteer like only opens PENDING.
func TestCreateSwipeOrgLikeBeforeVolunteer(t *testing.T) {
	h, _ := newSwipeFixture(10)

	rec := postSwipe(t, h, CreateSwipeRequest{
		Side: SideOrganization, VolunteerID: "vol-1", VacancyID: "vac-1", Direction: "LIKE",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	resp := decodeSwipeResponse(t, rec)
	if resp.Matched || resp.Match != nil {
		t.Errorf("org like without volunteer interest must stand alone, got %+v", resp)
	}

	rec = postSwipe(t, h, CreateSwipeRequest{
		Side: SideVolunteer, VolunteerID: "vol-1", VacancyID: "vac-1", Direction: "LIKE",
	})
	resp = decodeSwipeResponse(t, rec)
	if resp.Matched {
		t.Error("volunteer like must not auto-accept a forgotten org like")
	}
	if resp.Match == nil || resp.Match.Status != match.StatusPending {
		t.Errorf("expected PENDING match, got %+v", resp.Match)
	}
}

// TestCreateSwipeInvalidDirection verifies 422 on unknown direction.
func TestCreateSwipeInvalidDirection(t *testing.T) {
	h, _ := newSwipeFixture(10)

	rec := postSwipe(t, h, CreateSwipeRequest{
		Side: SideVolunteer, VolunteerID: "vol-1", VacancyID: "vac-1", Direction: "MAYBE",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if errResp.Error.Code != ErrCodeInvalidDirection {
		t.Errorf("code = %q, want %q", errResp.Error.Code, ErrCodeInvalidDirection)
	}
}

// TestCreateSwipeDailyCap verifies 409 once the budget is used up.
func TestCreateSwipeDailyCap(t *testing.T) {
	h, catalog := newSwipeFixture(1)
	catalog.PutVacancy(&scoring.Vacancy{ID: "vac-2", OrgID: "org-1", CreatedAt: time.Now()})

	postSwipe(t, h, CreateSwipeRequest{
		Side: SideVolunteer, VolunteerID: "vol-1", VacancyID: "vac-1", Direction: "LIKE",
	})

	rec := postSwipe(t, h, CreateSwipeRequest{
		Side: SideVolunteer, VolunteerID: "vol-1", VacancyID: "vac-2", Direction: "LIKE",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

// TestCreateSwipeUnknownVacancy verifies 404 for a missing vacancy.
func TestCreateSwipeUnknownVacancy(t *testing.T) {
	h, _ := newSwipeFixture(10)

	rec := postSwipe(t, h, CreateSwipeRequest{
		Side: SideVolunteer, VolunteerID: "vol-1", VacancyID: "vac-ghost", Direction: "LIKE",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// TestUndoLatestEndpoint verifies the undo flow including the match
// removal and the restored budget.
func TestUndoLatestEndpoint(t *testing.T) {
	h, _ := newSwipeFixture(10)

	rec := postSwipe(t, h, CreateSwipeRequest{
		Side: SideVolunteer, VolunteerID: "vol-1", VacancyID: "vac-1", Direction: "LIKE",
	})
	created := decodeSwipeResponse(t, rec)

	undoRec := httptest.NewRecorder()
	h.UndoLatest(undoRec, httptest.NewRequest(http.MethodDelete,
		"/swipes/latest?subject_id=vol-1&swipe_id="+created.Swipe.ID, nil))
	if undoRec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", undoRec.Code, undoRec.Body.String())
	}

	var resp UndoSwipeResponse
	if err := json.NewDecoder(undoRec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Undone.ID != created.Swipe.ID {
		t.Errorf("undone ID = %q, want %q", resp.Undone.ID, created.Swipe.ID)
	}
	if resp.RemainingToday != 10 {
		t.Errorf("remaining = %d, want 10", resp.RemainingToday)
	}
}

// TestUndoNotLatest verifies 409 when undoing anything but the most
// recent swipe.
func TestUndoNotLatest(t *testing.T) {
	h, catalog := newSwipeFixture(10)
	catalog.PutVacancy(&scoring.Vacancy{ID: "vac-2", OrgID: "org-1", CreatedAt: time.Now()})

	first := decodeSwipeResponse(t, postSwipe(t, h, CreateSwipeRequest{
		Side: SideVolunteer, VolunteerID: "vol-1", VacancyID: "vac-1", Direction: "LIKE",
	}))
	postSwipe(t, h, CreateSwipeRequest{
		Side: SideVolunteer, VolunteerID: "vol-1", VacancyID: "vac-2", Direction: "LIKE",
	})

	rec := httptest.NewRecorder()
	h.UndoLatest(rec, httptest.NewRequest(http.MethodDelete,
		"/swipes/latest?subject_id=vol-1&swipe_id="+first.Swipe.ID, nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}
