package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tamu-thinktank/website-sub002/internal/dto"
	"github.com/tamu-thinktank/website-sub002/internal/service"
	pkgerrors "github.com/tamu-thinktank/website-sub002/pkg/errors"
)

func matchBody() dto.MatchInterviewRequest {
	return dto.MatchInterviewRequest{
		ApplicationID: testAppID,
		OfficerID:     testOfficerID,
		TimeSlotID:    testSlotID,
		Location:      "ZACH 350",
	}
}

func TestInterviewHandler_Match_Success(t *testing.T) {
	mock := &mockInterviewService{matchResult: &dto.InterviewResponse{ID: "iv-1", Status: "scheduled"}}
	h := NewInterviewHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/interviews/match", jsonBody(matchBody()))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/interviews/match", func(c *gin.Context) {
		setAuth(c)
		h.Match(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
}

func TestInterviewHandler_Match_MissingFields(t *testing.T) {
	h := NewInterviewHandler(&mockInterviewService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/interviews/match", bytes.NewReader([]byte(`{"application_id":"`+testAppID+`"}`)))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/interviews/match", func(c *gin.Context) {
		setAuth(c)
		h.Match(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestInterviewHandler_Match_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"AppNotFound", service.ErrApplicationNotFound, 404, 16001},
		{"OfficerNotFound", service.ErrOfficerNotFound, 404, 12001},
		{"SlotNotFound", service.ErrTimeSlotNotFound, 404, 15001},
		{"OfficerInactive", service.ErrOfficerInactive, 400, 18002},
		{"Unavailable", service.ErrOfficerUnavailable, 400, 18003},
		{"OfficerBusy", service.ErrOfficerBusy, 400, 18004},
		{"ApplicantBusy", service.ErrApplicantBusy, 400, 18005},
		{"CycleMismatch", service.ErrSlotCycleMismatch, 400, 18006},
		{"Finalized", service.ErrApplicationFinalized, 400, 18007},
		{"Internal", errors.New("boom"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewInterviewHandler(&mockInterviewService{matchErr: tt.err})

			_, _, w := setupGin()
			req := httptest.NewRequest("POST", "/interviews/match", jsonBody(matchBody()))
			req.Header.Set("Content-Type", "application/json")

			r := gin.New()
			r.POST("/interviews/match", func(c *gin.Context) {
				setAuth(c)
				h.Match(c)
			})
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestInterviewHandler_GetInterview_NotFound(t *testing.T) {
	h := NewInterviewHandler(&mockInterviewService{getErr: service.ErrInterviewNotFound})

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/interviews/missing", nil)

	r := gin.New()
	r.GET("/interviews/:id", h.GetInterview)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 18001 {
		t.Errorf("expected code 18001, got %d", resp.Code)
	}
}

func TestInterviewHandler_List_Mine(t *testing.T) {
	mock := &mockInterviewService{listResult: []dto.InterviewResponse{{ID: "iv-1"}}}
	h := NewInterviewHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/interviews?mine=true&status=scheduled", nil)

	r := gin.New()
	r.GET("/interviews", func(c *gin.Context) {
		setOfficerAuth(c)
		h.ListInterviews(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.lastList == nil || !mock.lastList.Mine || mock.lastList.Status != "scheduled" {
		t.Errorf("query not bound: %+v", mock.lastList)
	}
}

func TestInterviewHandler_Candidates_RequiresApplication(t *testing.T) {
	h := NewInterviewHandler(&mockInterviewService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/interviews/candidates", nil)

	r := gin.New()
	r.GET("/interviews/candidates", h.Candidates)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestInterviewHandler_UpdateStatus(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"Success", `{"status":"completed"}`, nil, 200, 0},
		{"BackToScheduled", `{"status":"scheduled"}`, nil, 400, 10001},
		{"Transition", `{"status":"no_show"}`, service.ErrInterviewStatusTransition, 400, 18008},
		{"Forbidden", `{"status":"cancelled"}`, service.ErrInterviewForbidden, 403, 18010},
		{"Conflict", `{"status":"cancelled","version":2}`, pkgerrors.ErrOptimisticLock, 409, 10009},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockInterviewService{
				statusResult: &dto.InterviewResponse{ID: "iv-1", Status: "completed"},
				statusErr:    tt.err,
			}
			h := NewInterviewHandler(mock)

			_, _, w := setupGin()
			req := httptest.NewRequest("PATCH", "/interviews/iv-1/status", bytes.NewReader([]byte(tt.body)))
			req.Header.Set("Content-Type", "application/json")

			r := gin.New()
			r.PATCH("/interviews/:id/status", func(c *gin.Context) {
				setOfficerAuth(c)
				h.UpdateStatus(c)
			})
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
			if tt.wantStatus != 400 && mock.lastRole != "officer" {
				t.Errorf("expected caller role to reach the service, got %q", mock.lastRole)
			}
		})
	}
}

func TestInterviewHandler_AddNote(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"Success", `{"content":"Strong fundamentals","rating":4,"recommendation":"yes"}`, nil, 201, 0},
		{"BadRecommendation", `{"content":"ok","rating":4,"recommendation":"maybe"}`, nil, 400, 10001},
		{"RatingRange", `{"content":"ok","rating":0,"recommendation":"no"}`, nil, 400, 10001},
		{"Cancelled", `{"content":"ok","rating":3,"recommendation":"no"}`, service.ErrInterviewCancelled, 400, 18009},
		{"NotFound", `{"content":"ok","rating":3,"recommendation":"no"}`, service.ErrInterviewNotFound, 404, 18001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockInterviewService{noteResult: &dto.NoteResponse{ID: "note-1"}, noteErr: tt.err}
			h := NewInterviewHandler(mock)

			_, _, w := setupGin()
			req := httptest.NewRequest("POST", "/interviews/iv-1/notes", bytes.NewReader([]byte(tt.body)))
			req.Header.Set("Content-Type", "application/json")

			r := gin.New()
			r.POST("/interviews/:id/notes", func(c *gin.Context) {
				setOfficerAuth(c)
				h.AddNote(c)
			})
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestInterviewHandler_ListNotes(t *testing.T) {
	mock := &mockInterviewService{notesResult: []dto.NoteResponse{{ID: "n1"}, {ID: "n2"}}}
	h := NewInterviewHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/interviews/iv-1/notes", nil)

	r := gin.New()
	r.GET("/interviews/:id/notes", h.ListNotes)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data, _ := parseResponse(w).Data.(map[string]interface{})
	list, _ := data["list"].([]interface{})
	if len(list) != 2 {
		t.Errorf("expected 2 notes, got %d", len(list))
	}
}
