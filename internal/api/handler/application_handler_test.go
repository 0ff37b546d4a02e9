package handler

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tamu-thinktank/website-sub002/internal/dto"
	"github.com/tamu-thinktank/website-sub002/internal/service"
	pkgerrors "github.com/tamu-thinktank/website-sub002/pkg/errors"
)

func newApplicationHandler(app *mockApplicationService, review *mockReviewService, resume *mockResumeService) *ApplicationHandler {
	if app == nil {
		app = &mockApplicationService{}
	}
	if review == nil {
		review = &mockReviewService{}
	}
	if resume == nil {
		resume = &mockResumeService{}
	}
	return NewApplicationHandler(app, review, resume, 1<<20)
}

func validSubmitRequest() dto.SubmitApplicationRequest {
	return dto.SubmitApplicationRequest{
		Name:      "Ada Lovelace",
		Email:     "ada@tamu.edu",
		UIN:       "123456789",
		Major:     "Computer Engineering",
		GradYear:  2028,
		Statement: "I want to build rockets.",
	}
}

func TestApplicationHandler_Submit_Success(t *testing.T) {
	mock := &mockApplicationService{
		submitResult: &dto.SubmitApplicationResponse{ApplicationID: testAppID, LookupCode: "ABCD2345", Status: "submitted"},
	}
	h := newApplicationHandler(mock, nil, nil)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/applications", jsonBody(validSubmitRequest()))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/applications", h.SubmitApplication)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	data, _ := parseResponse(w).Data.(map[string]interface{})
	if data["lookup_code"] != "ABCD2345" {
		t.Errorf("expected lookup_code in body, got %v", data)
	}
}

func TestApplicationHandler_Submit_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *dto.SubmitApplicationRequest)
	}{
		{"MissingName", func(r *dto.SubmitApplicationRequest) { r.Name = "" }},
		{"BadEmail", func(r *dto.SubmitApplicationRequest) { r.Email = "not-an-email" }},
		{"ShortUIN", func(r *dto.SubmitApplicationRequest) { r.UIN = "1234" }},
		{"GradYear", func(r *dto.SubmitApplicationRequest) { r.GradYear = 1990 }},
		{"BadResearchArea", func(r *dto.SubmitApplicationRequest) { r.ResearchAreaIDs = []string{"nope"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newApplicationHandler(nil, nil, nil)
			body := validSubmitRequest()
			tt.mutate(&body)

			_, _, w := setupGin()
			req := httptest.NewRequest("POST", "/applications", jsonBody(body))
			req.Header.Set("Content-Type", "application/json")

			r := gin.New()
			r.POST("/applications", h.SubmitApplication)
			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
			if resp := parseResponse(w); resp.Code != 10001 {
				t.Errorf("expected code 10001, got %d", resp.Code)
			}
		})
	}
}

func TestApplicationHandler_Submit_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"Closed", service.ErrApplicationsClosed, 400, 16002},
		{"NoCycle", service.ErrNoActiveCycle, 400, 16003},
		{"Duplicate", service.ErrDuplicateApplication, 409, 16005},
		{"ResearchArea", service.ErrInvalidResearchArea, 400, 16007},
		{"Internal", errors.New("db down"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newApplicationHandler(&mockApplicationService{submitErr: tt.err}, nil, nil)

			_, _, w := setupGin()
			req := httptest.NewRequest("POST", "/applications", jsonBody(validSubmitRequest()))
			req.Header.Set("Content-Type", "application/json")

			r := gin.New()
			r.POST("/applications", h.SubmitApplication)
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

func TestApplicationHandler_LookupStatus_WrongCode(t *testing.T) {
	h := newApplicationHandler(&mockApplicationService{lookupErr: service.ErrLookupFailed}, nil, nil)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/applications/status?email=ada@tamu.edu&code=ZZZZ9999", nil)

	r := gin.New()
	r.GET("/applications/status", h.LookupStatus)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 16008 {
		t.Errorf("expected code 16008, got %d", resp.Code)
	}
}

func TestApplicationHandler_UpdateStatus(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"Success", `{"status":"accepted"}`, nil, 200, 0},
		{"MissingStatus", `{}`, nil, 400, 10001},
		{"InvalidEnum", `{"status":"hired"}`, nil, 400, 10001},
		{"NotFound", `{"status":"rejected"}`, service.ErrApplicationNotFound, 404, 16001},
		{"Conflict", `{"status":"rejected","version":3}`, pkgerrors.ErrOptimisticLock, 409, 10009},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockApplicationService{
				updateResult: &dto.ApplicationResponse{ID: testAppID, Status: "accepted"},
				updateErr:    tt.err,
			}
			h := newApplicationHandler(mock, nil, nil)

			_, _, w := setupGin()
			req := httptest.NewRequest("PATCH", "/applications/"+testAppID+"/status", bytes.NewReader([]byte(tt.body)))
			req.Header.Set("Content-Type", "application/json")

			r := gin.New()
			r.PATCH("/applications/:id/status", func(c *gin.Context) {
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
		})
	}
}

func TestApplicationHandler_AssignTeam_NullClears(t *testing.T) {
	mock := &mockApplicationService{assignResult: &dto.ApplicationResponse{ID: testAppID}}
	h := newApplicationHandler(mock, nil, nil)

	_, _, w := setupGin()
	req := httptest.NewRequest("PATCH", "/applications/"+testAppID+"/team", bytes.NewReader([]byte(`{"team_id":null}`)))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PATCH("/applications/:id/team", func(c *gin.Context) {
		setAuth(c)
		h.AssignTeam(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.lastAssign == nil || mock.lastAssign.TeamID != nil {
		t.Errorf("expected nil team_id to reach the service, got %+v", mock.lastAssign)
	}
}

func TestApplicationHandler_AssignTeam_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"TeamNotFound", service.ErrTeamNotFound, 404, 13001},
		{"TeamInactive", service.ErrTeamInactive, 400, 13004},
		{"AppNotFound", service.ErrApplicationNotFound, 404, 16001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newApplicationHandler(&mockApplicationService{assignErr: tt.err}, nil, nil)

			_, _, w := setupGin()
			req := httptest.NewRequest("PATCH", "/applications/"+testAppID+"/team",
				jsonBody(map[string]string{"team_id": testSlotID}))
			req.Header.Set("Content-Type", "application/json")

			r := gin.New()
			r.PATCH("/applications/:id/team", func(c *gin.Context) {
				setAuth(c)
				h.AssignTeam(c)
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

func TestApplicationHandler_Transfer(t *testing.T) {
	mock := &mockApplicationService{transferResult: &dto.TransferApplicationsResponse{Moved: 4}}
	h := newApplicationHandler(mock, nil, nil)

	_, _, w := setupGin()
	req := httptest.NewRequest("PUT", "/applications/transfer", jsonBody(dto.TransferApplicationsRequest{
		CycleID:    testCycleID,
		FromStatus: "interviewing",
		ToStatus:   "accepted",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/applications/transfer", func(c *gin.Context) {
		setAuth(c)
		h.Transfer(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data, _ := parseResponse(w).Data.(map[string]interface{})
	if data["moved"] != float64(4) {
		t.Errorf("expected moved=4, got %v", data["moved"])
	}
}

func TestApplicationHandler_UpsertReview_ScoreRange(t *testing.T) {
	h := newApplicationHandler(nil, &mockReviewService{}, nil)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/applications/"+testAppID+"/reviews", bytes.NewReader([]byte(`{"score":6}`)))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/applications/:id/reviews", func(c *gin.Context) {
		setOfficerAuth(c)
		h.UpsertReview(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ── 简历上传 ──

func multipartResume(t *testing.T, content []byte, code string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "resume.pdf")
	if err != nil {
		t.Fatalf("CreateFormFile 应成功: %v", err)
	}
	fw.Write(content)
	if code != "" {
		mw.WriteField("code", code)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestApplicationHandler_UploadResume_Applicant(t *testing.T) {
	resume := &mockResumeService{result: &dto.ResumeUploadResponse{FileID: "file-1", Link: "https://example.com/file-1"}}
	h := newApplicationHandler(nil, nil, resume)

	content := []byte("%PDF-1.7\nfake body")
	body, ct := multipartResume(t, content, "ABCD2345")

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/applications/"+testAppID+"/resume", body)
	req.Header.Set("Content-Type", ct)

	r := gin.New()
	r.POST("/applications/:id/resume", h.UploadResume)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if resume.lastAccess.LookupCode != "ABCD2345" || resume.lastAccess.OfficerID != "" {
		t.Errorf("unexpected access %+v", resume.lastAccess)
	}
	if resume.lastSize != int64(len(content)) {
		t.Errorf("expected size %d, got %d", len(content), resume.lastSize)
	}
	if !bytes.Equal(resume.lastBody, content) {
		t.Errorf("file content not passed through")
	}
}

func TestApplicationHandler_UploadResume_Officer(t *testing.T) {
	resume := &mockResumeService{result: &dto.ResumeUploadResponse{FileID: "file-1"}}
	h := newApplicationHandler(nil, nil, resume)

	body, ct := multipartResume(t, []byte("%PDF-1.7"), "")

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/applications/"+testAppID+"/resume", body)
	req.Header.Set("Content-Type", ct)

	r := gin.New()
	r.POST("/applications/:id/resume", func(c *gin.Context) {
		setOfficerAuth(c)
		h.UploadResume(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if resume.lastAccess.OfficerID != testOfficerID {
		t.Errorf("expected officer access, got %+v", resume.lastAccess)
	}
}

func TestApplicationHandler_UploadResume_MissingFile(t *testing.T) {
	h := newApplicationHandler(nil, nil, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("code", "ABCD2345")
	mw.Close()

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/applications/"+testAppID+"/resume", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	r := gin.New()
	r.POST("/applications/:id/resume", h.UploadResume)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestApplicationHandler_UploadResume_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"NotPDF", service.ErrResumeNotPDF, 400, 17001},
		{"TooLarge", service.ErrResumeTooLarge, 413, 10005},
		{"Forbidden", service.ErrResumeForbidden, 403, 17003},
		{"NotFound", service.ErrApplicationNotFound, 404, 16001},
		{"NoStorage", pkgerrors.ErrProviderUnavailable, 503, 50300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newApplicationHandler(nil, nil, &mockResumeService{err: tt.err})
			body, ct := multipartResume(t, []byte("hello"), "ABCD2345")

			_, _, w := setupGin()
			req := httptest.NewRequest("POST", "/applications/"+testAppID+"/resume", body)
			req.Header.Set("Content-Type", ct)

			r := gin.New()
			r.POST("/applications/:id/resume", h.UploadResume)
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
