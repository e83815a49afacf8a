package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mentorhub/interviews/internal/auth"
	"github.com/mentorhub/interviews/internal/config"
	"github.com/mentorhub/interviews/internal/handlers"
	"github.com/mentorhub/interviews/internal/middleware"
	"github.com/mentorhub/interviews/internal/models"
	"github.com/mentorhub/interviews/internal/service"
	"github.com/mentorhub/interviews/internal/testutil"
)

// stubLifecycle returns canned results and records the calls it receives
type stubLifecycle struct {
	startResult  *service.StartResult
	startErr     error
	record       *models.InterviewRecord
	getErr       error
	finalizeErr  error
	terminateErr error
	app          *models.ApplicationRecord
	appErr       error
	reconciled   int
	expired      int

	terminateCalls []string
	finalizeCalls  int
	lastOlderThan  time.Duration
	lastLimit      int
	lastCandidate  uuid.UUID
	lastCompany    uuid.UUID
}

func (s *stubLifecycle) StartOrResume(_ context.Context, _, candidateID uuid.UUID) (*service.StartResult, error) {
	s.lastCandidate = candidateID
	return s.startResult, s.startErr
}

func (s *stubLifecycle) Get(_ context.Context, _, candidateID uuid.UUID) (*models.InterviewRecord, error) {
	s.lastCandidate = candidateID
	if s.getErr != nil {
		return nil, s.getErr
	}
	if candidateID != uuid.Nil && s.record.CandidateID != candidateID {
		return nil, service.ErrInterviewNotFound
	}
	return s.record, nil
}

func (s *stubLifecycle) GetApplication(_ context.Context, _, _, companyID uuid.UUID) (*models.ApplicationRecord, error) {
	s.lastCompany = companyID
	return s.app, s.appErr
}

func (s *stubLifecycle) RecordAnswer(_ context.Context, _, _ uuid.UUID, _ models.QuestionAnswer) (*models.InterviewRecord, error) {
	return s.record, s.getErr
}

func (s *stubLifecycle) MarkVideoProcessing(context.Context, uuid.UUID, uuid.UUID) (*models.InterviewRecord, error) {
	return s.record, s.getErr
}

func (s *stubLifecycle) Finalize(_ context.Context, _, _ uuid.UUID, _ service.FinalizeInput) (*models.InterviewRecord, error) {
	s.finalizeCalls++
	if s.finalizeErr != nil {
		return nil, s.finalizeErr
	}
	return s.record, nil
}

func (s *stubLifecycle) Terminate(_ context.Context, _, _ uuid.UUID, reason string) error {
	s.terminateCalls = append(s.terminateCalls, reason)
	return s.terminateErr
}

func (s *stubLifecycle) Reconcile(_ context.Context, limit int) (int, error) {
	s.lastLimit = limit
	return s.reconciled, nil
}

func (s *stubLifecycle) ExpireStale(_ context.Context, olderThan time.Duration, limit int) (int, error) {
	s.lastOlderThan = olderThan
	s.lastLimit = limit
	return s.expired, nil
}

type harness struct {
	mux   *http.ServeMux
	auth  *testutil.AuthHelper
	stub  *stubLifecycle
	audit *stubAuditReader
}

type stubAuditReader struct {
	resourceID string
}

func (a *stubAuditReader) GetAll(context.Context, int, int) ([]models.AuditLog, error) {
	return nil, nil
}

func (a *stubAuditReader) GetByResource(_ context.Context, _, resourceID string, _, _ int) ([]models.AuditLog, error) {
	a.resourceID = resourceID
	return []models.AuditLog{{ID: 1, Action: "interview.started", ResourceID: resourceID}}, nil
}

func newHarness(stub *stubLifecycle) *harness {
	h := &harness{
		mux:   http.NewServeMux(),
		auth:  testutil.NewAuthHelper(),
		stub:  stub,
		audit: &stubAuditReader{},
	}
	interviewCfg := config.InterviewConfig{MaxDuration: 4 * time.Hour, ReconcileBatch: 100}
	handlers.RegisterRoutes(h.mux, handlers.Handlers{
		Interview:   handlers.NewInterviewHandler(stub),
		Application: handlers.NewApplicationHandler(stub),
		Admin:       handlers.NewAdminHandler(stub, interviewCfg),
		Audit:       handlers.NewAuditHandler(h.audit),
		Health: handlers.NewHealthHandler(map[string]handlers.HealthChecker{
			"database": func(context.Context) error { return nil },
		}),
	}, middleware.NewAuthMiddleware(h.auth.Service))
	return h
}

func (h *harness) do(t *testing.T, method, path, body string, userID uuid.UUID, roles ...string) *testutil.TestResponse {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		h.auth.AddAuthHeader(t, req, userID, roles...)
	}
	rr := testutil.NewTestResponse()
	h.mux.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *testutil.TestResponse, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rr.Body.String(), err)
	}
}

func TestStartStatusCodes(t *testing.T) {
	candidate := uuid.New()
	jobID := uuid.New()
	body := fmt.Sprintf(`{"jobId":%q}`, jobID)

	tests := []struct {
		name     string
		result   *service.StartResult
		err      error
		expected int
		code     string
	}{
		{"new interview", &service.StartResult{InterviewID: uuid.New()}, nil, http.StatusCreated, ""},
		{"resumed interview", &service.StartResult{InterviewID: uuid.New(), Resumed: true}, nil, http.StatusOK, ""},
		{"missing job", nil, service.ErrJobNotFound, http.StatusNotFound, handlers.CodeJobNotFound},
		{"human interview job", nil, service.ErrNotConfiguredForAI, http.StatusUnprocessableEntity, handlers.CodeNotConfiguredForAI},
		{"already completed", nil, service.ErrAlreadyCompleted, http.StatusConflict, handlers.CodeAlreadyCompleted},
		{"storage failure", nil, errors.New("connection refused"), http.StatusInternalServerError, handlers.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(&stubLifecycle{startResult: tt.result, startErr: tt.err})
			rr := h.do(t, http.MethodPost, "/api/v1/interviews/start", body, candidate, auth.RoleCandidate)
			rr.AssertStatus(t, tt.expected)

			if tt.code != "" {
				var resp map[string]string
				decode(t, rr, &resp)
				if resp["code"] != tt.code {
					t.Errorf("Expected code %q, got %q", tt.code, resp["code"])
				}
				if tt.expected == http.StatusInternalServerError && strings.Contains(resp["error"], "connection") {
					t.Errorf("Internal error details leaked: %q", resp["error"])
				}
			}
			if tt.err == nil && h.stub.lastCandidate != candidate {
				t.Errorf("Expected candidate from token, got %s", h.stub.lastCandidate)
			}
		})
	}
}

func TestStartRequiresCandidateAndValidJob(t *testing.T) {
	h := newHarness(&stubLifecycle{startResult: &service.StartResult{}})

	h.do(t, http.MethodPost, "/api/v1/interviews/start", `{"jobId":"x"}`, uuid.Nil).
		AssertStatus(t, http.StatusUnauthorized)
	h.do(t, http.MethodPost, "/api/v1/interviews/start", fmt.Sprintf(`{"jobId":%q}`, uuid.New()), uuid.New(), auth.RoleCompany).
		AssertStatus(t, http.StatusForbidden)
	h.do(t, http.MethodPost, "/api/v1/interviews/start", `{"jobId":"not-a-uuid"}`, uuid.New(), auth.RoleCandidate).
		AssertStatus(t, http.StatusBadRequest)
	h.do(t, http.MethodPost, "/api/v1/interviews/start", `{`, uuid.New(), auth.RoleCandidate).
		AssertStatus(t, http.StatusBadRequest)
}

func TestGetInterviewOwnership(t *testing.T) {
	owner := uuid.New()
	rec := &models.InterviewRecord{ID: uuid.New(), CandidateID: owner, Status: models.InterviewStarted}
	h := newHarness(&stubLifecycle{record: rec})
	path := "/api/v1/interviews/" + rec.ID.String()

	rr := h.do(t, http.MethodGet, path, "", owner, auth.RoleCandidate)
	rr.AssertStatus(t, http.StatusOK)
	var got map[string]any
	decode(t, rr, &got)
	if qs, ok := got["questions"].([]any); !ok || len(qs) != 0 {
		t.Errorf("Expected empty questions array, got %v", got["questions"])
	}

	stranger := uuid.New()
	h.do(t, http.MethodGet, path, "", stranger, auth.RoleCandidate).AssertStatus(t, http.StatusNotFound)
	if h.stub.lastCandidate != stranger {
		t.Errorf("Expected the caller to be passed as owner, got %s", h.stub.lastCandidate)
	}
	h.do(t, http.MethodGet, path, "", uuid.New(), auth.RoleAdmin).AssertStatus(t, http.StatusOK)
	if h.stub.lastCandidate != uuid.Nil {
		t.Errorf("Admin reads should skip the owner check, got %s", h.stub.lastCandidate)
	}
	h.do(t, http.MethodGet, "/api/v1/interviews/nope", "", owner, auth.RoleCandidate).AssertStatus(t, http.StatusBadRequest)

	missing := newHarness(&stubLifecycle{getErr: service.ErrInterviewNotFound})
	missing.do(t, http.MethodGet, path, "", owner, auth.RoleCandidate).AssertStatus(t, http.StatusNotFound)
}

func TestCompleteResponses(t *testing.T) {
	candidate := uuid.New()
	rec := &models.InterviewRecord{ID: uuid.New(), CandidateID: candidate, Status: models.InterviewCompleted}
	path := "/api/v1/interviews/" + rec.ID.String() + "/complete"
	body := `{"scores":{"overallScore":80,"technicalScore":75,"communicationScore":85,"confidenceScore":80},"duration":600}`

	t.Run("success", func(t *testing.T) {
		h := newHarness(&stubLifecycle{record: rec})
		rr := h.do(t, http.MethodPost, path, body, candidate, auth.RoleCandidate)
		rr.AssertStatus(t, http.StatusOK)

		var resp handlers.CompleteResponse
		decode(t, rr, &resp)
		if !resp.OK || resp.Interview == nil || resp.Interview.ID != rec.ID {
			t.Errorf("Unexpected response %+v", resp)
		}
	})

	failures := []struct {
		name     string
		err      error
		expected int
	}{
		{"terminated", service.ErrInterviewTerminated, http.StatusConflict},
		{"not found", service.ErrInterviewNotFound, http.StatusNotFound},
		{"other candidate", service.ErrForbidden, http.StatusForbidden},
		{"invalid payload", fmt.Errorf("%w: scores.overallScore must be at most 100", service.ErrInvalidPayload), http.StatusBadRequest},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(&stubLifecycle{finalizeErr: tt.err})
			rr := h.do(t, http.MethodPost, path, body, candidate, auth.RoleCandidate)
			rr.AssertStatus(t, tt.expected)

			var resp handlers.CompleteResponse
			decode(t, rr, &resp)
			if resp.OK || resp.Reason == "" {
				t.Errorf("Expected ok=false with a reason, got %+v", resp)
			}
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		h := newHarness(&stubLifecycle{record: rec})
		rr := h.do(t, http.MethodPost, path, `{"scores":`, candidate, auth.RoleCandidate)
		rr.AssertStatus(t, http.StatusBadRequest)
	})

	incomplete := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"no scores", `{"duration":600,"feedback":"ok"}`},
		{"missing score", `{"scores":{"overallScore":80,"technicalScore":75,"communicationScore":85},"duration":600}`},
		{"duration too long", `{"scores":{"overallScore":80,"technicalScore":75,"communicationScore":85,"confidenceScore":80},"duration":1e12}`},
	}
	for _, tt := range incomplete {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubLifecycle{record: rec}
			h := newHarness(stub)
			rr := h.do(t, http.MethodPost, path, tt.body, candidate, auth.RoleCandidate)
			rr.AssertStatus(t, http.StatusBadRequest)

			var resp handlers.CompleteResponse
			decode(t, rr, &resp)
			if resp.OK || resp.Reason == "" {
				t.Errorf("Expected ok=false with a reason, got %+v", resp)
			}
			if stub.finalizeCalls != 0 {
				t.Error("Incomplete payload must not reach the lifecycle")
			}
		})
	}
}

func TestTerminateAlwaysOK(t *testing.T) {
	candidate := uuid.New()
	interviewID := uuid.New()

	tests := []struct {
		name string
		path string
		body string
		err  error
	}{
		{"with reason", "/api/v1/interviews/" + interviewID.String() + "/terminate", `{"reason":"fullscreen_violation"}`, nil},
		{"service failure", "/api/v1/interviews/" + interviewID.String() + "/terminate", `{"reason":"user_exit"}`, errors.New("db down")},
		{"not found", "/api/v1/interviews/" + interviewID.String() + "/terminate", `{"reason":"user_exit"}`, service.ErrInterviewNotFound},
		{"empty body", "/api/v1/interviews/" + interviewID.String() + "/terminate", "", nil},
		{"invalid id", "/api/v1/interviews/garbage/terminate", `{"reason":"user_exit"}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(&stubLifecycle{terminateErr: tt.err})
			rr := h.do(t, http.MethodPost, tt.path, tt.body, candidate, auth.RoleCandidate)
			rr.AssertStatus(t, http.StatusOK)

			var resp map[string]bool
			decode(t, rr, &resp)
			if !resp["ok"] {
				t.Errorf("Expected ok=true, got %s", rr.Body.String())
			}
		})
	}
}

func TestTerminatePassesReason(t *testing.T) {
	h := newHarness(&stubLifecycle{})
	h.do(t, http.MethodPost, "/api/v1/interviews/"+uuid.NewString()+"/terminate",
		`{"reason":"fullscreen_violation"}`, uuid.New(), auth.RoleCandidate)

	if len(h.stub.terminateCalls) != 1 || h.stub.terminateCalls[0] != models.ReasonFullscreenViolation {
		t.Errorf("Expected one terminate with fullscreen_violation, got %v", h.stub.terminateCalls)
	}
}

func TestAnswersClosedInterview(t *testing.T) {
	h := newHarness(&stubLifecycle{getErr: service.ErrInterviewClosed})
	rr := h.do(t, http.MethodPost, "/api/v1/interviews/"+uuid.NewString()+"/answers",
		`{"question":"Q1","candidateAnswer":"A1"}`, uuid.New(), auth.RoleCandidate)
	rr.AssertStatus(t, http.StatusConflict)
}

func TestApplicationAccess(t *testing.T) {
	jobID := uuid.New()
	candidate := uuid.New()
	score := 82.0
	app := &models.ApplicationRecord{
		JobID:       jobID,
		CandidateID: candidate,
		Status:      models.ApplicationInterviewCompleted,
		Evaluation:  models.Evaluation{InterviewScore: &score},
	}
	h := newHarness(&stubLifecycle{app: app})
	path := fmt.Sprintf("/api/v1/jobs/%s/applications/%s", jobID, candidate)

	company := uuid.New()
	rr := h.do(t, http.MethodGet, path, "", company, auth.RoleCompany)
	rr.AssertStatus(t, http.StatusOK)
	if h.stub.lastCompany != company {
		t.Errorf("Expected read scoped to company %s, got %s", company, h.stub.lastCompany)
	}
	var got models.ApplicationRecord
	decode(t, rr, &got)
	if got.Status != models.ApplicationInterviewCompleted || got.Evaluation.InterviewScore == nil || *got.Evaluation.InterviewScore != score {
		t.Errorf("Unexpected application %+v", got)
	}

	h.do(t, http.MethodGet, path, "", candidate, auth.RoleCandidate).AssertStatus(t, http.StatusOK)
	if h.stub.lastCompany != uuid.Nil {
		t.Errorf("Candidate reading own application should not be company scoped, got %s", h.stub.lastCompany)
	}
	h.do(t, http.MethodGet, path, "", uuid.New(), auth.RoleCandidate).AssertStatus(t, http.StatusForbidden)

	otherCompany := newHarness(&stubLifecycle{appErr: service.ErrApplicationNotFound})
	otherCompany.do(t, http.MethodGet, path, "", uuid.New(), auth.RoleCompany).AssertStatus(t, http.StatusNotFound)

	missing := newHarness(&stubLifecycle{appErr: service.ErrApplicationNotFound})
	missing.do(t, http.MethodGet, path, "", uuid.New(), auth.RoleAdmin).AssertStatus(t, http.StatusNotFound)
}

func TestAdminMaintenance(t *testing.T) {
	h := newHarness(&stubLifecycle{reconciled: 3, expired: 2})
	admin := uuid.New()

	h.do(t, http.MethodPost, "/api/v1/admin/interviews/reconcile", "", uuid.New(), auth.RoleCandidate).
		AssertStatus(t, http.StatusForbidden)

	rr := h.do(t, http.MethodPost, "/api/v1/admin/interviews/reconcile", "", admin, auth.RoleAdmin)
	rr.AssertStatus(t, http.StatusOK)
	var repaired map[string]int
	decode(t, rr, &repaired)
	if repaired["repaired"] != 3 || h.stub.lastLimit != 100 {
		t.Errorf("Unexpected reconcile result %v (limit %d)", repaired, h.stub.lastLimit)
	}

	rr = h.do(t, http.MethodPost, "/api/v1/admin/interviews/expire-stale?olderThan=90m&limit=5", "", admin, auth.RoleAdmin)
	rr.AssertStatus(t, http.StatusOK)
	if h.stub.lastOlderThan != 90*time.Minute || h.stub.lastLimit != 5 {
		t.Errorf("Expected 90m/5, got %v/%d", h.stub.lastOlderThan, h.stub.lastLimit)
	}

	h.do(t, http.MethodPost, "/api/v1/admin/interviews/expire-stale", "", admin, auth.RoleAdmin)
	if h.stub.lastOlderThan != 4*time.Hour {
		t.Errorf("Expected configured max duration, got %v", h.stub.lastOlderThan)
	}

	h.do(t, http.MethodPost, "/api/v1/admin/interviews/expire-stale?olderThan=soon", "", admin, auth.RoleAdmin).
		AssertStatus(t, http.StatusBadRequest)
}

func TestAuditLogsFilterByInterview(t *testing.T) {
	h := newHarness(&stubLifecycle{})
	interviewID := uuid.NewString()

	rr := h.do(t, http.MethodGet, "/api/v1/admin/audit-logs", "", uuid.New(), auth.RoleAdmin)
	rr.AssertStatus(t, http.StatusOK)
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("Expected empty array, got %s", rr.Body.String())
	}

	h.do(t, http.MethodGet, "/api/v1/admin/audit-logs?interviewId="+interviewID, "", uuid.New(), auth.RoleAdmin).
		AssertStatus(t, http.StatusOK)
	if h.audit.resourceID != interviewID {
		t.Errorf("Expected filter on %s, got %q", interviewID, h.audit.resourceID)
	}
}

func TestHealth(t *testing.T) {
	h := newHarness(&stubLifecycle{})
	h.do(t, http.MethodGet, "/health", "", uuid.Nil).AssertStatus(t, http.StatusOK)

	unhealthy := handlers.NewHealthHandler(map[string]handlers.HealthChecker{
		"database": func(context.Context) error { return errors.New("down") },
	})
	rr := testutil.NewTestResponse()
	unhealthy.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	rr.AssertStatus(t, http.StatusServiceUnavailable)
}

func TestAdminTerminate(t *testing.T) {
	h := newHarness(&stubLifecycle{})
	path := "/api/v1/admin/interviews/" + uuid.NewString() + "/terminate"

	h.do(t, http.MethodPost, path, `{"reason":"abandoned"}`, uuid.New(), auth.RoleCandidate).
		AssertStatus(t, http.StatusForbidden)
	h.do(t, http.MethodPost, path, `{"reason":"abandoned"}`, uuid.New(), auth.RoleAdmin).
		AssertStatus(t, http.StatusOK)
	if len(h.stub.terminateCalls) != 1 || h.stub.terminateCalls[0] != models.ReasonAbandoned {
		t.Errorf("Unexpected terminate calls %v", h.stub.terminateCalls)
	}

	missing := newHarness(&stubLifecycle{terminateErr: service.ErrInterviewNotFound})
	missing.do(t, http.MethodPost, path, "", uuid.New(), auth.RoleAdmin).AssertStatus(t, http.StatusNotFound)
}
