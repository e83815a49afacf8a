package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mentorhub/interviews/internal/auth"
	"github.com/mentorhub/interviews/internal/middleware"
	"github.com/mentorhub/interviews/internal/models"
	"github.com/mentorhub/interviews/internal/service"
	"github.com/mentorhub/interviews/pkg/validator"
)

// InterviewLifecycle is the interview session API served over HTTP
type InterviewLifecycle interface {
	StartOrResume(ctx context.Context, jobID, candidateID uuid.UUID) (*service.StartResult, error)
	Get(ctx context.Context, interviewID, candidateID uuid.UUID) (*models.InterviewRecord, error)
	GetApplication(ctx context.Context, jobID, candidateID, companyID uuid.UUID) (*models.ApplicationRecord, error)
	RecordAnswer(ctx context.Context, interviewID, candidateID uuid.UUID, answer models.QuestionAnswer) (*models.InterviewRecord, error)
	MarkVideoProcessing(ctx context.Context, interviewID, candidateID uuid.UUID) (*models.InterviewRecord, error)
	Finalize(ctx context.Context, interviewID, candidateID uuid.UUID, input service.FinalizeInput) (*models.InterviewRecord, error)
	Terminate(ctx context.Context, interviewID, candidateID uuid.UUID, reason string) error
	Reconcile(ctx context.Context, limit int) (int, error)
	ExpireStale(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

// InterviewHandler handles candidate interview session requests
type InterviewHandler struct {
	interviews InterviewLifecycle
}

// NewInterviewHandler creates a new interview handler
func NewInterviewHandler(interviews InterviewLifecycle) *InterviewHandler {
	return &InterviewHandler{interviews: interviews}
}

// StartRequest is the body of a start request
type StartRequest struct {
	JobID string `json:"jobId"`
}

// TerminateRequest is the body of a terminate request
type TerminateRequest struct {
	Reason string `json:"reason"`
}

// CompleteResponse reports the outcome of finalizing an interview
type CompleteResponse struct {
	OK        bool                    `json:"ok"`
	Interview *models.InterviewRecord `json:"interview,omitempty"`
	Reason    string                  `json:"reason,omitempty"`
}

// Start starts a new interview or resumes the caller's open one
// @Summary Start or resume an AI interview
// @Description Creates an interview for the job or returns the candidate's existing open interview
// @Tags Interviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body StartRequest true "Job to interview for"
// @Success 201 {object} service.StartResult "Interview created"
// @Success 200 {object} service.StartResult "Existing interview resumed"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 404 {object} errorResponse "Job not found"
// @Failure 409 {object} errorResponse "Interview already completed"
// @Failure 422 {object} errorResponse "Job is not configured for AI interviews"
// @Router /interviews/start [post]
func (h *InterviewHandler) Start(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	var req StartRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}
	jobID, err := validator.ParseUUID("jobId", req.JobID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidJobID)
		return
	}

	result, err := h.interviews.StartOrResume(r.Context(), jobID, candidateID)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	status := http.StatusCreated
	if result.Resumed {
		status = http.StatusOK
	}
	respondWithJSON(w, status, result)
}

// Get returns one interview
// @Summary Get an interview
// @Description Returns the interview record. Another candidate's interview reads as not found.
// @Tags Interviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Interview ID"
// @Success 200 {object} models.InterviewRecord
// @Failure 404 {object} errorResponse "Interview not found"
// @Router /interviews/{id} [get]
func (h *InterviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}
	interviewID, ok := pathUUID(w, r, "id", ErrMsgInvalidInterviewID)
	if !ok {
		return
	}

	owner := principal.UserID
	if principal.HasRole(auth.RoleAdmin) {
		owner = uuid.Nil
	}

	rec, err := h.interviews.Get(r.Context(), interviewID, owner)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, rec)
}

// RecordAnswer appends an answered question
// @Summary Record an answer
// @Tags Interviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Interview ID"
// @Param request body models.QuestionAnswer true "Question and answer"
// @Success 200 {object} models.InterviewRecord
// @Failure 400 {object} errorResponse "Invalid payload"
// @Failure 409 {object} errorResponse "Interview is closed"
// @Router /interviews/{id}/answers [post]
func (h *InterviewHandler) RecordAnswer(w http.ResponseWriter, r *http.Request) {
	candidateID, interviewID, ok := ownerRequest(w, r)
	if !ok {
		return
	}

	var answer models.QuestionAnswer
	if err := decodeJSON(w, r, &answer, false); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	rec, err := h.interviews.RecordAnswer(r.Context(), interviewID, candidateID, answer)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, rec)
}

// MarkVideoProcessing flags that the recording is being processed
// @Summary Mark video processing
// @Tags Interviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Interview ID"
// @Success 200 {object} models.InterviewRecord
// @Failure 409 {object} errorResponse "Interview is closed"
// @Router /interviews/{id}/video-processing [post]
func (h *InterviewHandler) MarkVideoProcessing(w http.ResponseWriter, r *http.Request) {
	candidateID, interviewID, ok := ownerRequest(w, r)
	if !ok {
		return
	}

	rec, err := h.interviews.MarkVideoProcessing(r.Context(), interviewID, candidateID)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, rec)
}

// Complete finalizes an interview with its scores
// @Summary Complete an interview
// @Description Stores the scored result and marks the application interview_completed. Completing twice returns the stored interview.
// @Tags Interviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Interview ID"
// @Param request body service.FinalizeInput true "Scored result"
// @Success 200 {object} CompleteResponse
// @Failure 400 {object} CompleteResponse "Invalid payload"
// @Failure 403 {object} CompleteResponse "Interview belongs to another candidate"
// @Failure 404 {object} CompleteResponse "Interview not found"
// @Failure 409 {object} CompleteResponse "Interview was terminated"
// @Router /interviews/{id}/complete [post]
func (h *InterviewHandler) Complete(w http.ResponseWriter, r *http.Request) {
	candidateID, interviewID, ok := ownerRequest(w, r)
	if !ok {
		return
	}

	var input service.FinalizeInput
	if err := decodeJSON(w, r, &input, false); err != nil {
		respondWithJSON(w, http.StatusBadRequest, CompleteResponse{Reason: ErrMsgInvalidRequestBody})
		return
	}
	if err := validator.ValidateStruct(&input); err != nil {
		respondWithJSON(w, http.StatusBadRequest, CompleteResponse{Reason: err.Error()})
		return
	}

	rec, err := h.interviews.Finalize(r.Context(), interviewID, candidateID, input)
	if err != nil {
		status, _ := serviceErrorStatus(err)
		reason := err.Error()
		if status == http.StatusInternalServerError {
			slog.Error("Failed to finalize interview", "interview_id", interviewID, "error", err)
			reason = ErrMsgInternal
		}
		respondWithJSON(w, status, CompleteResponse{Reason: reason})
		return
	}

	respondWithJSON(w, http.StatusOK, CompleteResponse{OK: true, Interview: rec})
}

// Terminate ends an interview early
// @Summary Terminate an interview
// @Description Best effort. Always answers ok so a closing browser tab is never blocked; failures are logged.
// @Tags Interviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Interview ID"
// @Param request body TerminateRequest false "Termination reason"
// @Success 200 {object} map[string]bool
// @Router /interviews/{id}/terminate [post]
func (h *InterviewHandler) Terminate(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}
	interviewID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		slog.Warn("Terminate with invalid interview id", "id", r.PathValue("id"), "candidate_id", candidateID)
		respondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	var req TerminateRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		slog.Warn("Unreadable terminate body", "interview_id", interviewID, "error", err)
	}

	if err := h.interviews.Terminate(r.Context(), interviewID, candidateID, req.Reason); err != nil {
		slog.Warn("Terminate failed",
			"interview_id", interviewID,
			"candidate_id", candidateID,
			"reason", req.Reason,
			"error", err,
		)
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *InterviewHandler) respondWithServiceError(w http.ResponseWriter, err error) {
	status, code := serviceErrorStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("Interview request failed", "error", err)
		respondWithErrorCode(w, status, code, ErrMsgInternal)
		return
	}
	respondWithErrorCode(w, status, code, err.Error())
}

// serviceErrorStatus maps lifecycle errors to an HTTP status and error code
func serviceErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrJobNotFound):
		return http.StatusNotFound, CodeJobNotFound
	case errors.Is(err, service.ErrNotConfiguredForAI):
		return http.StatusUnprocessableEntity, CodeNotConfiguredForAI
	case errors.Is(err, service.ErrAlreadyCompleted):
		return http.StatusConflict, CodeAlreadyCompleted
	case errors.Is(err, service.ErrInvalidCandidate):
		return http.StatusBadRequest, CodeInvalidCandidate
	case errors.Is(err, service.ErrInterviewNotFound):
		return http.StatusNotFound, CodeInterviewNotFound
	case errors.Is(err, service.ErrApplicationNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, CodeForbidden
	case errors.Is(err, service.ErrInterviewTerminated):
		return http.StatusConflict, CodeTerminated
	case errors.Is(err, service.ErrInterviewClosed):
		return http.StatusConflict, CodeInterviewClosed
	case errors.Is(err, service.ErrInvalidPayload):
		return http.StatusBadRequest, CodeInvalidPayload
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// ownerRequest extracts the authenticated candidate and the interview path id
func ownerRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	candidateID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return uuid.Nil, uuid.Nil, false
	}
	interviewID, ok := pathUUID(w, r, "id", ErrMsgInvalidInterviewID)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return candidateID, interviewID, true
}

func pathUUID(w http.ResponseWriter, r *http.Request, name, message string) (uuid.UUID, bool) {
	id, err := validator.ParseUUID(name, r.PathValue(name))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, message)
		return uuid.Nil, false
	}
	return id, true
}
