package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mentorhub/interviews/internal/config"
)

// AdminHandler exposes operator maintenance jobs
type AdminHandler struct {
	interviews InterviewLifecycle
	cfg        config.InterviewConfig
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(interviews InterviewLifecycle, cfg config.InterviewConfig) *AdminHandler {
	return &AdminHandler{interviews: interviews, cfg: cfg}
}

// Reconcile repairs applications of completed interviews
// @Summary Reconcile applications
// @Description Repairs applications whose completed interview result did not reach them
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum interviews to inspect"
// @Success 200 {object} map[string]int
// @Failure 403 {object} errorResponse "Forbidden - admin only"
// @Router /admin/interviews/reconcile [post]
func (h *AdminHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", h.cfg.ReconcileBatch, 1000)

	repaired, err := h.interviews.Reconcile(r.Context(), limit)
	if err != nil {
		slog.Error("Reconcile failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to reconcile applications")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int{"repaired": repaired})
}

// ExpireStale terminates interviews left open too long
// @Summary Expire stale interviews
// @Description Terminates open interviews older than olderThan as abandoned
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param olderThan query string false "Age threshold as a Go duration, e.g. 4h"
// @Param limit query int false "Maximum interviews to expire"
// @Success 200 {object} map[string]int
// @Failure 400 {object} errorResponse "Invalid duration"
// @Failure 403 {object} errorResponse "Forbidden - admin only"
// @Router /admin/interviews/expire-stale [post]
func (h *AdminHandler) ExpireStale(w http.ResponseWriter, r *http.Request) {
	olderThan := h.cfg.MaxDuration
	if v := r.URL.Query().Get("olderThan"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			respondWithError(w, http.StatusBadRequest, "olderThan must be a positive duration")
			return
		}
		olderThan = d
	}
	limit := queryInt(r, "limit", h.cfg.ReconcileBatch, 1000)

	expired, err := h.interviews.ExpireStale(r.Context(), olderThan, limit)
	if err != nil {
		slog.Error("Expiring stale interviews failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to expire interviews")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int{"expired": expired})
}

// Terminate ends any candidate's open interview
// @Summary Terminate an interview as operator
// @Description Unlike the candidate endpoint, errors are reported
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Interview ID"
// @Param request body TerminateRequest false "Termination reason"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} errorResponse "Interview not found"
// @Router /admin/interviews/{id}/terminate [post]
func (h *AdminHandler) Terminate(w http.ResponseWriter, r *http.Request) {
	interviewID, ok := pathUUID(w, r, "id", ErrMsgInvalidInterviewID)
	if !ok {
		return
	}

	var req TerminateRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := h.interviews.Terminate(r.Context(), interviewID, uuid.Nil, req.Reason); err != nil {
		status, code := serviceErrorStatus(err)
		if status == http.StatusInternalServerError {
			slog.Error("Operator terminate failed", "interview_id", interviewID, "error", err)
			respondWithErrorCode(w, status, code, ErrMsgInternal)
			return
		}
		respondWithErrorCode(w, status, code, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// queryInt reads a positive integer query parameter capped at max
func queryInt(r *http.Request, name string, def, max int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
