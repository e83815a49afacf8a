package handlers

import (
	"context"
	"net/http"

	"github.com/mentorhub/interviews/internal/models"
)

// AuditLogReader lists audit logs
type AuditLogReader interface {
	GetAll(ctx context.Context, limit, offset int) ([]models.AuditLog, error)
	GetByResource(ctx context.Context, resource, resourceID string, limit, offset int) ([]models.AuditLog, error)
}

// AuditHandler handles audit log requests
type AuditHandler struct {
	auditRepo AuditLogReader
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditRepo AuditLogReader) *AuditHandler {
	return &AuditHandler{
		auditRepo: auditRepo,
	}
}

// ListAuditLogs lists audit logs with pagination (admin only)
// @Summary List audit logs
// @Description Get a paginated list of audit logs, optionally for one interview (admin only)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(50)
// @Param interviewId query string false "Only entries for this interview"
// @Success 200 {array} models.AuditLog "List of audit logs"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Forbidden - admin only"
// @Router /admin/audit-logs [get]
func (h *AuditHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1, 1<<20)
	limit := queryInt(r, "limit", 50, 100)
	offset := (page - 1) * limit

	var (
		logs []models.AuditLog
		err  error
	)
	if interviewID := r.URL.Query().Get("interviewId"); interviewID != "" {
		logs, err = h.auditRepo.GetByResource(r.Context(), "interview", interviewID, limit, offset)
	} else {
		logs, err = h.auditRepo.GetAll(r.Context(), limit, offset)
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve audit logs")
		return
	}

	respondWithJSON(w, http.StatusOK, logs)
}
