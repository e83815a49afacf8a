package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mentorhub/interviews/internal/auth"
	"github.com/mentorhub/interviews/internal/middleware"
)

// ApplicationHandler serves application reads
type ApplicationHandler struct {
	interviews InterviewLifecycle
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(interviews InterviewLifecycle) *ApplicationHandler {
	return &ApplicationHandler{interviews: interviews}
}

// GetApplication returns a candidate's application to a job
// @Summary Get an application
// @Description Company reviewers only see applications to their company's jobs. Candidates may read their own.
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param jobId path string true "Job ID"
// @Param candidateId path string true "Candidate ID"
// @Success 200 {object} models.ApplicationRecord
// @Failure 403 {object} errorResponse "Permission denied"
// @Failure 404 {object} errorResponse "Application not found"
// @Router /jobs/{jobId}/applications/{candidateId} [get]
func (h *ApplicationHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}
	jobID, ok := pathUUID(w, r, "jobId", ErrMsgInvalidJobID)
	if !ok {
		return
	}
	candidateID, ok := pathUUID(w, r, "candidateId", ErrMsgInvalidCandidateID)
	if !ok {
		return
	}

	var companyID uuid.UUID
	switch {
	case principal.HasRole(auth.RoleAdmin), principal.UserID == candidateID:
	case principal.HasRole(auth.RoleCompany) && principal.CompanyID != uuid.Nil:
		companyID = principal.CompanyID
	default:
		respondWithErrorCode(w, http.StatusForbidden, CodeForbidden, ErrMsgPermissionDenied)
		return
	}

	app, err := h.interviews.GetApplication(r.Context(), jobID, candidateID, companyID)
	if err != nil {
		status, code := serviceErrorStatus(err)
		if status == http.StatusInternalServerError {
			respondWithErrorCode(w, status, code, "Failed to retrieve application")
			return
		}
		respondWithErrorCode(w, status, code, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, app)
}
