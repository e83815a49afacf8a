package handlers

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/mentorhub/interviews/internal/auth"
	"github.com/mentorhub/interviews/internal/middleware"
)

// Handlers groups the HTTP handlers registered by RegisterRoutes
type Handlers struct {
	Interview   *InterviewHandler
	Application *ApplicationHandler
	Admin       *AdminHandler
	Audit       *AuditHandler
	Health      *HealthHandler
}

// RegisterRoutes mounts all API routes on mux
func RegisterRoutes(mux *http.ServeMux, h Handlers, authMw *middleware.AuthMiddleware) {
	candidate := func(fn http.HandlerFunc) http.Handler {
		return authMw.Authenticate(middleware.RequireRole(auth.RoleCandidate)(fn))
	}
	authenticated := func(fn http.HandlerFunc) http.Handler {
		return authMw.Authenticate(fn)
	}
	admin := func(fn http.HandlerFunc) http.Handler {
		return authMw.Authenticate(middleware.RequireRole(auth.RoleAdmin)(fn))
	}

	mux.HandleFunc("GET /health", h.Health.Health)
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Candidate interview session
	mux.Handle("POST "+APIBasePath+"/interviews/start", candidate(h.Interview.Start))
	mux.Handle("GET "+APIBasePath+"/interviews/{id}", authenticated(h.Interview.Get))
	mux.Handle("POST "+APIBasePath+"/interviews/{id}/answers", candidate(h.Interview.RecordAnswer))
	mux.Handle("POST "+APIBasePath+"/interviews/{id}/video-processing", candidate(h.Interview.MarkVideoProcessing))
	mux.Handle("POST "+APIBasePath+"/interviews/{id}/complete", candidate(h.Interview.Complete))
	mux.Handle("POST "+APIBasePath+"/interviews/{id}/terminate", candidate(h.Interview.Terminate))

	// Applications
	mux.Handle("GET "+APIBasePath+"/jobs/{jobId}/applications/{candidateId}", authenticated(h.Application.GetApplication))

	// Admin
	mux.Handle("POST "+APIBasePath+"/admin/interviews/reconcile", admin(h.Admin.Reconcile))
	mux.Handle("POST "+APIBasePath+"/admin/interviews/expire-stale", admin(h.Admin.ExpireStale))
	mux.Handle("POST "+APIBasePath+"/admin/interviews/{id}/terminate", admin(h.Admin.Terminate))
	mux.Handle("GET "+APIBasePath+"/admin/audit-logs", admin(h.Audit.ListAuditLogs))
}
