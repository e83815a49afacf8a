package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mentorhub/interviews/internal/models"
)

// AuditStore persists audit log entries
type AuditStore interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

type clientInfoKey struct{}

type clientInfo struct {
	ip        string
	userAgent string
}

// WithClientInfo attaches the caller's address and user agent for audit entries
func WithClientInfo(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, clientInfoKey{}, clientInfo{ip: ip, userAgent: userAgent})
}

// AuditService handles audit logging
type AuditService struct {
	auditRepo AuditStore
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo AuditStore) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
	}
}

// Log creates an audit log entry. Failures are logged and never fail the caller.
// A nil actor records a system action.
func (s *AuditService) Log(ctx context.Context, actor *uuid.UUID, action, resource, resourceID, details string) {
	if s == nil || s.auditRepo == nil {
		return
	}

	entry := &models.AuditLog{
		ActorID:    actor,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Details:    details,
	}
	if info, ok := ctx.Value(clientInfoKey{}).(clientInfo); ok {
		entry.IPAddress = info.ip
		entry.UserAgent = info.userAgent
	}

	if err := s.auditRepo.Create(ctx, entry); err != nil {
		slog.Error("Failed to write audit log", "action", action, "resource_id", resourceID, "error", err)
	}
}
