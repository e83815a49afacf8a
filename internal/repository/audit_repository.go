package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mentorhub/interviews/internal/models"
)

// AuditRepository handles audit log database operations
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create creates a new audit log entry
func (r *AuditRepository) Create(ctx context.Context, log *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (actor_id, action, resource, resource_id, details, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}

	err := r.db.QueryRowContext(ctx,
		query,
		log.ActorID,
		log.Action,
		log.Resource,
		log.ResourceID,
		log.Details,
		log.IPAddress,
		log.UserAgent,
		log.CreatedAt,
	).Scan(&log.ID)

	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	return nil
}

// GetByResource retrieves audit logs for one resource, newest first
func (r *AuditRepository) GetByResource(ctx context.Context, resource, resourceID string, limit, offset int) ([]models.AuditLog, error) {
	query := `
		SELECT id, actor_id, action, resource, resource_id, details, ip_address, user_agent, created_at
		FROM audit_logs
		WHERE resource = $1 AND resource_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`

	return r.query(ctx, query, resource, resourceID, limit, offset)
}

// GetAll retrieves all audit logs with pagination
func (r *AuditRepository) GetAll(ctx context.Context, limit, offset int) ([]models.AuditLog, error) {
	query := `
		SELECT id, actor_id, action, resource, resource_id, details, ip_address, user_agent, created_at
		FROM audit_logs
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	return r.query(ctx, query, limit, offset)
}

func (r *AuditRepository) query(ctx context.Context, query string, args ...any) ([]models.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit logs: %w", err)
	}
	defer closeRows(rows)

	var logs []models.AuditLog
	for rows.Next() {
		var log models.AuditLog
		if err := rows.Scan(
			&log.ID,
			&log.ActorID,
			&log.Action,
			&log.Resource,
			&log.ResourceID,
			&log.Details,
			&log.IPAddress,
			&log.UserAgent,
			&log.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		logs = append(logs, log)
	}

	return logs, rows.Err()
}
