package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mentorhub/interviews/internal/models"
)

// ApplicationRepository handles application database operations
type ApplicationRepository struct {
	db *sql.DB
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `id, job_id, candidate_id, interview_id, analysis_id, status, interview_score,
	interview_started_at, interview_completed_at, applied_at, updated_at`

func scanApplication(row rowScanner) (*models.ApplicationRecord, error) {
	var (
		app                    models.ApplicationRecord
		interviewID            uuid.NullUUID
		analysisID             uuid.NullUUID
		score                  sql.NullFloat64
		startedAt, completedAt sql.NullTime
	)

	err := row.Scan(
		&app.ID,
		&app.JobID,
		&app.CandidateID,
		&interviewID,
		&analysisID,
		&app.Status,
		&score,
		&startedAt,
		&completedAt,
		&app.AppliedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if interviewID.Valid {
		app.InterviewID = &interviewID.UUID
	}
	if analysisID.Valid {
		app.AnalysisID = &analysisID.UUID
	}
	if score.Valid {
		app.Evaluation.InterviewScore = &score.Float64
	}
	if startedAt.Valid {
		app.InterviewStartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		app.InterviewCompletedAt = &completedAt.Time
	}

	return &app, nil
}

// GetByJobAndCandidate retrieves the application of a candidate to a job
func (r *ApplicationRepository) GetByJobAndCandidate(ctx context.Context, jobID, candidateID uuid.UUID) (*models.ApplicationRecord, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE job_id = $1 AND candidate_id = $2`

	app, err := scanApplication(r.db.QueryRowContext(ctx, query, jobID, candidateID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return app, nil
}

// Create inserts an application
func (r *ApplicationRepository) Create(ctx context.Context, app *models.ApplicationRecord) error {
	if app.Status == "" {
		app.Status = models.ApplicationPending
	}

	query := `
		INSERT INTO applications (job_id, candidate_id, analysis_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, applied_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query, app.JobID, app.CandidateID, app.AnalysisID, app.Status).
		Scan(&app.ID, &app.AppliedAt, &app.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

// MarkInterviewStarted links a freshly started interview to the pair's application.
// Only a pending application moves to interview_pending; a completed one is left alone.
// Returns false when the pair has no application to update.
func (r *ApplicationRepository) MarkInterviewStarted(ctx context.Context, jobID, candidateID, interviewID uuid.UUID, startedAt time.Time) (bool, error) {
	query := `
		UPDATE applications
		SET interview_id = $3,
			interview_started_at = $4,
			status = CASE WHEN status = 'pending' THEN 'interview_pending' ELSE status END,
			updated_at = $4
		WHERE job_id = $1 AND candidate_id = $2 AND status <> 'interview_completed'
	`

	result, err := r.db.ExecContext(ctx, query, jobID, candidateID, interviewID, startedAt)
	if err != nil {
		return false, fmt.Errorf("failed to mark interview started: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows > 0, nil
}

// MarkInterviewCompleted writes a completed interview's result onto the pair's
// application, inserting the application if it does not exist. It runs on q so it
// can share the interview's completion transaction. Shortlisted and rejected
// applications keep their status. Repeating the call with the same values is a no-op.
func (r *ApplicationRepository) MarkInterviewCompleted(ctx context.Context, q Querier, jobID, candidateID, interviewID uuid.UUID, score float64, completedAt time.Time) error {
	if q == nil {
		q = r.db
	}

	query := `
		INSERT INTO applications (job_id, candidate_id, interview_id, status, interview_score, interview_completed_at)
		VALUES ($1, $2, $3, 'interview_completed', $4, $5)
		ON CONFLICT (job_id, candidate_id) DO UPDATE
		SET interview_id = EXCLUDED.interview_id,
			interview_score = EXCLUDED.interview_score,
			interview_completed_at = EXCLUDED.interview_completed_at,
			status = CASE
				WHEN applications.status IN ('shortlisted', 'rejected') THEN applications.status
				ELSE 'interview_completed'
			END,
			updated_at = CURRENT_TIMESTAMP
	`

	if _, err := q.ExecContext(ctx, query, jobID, candidateID, interviewID, score, completedAt); err != nil {
		return fmt.Errorf("failed to mark interview completed: %w", err)
	}

	return nil
}
