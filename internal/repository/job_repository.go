package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mentorhub/interviews/internal/models"
)

// JobRepository reads job postings
type JobRepository struct {
	db *sql.DB
}

// NewJobRepository creates a new job repository
func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

// GetByID retrieves a job by ID
func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	query := `
		SELECT id, company_id, title, description, skills, seniority_level, interview_mode,
			focus_areas, question_count, company_name, company_logo_url, created_at, updated_at
		FROM jobs
		WHERE id = $1
	`

	job := &models.Job{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID,
		&job.CompanyID,
		&job.Title,
		&job.Description,
		pq.Array(&job.Skills),
		&job.SeniorityLevel,
		&job.InterviewMode,
		pq.Array(&job.FocusAreas),
		&job.QuestionCount,
		&job.CompanyName,
		&job.CompanyLogoURL,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return job, nil
}

// Create inserts a job. Jobs are owned by the postings service; this exists for seeding.
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.QuestionCount == 0 {
		job.QuestionCount = 5
	}
	if job.InterviewMode == "" {
		job.InterviewMode = models.InterviewModeNone
	}

	query := `
		INSERT INTO jobs (id, company_id, title, description, skills, seniority_level, interview_mode,
			focus_areas, question_count, company_name, company_logo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		job.ID,
		job.CompanyID,
		job.Title,
		job.Description,
		pq.Array(nonNil(job.Skills)),
		job.SeniorityLevel,
		job.InterviewMode,
		pq.Array(nonNil(job.FocusAreas)),
		job.QuestionCount,
		job.CompanyName,
		job.CompanyLogoURL,
	).Scan(&job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
