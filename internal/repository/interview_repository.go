package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mentorhub/interviews/internal/database"
	"github.com/mentorhub/interviews/internal/models"
)

// InterviewRepository handles interview database operations
type InterviewRepository struct {
	db     *sql.DB
	sealer TranscriptSealer
}

// NewInterviewRepository creates a new interview repository.
// A nil sealer stores transcripts as plain JSON.
func NewInterviewRepository(db *sql.DB, sealer TranscriptSealer) *InterviewRepository {
	if sealer == nil {
		sealer = PlainSealer{}
	}
	return &InterviewRepository{db: db, sealer: sealer}
}

// DB returns the underlying connection pool
func (r *InterviewRepository) DB() *sql.DB {
	return r.db
}

const interviewColumns = `i.id, i.job_id, i.company_id, i.candidate_id, i.status, i.questions, i.job_context,
	i.overall_score, i.technical_score, i.communication_score, i.confidence_score,
	i.strengths, i.improvements, i.feedback, i.duration_seconds, i.termination_reason,
	i.started_at, i.completed_at, i.terminated_at, i.created_at, i.updated_at`

func (r *InterviewRepository) scanInterview(ctx context.Context, row rowScanner) (*models.InterviewRecord, error) {
	var (
		rec                                  models.InterviewRecord
		questions                            string
		jobContext                           []byte
		overall, technical, comm, confidence sql.NullFloat64
		duration                             sql.NullInt64
		reason                               sql.NullString
		completedAt, terminatedAt            sql.NullTime
	)

	err := row.Scan(
		&rec.ID,
		&rec.JobID,
		&rec.CompanyID,
		&rec.CandidateID,
		&rec.Status,
		&questions,
		&jobContext,
		&overall,
		&technical,
		&comm,
		&confidence,
		pq.Array(&rec.Strengths),
		pq.Array(&rec.Improvements),
		&rec.Feedback,
		&duration,
		&reason,
		&rec.StartedAt,
		&completedAt,
		&terminatedAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Questions, err = r.openQuestions(ctx, questions)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(jobContext, &rec.JobContext); err != nil {
		return nil, fmt.Errorf("failed to decode job context: %w", err)
	}

	if overall.Valid {
		rec.Scores = &models.Scores{
			OverallScore:       overall.Float64,
			TechnicalScore:     technical.Float64,
			CommunicationScore: comm.Float64,
			ConfidenceScore:    confidence.Float64,
		}
	}
	if duration.Valid {
		d := int(duration.Int64)
		rec.DurationSeconds = &d
	}
	if reason.Valid {
		rec.TerminationReason = &reason.String
	}
	if completedAt.Valid {
		rec.CompletedAt = &completedAt.Time
	}
	if terminatedAt.Valid {
		rec.TerminatedAt = &terminatedAt.Time
	}

	return &rec, nil
}

func (r *InterviewRepository) sealQuestions(ctx context.Context, questions []models.QuestionAnswer) (string, error) {
	if questions == nil {
		questions = []models.QuestionAnswer{}
	}
	raw, err := json.Marshal(questions)
	if err != nil {
		return "", fmt.Errorf("failed to encode questions: %w", err)
	}
	sealed, err := r.sealer.Seal(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("failed to seal questions: %w", err)
	}
	return sealed, nil
}

func (r *InterviewRepository) openQuestions(ctx context.Context, stored string) ([]models.QuestionAnswer, error) {
	raw, err := r.sealer.Open(ctx, stored)
	if err != nil {
		return nil, fmt.Errorf("failed to open questions: %w", err)
	}
	questions := []models.QuestionAnswer{}
	if len(raw) == 0 {
		return questions, nil
	}
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}
	return questions, nil
}

// Create inserts a started interview. It returns ErrActiveInterviewExists when the
// pair already holds a non-terminated interview.
func (r *InterviewRepository) Create(ctx context.Context, rec *models.InterviewRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Status == "" {
		rec.Status = models.InterviewStarted
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now().UTC()
	}
	if rec.Questions == nil {
		rec.Questions = []models.QuestionAnswer{}
	}

	questions, err := r.sealQuestions(ctx, rec.Questions)
	if err != nil {
		return err
	}
	jobContext, err := json.Marshal(rec.JobContext)
	if err != nil {
		return fmt.Errorf("failed to encode job context: %w", err)
	}

	query := `
		INSERT INTO interviews (id, job_id, company_id, candidate_id, status, questions, job_context, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err = r.db.QueryRowContext(ctx, query,
		rec.ID,
		rec.JobID,
		rec.CompanyID,
		rec.CandidateID,
		rec.Status,
		questions,
		jobContext,
		rec.StartedAt,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if isUniqueViolation(err, activePairConstraint) {
		return ErrActiveInterviewExists
	}
	if err != nil {
		return fmt.Errorf("failed to create interview: %w", err)
	}

	return nil
}

// GetByID retrieves an interview by ID
func (r *InterviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.InterviewRecord, error) {
	query := `SELECT ` + interviewColumns + ` FROM interviews i WHERE i.id = $1`

	rec, err := r.scanInterview(ctx, r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}

	return rec, nil
}

// FindActiveByPair returns the latest non-terminated interview for a job and candidate
func (r *InterviewRepository) FindActiveByPair(ctx context.Context, jobID, candidateID uuid.UUID) (*models.InterviewRecord, error) {
	query := `
		SELECT ` + interviewColumns + `
		FROM interviews i
		WHERE i.job_id = $1 AND i.candidate_id = $2 AND i.status <> 'terminated'
		ORDER BY i.started_at DESC
		LIMIT 1
	`

	rec, err := r.scanInterview(ctx, r.db.QueryRowContext(ctx, query, jobID, candidateID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active interview: %w", err)
	}

	return rec, nil
}

// AppendAnswer appends one question and answer to an open interview
func (r *InterviewRepository) AppendAnswer(ctx context.Context, id uuid.UUID, answer models.QuestionAnswer) (*models.InterviewRecord, error) {
	var rec *models.InterviewRecord

	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `SELECT ` + interviewColumns + ` FROM interviews i WHERE i.id = $1 FOR UPDATE`

		current, err := r.scanInterview(ctx, tx.QueryRowContext(ctx, query, id))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock interview: %w", err)
		}
		if !current.Status.IsOpen() {
			return ErrInterviewNotOpen
		}

		current.Questions = append(current.Questions, answer)
		questions, err := r.sealQuestions(ctx, current.Questions)
		if err != nil {
			return err
		}

		err = tx.QueryRowContext(ctx,
			`UPDATE interviews SET questions = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1 RETURNING updated_at`,
			id, questions,
		).Scan(&current.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to append answer: %w", err)
		}

		rec = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// MarkVideoProcessing moves an open interview to video_processing.
// Returns false when the interview is completed, terminated or missing.
func (r *InterviewRepository) MarkVideoProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE interviews
		SET status = 'video_processing', updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status IN ('started', 'video_processing')
	`

	return execAffected(ctx, r.db, "mark video processing", query, id)
}

// Complete writes the final result of an open interview on q.
// Returns false when the interview was no longer open.
func (r *InterviewRepository) Complete(ctx context.Context, q Querier, id uuid.UUID, result models.InterviewResult) (bool, error) {
	if q == nil {
		q = r.db
	}

	questions, err := r.sealQuestions(ctx, result.Questions)
	if err != nil {
		return false, err
	}

	query := `
		UPDATE interviews
		SET status = 'completed',
			questions = $2,
			overall_score = $3,
			technical_score = $4,
			communication_score = $5,
			confidence_score = $6,
			strengths = $7,
			improvements = $8,
			feedback = $9,
			duration_seconds = $10,
			completed_at = $11,
			updated_at = $11
		WHERE id = $1 AND status IN ('started', 'video_processing')
	`

	return execAffected(ctx, q, "complete interview", query,
		id,
		questions,
		result.Scores.OverallScore,
		result.Scores.TechnicalScore,
		result.Scores.CommunicationScore,
		result.Scores.ConfidenceScore,
		pq.Array(nonNil(result.Strengths)),
		pq.Array(nonNil(result.Improvements)),
		result.Feedback,
		result.DurationSeconds,
		result.CompletedAt,
	)
}

// Terminate marks an open interview terminated.
// Returns false when the interview was no longer open.
func (r *InterviewRepository) Terminate(ctx context.Context, id uuid.UUID, reason string, at time.Time) (bool, error) {
	query := `
		UPDATE interviews
		SET status = 'terminated', termination_reason = $2, terminated_at = $3, updated_at = $3
		WHERE id = $1 AND status IN ('started', 'video_processing')
	`

	return execAffected(ctx, r.db, "terminate interview", query, id, reason, at)
}

// ListLaggingCompleted returns completed interviews whose application does not
// yet reflect the result, oldest completion first.
func (r *InterviewRepository) ListLaggingCompleted(ctx context.Context, limit int) ([]models.InterviewRecord, error) {
	query := `
		SELECT ` + interviewColumns + `
		FROM interviews i
		LEFT JOIN applications a ON a.job_id = i.job_id AND a.candidate_id = i.candidate_id
		WHERE i.status = 'completed'
			AND (a.id IS NULL
				OR a.interview_id IS DISTINCT FROM i.id
				OR a.interview_score IS DISTINCT FROM i.overall_score
				OR a.status NOT IN ('interview_completed', 'shortlisted', 'rejected'))
		ORDER BY i.completed_at
		LIMIT $1
	`

	return r.list(ctx, "list lagging interviews", query, limit)
}

// ListStale returns open interviews started before the cutoff
func (r *InterviewRepository) ListStale(ctx context.Context, startedBefore time.Time, limit int) ([]models.InterviewRecord, error) {
	query := `
		SELECT ` + interviewColumns + `
		FROM interviews i
		WHERE i.status IN ('started', 'video_processing') AND i.started_at < $1
		ORDER BY i.started_at
		LIMIT $2
	`

	return r.list(ctx, "list stale interviews", query, startedBefore, limit)
}

func (r *InterviewRepository) list(ctx context.Context, op, query string, args ...any) ([]models.InterviewRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	defer closeRows(rows)

	var records []models.InterviewRecord
	for rows.Next() {
		rec, err := r.scanInterview(ctx, rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interview: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}

	return records, nil
}

func execAffected(ctx context.Context, q Querier, op, query string, args ...any) (bool, error) {
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to %s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows > 0, nil
}
