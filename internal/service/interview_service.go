package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/mentorhub/interviews/internal/events"
	"github.com/mentorhub/interviews/internal/models"
	"github.com/mentorhub/interviews/internal/repository"
	"github.com/mentorhub/interviews/pkg/validator"
)

var (
	ErrJobNotFound         = errors.New("job not found")
	ErrNotConfiguredForAI  = errors.New("job is not configured for AI interviews")
	ErrAlreadyCompleted    = errors.New("interview already completed")
	ErrInterviewNotFound   = errors.New("interview not found")
	ErrInterviewTerminated = errors.New("interview was terminated")
	ErrInterviewClosed     = errors.New("interview no longer accepts changes")
	ErrInvalidCandidate    = errors.New("a valid candidate id is required")
	ErrForbidden           = errors.New("interview belongs to another candidate")
	ErrInvalidPayload      = errors.New("invalid payload")
	ErrApplicationNotFound = errors.New("application not found")
)

const auditResource = "interview"

// startTimeout bounds a collapsed StartOrResume call
const startTimeout = 30 * time.Second

// JobStore reads jobs
type JobStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

// ApplicationStore reads and updates applications
type ApplicationStore interface {
	GetByJobAndCandidate(ctx context.Context, jobID, candidateID uuid.UUID) (*models.ApplicationRecord, error)
	MarkInterviewStarted(ctx context.Context, jobID, candidateID, interviewID uuid.UUID, startedAt time.Time) (bool, error)
	MarkInterviewCompleted(ctx context.Context, q repository.Querier, jobID, candidateID, interviewID uuid.UUID, score float64, completedAt time.Time) error
}

// InterviewStore persists interviews
type InterviewStore interface {
	Create(ctx context.Context, rec *models.InterviewRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.InterviewRecord, error)
	FindActiveByPair(ctx context.Context, jobID, candidateID uuid.UUID) (*models.InterviewRecord, error)
	AppendAnswer(ctx context.Context, id uuid.UUID, answer models.QuestionAnswer) (*models.InterviewRecord, error)
	MarkVideoProcessing(ctx context.Context, id uuid.UUID) (bool, error)
	Complete(ctx context.Context, q repository.Querier, id uuid.UUID, result models.InterviewResult) (bool, error)
	Terminate(ctx context.Context, id uuid.UUID, reason string, at time.Time) (bool, error)
	ListLaggingCompleted(ctx context.Context, limit int) ([]models.InterviewRecord, error)
	ListStale(ctx context.Context, startedBefore time.Time, limit int) ([]models.InterviewRecord, error)
}

// Transactor runs a function inside one storage transaction
type Transactor interface {
	WithinTx(ctx context.Context, fn func(q repository.Querier) error) error
}

// StartResult is returned by StartOrResume
type StartResult struct {
	InterviewID uuid.UUID         `json:"interviewId"`
	JobContext  models.JobContext `json:"jobContext"`
	Resumed     bool              `json:"resumed"`
}

// FinalizeInput is the scored result of an interview
type FinalizeInput struct {
	Scores       *ScoresInput            `json:"scores" validate:"required"`
	Strengths    []string                `json:"strengths" validate:"max=50"`
	Improvements []string                `json:"improvements" validate:"max=50"`
	Duration     float64                 `json:"duration" validate:"gte=0,lte=86400"`
	Questions    []models.QuestionAnswer `json:"questions" validate:"max=100,dive"`
	Feedback     string                  `json:"feedback"`
}

// ScoresInput are submitted scores. A missing score is rejected rather than
// read as zero.
type ScoresInput struct {
	OverallScore       *float64 `json:"overallScore" validate:"required,gte=0,lte=100"`
	TechnicalScore     *float64 `json:"technicalScore" validate:"required,gte=0,lte=100"`
	CommunicationScore *float64 `json:"communicationScore" validate:"required,gte=0,lte=100"`
	ConfidenceScore    *float64 `json:"confidenceScore" validate:"required,gte=0,lte=100"`
}

// NewScoresInput builds a complete ScoresInput
func NewScoresInput(overall, technical, communication, confidence float64) *ScoresInput {
	return &ScoresInput{
		OverallScore:       &overall,
		TechnicalScore:     &technical,
		CommunicationScore: &communication,
		ConfidenceScore:    &confidence,
	}
}

// scores must only be called after validation
func (in *ScoresInput) scores() models.Scores {
	return models.Scores{
		OverallScore:       *in.OverallScore,
		TechnicalScore:     *in.TechnicalScore,
		CommunicationScore: *in.CommunicationScore,
		ConfidenceScore:    *in.ConfidenceScore,
	}
}

// Option configures an InterviewService
type Option func(*InterviewService)

// WithClock replaces the wall clock
func WithClock(now func() time.Time) Option {
	return func(s *InterviewService) {
		s.now = now
	}
}

// WithPublisher sets the lifecycle event publisher
func WithPublisher(p events.Publisher) Option {
	return func(s *InterviewService) {
		if p != nil {
			s.publisher = p
		}
	}
}

// InterviewService owns the interview session lifecycle
type InterviewService struct {
	jobs         JobStore
	applications ApplicationStore
	interviews   InterviewStore
	tx           Transactor
	audit        *AuditService
	publisher    events.Publisher
	now          func() time.Time

	starts singleflight.Group
}

// NewInterviewService creates a new interview service
func NewInterviewService(
	jobs JobStore,
	applications ApplicationStore,
	interviews InterviewStore,
	tx Transactor,
	audit *AuditService,
	opts ...Option,
) *InterviewService {
	s := &InterviewService{
		jobs:         jobs,
		applications: applications,
		interviews:   interviews,
		tx:           tx,
		audit:        audit,
		publisher:    events.NopPublisher{},
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartOrResume returns the candidate's open interview for the job or starts a new one.
// Concurrent calls for the same pair yield the same interview.
func (s *InterviewService) StartOrResume(ctx context.Context, jobID, candidateID uuid.UUID) (*StartResult, error) {
	if candidateID == uuid.Nil {
		return nil, ErrInvalidCandidate
	}
	if jobID == uuid.Nil {
		return nil, ErrJobNotFound
	}

	key := jobID.String() + "/" + candidateID.String()
	ch := s.starts.DoChan(key, func() (any, error) {
		// Shared by every caller for the pair, so it outlives any one of them
		sharedCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), startTimeout)
		defer cancel()
		return s.startOrResume(sharedCtx, jobID, candidateID)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		result := *res.Val.(*StartResult)
		return &result, nil
	}
}

func (s *InterviewService) startOrResume(ctx context.Context, jobID, candidateID uuid.UUID) (*StartResult, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	if job.InterviewMode != models.InterviewModeAI {
		return nil, ErrNotConfiguredForAI
	}

	existing, err := s.interviews.FindActiveByPair(ctx, jobID, candidateID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return resumeResult(existing)
	}

	rec := &models.InterviewRecord{
		ID:          uuid.New(),
		JobID:       job.ID,
		CompanyID:   job.CompanyID,
		CandidateID: candidateID,
		Status:      models.InterviewStarted,
		Questions:   []models.QuestionAnswer{},
		JobContext:  models.NewJobContext(job),
		StartedAt:   s.now(),
	}

	err = s.interviews.Create(ctx, rec)
	if errors.Is(err, repository.ErrActiveInterviewExists) {
		// Another process won the race; hand out its interview
		winner, findErr := s.interviews.FindActiveByPair(ctx, jobID, candidateID)
		if findErr != nil {
			return nil, findErr
		}
		if winner == nil {
			return nil, fmt.Errorf("active interview vanished after conflict: %w", err)
		}
		slog.Info("Concurrent interview start resolved", "interview_id", winner.ID, "job_id", jobID, "candidate_id", candidateID)
		return resumeResult(winner)
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.applications.MarkInterviewStarted(ctx, jobID, candidateID, rec.ID, rec.StartedAt); err != nil {
		slog.Warn("Failed to mark application interview started", "interview_id", rec.ID, "error", err)
	}

	slog.Info("Interview started", "interview_id", rec.ID, "job_id", jobID, "candidate_id", candidateID)
	s.publish(ctx, events.Event{
		Type:        events.InterviewStarted,
		InterviewID: rec.ID,
		JobID:       rec.JobID,
		CandidateID: rec.CandidateID,
	})
	s.audit.Log(ctx, &candidateID, events.InterviewStarted, auditResource, rec.ID.String(),
		fmt.Sprintf("Started AI interview for job %s", jobID))

	return &StartResult{InterviewID: rec.ID, JobContext: rec.JobContext}, nil
}

func resumeResult(rec *models.InterviewRecord) (*StartResult, error) {
	switch rec.Status {
	case models.InterviewCompleted:
		return nil, ErrAlreadyCompleted
	case models.InterviewStarted, models.InterviewVideoProcessing:
		return &StartResult{InterviewID: rec.ID, JobContext: rec.JobContext, Resumed: true}, nil
	default:
		return nil, fmt.Errorf("unexpected interview status %q", rec.Status)
	}
}

// Get returns an interview to its candidate, or to anyone when candidateID is
// zero. Another candidate's interview reads as not found. A completed interview
// whose application lags behind is repaired before returning.
func (s *InterviewService) Get(ctx context.Context, interviewID, candidateID uuid.UUID) (*models.InterviewRecord, error) {
	rec, err := s.interviews.GetByID(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if rec == nil || (candidateID != uuid.Nil && rec.CandidateID != candidateID) {
		return nil, ErrInterviewNotFound
	}

	if rec.Status == models.InterviewCompleted {
		if _, err := s.syncApplication(ctx, rec); err != nil {
			slog.Warn("Failed to repair application", "interview_id", rec.ID, "error", err)
		}
	}

	return rec, nil
}

// GetApplication returns the application of a candidate to a job,
// repairing it first when a completed interview has not reached it. A non-zero
// companyID limits the read to that company's jobs; other jobs read as not found.
func (s *InterviewService) GetApplication(ctx context.Context, jobID, candidateID, companyID uuid.UUID) (*models.ApplicationRecord, error) {
	if companyID != uuid.Nil {
		job, err := s.jobs.GetByID(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if job == nil || job.CompanyID != companyID {
			return nil, ErrApplicationNotFound
		}
	}

	rec, err := s.interviews.FindActiveByPair(ctx, jobID, candidateID)
	if err != nil {
		return nil, err
	}
	if rec != nil && rec.Status == models.InterviewCompleted {
		if _, err := s.syncApplication(ctx, rec); err != nil {
			slog.Warn("Failed to repair application", "interview_id", rec.ID, "error", err)
		}
	}

	app, err := s.applications.GetByJobAndCandidate(ctx, jobID, candidateID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, ErrApplicationNotFound
	}
	return app, nil
}

// RecordAnswer appends a question and answer to an open interview
func (s *InterviewService) RecordAnswer(ctx context.Context, interviewID, candidateID uuid.UUID, answer models.QuestionAnswer) (*models.InterviewRecord, error) {
	answer = sanitizeAnswer(answer)
	if err := validator.ValidateStruct(&answer); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if _, err := s.owned(ctx, interviewID, candidateID); err != nil {
		return nil, err
	}

	rec, err := s.interviews.AppendAnswer(ctx, interviewID, answer)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrInterviewNotFound
	case errors.Is(err, repository.ErrInterviewNotOpen):
		return nil, ErrInterviewClosed
	case err != nil:
		return nil, err
	}

	return rec, nil
}

// MarkVideoProcessing moves an open interview to video_processing
func (s *InterviewService) MarkVideoProcessing(ctx context.Context, interviewID, candidateID uuid.UUID) (*models.InterviewRecord, error) {
	rec, err := s.owned(ctx, interviewID, candidateID)
	if err != nil {
		return nil, err
	}
	if !rec.Status.IsOpen() {
		return nil, ErrInterviewClosed
	}

	ok, err := s.interviews.MarkVideoProcessing(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInterviewClosed
	}

	return s.mustGet(ctx, interviewID)
}

// Finalize completes an interview with its scored result and brings the
// application in line in the same transaction. Finalizing a completed
// interview returns the stored record unchanged.
func (s *InterviewService) Finalize(ctx context.Context, interviewID, candidateID uuid.UUID, input FinalizeInput) (*models.InterviewRecord, error) {
	questions := make([]models.QuestionAnswer, 0, len(input.Questions))
	for _, q := range input.Questions {
		questions = append(questions, sanitizeAnswer(q))
	}
	input.Questions = questions

	if err := validator.ValidateStruct(&input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	rec, err := s.owned(ctx, interviewID, candidateID)
	if err != nil {
		return nil, err
	}

	switch rec.Status {
	case models.InterviewTerminated:
		return nil, ErrInterviewTerminated
	case models.InterviewCompleted:
		return s.alreadyFinalized(ctx, rec)
	}

	result := models.InterviewResult{
		Scores:          input.Scores.scores(),
		Strengths:       validator.SanitizeStrings(input.Strengths),
		Improvements:    validator.SanitizeStrings(input.Improvements),
		Feedback:        validator.SanitizeString(input.Feedback),
		DurationSeconds: int(math.Round(input.Duration)),
		Questions:       input.Questions,
		CompletedAt:     s.now(),
	}

	errNotOpen := errors.New("interview not open")
	err = s.tx.WithinTx(ctx, func(q repository.Querier) error {
		ok, err := s.interviews.Complete(ctx, q, rec.ID, result)
		if err != nil {
			return err
		}
		if !ok {
			return errNotOpen
		}
		return s.applications.MarkInterviewCompleted(ctx, q, rec.JobID, rec.CandidateID, rec.ID,
			result.Scores.OverallScore, result.CompletedAt)
	})
	if errors.Is(err, errNotOpen) {
		// Lost a race with another finalize or a terminate
		current, getErr := s.mustGet(ctx, rec.ID)
		if getErr != nil {
			return nil, getErr
		}
		if current.Status == models.InterviewCompleted {
			return s.alreadyFinalized(ctx, current)
		}
		return nil, ErrInterviewTerminated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to finalize interview: %w", err)
	}

	slog.Info("Interview completed",
		"interview_id", rec.ID,
		"job_id", rec.JobID,
		"candidate_id", rec.CandidateID,
		"overall_score", result.Scores.OverallScore,
	)
	score := result.Scores.OverallScore
	s.publish(ctx, events.Event{
		Type:        events.InterviewCompleted,
		InterviewID: rec.ID,
		JobID:       rec.JobID,
		CandidateID: rec.CandidateID,
		Score:       &score,
	})
	s.audit.Log(ctx, &rec.CandidateID, events.InterviewCompleted, auditResource, rec.ID.String(),
		fmt.Sprintf("Completed AI interview with overall score %.1f", score))

	return s.mustGet(ctx, rec.ID)
}

func (s *InterviewService) alreadyFinalized(ctx context.Context, rec *models.InterviewRecord) (*models.InterviewRecord, error) {
	if _, err := s.syncApplication(ctx, rec); err != nil {
		slog.Warn("Failed to repair application", "interview_id", rec.ID, "error", err)
	}
	slog.Info("Interview already completed", "interview_id", rec.ID)
	return rec, nil
}

// Terminate ends an open interview with a reason. Terminating a terminated or
// completed interview succeeds without changes. A zero candidateID skips the
// ownership check for operator calls.
func (s *InterviewService) Terminate(ctx context.Context, interviewID, candidateID uuid.UUID, reason string) error {
	rec, err := s.interviews.GetByID(ctx, interviewID)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrInterviewNotFound
	}
	if candidateID != uuid.Nil && rec.CandidateID != candidateID {
		return ErrForbidden
	}

	switch rec.Status {
	case models.InterviewTerminated:
		slog.Info("Interview already terminated", "interview_id", rec.ID)
		return nil
	case models.InterviewCompleted:
		slog.Warn("Ignoring terminate for completed interview", "interview_id", rec.ID, "reason", reason)
		return nil
	}

	normalized := models.NormalizeTerminationReason(reason)
	ok, err := s.interviews.Terminate(ctx, rec.ID, normalized, s.now())
	if err != nil {
		return fmt.Errorf("failed to terminate interview: %w", err)
	}
	if !ok {
		slog.Info("Interview closed before terminate", "interview_id", rec.ID)
		return nil
	}

	var actor *uuid.UUID
	if candidateID != uuid.Nil {
		actor = &candidateID
	}
	s.terminated(ctx, rec, normalized, actor, events.InterviewTerminated)

	return nil
}

func (s *InterviewService) terminated(ctx context.Context, rec *models.InterviewRecord, reason string, actor *uuid.UUID, action string) {
	slog.Info("Interview terminated", "interview_id", rec.ID, "candidate_id", rec.CandidateID, "reason", reason)
	s.publish(ctx, events.Event{
		Type:        events.InterviewTerminated,
		InterviewID: rec.ID,
		JobID:       rec.JobID,
		CandidateID: rec.CandidateID,
		Reason:      reason,
	})
	s.audit.Log(ctx, actor, action, auditResource, rec.ID.String(), "Terminated: "+reason)
}

// Reconcile repairs applications of completed interviews that missed the
// completion write. It returns the number of repaired applications.
func (s *InterviewService) Reconcile(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 100
	}

	lagging, err := s.interviews.ListLaggingCompleted(ctx, limit)
	if err != nil {
		return 0, err
	}

	var (
		repaired int
		errs     []error
	)
	for i := range lagging {
		ok, err := s.syncApplication(ctx, &lagging[i])
		if err != nil {
			errs = append(errs, fmt.Errorf("interview %s: %w", lagging[i].ID, err))
			continue
		}
		if ok {
			repaired++
		}
	}

	if repaired > 0 {
		slog.Info("Reconciled applications", "repaired", repaired, "scanned", len(lagging))
	}
	return repaired, errors.Join(errs...)
}

// ExpireStale terminates open interviews started more than olderThan ago with
// reason abandoned. It returns the number of expired interviews.
func (s *InterviewService) ExpireStale(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("expiry age must be positive")
	}
	if limit <= 0 {
		limit = 100
	}

	now := s.now()
	stale, err := s.interviews.ListStale(ctx, now.Add(-olderThan), limit)
	if err != nil {
		return 0, err
	}

	var (
		expired int
		errs    []error
	)
	for i := range stale {
		rec := &stale[i]
		ok, err := s.interviews.Terminate(ctx, rec.ID, models.ReasonAbandoned, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("interview %s: %w", rec.ID, err))
			continue
		}
		if !ok {
			continue
		}
		expired++
		s.terminated(ctx, rec, models.ReasonAbandoned, nil, "interview.expired")
	}

	if expired > 0 {
		slog.Info("Expired stale interviews", "expired", expired, "older_than", olderThan.String())
	}
	return expired, errors.Join(errs...)
}

// syncApplication writes a completed interview's result onto its application
// when it is not already there. Reports whether a write happened.
func (s *InterviewService) syncApplication(ctx context.Context, rec *models.InterviewRecord) (bool, error) {
	if rec.Status != models.InterviewCompleted || rec.Scores == nil {
		return false, nil
	}

	app, err := s.applications.GetByJobAndCandidate(ctx, rec.JobID, rec.CandidateID)
	if err != nil {
		return false, err
	}
	if applicationInSync(app, rec) {
		return false, nil
	}

	completedAt := s.now()
	if rec.CompletedAt != nil {
		completedAt = *rec.CompletedAt
	}
	if err := s.applications.MarkInterviewCompleted(ctx, nil, rec.JobID, rec.CandidateID, rec.ID,
		rec.Scores.OverallScore, completedAt); err != nil {
		return false, err
	}

	slog.Info("Repaired application for completed interview", "interview_id", rec.ID, "job_id", rec.JobID)
	return true, nil
}

func applicationInSync(app *models.ApplicationRecord, rec *models.InterviewRecord) bool {
	if app == nil || app.InterviewID == nil || *app.InterviewID != rec.ID {
		return false
	}
	if app.Evaluation.InterviewScore == nil || *app.Evaluation.InterviewScore != rec.Scores.OverallScore {
		return false
	}
	switch app.Status {
	case models.ApplicationInterviewCompleted, models.ApplicationShortlisted, models.ApplicationRejected:
		return true
	default:
		return false
	}
}

func (s *InterviewService) owned(ctx context.Context, interviewID, candidateID uuid.UUID) (*models.InterviewRecord, error) {
	rec, err := s.mustGet(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if candidateID != uuid.Nil && rec.CandidateID != candidateID {
		return nil, ErrForbidden
	}
	return rec, nil
}

func (s *InterviewService) mustGet(ctx context.Context, interviewID uuid.UUID) (*models.InterviewRecord, error) {
	rec, err := s.interviews.GetByID(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrInterviewNotFound
	}
	return rec, nil
}

func (s *InterviewService) publish(ctx context.Context, event events.Event) {
	event.OccurredAt = s.now()
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.Warn("Failed to publish lifecycle event", "type", event.Type, "interview_id", event.InterviewID, "error", err)
	}
}

func sanitizeAnswer(a models.QuestionAnswer) models.QuestionAnswer {
	a.Question = validator.SanitizeString(a.Question)
	a.CandidateAnswer = validator.SanitizeString(a.CandidateAnswer)
	a.Transcript = validator.SanitizeString(a.Transcript)
	a.Feedback = validator.SanitizeString(a.Feedback)
	return a
}
