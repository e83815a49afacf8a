package service

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mentorhub/interviews/internal/events"
	"github.com/mentorhub/interviews/internal/models"
	"github.com/mentorhub/interviews/internal/repository"
)

type pair struct {
	job, candidate uuid.UUID
}

// memStore is an in-memory stand-in for the Postgres repositories. It enforces
// the same one-open-interview-per-pair rule as the partial unique index.
type memStore struct {
	mu           sync.Mutex
	jobs         map[uuid.UUID]*models.Job
	applications map[pair]models.ApplicationRecord
	interviews   map[uuid.UUID]models.InterviewRecord
	nextAppID    int64

	// hideActive makes FindActiveByPair report nothing for that many calls
	hideActive         int
	failAppCompletion  bool
	completeCalls      int
	markCompletedCalls int
}

func newMemStore() *memStore {
	return &memStore{
		jobs:         map[uuid.UUID]*models.Job{},
		applications: map[pair]models.ApplicationRecord{},
		interviews:   map[uuid.UUID]models.InterviewRecord{},
	}
}

func (m *memStore) addJob(mode models.InterviewMode) *models.Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	job := &models.Job{
		ID:             uuid.New(),
		CompanyID:      uuid.New(),
		Title:          "Backend Engineer",
		Description:    "Build services",
		Skills:         []string{"go"},
		SeniorityLevel: "mid",
		InterviewMode:  mode,
		QuestionCount:  5,
		CompanyName:    "Acme",
	}
	m.jobs[job.ID] = job
	return job
}

func (m *memStore) addApplication(jobID, candidateID uuid.UUID, status models.ApplicationStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextAppID++
	m.applications[pair{jobID, candidateID}] = models.ApplicationRecord{
		ID:          m.nextAppID,
		JobID:       jobID,
		CandidateID: candidateID,
		Status:      status,
		AppliedAt:   time.Now().UTC(),
	}
}

func (m *memStore) application(jobID, candidateID uuid.UUID) (models.ApplicationRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.applications[pair{jobID, candidateID}]
	return app, ok
}

func (m *memStore) interviewCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.interviews)
}

// JobStore

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, nil
	}
	copied := *job
	return &copied, nil
}

// ApplicationStore

func (m *memStore) GetByJobAndCandidate(_ context.Context, jobID, candidateID uuid.UUID) (*models.ApplicationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.applications[pair{jobID, candidateID}]
	if !ok {
		return nil, nil
	}
	return &app, nil
}

func (m *memStore) MarkInterviewStarted(_ context.Context, jobID, candidateID, interviewID uuid.UUID, startedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.applications[pair{jobID, candidateID}]
	if !ok || app.Status == models.ApplicationInterviewCompleted {
		return false, nil
	}
	app.InterviewID = &interviewID
	app.InterviewStartedAt = &startedAt
	if app.Status == models.ApplicationPending {
		app.Status = models.ApplicationInterviewPending
	}
	m.applications[pair{jobID, candidateID}] = app
	return true, nil
}

func (m *memStore) MarkInterviewCompleted(_ context.Context, _ repository.Querier, jobID, candidateID, interviewID uuid.UUID, score float64, completedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.markCompletedCalls++
	if m.failAppCompletion {
		return errors.New("application store unavailable")
	}

	key := pair{jobID, candidateID}
	app, ok := m.applications[key]
	if !ok {
		m.nextAppID++
		app = models.ApplicationRecord{ID: m.nextAppID, JobID: jobID, CandidateID: candidateID, AppliedAt: completedAt}
	}
	app.InterviewID = &interviewID
	app.Evaluation.InterviewScore = &score
	app.InterviewCompletedAt = &completedAt
	if app.Status != models.ApplicationShortlisted && app.Status != models.ApplicationRejected {
		app.Status = models.ApplicationInterviewCompleted
	}
	m.applications[key] = app
	return nil
}

// InterviewStore, reached through interviewView since GetByID collides with JobStore

type interviewView struct {
	*memStore
}

func (v interviewView) Create(_ context.Context, rec *models.InterviewRecord) error {
	m := v.memStore
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.interviews {
		if existing.JobID == rec.JobID && existing.CandidateID == rec.CandidateID && existing.Status != models.InterviewTerminated {
			return repository.ErrActiveInterviewExists
		}
	}
	now := time.Now().UTC()
	rec.CreatedAt, rec.UpdatedAt = now, now
	m.interviews[rec.ID] = cloneInterview(*rec)
	return nil
}

func (v interviewView) GetByID(_ context.Context, id uuid.UUID) (*models.InterviewRecord, error) {
	m := v.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.interviews[id]
	if !ok {
		return nil, nil
	}
	copied := cloneInterview(rec)
	return &copied, nil
}

func (v interviewView) FindActiveByPair(_ context.Context, jobID, candidateID uuid.UUID) (*models.InterviewRecord, error) {
	m := v.memStore
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.hideActive > 0 {
		m.hideActive--
		return nil, nil
	}

	var latest *models.InterviewRecord
	for _, rec := range m.interviews {
		if rec.JobID != jobID || rec.CandidateID != candidateID || rec.Status == models.InterviewTerminated {
			continue
		}
		if latest == nil || rec.StartedAt.After(latest.StartedAt) {
			copied := cloneInterview(rec)
			latest = &copied
		}
	}
	return latest, nil
}

func (v interviewView) AppendAnswer(_ context.Context, id uuid.UUID, answer models.QuestionAnswer) (*models.InterviewRecord, error) {
	m := v.memStore
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.interviews[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !rec.Status.IsOpen() {
		return nil, repository.ErrInterviewNotOpen
	}
	rec.Questions = append(append([]models.QuestionAnswer(nil), rec.Questions...), answer)
	m.interviews[id] = rec
	copied := cloneInterview(rec)
	return &copied, nil
}

func (v interviewView) MarkVideoProcessing(_ context.Context, id uuid.UUID) (bool, error) {
	m := v.memStore
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.interviews[id]
	if !ok || !rec.Status.IsOpen() {
		return false, nil
	}
	rec.Status = models.InterviewVideoProcessing
	m.interviews[id] = rec
	return true, nil
}

func (v interviewView) Complete(_ context.Context, _ repository.Querier, id uuid.UUID, result models.InterviewResult) (bool, error) {
	m := v.memStore
	m.mu.Lock()
	defer m.mu.Unlock()

	m.completeCalls++
	rec, ok := m.interviews[id]
	if !ok || !rec.Status.IsOpen() {
		return false, nil
	}
	scores := result.Scores
	duration := result.DurationSeconds
	completedAt := result.CompletedAt
	rec.Status = models.InterviewCompleted
	rec.Scores = &scores
	rec.Strengths = result.Strengths
	rec.Improvements = result.Improvements
	rec.Feedback = result.Feedback
	rec.DurationSeconds = &duration
	rec.Questions = result.Questions
	rec.CompletedAt = &completedAt
	m.interviews[id] = rec
	return true, nil
}

func (v interviewView) Terminate(_ context.Context, id uuid.UUID, reason string, at time.Time) (bool, error) {
	m := v.memStore
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.interviews[id]
	if !ok || !rec.Status.IsOpen() {
		return false, nil
	}
	rec.Status = models.InterviewTerminated
	rec.TerminationReason = &reason
	rec.TerminatedAt = &at
	m.interviews[id] = rec
	return true, nil
}

func (v interviewView) ListLaggingCompleted(_ context.Context, limit int) ([]models.InterviewRecord, error) {
	m := v.memStore
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.InterviewRecord
	for _, rec := range m.interviews {
		if rec.Status != models.InterviewCompleted {
			continue
		}
		app, ok := m.applications[pair{rec.JobID, rec.CandidateID}]
		if ok && applicationInSync(&app, &rec) {
			continue
		}
		out = append(out, cloneInterview(rec))
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (v interviewView) ListStale(_ context.Context, startedBefore time.Time, limit int) ([]models.InterviewRecord, error) {
	m := v.memStore
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.InterviewRecord
	for _, rec := range m.interviews {
		if rec.Status.IsOpen() && rec.StartedAt.Before(startedBefore) {
			out = append(out, cloneInterview(rec))
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// Transactor: restores the previous state when fn fails

func (m *memStore) WithinTx(_ context.Context, fn func(q repository.Querier) error) error {
	m.mu.Lock()
	interviews := maps.Clone(m.interviews)
	applications := maps.Clone(m.applications)
	m.mu.Unlock()

	if err := fn(nil); err != nil {
		m.mu.Lock()
		m.interviews = interviews
		m.applications = applications
		m.mu.Unlock()
		return err
	}
	return nil
}

func cloneInterview(rec models.InterviewRecord) models.InterviewRecord {
	rec.Questions = append([]models.QuestionAnswer(nil), rec.Questions...)
	return rec
}

type auditRecorder struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (a *auditRecorder) Create(_ context.Context, log *models.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, *log)
	return nil
}

func (a *auditRecorder) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (r *eventRecorder) Publish(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *eventRecorder) Close() error { return nil }

func (r *eventRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
