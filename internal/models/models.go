package models

import (
	"time"

	"github.com/google/uuid"
)

// InterviewStatus is the lifecycle state of an AI interview attempt
type InterviewStatus string

const (
	InterviewStarted         InterviewStatus = "started"
	InterviewVideoProcessing InterviewStatus = "video_processing"
	InterviewCompleted       InterviewStatus = "completed"
	InterviewTerminated      InterviewStatus = "terminated"
)

// IsOpen reports whether the interview still accepts answers and may be finalized or terminated
func (s InterviewStatus) IsOpen() bool {
	return s == InterviewStarted || s == InterviewVideoProcessing
}

// Termination reasons recorded on an interview
const (
	ReasonFullscreenViolation = "fullscreen_violation"
	ReasonUserExit            = "user_exit"
	ReasonAbandoned           = "abandoned"
	ReasonOther               = "other"
)

// NormalizeTerminationReason maps unknown reasons to ReasonOther
func NormalizeTerminationReason(reason string) string {
	switch reason {
	case ReasonFullscreenViolation, ReasonUserExit, ReasonAbandoned:
		return reason
	default:
		return ReasonOther
	}
}

// ApplicationStatus is the coarse hiring-pipeline state of an application
type ApplicationStatus string

const (
	ApplicationPending            ApplicationStatus = "pending"
	ApplicationInterviewPending   ApplicationStatus = "interview_pending"
	ApplicationInterviewCompleted ApplicationStatus = "interview_completed"
	ApplicationShortlisted        ApplicationStatus = "shortlisted"
	ApplicationRejected           ApplicationStatus = "rejected"
	// Human interview scheduling states. Stored but never produced here.
	ApplicationInterviewScheduled   ApplicationStatus = "interview_scheduled"
	ApplicationInterviewRescheduled ApplicationStatus = "interview_rescheduled"
)

// InterviewMode describes how a job runs its interviews
type InterviewMode string

const (
	InterviewModeAI    InterviewMode = "ai"
	InterviewModeHuman InterviewMode = "human"
	InterviewModeNone  InterviewMode = "none"
)

// Job is the subset of a job posting this service reads
type Job struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	CompanyID      uuid.UUID     `json:"company_id" db:"company_id"`
	Title          string        `json:"title" db:"title"`
	Description    string        `json:"description" db:"description"`
	Skills         []string      `json:"skills" db:"skills"`
	SeniorityLevel string        `json:"seniority_level" db:"seniority_level"`
	InterviewMode  InterviewMode `json:"interview_mode" db:"interview_mode"`
	FocusAreas     []string      `json:"focus_areas" db:"focus_areas"`
	QuestionCount  int           `json:"question_count" db:"question_count"`
	CompanyName    string        `json:"company_name" db:"company_name"`
	CompanyLogoURL string        `json:"company_logo_url" db:"company_logo_url"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

// CompanyInfo is the company display information shown during an interview
type CompanyInfo struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	LogoURL string    `json:"logoUrl,omitempty"`
}

// JobContext is the job snapshot taken when an interview starts.
// Later edits to the posting do not change it.
type JobContext struct {
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Skills         []string    `json:"skills"`
	SeniorityLevel string      `json:"seniorityLevel"`
	FocusAreas     []string    `json:"focusAreas"`
	QuestionCount  int         `json:"questionCount"`
	Company        CompanyInfo `json:"company"`
}

// NewJobContext snapshots a job for an interview
func NewJobContext(job *Job) JobContext {
	return JobContext{
		Title:          job.Title,
		Description:    job.Description,
		Skills:         append([]string(nil), job.Skills...),
		SeniorityLevel: job.SeniorityLevel,
		FocusAreas:     append([]string(nil), job.FocusAreas...),
		QuestionCount:  job.QuestionCount,
		Company: CompanyInfo{
			ID:      job.CompanyID,
			Name:    job.CompanyName,
			LogoURL: job.CompanyLogoURL,
		},
	}
}

// QuestionAnswer is one asked question with the candidate's answer and its evaluation
type QuestionAnswer struct {
	Question        string  `json:"question" validate:"required"`
	CandidateAnswer string  `json:"candidateAnswer"`
	Transcript      string  `json:"transcript"`
	Feedback        string  `json:"feedback"`
	Score           float64 `json:"score" validate:"gte=0,lte=100"`
	Duration        float64 `json:"duration" validate:"gte=0,lte=86400"`
}

// Scores are the final interview scores on a 0-100 scale
type Scores struct {
	OverallScore       float64 `json:"overallScore" validate:"gte=0,lte=100"`
	TechnicalScore     float64 `json:"technicalScore" validate:"gte=0,lte=100"`
	CommunicationScore float64 `json:"communicationScore" validate:"gte=0,lte=100"`
	ConfidenceScore    float64 `json:"confidenceScore" validate:"gte=0,lte=100"`
}

// InterviewRecord is one candidate's attempt at a job's AI interview
type InterviewRecord struct {
	ID                uuid.UUID        `json:"id" db:"id"`
	JobID             uuid.UUID        `json:"jobId" db:"job_id"`
	CompanyID         uuid.UUID        `json:"companyId" db:"company_id"`
	CandidateID       uuid.UUID        `json:"candidateId" db:"candidate_id"`
	Status            InterviewStatus  `json:"status" db:"status"`
	Questions         []QuestionAnswer `json:"questions" db:"questions"`
	JobContext        JobContext       `json:"jobContext" db:"job_context"`
	Scores            *Scores          `json:"scores,omitempty"`
	Strengths         []string         `json:"strengths" db:"strengths"`
	Improvements      []string         `json:"improvements" db:"improvements"`
	Feedback          string           `json:"feedback" db:"feedback"`
	DurationSeconds   *int             `json:"duration,omitempty" db:"duration_seconds"`
	TerminationReason *string          `json:"terminationReason,omitempty" db:"termination_reason"`
	StartedAt         time.Time        `json:"startedAt" db:"started_at"`
	CompletedAt       *time.Time       `json:"completedAt,omitempty" db:"completed_at"`
	TerminatedAt      *time.Time       `json:"terminatedAt,omitempty" db:"terminated_at"`
	CreatedAt         time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time        `json:"updatedAt" db:"updated_at"`
}

// InterviewResult is everything written when an interview is finalized
type InterviewResult struct {
	Scores          Scores
	Strengths       []string
	Improvements    []string
	Feedback        string
	DurationSeconds int
	Questions       []QuestionAnswer
	CompletedAt     time.Time
}

// Evaluation holds denormalized interview results on an application
type Evaluation struct {
	InterviewScore *float64 `json:"interviewScore,omitempty"`
}

// ApplicationRecord is a candidate's application to a job
type ApplicationRecord struct {
	ID                   int64             `json:"id" db:"id"`
	JobID                uuid.UUID         `json:"jobId" db:"job_id"`
	CandidateID          uuid.UUID         `json:"candidateId" db:"candidate_id"`
	InterviewID          *uuid.UUID        `json:"interviewId,omitempty" db:"interview_id"`
	AnalysisID           *uuid.UUID        `json:"analysisId,omitempty" db:"analysis_id"`
	Status               ApplicationStatus `json:"status" db:"status"`
	Evaluation           Evaluation        `json:"evaluation"`
	InterviewStartedAt   *time.Time        `json:"interviewStartedAt,omitempty" db:"interview_started_at"`
	InterviewCompletedAt *time.Time        `json:"interviewCompletedAt,omitempty" db:"interview_completed_at"`
	AppliedAt            time.Time         `json:"appliedAt" db:"applied_at"`
	UpdatedAt            time.Time         `json:"updatedAt" db:"updated_at"`
}

// AuditLog represents an audit log entry
type AuditLog struct {
	ID         int64      `json:"id" db:"id"`
	ActorID    *uuid.UUID `json:"actor_id,omitempty" db:"actor_id"`
	Action     string     `json:"action" db:"action"`
	Resource   string     `json:"resource" db:"resource"`
	ResourceID string     `json:"resource_id" db:"resource_id"`
	Details    string     `json:"details" db:"details"`
	IPAddress  string     `json:"ip_address" db:"ip_address"`
	UserAgent  string     `json:"user_agent" db:"user_agent"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
