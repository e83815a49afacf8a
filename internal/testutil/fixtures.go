package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mentorhub/interviews/internal/models"
)

// Fixtures holds test data
type Fixtures struct {
	DB        *sql.DB
	CompanyID uuid.UUID
	AIJob     *models.Job
	HumanJob  *models.Job
	Candidate uuid.UUID
}

// SetupFixtures creates an AI job, a human-interview job and a pending
// application of Candidate to the AI job
func SetupFixtures(t *testing.T, db *sql.DB) *Fixtures {
	t.Helper()

	f := &Fixtures{
		DB:        db,
		CompanyID: uuid.New(),
		Candidate: uuid.New(),
	}

	f.AIJob = CreateJob(t, db, f.CompanyID, "Backend Engineer", models.InterviewModeAI)
	f.HumanJob = CreateJob(t, db, f.CompanyID, "Engineering Manager", models.InterviewModeHuman)
	CreateApplication(t, db, f.AIJob.ID, f.Candidate, models.ApplicationPending)

	return f
}

// CreateJob inserts a job
func CreateJob(t *testing.T, db *sql.DB, companyID uuid.UUID, title string, mode models.InterviewMode) *models.Job {
	t.Helper()

	job := &models.Job{
		ID:             uuid.New(),
		CompanyID:      companyID,
		Title:          title,
		Description:    title + " at Acme",
		Skills:         []string{"go", "postgres"},
		SeniorityLevel: "senior",
		InterviewMode:  mode,
		FocusAreas:     []string{"system design"},
		QuestionCount:  5,
		CompanyName:    "Acme",
		CompanyLogoURL: "https://acme.example/logo.png",
	}

	err := db.QueryRowContext(context.Background(), `
		INSERT INTO jobs (id, company_id, title, description, skills, seniority_level, interview_mode,
			focus_areas, question_count, company_name, company_logo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`, job.ID, job.CompanyID, job.Title, job.Description, pq.Array(job.Skills), job.SeniorityLevel,
		job.InterviewMode, pq.Array(job.FocusAreas), job.QuestionCount, job.CompanyName, job.CompanyLogoURL,
	).Scan(&job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		t.Fatalf("Failed to create job: %v", err)
	}

	return job
}

// CreateApplication inserts an application in the given status
func CreateApplication(t *testing.T, db *sql.DB, jobID, candidateID uuid.UUID, status models.ApplicationStatus) int64 {
	t.Helper()

	var id int64
	err := db.QueryRowContext(context.Background(),
		`INSERT INTO applications (job_id, candidate_id, status) VALUES ($1, $2, $3) RETURNING id`,
		jobID, candidateID, status,
	).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create application: %v", err)
	}

	return id
}

// SampleQuestions returns n answered questions
func SampleQuestions(n int) []models.QuestionAnswer {
	questions := make([]models.QuestionAnswer, 0, n)
	for i := range n {
		questions = append(questions, models.QuestionAnswer{
			Question:        "Describe a system you designed",
			CandidateAnswer: "A queue backed by Postgres",
			Transcript:      "A queue backed by Postgres",
			Feedback:        "Clear",
			Score:           float64(70 + i),
			Duration:        60,
		})
	}
	return questions
}
