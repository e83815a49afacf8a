package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/lib/pq"

	"github.com/mentorhub/interviews/internal/database"
)

var (
	// ErrNotFound is returned by mutations whose target row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrActiveInterviewExists is returned when the pair already has a non-terminated interview
	ErrActiveInterviewExists = errors.New("active interview already exists for job and candidate")
	// ErrInterviewNotOpen is returned when a mutation targets a completed or terminated interview
	ErrInterviewNotOpen = errors.New("interview is not open")
)

const activePairConstraint = "uq_interviews_active_pair"

// Querier is satisfied by both *sql.DB and *sql.Tx
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// TranscriptSealer protects the stored question transcript
type TranscriptSealer interface {
	Seal(ctx context.Context, plaintext []byte) (string, error)
	Open(ctx context.Context, stored string) ([]byte, error)
}

// PlainSealer stores transcripts as plain JSON
type PlainSealer struct{}

func (PlainSealer) Seal(_ context.Context, plaintext []byte) (string, error) {
	return string(plaintext), nil
}

func (PlainSealer) Open(_ context.Context, stored string) ([]byte, error) {
	return []byte(stored), nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" && (constraint == "" || pqErr.Constraint == constraint)
	}
	return false
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		slog.Error("Failed to close rows", "error", err)
	}
}

// Transactor runs repository calls in one database transaction
type Transactor struct {
	db *sql.DB
}

// NewTransactor creates a new transactor
func NewTransactor(db *sql.DB) *Transactor {
	return &Transactor{db: db}
}

// WithinTx runs fn in a transaction committed when fn returns nil
func (t *Transactor) WithinTx(ctx context.Context, fn func(q Querier) error) error {
	return database.WithTx(ctx, t.db, func(tx *sql.Tx) error {
		return fn(tx)
	})
}
