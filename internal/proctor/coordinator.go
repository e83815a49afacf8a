package proctor

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Terminator ends an interview on the server
type Terminator interface {
	Terminate(ctx context.Context, interviewID uuid.UUID, reason string) error
}

// Coordinator reports a client-side termination to the server. Failures are
// logged and swallowed so the candidate's session always ends.
type Coordinator struct {
	terminator  Terminator
	interviewID uuid.UUID
	timeout     time.Duration
}

// NewCoordinator creates a coordinator for one interview
func NewCoordinator(terminator Terminator, interviewID uuid.UUID, timeout time.Duration) *Coordinator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Coordinator{terminator: terminator, interviewID: interviewID, timeout: timeout}
}

// Terminate calls the server and never returns an error
func (c *Coordinator) Terminate(ctx context.Context, reason string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	if err := c.terminator.Terminate(ctx, c.interviewID, reason); err != nil {
		slog.Warn("Failed to report interview termination",
			"interview_id", c.interviewID,
			"reason", reason,
			"error", err,
		)
		return
	}
	slog.Info("Reported interview termination", "interview_id", c.interviewID, "reason", reason)
}
