package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/storylingo/backend/internal/apperr"
)

// LookupFunc resolves the current status of a job.
type LookupFunc func(ctx context.Context, queueName string, jobID uuid.UUID) (string, error)

// Poller drives the client side of the protocol: submit, apply the change
// optimistically, then poll on a fixed interval until a terminal status or
// the poll cap.
type Poller struct {
	Lookup   LookupFunc
	Interval time.Duration
	MaxPolls int
}

func NewPoller(lookup LookupFunc) *Poller {
	return &Poller{
		Lookup:   lookup,
		Interval: 500 * time.Millisecond,
		MaxPolls: 20,
	}
}

// PollUntilTerminal returns the first terminal status observed. When the
// poll cap is reached first it returns the last seen status and a
// job_timeout error.
func (p *Poller) PollUntilTerminal(ctx context.Context, queueName string, jobID uuid.UUID) (string, error) {
	var last string
	for i := 0; i < p.MaxPolls; i++ {
		if ctx.Err() != nil {
			return last, ctx.Err()
		}

		status, err := p.Lookup(ctx, queueName, jobID)
		if err != nil {
			return last, err
		}
		last = status
		if Terminal(status) {
			return status, nil
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-time.After(p.Interval):
		}
	}
	return last, apperr.New(apperr.KindJobTimeout, "job did not reach a terminal status", nil, map[string]any{
		"queue_name":  queueName,
		"job_id":      jobID.String(),
		"last_status": last,
	})
}

// PollApplied runs the optimistic-update discipline: apply is called before
// the first poll, rollback only when the job terminally failed. On timeout
// the optimistic update is retained, since the mutation usually lands late
// rather than never, and the error tells the caller the outcome is unknown.
func (p *Poller) PollApplied(ctx context.Context, queueName string, jobID uuid.UUID, apply func(), rollback func()) error {
	apply()

	status, err := p.PollUntilTerminal(ctx, queueName, jobID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindJobTimeout) {
			return err
		}
		rollback()
		return err
	}
	if status == StatusFailed {
		rollback()
		return apperr.New(apperr.KindUnknown, "job failed", nil, map[string]any{
			"queue_name": queueName,
			"job_id":     jobID.String(),
		})
	}
	return nil
}
