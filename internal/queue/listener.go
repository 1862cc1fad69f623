// Package queue implements the queue listener (C3): a drain/wait/exit loop
// over the job ledger's LISTEN/NOTIFY channel and FOR UPDATE SKIP LOCKED
// dequeue, running exactly one job at a time.
package queue

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docworker/internal/ledger"
	"github.com/ternarybob/docworker/internal/models"
)

// Handler processes one dequeued job. A non-nil error only stops the
// listener loop if it is a context cancellation; any other error is the
// caller's responsibility to have already recorded against the document.
type Handler func(ctx context.Context, job *models.Job) error

// jobSource is the slice of *ledger.Ledger the listener depends on,
// narrowed so the drain/wait/exit loop can be tested without a database.
type jobSource interface {
	SelectNextJob(ctx context.Context) (*models.Job, error)
	DeleteJob(ctx context.Context, id int64) error
	WaitForNotification(ctx context.Context) (*pgx.Notification, error)
	Reconnect(ctx context.Context) error
}

// Listener drives the drain/wait/exit loop against a Ledger.
type Listener struct {
	ledger  jobSource
	logger  arbor.ILogger
	handler Handler
}

// New builds a Listener bound to a ledger and the per-job handler.
func New(l *ledger.Ledger, logger arbor.ILogger, handler Handler) *Listener {
	return &Listener{ledger: l, logger: logger, handler: handler}
}

// Run executes the loop until ctx is cancelled. Each iteration:
//  1. drains the queue by repeatedly dequeuing and handling jobs until
//     ErrJobNotFound,
//  2. blocks on a queue notification (or ctx cancellation),
//  3. on a dropped queue connection, reconnects under the queue-reconnect
//     retry policy and resumes draining.
func (l *Listener) Run(ctx context.Context) error {
	for {
		if err := l.drain(ctx); err != nil {
			return err
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		_, err := l.ledger.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Warn().Err(err).Msg("queue notification wait failed, reconnecting")
			if rerr := l.ledger.Reconnect(ctx); rerr != nil {
				return rerr
			}
		}
	}
}

// drain repeatedly dequeues and handles jobs until the queue is empty.
func (l *Listener) drain(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		job, err := l.ledger.SelectNextJob(ctx)
		if errors.Is(err, ledger.ErrJobNotFound) {
			return nil
		}
		if err != nil {
			l.logger.Error().Err(err).Msg("selecting next job failed")
			return nil
		}

		if err := l.handler(ctx, job); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}

		if err := l.ledger.DeleteJob(ctx, job.ID); err != nil {
			l.logger.Error().Err(err).Int64("job_id", job.ID).Msg("deleting processed job failed")
		}
	}
}
