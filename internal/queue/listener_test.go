package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docworker/internal/ledger"
	"github.com/ternarybob/docworker/internal/models"
)

type fakeSource struct {
	jobs         []*models.Job
	deleted      []int64
	notifyCalls  int
	notifyErr    error
	reconnectErr error
	secondWait   chan struct{}
}

func (f *fakeSource) SelectNextJob(ctx context.Context) (*models.Job, error) {
	if len(f.jobs) == 0 {
		return nil, ledger.ErrJobNotFound
	}
	job := f.jobs[0]
	f.jobs = f.jobs[1:]
	return job, nil
}

func (f *fakeSource) DeleteJob(ctx context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeSource) WaitForNotification(ctx context.Context) (*pgx.Notification, error) {
	f.notifyCalls++
	if f.notifyCalls == 1 && f.notifyErr != nil {
		return nil, f.notifyErr
	}
	if f.notifyCalls == 2 && f.secondWait != nil {
		close(f.secondWait)
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

func (f *fakeSource) Reconnect(ctx context.Context) error {
	return f.reconnectErr
}

func TestListener_DrainsAllJobsBeforeWaiting(t *testing.T) {
	var handled []int64
	src := &fakeSource{jobs: []*models.Job{{ID: 1}, {ID: 2}, {ID: 3}}}

	l := &Listener{ledger: src, logger: arbor.NewLogger(), handler: func(ctx context.Context, job *models.Job) error {
		handled = append(handled, job.ID)
		return nil
	}}

	if err := l.drain(context.Background()); err != nil {
		t.Fatalf("drain() error = %v", err)
	}

	if len(handled) != 3 {
		t.Fatalf("handled %d jobs, want 3", len(handled))
	}
	if len(src.deleted) != 3 {
		t.Fatalf("deleted %d jobs, want 3", len(src.deleted))
	}
}

func TestListener_ReconnectsOnNotificationError(t *testing.T) {
	secondWait := make(chan struct{})
	src := &fakeSource{notifyErr: errors.New("connection reset"), secondWait: secondWait}

	l := &Listener{ledger: src, logger: arbor.NewLogger(), handler: func(ctx context.Context, job *models.Job) error {
		return nil
	}}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-secondWait
		cancel()
	}()

	if err := l.Run(ctx); err == nil {
		t.Fatal("Run() error = nil, want context cancellation error")
	}
	if src.notifyCalls < 2 {
		t.Fatalf("notifyCalls = %d, want reconnect to have retried the wait", src.notifyCalls)
	}
}

func TestListener_StopsOnContextCancelDuringDrain(t *testing.T) {
	src := &fakeSource{jobs: []*models.Job{{ID: 1}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := &Listener{ledger: src, logger: arbor.NewLogger(), handler: func(ctx context.Context, job *models.Job) error {
		return nil
	}}

	if err := l.drain(ctx); err == nil {
		t.Fatal("drain() error = nil, want context.Canceled")
	}
}
