package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExecute_SucceedsWithoutRetry(t *testing.T) {
	p := &Policy{Name: "test", MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Second, BackoffMultiplier: 2}

	calls := 0
	err := p.Execute(context.Background(), nil, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Execute() error = %v, want nil", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestExecute_RetriesThenSucceeds(t *testing.T) {
	p := &Policy{Name: "test", MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Second, BackoffMultiplier: 2}

	calls := 0
	err := p.Execute(context.Background(), nil, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Execute() error = %v, want nil", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestExecute_ExhaustsAttempts(t *testing.T) {
	p := &Policy{Name: "test", MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Second, BackoffMultiplier: 2}

	calls := 0
	wantErr := errors.New("permanent")
	err := p.Execute(context.Background(), nil, func() error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Execute() error = %v, want %v", err, wantErr)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestExecute_ContextCancelledDuringBackoff(t *testing.T) {
	p := &Policy{Name: "test", MaxAttempts: 5, InitialBackoff: time.Second, MaxBackoff: 10 * time.Second, BackoffMultiplier: 2}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := p.Execute(ctx, nil, func() error {
		calls++
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Execute() error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestPresetPolicies(t *testing.T) {
	if got := ConnectPolicy().MaxAttempts; got != 10 {
		t.Fatalf("ConnectPolicy().MaxAttempts = %d, want 10", got)
	}
	if got := ConnectPolicy().InitialBackoff; got != 200*time.Millisecond {
		t.Fatalf("ConnectPolicy().InitialBackoff = %v, want 200ms", got)
	}
	if got := QueryPolicy().MaxAttempts; got != 3 {
		t.Fatalf("QueryPolicy().MaxAttempts = %d, want 3", got)
	}
	if got := QueueReconnectPolicy().MaxAttempts; got != 5 {
		t.Fatalf("QueueReconnectPolicy().MaxAttempts = %d, want 5", got)
	}
}
