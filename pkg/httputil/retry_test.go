package httputil

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	transient := &RetryableError{Err: errors.New("502")}
	permanent := errors.New("404")

	tests := []struct {
		name      string
		attempts  int
		errs      []error
		wantCalls int
		wantErr   error
	}{
		{"first try", 3, []error{nil}, 1, nil},
		{"recovers", 3, []error{transient, transient, nil}, 3, nil},
		{"exhausted", 2, []error{transient, transient, nil}, 2, transient},
		{"permanent", 3, []error{permanent, nil}, 1, permanent},
		{"zero attempts runs once", 0, []error{transient}, 1, transient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), Backoff{Attempts: tt.attempts, Delay: time.Millisecond}, func() error {
				err := tt.errs[calls]
				calls++
				return err
			})
			if !errors.Is(err, tt.wantErr) && err != tt.wantErr {
				t.Errorf("Retry() error = %v, want %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryCancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	err := Retry(ctx, Backoff{Attempts: 3, Delay: time.Hour}, func() error {
		cancel()
		return &RetryableError{Err: errors.New("503")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry() error = %v, want context.Canceled", err)
	}
}

func TestBackoffNext(t *testing.T) {
	b := Backoff{Max: 3 * time.Second}
	if got := b.next(time.Second); got != 2*time.Second {
		t.Errorf("next(1s) = %v", got)
	}
	if got := b.next(2 * time.Second); got != 3*time.Second {
		t.Errorf("next(2s) = %v, want cap 3s", got)
	}
	if got := (Backoff{}).next(time.Minute); got != 2*time.Minute {
		t.Errorf("uncapped next = %v", got)
	}
}
