// Package revalidate runs a refresh function on a fixed interval until its
// context ends. Clients use it to re-read sections and stats instead of
// relying on push notifications.
package revalidate

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dmitrijs2005/gophdocs/internal/common"
)

// RefreshFunc re-reads whatever the caller keeps fresh.
type RefreshFunc func(ctx context.Context) error

// Task calls Refresh once immediately and then every Interval. Transient
// failures are retried with backoff inside the tick; other failures, and
// transient ones that outlive the backoff, go to OnError.
type Task struct {
	Interval time.Duration
	Refresh  RefreshFunc
	OnError  func(error)
	// NewBackOff builds the retry policy for one tick. Defaults to an
	// exponential backoff bounded by half the interval.
	NewBackOff func() backoff.BackOff
}

func New(interval time.Duration, refresh RefreshFunc, onError func(error)) *Task {
	return &Task{Interval: interval, Refresh: refresh, OnError: onError}
}

// Run blocks until ctx is done and returns its error.
func (t *Task) Run(ctx context.Context) error {
	if t.Interval <= 0 {
		return errors.New("revalidate: interval must be positive")
	}

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	for {
		t.tick(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (t *Task) tick(ctx context.Context) {
	operation := func() error {
		err := t.Refresh(ctx)
		if err == nil || errors.Is(err, common.ErrTransientIO) {
			return err
		}
		return backoff.Permanent(err)
	}

	err := backoff.Retry(operation, backoff.WithContext(t.backOff(), ctx))
	if err != nil && ctx.Err() == nil && t.OnError != nil {
		t.OnError(err)
	}
}

func (t *Task) backOff() backoff.BackOff {
	if t.NewBackOff != nil {
		return t.NewBackOff()
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxElapsedTime = t.Interval / 2
	return b
}
