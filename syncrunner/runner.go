// Package syncrunner drains the offline mutation queue against the remote
// API. It owns the delivery policy the queue itself deliberately lacks:
// retry counting, backoff between attempts, and what to do with items
// that keep failing.
package syncrunner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/heet9201/guruai-offline/offline"
)

// Sender delivers one pending action to the server. Implemented by the
// remote API client; the runner never talks to the network itself.
type Sender interface {
	Send(ctx context.Context, item offline.QueueItem) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, item offline.QueueItem) error

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, item offline.QueueItem) error {
	return f(ctx, item)
}

// Policy controls delivery behavior for one drain pass.
type Policy struct {
	// MaxRetries is the attempt count after which an item is parked:
	// skipped by the drain loop and reported, never silently deleted.
	// Only acknowledgement removes queue items.
	MaxRetries int

	// AttemptTimeout bounds each individual delivery attempt.
	AttemptTimeout time.Duration

	// FailureDelay is the pause after a failed attempt before moving on,
	// giving flaky connectivity a moment to recover.
	FailureDelay time.Duration
}

// DefaultPolicy returns the delivery policy used by the client.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:     5,
		AttemptTimeout: 30 * time.Second,
		FailureDelay:   2 * time.Second,
	}
}

// Result summarizes one drain pass.
type Result struct {
	Delivered int
	Failed    int
	// Parked items reached MaxRetries and were skipped. They stay queued
	// for a later pass with a reset policy or manual intervention.
	Parked []offline.QueueItem
}

// Runner drains pending actions in delivery order while holding the sync
// lease, so a second concurrent drain cannot re-send the same action.
type Runner struct {
	store  *offline.Store
	sender Sender
	policy Policy
	logger *slog.Logger
}

// New creates a runner over the store and sender.
func New(store *offline.Store, sender Sender, policy Policy, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		store:  store,
		sender: sender,
		policy: policy,
		logger: logger.With(slog.String("component", "syncrunner")),
	}
}

// RunOnce performs one drain pass: acquire the lease, deliver each pending
// action in order, acknowledge on success, bump the retry count on
// failure. Returns offline.ErrSyncInProgress when another sync holds the
// lease. The lease is always released.
func (r *Runner) RunOnce(ctx context.Context) (Result, error) {
	if err := r.store.AcquireSyncLease(ctx); err != nil {
		if errors.Is(err, offline.ErrSyncInProgress) {
			return Result{}, offline.ErrSyncInProgress
		}
		return Result{}, err
	}
	defer func() {
		if err := r.store.ReleaseSyncLease(context.WithoutCancel(ctx)); err != nil {
			r.logger.Error("releasing sync lease failed", slog.Any("error", err))
		}
	}()

	items, err := r.store.ListPendingActions(ctx)
	if err != nil {
		return Result{}, err
	}

	var result Result
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if item.RetryCount >= r.policy.MaxRetries {
			r.logger.Warn("action parked after max retries",
				slog.Int64("id", item.ID),
				slog.String("action_type", item.ActionType),
				slog.Int("retry_count", item.RetryCount))
			result.Parked = append(result.Parked, item)
			continue
		}

		if err := r.deliver(ctx, item); err != nil {
			result.Failed++
			r.logger.Warn("delivery failed",
				slog.Int64("id", item.ID),
				slog.String("action_type", item.ActionType),
				slog.Any("error", err))
			if err := r.store.BumpRetry(ctx, item.ID); err != nil {
				return result, err
			}
			if r.policy.FailureDelay > 0 {
				select {
				case <-time.After(r.policy.FailureDelay):
				case <-ctx.Done():
					return result, ctx.Err()
				}
			}
			continue
		}

		if err := r.store.AcknowledgeAction(ctx, item.ID); err != nil {
			return result, err
		}
		result.Delivered++
	}

	if result.Failed == 0 && len(result.Parked) == 0 {
		if err := r.store.RecordSuccessfulSync(ctx); err != nil {
			return result, err
		}
	}

	r.logger.Info("drain pass finished",
		slog.Int("delivered", result.Delivered),
		slog.Int("failed", result.Failed),
		slog.Int("parked", len(result.Parked)))
	return result, nil
}

// deliver sends one item under the per-attempt timeout.
func (r *Runner) deliver(ctx context.Context, item offline.QueueItem) error {
	if r.policy.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.policy.AttemptTimeout)
		defer cancel()
	}
	return r.sender.Send(ctx, item)
}
