// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package classify

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/Azure/seclab/graph"
	"github.com/Azure/seclab/internal/log"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	defaultMaxConcurrent = 5
	defaultMaxRetries    = 4
	defaultBaseDelay     = time.Second
)

// Item is one unit of classification work: a drive item and the label to apply.
type Item struct {
	// Path is the manifest path of the item, informational only.
	Path string
	// DriveId and ItemId identify the drive item in Microsoft Graph.
	DriveId string
	ItemId  string
	// Label is the catalog name or GUID of the sensitivity label to apply.
	Label string
}

// Outcome is the terminal state of one item.
type Outcome string

const (
	OutcomeSucceeded Outcome = "Succeeded"
	OutcomeFailed    Outcome = "Failed"
	OutcomeSkipped   Outcome = "Skipped"
)

// ItemResult is the recorded outcome of one item, including retry count.
type ItemResult struct {
	Item     Item
	Outcome  Outcome
	Attempts int
	Error    string
}

// Action applies a label to one item. Implementations should return the error
// unwrapped so that retryability can be classified.
type Action func(ctx context.Context, item Item) error

// Runner executes a labeling action over a set of items.
type Runner struct {
	// MaxConcurrent bounds the number of in-flight actions.
	MaxConcurrent int
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// BaseDelay is the backoff unit. The delay before retry n is a uniformly
	// random duration in [0, BaseDelay*2^n), full jitter.
	BaseDelay time.Duration
	// DryRun records every item as Skipped without invoking the action.
	DryRun bool

	logger zerolog.Logger
}

// NewRunner returns a Runner with the given parallelism and retry settings.
// Zero values select the defaults.
func NewRunner(maxConcurrent, maxRetries int, baseDelay time.Duration, dryRun bool) *Runner {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}
	return &Runner{
		MaxConcurrent: maxConcurrent,
		MaxRetries:    maxRetries,
		BaseDelay:     baseDelay,
		DryRun:        dryRun,
		logger:        log.WithComponent("classify"),
	}
}

// Run executes the action for every item and returns the per-item results in
// input order. Failures do not stop other items; Run returns an error only
// when the context is cancelled. Retryable failures (throttling, server
// errors) are retried up to MaxRetries with full-jitter exponential backoff.
func (r *Runner) Run(ctx context.Context, items []Item, action Action) ([]ItemResult, error) {
	results := make([]ItemResult, len(items))

	grp, ctxGrp := errgroup.WithContext(ctx)
	grp.SetLimit(r.MaxConcurrent)
	for i, item := range items {
		i, item := i, item
		grp.Go(func() error {
			if r.DryRun {
				r.logger.Info().Str("path", item.Path).Str("label", item.Label).Msg("dry run, skipping")
				results[i] = ItemResult{Item: item, Outcome: OutcomeSkipped}
				return nil
			}
			res := r.runOne(ctxGrp, item, action)
			results[i] = res
			if res.Outcome == OutcomeFailed && ctxGrp.Err() != nil {
				return ctxGrp.Err() //nolint:wrapcheck
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return results, err //nolint:wrapcheck
	}
	return results, nil
}

func (r *Runner) runOne(ctx context.Context, item Item, action Action) ItemResult {
	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= r.MaxRetries; attempt++ {
		if attempt > 0 {
			// Cancellation during backoff ends the item with the attempts
			// actually made, not the configured maximum.
			if err := r.sleep(ctx, attempt); err != nil {
				lastErr = err
				break
			}
		}
		attempts++
		err := action(ctx, item)
		if err == nil {
			return ItemResult{Item: item, Outcome: OutcomeSucceeded, Attempts: attempts}
		}
		lastErr = err
		if !retryable(err) {
			r.logger.Error().Err(err).Str("path", item.Path).Msg("labeling failed")
			return ItemResult{Item: item, Outcome: OutcomeFailed, Attempts: attempts, Error: err.Error()}
		}
		r.logger.Warn().Err(err).Str("path", item.Path).Int("attempt", attempts).Msg("retrying")
	}
	return ItemResult{Item: item, Outcome: OutcomeFailed, Attempts: attempts, Error: lastErr.Error()}
}

// sleep waits for the full-jitter backoff delay of the given attempt, or until
// the context is cancelled.
func (r *Runner) sleep(ctx context.Context, attempt int) error {
	ceiling := r.BaseDelay << uint(attempt-1)
	delay := time.Duration(rand.Int63n(int64(ceiling) + 1)) //nolint:gosec
	select {
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck
	case <-time.After(delay):
		return nil
	}
}

// retryable reports whether the labeling error is transient. Context
// cancellation is terminal.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return graph.IsRetryable(err)
}
