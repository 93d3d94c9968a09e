// Package batch provides a bounded concurrent executor for independent
// units of work against rate-limited providers. At most Concurrency units
// are in flight at once; transient rate-limit failures are retried with
// exponential backoff; results always land at the index of their input.
package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency is a provider-friendly fan-out width.
const DefaultConcurrency = 2

// DefaultRetries is the number of additional attempts after the first.
const DefaultRetries = 3

// NoRetries disables retrying entirely; every unit gets a single attempt.
const NoRetries = -1

// baseBackoff is the first retry delay; it doubles per attempt.
const baseBackoff = 500 * time.Millisecond

// Progress reports how many items of a run have resolved so far.
// Done increases by exactly one per callback invocation.
type Progress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// WorkFunc executes one unit of work. The index is the item's position in
// the input slice and therefore its result slot.
type WorkFunc[T, R any] func(ctx context.Context, item T, index int) (R, error)

// Options configures a batch run.
type Options struct {
	// Concurrency is the maximum number of in-flight units. Defaults to
	// DefaultConcurrency when < 1.
	Concurrency int
	// Retries is how many times a unit is re-attempted after a failure
	// classified as retryable by IsRetryable. The zero value means
	// DefaultRetries; pass NoRetries to give each unit a single attempt.
	Retries int
	// OnProgress, if set, is invoked after each item resolves.
	OnProgress func(Progress)
	// Stop is checked before starting each item. When it returns true,
	// unstarted items are not executed. Only honored by RunLenient, where
	// skipped slots carry an explanatory failure. In-flight items are
	// never interrupted.
	Stop func() bool
}

func (o Options) withDefaults() Options {
	if o.Concurrency < 1 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Retries == 0 {
		o.Retries = DefaultRetries
	} else if o.Retries < 0 {
		o.Retries = 0
	}
	return o
}

// Result is one slot of a lenient run: either a value or a captured
// failure reason.
type Result[R any] struct {
	Value R      `json:"value,omitempty"`
	OK    bool   `json:"ok"`
	Err   string `json:"error,omitempty"`
}

// Run executes fn over all items in strict mode: the first non-retryable
// (or retry-exhausted) failure aborts the batch and is returned. Items
// already in flight are allowed to finish; their results are discarded
// with the rest of the batch. On success the returned slice has one entry
// per input, at the input's index.
func Run[T, R any](ctx context.Context, items []T, fn WorkFunc[T, R], opts Options) ([]R, error) {
	opts = opts.withDefaults()

	results := make([]R, len(items))
	sem := semaphore.NewWeighted(int64(opts.Concurrency))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		done     int
		firstErr error
	)

	for i := range items {
		mu.Lock()
		failed := firstErr != nil
		mu.Unlock()
		if failed {
			break
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			break
		}

		// A unit that failed while we were waiting for a slot has already
		// recorded firstErr (it releases its slot only afterwards).
		mu.Lock()
		failed = firstErr != nil
		mu.Unlock()
		if failed {
			sem.Release(1)
			break
		}

		wg.Add(1)
		go func(i int, item T) {
			defer wg.Done()
			defer sem.Release(1)

			value, err := runWithRetry(ctx, fn, item, i, opts.Retries)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("item %d: %w", i, err)
				}
				return
			}
			results[i] = value
			done++
			if opts.OnProgress != nil {
				opts.OnProgress(Progress{Done: done, Total: len(items)})
			}
		}(i, items[i])
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

// RunLenient executes fn over all items, capturing each failure into its
// item's slot instead of aborting. The returned slice always has exactly
// one entry per input. Progress fires after every item, failed or not.
func RunLenient[T, R any](ctx context.Context, items []T, fn WorkFunc[T, R], opts Options) []Result[R] {
	opts = opts.withDefaults()

	results := make([]Result[R], len(items))
	sem := semaphore.NewWeighted(int64(opts.Concurrency))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)

	resolve := func(i int, res Result[R]) {
		mu.Lock()
		defer mu.Unlock()
		results[i] = res
		done++
		if opts.OnProgress != nil {
			opts.OnProgress(Progress{Done: done, Total: len(items)})
		}
	}

	for i := range items {
		if opts.Stop != nil && opts.Stop() {
			resolve(i, Result[R]{Err: "not started: run stopped"})
			continue
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			resolve(i, Result[R]{Err: truncateReason(err.Error())})
			continue
		}

		wg.Add(1)
		go func(i int, item T) {
			defer wg.Done()
			defer sem.Release(1)

			value, err := runWithRetry(ctx, fn, item, i, opts.Retries)
			if err != nil {
				resolve(i, Result[R]{Err: truncateReason(err.Error())})
				return
			}
			resolve(i, Result[R]{Value: value, OK: true})
		}(i, items[i])
	}

	wg.Wait()
	return results
}

// runWithRetry attempts fn, re-attempting up to retries times when the
// failure is a transient rate-limit condition. Backoff doubles per attempt
// and honors context cancellation.
func runWithRetry[T, R any](ctx context.Context, fn WorkFunc[T, R], item T, index, retries int) (R, error) {
	var zero R

	for attempt := 0; ; attempt++ {
		value, err := fn(ctx, item, index)
		if err == nil {
			return value, nil
		}
		if !IsRetryable(err) || attempt >= retries {
			return zero, err
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(baseBackoff << uint(attempt)):
		}
	}
}

// maxReasonLength bounds captured failure reasons so a provider's error
// dump doesn't balloon user-facing payloads.
const maxReasonLength = 200

func truncateReason(reason string) string {
	if len(reason) <= maxReasonLength {
		return reason
	}
	return reason[:maxReasonLength]
}
