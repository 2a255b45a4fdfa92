// Package store provides decorators shared by all short link store backends.
// The backends themselves live in the dynamo, postgres and memory
// subpackages.
package store

import (
	"context"
	"time"

	"github.com/sundayezeilo/georedirect/internal/errx"
	"github.com/sundayezeilo/georedirect/internal/metrics"
	"github.com/sundayezeilo/georedirect/internal/redirect"
)

// DefaultLookupTimeout bounds a single store read.
const DefaultLookupTimeout = 300 * time.Millisecond

type timeoutStore struct {
	next    redirect.Store
	timeout time.Duration
}

// WithTimeout bounds every lookup on next by d. A lookup that runs out of
// time fails with errx.Timeout. d <= 0 uses DefaultLookupTimeout.
func WithTimeout(next redirect.Store, d time.Duration) redirect.Store {
	if d <= 0 {
		d = DefaultLookupTimeout
	}
	return &timeoutStore{next: next, timeout: d}
}

func (s *timeoutStore) Get(ctx context.Context, shortID string) (redirect.Record, bool, error) {
	const op = "store.Get"

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rec, found, err := s.next.Get(ctx, shortID)
	if err != nil {
		if ctx.Err() != nil && !errx.Is(err, errx.Timeout) {
			return redirect.Record{}, false, errx.E(op, errx.Timeout, err)
		}
		return redirect.Record{}, false, err
	}
	return rec, found, nil
}

type instrumentedStore struct {
	next    redirect.Store
	backend string
}

// Instrument records the latency of every lookup on next, labelled with
// backend and hit, miss or error.
func Instrument(next redirect.Store, backend string) redirect.Store {
	return &instrumentedStore{next: next, backend: backend}
}

func (s *instrumentedStore) Get(ctx context.Context, shortID string) (redirect.Record, bool, error) {
	start := time.Now()
	rec, found, err := s.next.Get(ctx, shortID)

	result := "hit"
	switch {
	case err != nil:
		result = "error"
	case !found:
		result = "miss"
	}
	metrics.StoreLookupDurationSeconds.WithLabelValues(s.backend, result).Observe(time.Since(start).Seconds())

	return rec, found, err
}
