package retry

import (
	"context"
	"math/rand"
	"time"
)

// Policy bounds a retried call: Retries extra attempts after the first,
// exponential backoff starting at Base, sleeps capped at Max, with jitter.
type Policy struct {
	Retries int
	Base    time.Duration
	Max     time.Duration
}

// Do runs fn until it succeeds, attempts are exhausted, or ctx is done.
// The last error is returned when every attempt fails.
func Do[T any](ctx context.Context, p Policy, fn func() (T, error)) (T, error) {
	var zero T
	delay := p.Base
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	var err error
	for attempt := 0; ; attempt++ {
		var v T
		if v, err = fn(); err == nil {
			return v, nil
		}
		if attempt >= p.Retries {
			break
		}
		sleep := delay + time.Duration(rand.Int63n(int64(delay/2)+1))
		if p.Max > 0 && sleep > p.Max {
			sleep = p.Max
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(sleep):
		}
		delay *= 2
	}
	return zero, err
}
