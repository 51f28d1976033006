package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNetwork marks backend failures caused by the network (timeouts,
// refused or dropped connections).
var ErrNetwork = errors.New("network error")

type transientError struct{ err error }

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

// Retryable marks err as transient so a [RetryPolicy] tries again. A nil err
// stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return transientError{err: err}
}

// IsRetryable reports whether err, or anything it wraps, was marked with
// [Retryable].
func IsRetryable(err error) bool {
	var t transientError
	return errors.As(err, &t)
}

// RetryPolicy bounds how a remote backend retries transient failures.
type RetryPolicy struct {
	// Attempts is the total number of tries, including the first.
	Attempts int

	// BaseDelay is the wait before the second try. It doubles after each
	// further failure.
	BaseDelay time.Duration
}

// DefaultRetryPolicy tries three times, waiting one then two seconds.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, BaseDelay: time.Second}

// Do runs fn until it succeeds, returns an error not marked [Retryable], or
// runs out of attempts; the last error is returned. Waiting stops early with
// ctx.Err() when ctx ends.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := max(p.Attempts, 1)
	delay := p.BaseDelay
	for try := 1; ; try++ {
		err := fn()
		if err == nil || !IsRetryable(err) || try == attempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}
