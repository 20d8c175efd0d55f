package core

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTooManyJobs is returned when every job slot stayed busy for the whole
// wait period. Clients should retry after a short delay.
var ErrTooManyJobs = errors.New("too many concurrent jobs, please try again later")

const (
	DefaultMaxConcurrentJobs = 4
	DefaultMaxWaitTime       = 30 * time.Second
)

// JobLimiter bounds the number of chunk and combine jobs running at once.
// A job keeps its decoded tables in memory until it finishes, so the slot
// count is effectively a memory budget.
type JobLimiter struct {
	sem     *semaphore.Weighted
	slots   int64
	maxWait time.Duration
	active  atomic.Int64
}

// NewJobLimiter returns a limiter with maxConcurrent slots. Acquire gives up
// after maxWait. Non-positive arguments select the defaults.
func NewJobLimiter(maxConcurrent int, maxWait time.Duration) *JobLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentJobs
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &JobLimiter{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		slots:   int64(maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting at most maxWait. It returns ctx.Err() if ctx
// ends first and ErrTooManyJobs if the wait runs out. Pair every successful
// Acquire with a Release.
func (l *JobLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyJobs
	}
	l.active.Add(1)
	return nil
}

// Release returns a slot. Releasing more slots than were acquired panics.
func (l *JobLimiter) Release() {
	l.active.Add(-1)
	l.sem.Release(1)
}

// ActiveCount returns the number of running jobs.
func (l *JobLimiter) ActiveCount() int { return int(l.active.Load()) }

// MaxConcurrent returns the slot count.
func (l *JobLimiter) MaxConcurrent() int { return int(l.slots) }

// Available returns the number of free slots.
func (l *JobLimiter) Available() int { return int(l.slots - l.active.Load()) }

// WaitForDrain blocks until every running job has released its slot. It
// takes all slots while it waits, so jobs arriving during shutdown queue
// behind it instead of starting.
func (l *JobLimiter) WaitForDrain(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, l.slots); err != nil {
		return err
	}
	l.sem.Release(l.slots)
	return nil
}

// JobLimiterStatus is a snapshot reported by the health endpoint.
type JobLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current slot usage.
func (l *JobLimiter) Status() JobLimiterStatus {
	active := l.ActiveCount()
	return JobLimiterStatus{
		Active:        active,
		Available:     int(l.slots) - active,
		MaxConcurrent: int(l.slots),
	}
}
