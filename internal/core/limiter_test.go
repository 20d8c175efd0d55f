package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestJobLimiter_Slots(t *testing.T) {
	l := NewJobLimiter(2, time.Second)
	ctx := context.Background()

	steps := []struct {
		name       string
		do         func()
		wantActive int
	}{
		{"idle", func() {}, 0},
		{"acquire", func() { mustAcquire(t, l, ctx) }, 1},
		{"acquire again", func() { mustAcquire(t, l, ctx) }, 2},
		{"release", l.Release, 1},
		{"release again", l.Release, 0},
	}

	for _, s := range steps {
		s.do()
		st := l.Status()
		if st.Active != s.wantActive || st.Available != 2-s.wantActive || st.MaxConcurrent != 2 {
			t.Errorf("%s: Status = %+v, want %d active of 2", s.name, st, s.wantActive)
		}
	}
}

func mustAcquire(t *testing.T, l *JobLimiter, ctx context.Context) {
	t.Helper()
	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
}

func TestJobLimiter_WaitTimesOut(t *testing.T) {
	l := NewJobLimiter(1, 50*time.Millisecond)
	mustAcquire(t, l, context.Background())
	defer l.Release()

	start := time.Now()
	err := l.Acquire(context.Background())
	if !errors.Is(err, ErrTooManyJobs) {
		t.Errorf("Acquire on full limiter = %v, want ErrTooManyJobs", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("Acquire gave up after %v, want about 50ms", elapsed)
	}
}

func TestJobLimiter_CallerCancels(t *testing.T) {
	l := NewJobLimiter(1, 5*time.Second)
	mustAcquire(t, l, context.Background())
	defer l.Release()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Acquire(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Acquire = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Acquire ignored cancellation")
	}
}

func TestJobLimiter_CancelledBeforeCall(t *testing.T) {
	l := NewJobLimiter(1, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := l.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Acquire = %v, want context.Canceled even with a free slot", err)
	}
	if got := l.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount = %d, want 0", got)
	}
}

func TestJobLimiter_NeverExceedsSlots(t *testing.T) {
	const slots = 3
	l := NewJobLimiter(slots, time.Second)

	var running, peak atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			defer l.Release()

			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
		}()
	}
	wg.Wait()

	if got := peak.Load(); got > slots {
		t.Errorf("peak concurrency = %d, want <= %d", got, slots)
	}
	if got := l.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount after all jobs = %d, want 0", got)
	}
}

func TestJobLimiter_WaitForDrain(t *testing.T) {
	l := NewJobLimiter(2, time.Second)
	mustAcquire(t, l, context.Background())
	mustAcquire(t, l, context.Background())

	done := make(chan error, 1)
	go func() { done <- l.WaitForDrain(context.Background()) }()

	select {
	case <-done:
		t.Fatal("WaitForDrain returned with jobs still running")
	case <-time.After(30 * time.Millisecond):
	}

	l.Release()
	l.Release()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WaitForDrain = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitForDrain did not return after the last Release")
	}

	mustAcquire(t, l, context.Background())
	l.Release()
}

func TestJobLimiter_WaitForDrain_Deadline(t *testing.T) {
	l := NewJobLimiter(1, time.Second)
	mustAcquire(t, l, context.Background())
	defer l.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := l.WaitForDrain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForDrain = %v, want DeadlineExceeded", err)
	}
}

func TestJobLimiter_Defaults(t *testing.T) {
	l := NewJobLimiter(0, 0)

	if got := l.MaxConcurrent(); got != DefaultMaxConcurrentJobs {
		t.Errorf("MaxConcurrent = %d, want %d", got, DefaultMaxConcurrentJobs)
	}
	if l.maxWait != DefaultMaxWaitTime {
		t.Errorf("maxWait = %v, want %v", l.maxWait, DefaultMaxWaitTime)
	}
}
