package utils

import (
	"context"
	"sync"
	"time"
)

// WorkerPool runs jobs on at most maxWorkers goroutines. Every job after the
// first one waits gap before it starts.
type WorkerPool struct {
	gap       time.Duration
	semaphore chan struct{}
	wg        sync.WaitGroup

	mu      sync.Mutex
	started bool
	onWait  func(time.Duration)
}

// NewWorkerPool creates a WorkerPool with the given concurrency and gap.
func NewWorkerPool(maxWorkers int, gap time.Duration) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		gap:       gap,
		semaphore: make(chan struct{}, maxWorkers),
	}
}

// OnWait registers fn to be called each time a job is about to wait the gap.
func (wp *WorkerPool) OnWait(fn func(time.Duration)) {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	wp.onWait = fn
}

// Submit blocks until a worker slot is free, then runs job on it. The job
// always runs, even if ctx is cancelled during the gap; it must check ctx.
func (wp *WorkerPool) Submit(ctx context.Context, job func(ctx context.Context)) {
	wp.wg.Add(1)
	wp.semaphore <- struct{}{}

	go func() {
		defer wp.wg.Done()
		defer func() { <-wp.semaphore }()

		wp.waitGap(ctx)
		job(ctx)
	}()
}

// Wait blocks until all submitted jobs have completed.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) waitGap(ctx context.Context) {
	wp.mu.Lock()
	first := !wp.started
	wp.started = true
	onWait := wp.onWait
	wp.mu.Unlock()

	if first || wp.gap <= 0 {
		return
	}
	if onWait != nil {
		onWait(wp.gap)
	}
	_ = SleepContext(ctx, wp.gap)
}

// URLSet is a thread-safe set for tracking visited URLs.
type URLSet struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewURLSet creates an empty URLSet.
func NewURLSet() *URLSet {
	return &URLSet{seen: make(map[string]struct{})}
}

// Add returns true if the URL was newly added, false if already present.
func (s *URLSet) Add(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[url]; exists {
		return false
	}
	s.seen[url] = struct{}{}
	return true
}

// Contains returns true if the URL has already been seen.
func (s *URLSet) Contains(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.seen[url]
	return exists
}

// Size returns the number of unique URLs tracked.
func (s *URLSet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}
