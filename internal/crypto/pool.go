package crypto

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of concurrent bcrypt computations. Callers wait for a
// slot on their own goroutine, so unrelated requests keep progressing while
// the CPU-bound work runs.
type Pool struct {
	h   *BcryptHasher
	sem *semaphore.Weighted
}

// NewPool wraps h with at most workers concurrent operations.
// workers <= 0 means GOMAXPROCS.
func NewPool(h *BcryptHasher, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{h: h, sem: semaphore.NewWeighted(int64(workers))}
}

// Hash computes a password hash once a slot is free.
func (p *Pool) Hash(ctx context.Context, password string) (string, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer p.sem.Release(1)
	return p.h.Hash(password)
}

// Verify checks password against hash once a slot is free. The error is
// non-nil only when ctx ends before a slot is acquired.
func (p *Pool) Verify(ctx context.Context, password, hash string) (bool, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer p.sem.Release(1)
	return p.h.Verify(password, hash), nil
}
