package auth

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/ayush/auth-server/internal/models"
)

// ErrPoolClosed is returned when work is submitted after Close.
var ErrPoolClosed = errors.New("hash pool closed")

type hashResult struct {
	hash string
	ok   bool
	err  error
}

type hashJob struct {
	run    func() hashResult
	result chan hashResult
}

// HashPool runs password hashing on a fixed set of worker goroutines so the
// CPU-heavy work stays off the request goroutines. A submitted job always runs
// to completion; the caller waits for its result.
type HashPool struct {
	hasher PasswordHasher
	jobs   chan hashJob

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewHashPool starts workers goroutines. workers < 1 means runtime.NumCPU().
func NewHashPool(hasher PasswordHasher, workers int) *HashPool {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	p := &HashPool{
		hasher: hasher,
		jobs:   make(chan hashJob),
	}
	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

func (p *HashPool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		job.result <- job.run()
	}
}

// Hash hashes pw on a worker.
func (p *HashPool) Hash(ctx context.Context, pw models.Password) (string, error) {
	res, err := p.submit(ctx, func() hashResult {
		h, err := p.hasher.Hash(pw)
		return hashResult{hash: h, err: err}
	})
	if err != nil {
		return "", err
	}
	return res.hash, res.err
}

// Verify checks pw against encoded on a worker.
func (p *HashPool) Verify(ctx context.Context, pw models.Password, encoded string) (bool, error) {
	res, err := p.submit(ctx, func() hashResult {
		ok, err := p.hasher.Verify(pw, encoded)
		return hashResult{ok: ok, err: err}
	})
	if err != nil {
		return false, err
	}
	return res.ok, res.err
}

// submit blocks until a worker accepts the job or ctx is done. Once accepted,
// the result is awaited regardless of ctx.
func (p *HashPool) submit(ctx context.Context, run func() hashResult) (hashResult, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return hashResult{}, ErrPoolClosed
	}

	job := hashJob{run: run, result: make(chan hashResult, 1)}
	select {
	case p.jobs <- job:
	case <-ctx.Done():
		return hashResult{}, ctx.Err()
	}
	return <-job.result, nil
}

// Close stops accepting work and waits for running jobs to finish.
func (p *HashPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
