// Package workerpool runs bounded background jobs on an ants goroutine pool.
package workerpool

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

// Config defines the pool sizing.
type Config struct {
	Capacity       int
	ExpiryDuration time.Duration
	Nonblocking    bool
}

// DefaultConfig suits a handful of long running sync jobs.
func DefaultConfig() Config {
	return Config{
		Capacity:       4,
		ExpiryDuration: time.Minute,
	}
}

// Pool wraps ants with logging and a fan-out helper.
type Pool struct {
	name   string
	pool   *ants.Pool
	logger *slog.Logger
}

// New creates a named pool.
func New(name string, cfg Config, logger *slog.Logger) (*Pool, error) {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultConfig().Capacity
	}
	if cfg.ExpiryDuration <= 0 {
		cfg.ExpiryDuration = DefaultConfig().ExpiryDuration
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "workerpool", "pool", name)
	pool, err := ants.NewPool(cfg.Capacity,
		ants.WithExpiryDuration(cfg.ExpiryDuration),
		ants.WithNonblocking(cfg.Nonblocking),
		ants.WithPanicHandler(func(p any) {
			log.Error("worker panic recovered", "panic", p)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create ants pool %s: %w", name, err)
	}
	return &Pool{name: name, pool: pool, logger: log}, nil
}

// Submit schedules task on the pool.
func (p *Pool) Submit(task func()) error {
	return p.pool.Submit(task)
}

// Run executes every job on the pool and waits for all of them. The returned
// slice holds one error slot per job in submission order.
func (p *Pool) Run(ctx context.Context, jobs ...func(context.Context) error) []error {
	errs := make([]error, len(jobs))
	var wg sync.WaitGroup
	for i, job := range jobs {
		i, job := i, job
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("job panicked: %v", r)
				}
			}()
			errs[i] = job(ctx)
		})
		if err != nil {
			wg.Done()
			errs[i] = fmt.Errorf("submit job: %w", err)
		}
	}
	wg.Wait()
	return errs
}

// Running reports the number of busy workers.
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Release stops the pool.
func (p *Pool) Release() {
	p.pool.Release()
	p.logger.Debug("worker pool released")
}
