package hashing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rolegate/rolegate/internal/core/ports"
	"github.com/rolegate/rolegate/internal/metrics"
)

const (
	defaultWorkers = 4
	queueBuffer    = 64
)

// ErrPoolStopped is returned for jobs submitted after the workers exited.
var ErrPoolStopped = errors.New("hashing: pool stopped")

// Pool runs hash and compare calls on a fixed set of workers so that a burst
// of logins cannot occupy every CPU with bcrypt at once. Callers block until
// their job finishes or their context is done.
type Pool struct {
	hasher  ports.PasswordHasher
	jobs    chan job
	workers int
	log     zerolog.Logger

	running sync.WaitGroup
	stopped chan struct{}
}

type job struct {
	ctx  context.Context
	op   string
	run  func() error
	done chan error
}

// NewPool wraps hasher with numWorkers workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewPool(numWorkers int, hasher ports.PasswordHasher, log zerolog.Logger) *Pool {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &Pool{
		hasher:  hasher,
		jobs:    make(chan job, queueBuffer),
		workers: numWorkers,
		log:     log,
		stopped: make(chan struct{}),
	}
}

// Start launches the workers. They stop when ctx is cancelled, after
// finishing the job at hand; queued and later jobs fail with ErrPoolStopped.
func (p *Pool) Start(ctx context.Context) {
	p.running.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func(id int) {
			defer p.running.Done()
			p.runWorker(ctx, id)
		}(i)
	}
	go func() {
		<-ctx.Done()
		p.running.Wait()
		close(p.stopped)
		p.drain()
	}()
}

func (p *Pool) drain() {
	for {
		select {
		case j := <-p.jobs:
			j.done <- ErrPoolStopped
		default:
			return
		}
	}
}

func (p *Pool) Hash(ctx context.Context, plaintext string) (string, error) {
	var out string
	err := p.submit(ctx, "hash", func() error {
		h, err := p.hasher.Hash(ctx, plaintext)
		out = h
		return err
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

func (p *Pool) Compare(ctx context.Context, hash, plaintext string) error {
	return p.submit(ctx, "compare", func() error {
		return p.hasher.Compare(ctx, hash, plaintext)
	})
}

func (p *Pool) submit(ctx context.Context, op string, run func() error) error {
	select {
	case <-p.stopped:
		return ErrPoolStopped
	default:
	}

	j := job{ctx: ctx, op: op, run: run, done: make(chan error, 1)}
	select {
	case p.jobs <- j:
		metrics.HashQueueDepth.Set(float64(len(p.jobs)))
	case <-p.stopped:
		return ErrPoolStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-j.done:
		return err
	case <-p.stopped:
		// Workers reply before exiting, so a finished job has its result waiting.
		select {
		case err := <-j.done:
			return err
		default:
			return ErrPoolStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-p.jobs:
			metrics.HashQueueDepth.Set(float64(len(p.jobs)))
			if err := j.ctx.Err(); err != nil {
				j.done <- err
				continue
			}
			start := time.Now()
			err := j.run()
			metrics.HashDuration.WithLabelValues(j.op).Observe(time.Since(start).Seconds())
			if err != nil {
				p.log.Debug().Err(err).Str("op", j.op).Int("worker_id", id).Msg("hash job failed")
			}
			j.done <- err
		}
	}
}

var _ ports.PasswordHasher = (*Pool)(nil)
var _ ports.PasswordHasher = (*Bcrypt)(nil)
