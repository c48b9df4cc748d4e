package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/voicediary/internal/logging"
	"golang.org/x/sync/errgroup"
)

// ErrPoolClosed is returned by Enqueue once the pool has stopped.
var ErrPoolClosed = errors.New("pipeline pool closed")

// Processor drives one entry to completion.
type Processor interface {
	Process(ctx context.Context, entryID string) error
}

// UnfinishedSource lists entries that have not reached a terminal status.
type UnfinishedSource interface {
	SelectUnfinished(ctx context.Context) ([]string, error)
}

// Pool runs entries through a Processor on a fixed number of workers.
// An entry id that is already queued or running is not queued again.
type Pool struct {
	proc    Processor
	source  UnfinishedSource
	workers int
	queue   chan string
	done    chan struct{}
	once    sync.Once
	log     logging.Logger

	mu      sync.Mutex
	pending map[string]struct{}
}

// NewPool creates a pool with the given worker count and queue capacity.
func NewPool(proc Processor, source UnfinishedSource, workers, queueSize int, log logging.Logger) *Pool {
	return &Pool{
		proc:    proc,
		source:  source,
		workers: max(workers, 1),
		queue:   make(chan string, max(queueSize, 0)),
		done:    make(chan struct{}),
		log:     log.With("module", "pool"),
		pending: map[string]struct{}{},
	}
}

// Enqueue schedules the entry. It blocks while the queue is full, until
// ctx is done or the pool stops.
func (p *Pool) Enqueue(ctx context.Context, entryID string) error {
	p.mu.Lock()
	if _, ok := p.pending[entryID]; ok {
		p.mu.Unlock()
		return nil
	}
	p.pending[entryID] = struct{}{}
	p.mu.Unlock()

	select {
	case p.queue <- entryID:
		return nil
	case <-ctx.Done():
		p.release(entryID)
		return ctx.Err()
	case <-p.done:
		p.release(entryID)
		return ErrPoolClosed
	}
}

func (p *Pool) release(entryID string) {
	p.mu.Lock()
	delete(p.pending, entryID)
	p.mu.Unlock()
}

// Recover queues every unfinished entry. Called once at startup, after Run.
func (p *Pool) Recover(ctx context.Context) error {
	ids, err := p.source.SelectUnfinished(ctx)
	if err != nil {
		return fmt.Errorf("select unfinished entries: %w", err)
	}
	for _, id := range ids {
		if err := p.Enqueue(ctx, id); err != nil {
			return err
		}
	}
	p.log.Info(ctx, "recovered unfinished entries", "count", len(ids))
	return nil
}

// Run starts the workers and blocks until ctx is done and every worker has
// finished its current entry.
func (p *Pool) Run(ctx context.Context) error {
	defer p.once.Do(func() { close(p.done) })

	p.log.Info(ctx, "pipeline workers started", "workers", p.workers, "queue", cap(p.queue))

	var g errgroup.Group
	for range p.workers {
		g.Go(func() error {
			p.work(ctx)
			return nil
		})
	}
	err := g.Wait()
	p.log.Info(ctx, "pipeline workers stopped")
	return err
}

func (p *Pool) work(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case id := <-p.queue:
			p.run(ctx, id)
		}
	}
}

func (p *Pool) run(ctx context.Context, entryID string) {
	defer p.release(entryID)
	defer func() {
		if r := recover(); r != nil {
			p.log.Error(ctx, "panic while processing entry", "entry_id", entryID, "panic", r)
		}
	}()

	if err := p.proc.Process(ctx, entryID); err != nil {
		p.log.Error(ctx, "entry left unfinished", "entry_id", entryID, "error", err)
	}
}
