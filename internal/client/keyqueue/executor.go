// Package keyqueue runs jobs one at a time per key, in submission order.
// Jobs for keys that hash to different shards run in parallel.
package keyqueue

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"
)

// JobFunc is a unit of work.
type JobFunc func(ctx context.Context) error

type queuedJob struct {
	ctx context.Context
	job JobFunc
}

type Executor struct {
	cfg    Config
	queues []chan queuedJob

	done   chan struct{}
	closed atomic.Bool

	wg sync.WaitGroup
}

func New(cfg Config) *Executor {
	cfg = cfg.withDefaults()
	e := &Executor{
		cfg:    cfg,
		queues: make([]chan queuedJob, cfg.Shards),
		done:   make(chan struct{}),
	}
	for i := range cfg.Shards {
		ch := make(chan queuedJob, cfg.QueueSize)
		e.queues[i] = ch
		e.wg.Add(1)
		go e.runWorker(i, ch)
	}
	return e
}

// Submit enqueues job behind every job previously submitted for key.
// A job whose ctx is done by the time it reaches the head of the queue is
// skipped.
func (e *Executor) Submit(ctx context.Context, key string, job JobFunc) error {
	if e.closed.Load() {
		return ErrExecutorClosed
	}
	select {
	case <-e.done:
		return ErrExecutorClosed
	default:
	}

	shard := e.shardFor(key)
	ch := e.queues[shard]

	timer := time.NewTimer(e.cfg.EnqueueTimeout)
	defer timer.Stop()

	select {
	case ch <- queuedJob{ctx: ctx, job: job}:
		submissionsTotal.WithLabelValues(labelFor(shard)).Inc()
		return nil
	case <-e.done:
		return ErrExecutorClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		queueFullTotal.WithLabelValues(labelFor(shard)).Inc()
		return &QueueFullError{Shard: shard, Length: len(ch), Capacity: cap(ch)}
	}
}

// Do submits fn and waits for its result.
func (e *Executor) Do(ctx context.Context, key string, fn JobFunc) error {
	result := make(chan error, 1)
	err := e.Submit(ctx, key, func(jctx context.Context) error {
		err := safeRun(jctx, fn)
		result <- err
		return err
	})
	if err != nil {
		return err
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Barrier waits until every job submitted for key before the call has run.
func (e *Executor) Barrier(ctx context.Context, key string) error {
	return e.Do(ctx, key, func(context.Context) error { return nil })
}

// Stop drains queued jobs and waits for the workers. It is idempotent.
func (e *Executor) Stop() {
	if !e.closed.CompareAndSwap(false, true) {
		return
	}
	close(e.done)
	e.wg.Wait()
}

func (e *Executor) Close() error {
	e.Stop()
	return nil
}

func (e *Executor) runWorker(idx int, ch <-chan queuedJob) {
	defer e.wg.Done()
	label := labelFor(idx)

	for {
		select {
		case qj := <-ch:
			e.run(label, qj)
			queueDepth.WithLabelValues(label).Set(float64(len(ch)))

		case <-e.done:
			for {
				select {
				case qj := <-ch:
					e.run(label, qj)
				default:
					queueDepth.WithLabelValues(label).Set(0)
					return
				}
			}
		}
	}
}

func (e *Executor) run(label string, qj queuedJob) {
	if qj.job == nil {
		return
	}
	if err := qj.ctx.Err(); err != nil {
		e.handleError(err)
		return
	}
	start := time.Now()
	err := safeRun(qj.ctx, qj.job)
	runDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	e.handleError(err)
}

func safeRun(ctx context.Context, fn JobFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrJobPanicked, r)
		}
	}()
	return fn(ctx)
}

func (e *Executor) handleError(err error) {
	if err == nil || e.cfg.ErrorHandler == nil {
		return
	}
	defer func() { _ = recover() }()
	e.cfg.ErrorHandler(err)
}

func (e *Executor) shardFor(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(e.cfg.Shards))
}
