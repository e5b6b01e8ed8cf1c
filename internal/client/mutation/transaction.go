// Package mutation applies optimistic edits to the moment cache and
// reconciles them with the record store.
package mutation

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/daybook/internal/client/cache"
)

// Transaction is one optimistic edit. Apply changes the cache
// speculatively, Remote performs the server call and Commit folds the
// server's answer into the cache. Apply and Commit run with the cache
// lane held; Remote's context is not cancelled by the caller.
type Transaction[T any] struct {
	Name   string
	Apply  func() error
	Remote func(ctx context.Context) (T, error)
	Commit func(T) error
}

// Run executes tx in the coordinator's lane. On a remote failure the cache
// is restored to the exact snapshot taken before Apply.
//
// If ctx ends while tx is still queued, tx is dropped and the error has
// StateIdle. If ctx ends after Apply, Run returns early with StatePending
// and the mutation still resolves in the background.
func Run[T any](ctx context.Context, c *Coordinator, tx Transaction[T]) (T, error) {
	var (
		zero   T
		result T
		state  atomic.Int32
	)

	err := c.cache.Queue().Do(ctx, c.cache.Key(), func(context.Context) error {
		snap := c.cache.Snapshot()
		c.begin()
		state.Store(int32(StatePending))
		defer func() {
			c.end()
			mutationsTotal.WithLabelValues(tx.Name, State(state.Load()).String()).Inc()
		}()

		if tx.Apply != nil {
			if err := tx.Apply(); err != nil {
				if !errors.Is(err, cache.ErrCorrupted) {
					c.cache.Restore(snap)
				}
				state.Store(int32(StateRolledBack))
				return err
			}
		}

		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.remoteTimeout)
		defer cancel()
		start := time.Now()
		v, err := tx.Remote(rctx)
		remoteDuration.WithLabelValues(tx.Name).Observe(time.Since(start).Seconds())
		if err != nil {
			c.cache.Restore(snap)
			state.Store(int32(StateRolledBack))
			return err
		}

		result = v
		state.Store(int32(StateCommitted))
		if tx.Commit != nil {
			return tx.Commit(v)
		}
		return nil
	})

	st := State(state.Load())
	switch {
	case err == nil:
		return result, nil
	case errors.Is(err, cache.ErrCorrupted):
		c.recover(ctx, tx.Name, err)
		if st == StateCommitted {
			// the server accepted it; only the local view was lost
			return result, nil
		}
	}
	return zero, newError(tx.Name, st, err)
}

// recover throws the cache away and loads page one again. It runs outside
// the lane so the reload can queue behind the current job.
func (c *Coordinator) recover(ctx context.Context, op string, cause error) {
	c.log.Warn(ctx, "cache corrupted, reloading", "op", op, "error", cause)
	c.cache.Invalidate()
	go func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.remoteTimeout)
		defer cancel()
		if err := c.cache.LoadNextPage(rctx); err != nil {
			c.log.Warn(rctx, "reload after corruption failed", "error", err)
		}
	}()
}
