package batch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sathwikv/batchq/internal/database"
	"github.com/sathwikv/batchq/internal/errs"
)

// Execute dispatches every queued query concurrently and blocks until all of
// them have produced a result or the batch has failed.
//
// The queue is consumed up front, so it is empty by the time Execute returns
// regardless of outcome, and callbacks that enqueue follow-up queries feed
// the next batch rather than the running one. Descriptor i runs on the i-th
// pooled session; all queries are issued eagerly before any completion is
// awaited, and callbacks fire in driver-completion order — no ordering is
// guaranteed between them.
//
// Failure is batch-granular: the first error is returned, the remaining
// in-flight queries are cancelled through the shared context, and the caller
// must assume some subset of callbacks never fired. Sessions whose driver
// reported a connection-level failure are closed and dropped from the pool.
func (c *Client) Execute(ctx context.Context) error {
	c.mu.Lock()

	pending := c.queue.drain()
	if len(pending) == 0 {
		c.mu.Unlock()
		return nil
	}

	// Usage errors fail fast, before any session is dialled.
	for _, d := range pending {
		if err := d.validate(); err != nil {
			c.mu.Unlock()
			return err
		}
	}

	if err := c.pool.ensure(ctx, len(pending)); err != nil {
		c.mu.Unlock()
		return err
	}

	// Fix the session assignment while still holding the lock; the pool is
	// read-only for the rest of the batch.
	conns := make([]database.Conn, len(pending))
	for i := range pending {
		conns[i] = c.pool.get(i)
	}
	c.log.Debugf("dispatching batch of %d queries over %d pooled connections",
		len(pending), c.pool.size())
	c.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	results := make([]error, len(pending))

	for i, d := range pending {
		g.Go(func() error {
			err := c.run(gctx, d, conns[i])
			results[i] = err
			return err
		})
	}

	err := g.Wait()

	// A session whose driver reported a broken link must not be reused.
	for i, rerr := range results {
		if rerr != nil && errs.IsConnectionFailed(rerr) {
			c.mu.Lock()
			c.pool.invalidate(ctx, conns[i])
			c.mu.Unlock()
		}
	}

	// err is already an *errs.Error from the driver or the shaping layer;
	// re-wrapping would hide its kind from the Is* predicates.
	return err
}

// run executes one descriptor on its assigned session: query, materialise,
// shape, callback. The callback is invoked exactly once, and only when every
// preceding step succeeded.
func (c *Client) run(ctx context.Context, d *Descriptor, conn database.Conn) error {
	rows, err := conn.Query(ctx, d.SQL, d.Args...)
	if err != nil {
		return err
	}

	grid, err := database.ReadGrid(rows)
	if err != nil {
		return err
	}

	return d.deliver(grid, conn)
}
