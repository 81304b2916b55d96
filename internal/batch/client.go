package batch

import (
	"context"
	"sync"

	"github.com/sathwikv/batchq/internal/database"
	"github.com/sathwikv/batchq/internal/logger"
)

// Client accumulates read queries and executes them as concurrent batches
// over its own pool of database sessions.
//
// The Queue* methods perform no I/O: they record a descriptor and return
// immediately. Execute dispatches everything queued since the previous batch
// and blocks until the whole batch has completed or failed.
//
// A Client is safe for concurrent use, but the intended shape is one logical
// caller driving enqueue → Execute cycles; callbacks of one batch may run
// concurrently with each other.
type Client struct {
	mu    sync.Mutex
	queue queue
	pool  pool
	log   *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the structured logger used for pool and dispatch events.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a Client that dials sessions through the given connector.
// No connection is established until the first non-empty Execute (or a
// RawConn call) needs one.
func New(connector database.Connector, opts ...Option) *Client {
	c := &Client{
		pool: pool{connector: connector},
		log:  logger.New(nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QueueRow enqueues a query whose first matching row is delivered as a
// column→value map. The callback receives nil when no row matched.
func (c *Client) QueueRow(sql string, fn RowFunc, args ...any) {
	c.push(&Descriptor{SQL: sql, Mode: ShapeRow, Column: allColumns, Args: args, onRow: fn})
}

// QueueColumn enqueues a query delivered as a flat value list: each row's
// columns appended in row order. Selecting a single column yields that
// column across all rows.
func (c *Client) QueueColumn(sql string, fn ColumnFunc, args ...any) {
	c.push(&Descriptor{SQL: sql, Mode: ShapeColumn, Column: allColumns, Args: args, onColumn: fn})
}

// QueueColumnIndex is QueueColumn restricted to the column at the given
// zero-based index of the select list.
func (c *Client) QueueColumnIndex(sql string, column int, fn ColumnFunc, args ...any) {
	c.push(&Descriptor{SQL: sql, Mode: ShapeColumn, Column: column, Args: args, onColumn: fn})
}

// QueueKeyedRows enqueues a query delivered as a map of rows keyed by the
// stringified value of keyField in each row. keyField must name a column of
// the select list; violations surface as usage errors from Execute.
func (c *Client) QueueKeyedRows(sql, keyField string, fn KeyedRowsFunc, args ...any) {
	c.push(&Descriptor{SQL: sql, Mode: ShapeKeyedRows, KeyField: keyField, Column: allColumns, Args: args, onKeyed: fn})
}

// QueueRows enqueues a query delivered as a list of row value lists.
func (c *Client) QueueRows(sql string, fn RowsFunc, args ...any) {
	c.push(&Descriptor{SQL: sql, Mode: ShapeRows, Column: allColumns, Args: args, onRows: fn})
}

func (c *Client) push(d *Descriptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue.push(d)
}

// Cancel discards every pending descriptor without running its query or
// invoking its callback. Idempotent; has no effect on a batch already
// dispatched by Execute.
func (c *Client) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n := c.queue.len(); n > 0 {
		c.log.Debugf("cancelling %d pending queries", n)
	}
	c.queue.clear()
}

// RawConn returns one live pooled session, bypassing the queue, for
// collaborators that need direct driver access (e.g. schema setup in tests).
// The session remains owned by the pool; callers must not close it.
func (c *Client) RawConn(ctx context.Context) (database.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.pool.ensure(ctx, 1); err != nil {
		// Connection failures abandon all pending work.
		c.queue.clear()
		return nil, err
	}
	return c.pool.get(0), nil
}

// QueueLen reports the number of queries waiting for the next Execute.
func (c *Client) QueueLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.len()
}

// PoolSize reports the number of live sessions held by the client.
func (c *Client) PoolSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pool.size()
}

// Close discards any pending queue and terminates every pooled session.
// The client must not be used afterwards.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue.clear()
	return c.pool.closeAll(ctx)
}
