package batch

import (
	"context"
	"sync"

	"github.com/sathwikv/batchq/internal/database"
	"github.com/sathwikv/batchq/internal/errs"
)

// fakeResult is the canned outcome for one SQL string.
type fakeResult struct {
	cols []string
	rows [][]any
	err  error // returned by Query instead of rows
}

// fakeConnector is an in-memory database.Connector. Results are keyed by the
// exact SQL text; the optional started/release channels let tests prove that
// a batch issues every query before any completion is awaited.
type fakeConnector struct {
	mu         sync.Mutex
	results    map[string]fakeResult
	conns      []*fakeConn
	connects   int
	connectErr error

	started chan struct{} // one send per query reaching the driver
	release chan struct{} // queries block until closed, when non-nil
}

func newFakeConnector() *fakeConnector {
	return &fakeConnector{results: map[string]fakeResult{}}
}

func (fc *fakeConnector) addResult(sql string, cols []string, rows ...[]any) {
	fc.results[sql] = fakeResult{cols: cols, rows: rows}
}

func (fc *fakeConnector) addError(sql string, err error) {
	fc.results[sql] = fakeResult{err: err}
}

func (fc *fakeConnector) Connect(_ context.Context) (database.Conn, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	fc.connects++
	if fc.connectErr != nil {
		return nil, fc.connectErr
	}

	conn := &fakeConn{id: len(fc.conns), parent: fc}
	fc.conns = append(fc.conns, conn)
	return conn, nil
}

// connectCount reports how many sessions were ever dialled.
func (fc *fakeConnector) connectCount() int {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.connects
}

// fakeConn is one fake session. It records the queries it served so tests
// can verify the index-aligned descriptor/session pairing.
type fakeConn struct {
	id     int
	parent *fakeConnector

	mu      sync.Mutex
	closed  bool
	queries []string
}

func (c *fakeConn) Ping(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errs.New(errs.ErrKindConnectionFailed, "ping on closed session")
	}
	return nil
}

func (c *fakeConn) Close(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) served() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.queries...)
}

func (c *fakeConn) Query(ctx context.Context, sql string, _ ...any) (database.Rows, error) {
	c.mu.Lock()
	c.queries = append(c.queries, sql)
	c.mu.Unlock()

	if c.parent.started != nil {
		c.parent.started <- struct{}{}
	}
	if c.parent.release != nil {
		select {
		case <-c.parent.release:
		case <-ctx.Done():
			return nil, errs.Wrap(errs.ErrKindTimeout, "query cancelled", ctx.Err())
		}
	}

	res, ok := c.parent.results[sql]
	if !ok {
		return nil, errs.Newf(errs.ErrKindQueryFailed, "no such fixture: %s", sql)
	}
	if res.err != nil {
		return nil, res.err
	}
	return &fakeRows{cols: res.cols, rows: res.rows, idx: -1}, nil
}

// fakeRows iterates a canned grid.
type fakeRows struct {
	cols []string
	rows [][]any
	idx  int
}

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.idx]
	for i := range dest {
		*(dest[i].(*any)) = row[i]
	}
	return nil
}

func (r *fakeRows) Columns() ([]string, error) { return r.cols, nil }
func (r *fakeRows) Close()                     {}
func (r *fakeRows) Err() error                 { return nil }
