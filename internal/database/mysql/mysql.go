package mysql

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql" // register "mysql" driver
	"github.com/sathwikv/batchq/internal/database"
	"github.com/sathwikv/batchq/internal/errs"
)

// Connector dials dedicated MySQL sessions.
//
// database/sql pools internally, so the Connector keeps one lazily-opened
// *sql.DB and checks out a pinned *sql.Conn per Connect call. Each checked-out
// session stays dedicated to its caller until Close — which is what the batch
// client needs: one session per concurrently dispatched query.
type Connector struct {
	cfg *database.Config

	mu sync.Mutex
	db *sql.DB
}

// NewConnector returns a Connector for the DSN in cfg.
// No connection is established until Connect is called.
func NewConnector(cfg *database.Config) *Connector {
	return &Connector{cfg: cfg}
}

// Connect checks out a new dedicated session and validates it with a ping.
func (c *Connector) Connect(ctx context.Context) (database.Conn, error) {
	db, err := c.open()
	if err != nil {
		return nil, err
	}

	if c.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.ConnectTimeout)
		defer cancel()
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, mapError(err, "failed to connect")
	}

	mc := &Conn{conn: conn}
	if err := mc.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return mc, nil
}

// open initialises the shared *sql.DB on first use.
// MaxIdleConns is zeroed so sessions released by Close are not silently
// recycled into later Connect calls.
func (c *Connector) open() (*sql.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return c.db, nil
	}

	db, err := sql.Open("mysql", c.cfg.DSN)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid DSN", err)
	}
	db.SetMaxIdleConns(0)

	c.db = db
	return db, nil
}

// Close releases the shared database handle. Safe before the first Connect
// and idempotent. Sessions already checked out stay usable until their own
// Close.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db == nil {
		return nil
	}
	db := c.db
	c.db = nil

	if err := db.Close(); err != nil {
		return errs.Wrap(errs.ErrKindConnectionFailed, "failed to close database handle", err)
	}
	return nil
}

// Conn is one live MySQL session. It implements database.Conn.
type Conn struct {
	conn *sql.Conn
}

func (c *Conn) Ping(ctx context.Context) error {
	if err := c.conn.PingContext(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

func (c *Conn) Close(_ context.Context) error {
	if err := c.conn.Close(); err != nil {
		return mapError(err, "close failed")
	}
	return nil
}

func (c *Conn) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "query failed")
	}
	return &mysqlRows{rows: rows}, nil
}

// --- database/sql type wrappers ---

// mysqlRows wraps *sql.Rows to satisfy database.Rows.
type mysqlRows struct {
	rows *sql.Rows
}

func (r *mysqlRows) Next() bool             { return r.rows.Next() }
func (r *mysqlRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r *mysqlRows) Close()                 { _ = r.rows.Close() }
func (r *mysqlRows) Err() error             { return r.rows.Err() }

func (r *mysqlRows) Columns() ([]string, error) {
	return r.rows.Columns()
}
