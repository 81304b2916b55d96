package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/sathwikv/batchq/internal/database"
	"github.com/sathwikv/batchq/internal/errs"
)

// Connector dials dedicated PostgreSQL sessions via pgx.
// Each Connect returns one *pgx.Conn wrapped as a database.Conn —
// pooling and reuse are owned by the batch client, not this package.
type Connector struct {
	cfg *pgx.ConnConfig
}

// NewConnector parses the DSN in cfg and returns a Connector.
// No connection is established until Connect is called.
func NewConnector(cfg *database.Config) (*Connector, error) {
	connCfg, err := pgx.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid DSN", err)
	}
	connCfg.ConnectTimeout = cfg.ConnectTimeout
	return &Connector{cfg: connCfg}, nil
}

// Connect dials a new dedicated session and validates it with a ping.
func (c *Connector) Connect(ctx context.Context) (database.Conn, error) {
	conn, err := pgx.ConnectConfig(ctx, c.cfg)
	if err != nil {
		return nil, mapError(err, "failed to connect")
	}

	pc := &Conn{conn: conn}
	if err := pc.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, err
	}
	return pc, nil
}

// Conn is one live PostgreSQL session. It implements database.Conn.
type Conn struct {
	conn *pgx.Conn
}

// Ping verifies the session is still usable.
func (c *Conn) Ping(ctx context.Context) error {
	if err := c.conn.Ping(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close terminates the session.
func (c *Conn) Close(ctx context.Context) error {
	if err := c.conn.Close(ctx); err != nil {
		return mapError(err, "close failed")
	}
	return nil
}

// Query executes a SQL statement that returns rows.
func (c *Conn) Query(ctx context.Context, sql string, args ...any) (database.Rows, error) {
	rows, err := c.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err, "query failed")
	}
	return &pgxRows{rows: rows}, nil
}

// --- pgx type wrappers ---

// pgxRows wraps pgx.Rows to satisfy database.Rows.
type pgxRows struct {
	rows pgx.Rows
}

func (r *pgxRows) Next() bool             { return r.rows.Next() }
func (r *pgxRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r *pgxRows) Close()                 { r.rows.Close() }
func (r *pgxRows) Err() error             { return r.rows.Err() }

func (r *pgxRows) Columns() ([]string, error) {
	descs := r.rows.FieldDescriptions()
	cols := make([]string, len(descs))
	for i, d := range descs {
		cols[i] = d.Name
	}
	return cols, nil
}
