package database

import "context"

// Connector dials new database sessions. It is the only contract a driver
// must satisfy to be used by the batch client — the layers above this
// package never import the postgres or mysql packages directly.
//
// Connect is synchronous and returns a NEW dedicated session on every call.
// The caller owns the returned Conn and decides when to close it; connectors
// must not share sessions between calls.
type Connector interface {
	Connect(ctx context.Context) (Conn, error)
}

// Conn is one live database session. While idle it is owned by the pool;
// during a batch it is lent to exactly one in-flight query at a time.
type Conn interface {
	// Ping verifies the session is still usable.
	Ping(ctx context.Context) error

	// Close terminates the session. The Conn must not be used afterwards.
	Close(ctx context.Context) error

	// Query executes a SQL statement that returns rows.
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
}

// Rows is an abstraction over a database result set.
// Callers must always call Close() when done, even on error.
type Rows interface {
	// Next advances to the next row.
	// Returns false when no more rows exist or on error.
	Next() bool

	// Scan copies the current row's columns into the provided destinations.
	Scan(dest ...any) error

	// Columns returns the column names of the result set.
	Columns() ([]string, error)

	// Close releases resources held by the result set.
	Close()

	// Err returns any error encountered during iteration.
	Err() error
}
