package batch

import (
	"context"

	"github.com/sathwikv/batchq/internal/database"
	"github.com/sathwikv/batchq/internal/errs"
)

// pool is the client's set of reusable live sessions. It grows lazily to the
// widest batch observed and never shrinks on its own; a session only leaves
// the pool when a connection-level failure invalidates it.
//
// Not goroutine safe — the owning Client serialises access, and within one
// batch the pool is read-only (session assignment is fixed up front).
type pool struct {
	connector database.Connector
	conns     []database.Conn
}

// ensure grows the pool until it holds at least n sessions.
// Sessions dialled before a failure are kept, so a later ensure resumes
// where growth stopped.
func (p *pool) ensure(ctx context.Context, n int) error {
	for len(p.conns) < n {
		conn, err := p.connector.Connect(ctx)
		if err != nil {
			return errs.Wrap(errs.ErrKindConnectionFailed, "failed to grow connection pool", err)
		}
		p.conns = append(p.conns, conn)
	}
	return nil
}

// get returns the i-th pooled session. The dispatcher pairs the i-th queued
// descriptor with the i-th session, so no two concurrent queries of one
// batch share a session.
func (p *pool) get(i int) database.Conn {
	return p.conns[i]
}

func (p *pool) size() int {
	return len(p.conns)
}

// invalidate closes the given session and removes it from the pool.
// Called after a connection-level query failure; the session must not be
// reused once its driver has reported a broken link.
func (p *pool) invalidate(ctx context.Context, conn database.Conn) {
	for i, c := range p.conns {
		if c == conn {
			p.conns = append(p.conns[:i], p.conns[i+1:]...)
			_ = conn.Close(ctx)
			return
		}
	}
}

// closeAll terminates every pooled session. The first close error is
// returned; remaining sessions are still closed.
func (p *pool) closeAll(ctx context.Context) error {
	var first error
	for _, c := range p.conns {
		if err := c.Close(ctx); err != nil && first == nil {
			first = err
		}
	}
	p.conns = nil
	return first
}
