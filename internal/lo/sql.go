package lo

import (
	"context"
	"database/sql"
)

// sqlQuerier is the slice of database/sql that the primitives need;
// *sql.Tx, *sql.Conn and *sql.DB all satisfy it.
type sqlQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLConn adapts a database/sql querier to the Conn seam. Descriptors
// only live for the length of a transaction, so the querier should be
// a *sql.Tx in practice.
type SQLConn struct {
	q sqlQuerier
}

func NewSQLConn(q sqlQuerier) SQLConn {
	return SQLConn{q: q}
}

func (c SQLConn) QueryRow(ctx context.Context, query string, args ...any) Row {
	return c.q.QueryRowContext(ctx, query, args...)
}
