// Package lo adapts PostgreSQL large objects to a seekable byte-stream
// file interface. Every primitive is one parameterized statement, one
// round trip, issued against a connection bound to the surrounding
// transaction: a large-object descriptor is only valid inside the
// transaction that opened it.
package lo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Large-object open flags, matching the server's INV_READ and INV_WRITE.
const (
	invWrite = 0x20000
	invRead  = 0x40000
)

// Whence values understood by lo_lseek64.
const (
	SeekStart   = 0
	SeekCurrent = 1
	SeekEnd     = 2
)

// Conn issues one parameterized statement per call against the backing
// store. *sql.Tx satisfies it through SQLConn. A Conn is not safe for
// concurrent use; a Stream is single-owner by construction.
type Conn interface {
	QueryRow(ctx context.Context, query string, args ...any) Row
}

// Row is the single-row cursor returned by Conn.QueryRow.
type Row interface {
	Scan(dest ...any) error
}

func loCreate(ctx context.Context, conn Conn) (int64, error) {
	var loid int64
	if err := conn.QueryRow(ctx, "select lo_create(0)").Scan(&loid); err != nil {
		return 0, fmt.Errorf("lo_create: %w", err)
	}
	return loid, nil
}

func loOpen(ctx context.Context, conn Conn, loid int64, flags int32) (int32, error) {
	var fd int32
	if err := conn.QueryRow(ctx, "select lo_open($1, $2)", loid, flags).Scan(&fd); err != nil {
		return 0, fmt.Errorf("lo_open %d: %w", loid, err)
	}
	return fd, nil
}

func loClose(ctx context.Context, conn Conn, fd int32) error {
	var rc int32
	if err := conn.QueryRow(ctx, "select lo_close($1)", fd).Scan(&rc); err != nil {
		return fmt.Errorf("lo_close: %w", err)
	}
	return nil
}

func loRead(ctx context.Context, conn Conn, fd int32, n int) ([]byte, error) {
	var data []byte
	if err := conn.QueryRow(ctx, "select loread($1, $2)", fd, n).Scan(&data); err != nil {
		return nil, fmt.Errorf("loread: %w", err)
	}
	return data, nil
}

func loWrite(ctx context.Context, conn Conn, fd int32, p []byte) error {
	var n int32
	if err := conn.QueryRow(ctx, "select lowrite($1, $2)", fd, p).Scan(&n); err != nil {
		return fmt.Errorf("lowrite: %w", err)
	}
	return nil
}

// loSeek returns the resulting absolute position as reported by the
// store, never a locally computed value.
func loSeek(ctx context.Context, conn Conn, fd int32, offset int64, whence int) (int64, error) {
	var pos int64
	if err := conn.QueryRow(ctx, "select lo_lseek64($1, $2, $3)", fd, offset, whence).Scan(&pos); err != nil {
		return 0, fmt.Errorf("lo_lseek64: %w", err)
	}
	return pos, nil
}

func loTell(ctx context.Context, conn Conn, fd int32) (int64, error) {
	var pos int64
	if err := conn.QueryRow(ctx, "select lo_tell64($1)", fd).Scan(&pos); err != nil {
		return 0, fmt.Errorf("lo_tell64: %w", err)
	}
	return pos, nil
}

func loTruncate(ctx context.Context, conn Conn, fd int32, size int64) error {
	var rc int32
	if err := conn.QueryRow(ctx, "select lo_truncate64($1, $2)", fd, size).Scan(&rc); err != nil {
		return fmt.Errorf("lo_truncate64: %w", err)
	}
	return nil
}

// Unlink removes the large object identified by loid, invalidating the
// identifier permanently. It does not need an open descriptor.
func Unlink(ctx context.Context, conn Conn, loid int64) error {
	var rc int32
	if err := conn.QueryRow(ctx, "select lo_unlink($1)", loid).Scan(&rc); err != nil {
		return fmt.Errorf("lo_unlink %d: %w", loid, err)
	}
	return nil
}

// Exists reports whether a large object with the given loid is present.
func Exists(ctx context.Context, conn Conn, loid int64) (bool, error) {
	var found bool
	if err := conn.QueryRow(ctx, "select exists(select 1 from pg_largeobject_metadata where oid = $1)", loid).Scan(&found); err != nil {
		return false, fmt.Errorf("large object exists %d: %w", loid, err)
	}
	return found, nil
}

// IsUndefinedObject reports whether err is the server telling us the
// large object is already gone (SQLSTATE 42704, undefined_object).
func IsUndefinedObject(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42704"
}
