// Package storagetest provides a storage.DB backed by the in-memory
// large-object emulation, for tests that need the façade or the HTTP
// layer without a database server.
package storagetest

import (
	"context"

	"github.com/lovault/lovault/internal/lo"
	"github.com/lovault/lovault/internal/lo/lotest"
	"github.com/lovault/lovault/internal/storage"
)

type DB struct {
	Store *lotest.Store
}

func NewDB() *DB {
	return &DB{Store: lotest.NewStore()}
}

func (d *DB) ReadTx(context.Context) (storage.Tx, error)  { return tx{d.Store.Conn()}, nil }
func (d *DB) WriteTx(context.Context) (storage.Tx, error) { return tx{d.Store.Conn()}, nil }

// tx ignores transactional scope: the emulated store applies every
// primitive immediately, which is enough for single-owner tests.
type tx struct {
	conn lo.Conn
}

func (t tx) QueryRow(ctx context.Context, query string, args ...any) lo.Row {
	return t.conn.QueryRow(ctx, query, args...)
}

func (t tx) Commit() error   { return nil }
func (t tx) Rollback() error { return nil }
