package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lovault/lovault/internal/lo"
)

// SQLDB adapts a read/write pair of database/sql pools to the DB
// provider interface. Pass the same pool twice when the deployment
// does not separate the roles.
type SQLDB struct {
	read  *sql.DB
	write *sql.DB
}

func NewSQLDB(read, write *sql.DB) *SQLDB {
	return &SQLDB{read: read, write: write}
}

func (d *SQLDB) ReadTx(ctx context.Context) (Tx, error) {
	tx, err := d.read.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin read tx: %w", err)
	}
	return sqlTx{SQLConn: lo.NewSQLConn(tx), tx: tx}, nil
}

func (d *SQLDB) WriteTx(ctx context.Context) (Tx, error) {
	tx, err := d.write.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin write tx: %w", err)
	}
	return sqlTx{SQLConn: lo.NewSQLConn(tx), tx: tx}, nil
}

type sqlTx struct {
	lo.SQLConn
	tx *sql.Tx
}

func (t sqlTx) Commit() error { return t.tx.Commit() }

func (t sqlTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return err
	}
	return nil
}
