package store

import (
	"context"

	"github.com/erigontech/erigon-lib/kv"
	"github.com/erigontech/erigon-lib/kv/mdbx"
	"github.com/erigontech/erigon-lib/log/v3"
)

// DB owns the MDBX environment backing one node's block store.
type DB struct {
	kv kv.RwDB
}

// Open creates or opens the MDBX environment at path, the same pattern
// turbo/engineapi/engine_block_downloader/core.go uses to stand up a
// scratch MDBX instance, generalized to a durable, schema-configured
// store.
func Open(path string, logger log.Logger) (*DB, error) {
	db, err := mdbx.NewMDBX(logger).Path(path).WithTableCfg(TableCfg).Open(context.Background())
	if err != nil {
		return nil, err
	}
	return &DB{kv: db}, nil
}

func (d *DB) Close() { d.kv.Close() }

// BeginRo opens a scoped read-only transaction handle. The caller must
// call Rollback (directly or via defer) on every exit path; Rollback on
// an already-committed transaction is a no-op.
func (d *DB) BeginRo(ctx context.Context) (Tx, error) {
	tx, err := d.kv.BeginRo(ctx)
	if err != nil {
		return Tx{}, err
	}
	return Tx{tx: tx}, nil
}

// BeginRw opens a scoped read/write transaction handle. MDBX allows at
// most one open write transaction at a time; the subsystem never holds
// one across a socket suspension point (spec.md §5).
func (d *DB) BeginRw(ctx context.Context) (RwTx, error) {
	tx, err := d.kv.BeginRw(ctx)
	if err != nil {
		return RwTx{}, err
	}
	return RwTx{Tx: Tx{tx: tx}, tx: tx}, nil
}

// View runs fn inside a read-only transaction, always rolling back on
// exit (reads never mutate, so there is nothing to commit).
func (d *DB) View(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := d.BeginRo(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	return fn(tx)
}

// Update runs fn inside a read/write transaction and commits iff fn
// returns nil; any error (fn's or Commit's) leaves the store unchanged.
func (d *DB) Update(ctx context.Context, fn func(tx RwTx) error) error {
	tx, err := d.BeginRw(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
