package store

import (
	"github.com/erigontech/erigon-lib/kv"
)

// Tx is a scoped read transaction handle (spec.md §3's "Transaction
// handle"): guaranteed commit-or-abort on every exit path of its scope.
// A read transaction's only exit path is Rollback.
type Tx struct {
	tx kv.Tx
}

func (t Tx) Rollback() {
	if t.tx != nil {
		t.tx.Rollback()
	}
}

func (t Tx) getOne(table string, key []byte) ([]byte, error) {
	return t.tx.GetOne(table, key)
}

// ForEach iterates table in key order, invoking fn for every record
// until fn returns false or the cursor is exhausted. ForEachAccountFrom
// (FrontierReqServer, spec.md §4.9) and ForEachUnsynced build on it;
// FrontierReqClient uses AccountCursor instead.
func (t Tx) ForEach(table string, startKey []byte, fn func(k, v []byte) (bool, error)) error {
	c, err := t.tx.Cursor(table)
	if err != nil {
		return err
	}
	defer c.Close()

	var k, v []byte
	if len(startKey) == 0 {
		k, v, err = c.First()
	} else {
		k, v, err = c.Seek(startKey)
	}
	for ; k != nil; k, v, err = c.Next() {
		if err != nil {
			return err
		}
		more, err := fn(k, v)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return err
}

// RwTx is a scoped read/write transaction handle. MDBX permits only one
// open write transaction at a time (spec.md §5: "read-write transactions
// are exclusive").
type RwTx struct {
	Tx
	tx kv.RwTx
}

func (t RwTx) put(table string, key, val []byte) error {
	return t.tx.Put(table, key, val)
}

func (t RwTx) delete(table string, key []byte) error {
	return t.tx.Delete(table, key)
}

// Commit finalizes the transaction. Rollback after a successful Commit
// is a documented no-op, so callers can unconditionally `defer
// tx.Rollback()` right after Begin and still Commit on the success path.
func (t RwTx) Commit() error {
	return t.tx.Commit()
}
