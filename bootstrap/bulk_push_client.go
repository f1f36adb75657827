package bootstrap

import (
	"context"
	"io"

	"github.com/blocklattice/ledger/ledger"
	"github.com/blocklattice/ledger/store"
	"github.com/blocklattice/ledger/wire"
)

// pushAccountEntry pairs an unsynced table key with its value, read out
// up front so the walk below doesn't hold a cursor open across the
// socket writes each account's push performs.
type pushAccountEntry struct {
	Account ledger.Account
	Rec     store.UnsyncedRecord
}

// runBulkPush drives BulkPushClient (spec.md §4.7): send the bulk_push
// header once, push every account the frontier exchange staged, then
// terminate the stream.
func runBulkPush(rw io.Writer, db *store.DB) error {
	if err := wire.WriteBulkPushHeader(rw); err != nil {
		return wrap(KindTransport, err, "sending bulk_push header")
	}

	var entries []pushAccountEntry
	err := db.View(context.Background(), func(tx store.Tx) error {
		return tx.ForEachUnsynced(func(account ledger.Account, rec store.UnsyncedRecord) (bool, error) {
			entries = append(entries, pushAccountEntry{Account: account, Rec: rec})
			return true, nil
		})
	})
	if err != nil {
		return wrap(KindStore, err, "reading unsynced table")
	}

	for _, e := range entries {
		if err := pushAccount(rw, db, e); err != nil {
			return err
		}
	}

	if err := wire.WriteNotABlock(rw); err != nil {
		return wrap(KindTransport, err, "sending bulk_push terminator")
	}
	return nil
}

// pushAccount walks one account's unsynced chain with a PushSynchronizer,
// serializing each undelivered block to the peer, then clears its
// unsynced entry. The walk only reads blocks, so it runs under a
// read-only Tx that can safely span the socket writes it performs
// (spec.md §5 forbids this only for a write transaction); DeleteUnsynced
// is the only mutation, committed afterward in its own short RwTx.
func pushAccount(rw io.Writer, db *store.DB, e pushAccountEntry) error {
	sync := NewPush(e.Rec.KnownToPeer)
	err := db.View(context.Background(), func(tx store.Tx) error {
		return sync.SynchronizeReadOnly(tx, e.Rec.LocalHead, func(tx store.Tx, block ledger.Block) error {
			return wire.WriteBlock(rw, block)
		})
	})
	if err != nil {
		return err
	}
	return db.Update(context.Background(), func(tx store.RwTx) error {
		return tx.DeleteUnsynced(e.Account)
	})
}
