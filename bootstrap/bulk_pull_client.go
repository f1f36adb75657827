package bootstrap

import (
	"context"
	"errors"
	"io"

	"github.com/erigontech/erigon-lib/log/v3"

	"github.com/blocklattice/ledger/ledger"
	"github.com/blocklattice/ledger/store"
	"github.com/blocklattice/ledger/validator"
	"github.com/blocklattice/ledger/wire"
)

// runBulkPull drives BulkPullClient (spec.md §4.6) for every frontier in
// pulls: for each account, request the peer's whole chain (bulk_pull
// with End set to the zero hash, so the peer streams from its head down
// to the account's open block), stage it, and synchronize it into the
// main store; blocks already stored locally are skipped by the walk. A KindDependencyMissing or KindValidatorRejected
// failure only abandons the current account (spec.md §7: "the rejected
// chain is abandoned for this session"); any other kind aborts the
// whole session.
func runBulkPull(rw io.ReadWriter, db *store.DB, v validator.Validator, cfg Config, pulls []ledger.Frontier, logger log.Logger) error {
	sync := NewPull()
	for _, f := range pulls {
		if err := pullAccount(rw, db, v, cfg, sync, f); err != nil {
			var syncErr *Error
			if errors.As(err, &syncErr) && !syncErr.Kind.Fatal() {
				logger.Warn("abandoning account after bulk_pull failure", "account", f.Account.String(), "err", err)
				continue
			}
			return err
		}
	}
	return nil
}

// pullAccount streams one account's chain into the pending-blocks area
// in chunks of cfg.BlockCount, then runs a single PullSynchronizer walk
// rooted at the account's head once the whole chain has been staged.
// Synchronizing only once the stream is complete (rather than once per
// chunk, rooted at that chunk's newest block) is what makes the result
// independent of cfg.BlockCount (spec.md §8 invariant #5): a chunk
// boundary landing mid-chain must not make Synchronize's walk run into
// predecessors the peer hasn't sent yet.
func pullAccount(rw io.ReadWriter, db *store.DB, v validator.Validator, cfg Config, sync *BlockSynchronizer, f ledger.Frontier) error {
	if err := wire.WriteBulkPull(rw, wire.BulkPull{Account: f.Account, End: ledger.ZeroHash}); err != nil {
		return wrap(KindTransport, err, "sending bulk_pull")
	}

	var buf []ledger.Block
	var head ledger.Hash
	stage := func() error {
		if len(buf) == 0 {
			return nil
		}
		err := db.Update(context.Background(), func(tx store.RwTx) error {
			for _, b := range buf {
				if err := tx.PutPendingBlock(b); err != nil {
					return wrap(KindStore, err, "staging pulled block")
				}
			}
			return nil
		})
		buf = buf[:0]
		return err
	}

	for {
		b, ok, err := wire.ReadBlockOrTerminator(rw)
		var unknownTag *wire.UnknownBlockTypeError
		if errors.As(err, &unknownTag) {
			return wrap(KindProtocol, err, "reading pulled block")
		}
		if err != nil {
			return wrap(KindTransport, err, "reading pulled block")
		}
		if !ok {
			break
		}
		if head.IsZero() {
			head = b.Hash()
		}
		buf = append(buf, b)
		if len(buf) >= cfg.BlockCount {
			if err := stage(); err != nil {
				return err
			}
		}
	}
	if err := stage(); err != nil {
		return err
	}
	if head.IsZero() {
		// Terminator arrived immediately: the peer has nothing for this
		// account.
		return nil
	}

	return db.Update(context.Background(), func(tx store.RwTx) error {
		return sync.Synchronize(tx, head, func(tx store.RwTx, block ledger.Block) error {
			if err := v.Process(tx, block); err != nil {
				return err
			}
			return tx.DeletePendingBlock(block.Hash())
		})
	})
}
