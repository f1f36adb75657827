package bootstrap

import (
	"io"

	"github.com/blocklattice/ledger/ledger"
	"github.com/blocklattice/ledger/store"
	"github.com/blocklattice/ledger/wire"
)

// handleBulkPull drives BulkPullServer (spec.md §4.10): starting from
// req.Account's current head, stream blocks back toward (not including)
// req.End, newest first, terminating with not_a_block.
func handleBulkPull(rw io.Writer, tx store.Tx, req wire.BulkPull) error {
	info, err := tx.AccountInfo(req.Account)
	if err != nil {
		return wrap(KindStore, err, "reading account for bulk_pull")
	}

	var current ledger.Hash
	if info != nil {
		current = info.Head
	}

	for {
		if current.IsZero() || current == req.End {
			return wrap(KindTransport, wire.WriteNotABlock(rw), "sending bulk_pull terminator")
		}
		block, err := tx.GetBlock(current)
		if err != nil {
			return wrap(KindStore, err, "reading block for bulk_pull")
		}
		if block == nil {
			// The chain we're streaming references a predecessor we don't
			// have: nothing more to send for this account.
			return wrap(KindTransport, wire.WriteNotABlock(rw), "sending bulk_pull terminator")
		}
		if err := wire.WriteBlock(rw, block); err != nil {
			return wrap(KindTransport, err, "sending pulled block")
		}
		if block.Type() == ledger.TypeOpen {
			// An open block is the first block on its account's chain.
			// Previous() returns its source (a dependency on another
			// account's chain, not a predecessor on this one), so the
			// walk down this account's own history ends here.
			return wrap(KindTransport, wire.WriteNotABlock(rw), "sending bulk_pull terminator")
		}
		current = block.Previous()
	}
}
