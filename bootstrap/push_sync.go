package bootstrap

import (
	"github.com/blocklattice/ledger/ledger"
	"github.com/blocklattice/ledger/store"
)

// PushSynchronizer specializes BlockSynchronizer for the push direction
// (spec.md §4.3): a block is "done" once the peer is known to already
// have it, and candidates are read from the main block store (the
// source, for this direction).
//
// "Known to already have it" is the zero hash, or the per-account
// KnownToPeer hash recorded in the unsynced staging table (spec.md §9's
// Open Question resolution: BulkPushClient sets StopAt to that record's
// KnownToPeer before walking each account, since the synchronizer's
// capability hooks only see a hash, not the account it belongs to).
type PushSynchronizer struct {
	StopAt ledger.Hash
}

func (p *PushSynchronizer) Synchronized(tx store.Tx, h ledger.Hash) (bool, error) {
	if h.IsZero() {
		return true, nil
	}
	return h == p.StopAt, nil
}

func (p *PushSynchronizer) Retrieve(tx store.Tx, h ledger.Hash) (ledger.Block, error) {
	return tx.GetBlock(h)
}

// NewPush builds a BlockSynchronizer wired for the push direction,
// stopping the walk at stopAt (spec.md §4.3).
func NewPush(stopAt ledger.Hash) *BlockSynchronizer {
	return NewBlockSynchronizer(&PushSynchronizer{StopAt: stopAt})
}
