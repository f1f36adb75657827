package bootstrap

import (
	"github.com/blocklattice/ledger/ledger"
	"github.com/blocklattice/ledger/store"
)

// PullSynchronizer specializes BlockSynchronizer for the pull direction
// (spec.md §4.2): a block is "done" once it is in the main block store,
// and candidates are read from the pending-blocks staging area BulkPullClient
// populated, never from the main store (which is the destination).
type PullSynchronizer struct{}

func (PullSynchronizer) Synchronized(tx store.Tx, h ledger.Hash) (bool, error) {
	if h.IsZero() {
		return true, nil
	}
	return tx.HasBlock(h)
}

func (PullSynchronizer) Retrieve(tx store.Tx, h ledger.Hash) (ledger.Block, error) {
	return tx.GetPendingBlock(h)
}

// NewPull builds a BlockSynchronizer wired for the pull direction.
func NewPull() *BlockSynchronizer {
	return NewBlockSynchronizer(PullSynchronizer{})
}
