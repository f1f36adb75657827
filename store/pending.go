package store

import (
	"github.com/blocklattice/ledger/ledger"
)

// PendingBlocks is the pull flow's staging area: blocks BulkPullClient
// received from the peer but has not yet walked into the main store.
// PullSynchronizer.Retrieve reads from here, never from Blocks, since
// Blocks is the destination for the pull (spec.md §4.2).

// PutPendingBlock stages a received block.
func (t RwTx) PutPendingBlock(b ledger.Block) error {
	return t.put(PendingBlocks, b.Hash().Bytes(), encodeBlock(b))
}

// GetPendingBlock reads a staged block, returning (nil, nil) if absent.
func (t Tx) GetPendingBlock(hash ledger.Hash) (ledger.Block, error) {
	v, err := t.getOne(PendingBlocks, hash.Bytes())
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return decodeBlock(v)
}

// DeletePendingBlock removes a block from staging once it has been
// delivered to the validator, so a crashed session cannot redeliver it.
func (t RwTx) DeletePendingBlock(hash ledger.Hash) error {
	return t.delete(PendingBlocks, hash.Bytes())
}
