package store

import (
	"github.com/blocklattice/ledger/ledger"
)

// encodeBlock prefixes the marshalled block with its type tag so a
// single GetOne round-trip yields enough information to decode it,
// mirroring the <type_tag><payload> framing blocks use on the wire
// (spec.md §6).
func encodeBlock(b ledger.Block) []byte {
	buf := make([]byte, 1+len(b.Marshal()))
	buf[0] = byte(b.Type())
	copy(buf[1:], b.Marshal())
	return buf
}

func decodeBlock(raw []byte) (ledger.Block, error) {
	if len(raw) < 1 {
		return nil, errShortBlockRecord
	}
	return ledger.Unmarshal(ledger.BlockType(raw[0]), raw[1:])
}

var errShortBlockRecord = blockStoreError("store: block record too short to contain a type tag")

type blockStoreError string

func (e blockStoreError) Error() string { return string(e) }

// HasBlock reports whether hash is present in the main block store
// (used by PullSynchronizer.Synchronized).
func (t Tx) HasBlock(hash ledger.Hash) (bool, error) {
	v, err := t.getOne(Blocks, hash.Bytes())
	if err != nil {
		return false, err
	}
	return v != nil, nil
}

// GetBlock reads a block from the main store (used by
// PushSynchronizer.Retrieve), returning (nil, nil) if absent.
func (t Tx) GetBlock(hash ledger.Hash) (ledger.Block, error) {
	v, err := t.getOne(Blocks, hash.Bytes())
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return decodeBlock(v)
}

// PutBlock inserts a block into the main store. Called by the ledger
// processor (validator), not directly by the synchronizer.
func (t RwTx) PutBlock(b ledger.Block) error {
	return t.put(Blocks, b.Hash().Bytes(), encodeBlock(b))
}
