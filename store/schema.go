// Package store is the transactional key/value store the bootstrap
// subsystem treats as an external collaborator (spec.md §1): accounts,
// blocks, and the two staging tables the pull/push flows use, backed by
// MDBX through erigon-lib/kv the way the rest of the ledger node's
// storage is backed.
package store

import (
	"github.com/erigontech/erigon-lib/kv"
)

// Table names for the four buckets the bootstrap subsystem touches.
// Accounts and Blocks are also read by the rest of the node (ledger
// processor, RPC); PendingBlocks and Unsynced exist only for the
// lifetime of a bootstrap session but are still real MDBX tables so
// concurrent inbound sessions don't collide on in-process maps and a
// session can be resumed within its own lifetime after a transient
// store error.
const (
	// Accounts maps a 32-byte account key to a marshalled AccountInfo.
	Accounts = "Accounts"
	// Blocks maps a 32-byte block hash to its (type-tag-prefixed) payload.
	Blocks = "Blocks"
	// PendingBlocks stages blocks received by BulkPullClient before the
	// PullSynchronizer walks them into Blocks. Keyed by block hash.
	PendingBlocks = "PendingBlocks"
	// Unsynced records, per account, a head hash believed not yet known
	// to the peer this session is bootstrapping against. Keyed by
	// account.
	Unsynced = "Unsynced"
)

// TableCfg returns the bucket configuration passed to mdbx.NewMDBX. All
// four tables are plain (non-dupsort) key/value buckets.
func TableCfg(defaultBuckets kv.TableCfg) kv.TableCfg {
	cfg := kv.TableCfg{}
	for name := range defaultBuckets {
		cfg[name] = defaultBuckets[name]
	}
	for _, name := range []string{Accounts, Blocks, PendingBlocks, Unsynced} {
		cfg[name] = kv.TableCfgItem{}
	}
	return cfg
}
