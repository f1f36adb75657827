// Package ledger holds the block-lattice data model: accounts, blocks,
// account records, and frontiers.
package ledger

import (
	libcommon "github.com/erigontech/erigon-lib/common"
)

// Hash is the 32-byte digest that identifies a block. It shares its
// representation with Account (both are 32-byte values) but the two
// are kept as distinct types so a block hash can never be passed where
// an account is expected, or vice versa.
type Hash libcommon.Hash

// Account is the 32-byte public key that owns a chain of blocks.
type Account libcommon.Hash

// ZeroHash is the sentinel "no predecessor" / "not a block" hash.
var ZeroHash Hash

// IsZero reports whether h is the sentinel hash.
func (h Hash) IsZero() bool { return h == ZeroHash }

func (h Hash) Bytes() []byte { return h[:] }

func (h Hash) String() string { return libcommon.Hash(h).String() }

// Cmp orders two hashes lexicographically, matching the store's key
// ordering for accounts iterated by their 32-byte key.
func (h Hash) Cmp(other Hash) int {
	return libcommon.Hash(h).Cmp(libcommon.Hash(other))
}

func HashFromBytes(b []byte) Hash {
	var h Hash
	copy(h[:], b)
	return h
}

func (a Account) Bytes() []byte { return a[:] }

func (a Account) String() string { return libcommon.Hash(a).String() }

func (a Account) Cmp(other Account) int {
	return libcommon.Hash(a).Cmp(libcommon.Hash(other))
}

func AccountFromBytes(b []byte) Account {
	var a Account
	copy(a[:], b)
	return a
}

// Frontier is the pair (account, head block hash) derived from AccountInfo.
type Frontier struct {
	Account Account
	Head    Hash
}
