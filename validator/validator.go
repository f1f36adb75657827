// Package validator stands in for the block validator / ledger
// processor spec.md §1 keeps out of scope: the bootstrap subsystem
// calls it as an opaque target function. This package implements a
// minimal causal-order rule (each block must extend its account's head,
// and a claimed source must be a send addressed to the claiming
// account), so the pull/push flows in package bootstrap exercise real
// accept/reject semantics in tests instead of an always-succeeds stub.
// It does not record which sends have been claimed, so it does not
// reject a send being claimed twice.
package validator

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/blocklattice/ledger/ledger"
	"github.com/blocklattice/ledger/store"
)

// ErrRejected is wrapped by every rejection reason below; callers that
// only care about "was this block accepted" can test with errors.Is.
var ErrRejected = errors.New("validator: block rejected")

// Validator is the seam the bootstrap subsystem's synchronizer target
// closures call into (spec.md §4.1's "target(tx, block)").
type Validator interface {
	// Process validates block against the ledger state tx sees and, if
	// accepted, commits it to the main block store and updates the
	// owning account's AccountInfo. Returns an error wrapping
	// ErrRejected if the block is invalid given current state; any
	// other error is a store failure.
	Process(tx store.RwTx, block ledger.Block) error
}

// Reference is a minimal validator: it checks that each block extends
// its account's current head and that an open/receive claims a send
// addressed to that account, and treats signature/proof-of-work
// verification as a pluggable no-op hook (spec.md §1 keeps cryptographic
// verification out of scope). It keeps no record of claimed sends, so
// double spends are not detected.
type Reference struct {
	// VerifyWork and VerifySignature are called before any ledger-state
	// check. The zero value accepts everything, matching "signatures
	// and PoW are out of scope" — a real deployment overrides both.
	VerifyWork      func(block ledger.Block) bool
	VerifySignature func(block ledger.Block) bool
}

func NewReference() *Reference {
	return &Reference{
		VerifyWork:      func(ledger.Block) bool { return true },
		VerifySignature: func(ledger.Block) bool { return true },
	}
}

func (r *Reference) Process(tx store.RwTx, block ledger.Block) error {
	if !r.VerifyWork(block) {
		return errors.Wrap(ErrRejected, "insufficient work")
	}
	if !r.VerifySignature(block) {
		return errors.Wrap(ErrRejected, "invalid signature")
	}

	switch b := block.(type) {
	case *ledger.OpenBlock:
		return r.processOpen(tx, b)
	case *ledger.SendBlock:
		return r.processSend(tx, b)
	case *ledger.ReceiveBlock:
		return r.processReceive(tx, b)
	case *ledger.ChangeBlock:
		return r.processChange(tx, b)
	default:
		return errors.Wrap(ErrRejected, "unknown block type")
	}
}

func (r *Reference) processOpen(tx store.RwTx, b *ledger.OpenBlock) error {
	existing, err := tx.AccountInfo(b.AccountKey)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.Wrap(ErrRejected, "account already opened")
	}

	// A zero source opens the account with no claimed send, the same
	// "no predecessor" convention ZeroHash carries everywhere else
	// (spec.md §3): the account starts with a zero balance. processSend
	// does not check balances, so such an account can still send.
	balance := new(uint256.Int)
	if !b.Source.IsZero() {
		source, err := r.claimSource(tx, b.Source, b.AccountKey)
		if err != nil {
			return err
		}
		balance = source.Balance
	}

	if err := tx.PutBlock(b); err != nil {
		return err
	}
	return tx.PutAccountInfo(b.AccountKey, &ledger.AccountInfo{
		Head:           b.Hash(),
		Representative: b.Representative,
		Balance:        balance,
		BlockCount:     1,
	})
}

func (r *Reference) processSend(tx store.RwTx, b *ledger.SendBlock) error {
	account, info, err := r.ownerOf(tx, b.PreviousHash)
	if err != nil {
		return err
	}
	if info.Head != b.PreviousHash {
		return errors.Wrap(ErrRejected, "previous is not the account head")
	}
	if err := tx.PutBlock(b); err != nil {
		return err
	}
	info.Head = b.Hash()
	info.Balance = b.Balance
	info.BlockCount++
	return tx.PutAccountInfo(account, info)
}

func (r *Reference) processReceive(tx store.RwTx, b *ledger.ReceiveBlock) error {
	account, info, err := r.ownerOf(tx, b.PreviousHash)
	if err != nil {
		return err
	}
	if info.Head != b.PreviousHash {
		return errors.Wrap(ErrRejected, "previous is not the account head")
	}
	source, err := r.claimSource(tx, b.Source, account)
	if err != nil {
		return err
	}
	if err := tx.PutBlock(b); err != nil {
		return err
	}
	info.Head = b.Hash()
	info.Balance = source.Balance
	info.BlockCount++
	return tx.PutAccountInfo(account, info)
}

func (r *Reference) processChange(tx store.RwTx, b *ledger.ChangeBlock) error {
	account, info, err := r.ownerOf(tx, b.PreviousHash)
	if err != nil {
		return err
	}
	if info.Head != b.PreviousHash {
		return errors.Wrap(ErrRejected, "previous is not the account head")
	}
	if err := tx.PutBlock(b); err != nil {
		return err
	}
	info.Head = b.Hash()
	info.Representative = b.Representative
	info.BlockCount++
	return tx.PutAccountInfo(account, info)
}

// ownerOf resolves which account a previous-block hash belongs to
// (send/receive/change carry no explicit account field, matching the
// real ledger's wire format) by scanning the accounts table for the
// account whose current head equals previous. The store keeps no
// block-to-account back-index, so a previous hash that is not some
// account's current head is rejected.
func (r *Reference) ownerOf(tx store.RwTx, previous ledger.Hash) (ledger.Account, *ledger.AccountInfo, error) {
	var found ledger.Account
	var info *ledger.AccountInfo
	err := tx.ForEachAccountFrom(ledger.Account{}, func(account ledger.Account, candidate *ledger.AccountInfo) (bool, error) {
		if candidate.Head == previous {
			found = account
			info = candidate
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		return ledger.Account{}, nil, err
	}
	if info == nil {
		return ledger.Account{}, nil, errors.Wrap(ErrRejected, "previous block is not any account's head")
	}
	return found, info, nil
}

// claimSource validates that source is a stored send addressed to
// destination and returns it. It does not check whether the send has
// already been claimed by another open or receive block.
func (r *Reference) claimSource(tx store.RwTx, source ledger.Hash, destination ledger.Account) (*ledger.SendBlock, error) {
	raw, err := tx.GetBlock(source)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.Wrap(ErrRejected, "source block not found")
	}
	send, ok := raw.(*ledger.SendBlock)
	if !ok {
		return nil, errors.Wrap(ErrRejected, "source is not a send block")
	}
	if send.Destination != destination {
		return nil, errors.Wrap(ErrRejected, "source send does not address this account")
	}
	return send, nil
}
