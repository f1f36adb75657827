package bootstrap

import (
	"errors"
	"io"

	"github.com/blocklattice/ledger/ledger"
	"github.com/blocklattice/ledger/store"
	"github.com/blocklattice/ledger/wire"
)

// pushEntry is one local account the frontier exchange decided the peer
// needs pushed: either it never heard of the account (KnownToPeer is
// the zero hash) or it advertised a different head for the same account
// (KnownToPeer is that remote head; whether it is older than ours, newer,
// or on a fork is not checked).
type pushEntry struct {
	Account     ledger.Account
	LocalHead   ledger.Hash
	KnownToPeer ledger.Hash
}

// frontierResult is what runFrontierExchange hands back once the
// exchange completes: the pulls to run and the push entries to stage,
// both still in memory so the read-only transaction the walk held open
// can close before any write happens. Only a write transaction is
// forbidden across a suspension point (spec.md §5); reads may span the
// socket round-trips this merge makes.
type frontierResult struct {
	pulls  []ledger.Frontier
	pushes []pushEntry
}

// runFrontierExchange drives the FrontierReqClient merge (spec.md
// §4.5): request every frontier, then walk the remote stream against
// the local accounts table in lockstep key order, classifying each
// divergence as a pull, a push, or both.
func runFrontierExchange(rw io.ReadWriter, tx store.Tx) (frontierResult, error) {
	if err := wire.WriteFrontierReq(rw, wire.FrontierReq{
		StartAccount: ledger.Account{},
		Age:          wire.MaxAge,
		Count:        wire.MaxCount,
	}); err != nil {
		return frontierResult{}, wrap(KindTransport, err, "sending frontier_req")
	}

	cur, err := tx.AccountCursor()
	if err != nil {
		return frontierResult{}, wrap(KindStore, err, "opening account cursor")
	}
	defer cur.Close()

	var result frontierResult
	account, info, haveLocal, err := cur.First()
	if err != nil {
		return frontierResult{}, wrap(KindStore, err, "reading first local account")
	}
	advanceLocal := func() error {
		account, info, haveLocal, err = cur.Next()
		return err
	}

	var lastRemote ledger.Account
	haveRemote := false
	for {
		rec, err := wire.ReadFrontierRecord(rw)
		if err != nil {
			return frontierResult{}, wrap(KindTransport, err, "reading frontier record")
		}
		if rec.IsTerminator() {
			break
		}
		if haveRemote && rec.Account.Cmp(lastRemote) <= 0 {
			return frontierResult{}, wrap(KindProtocol, errors.New("frontier record out of order: "+rec.Account.String()), "reading frontier record")
		}
		lastRemote, haveRemote = rec.Account, true

		for haveLocal && account.Cmp(rec.Account) < 0 {
			result.pushes = append(result.pushes, pushEntry{
				Account:     account,
				LocalHead:   info.Head,
				KnownToPeer: ledger.ZeroHash,
			})
			if err := advanceLocal(); err != nil {
				return frontierResult{}, wrap(KindStore, err, "advancing local account cursor")
			}
		}

		if haveLocal && account.Cmp(rec.Account) == 0 {
			if info.Head != rec.Head {
				result.pulls = append(result.pulls, ledger.Frontier{Account: rec.Account, Head: rec.Head})
				result.pushes = append(result.pushes, pushEntry{
					Account:     account,
					LocalHead:   info.Head,
					KnownToPeer: rec.Head,
				})
			}
			if err := advanceLocal(); err != nil {
				return frontierResult{}, wrap(KindStore, err, "advancing local account cursor")
			}
			continue
		}

		// Remote account has no local match at this point in the walk
		// (either remote < local, or local accounts are exhausted): the
		// peer holds a chain we don't.
		result.pulls = append(result.pulls, ledger.Frontier{Account: rec.Account, Head: rec.Head})
	}

	for haveLocal {
		result.pushes = append(result.pushes, pushEntry{
			Account:     account,
			LocalHead:   info.Head,
			KnownToPeer: ledger.ZeroHash,
		})
		if err := advanceLocal(); err != nil {
			return frontierResult{}, wrap(KindStore, err, "draining local account cursor")
		}
	}

	return result, nil
}
