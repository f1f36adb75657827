package bootstrap

import (
	"io"
	"time"

	"github.com/blocklattice/ledger/ledger"
	"github.com/blocklattice/ledger/store"
	"github.com/blocklattice/ledger/wire"
)

// handleFrontierReq drives FrontierReqServer (spec.md §4.9): walk local
// accounts in key order from req.StartAccount, skip ones modified
// earlier than req.Age seconds ago, stop after req.Count records, and
// terminate the stream with (0, 0).
func handleFrontierReq(rw io.Writer, tx store.Tx, req wire.FrontierReq, now time.Time) error {
	var cutoff time.Time
	if req.Age != wire.MaxAge {
		cutoff = now.Add(-time.Duration(req.Age) * time.Second)
	}

	sent := uint32(0)
	err := tx.ForEachAccountFrom(req.StartAccount, func(account ledger.Account, info *ledger.AccountInfo) (bool, error) {
		if req.Count != wire.MaxCount && sent >= req.Count {
			return false, nil
		}
		if !cutoff.IsZero() && info.Modified.Before(cutoff) {
			return true, nil
		}
		if err := wire.WriteFrontierRecord(rw, wire.FrontierRecord{Account: account, Head: info.Head}); err != nil {
			return false, err
		}
		sent++
		return true, nil
	})
	if err != nil {
		return wrap(KindTransport, err, "sending frontier record")
	}
	return wrap(KindTransport, wire.WriteFrontierRecord(rw, wire.Terminator), "sending frontier terminator")
}
