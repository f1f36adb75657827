package bootstrap

import (
	"net"
	"testing"
	"time"

	"github.com/erigontech/erigon-lib/log/v3"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/blocklattice/ledger/ledger"
	"github.com/blocklattice/ledger/validator"
	"github.com/blocklattice/ledger/wire"
)

// servePullOnce answers exactly one bulk_pull request over conn: it
// reads the request header and body (ignoring their content, since
// these tests only ever pull one account at a time) and streams blocks
// back newest-first, terminated by not_a_block.
func servePullOnce(conn net.Conn, blocks []ledger.Block) error {
	if _, err := wire.ReadHeader(conn); err != nil {
		return err
	}
	if _, err := wire.ReadBulkPullBody(conn); err != nil {
		return err
	}
	for _, b := range blocks {
		if err := wire.WriteBlock(conn, b); err != nil {
			return err
		}
	}
	return wire.WriteNotABlock(conn)
}

// TestRunBulkPullChunkBoundaryIndependence pulls a four-block chain
// with cfg.BlockCount set to 1, so every single received block forces
// a flush. The chunk boundary falling mid-chain must not stop the
// account from fully synchronizing (spec.md §8 invariant #5).
func TestRunBulkPullChunkBoundaryIndependence(t *testing.T) {
	db := openTestDB(t)
	v := validator.NewReference()

	account := ledger.AccountFromBytes([]byte{42})
	open := &ledger.OpenBlock{Source: ledger.ZeroHash, AccountKey: account}
	send1 := &ledger.SendBlock{PreviousHash: open.Hash(), Balance: uint256.NewInt(3)}
	send2 := &ledger.SendBlock{PreviousHash: send1.Hash(), Balance: uint256.NewInt(2)}
	send3 := &ledger.SendBlock{PreviousHash: send2.Hash(), Balance: uint256.NewInt(1)}

	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- servePullOnce(serverConn, []ledger.Block{send3, send2, send1, open})
	}()

	pulls := []ledger.Frontier{{Account: account, Head: send3.Hash()}}
	cfg := Config{BlockCount: 1, IOTimeout: 5 * time.Second}
	require.NoError(t, runBulkPull(clientConn, db, v, cfg, pulls, log.New()))
	require.NoError(t, <-serverDone)

	require.Equal(t, send3.Hash(), accountHead(t, db, account))
}

// TestRunBulkPullValidatorRejectionIsNonFatal pulls an account whose
// remote chain conflicts with what's already stored locally (a second,
// different open block for an account we've already opened). The
// validator rejects it, which must only abandon this account — the
// session, and the caller's overall error, must stay nil (spec.md §7:
// "the rejected chain is abandoned for this session"; spec.md §8
// scenario S2: "session completes, A's head unchanged").
func TestRunBulkPullValidatorRejectionIsNonFatal(t *testing.T) {
	db := openTestDB(t)
	v := validator.NewReference()

	account, localHead := seedChain(t, db, v, 7, 1)

	conflictingOpen := &ledger.OpenBlock{Source: ledger.ZeroHash, AccountKey: account, Representative: ledger.AccountFromBytes([]byte{99})}
	require.NotEqual(t, localHead, conflictingOpen.Hash())

	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- servePullOnce(serverConn, []ledger.Block{conflictingOpen})
	}()

	pulls := []ledger.Frontier{{Account: account, Head: conflictingOpen.Hash()}}
	cfg := Config{BlockCount: 4096, IOTimeout: 5 * time.Second}
	err := runBulkPull(clientConn, db, v, cfg, pulls, log.New())
	require.NoError(t, err, "a rejected account must not fail the whole bulk pull")
	require.NoError(t, <-serverDone)

	require.Equal(t, localHead, accountHead(t, db, account),
		"a rejected pull must leave the account's existing head untouched")
}
