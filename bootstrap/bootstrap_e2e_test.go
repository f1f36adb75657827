package bootstrap

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/erigontech/erigon-lib/log/v3"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/blocklattice/ledger/ledger"
	"github.com/blocklattice/ledger/store"
	"github.com/blocklattice/ledger/validator"
)

// seedChain opens an account with a zero source (a genesis-style open
// with no claimed send) and appends n additional send blocks to it,
// committing each through v so AccountInfo stays consistent. It
// returns the account key and its final head hash.
func seedChain(t *testing.T, db *store.DB, v validator.Validator, seed byte, n int) (ledger.Account, ledger.Hash) {
	t.Helper()
	account := ledger.AccountFromBytes([]byte{seed})
	open := &ledger.OpenBlock{Source: ledger.ZeroHash, AccountKey: account}
	require.NoError(t, db.Update(context.Background(), func(tx store.RwTx) error {
		return v.Process(tx, open)
	}))

	head := open.Hash()
	balance := uint256.NewInt(1000)
	for i := 0; i < n; i++ {
		balance = new(uint256.Int).Sub(balance, uint256.NewInt(1))
		send := &ledger.SendBlock{PreviousHash: head, Destination: ledger.AccountFromBytes([]byte{seed, byte(i)}), Balance: balance}
		require.NoError(t, db.Update(context.Background(), func(tx store.RwTx) error {
			return v.Process(tx, send)
		}))
		head = send.Hash()
	}
	return account, head
}

// accountHead reads back an account's current head, or the zero hash
// if the account is unknown to db.
func accountHead(t *testing.T, db *store.DB, account ledger.Account) ledger.Hash {
	t.Helper()
	var head ledger.Hash
	require.NoError(t, db.View(context.Background(), func(tx store.Tx) error {
		info, err := tx.AccountInfo(account)
		if err != nil {
			return err
		}
		if info != nil {
			head = info.Head
		}
		return nil
	}))
	return head
}

// TestBootstrapEndToEnd wires a real BootstrapServer and RunClient
// together over a loopback TCP connection (spec.md §8's S1-style
// scenario): the client is missing an account the server has, the
// server is missing an account the client has, and a third account is
// already in sync on both sides. One bootstrap session must leave both
// stores agreeing on all three.
func TestBootstrapEndToEnd(t *testing.T) {
	clientDB := openTestDB(t)
	serverDB := openTestDB(t)
	v := validator.NewReference()

	// Account 1: server has six blocks (an open plus five sends) the
	// client has none of, more than cfg.BlockCount below, so the pull
	// crosses a chunk boundary.
	serverOnlyAccount, serverOnlyHead := seedChain(t, serverDB, v, 1, 5)

	// Account 2: client has three blocks (an open plus two sends) the
	// server has none of.
	clientOnlyAccount, clientOnlyHead := seedChain(t, clientDB, v, 2, 2)

	// Account 3: both sides independently build the identical chain
	// (block hashing is deterministic given the same fields), so they
	// already agree before the session starts.
	sharedAccount, sharedHead := seedChain(t, serverDB, v, 3, 1)
	clientSharedAccount, clientSharedHead := seedChain(t, clientDB, v, 3, 1)
	require.Equal(t, sharedAccount, clientSharedAccount)
	require.Equal(t, sharedHead, clientSharedHead)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	// BlockCount smaller than serverOnlyAccount's chain length exercises
	// spec.md §8 invariant #5: the pull must converge regardless of
	// where a flush's chunk boundary happens to fall.
	cfg := Config{ListenAddr: ln.Addr().String(), BlockCount: 1, IOTimeout: 5 * time.Second}
	logger := log.New()

	serverErrCh := make(chan error, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			serverErrCh <- err
			return
		}
		server := newBootstrapServer(conn, serverDB, v, cfg, logger)
		serverErrCh <- server.Run(context.Background())
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = RunClient(ctx, ln.Addr().String(), clientDB, v, cfg, logger)
	require.NoError(t, err)

	// The server's Run loop exits with a transport error once the
	// client closes its side after the push phase; that's expected
	// end-of-session behavior, not a failure.
	<-serverErrCh

	require.Equal(t, serverOnlyHead, accountHead(t, clientDB, serverOnlyAccount),
		"client must have pulled the account only the server knew about")
	require.Equal(t, clientOnlyHead, accountHead(t, serverDB, clientOnlyAccount),
		"server must have received the account only the client knew about")
	require.Equal(t, sharedHead, accountHead(t, clientDB, sharedAccount))
	require.Equal(t, sharedHead, accountHead(t, serverDB, sharedAccount))
}
