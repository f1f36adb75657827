package validator

import (
	"context"
	"testing"

	"github.com/erigontech/erigon-lib/log/v3"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/blocklattice/ledger/ledger"
	"github.com/blocklattice/ledger/store"
)

func openTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(t.TempDir(), log.New())
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestReferenceAcceptsSendThenReceive(t *testing.T) {
	db := openTestDB(t)
	v := NewReference()

	sender := ledger.AccountFromBytes([]byte("sender"))
	receiver := ledger.AccountFromBytes([]byte("receiver"))

	open := &ledger.OpenBlock{Source: ledger.ZeroHash, AccountKey: sender}
	send := &ledger.SendBlock{PreviousHash: open.Hash(), Destination: receiver, Balance: uint256.NewInt(100)}
	receiverOpen := &ledger.OpenBlock{Source: send.Hash(), AccountKey: receiver}

	require.NoError(t, db.Update(context.Background(), func(tx store.RwTx) error {
		return v.Process(tx, open)
	}))

	require.NoError(t, db.Update(context.Background(), func(tx store.RwTx) error {
		return v.Process(tx, send)
	}))

	require.NoError(t, db.Update(context.Background(), func(tx store.RwTx) error {
		return v.Process(tx, receiverOpen)
	}))

	require.NoError(t, db.View(context.Background(), func(tx store.Tx) error {
		info, err := tx.AccountInfo(receiver)
		require.NoError(t, err)
		require.Equal(t, receiverOpen.Hash(), info.Head)
		require.True(t, info.Balance.Eq(uint256.NewInt(100)))
		return nil
	}))
}

func TestReferenceRejectsDoubleOpen(t *testing.T) {
	db := openTestDB(t)
	v := NewReference()
	account := ledger.AccountFromBytes([]byte("account"))
	open := &ledger.OpenBlock{Source: ledger.ZeroHash, AccountKey: account}

	require.NoError(t, db.Update(context.Background(), func(tx store.RwTx) error {
		return v.Process(tx, open)
	}))

	err := db.Update(context.Background(), func(tx store.RwTx) error {
		return v.Process(tx, &ledger.OpenBlock{Source: ledger.ZeroHash, AccountKey: account})
	})
	require.ErrorIs(t, err, ErrRejected)
}

func TestReferenceRejectsSendWithWrongPrevious(t *testing.T) {
	db := openTestDB(t)
	v := NewReference()
	account := ledger.AccountFromBytes([]byte("account"))
	open := &ledger.OpenBlock{Source: ledger.ZeroHash, AccountKey: account}

	require.NoError(t, db.Update(context.Background(), func(tx store.RwTx) error {
		return v.Process(tx, open)
	}))

	stale := &ledger.SendBlock{PreviousHash: ledger.HashFromBytes([]byte("not-the-head")), Balance: uint256.NewInt(1)}
	err := db.Update(context.Background(), func(tx store.RwTx) error {
		return v.Process(tx, stale)
	})
	require.Error(t, err)
}

func TestReferenceRejectsReceiveClaimingNonSend(t *testing.T) {
	db := openTestDB(t)
	v := NewReference()
	account := ledger.AccountFromBytes([]byte("account"))
	open := &ledger.OpenBlock{Source: ledger.ZeroHash, AccountKey: account}

	require.NoError(t, db.Update(context.Background(), func(tx store.RwTx) error {
		return v.Process(tx, open)
	}))

	change := &ledger.ChangeBlock{PreviousHash: open.Hash()}
	require.NoError(t, db.Update(context.Background(), func(tx store.RwTx) error {
		return v.Process(tx, change)
	}))

	receive := &ledger.ReceiveBlock{PreviousHash: change.Hash(), Source: change.Hash()}
	err := db.Update(context.Background(), func(tx store.RwTx) error {
		return v.Process(tx, receive)
	})
	require.ErrorIs(t, err, ErrRejected)
}
