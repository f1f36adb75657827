package store

import (
	"context"
	"testing"

	"github.com/erigontech/erigon-lib/log/v3"
	"github.com/stretchr/testify/require"

	"github.com/blocklattice/ledger/ledger"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir(), log.New())
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestAccountInfoRoundTrip(t *testing.T) {
	db := openTestDB(t)
	account := ledger.AccountFromBytes([]byte("account-one"))
	info := &ledger.AccountInfo{Head: ledger.HashFromBytes([]byte("head")), BlockCount: 3}

	require.NoError(t, db.Update(context.Background(), func(tx RwTx) error {
		return tx.PutAccountInfo(account, info)
	}))

	var got *ledger.AccountInfo
	require.NoError(t, db.View(context.Background(), func(tx Tx) error {
		var err error
		got, err = tx.AccountInfo(account)
		return err
	}))
	require.Equal(t, info.Head, got.Head)
	require.Equal(t, info.BlockCount, got.BlockCount)
}

func TestAccountInfoUnknownAccountReturnsNil(t *testing.T) {
	db := openTestDB(t)
	var got *ledger.AccountInfo
	require.NoError(t, db.View(context.Background(), func(tx Tx) error {
		var err error
		got, err = tx.AccountInfo(ledger.AccountFromBytes([]byte("nobody")))
		return err
	}))
	require.Nil(t, got)
}

func TestAccountCursorWalksInKeyOrder(t *testing.T) {
	db := openTestDB(t)
	accounts := []ledger.Account{
		ledger.AccountFromBytes([]byte{3}),
		ledger.AccountFromBytes([]byte{1}),
		ledger.AccountFromBytes([]byte{2}),
	}
	require.NoError(t, db.Update(context.Background(), func(tx RwTx) error {
		for _, a := range accounts {
			if err := tx.PutAccountInfo(a, &ledger.AccountInfo{}); err != nil {
				return err
			}
		}
		return nil
	}))

	var seen []ledger.Account
	require.NoError(t, db.View(context.Background(), func(tx Tx) error {
		cur, err := tx.AccountCursor()
		if err != nil {
			return err
		}
		defer cur.Close()
		for account, _, ok, err := cur.First(); ; account, _, ok, err = cur.Next() {
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			seen = append(seen, account)
		}
	}))

	require.Len(t, seen, 3)
	for i := 1; i < len(seen); i++ {
		require.True(t, seen[i-1].Cmp(seen[i]) < 0, "cursor must yield accounts in ascending key order")
	}
}

func TestBlockRoundTripAndHasBlock(t *testing.T) {
	db := openTestDB(t)
	block := &ledger.ChangeBlock{PreviousHash: ledger.HashFromBytes([]byte("prev"))}

	require.NoError(t, db.Update(context.Background(), func(tx RwTx) error {
		return tx.PutBlock(block)
	}))

	require.NoError(t, db.View(context.Background(), func(tx Tx) error {
		has, err := tx.HasBlock(block.Hash())
		require.NoError(t, err)
		require.True(t, has)

		got, err := tx.GetBlock(block.Hash())
		require.NoError(t, err)
		require.Equal(t, block.Hash(), got.Hash())
		return nil
	}))
}

func TestPendingBlockLifecycle(t *testing.T) {
	db := openTestDB(t)
	block := &ledger.SendBlock{PreviousHash: ledger.HashFromBytes([]byte("prev"))}

	require.NoError(t, db.Update(context.Background(), func(tx RwTx) error {
		return tx.PutPendingBlock(block)
	}))
	require.NoError(t, db.Update(context.Background(), func(tx RwTx) error {
		got, err := tx.GetPendingBlock(block.Hash())
		require.NoError(t, err)
		require.NotNil(t, got)
		return tx.DeletePendingBlock(block.Hash())
	}))
	require.NoError(t, db.View(context.Background(), func(tx Tx) error {
		got, err := tx.GetPendingBlock(block.Hash())
		require.NoError(t, err)
		require.Nil(t, got)
		return nil
	}))
}

func TestUnsyncedTableLifecycle(t *testing.T) {
	db := openTestDB(t)
	account := ledger.AccountFromBytes([]byte("unsynced-account"))
	rec := UnsyncedRecord{LocalHead: ledger.HashFromBytes([]byte("local")), KnownToPeer: ledger.ZeroHash}

	require.NoError(t, db.Update(context.Background(), func(tx RwTx) error {
		return tx.PutUnsynced(account, rec)
	}))

	require.NoError(t, db.View(context.Background(), func(tx Tx) error {
		got, ok, err := tx.GetUnsynced(account)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, rec, got)
		return nil
	}))

	require.NoError(t, db.Update(context.Background(), func(tx RwTx) error {
		return tx.DeleteUnsynced(account)
	}))
	require.NoError(t, db.View(context.Background(), func(tx Tx) error {
		_, ok, err := tx.GetUnsynced(account)
		require.NoError(t, err)
		require.False(t, ok)
		return nil
	}))
}
