package store

import (
	"github.com/erigontech/erigon-lib/kv"

	"github.com/blocklattice/ledger/ledger"
)

// AccountInfo reads the account record, returning (nil, nil) if the
// account is unknown to this store.
func (t Tx) AccountInfo(account ledger.Account) (*ledger.AccountInfo, error) {
	v, err := t.getOne(Accounts, account.Bytes())
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return ledger.UnmarshalAccountInfo(v)
}

// PutAccountInfo writes (or overwrites) an account record.
func (t RwTx) PutAccountInfo(account ledger.Account, info *ledger.AccountInfo) error {
	return t.put(Accounts, account.Bytes(), info.Marshal())
}

// ForEachAccountFrom iterates accounts in key order starting at (or
// after) start, the iteration FrontierReqServer (spec.md §4.9) relies
// on.
func (t Tx) ForEachAccountFrom(start ledger.Account, fn func(account ledger.Account, info *ledger.AccountInfo) (bool, error)) error {
	return t.ForEach(Accounts, start.Bytes(), func(k, v []byte) (bool, error) {
		info, err := ledger.UnmarshalAccountInfo(v)
		if err != nil {
			return false, err
		}
		return fn(ledger.AccountFromBytes(k), info)
	})
}

// AccountCursor is a manual, pull-based iterator over the accounts
// table in key order. FrontierReqClient (spec.md §4.5) needs this
// rather than ForEachAccountFrom because it merges the local account
// order against the remote frontier stream one record at a time,
// advancing each side independently depending on the comparison.
type AccountCursor struct {
	c kv.Cursor
}

// AccountCursor opens a manual account cursor. The caller must Close it.
func (t Tx) AccountCursor() (*AccountCursor, error) {
	c, err := t.tx.Cursor(Accounts)
	if err != nil {
		return nil, err
	}
	return &AccountCursor{c: c}, nil
}

func (ac *AccountCursor) Close() { ac.c.Close() }

// First positions the cursor at the first account, if any.
func (ac *AccountCursor) First() (account ledger.Account, info *ledger.AccountInfo, ok bool, err error) {
	k, v, err := ac.c.First()
	return decodeAccountRecord(k, v, err)
}

// Next advances to the next account in key order.
func (ac *AccountCursor) Next() (account ledger.Account, info *ledger.AccountInfo, ok bool, err error) {
	k, v, err := ac.c.Next()
	return decodeAccountRecord(k, v, err)
}

func decodeAccountRecord(k, v []byte, err error) (ledger.Account, *ledger.AccountInfo, bool, error) {
	if err != nil {
		return ledger.Account{}, nil, false, err
	}
	if k == nil {
		return ledger.Account{}, nil, false, nil
	}
	info, err := ledger.UnmarshalAccountInfo(v)
	if err != nil {
		return ledger.Account{}, nil, false, err
	}
	return ledger.AccountFromBytes(k), info, true, nil
}
