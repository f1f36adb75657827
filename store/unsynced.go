package store

import (
	"github.com/blocklattice/ledger/ledger"
)

// UnsyncedRecord is one entry in the "unsynced" staging table
// (spec.md §3, §9 Open Question). LocalHead is where BulkPushClient
// starts walking backwards from (spec.md §4.7: "For each (account,
// local_head) in the unsynced table..."). KnownToPeer is the hash the
// walk should stop at because the peer already has it: the remote head
// when FrontierReqClient found a diverged-but-known account, or the
// zero hash when the account was entirely unknown to the peer (spec.md
// §9's resolution of the Open Question: "account absent on peer" means
// "entire chain from local head is unsynced").
type UnsyncedRecord struct {
	LocalHead   ledger.Hash
	KnownToPeer ledger.Hash
}

const unsyncedRecordSize = 32 + 32

func (r UnsyncedRecord) marshal() []byte {
	buf := make([]byte, unsyncedRecordSize)
	copy(buf[:32], r.LocalHead.Bytes())
	copy(buf[32:], r.KnownToPeer.Bytes())
	return buf
}

func unmarshalUnsyncedRecord(b []byte) UnsyncedRecord {
	return UnsyncedRecord{
		LocalHead:   ledger.HashFromBytes(b[:32]),
		KnownToPeer: ledger.HashFromBytes(b[32:64]),
	}
}

// PutUnsynced records (or overwrites) an account's unsynced entry. Per
// spec.md §3's invariant, a session applies the peer's frontier for an
// account at most once, so this is expected to be called at most once
// per account per session.
func (t RwTx) PutUnsynced(account ledger.Account, rec UnsyncedRecord) error {
	return t.put(Unsynced, account.Bytes(), rec.marshal())
}

// GetUnsynced reads an account's unsynced entry, returning (zero, false)
// if absent.
func (t Tx) GetUnsynced(account ledger.Account) (UnsyncedRecord, bool, error) {
	v, err := t.getOne(Unsynced, account.Bytes())
	if err != nil {
		return UnsyncedRecord{}, false, err
	}
	if v == nil {
		return UnsyncedRecord{}, false, nil
	}
	return unmarshalUnsyncedRecord(v), true, nil
}

// DeleteUnsynced removes an account's entry once BulkPushClient has
// finished pushing its chain.
func (t RwTx) DeleteUnsynced(account ledger.Account) error {
	return t.delete(Unsynced, account.Bytes())
}

// ForEachUnsynced iterates the unsynced table in key order, the
// iteration BulkPushClient drives (spec.md §4.7).
func (t Tx) ForEachUnsynced(fn func(account ledger.Account, rec UnsyncedRecord) (bool, error)) error {
	return t.ForEach(Unsynced, nil, func(k, v []byte) (bool, error) {
		return fn(ledger.AccountFromBytes(k), unmarshalUnsyncedRecord(v))
	})
}
