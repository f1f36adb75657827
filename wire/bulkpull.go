package wire

import (
	"io"

	"github.com/blocklattice/ledger/ledger"
)

// BulkPull is the bulk_pull message body (spec.md §6): account:32 | end:32.
// The peer streams blocks from its head for Account back toward, but not
// including, End.
type BulkPull struct {
	Account ledger.Account
	End     ledger.Hash
}

const bulkPullSize = 32 + 32

func (p BulkPull) Marshal() []byte {
	buf := make([]byte, bulkPullSize)
	copy(buf[0:32], p.Account.Bytes())
	copy(buf[32:64], p.End.Bytes())
	return buf
}

func WriteBulkPull(w io.Writer, p BulkPull) error {
	if err := WriteHeader(w, TypeBulkPull); err != nil {
		return err
	}
	_, err := w.Write(p.Marshal())
	return err
}

func ReadBulkPullBody(r io.Reader) (BulkPull, error) {
	var buf [bulkPullSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return BulkPull{}, err
	}
	return BulkPull{
		Account: ledger.AccountFromBytes(buf[0:32]),
		End:     ledger.HashFromBytes(buf[32:64]),
	}, nil
}
