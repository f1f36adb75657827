package ledger

import (
	"time"

	"github.com/holiman/uint256"
)

// AccountInfo is the per-account record kept in the accounts table.
type AccountInfo struct {
	Head           Hash
	Representative Account
	Balance        *uint256.Int
	Modified       time.Time
	BlockCount     uint64
}

// Frontier returns the (account, head) pair the bootstrap protocol
// exchanges; head is the zero hash when head information is not yet
// known (used only by callers that construct a synthetic AccountInfo).
func (ai *AccountInfo) Frontier(account Account) Frontier {
	return Frontier{Account: account, Head: ai.Head}
}

const accountInfoSize = 32 + 32 + 16 + 8 + 8 // head, rep, balance, modified(unix seconds), block_count

// Marshal encodes the account record for storage. Field order matches
// the struct so the binary layout is stable across accesses.
func (ai *AccountInfo) Marshal() []byte {
	buf := make([]byte, accountInfoSize)
	off := 0
	off += copy(buf[off:], ai.Head.Bytes())
	off += copy(buf[off:], ai.Representative.Bytes())
	putBalance(buf[off:off+16], ai.Balance)
	off += 16
	putUint64(buf[off:off+8], uint64(ai.Modified.Unix()))
	off += 8
	putUint64(buf[off:off+8], ai.BlockCount)
	return buf
}

func UnmarshalAccountInfo(b []byte) (*AccountInfo, error) {
	if len(b) != accountInfoSize {
		return nil, errAccountInfoSize(len(b))
	}
	ai := &AccountInfo{}
	off := 0
	ai.Head = HashFromBytes(b[off : off+32])
	off += 32
	ai.Representative = AccountFromBytes(b[off : off+32])
	off += 32
	ai.Balance = balanceFromBytes(b[off : off+16])
	off += 16
	ai.Modified = time.Unix(int64(getUint64(b[off:off+8])), 0).UTC()
	off += 8
	ai.BlockCount = getUint64(b[off : off+8])
	return ai, nil
}

type errAccountInfoSize int

func (n errAccountInfoSize) Error() string {
	return "ledger: account info: want fixed-size record, got different length"
}
