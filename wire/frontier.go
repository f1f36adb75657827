package wire

import (
	"encoding/binary"
	"io"

	"github.com/blocklattice/ledger/ledger"
)

// FrontierReq is the frontier_req message body (spec.md §6):
// start_account:32 | age:4 LE | count:4 LE.
type FrontierReq struct {
	StartAccount ledger.Account
	Age          uint32
	Count        uint32
}

const frontierReqSize = 32 + 4 + 4

// MaxAge and MaxCount request every frontier regardless of age or
// position, matching FrontierReqClient's initial request (spec.md §4.5
// step 1: "age = max, count = max").
const (
	MaxAge   = ^uint32(0)
	MaxCount = ^uint32(0)
)

func (r FrontierReq) Marshal() []byte {
	buf := make([]byte, frontierReqSize)
	copy(buf[0:32], r.StartAccount.Bytes())
	binary.LittleEndian.PutUint32(buf[32:36], r.Age)
	binary.LittleEndian.PutUint32(buf[36:40], r.Count)
	return buf
}

func WriteFrontierReq(w io.Writer, r FrontierReq) error {
	if err := WriteHeader(w, TypeFrontierReq); err != nil {
		return err
	}
	_, err := w.Write(r.Marshal())
	return err
}

func ReadFrontierReqBody(r io.Reader) (FrontierReq, error) {
	var buf [frontierReqSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return FrontierReq{}, err
	}
	return FrontierReq{
		StartAccount: ledger.AccountFromBytes(buf[0:32]),
		Age:          binary.LittleEndian.Uint32(buf[32:36]),
		Count:        binary.LittleEndian.Uint32(buf[36:40]),
	}, nil
}

// FrontierRecord is one (account, head_hash) pair in the frontier
// stream, terminated by the zero/zero record (spec.md §6).
type FrontierRecord struct {
	Account ledger.Account
	Head    ledger.Hash
}

const frontierRecordSize = 32 + 32

// IsTerminator reports whether this record is the (0, 0) stream terminator.
func (f FrontierRecord) IsTerminator() bool {
	return f.Account == (ledger.Account{}) && f.Head.IsZero()
}

// Terminator is the (0, 0) record that ends a frontier stream.
var Terminator = FrontierRecord{}

func (f FrontierRecord) Marshal() []byte {
	buf := make([]byte, frontierRecordSize)
	copy(buf[0:32], f.Account.Bytes())
	copy(buf[32:64], f.Head.Bytes())
	return buf
}

func WriteFrontierRecord(w io.Writer, f FrontierRecord) error {
	_, err := w.Write(f.Marshal())
	return err
}

func ReadFrontierRecord(r io.Reader) (FrontierRecord, error) {
	var buf [frontierRecordSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return FrontierRecord{}, err
	}
	return FrontierRecord{
		Account: ledger.AccountFromBytes(buf[0:32]),
		Head:    ledger.HashFromBytes(buf[32:64]),
	}, nil
}
