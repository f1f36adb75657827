package ledger

import (
	"fmt"

	"github.com/holiman/uint256"
	"golang.org/x/crypto/blake2b"
)

// BlockType is the one-byte wire tag that precedes every block payload.
type BlockType byte

const (
	TypeInvalid   BlockType = 0
	TypeNotABlock BlockType = 1
	TypeSend      BlockType = 2
	TypeReceive   BlockType = 3
	TypeOpen      BlockType = 4
	TypeChange    BlockType = 5
)

func (t BlockType) String() string {
	switch t {
	case TypeInvalid:
		return "invalid"
	case TypeNotABlock:
		return "not_a_block"
	case TypeSend:
		return "send"
	case TypeReceive:
		return "receive"
	case TypeOpen:
		return "open"
	case TypeChange:
		return "change"
	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}

// PayloadSize is the fixed, per-type body size that follows the type tag
// on the wire (spec §6: "Payload sizes are fixed per type").
func (t BlockType) PayloadSize() (int, bool) {
	switch t {
	case TypeSend:
		return sendPayloadSize, true
	case TypeReceive:
		return receivePayloadSize, true
	case TypeOpen:
		return openPayloadSize, true
	case TypeChange:
		return changePayloadSize, true
	default:
		return 0, false
	}
}

// Block is implemented by every block variant. Previous returns the
// predecessor reference the causal-order synchronizer walks: for
// send/receive/change it is the account's previous block, for open it is
// the source (receive-from) block on the sending account's chain.
type Block interface {
	Type() BlockType
	Hash() Hash
	Previous() Hash
	Marshal() []byte
}

const (
	sendPayloadSize    = 32 + 32 + 16 + 64 + 8 // previous, destination, balance, signature, work
	receivePayloadSize = 32 + 32 + 64 + 8      // previous, source, signature, work
	openPayloadSize    = 32 + 32 + 32 + 64 + 8 // source, representative, account, signature, work
	changePayloadSize  = 32 + 32 + 64 + 8      // previous, representative, signature, work
)

// SendBlock sends funds from Previous's account to Destination; Balance
// is what remains on the sending account afterwards. It is claimed by a
// matching ReceiveBlock or OpenBlock on Destination's chain.
type SendBlock struct {
	PreviousHash Hash
	Destination  Account
	Balance      *uint256.Int // u128: balance remaining on the sending account after this send
	Signature    [64]byte
	Work         uint64
}

func (b *SendBlock) Type() BlockType   { return TypeSend }
func (b *SendBlock) Previous() Hash    { return b.PreviousHash }
func (b *SendBlock) Hash() Hash        { return hashPayload(TypeSend, b.Marshal()) }
func (b *SendBlock) Marshal() []byte {
	buf := make([]byte, sendPayloadSize)
	off := 0
	off += copy(buf[off:], b.PreviousHash.Bytes())
	off += copy(buf[off:], b.Destination.Bytes())
	putBalance(buf[off:off+16], b.Balance)
	off += 16
	off += copy(buf[off:], b.Signature[:])
	putUint64(buf[off:off+8], b.Work)
	return buf
}

func UnmarshalSend(payload []byte) (*SendBlock, error) {
	if len(payload) != sendPayloadSize {
		return nil, fmt.Errorf("send block: want %d bytes, got %d", sendPayloadSize, len(payload))
	}
	b := &SendBlock{}
	off := 0
	b.PreviousHash = HashFromBytes(payload[off : off+32])
	off += 32
	b.Destination = AccountFromBytes(payload[off : off+32])
	off += 32
	b.Balance = balanceFromBytes(payload[off : off+16])
	off += 16
	copy(b.Signature[:], payload[off:off+64])
	off += 64
	b.Work = getUint64(payload[off : off+8])
	return b, nil
}

// ReceiveBlock claims the remainder of a SendBlock (Source) into the
// account that owns Previous.
type ReceiveBlock struct {
	PreviousHash Hash
	Source       Hash
	Signature    [64]byte
	Work         uint64
}

func (b *ReceiveBlock) Type() BlockType { return TypeReceive }
func (b *ReceiveBlock) Previous() Hash  { return b.PreviousHash }
func (b *ReceiveBlock) Hash() Hash      { return hashPayload(TypeReceive, b.Marshal()) }
func (b *ReceiveBlock) Marshal() []byte {
	buf := make([]byte, receivePayloadSize)
	off := 0
	off += copy(buf[off:], b.PreviousHash.Bytes())
	off += copy(buf[off:], b.Source.Bytes())
	off += copy(buf[off:], b.Signature[:])
	putUint64(buf[off:off+8], b.Work)
	return buf
}

func UnmarshalReceive(payload []byte) (*ReceiveBlock, error) {
	if len(payload) != receivePayloadSize {
		return nil, fmt.Errorf("receive block: want %d bytes, got %d", receivePayloadSize, len(payload))
	}
	b := &ReceiveBlock{}
	off := 0
	b.PreviousHash = HashFromBytes(payload[off : off+32])
	off += 32
	b.Source = HashFromBytes(payload[off : off+32])
	off += 32
	copy(b.Signature[:], payload[off:off+64])
	off += 64
	b.Work = getUint64(payload[off : off+8])
	return b, nil
}

// OpenBlock is the first block of an account's chain. Its "previous"
// reference (for the synchronizer's purposes) is Source: the send it
// claims on another account's chain.
type OpenBlock struct {
	Source         Hash
	Representative Account
	AccountKey     Account
	Signature      [64]byte
	Work           uint64
}

func (b *OpenBlock) Type() BlockType { return TypeOpen }
func (b *OpenBlock) Previous() Hash  { return b.Source }
func (b *OpenBlock) Hash() Hash      { return hashPayload(TypeOpen, b.Marshal()) }
func (b *OpenBlock) Marshal() []byte {
	buf := make([]byte, openPayloadSize)
	off := 0
	off += copy(buf[off:], b.Source.Bytes())
	off += copy(buf[off:], b.Representative.Bytes())
	off += copy(buf[off:], b.AccountKey.Bytes())
	off += copy(buf[off:], b.Signature[:])
	putUint64(buf[off:off+8], b.Work)
	return buf
}

func UnmarshalOpen(payload []byte) (*OpenBlock, error) {
	if len(payload) != openPayloadSize {
		return nil, fmt.Errorf("open block: want %d bytes, got %d", openPayloadSize, len(payload))
	}
	b := &OpenBlock{}
	off := 0
	b.Source = HashFromBytes(payload[off : off+32])
	off += 32
	b.Representative = AccountFromBytes(payload[off : off+32])
	off += 32
	b.AccountKey = AccountFromBytes(payload[off : off+32])
	off += 32
	copy(b.Signature[:], payload[off:off+64])
	off += 64
	b.Work = getUint64(payload[off : off+8])
	return b, nil
}

// ChangeBlock changes the account's representative without moving funds.
type ChangeBlock struct {
	PreviousHash   Hash
	Representative Account
	Signature      [64]byte
	Work           uint64
}

func (b *ChangeBlock) Type() BlockType { return TypeChange }
func (b *ChangeBlock) Previous() Hash  { return b.PreviousHash }
func (b *ChangeBlock) Hash() Hash      { return hashPayload(TypeChange, b.Marshal()) }
func (b *ChangeBlock) Marshal() []byte {
	buf := make([]byte, changePayloadSize)
	off := 0
	off += copy(buf[off:], b.PreviousHash.Bytes())
	off += copy(buf[off:], b.Representative.Bytes())
	off += copy(buf[off:], b.Signature[:])
	putUint64(buf[off:off+8], b.Work)
	return buf
}

func UnmarshalChange(payload []byte) (*ChangeBlock, error) {
	if len(payload) != changePayloadSize {
		return nil, fmt.Errorf("change block: want %d bytes, got %d", changePayloadSize, len(payload))
	}
	b := &ChangeBlock{}
	off := 0
	b.PreviousHash = HashFromBytes(payload[off : off+32])
	off += 32
	b.Representative = AccountFromBytes(payload[off : off+32])
	off += 32
	copy(b.Signature[:], payload[off:off+64])
	off += 64
	b.Work = getUint64(payload[off : off+8])
	return b, nil
}

// Unmarshal decodes a block of the given type from its fixed-size payload.
func Unmarshal(t BlockType, payload []byte) (Block, error) {
	switch t {
	case TypeSend:
		return UnmarshalSend(payload)
	case TypeReceive:
		return UnmarshalReceive(payload)
	case TypeOpen:
		return UnmarshalOpen(payload)
	case TypeChange:
		return UnmarshalChange(payload)
	default:
		return nil, fmt.Errorf("ledger: unmarshal: unsupported block type %s", t)
	}
}

// hashPayload digests the type tag together with the block body so two
// different block types can never collide on hash even if their bodies
// happened to coincide byte-for-byte.
func hashPayload(t BlockType, payload []byte) Hash {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err) // blake2b.New256 with a nil key never errors
	}
	h.Write([]byte{byte(t)})
	h.Write(payload)
	return HashFromBytes(h.Sum(nil))
}

func putUint64(dst []byte, v uint64) {
	for i := 0; i < 8; i++ {
		dst[7-i] = byte(v >> (8 * i))
	}
}

func getUint64(src []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(src[i])
	}
	return v
}

func putBalance(dst []byte, v *uint256.Int) {
	if v == nil {
		v = new(uint256.Int)
	}
	b := v.Bytes32()
	copy(dst, b[16:32])
}

func balanceFromBytes(src []byte) *uint256.Int {
	var v uint256.Int
	v.SetBytes(src)
	return &v
}
