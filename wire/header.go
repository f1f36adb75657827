// Package wire implements the bootstrap subsystem's on-the-wire framing
// (spec.md §6): the 8-byte message header and the three message bodies
// multiplexed on one TCP connection. Parsing/serializing the rest of
// the ledger's message types is out of scope (spec.md §1); this package
// only knows the framing the bootstrap flows use.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MessageType is the one-byte discriminator in the header.
type MessageType byte

const (
	TypeBulkPull   MessageType = 0x06
	TypeBulkPush   MessageType = 0x07
	TypeFrontierReq MessageType = 0x08
)

func (t MessageType) String() string {
	switch t {
	case TypeBulkPull:
		return "bulk_pull"
	case TypeBulkPush:
		return "bulk_push"
	case TypeFrontierReq:
		return "frontier_req"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(t))
	}
}

// magic identifies the protocol family on the wire; version fields let
// peers negotiate, but the bootstrap subsystem only inspects Type.
const magic = 0x5242 // "RB": this ledger's wire family

const (
	versionMax   = 18
	versionUsing = 18
	versionMin   = 1
)

const HeaderSize = 8

// Header is the fixed 8-byte preamble on every bootstrap message:
// magic:2 | version_max:1 | version_using:1 | version_min:1 | type:1 | extensions:2.
type Header struct {
	Type       MessageType
	Extensions uint16
}

func (h Header) Marshal() []byte {
	buf := make([]byte, HeaderSize)
	binary.BigEndian.PutUint16(buf[0:2], magic)
	buf[2] = versionMax
	buf[3] = versionUsing
	buf[4] = versionMin
	buf[5] = byte(h.Type)
	binary.BigEndian.PutUint16(buf[6:8], h.Extensions)
	return buf
}

// WriteHeader writes the 8-byte header for the given message type.
func WriteHeader(w io.Writer, t MessageType) error {
	_, err := w.Write(Header{Type: t}.Marshal())
	return err
}

// ErrBadMagic is returned by ReadHeader when the magic bytes don't
// match this protocol family: a protocol error per spec.md §7.
var ErrBadMagic = fmt.Errorf("wire: bad magic in message header")

// ReadHeader reads and validates the 8-byte header, returning the
// decoded type. Any read failure (including EOF mid-header) is a
// transport error per spec.md §7 and is returned unwrapped so callers
// can distinguish it from ErrBadMagic with errors.Is.
func ReadHeader(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, err
	}
	if binary.BigEndian.Uint16(buf[0:2]) != magic {
		return Header{}, ErrBadMagic
	}
	return Header{
		Type:       MessageType(buf[5]),
		Extensions: binary.BigEndian.Uint16(buf[6:8]),
	}, nil
}
