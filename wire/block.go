package wire

import (
	"io"

	"github.com/blocklattice/ledger/ledger"
)

// WriteBlock writes one <type_tag><payload> pair (spec.md §6).
func WriteBlock(w io.Writer, b ledger.Block) error {
	if _, err := w.Write([]byte{byte(b.Type())}); err != nil {
		return err
	}
	_, err := w.Write(b.Marshal())
	return err
}

// WriteNotABlock writes the block-stream terminator tag used by
// bulk_pull (end of account) and bulk_push (end of session).
func WriteNotABlock(w io.Writer) error {
	_, err := w.Write([]byte{byte(ledger.TypeNotABlock)})
	return err
}

// ReadBlockOrTerminator reads one type tag and, unless it is the
// not_a_block terminator, the fixed-size payload that follows it. ok is
// false iff the terminator was read.
func ReadBlockOrTerminator(r io.Reader) (b ledger.Block, ok bool, err error) {
	var tagBuf [1]byte
	if _, err = io.ReadFull(r, tagBuf[:]); err != nil {
		return nil, false, err
	}
	tag := ledger.BlockType(tagBuf[0])
	if tag == ledger.TypeNotABlock {
		return nil, false, nil
	}
	size, known := tag.PayloadSize()
	if !known {
		return nil, false, &UnknownBlockTypeError{Tag: tag}
	}
	payload := make([]byte, size)
	if _, err = io.ReadFull(r, payload); err != nil {
		return nil, false, err
	}
	b, err = ledger.Unmarshal(tag, payload)
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// UnknownBlockTypeError is a protocol error (spec.md §7): an unrecognized
// type tag on the block stream.
type UnknownBlockTypeError struct {
	Tag ledger.BlockType
}

func (e *UnknownBlockTypeError) Error() string {
	return "wire: unknown block type tag: " + e.Tag.String()
}
