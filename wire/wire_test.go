package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blocklattice/ledger/ledger"
)

func TestHeaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHeader(&buf, TypeBulkPull))

	h, err := ReadHeader(&buf)
	require.NoError(t, err)
	require.Equal(t, TypeBulkPull, h.Type)
}

func TestReadHeaderRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBuffer(make([]byte, HeaderSize))
	_, err := ReadHeader(buf)
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestFrontierReqRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := FrontierReq{StartAccount: ledger.AccountFromBytes([]byte("account")), Age: MaxAge, Count: 10}
	require.NoError(t, WriteFrontierReq(&buf, want))

	h, err := ReadHeader(&buf)
	require.NoError(t, err)
	require.Equal(t, TypeFrontierReq, h.Type)

	got, err := ReadFrontierReqBody(&buf)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestFrontierStreamTerminator(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrontierRecord(&buf, Terminator))
	rec, err := ReadFrontierRecord(&buf)
	require.NoError(t, err)
	require.True(t, rec.IsTerminator())
}

func TestBlockStreamRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	block := &ledger.ReceiveBlock{PreviousHash: ledger.HashFromBytes([]byte("prev")), Source: ledger.HashFromBytes([]byte("src"))}
	require.NoError(t, WriteBlock(&buf, block))
	require.NoError(t, WriteNotABlock(&buf))

	got, ok, err := ReadBlockOrTerminator(&buf)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, block.Hash(), got.Hash())

	_, ok, err = ReadBlockOrTerminator(&buf)
	require.NoError(t, err)
	require.False(t, ok, "not_a_block tag must report ok=false")
}

func TestReadBlockOrTerminatorRejectsUnknownType(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(0xfe)
	_, _, err := ReadBlockOrTerminator(&buf)
	require.Error(t, err)
	var unknown *UnknownBlockTypeError
	require.ErrorAs(t, err, &unknown)
}
