package ledger

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestSendBlockRoundTrip(t *testing.T) {
	want := &SendBlock{
		PreviousHash: HashFromBytes([]byte("previous-block-hash-32-bytes!!!")),
		Destination:  AccountFromBytes([]byte("destination-account-32-bytes!!!")),
		Balance:      uint256.NewInt(12345),
		Work:         0xdeadbeef,
	}
	got, err := UnmarshalSend(want.Marshal())
	require.NoError(t, err)
	require.Equal(t, want.PreviousHash, got.PreviousHash)
	require.Equal(t, want.Destination, got.Destination)
	require.True(t, want.Balance.Eq(got.Balance))
	require.Equal(t, want.Work, got.Work)
}

func TestHashIsDeterministicAndTypeDiscriminating(t *testing.T) {
	send := &SendBlock{Balance: uint256.NewInt(1)}
	recv := &ReceiveBlock{}
	change := &ChangeBlock{}

	h1 := send.Hash()
	h2 := send.Hash()
	require.Equal(t, h1, h2, "hashing the same block twice must be deterministic")

	// A zero receive block and a zero change block encode to the same
	// zero-filled bytes of the same length, yet must still hash
	// differently, since the type tag is folded into the digest.
	require.Equal(t, recv.Marshal(), change.Marshal())
	require.NotEqual(t, recv.Hash(), change.Hash())
}

func TestOpenBlockPreviousIsItsSource(t *testing.T) {
	open := &OpenBlock{Source: HashFromBytes([]byte("some-send-block-hash-32-bytes!!!"))}
	require.Equal(t, open.Source, open.Previous(), "open block's causal dependency is its source, not a same-chain predecessor")
}

func TestUnmarshalRejectsWrongPayloadSize(t *testing.T) {
	_, err := UnmarshalSend([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestUnmarshalDispatchesByType(t *testing.T) {
	send := &SendBlock{Balance: uint256.NewInt(7)}
	decoded, err := Unmarshal(TypeSend, send.Marshal())
	require.NoError(t, err)
	require.IsType(t, &SendBlock{}, decoded)

	_, err = Unmarshal(TypeInvalid, nil)
	require.Error(t, err)
}
