package bootstrap

import (
	"context"
	"errors"
	"io"

	"github.com/blocklattice/ledger/ledger"
	"github.com/blocklattice/ledger/store"
	"github.com/blocklattice/ledger/validator"
	"github.com/blocklattice/ledger/wire"
)

// handleBulkPush drives BulkPushServer (spec.md §4.11): mirror of
// BulkPushClient, reading <type_tag><payload> pairs and handing each to
// the validator until the not_a_block terminator closes the stream. The
// sender already walked its PushSynchronizer predecessor-first, so no
// synchronizer is needed on this side; blocks are applied in the order
// they arrive.
func handleBulkPush(rw io.Reader, db *store.DB, v validator.Validator) error {
	for {
		block, ok, err := wire.ReadBlockOrTerminator(rw)
		var unknownTag *wire.UnknownBlockTypeError
		if errors.As(err, &unknownTag) {
			return wrap(KindProtocol, err, "reading pushed block")
		}
		if err != nil {
			return wrap(KindTransport, err, "reading pushed block")
		}
		if !ok {
			return nil
		}
		if err := applyPushedBlock(db, v, block); err != nil {
			return err
		}
	}
}

func applyPushedBlock(db *store.DB, v validator.Validator, block ledger.Block) error {
	return db.Update(context.Background(), func(tx store.RwTx) error {
		if err := v.Process(tx, block); err != nil {
			return wrap(KindValidatorRejected, err, "validating pushed block "+block.Hash().String())
		}
		return nil
	})
}
