package bootstrap

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/erigontech/erigon-lib/log/v3"

	"github.com/blocklattice/ledger/store"
	"github.com/blocklattice/ledger/validator"
	"github.com/blocklattice/ledger/wire"
)

// BootstrapServer owns one inbound connection (spec.md §4.8). Requests
// on a connection are handled strictly one at a time: the connection is
// read synchronously, so the next header is never read until the
// current request's handler returns, giving the FIFO-per-connection
// ordering spec.md §5 describes without needing an explicit queue.
type BootstrapServer struct {
	conn   *deadlineConn
	db     *store.DB
	v      validator.Validator
	cfg    Config
	logger log.Logger
}

func newBootstrapServer(conn net.Conn, db *store.DB, v validator.Validator, cfg Config, logger log.Logger) *BootstrapServer {
	return &BootstrapServer{
		conn:   &deadlineConn{Conn: conn, timeout: cfg.IOTimeout},
		db:     db,
		v:      v,
		cfg:    cfg,
		logger: logger,
	}
}

// Run reads and dispatches headers until the connection closes or a
// transport/protocol error terminates it (spec.md §4.8: "unknown or
// malformed headers terminate the connection").
func (s *BootstrapServer) Run(ctx context.Context) error {
	defer s.conn.Close()
	for {
		header, err := wire.ReadHeader(s.conn)
		if errors.Is(err, wire.ErrBadMagic) {
			return wrap(KindProtocol, err, "reading request header")
		}
		if err != nil {
			return wrap(KindTransport, err, "reading request header")
		}
		if err := s.dispatch(ctx, header); err != nil {
			return err
		}
	}
}

func (s *BootstrapServer) dispatch(ctx context.Context, header wire.Header) error {
	switch header.Type {
	case wire.TypeFrontierReq:
		req, err := wire.ReadFrontierReqBody(s.conn)
		if err != nil {
			return wrap(KindTransport, err, "reading frontier_req body")
		}
		return s.db.View(ctx, func(tx store.Tx) error {
			return handleFrontierReq(s.conn, tx, req, time.Now())
		})
	case wire.TypeBulkPull:
		req, err := wire.ReadBulkPullBody(s.conn)
		if err != nil {
			return wrap(KindTransport, err, "reading bulk_pull body")
		}
		return s.db.View(ctx, func(tx store.Tx) error {
			return handleBulkPull(s.conn, tx, req)
		})
	case wire.TypeBulkPush:
		return handleBulkPush(s.conn, s.db, s.v)
	default:
		return wrap(KindProtocol, &unknownMessageTypeError{Type: header.Type}, "dispatching request")
	}
}

type unknownMessageTypeError struct {
	Type wire.MessageType
}

func (e *unknownMessageTypeError) Error() string {
	return "bootstrap: unknown message type: " + e.Type.String()
}
