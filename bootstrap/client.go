package bootstrap

import (
	"context"
	"net"
	"time"

	"github.com/erigontech/erigon-lib/log/v3"

	"github.com/blocklattice/ledger/store"
	"github.com/blocklattice/ledger/validator"
)

// deadlineConn resets the connection's read/write deadline before every
// operation, so a single slow or silent peer can't hold the session
// open past cfg.IOTimeout (spec.md §7: "bounds every individual socket
// read/write").
type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (c *deadlineConn) Read(p []byte) (int, error) {
	if err := c.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}

func (c *deadlineConn) Write(p []byte) (int, error) {
	if err := c.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Write(p)
}

// RunClient drives one outbound bootstrap session end to end: connect,
// exchange frontiers, pull what we're missing, then push what the peer
// is missing (spec.md §4.5's completed_requests -> completed_pulls ->
// completed_pushes transition). Any error aborts the session and is
// returned to the caller (Initiator), which logs it; nothing is retried.
func RunClient(ctx context.Context, addr string, db *store.DB, v validator.Validator, cfg Config, logger log.Logger) error {
	dialer := net.Dialer{Timeout: cfg.IOTimeout}
	raw, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return wrap(KindTransport, err, "dialing peer")
	}
	defer raw.Close()
	conn := &deadlineConn{Conn: raw, timeout: cfg.IOTimeout}

	logger.Debug("frontier exchange starting")
	var result frontierResult
	err = db.View(ctx, func(tx store.Tx) error {
		var err error
		result, err = runFrontierExchange(conn, tx)
		return err
	})
	if err != nil {
		return err
	}
	logger.Debug("frontier exchange done", "pulls", len(result.pulls), "pushes", len(result.pushes))

	if len(result.pushes) > 0 {
		err = db.Update(ctx, func(tx store.RwTx) error {
			for _, p := range result.pushes {
				if err := tx.PutUnsynced(p.Account, store.UnsyncedRecord{
					LocalHead:   p.LocalHead,
					KnownToPeer: p.KnownToPeer,
				}); err != nil {
					return wrap(KindStore, err, "staging unsynced record")
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	logger.Debug("bulk pull starting", "accounts", len(result.pulls))
	if err := runBulkPull(conn, db, v, cfg, result.pulls, logger); err != nil {
		return err
	}

	logger.Debug("bulk push starting")
	return runBulkPush(conn, db)
}
