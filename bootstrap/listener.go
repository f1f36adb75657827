package bootstrap

import (
	"context"
	"net"

	"github.com/erigontech/erigon-lib/log/v3"

	"github.com/blocklattice/ledger/store"
	"github.com/blocklattice/ledger/validator"
)

// Listener accepts inbound bootstrap connections and hands each to its
// own BootstrapServer (spec.md §4.8). One goroutine per connection
// mirrors the reactor's per-connection session lifetime without
// needing callback bookkeeping.
type Listener struct {
	ln     net.Listener
	db     *store.DB
	v      validator.Validator
	cfg    Config
	logger log.Logger
}

// NewListener binds cfg.ListenAddr (spec.md §6: "binds IPv6 [::]:port").
func NewListener(db *store.DB, v validator.Validator, cfg Config, logger log.Logger) (*Listener, error) {
	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return nil, wrap(KindTransport, err, "binding bootstrap listener")
	}
	return &Listener{ln: ln, db: db, v: v, cfg: cfg, logger: logger}, nil
}

func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

func (l *Listener) Close() error { return l.ln.Close() }

// Serve accepts connections until ctx is canceled or the listener is
// closed. Each accepted connection is served on its own goroutine and
// does not block subsequent accepts.
func (l *Listener) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		l.ln.Close()
	}()

	for {
		conn, err := l.ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return wrap(KindTransport, err, "accepting bootstrap connection")
			}
		}
		go l.serveOne(ctx, conn)
	}
}

func (l *Listener) serveOne(ctx context.Context, conn net.Conn) {
	logger := l.logger.New("remote", conn.RemoteAddr().String())
	server := newBootstrapServer(conn, l.db, l.v, l.cfg, logger)
	if err := server.Run(ctx); err != nil {
		logger.Debug("bootstrap session ended", "err", err)
	}
}
