package bootstrap

import (
	"context"
	"sync"

	"github.com/erigontech/erigon-lib/log/v3"

	"github.com/blocklattice/ledger/store"
	"github.com/blocklattice/ledger/validator"
)

// Observer is notified when an outbound bootstrap session ends.
// inProgressNow is always false: spec.md §4.4 fires observers "with
// in_progress_now=false" on completion, success or failure alike.
type Observer func(inProgressNow bool)

// PeerSource supplies a peer address for BootstrapAny. Peer discovery,
// gossip, and voting are external collaborators (spec.md §1); the
// initiator only needs one address picked from whatever the caller's
// peer set is.
type PeerSource interface {
	AnyPeer() (addr string, ok bool)
}

// Initiator orchestrates outbound bootstrap sessions (spec.md §4.4):
// at most one in progress at a time, warm-up deduplicated per process,
// observers notified on every completion.
type Initiator struct {
	db        *store.DB
	validator validator.Validator
	cfg       Config
	logger    log.Logger

	mu         sync.Mutex
	inProgress bool
	warmedUp   map[string]bool
	observers  []Observer
}

func NewInitiator(db *store.DB, v validator.Validator, cfg Config, logger log.Logger) *Initiator {
	return &Initiator{
		db:        db,
		validator: v,
		cfg:       cfg,
		logger:    logger,
		warmedUp:  make(map[string]bool),
	}
}

// OnCompletion registers obs to be called after every bootstrap
// session, in progress or not. Registration is safe to call concurrently
// with running sessions.
func (in *Initiator) OnCompletion(obs Observer) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.observers = append(in.observers, obs)
}

// Bootstrap starts an outbound session to addr unless one is already in
// progress, in which case the call is a no-op (spec.md §4.4, §8 S6).
func (in *Initiator) Bootstrap(ctx context.Context, addr string) {
	in.mu.Lock()
	if in.inProgress {
		in.mu.Unlock()
		return
	}
	in.inProgress = true
	in.mu.Unlock()

	go in.run(ctx, addr)
}

// Warmup bootstraps addr only if it has never been warmed up in this
// process (spec.md §4.4, §8 S5).
func (in *Initiator) Warmup(ctx context.Context, addr string) {
	in.mu.Lock()
	if in.warmedUp[addr] {
		in.mu.Unlock()
		return
	}
	in.warmedUp[addr] = true
	in.mu.Unlock()

	in.Bootstrap(ctx, addr)
}

// BootstrapAny bootstraps against whatever address peers supplies.
func (in *Initiator) BootstrapAny(ctx context.Context, peers PeerSource) {
	addr, ok := peers.AnyPeer()
	if !ok {
		return
	}
	in.Bootstrap(ctx, addr)
}

// InProgress reports whether an outbound session is currently running.
func (in *Initiator) InProgress() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.inProgress
}

func (in *Initiator) run(ctx context.Context, addr string) {
	logger := in.logger.New("remote", addr)
	err := RunClient(ctx, addr, in.db, in.validator, in.cfg, logger)
	if err != nil {
		logger.Warn("bootstrap session ended with error", "err", err)
	} else {
		logger.Info("bootstrap session completed")
	}

	in.mu.Lock()
	in.inProgress = false
	observers := append([]Observer(nil), in.observers...)
	in.mu.Unlock()

	for _, obs := range observers {
		obs(false)
	}
}
