package bootstrap

import (
	"github.com/blocklattice/ledger/ledger"
	"github.com/blocklattice/ledger/store"
)

// syncTarget is the capability set spec.md §9 substitutes for the
// source's class hierarchy: PullSynchronizer and PushSynchronizer each
// inject their own answers to "is this hash already at the
// destination?" and "fetch a candidate block to inspect its
// predecessor?" into one shared BlockSynchronizer. Neither needs to
// subclass anything.
type syncTarget interface {
	Synchronized(tx store.Tx, h ledger.Hash) (bool, error)
	Retrieve(tx store.Tx, h ledger.Hash) (ledger.Block, error)
}

// TargetFunc is the callback a synchronize walk delivers predecessor-
// first, causally-ordered blocks to (spec.md §9's "callback-based
// target"). It receives the active transaction explicitly rather than
// closing over one, so callers can see exactly which transaction each
// delivery happened under.
type TargetFunc func(tx store.RwTx, block ledger.Block) error

// ReadTargetFunc is SynchronizeReadOnly's delivery callback: it never
// needs write access to the store (the push direction's target only
// serializes the block to the peer), so the whole walk can run under a
// read-only Tx instead of holding a write transaction open across the
// socket writes it performs (spec.md §5).
type ReadTargetFunc func(tx store.Tx, block ledger.Block) error

// BlockSynchronizer is the generic causal-order delivery engine
// (spec.md §4.1). It walks a block-hash DAG depth-first with an
// explicit stack — chains can be millions deep, so this never recurses
// — delivering each block to TargetFunc exactly once, predecessor
// before successor.
type BlockSynchronizer struct {
	capability syncTarget

	blocks []ledger.Hash        // LIFO stack of pending hashes (spec.md §3)
	sent   map[ledger.Hash]bool // hashes already handed to target this session (spec.md §3)
}

// NewBlockSynchronizer constructs a walker around the given capability
// set. The pull direction uses one instance for a whole bootstrap
// session; the push direction builds one per account, since each
// account's walk stops at its own KnownToPeer hash.
func NewBlockSynchronizer(capability syncTarget) *BlockSynchronizer {
	return &BlockSynchronizer{
		capability: capability,
		sent:       make(map[ledger.Hash]bool),
	}
}

// Synchronize primes the stack with root and repeatedly drains it,
// delivering every unmet predecessor before root itself (spec.md
// §4.1). It returns nil if every dependency was delivered (including
// the idempotent case where root was already synchronized and nothing
// was delivered at all), or the error that aborted the walk.
func (s *BlockSynchronizer) Synchronize(tx store.RwTx, root ledger.Hash, target TargetFunc) error {
	s.blocks = s.blocks[:0]
	s.blocks = append(s.blocks, root)

	for len(s.blocks) > 0 {
		ready, err := s.fillDependencies(tx.Tx)
		if err != nil {
			return err
		}
		if !ready {
			// The stack drained entirely via synchronized/already-sent
			// skips: every node on this path was already at the
			// destination. Nothing left to deliver.
			break
		}
		if err := s.synchronizeOne(tx, target); err != nil {
			return err
		}
	}
	return nil
}

// SynchronizeReadOnly is Synchronize's read-only twin, sharing the same
// stack-walk logic (fillDependencies already only needs a store.Tx):
// used by the push direction, whose target never writes to the store.
func (s *BlockSynchronizer) SynchronizeReadOnly(tx store.Tx, root ledger.Hash, target ReadTargetFunc) error {
	s.blocks = s.blocks[:0]
	s.blocks = append(s.blocks, root)

	for len(s.blocks) > 0 {
		ready, err := s.fillDependencies(tx)
		if err != nil {
			return err
		}
		if !ready {
			break
		}
		if err := s.synchronizeOneReadOnly(tx, target); err != nil {
			return err
		}
	}
	return nil
}

// alreadyDone reports whether h need not be delivered again: either it
// was already handed to target this session (sharing a tail with a
// previously-walked chain), or the capability's own destination already
// has it.
func (s *BlockSynchronizer) alreadyDone(tx store.Tx, h ledger.Hash) (bool, error) {
	if s.sent[h] {
		return true, nil
	}
	return s.capability.Synchronized(tx, h)
}

// fillDependencies peeks the top of the stack, retrieves it, and pushes
// its unmet predecessor, repeating until the top of the stack is ready
// to deliver (a "leaf": its own predecessor is already at the
// destination) or the stack empties out because every node on this
// branch turned out to already be synchronized.
func (s *BlockSynchronizer) fillDependencies(tx store.Tx) (ready bool, err error) {
	for len(s.blocks) > 0 {
		top := s.blocks[len(s.blocks)-1]

		done, err := s.alreadyDone(tx, top)
		if err != nil {
			return false, wrap(KindStore, err, "checking synchronized state")
		}
		if done {
			s.blocks = s.blocks[:len(s.blocks)-1]
			continue
		}

		block, err := s.capability.Retrieve(tx, top)
		if err != nil {
			return false, wrap(KindStore, err, "retrieving candidate block")
		}
		if block == nil {
			return false, wrap(KindDependencyMissing, errDependencyMissing(top), "synchronize")
		}

		leaf, err := s.addDependency(tx, block)
		if err != nil {
			return false, err
		}
		if leaf {
			return true, nil
		}
		// Not a leaf: addDependency pushed block.Previous(); loop again
		// with the new, deeper top of stack.
	}
	return false, nil
}

// addDependency inspects block's predecessor. If the predecessor is
// already at the destination, block itself is ready to deliver (a
// leaf). Otherwise the predecessor is pushed so the next
// fillDependencies iteration walks one level deeper.
func (s *BlockSynchronizer) addDependency(tx store.Tx, block ledger.Block) (leaf bool, err error) {
	prev := block.Previous()
	if prev.IsZero() {
		return true, nil
	}
	done, err := s.alreadyDone(tx, prev)
	if err != nil {
		return false, wrap(KindStore, err, "checking predecessor synchronized state")
	}
	if done {
		return true, nil
	}
	s.blocks = append(s.blocks, prev)
	return false, nil
}

// synchronizeOne pops the (already-primed-ready) top of the stack,
// marks it sent, and delivers it to target.
func (s *BlockSynchronizer) synchronizeOne(tx store.RwTx, target TargetFunc) error {
	h := s.blocks[len(s.blocks)-1]
	s.blocks = s.blocks[:len(s.blocks)-1]

	block, err := s.capability.Retrieve(tx.Tx, h)
	if err != nil {
		return wrap(KindStore, err, "retrieving block to deliver")
	}
	if block == nil {
		return wrap(KindDependencyMissing, errDependencyMissing(h), "synchronize_one")
	}

	s.sent[h] = true
	if err := target(tx, block); err != nil {
		return wrap(KindValidatorRejected, err, "target rejected block "+h.String())
	}
	return nil
}

// synchronizeOneReadOnly mirrors synchronizeOne for the read-only walk.
func (s *BlockSynchronizer) synchronizeOneReadOnly(tx store.Tx, target ReadTargetFunc) error {
	h := s.blocks[len(s.blocks)-1]
	s.blocks = s.blocks[:len(s.blocks)-1]

	block, err := s.capability.Retrieve(tx, h)
	if err != nil {
		return wrap(KindStore, err, "retrieving block to deliver")
	}
	if block == nil {
		return wrap(KindDependencyMissing, errDependencyMissing(h), "synchronize_one")
	}

	s.sent[h] = true
	if err := target(tx, block); err != nil {
		return wrap(KindValidatorRejected, err, "target rejected block "+h.String())
	}
	return nil
}

type errDependencyMissing ledger.Hash

func (h errDependencyMissing) Error() string {
	return "bootstrap: dependency missing: " + ledger.Hash(h).String()
}
