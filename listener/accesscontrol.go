package listener

import (
	"sync"

	mapset "github.com/deckarep/golang-set"
)

// AccessSet holds the current allow-set of peer identities and applies
// incremental AccessOps in arrival order (spec.md §4.3). It is only
// ever mutated by the control loop (C5) — no other goroutine writes to
// it, so the lock here guards readers (allows() may be called
// concurrently from the future if the listener is ever extended; today
// both apply and allows run on the single loop goroutine).
type AccessSet struct {
	mu  sync.RWMutex
	set mapset.Set
}

// NewAccessSet returns an empty AccessSet.
func NewAccessSet() *AccessSet {
	return &AccessSet{set: mapset.NewThreadUnsafeSet()}
}

// Apply mutates the set per op. The default policy never errors;
// apply only returns a non-nil error if a future policy evaluator
// rejects the operation (spec.md §4.3).
func (a *AccessSet) Apply(op AccessOp) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch op.Kind {
	case OpAdd:
		a.set.Add(op.Peer)
	case OpRemove:
		a.set.Remove(op.Peer)
	case OpClear:
		a.set = mapset.NewThreadUnsafeSet()
	}
	return nil
}

// Allows reports whether peer is currently in the allow-set.
func (a *AccessSet) Allows(peer PeerID) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.set.Contains(peer)
}

// Len reports the current size of the allow-set, mostly useful for
// diagnostics.
func (a *AccessSet) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.set.Cardinality()
}
