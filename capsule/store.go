package capsule

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
	"weak"

	"github.com/trailofbits/go-mutexasserts"
)

// containerStore is the backing store of a Container. Cached values live in
// data behind a read/write lock (many readers, one writer); graph nodes live
// in nodes behind a mutex that only the writer takes. A write transaction
// holds both; a read transaction holds only the data read lock.
//
// Values in data are stored boxed (*T) so that ref reads hand out the cached
// allocation itself rather than a copy.
type containerStore struct {
	dataMu sync.RWMutex
	data   map[CapsuleId]any

	nodesMu sync.Mutex
	nodes   map[CapsuleId]*capsuleManager

	orch *sideEffectTxnOrchestrator
}

func newContainerStore() *containerStore {
	return &containerStore{
		data:  make(map[CapsuleId]any),
		nodes: make(map[CapsuleId]*capsuleManager),
		orch:  &sideEffectTxnOrchestrator{},
	}
}

func (s *containerStore) readTxn() (*ReadTxn, func()) {
	s.dataMu.RLock()
	return &ReadTxn{store: s}, s.dataMu.RUnlock
}

func (s *containerStore) writeTxn() (*WriteTxn, func()) {
	s.dataMu.Lock()
	s.nodesMu.Lock()
	return &WriteTxn{store: s}, func() {
		s.nodesMu.Unlock()
		s.dataMu.Unlock()
	}
}

// assertWriter flags graph mutations attempted without the node lock held.
func (s *containerStore) assertWriter() {
	if !mutexasserts.MutexLocked(&s.nodesMu) {
		log.Error("Capsule graph mutated without holding the write transaction lock")
	}
}

// effectHandleFor produces the rebuild plumbing captured by a capsule's
// side-effect setters. Setters hold the store weakly: once the container is
// dropped and collected, an outstanding setter logs and becomes a no-op
// instead of keeping the whole graph alive.
func (s *containerStore) effectHandleFor(id CapsuleId) effectHandle {
	w := weak.Make(s)
	return effectHandle{
		schedule: func(mutation func(*sideEffectCell)) {
			store := w.Value()
			if store == nil {
				log.WithField("capsule", id.String()).
					Warn("Rebuild requested after container was dropped; ignoring")
				return
			}
			store.scheduleRebuild(id, mutation)
		},
		runTxn: func(fn func()) {
			store := w.Value()
			if store == nil {
				log.WithField("capsule", id.String()).
					Warn("Side effect transaction requested after container was dropped")
				fn()
				return
			}
			store.runSideEffectTransaction(fn)
		},
	}
}

type effectHandle struct {
	schedule func(mutation func(*sideEffectCell))
	runTxn   func(fn func())
}

// pendingMutation is one setter invocation captured inside an open
// side-effect transaction.
type pendingMutation struct {
	id     CapsuleId
	mutate func(*sideEffectCell)
}

// sideEffectTxnOrchestrator batches setter invocations. Outside a transaction
// every setter opens its own write txn and propagates immediately; inside
// RunTransaction all mutations are queued and applied under a single write txn
// with one propagation whose roots are the union of mutated capsules.
//
// A batch belongs to the one RunTransaction call that opened it: only setters
// fired by the goroutine driving that call's callback join it. A setter from
// any other goroutine waits until the transaction has flushed and then applies
// and propagates on its own, so concurrent setters still serialize into
// separate propagations and a setter's mutation is always visible once the
// setter returns.
type sideEffectTxnOrchestrator struct {
	txnMu sync.Mutex // serializes transactions; ordinary setters wait here too

	mu      sync.Mutex
	owner   uint64 // goroutine driving the open transaction, 0 when none
	pending []pendingMutation
}

func (s *containerStore) scheduleRebuild(id CapsuleId, mutation func(*sideEffectCell)) {
	o := s.orch
	o.mu.Lock()
	if o.owner != 0 && o.owner == curGoroutineID() {
		o.pending = append(o.pending, pendingMutation{id: id, mutate: mutation})
		o.mu.Unlock()
		return
	}
	o.mu.Unlock()

	// Wait out any open transaction so this mutation is never folded into
	// someone else's batch, then apply and propagate on its own.
	o.txnMu.Lock()
	defer o.txnMu.Unlock()

	txn, release := s.writeTxn()
	defer release()
	txn.applyCellMutation(id, mutation)
	txn.buildCapsules([]CapsuleId{id})
}

func (s *containerStore) runSideEffectTransaction(fn func()) {
	o := s.orch
	gid := curGoroutineID()

	o.mu.Lock()
	nested := o.owner != 0 && o.owner == gid
	o.mu.Unlock()
	if nested {
		// A transaction within a transaction: the mutations simply join the
		// outer batch.
		fn()
		return
	}

	o.txnMu.Lock()
	defer o.txnMu.Unlock()

	o.mu.Lock()
	o.owner = gid
	o.mu.Unlock()

	fn()

	o.mu.Lock()
	batch := o.pending
	o.pending = nil
	o.owner = 0
	o.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	txn, release := s.writeTxn()
	defer release()
	roots := make([]CapsuleId, 0, len(batch))
	seen := make(map[CapsuleId]struct{}, len(batch))
	for _, p := range batch {
		txn.applyCellMutation(p.id, p.mutate)
		if _, ok := seen[p.id]; !ok {
			seen[p.id] = struct{}{}
			roots = append(roots, p.id)
		}
	}
	txn.buildCapsules(roots)
}

// curGoroutineID extracts the calling goroutine's id from its stack header
// ("goroutine 123 [running]:"). Only used to tell whether a setter fired from
// the goroutine driving an open side-effect transaction; returns 0 (never a
// real id) if the header cannot be parsed, which degrades to the ordinary
// setter path.
func curGoroutineID() uint64 {
	var buf [64]byte
	header := buf[:runtime.Stack(buf[:], false)]
	header = bytes.TrimPrefix(header, []byte("goroutine "))
	i := bytes.IndexByte(header, ' ')
	if i <= 0 {
		return 0
	}
	id, err := strconv.ParseUint(string(header[:i]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
