package capsule

import "fmt"

// Txn is the read capability shared by both transaction kinds. It is sealed;
// the only implementations are *ReadTxn and *WriteTxn.
type Txn interface {
	valueOf(id CapsuleId) (any, bool)
}

// ReadTxn is a shared read lock over the cached value map. It never touches
// the node map, so any number of read transactions may run alongside builds
// being prepared by other goroutines blocked on the write lock.
type ReadTxn struct {
	store *containerStore
}

func (t *ReadTxn) valueOf(id CapsuleId) (any, bool) {
	v, ok := t.store.data[id]
	return v, ok
}

// WriteTxn is an exclusive lock over the value map and the node map. All
// graph mutation — initialization, rebuilds, disposal — happens inside one.
//
// Do not invoke side-effect setters while holding a WriteTxn: the setter
// would reacquire the write lock and deadlock.
type WriteTxn struct {
	store *containerStore
}

func (t *WriteTxn) valueOf(id CapsuleId) (any, bool) {
	v, ok := t.store.data[id]
	return v, ok
}

// TryRead returns the cached value of the capsule, without initializing it.
func TryRead[T any](txn Txn, c Capsule[T]) (T, bool) {
	p, ok := tryReadPtr(txn, c)
	if !ok {
		var zero T
		return zero, false
	}
	return *p, true
}

func tryReadPtr[T any](txn Txn, c Capsule[T]) (*T, bool) {
	v, ok := txn.valueOf(Id(c))
	if !ok {
		return nil, false
	}
	return v.(*T), true
}

// ReadOrInit returns the capsule's value, building the capsule (and,
// recursively, anything it reads) first if it is not yet in the graph.
func ReadOrInit[T any](txn *WriteTxn, c Capsule[T]) T {
	EnsureInitialized(txn, c)
	v, ok := TryRead[T](txn, c)
	if !ok {
		panic(fmt.Sprintf("capsule %s has no data after initialization", Id(c)))
	}
	return v
}

// EnsureInitialized builds the capsule if it is not currently in the graph
// (never read yet, or collected since); otherwise it is a no-op.
func EnsureInitialized[T any](txn *WriteTxn, c Capsule[T]) {
	id := Id(c)
	if _, ok := txn.store.nodes[id]; ok {
		return
	}
	log.WithField("capsule", id.String()).Debug("Initializing capsule")
	txn.store.assertWriter()
	txn.store.nodes[id] = newCapsuleManager(id, c)
	txn.buildSingleNode(id)
}

// AddDependencyRelationship records dependent's read of dependency, keeping
// the two edge sets symmetric. Both nodes must already be in the graph.
func (t *WriteTxn) AddDependencyRelationship(dependency, dependent CapsuleId) {
	t.nodeOrPanic(dependency).dependents.add(dependent)
	t.nodeOrPanic(dependent).dependencies.add(dependency)
}

// DisposeNode forcefully removes the node with the given id, unlinking it
// from its dependencies' dependent sets. Panics if the node or one of its
// dependencies is not in the graph. This is an escape hatch; regular garbage
// collection happens during propagation.
func (t *WriteTxn) DisposeNode(id CapsuleId) {
	t.store.assertWriter()
	delete(t.store.data, id)
	node, ok := t.store.nodes[id]
	if !ok {
		panic(fmt.Sprintf("capsule %s is not in the graph", id))
	}
	delete(t.store.nodes, id)
	for _, dep := range node.dependencies.items() {
		t.nodeOrPanic(dep).dependents.remove(id)
	}
	capsuleDisposeCount.Inc()
}

// BuildCapsules forcefully rebuilds the capsules with the supplied ids and
// propagates through their dependent subgraphs. Panics if any id is not in
// the graph.
func (t *WriteTxn) BuildCapsules(ids ...CapsuleId) {
	if len(ids) == 0 {
		return
	}
	t.buildCapsules(ids)
}

func (t *WriteTxn) node(id CapsuleId) (*capsuleManager, bool) {
	n, ok := t.store.nodes[id]
	return n, ok
}

func (t *WriteTxn) nodeOrPanic(id CapsuleId) *capsuleManager {
	n, ok := t.store.nodes[id]
	if !ok {
		panic(fmt.Sprintf("capsule %s is not in the graph", id))
	}
	return n
}

// takeCapsuleAndCell moves the blueprint and side-effect cell out of the
// manager for the duration of a build.
func (t *WriteTxn) takeCapsuleAndCell(id CapsuleId) (any, *sideEffectCell) {
	node := t.nodeOrPanic(id)
	blueprint, cell := node.capsule, node.cell
	if blueprint == nil || cell == nil {
		panic(fmt.Sprintf("capsule %s was rebuilt while one of its builds was in progress", id))
	}
	node.capsule, node.cell = nil, nil
	return blueprint, cell
}

// yieldCapsuleAndCell hands ownership back after a build.
func (t *WriteTxn) yieldCapsuleAndCell(id CapsuleId, blueprint any, cell *sideEffectCell) {
	node := t.nodeOrPanic(id)
	if node.capsule != nil || node.cell != nil {
		panic(fmt.Sprintf("capsule %s already owned a blueprint when ownership was yielded back", id))
	}
	node.capsule, node.cell = blueprint, cell
}

// applyCellMutation runs a setter's mutation against the capsule's
// side-effect cell. Only ever called from inside a side-effect transaction,
// before the propagation that rebuilds the capsule.
func (t *WriteTxn) applyCellMutation(id CapsuleId, mutate func(*sideEffectCell)) {
	node := t.nodeOrPanic(id)
	if node.cell == nil {
		panic(fmt.Sprintf("capsule %s cell mutated during its own build", id))
	}
	mutate(node.cell)
}
