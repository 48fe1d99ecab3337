package capsule

// capsuleManager is a node of the dependency graph. It owns the capsule
// blueprint, the capsule's side-effect cell, both edge sets, and a
// monomorphized build closure that knows how to downcast the erased blueprint,
// run its build, and compare old against new data.
//
// The blueprint and cell are taken out of the manager for the duration of a
// build and yielded back afterwards, so a node can never be invoked
// reentrantly during its own build.
type capsuleManager struct {
	id           CapsuleId
	capsule      any             // nil while a build owns it
	cell         *sideEffectCell // nil while a build owns it
	dependencies *orderedIdSet
	dependents   *orderedIdSet
	build        func(txn *WriteTxn) bool
}

func newCapsuleManager[T any](id CapsuleId, c Capsule[T]) *capsuleManager {
	m := &capsuleManager{
		id:           id,
		capsule:      c,
		cell:         &sideEffectCell{},
		dependencies: newOrderedIdSet(),
		dependents:   newOrderedIdSet(),
	}
	m.build = func(txn *WriteTxn) bool {
		return buildCapsuleData[T](id, txn)
	}
	return m
}

// isIdempotent reports whether the capsule registered no persistent side
// effect state. Idempotent capsules are pure with respect to their
// dependencies and may be garbage collected once unobserved.
func (m *capsuleManager) isIdempotent() bool {
	if m.cell == nil {
		// A node is never inspected while its own build owns the cell.
		panic("side effect cell inspected during its capsule's own build")
	}
	return len(m.cell.slots) == 0
}

// buildCapsuleData runs one build of the capsule behind id: it takes the
// blueprint and cell out of the manager, invokes the user build with a fresh
// reader and registrar, writes the new value, and reports whether the value
// changed (true forces dependents to rebuild).
func buildCapsuleData[T any](id CapsuleId, txn *WriteTxn) bool {
	blueprint, cell := txn.takeCapsuleAndCell(id)
	c := blueprint.(Capsule[T])

	reader := &CapsuleReader{id: id, txn: txn}
	registrar := newSideEffectRegistrar(cell, txn.store.effectHandleFor(id))
	newData := c.Build(CapsuleHandle{Reader: reader, Registrar: registrar})
	registrar.finish()

	didChange := true
	if old, ok := txn.store.data[id]; ok {
		if eq, isEq := c.(Equatable[T]); isEq {
			didChange = !eq.Eq(*old.(*T), newData)
		}
	}
	txn.store.data[id] = &newData

	txn.yieldCapsuleAndCell(id, blueprint, cell)
	return didChange
}

// sideEffectCell is the per-capsule persistent state: a positional vector of
// slots, one per Raw registration, shaped on the first build and fixed
// thereafter. Each slot holds a pointer to the effect's state.
type sideEffectCell struct {
	slots       []any
	initialized bool
}

// orderedIdSet is a set of CapsuleIds that iterates in insertion order, which
// keeps propagation order deterministic for a given graph history.
type orderedIdSet struct {
	order  []CapsuleId
	member map[CapsuleId]struct{}
}

func newOrderedIdSet() *orderedIdSet {
	return &orderedIdSet{member: make(map[CapsuleId]struct{})}
}

func (s *orderedIdSet) add(id CapsuleId) {
	if _, ok := s.member[id]; ok {
		return
	}
	s.member[id] = struct{}{}
	s.order = append(s.order, id)
}

func (s *orderedIdSet) remove(id CapsuleId) {
	if _, ok := s.member[id]; !ok {
		return
	}
	delete(s.member, id)
	for i, other := range s.order {
		if other == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *orderedIdSet) contains(id CapsuleId) bool {
	_, ok := s.member[id]
	return ok
}

func (s *orderedIdSet) len() int {
	return len(s.order)
}

// items returns the backing slice; callers must not mutate the set while
// ranging over it.
func (s *orderedIdSet) items() []CapsuleId {
	return s.order
}

// take empties the set and returns the former contents in insertion order.
func (s *orderedIdSet) take() []CapsuleId {
	out := s.order
	s.order = nil
	s.member = make(map[CapsuleId]struct{})
	return out
}
