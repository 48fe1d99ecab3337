package capsule

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// buildCapsules rebuilds the given roots and propagates through their
// dependent subgraphs: a two-phase depth-first search produces the build
// order as a stack (popping yields dependencies before dependents), a
// dependents-first pass over the same stack marks idempotent tails for
// disposal, and the rebuild pass pops the stack, pruning nodes whose
// dependencies all reported unchanged data.
//
// Panics if any involved node is not in the graph.
func (t *WriteTxn) buildCapsules(roots []CapsuleId) {
	t.store.assertWriter()

	rootSet := mapset.NewThreadUnsafeSet(roots...)
	stack := t.createBuildOrderStack(roots)
	disposable := t.disposableFromBuildOrderStack(stack)

	changed := mapset.NewThreadUnsafeSet[CapsuleId]()
	for i := len(stack) - 1; i >= 0; i-- {
		id := stack[i]
		node := t.nodeOrPanic(id)

		buildRequired := rootSet.Contains(id)
		depsChanged := false
		for _, dep := range node.dependencies.items() {
			if changed.Contains(dep) {
				depsChanged = true
				break
			}
		}
		if !buildRequired && !depsChanged {
			continue
		}

		if disposable.Contains(id) && t.dependentsAllMarked(id, disposable) {
			// Edge symmetry survives this removal: every remaining dependent
			// of the node is itself marked and gets disposed later in this
			// same pass.
			t.disposeSingleNode(id)
			changed.Add(id)
		} else if t.buildSingleNode(id) {
			changed.Add(id)
		}
	}
}

// dependentsAllMarked re-checks a disposability verdict right before the
// disposal happens: a rebuild earlier in the pass may have read the node for
// the first time, and a node with a fresh unmarked dependent must be rebuilt
// instead of dropped.
func (t *WriteTxn) dependentsAllMarked(id CapsuleId, disposable mapset.Set[CapsuleId]) bool {
	for _, dep := range t.nodeOrPanic(id).dependents.items() {
		if !disposable.Contains(dep) {
			return false
		}
	}
	return true
}

// buildSingleNode rebuilds exactly one node. The node's dependency edges are
// cleared first; the reader re-records them during the build. Reports whether
// the node's data changed.
func (t *WriteTxn) buildSingleNode(id CapsuleId) bool {
	node := t.nodeOrPanic(id)
	for _, dep := range node.dependencies.take() {
		t.nodeOrPanic(dep).dependents.remove(id)
	}
	capsuleBuildCount.Inc()
	return t.nodeOrPanic(id).build(t)
}

// disposeSingleNode removes one node during propagation. Unlike DisposeNode
// it tolerates dependencies that were already disposed earlier in the same
// propagation.
func (t *WriteTxn) disposeSingleNode(id CapsuleId) {
	delete(t.store.data, id)
	node := t.nodeOrPanic(id)
	delete(t.store.nodes, id)
	for _, dep := range node.dependencies.items() {
		if depNode, ok := t.node(dep); ok {
			depNode.dependents.remove(id)
		}
	}
	log.WithField("capsule", id.String()).Debug("Disposed idempotent capsule")
	capsuleDisposeCount.Inc()
}

// createBuildOrderStack returns the roots' dependent subgraph, roots
// included, as a stack: proper build order is obtained by popping (iterating
// in reverse). The classic two-visit depth-first search pushes a node onto
// the build order only after all of its dependents were explored.
func (t *WriteTxn) createBuildOrderStack(roots []CapsuleId) []CapsuleId {
	type visit struct {
		expanded bool
		id       CapsuleId
	}

	toVisit := make([]visit, 0, len(roots))
	for _, id := range roots {
		toVisit = append(toVisit, visit{id: id})
	}
	visited := mapset.NewThreadUnsafeSet[CapsuleId]()
	var stack []CapsuleId

	for len(toVisit) > 0 {
		curr := toVisit[len(toVisit)-1]
		toVisit = toVisit[:len(toVisit)-1]

		switch {
		case curr.expanded:
			// All dependents handled; the node finally joins the build order.
			stack = append(stack, curr.id)
		case !visited.Contains(curr.id):
			visited.Add(curr.id)
			toVisit = append(toVisit, visit{expanded: true, id: curr.id})
			for _, dep := range t.nodeOrPanic(curr.id).dependents.items() {
				if !visited.Contains(dep) {
					toVisit = append(toVisit, visit{id: dep})
				}
			}
		}
	}

	return stack
}

// disposableFromBuildOrderStack walks the stack dependents-first and marks
// every idempotent node whose dependents are all already marked: the
// idempotent tails of the subgraph, safe to drop because nothing with state
// observes them.
func (t *WriteTxn) disposableFromBuildOrderStack(stack []CapsuleId) mapset.Set[CapsuleId] {
	disposable := mapset.NewThreadUnsafeSet[CapsuleId]()
	for _, id := range stack {
		node := t.nodeOrPanic(id)
		allDisposable := true
		for _, dep := range node.dependents.items() {
			if !disposable.Contains(dep) {
				allDisposable = false
				break
			}
		}
		if node.isIdempotent() && allDisposable {
			disposable.Add(id)
		}
	}
	return disposable
}
