package capsule

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// intStateAPI is the data of the test state capsule below: the state as of
// the latest build plus its setter.
type intStateAPI struct {
	cur int
	set func(int)
}

type intStateCapsule struct{}

func (intStateCapsule) Build(h CapsuleHandle) intStateAPI {
	cur, rebuild, _ := Raw(h.Registrar, func() int { return 0 })
	return intStateAPI{
		cur: *cur,
		set: func(v int) {
			rebuild(func(s *int) { *s = v })
		},
	}
}

// intState is the shared instance; struct capsules are handed around as
// Capsule[T] values so call sites infer their data type.
var intState Capsule[intStateAPI] = intStateCapsule{}

type statePlusOneCapsule struct {
	builds *atomic.Int32
}

func (c statePlusOneCapsule) Build(h CapsuleHandle) int {
	c.builds.Add(1)
	return Get(h.Reader, intState).cur + 1
}

func nodeCount(c *Container) int {
	var n int
	c.WithWriteTxn(func(txn *WriteTxn) {
		n = len(txn.store.nodes)
	})
	return n
}

func hasNodeId(c *Container, id CapsuleId) bool {
	var ok bool
	c.WithWriteTxn(func(txn *WriteTxn) {
		_, ok = txn.store.nodes[id]
	})
	return ok
}

// checkGraphInvariants asserts edge symmetry and that every cached value has
// a live manager, at a quiescent state.
func checkGraphInvariants(t *testing.T, c *Container) {
	t.Helper()
	c.WithWriteTxn(func(txn *WriteTxn) {
		for id, node := range txn.store.nodes {
			for _, dep := range node.dependencies.items() {
				depNode, ok := txn.store.nodes[dep]
				require.True(t, ok, "dependency of %s missing from graph", id)
				require.True(t, depNode.dependents.contains(id), "asymmetric edge %s -> %s", dep, id)
			}
			for _, dependent := range node.dependents.items() {
				depNode, ok := txn.store.nodes[dependent]
				require.True(t, ok, "dependent of %s missing from graph", id)
				require.True(t, depNode.dependencies.contains(id), "asymmetric edge %s <- %s", id, dependent)
			}
		}
		for id := range txn.store.data {
			_, ok := txn.store.nodes[id]
			require.True(t, ok, "cached value without manager: %s", id)
		}
	})
}

func TestPropagation_StateUpdatesDependent(t *testing.T) {
	container := New()
	builds := &atomic.Int32{}
	var dep Capsule[int] = statePlusOneCapsule{builds: builds}

	require.Equal(t, 1, Read(container, dep))
	Read(container, intState).set(5)
	require.Equal(t, 6, Read(container, dep))
	require.Equal(t, int32(2), builds.Load())
	checkGraphInvariants(t, container)
}

func TestPropagation_SetterAloneUpdatesState(t *testing.T) {
	container := New()
	state := Read(container, intState)
	require.Equal(t, 0, state.cur)

	state.set(1)
	require.Equal(t, 1, Read(container, intState).cur)

	// Setters from a previous build keep mutating the same cell.
	state.set(2)
	state.set(3)
	require.Equal(t, 3, Read(container, intState).cur)
}

// parityCapsule derives state % 2 and implements Eq, so rebuilds that produce
// the same parity stop propagating.
type parityCapsule struct{}

func (parityCapsule) Build(h CapsuleHandle) int {
	return Get(h.Reader, intState).cur % 2
}

func (parityCapsule) Eq(old, cur int) bool {
	return old == cur
}

var parity Capsule[int] = parityCapsule{}

type parityWatcherCapsule struct {
	builds *atomic.Int32
}

func (c parityWatcherCapsule) Build(h CapsuleHandle) int {
	// Pin the watcher so GC does not collect it between propagations.
	_, _, _ = Raw(h.Registrar, func() struct{} { return struct{}{} })
	c.builds.Add(1)
	return Get(h.Reader, parity)
}

func TestPropagation_EqPrunesUnchangedSubgraph(t *testing.T) {
	container := New()
	builds := &atomic.Int32{}
	var watcher Capsule[int] = parityWatcherCapsule{builds: builds}

	require.Equal(t, 0, Read(container, watcher))
	require.Equal(t, int32(1), builds.Load())

	// 0 -> 2 keeps parity at 0; the watcher must not rebuild.
	Read(container, intState).set(2)
	require.Equal(t, 0, Read(container, watcher))
	require.Equal(t, int32(1), builds.Load())

	// 2 -> 3 flips parity; now the watcher rebuilds.
	Read(container, intState).set(3)
	require.Equal(t, 1, Read(container, watcher))
	require.Equal(t, int32(2), builds.Load())
	checkGraphInvariants(t, container)
}

type midCapsule struct{}

func (midCapsule) Build(h CapsuleHandle) int {
	return Get(h.Reader, intState).cur + 10
}

var mid Capsule[int] = midCapsule{}

type leafCapsule struct{}

func (leafCapsule) Build(h CapsuleHandle) int {
	return Get(h.Reader, mid) * 2
}

var leaf Capsule[int] = leafCapsule{}

func TestGC_IdempotentTailIsCollected(t *testing.T) {
	container := New()
	require.Equal(t, 20, Read(container, leaf))
	require.True(t, hasNodeId(container, Id(mid)))
	require.True(t, hasNodeId(container, Id(leaf)))

	// The next propagation touching the idempotent tail collects it.
	Read(container, intState).set(1)
	require.False(t, hasNodeId(container, Id(mid)))
	require.False(t, hasNodeId(container, Id(leaf)))
	require.True(t, hasNodeId(container, Id(intState)))
	checkGraphInvariants(t, container)

	// Collected capsules simply rebuild on their next read.
	require.Equal(t, 22, Read(container, leaf))
}

type pinnedMidReaderCapsule struct{}

func (pinnedMidReaderCapsule) Build(h CapsuleHandle) int {
	_, _, _ = Raw(h.Registrar, func() struct{} { return struct{}{} })
	return Get(h.Reader, mid)
}

var pinnedMidReader Capsule[int] = pinnedMidReaderCapsule{}

func TestGC_StatefulDependentKeepsChainAlive(t *testing.T) {
	container := New()
	require.Equal(t, 10, Read(container, pinnedMidReader))

	Read(container, intState).set(1)
	require.True(t, hasNodeId(container, Id(mid)))
	require.True(t, hasNodeId(container, Id(pinnedMidReader)))
	require.Equal(t, 11, Read(container, pinnedMidReader))
	checkGraphInvariants(t, container)
}

func TestDisposeNode_RemovesNodeAndUnlinks(t *testing.T) {
	container := New()
	require.Equal(t, 1, Read(container, countPlusOneCapsule))

	container.WithWriteTxn(func(txn *WriteTxn) {
		txn.DisposeNode(Id(countPlusOneCapsule))
	})
	require.False(t, hasNodeId(container, Id(countPlusOneCapsule)))
	require.True(t, hasNodeId(container, Id(countCapsule)))
	checkGraphInvariants(t, container)

	container.WithWriteTxn(func(txn *WriteTxn) {
		require.Panics(t, func() {
			txn.DisposeNode(Id(countPlusOneCapsule))
		})
	})
}

func TestBuildCapsules_CollectsUnobservedIdempotentRoot(t *testing.T) {
	container := New()
	container.WithWriteTxn(func(txn *WriteTxn) {
		ReadOrInit(txn, countCapsule)
		txn.BuildCapsules(Id(countCapsule))
	})
	// The forced propagation saw an idempotent root with no dependents and
	// collected it.
	require.False(t, hasNodeId(container, Id(countCapsule)))
}

func TestBuildCapsules_ForcedRebuildKeepsValue(t *testing.T) {
	container := New()
	before := Read(container, intState).cur
	container.WithWriteTxn(func(txn *WriteTxn) {
		txn.BuildCapsules(Id(intState))
	})
	require.Equal(t, before, Read(container, intState).cur)
	checkGraphInvariants(t, container)
}
