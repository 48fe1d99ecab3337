package capsule

import (
	"math/big"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

var fibBuilds atomic.Int64

type fibTestCapsule struct {
	n int
}

func fibTest(n int) Capsule[*big.Int] {
	return fibTestCapsule{n: n}
}

func (f fibTestCapsule) CapsuleKey() any {
	return f.n
}

func (f fibTestCapsule) Eq(old, cur *big.Int) bool {
	return old.Cmp(cur) == 0
}

func (f fibTestCapsule) Build(h CapsuleHandle) *big.Int {
	fibBuilds.Add(1)
	switch f.n {
	case 0:
		return big.NewInt(0)
	case 1:
		return big.NewInt(1)
	default:
		a := Get(h.Reader, fibTest(f.n-1))
		b := Get(h.Reader, fibTest(f.n-2))
		return new(big.Int).Add(a, b)
	}
}

func TestFibonacci_MemoizedRecursion(t *testing.T) {
	container := New()
	fibBuilds.Store(0)

	result := Read(container, fibTest(100))
	require.Equal(t, "354224848179261915075", result.String())

	// One instance per index, each built exactly once.
	require.Equal(t, 101, nodeCount(container))
	require.Equal(t, int64(101), fibBuilds.Load())

	// A repeated read is served from cache.
	again := Read(container, fibTest(100))
	require.Equal(t, 0, result.Cmp(again))
	require.Equal(t, int64(101), fibBuilds.Load())
	checkGraphInvariants(t, container)
}

func TestFibonacci_DistinctIndicesAreDistinctInstances(t *testing.T) {
	container := New()
	small, large := Read2(container, fibTest(10), fibTest(11))
	require.Equal(t, int64(55), small.Int64())
	require.Equal(t, int64(89), large.Int64())
}
