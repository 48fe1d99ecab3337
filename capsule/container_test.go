package capsule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var countCapsule = Func(func(CapsuleHandle) int {
	return 0
})

var countPlusOneCapsule = Func(func(h CapsuleHandle) int {
	return Get(h.Reader, countCapsule) + 1
})

func TestContainer_BasicCount(t *testing.T) {
	container := New()
	require.Equal(t, 1, Read(container, countPlusOneCapsule))
	require.Equal(t, 0, Read(container, countCapsule))
}

func TestContainer_TupleRead(t *testing.T) {
	container := New()
	count, plusOne := Read2(container, countCapsule, countPlusOneCapsule)
	assert.Equal(t, 0, count)
	assert.Equal(t, 1, plusOne)
}

func TestContainer_ReadRef(t *testing.T) {
	container := New()
	callbackCalled := false
	got := ReadRef(container, countPlusOneCapsule, func(v *int) int {
		callbackCalled = true
		require.NotNil(t, v)
		return *v
	})
	require.True(t, callbackCalled)
	require.Equal(t, 1, got)

	// A second ref read takes the fast path and sees the same data.
	got = ReadRef(container, countPlusOneCapsule, func(v *int) int { return *v })
	require.Equal(t, 1, got)
}

func TestContainer_ReadRefTuple(t *testing.T) {
	container := New()
	sum := ReadRef2(container, countCapsule, countPlusOneCapsule, func(a, b *int) int {
		return *a + *b
	})
	require.Equal(t, 1, sum)
}

var (
	oneCapsule   = Func(func(CapsuleHandle) int { return 1 })
	twoCapsule   = Func(func(CapsuleHandle) int { return 2 })
	threeCapsule = Func(func(CapsuleHandle) int { return 3 })
	fourCapsule  = Func(func(CapsuleHandle) int { return 4 })
	fiveCapsule  = Func(func(CapsuleHandle) int { return 5 })
	sixCapsule   = Func(func(CapsuleHandle) int { return 6 })
	sevenCapsule = Func(func(CapsuleHandle) int { return 7 })
	eightCapsule = Func(func(CapsuleHandle) int { return 8 })
)

func TestContainer_WideTupleReads(t *testing.T) {
	container := New()

	v1, v2, v3 := Read3(container, oneCapsule, twoCapsule, threeCapsule)
	require.Equal(t, []int{1, 2, 3}, []int{v1, v2, v3})

	a1, a2, a3, a4 := Read4(container, oneCapsule, twoCapsule, threeCapsule, fourCapsule)
	require.Equal(t, []int{1, 2, 3, 4}, []int{a1, a2, a3, a4})

	b1, b2, b3, b4, b5 := Read5(container, oneCapsule, twoCapsule, threeCapsule, fourCapsule, fiveCapsule)
	require.Equal(t, []int{1, 2, 3, 4, 5}, []int{b1, b2, b3, b4, b5})

	c1, c2, c3, c4, c5, c6 := Read6(container, oneCapsule, twoCapsule, threeCapsule, fourCapsule, fiveCapsule, sixCapsule)
	require.Equal(t, []int{1, 2, 3, 4, 5, 6}, []int{c1, c2, c3, c4, c5, c6})

	d1, d2, d3, d4, d5, d6, d7 := Read7(container, oneCapsule, twoCapsule, threeCapsule, fourCapsule, fiveCapsule, sixCapsule, sevenCapsule)
	require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, []int{d1, d2, d3, d4, d5, d6, d7})

	e1, e2, e3, e4, e5, e6, e7, e8 := Read8(container, oneCapsule, twoCapsule, threeCapsule, fourCapsule, fiveCapsule, sixCapsule, sevenCapsule, eightCapsule)
	require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, []int{e1, e2, e3, e4, e5, e6, e7, e8})
}

func TestContainer_TxnEscapeHatches(t *testing.T) {
	container := New()

	container.WithWriteTxn(func(txn *WriteTxn) {
		require.Equal(t, 1, ReadOrInit(txn, countPlusOneCapsule))
	})
	container.WithReadTxn(func(txn *ReadTxn) {
		v, ok := TryRead(txn, countCapsule)
		require.True(t, ok)
		require.Equal(t, 0, v)
	})
}

func TestContainer_TryReadMissingCapsule(t *testing.T) {
	container := New()
	container.WithReadTxn(func(txn *ReadTxn) {
		_, ok := TryRead(txn, countCapsule)
		require.False(t, ok)
	})
}

func TestContainer_RepeatedReadsAreStable(t *testing.T) {
	container := New()
	first := Read(container, countPlusOneCapsule)
	second := Read(container, countPlusOneCapsule)
	require.Equal(t, first, second)
}

func TestContainer_IsolatedFromEachOther(t *testing.T) {
	require.Equal(t, 1, Read(New(), countPlusOneCapsule))
	require.Equal(t, 1, Read(New(), countPlusOneCapsule))
}
