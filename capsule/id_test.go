package capsule

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type keyedACapsule struct {
	k int
}

func keyedA(k int) Capsule[string] {
	return keyedACapsule{k: k}
}

func (c keyedACapsule) CapsuleKey() any { return c.k }

func (keyedACapsule) Build(CapsuleHandle) string { return "a" }

type keyedBCapsule struct {
	k int
}

func keyedB(k int) Capsule[string] {
	return keyedBCapsule{k: k}
}

func (c keyedBCapsule) CapsuleKey() any { return c.k }

func (keyedBCapsule) Build(CapsuleHandle) string { return "b" }

func TestId_TypeDisambiguatesEqualKeys(t *testing.T) {
	require.NotEqual(t, Id(keyedA(7)), Id(keyedB(7)))

	container := New()
	a, b := Read2(container, keyedA(7), keyedB(7))
	require.Equal(t, "a", a)
	require.Equal(t, "b", b)
	require.Equal(t, 2, nodeCount(container))
}

func TestId_EqualCapsuleValuesShareAnInstance(t *testing.T) {
	require.Equal(t, Id(keyedA(1)), Id(keyedA(1)))
	require.NotEqual(t, Id(keyedA(1)), Id(keyedA(2)))

	container := New()
	Read2(container, keyedA(1), keyedA(1))
	require.Equal(t, 1, nodeCount(container))
}

func TestId_FunctionCapsuleIdentity(t *testing.T) {
	require.Equal(t, Id(oneCapsule), Id(oneCapsule))
	require.NotEqual(t, Id(oneCapsule), Id(twoCapsule))

	container := New()
	Read2(container, oneCapsule, oneCapsule)
	require.Equal(t, 1, nodeCount(container))
}

func TestId_StringIncludesTypeAndKey(t *testing.T) {
	require.Contains(t, Id(keyedA(7)).String(), "keyedACapsule")
	require.Contains(t, Id(keyedA(7)).String(), "7")
	// Unkeyed capsules render as their type alone.
	require.NotContains(t, Id(intState).String(), "[")
}
