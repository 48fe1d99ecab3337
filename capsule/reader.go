package capsule

import "fmt"

// CapsuleReader reads other capsules' data during a build and records the
// dependency edges it discovers. A reader is scoped to one build of one
// capsule; do not retain it.
//
// A reader constructed by NewMockReader serves data from a fixed override map
// instead of a container, for testing capsules in isolation.
type CapsuleReader struct {
	id  CapsuleId
	txn *WriteTxn

	mocks map[CapsuleId]any // non-nil switches the reader into mock mode
}

// Get returns the current data of the supplied capsule, initializing it
// first when needed. Reads may be conditional: only the capsules actually
// read during a build become its dependencies for that build.
//
// A capsule may read itself once it has built successfully at least once, in
// which case Get returns the previous data without recording an edge. A
// self-read during the first build panics: there is no data to return yet.
// Use sideeffects.IsFirstBuild to guard self-reads.
func Get[T any](r *CapsuleReader, c Capsule[T]) T {
	id := Id(c)

	if r.mocks != nil {
		v, ok := r.mocks[id]
		if !ok {
			panic(fmt.Sprintf("mock capsule reader was asked for %s, which it was not preloaded with", id))
		}
		return v.(T)
	}

	if r.id == id {
		if v, ok := TryRead[T](r.txn, c); ok {
			return v
		}
		panic(fmt.Sprintf(
			"capsule %s tried to read itself on its first build; it has no data to read yet", id))
	}

	// The edge is recorded after the read so the dependency's manager is
	// guaranteed to be initialized, and only on success, which is what makes
	// deeper cycles statically impossible.
	data := ReadOrInit(r.txn, c)
	r.txn.AddDependencyRelationship(id, r.id)
	return data
}

// MockReaderBuilder accumulates capsule data overrides for a mock reader.
type MockReaderBuilder struct {
	mocks map[CapsuleId]any
}

func NewMockReaderBuilder() *MockReaderBuilder {
	return &MockReaderBuilder{mocks: make(map[CapsuleId]any)}
}

// MockData preloads the builder with the data a mock reader should return
// for the given capsule.
func MockData[T any](b *MockReaderBuilder, c Capsule[T], data T) *MockReaderBuilder {
	b.mocks[Id(c)] = data
	return b
}

// Build returns a reader serving only the preloaded data; reads of anything
// else panic.
func (b *MockReaderBuilder) Build() *CapsuleReader {
	return &CapsuleReader{mocks: b.mocks}
}
