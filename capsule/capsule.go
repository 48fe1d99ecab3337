package capsule

import "reflect"

// Capsule is a blueprint for creating some immutable data.
// Capsules are values, not types: two capsules of the same concrete type with
// equal keys identify the same instance, which is built once and cached.
//
// Build must not trigger rebuilds (setter invocations) synchronously; doing so
// reacquires the container's write lock and deadlocks. Setters are meant to be
// called from outside a build, including from other goroutines.
type Capsule[T any] interface {
	// Build produces the capsule's data from a snapshot of the dependency
	// graph. Reads performed through the handle are recorded as dependencies.
	Build(h CapsuleHandle) T
}

// Keyed is implemented by parameterized capsules to distinguish instances of
// the same capsule type. Keys must be comparable; they are hashed by Go's map
// runtime. Capsules that do not implement Keyed have exactly one instance.
type Keyed interface {
	CapsuleKey() any
}

// Equatable lets a capsule decide whether a freshly built value differs from
// the previous one; unchanged values stop propagation to dependents. Capsules
// that do not implement Equatable always propagate.
type Equatable[T any] interface {
	Eq(old, new T) bool
}

// CapsuleHandle carries the two build-scoped objects handed to Build:
// a reader for other capsules' data and a registrar for side effects.
type CapsuleHandle struct {
	Reader    *CapsuleReader
	Registrar *SideEffectRegistrar
}

// Func wraps a plain function as a capsule. The function's code pointer is the
// instance key, so top-level functions each name a distinct capsule while the
// same function read from two call sites resolves to one instance. Closures
// created from the same literal share a code pointer and therefore share an
// instance; use a Keyed capsule type when per-closure identity is needed.
//
// Function capsules never implement Equatable: their rebuilds always
// propagate.
func Func[T any](fn func(CapsuleHandle) T) Capsule[T] {
	return funcCapsule[T]{fn: fn, key: reflect.ValueOf(fn).Pointer()}
}

type funcCapsule[T any] struct {
	fn  func(CapsuleHandle) T
	key uintptr
}

func (f funcCapsule[T]) Build(h CapsuleHandle) T {
	return f.fn(h)
}

func (f funcCapsule[T]) CapsuleKey() any {
	return f.key
}
