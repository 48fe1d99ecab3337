package sideeffects

import "github.com/graphcell/graphcell/capsule"

// StateAPI is the build-facing view of a state cell: the current state and a
// setter that replaces it and rebuilds the owning capsule. Set must be called
// from outside a build.
type StateAPI[T any] struct {
	Cur *T
	Set func(T)
}

// State holds a mutable value across builds, initialized with initial on the
// capsule's first build.
func State[T any](initial T) capsule.SideEffect[StateAPI[T]] {
	return LazyState(func() T { return initial })
}

// LazyState is State with deferred initialization: init runs once, on the
// capsule's first build.
func LazyState[T any](init func() T) capsule.SideEffect[StateAPI[T]] {
	return capsule.EffectFunc[StateAPI[T]](func(reg *capsule.SideEffectRegistrar) StateAPI[T] {
		cur, rebuild, _ := capsule.Raw(reg, init)
		return StateAPI[T]{
			Cur: cur,
			Set: func(v T) {
				rebuild(func(s *T) { *s = v })
			},
		}
	})
}

// Value keeps a value alive across builds without any way to trigger
// rebuilds. The returned pointer may be mutated during a build to stash
// private per-capsule data.
func Value[T any](v T) capsule.SideEffect[*T] {
	return LazyValue(func() T { return v })
}

// LazyValue is Value with deferred initialization.
func LazyValue[T any](init func() T) capsule.SideEffect[*T] {
	return capsule.EffectFunc[*T](func(reg *capsule.SideEffectRegistrar) *T {
		cur, _, _ := capsule.Raw(reg, init)
		return cur
	})
}

// IsFirstBuild reports whether the current build is the capsule's first.
// Useful for guarding self-reads, which are only legal after the first
// successful build.
func IsFirstBuild() capsule.SideEffect[bool] {
	return capsule.EffectFunc[bool](func(reg *capsule.SideEffectRegistrar) bool {
		hasBuiltBefore, _, _ := capsule.Raw(reg, func() bool { return false })
		first := !*hasBuiltBefore
		*hasBuiltBefore = true
		return first
	})
}

// NoOp registers nothing. The capsule stays idempotent and remains eligible
// for garbage collection when unobserved.
func NoOp() capsule.SideEffect[struct{}] {
	return capsule.EffectFunc[struct{}](func(*capsule.SideEffectRegistrar) struct{} {
		return struct{}{}
	})
}

// AsListener pins an observer capsule in the graph: it allocates a unit state
// slot, which makes the capsule non-idempotent so garbage collection will not
// dispose it while its container lives.
func AsListener() capsule.SideEffect[struct{}] {
	return capsule.EffectFunc[struct{}](func(reg *capsule.SideEffectRegistrar) struct{} {
		_, _, _ = capsule.Raw(reg, func() struct{} { return struct{}{} })
		return struct{}{}
	})
}

// Rebuilder exposes a function that forces a rebuild of the owning capsule
// without mutating any state. Rarely what you want; prefer State.
func Rebuilder() capsule.SideEffect[func()] {
	return capsule.EffectFunc[func()](func(reg *capsule.SideEffectRegistrar) func() {
		_, rebuild, _ := capsule.Raw(reg, func() struct{} { return struct{}{} })
		return func() {
			rebuild(func(*struct{}) {})
		}
	})
}

// Transactional exposes the side-effect transaction runner: all setters the
// callback's goroutine invokes inside the callback are applied in one write
// transaction and propagated once, with the union of mutated capsules as
// roots. Setters fired by other goroutines during the callback wait for the
// transaction to flush and propagate on their own.
func Transactional() capsule.SideEffect[func(func())] {
	return capsule.EffectFunc[func(func())](func(reg *capsule.SideEffectRegistrar) func(func()) {
		_, _, runTxn := capsule.Raw(reg, func() struct{} { return struct{}{} })
		return runTxn
	})
}
