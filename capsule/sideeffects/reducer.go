package sideeffects

import "github.com/graphcell/graphcell/capsule"

// ReducerAPI is the build-facing view of a reducer: the state as of this
// build and a dispatcher that folds an action into the state and rebuilds.
type ReducerAPI[S, A any] struct {
	State    S
	Dispatch func(A)
}

// Reducer manages state through actions: each dispatched action is folded
// into the latest state with reduce inside the rebuild transaction, so
// concurrent dispatches never operate on stale snapshots.
func Reducer[S, A any](reduce func(S, A) S, initial S) capsule.SideEffect[ReducerAPI[S, A]] {
	return LazyReducer(reduce, func() S { return initial })
}

// LazyReducer is Reducer with deferred initial state.
func LazyReducer[S, A any](reduce func(S, A) S, init func() S) capsule.SideEffect[ReducerAPI[S, A]] {
	return capsule.EffectFunc[ReducerAPI[S, A]](func(reg *capsule.SideEffectRegistrar) ReducerAPI[S, A] {
		cur, rebuild, _ := capsule.Raw(reg, init)
		return ReducerAPI[S, A]{
			State: *cur,
			Dispatch: func(action A) {
				rebuild(func(s *S) { *s = reduce(*s, action) })
			},
		}
	})
}
