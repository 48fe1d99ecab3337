package sideeffects

import "github.com/graphcell/graphcell/capsule"

// PersistAPI is the build-facing view of SyncPersist: the result of the
// latest read or write and a persist function that writes new data and
// rebuilds with the write's result.
type PersistAPI[T, R any] struct {
	Latest  *R
	Persist func(T)
}

// SyncPersist bridges a capsule to synchronous storage. read runs once, on
// the first build, to load the initial result; each Persist call runs write
// and then publishes its result through a rebuild.
//
// Both functions block the caller: read blocks the first build, write blocks
// the goroutine invoking Persist (though not the rebuild transaction, which
// only publishes the finished result). Intended for quick I/O; anything slow
// belongs in an external task that calls a setter on completion.
func SyncPersist[T, R any](read func() R, write func(T) R) capsule.SideEffect[PersistAPI[T, R]] {
	return capsule.EffectFunc[PersistAPI[T, R]](func(reg *capsule.SideEffectRegistrar) PersistAPI[T, R] {
		latest, rebuild, _ := capsule.Raw(reg, read)
		return PersistAPI[T, R]{
			Latest: latest,
			Persist: func(data T) {
				result := write(data)
				rebuild(func(r *R) { *r = result })
			},
		}
	})
}
