package capsule

// SideEffect describes a unit of persistent capsule state together with the
// API it exposes to builds: Effect installs the state through the registrar's
// Raw slots on the first build, retrieves it on subsequent builds, and returns
// the build-facing view (current state, setters, and so on).
type SideEffect[Api any] interface {
	Effect(reg *SideEffectRegistrar) Api
}

// EffectFunc adapts a plain function to the SideEffect interface.
type EffectFunc[Api any] func(reg *SideEffectRegistrar) Api

func (f EffectFunc[Api]) Effect(reg *SideEffectRegistrar) Api {
	return f(reg)
}

const effectShapeChangedMsg = "the side effect(s) registered by a capsule cannot change between builds"

// SideEffectRegistrar installs a capsule's side effect and returns its API.
// A registrar is scoped to one build and Register may be called on it at most
// once; to use several side effects, compose them into one. A capsule that
// registers nothing (or registers an effect that allocates no state) stays
// idempotent and thus eligible for garbage collection when unobserved.
type SideEffectRegistrar struct {
	cell       *sideEffectCell
	handle     effectHandle
	next       int
	registered bool
}

func newSideEffectRegistrar(cell *sideEffectCell, handle effectHandle) *SideEffectRegistrar {
	return &SideEffectRegistrar{cell: cell, handle: handle}
}

// finish runs the end-of-build shape check: a build that consumed fewer slots
// than the cell holds registered a different effect composition than the one
// that shaped the cell.
func (reg *SideEffectRegistrar) finish() {
	if reg.next != len(reg.cell.slots) {
		panic(effectShapeChangedMsg)
	}
	reg.cell.initialized = true
}

// Register installs the given side effect and returns its API. Panics when
// called a second time within the same build.
func Register[Api any](reg *SideEffectRegistrar, effect SideEffect[Api]) Api {
	if reg.registered {
		panic("register may only be called once per build; compose multiple side effects into one")
	}
	reg.registered = true
	return effect.Effect(reg)
}

// Raw is the primitive all side effects are built from. It claims the next
// positional slot of the capsule's side-effect cell, initializing it with
// initial() on the capsule's first build, and returns:
//
//   - a pointer to the slot's state, live for this build (mutating it during
//     the build is allowed and does not trigger rebuilds);
//   - a rebuilder: invoked from outside a build, it applies the given
//     mutation to the state inside a write transaction and propagates from
//     this capsule;
//   - a transaction runner: every rebuilder the callback's goroutine invokes
//     inside the callback is batched into a single write transaction and a
//     single propagation. Setters fired by other goroutines in the meantime
//     wait for the transaction to flush and then propagate separately.
//
// Slots are matched positionally across builds; registering a different
// number or type of slots than the first build panics.
func Raw[S any](reg *SideEffectRegistrar, initial func() S) (*S, func(func(*S)), func(func())) {
	i := reg.next
	reg.next++

	if i == len(reg.cell.slots) {
		if reg.cell.initialized {
			panic(effectShapeChangedMsg)
		}
		s := initial()
		reg.cell.slots = append(reg.cell.slots, &s)
	}
	state, ok := reg.cell.slots[i].(*S)
	if !ok {
		panic(effectShapeChangedMsg)
	}

	schedule := reg.handle.schedule
	rebuild := func(mutate func(*S)) {
		schedule(func(cell *sideEffectCell) {
			s, ok := cell.slots[i].(*S)
			if !ok {
				panic(effectShapeChangedMsg)
			}
			mutate(s)
		})
	}
	return state, rebuild, reg.handle.runTxn
}
