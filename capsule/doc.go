// Package capsule implements an incremental dependency-graph runtime.
//
// A capsule is a blueprint that produces a single immutable value from a
// build handle. The container memoizes that value, records which other
// capsules were read while producing it, and, when a capsule's side-effect
// state is mutated through a setter, rebuilds exactly the affected transitive
// subgraph in topological order. Capsules that carry no side-effect state and
// have no remaining dependents are garbage collected opportunistically during
// propagation.
package capsule
