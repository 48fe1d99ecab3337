// Package sideeffects provides the builtin side effects for capsules: state
// cells, one-time values, lazily initialized variants, reducers, blocking
// persistence, and a handful of small utilities. All of them are thin
// compositions over the registrar's Raw primitive, so user-defined effects
// compose with them freely.
package sideeffects
