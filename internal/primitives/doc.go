// Package primitives provides the foundational data structures for the FSM engine.
//
// It holds the event model, the error taxonomy, the shared machine context and
// the declaration tables (MachineConfig, StateConfig, TransitionConfig,
// RegionConfig, TimerConfig) that the dispatch engine consumes. The tables are
// resolved once at definition time; the engine never mutates them.
//
// Core invariants:
//   - Events are values and are never mutated after construction
//   - Each declared state belongs to exactly one region
//   - Timer ids are enumerable in declaration order, sub-machine ids flattened
//     under the sub-machine's state id
package primitives
