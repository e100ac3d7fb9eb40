// Package state holds the run-scoped answer store consulted by the transition resolver.
//
// A Snapshot maps variable names to a closed set of value shapes (String, Bool, Int,
// Date, Dates). It is created empty when a run starts, written as the user answers
// (last write wins, no history) and discarded when the run ends. A Snapshot is not safe
// for concurrent use: every run owns its own instance.
package state
