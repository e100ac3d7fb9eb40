/*
Package ports defines the driven ports (interfaces) of the scenario graph engine.

These interfaces decouple the resolver and the compiler from the storage backend,
allowing the engine to run over SQLite, memory or any other relational store.

# Key Interfaces

  - GraphReader: read queries over templates, steps, variables and transitions.
  - GraphWriter: atomic units of work and metadata edits.
  - GraphTx: the inserts available inside one unit of work.
  - DistributedLocker: serializes compilations across processes.
*/
package ports
