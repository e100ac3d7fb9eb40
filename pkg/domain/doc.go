/*
Package domain contains the core models of the scenario graph.

A scenario is authored as a Template owning a set of Steps. Steps are connected by
directed, optionally conditional Transitions and may declare Variables that external
renderers use to collect answers. This package is kept free of I/O and persistence:
storage lives behind the interfaces in pkg/ports.

# Key Entities

  - Template: a named scenario owned by an opaque owner id.
  - Step: one screen or decision point of the scenario.
  - Variable: an answer slot declared by a step (engine-opaque type tag and options).
  - Transition: a directed edge between two steps of the same template.
  - Draft: an author-time graph keyed by session-local identifiers, not yet persisted.
*/
package domain
