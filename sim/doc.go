// Package sim provides the core day-stepped kanban flow simulation engine.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - card.go: Card lifecycle (backlog → columns → donelog) and per-column history
//   - lane.go: the reverse-order tick that moves cards through a pipeline
//   - board.go: the day loop, termination, and board cloning
//
// # Architecture
//
// A Board is a template: building one from a BoardSpec never consumes it.
// Clone() produces an independent runtime instance with its own RNG streams;
// RunSimulation drives a clone to completion, and montecarlo.go replays many
// clones to sample the distribution of finish days.
//
// Randomness is confined to effort sampling: every column owns an
// EffortSampler (effort.go) drawing from a per-column stream of a
// PartitionedRNG (rng.go), so runs are reproducible given a SimulationKey.
//
// Snapshot records for external consumers (HTML renderers, calendar views,
// exporters) live in the sim/trace sub-package; this package performs no
// formatting or file I/O.
package sim
