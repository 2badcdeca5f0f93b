// Package l4worldmap owns Layer 4 (World map) of the rover perception model.
//
// Responsibilities: the fixed-size three-channel world grid and the
// accumulator that writes each tick's classified world cells into it.
// Key types: WorldMap, Channel, Accumulator, Observations.
//
// The map is write-only from the pipeline's point of view: cells are
// overwritten with a fixed intensity, never summed or decayed.
// Dependency rule: L4 may depend on L3, but never on L5+.
package l4worldmap
