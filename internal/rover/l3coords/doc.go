// Package l3coords owns Layer 3 (Coordinates) of the rover perception model.
//
// Responsibilities: converting rectified mask pixels to rover-centric
// Cartesian and polar coordinates, polar aggregation into a steering signal,
// and the rover-to-world affine transform with clamping to the map grid.
// Key types: RoverPoints, WorldPoints, Transformer.
//
// Every function here is pure; no package state is kept between ticks.
package l3coords
