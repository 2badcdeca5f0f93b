// Package pipeline provides the per-tick rover control loop.
//
// This package is the composition root: it imports from layer packages
// (l1segment, l2warp, l3coords, l4worldmap, l5decision) but none of those
// packages import pipeline/. Each Tick runs one perception pass followed by
// one decision pass against a single owned RoverState.
package pipeline
