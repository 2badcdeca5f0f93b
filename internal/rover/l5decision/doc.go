// Package l5decision owns Layer 5 (Decision) of the rover model.
//
// Responsibilities: the Forward/Stop/Stuck navigation state machine, stuck
// detection from commanded-versus-observed motion, and the edge-triggered
// sample pickup request.
// Key types: Config, Controller, Transition.
//
// The controller reads only the perception summary and telemetry held in
// rover.RoverState; it never reads the world map.
package l5decision
