// Package monitor renders read-only views of the rover's world map and
// vision image for the display collaborator. Nothing here writes back into
// the control loop.
package monitor
