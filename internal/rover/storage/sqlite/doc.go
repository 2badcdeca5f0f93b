// Package sqlite contains the SQLite tick log for rover runs.
//
// A run is one replay or live session; every control tick within it is
// recorded with the pose, perception summary, mode transition and command
// issued. The domain layer packages never import this package.
package sqlite
