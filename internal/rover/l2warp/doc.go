// Package l2warp owns Layer 2 (Rectification) of the rover perception model.
//
// Responsibilities: deriving the camera-to-overhead homography from four
// point correspondences and warping class masks into the overhead frame.
// Key types: Point, Homography, Mapper.
//
// Dependency rule: L2 may depend on L1, but never on L3+.
package l2warp
