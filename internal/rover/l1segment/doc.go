// Package l1segment owns Layer 1 (Segmentation) of the rover perception model.
//
// Responsibilities: colour-space conversion and per-class threshold
// classification of camera pixels into navigable, sample and obstacle masks.
// Key types: Band, Config, Segmenter.
//
// Dependency rule: L1 depends only on the shared rover types and config.
package l1segment
