// Package store persists extracted feature sets (keypoints with their
// descriptors) in SQLite so that matching can be rerun without the detector.
//
// Descriptors are stored as little-endian float32 BLOBs (descriptor.Encode).
// NearestExact ranks a stored set in SQL with the vec_l2 function registered
// by package engine; it is exhaustive and serves as a reference for the
// approximate indexes.
package store
