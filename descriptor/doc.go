// Package descriptor defines the feature data consumed by the matching
// engine. It includes:
//   - Descriptor, Set, Keypoint and Features (index-aligned keypoints and descriptors)
//   - the Extractor collaborator contract for detectors
//   - Euclidean distance between descriptors
//   - Descriptor encoding (BLOB) for SQLite storage
package descriptor
