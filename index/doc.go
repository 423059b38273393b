// Package index defines a minimal abstraction for descriptor indexes that can
// be built from a descriptor set and queried for the k nearest neighbours
// under Euclidean distance. Implementations in this module include a
// randomized KD forest (kdforest) and an exhaustive baseline (bruteforce)
// used to measure recall.
package index
