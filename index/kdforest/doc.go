// Package kdforest provides an approximate nearest-neighbour index built from
// an ensemble of randomized KD trees. Each tree splits on a dimension drawn
// at random from the highest-variance dimensions of its data, so the trees
// partition the space differently. A query walks all trees best-first from a
// single priority queue and stops after a bounded number of distance checks.
//
// Construction is seeded: the same seed, data and tree count always produce
// the same forest and the same query results.
package kdforest
