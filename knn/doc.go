// Package knn implements a SQLite virtual table that answers approximate
// nearest-neighbour queries against feature sets kept by package store.
//
//	CREATE VIRTUAL TABLE nn USING knn(k=2, trees=5, budget=50, seed=1);
//	SELECT position, distance FROM nn WHERE set_id = ? AND descriptor MATCH ?;
//
// The MATCH argument is an encoded descriptor BLOB or a JSON float array.
// Rows come back in ascending distance. Each set gets a randomized KD forest
// built on first use and cached across connections; deleting a set from
// feature_sets drops its cached forest through a trigger that calls
// knn_invalidate(set_id).
//
// Filter reads the feature tables through the same *sql.DB, so the pool needs
// at least two connections and therefore a file-backed database.
package knn
