// Package engine opens SQLite databases through the modernc.org/sqlite driver
// and registers the descriptor SQL functions used by the feature store.
package engine
