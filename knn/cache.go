package knn

import (
	"strings"
	"sync"

	"github.com/viant/descmatch/index/kdforest"
)

// Forests are shared by every connection and keyed by
// "dbPath|setID|trees/seed". A set is immutable once saved, so an entry only
// goes stale when the set is deleted.
var sharedCache = struct {
	mu    sync.RWMutex
	byKey map[string]*cacheEntry
}{byKey: make(map[string]*cacheEntry)}

type cacheEntry struct {
	mu       sync.Mutex
	idx      *kdforest.Index
	building bool
	cond     *sync.Cond
}

func newCacheEntry() *cacheEntry {
	e := &cacheEntry{}
	e.cond = sync.NewCond(&e.mu)
	return e
}

// acquire returns the cached forest, or reports that the caller must build
// it. Concurrent callers wait for an in-progress build.
func (e *cacheEntry) acquire() (*kdforest.Index, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for e.building {
		e.cond.Wait()
	}
	if e.idx != nil {
		return e.idx, false
	}
	e.building = true
	return nil, true
}

// finish ends a build started by acquire; idx is nil when the build failed.
func (e *cacheEntry) finish(idx *kdforest.Index) {
	e.mu.Lock()
	e.idx = idx
	e.building = false
	e.cond.Broadcast()
	e.mu.Unlock()
}

func cacheKey(dbPath, setID string, opts tableOptions) string {
	return dbPath + "|" + setID + "|" + opts.cacheKey()
}

func getCacheEntry(key string) *cacheEntry {
	sharedCache.mu.RLock()
	entry := sharedCache.byKey[key]
	sharedCache.mu.RUnlock()
	if entry != nil {
		return entry
	}
	sharedCache.mu.Lock()
	defer sharedCache.mu.Unlock()
	if entry = sharedCache.byKey[key]; entry == nil {
		entry = newCacheEntry()
		sharedCache.byKey[key] = entry
	}
	return entry
}

// Invalidate drops every cached forest of setID and returns how many were
// dropped.
func Invalidate(setID string) int {
	sharedCache.mu.Lock()
	defer sharedCache.mu.Unlock()
	pattern := "|" + setID + "|"
	count := 0
	for k := range sharedCache.byKey {
		if strings.Contains(k, pattern) {
			delete(sharedCache.byKey, k)
			count++
		}
	}
	return count
}
