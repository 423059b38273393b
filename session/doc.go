// Package session orchestrates index construction, matching, ratio filtering
// and ranking behind a single Recompute call.
//
// A Session publishes results atomically. Every Recompute is tagged with a
// generation number; starting a new one cancels the one in flight, and a
// finished run is published only if no newer run has been published already.
// Callers therefore never observe a partly built index or a partly filtered
// match list, and a failed run leaves the previous result in place.
package session
