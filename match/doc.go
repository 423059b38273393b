// Package match turns two descriptor sets into a ranked list of
// correspondences:
//   - MatchAll retrieves the two nearest train neighbours of every query
//   - Filter applies Lowe's ratio test to reject ambiguous pairs
//   - Rank orders the survivors by distance and keeps the best N
//
// Parameters travel in an immutable Configuration validated when it is
// constructed, so no stage fails on a bad parameter mid-computation.
package match
