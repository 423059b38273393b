package match

import "github.com/viant/descmatch/index"

// RawMatchPair holds the two nearest train neighbours of one query
// descriptor. Best.Distance <= SecondBest.Distance.
type RawMatchPair struct {
	QueryIndex int
	Best       index.Neighbor
	SecondBest index.Neighbor
}

// AcceptedMatch is a pair whose best neighbour passed the ratio test.
// Distance always equals the pair's Best.Distance.
type AcceptedMatch struct {
	QueryIndex int
	TrainIndex int
	Distance   float32
}

// RankedMatchList is sorted by ascending distance, ties by ascending query
// index, and holds at most the requested number of matches.
type RankedMatchList []AcceptedMatch
