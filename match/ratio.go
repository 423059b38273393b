package match

// Filter applies Lowe's ratio test: a pair is accepted iff
// best < ratioThreshold * secondBest. The inequality is strict, so a query
// whose two nearest neighbours are both at distance 0 is rejected. Relative
// order of pairs is preserved. ratioThreshold is validated by
// NewConfiguration and not rechecked here.
func Filter(pairs []RawMatchPair, ratioThreshold float64) []AcceptedMatch {
	accepted := make([]AcceptedMatch, 0, len(pairs))
	for _, p := range pairs {
		if float64(p.Best.Distance) < ratioThreshold*float64(p.SecondBest.Distance) {
			accepted = append(accepted, AcceptedMatch{
				QueryIndex: p.QueryIndex,
				TrainIndex: p.Best.Index,
				Distance:   p.Best.Distance,
			})
		}
	}
	return accepted
}
