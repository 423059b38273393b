package match

import "sort"

// Rank sorts matches by ascending distance, breaking ties by ascending query
// index, and keeps the first topN. Fewer matches than topN are returned as
// is. matches is not modified. topN below 1 yields an empty list.
func Rank(matches []AcceptedMatch, topN int) RankedMatchList {
	if topN < 1 {
		return RankedMatchList{}
	}
	ranked := make(RankedMatchList, len(matches))
	copy(ranked, matches)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Distance != ranked[j].Distance {
			return ranked[i].Distance < ranked[j].Distance
		}
		return ranked[i].QueryIndex < ranked[j].QueryIndex
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
