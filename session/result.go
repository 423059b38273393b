package session

import (
	"github.com/viant/descmatch/descriptor"
	"github.com/viant/descmatch/match"
)

// Result is the published outcome of one successful Recompute. It references
// both keypoint lists so a visualizer can draw each ranked match.
type Result struct {
	Generation     uint64
	Config         match.Configuration
	Ranked         match.RankedMatchList
	Candidates     int // raw pairs produced by the matcher
	Accepted       int // pairs that passed the ratio test
	TrainKeypoints []descriptor.Keypoint
	QueryKeypoints []descriptor.Keypoint
}

// Line is one correspondence to draw, from a query keypoint to its train
// keypoint.
type Line struct {
	From      descriptor.Keypoint
	To        descriptor.Keypoint
	Thickness int
}

// Lines returns the ranked matches as drawable lines, in rank order.
func (r *Result) Lines() []Line {
	if r == nil {
		return nil
	}
	lines := make([]Line, 0, len(r.Ranked))
	for _, m := range r.Ranked {
		lines = append(lines, Line{
			From:      r.QueryKeypoints[m.QueryIndex],
			To:        r.TrainKeypoints[m.TrainIndex],
			Thickness: r.Config.LineThickness(),
		})
	}
	return lines
}
