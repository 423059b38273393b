package session

// State is the phase a Session is in.
type State int32

const (
	// Idle means no result has been published.
	Idle State = iota
	// Building means the newest run is constructing its index.
	Building
	// Matching means the newest run is querying, filtering and ranking.
	Matching
	// Ready means a result is published and no run is in flight.
	Ready
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Building:
		return "building"
	case Matching:
		return "matching"
	case Ready:
		return "ready"
	}
	return "unknown"
}
