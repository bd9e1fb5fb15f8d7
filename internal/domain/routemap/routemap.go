// Package routemap provides the immutable pairwise distance and travel-time
// lookup between locations, built once from the route records of an instance.
package routemap

import (
	"math"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain/shared"
)

// InfiniteDistance is the sentinel returned for pairs missing from the map.
const InfiniteDistance = math.MaxFloat64

// InfiniteTime is the travel-time sentinel for pairs missing from the map.
const InfiniteTime = int64(math.MaxInt64)

// RouteRecord is one row of the static route table.
type RouteRecord struct {
	Code            string
	StartLocationID string
	EndLocationID   string
	Distance        float64
	TimeSeconds     int64
}

type pair struct {
	from string
	to   string
}

// Map is the immutable travel map. Lookup is symmetric: when the forward
// entry is missing the reverse is consulted; self-loops are zero.
type Map struct {
	distances map[pair]float64
	times     map[pair]int64
}

// New builds a Map from route records. Later duplicates of a pair are
// ignored, matching the source tables which list each pair once.
func New(records []RouteRecord) *Map {
	m := &Map{
		distances: make(map[pair]float64, len(records)),
		times:     make(map[pair]int64, len(records)),
	}
	for _, r := range records {
		key := pair{from: r.StartLocationID, to: r.EndLocationID}
		if _, ok := m.distances[key]; !ok {
			m.distances[key] = r.Distance
		}
		if _, ok := m.times[key]; !ok {
			m.times[key] = r.TimeSeconds
		}
	}
	return m
}

// Distance returns the route distance in kilometres between two locations.
// Unknown pairs return the infinite sentinel and an UnknownPairError.
func (m *Map) Distance(from, to string) (float64, error) {
	if from == to {
		return 0, nil
	}
	if d, ok := m.distances[pair{from: from, to: to}]; ok {
		return d, nil
	}
	if d, ok := m.distances[pair{from: to, to: from}]; ok {
		return d, nil
	}
	return InfiniteDistance, shared.NewUnknownPairError(from, to)
}

// Time returns the travel time in seconds between two locations. Unknown
// pairs return the infinite sentinel and an UnknownPairError.
func (m *Map) Time(from, to string) (int64, error) {
	if from == to {
		return 0, nil
	}
	if t, ok := m.times[pair{from: from, to: to}]; ok {
		return t, nil
	}
	if t, ok := m.times[pair{from: to, to: from}]; ok {
		return t, nil
	}
	return InfiniteTime, shared.NewUnknownPairError(from, to)
}
