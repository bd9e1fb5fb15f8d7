package history

import (
	"log"
	"math"
	"sort"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain/delivery"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/routemap"
)

// ScoreInfinite is the sentinel score reported for failed instances and for
// runs where some order never completed.
const ScoreInfinite = math.MaxFloat64

// Score is the composite objective, lower is better.
type Score struct {
	TotalDistance float64
	TotalLateness int64
	DriverCount   int
	Value         float64
	Failed        bool
}

// Scorer reduces a history log to the scalar objective
// total_distance/driver_count + lamda*total_lateness/3600.
type Scorer struct {
	routeMap *routemap.Map
	lamda    float64
}

func NewScorer(routeMap *routemap.Map, lamda float64) *Scorer {
	return &Scorer{routeMap: routeMap, lamda: lamda}
}

// Evaluate computes the final score from the history log. An order with no
// COMPLETED entry marks the run failed and the score is the infinite
// sentinel.
func (s *Scorer) Evaluate(l *Log, driverCount int) Score {
	totalDistance := s.totalDistance(l)
	totalLateness, ok := s.totalLateness(l)
	if !ok {
		return Score{
			TotalDistance: totalDistance,
			DriverCount:   driverCount,
			Value:         ScoreInfinite,
			Failed:        true,
		}
	}
	value := totalDistance/float64(driverCount) + s.lamda*float64(totalLateness)/3600.0
	return Score{
		TotalDistance: totalDistance,
		TotalLateness: totalLateness,
		DriverCount:   driverCount,
		Value:         value,
	}
}

func (s *Scorer) totalDistance(l *Log) float64 {
	total := 0.0
	for _, driverID := range l.DriverIDs() {
		events := l.DriverPositions(driverID)
		distance := 0.0
		for i := 0; i+1 < len(events); i++ {
			d, err := s.routeMap.Distance(events[i].LocationID, events[i+1].LocationID)
			if err != nil {
				log.Printf("scorer: %v", err)
				continue
			}
			distance += d
		}
		total += distance
	}
	return total
}

// totalLateness sums max(0, complete_time - committed_completion_time) over
// all orders. The completion time of an order is its earliest COMPLETED
// event; the deadline is read from that same event (deadlines are
// monotone: they never change after creation).
func (s *Scorer) totalLateness(l *Log) (int64, bool) {
	var total int64
	ok := true
	for _, orderID := range l.OrderIDs() {
		completed := make([]StatusEvent, 0)
		for _, ev := range l.OrderStatuses(orderID) {
			if ev.State == delivery.StateCompleted {
				completed = append(completed, ev)
			}
		}
		if len(completed) == 0 {
			log.Printf("scorer: order %s has no history of completion status", orderID)
			ok = false
			continue
		}
		sort.Slice(completed, func(i, j int) bool {
			return completed[i].UpdateTime < completed[j].UpdateTime
		})
		overTime := completed[0].UpdateTime - completed[0].CommittedCompletionTime
		if overTime > 0 {
			total += overTime
		}
	}
	return total, ok
}
