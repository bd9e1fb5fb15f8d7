package history

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain/delivery"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/routemap"
)

func scorerMap() *routemap.Map {
	return routemap.New([]routemap.RouteRecord{
		{StartLocationID: "R1", EndLocationID: "C1", Distance: 2.0, TimeSeconds: 60},
		{StartLocationID: "C1", EndLocationID: "C2", Distance: 3.0, TimeSeconds: 60},
	})
}

func TestEvaluateDistanceAndLateness(t *testing.T) {
	l := NewLog()
	l.AddDriverPosition("d1", 100, "R1")
	l.AddDriverPosition("d1", 200, "C1")
	l.AddDriverPosition("d1", 300, "C2")
	// An on-time and a late order: 7200s late against a 3600s deadline.
	l.AddOrderStatus("o1", delivery.StateCompleted, 3000, 3600)
	l.AddOrderStatus("o2", delivery.StateCompleted, 10800, 3600)

	score := NewScorer(scorerMap(), 10).Evaluate(l, 2)

	assert.False(t, score.Failed)
	assert.InDelta(t, 5.0, score.TotalDistance, 1e-9)
	assert.Equal(t, int64(7200), score.TotalLateness)
	// 5.0/2 + 10*7200/3600
	assert.InDelta(t, 22.5, score.Value, 1e-9)
}

func TestEvaluateUsesEarliestCompletion(t *testing.T) {
	l := NewLog()
	l.AddOrderStatus("o1", delivery.StateCompleted, 5400, 3600)
	l.AddOrderStatus("o1", delivery.StateCompleted, 9000, 3600)

	score := NewScorer(scorerMap(), 1).Evaluate(l, 1)
	assert.Equal(t, int64(1800), score.TotalLateness)
}

func TestEvaluateMissingCompletionIsInfinite(t *testing.T) {
	l := NewLog()
	l.AddOrderStatus("o1", delivery.StateOngoing, 100, 3600)

	score := NewScorer(scorerMap(), 10).Evaluate(l, 1)
	assert.True(t, score.Failed)
	assert.Equal(t, ScoreInfinite, score.Value)
}

func TestEvaluateAdjacentDuplicateStopsAddNoDistance(t *testing.T) {
	// A parked driver re-recorded each tick yields adjacent duplicates of
	// its stop; self-loops cost zero so only the true path is counted.
	l := NewLog()
	l.AddDriverPosition("d1", 0, "R1")
	l.AddDriverPosition("d1", 0, "R1")
	l.AddDriverPosition("d1", 600, "R1")
	l.AddDriverPosition("d1", 700, "C1")
	l.AddDriverPosition("d1", 900, "C1")
	l.AddOrderStatus("o1", delivery.StateCompleted, 700, 3600)

	score := NewScorer(scorerMap(), 10).Evaluate(l, 1)
	assert.False(t, score.Failed)
	assert.InDelta(t, 2.0, score.TotalDistance, 1e-9)
}

func TestEvaluateIgnoresUnknownPairs(t *testing.T) {
	l := NewLog()
	l.AddDriverPosition("d1", 100, "R1")
	l.AddDriverPosition("d1", 200, "UNKNOWN")
	l.AddOrderStatus("o1", delivery.StateCompleted, 100, 3600)

	score := NewScorer(scorerMap(), 10).Evaluate(l, 1)
	assert.False(t, score.Failed)
	assert.Zero(t, score.TotalDistance)
}
