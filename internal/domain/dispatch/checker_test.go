package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain/delivery"
)

func node(locationID string, pickups, deliveries []string) *delivery.Node {
	return delivery.NewNode(locationID, 0, 0, pickups, deliveries)
}

func TestCheckerAcceptsWellFormedResult(t *testing.T) {
	o := mustOrder(t, "o1", 1, "R1", "C1", delivery.StateGenerated)
	d := mustDriver(t, "d1", 5, "R1")
	snapshot := newTestSnapshot(t, []*delivery.Order{o}, nil, []*delivery.Driver{d})

	result := NewResult()
	result.Destinations["d1"] = node("R1", []string{"o1"}, nil)
	result.PlannedRoutes["d1"] = []*delivery.Node{node("C1", nil, []string{"o1"})}

	checker := NewChecker(allOrders(snapshot))
	assert.NoError(t, checker.Check(result, snapshot.Drivers))
}

func TestCheckerMissingDriverFails(t *testing.T) {
	d1 := mustDriver(t, "d1", 5, "R1")
	d2 := mustDriver(t, "d2", 5, "R1")
	snapshot := newTestSnapshot(t, nil, nil, []*delivery.Driver{d1, d2})

	result := NewResult()
	result.Destinations["d1"] = nil
	result.PlannedRoutes["d1"] = nil

	checker := NewChecker(allOrders(snapshot))
	assert.Error(t, checker.Check(result, snapshot.Drivers))
}

func TestCheckerCommittedDestinationIsImmutable(t *testing.T) {
	d := mustDriver(t, "d1", 5, "")
	d.SetPosition(delivery.InTransitAt(100))
	committed := node("R1", []string{"o1"}, nil)
	committed.ArriveTime = 500
	d.SetDestination(committed)

	o := mustOrder(t, "o1", 1, "R1", "C1", delivery.StateGenerated)
	snapshot := newTestSnapshot(t, []*delivery.Order{o}, nil, []*delivery.Driver{d})
	checker := NewChecker(allOrders(snapshot))

	// Same location, different arrive time.
	moved := node("R1", []string{"o1"}, nil)
	moved.ArriveTime = 900
	result := NewResult()
	result.Destinations["d1"] = moved
	result.PlannedRoutes["d1"] = []*delivery.Node{node("C1", nil, []string{"o1"})}
	assert.Error(t, checker.Check(result, snapshot.Drivers))

	// Different location entirely.
	elsewhere := node("R2", nil, nil)
	elsewhere.ArriveTime = 500
	result.Destinations["d1"] = elsewhere
	assert.Error(t, checker.Check(result, snapshot.Drivers))

	// Absent destination while one is committed.
	result.Destinations["d1"] = nil
	assert.Error(t, checker.Check(result, snapshot.Drivers))

	// Identical destination passes.
	same := node("R1", []string{"o1"}, nil)
	same.ArriveTime = 500
	result.Destinations["d1"] = same
	assert.NoError(t, checker.Check(result, snapshot.Drivers))
}

func TestCheckerInTransitRequiresDestination(t *testing.T) {
	d := mustDriver(t, "d1", 5, "")
	d.SetPosition(delivery.InTransitAt(100))
	snapshot := newTestSnapshot(t, nil, nil, []*delivery.Driver{d})

	result := NewResult()
	result.Destinations["d1"] = nil
	result.PlannedRoutes["d1"] = nil

	checker := NewChecker(allOrders(snapshot))
	assert.Error(t, checker.Check(result, snapshot.Drivers))
}

func TestCheckerCapacityPrefix(t *testing.T) {
	o1 := mustOrder(t, "o1", 2, "R1", "C1", delivery.StateGenerated)
	o2 := mustOrder(t, "o2", 2, "R1", "C2", delivery.StateGenerated)
	d := mustDriver(t, "d1", 3, "R1")
	snapshot := newTestSnapshot(t, []*delivery.Order{o1, o2}, nil, []*delivery.Driver{d})
	checker := NewChecker(allOrders(snapshot))

	// Both pickups before any delivery overloads a capacity-3 driver.
	result := NewResult()
	result.Destinations["d1"] = node("R1", []string{"o1", "o2"}, nil)
	result.PlannedRoutes["d1"] = []*delivery.Node{
		node("C1", nil, []string{"o1"}),
		node("C2", nil, []string{"o2"}),
	}
	require.Error(t, checker.Check(result, snapshot.Drivers))

	// Sequenced pickups stay within capacity.
	result = NewResult()
	result.Destinations["d1"] = node("R1", []string{"o1"}, nil)
	result.PlannedRoutes["d1"] = []*delivery.Node{
		node("C1", nil, []string{"o1"}),
		node("R1", []string{"o2"}, nil),
		node("C2", nil, []string{"o2"}),
	}
	assert.NoError(t, checker.Check(result, snapshot.Drivers))
}

func TestCheckerDeliveriesUnloadBeforePickups(t *testing.T) {
	carried := mustOrder(t, "o1", 2, "R1", "C1", delivery.StateOngoing)
	next := mustOrder(t, "o2", 2, "C1", "C2", delivery.StateGenerated)
	d := mustDriver(t, "d1", 3, "R1")
	d.SetCarryingOrders([]string{"o1"})
	snapshot := newTestSnapshot(t, []*delivery.Order{next}, []*delivery.Order{carried}, []*delivery.Driver{d})
	checker := NewChecker(allOrders(snapshot))

	// o1 is dropped at C1 before o2 is loaded there, so the peak load is 2.
	result := NewResult()
	result.Destinations["d1"] = node("C1", []string{"o2"}, []string{"o1"})
	result.PlannedRoutes["d1"] = []*delivery.Node{node("C2", nil, []string{"o2"})}
	assert.NoError(t, checker.Check(result, snapshot.Drivers))
}

func TestCheckerRejectsDuplicatePickup(t *testing.T) {
	o := mustOrder(t, "o1", 1, "R1", "C1", delivery.StateGenerated)
	d := mustDriver(t, "d1", 5, "R1")
	snapshot := newTestSnapshot(t, []*delivery.Order{o}, nil, []*delivery.Driver{d})
	checker := NewChecker(allOrders(snapshot))

	result := NewResult()
	result.Destinations["d1"] = node("R1", []string{"o1"}, nil)
	result.PlannedRoutes["d1"] = []*delivery.Node{
		node("R1", []string{"o1"}, nil),
		node("C1", nil, []string{"o1"}),
	}
	assert.Error(t, checker.Check(result, snapshot.Drivers))
}

func TestCheckerRejectsCarriedOrderPickedUpAgain(t *testing.T) {
	o := mustOrder(t, "o1", 1, "R1", "C1", delivery.StateOngoing)
	d := mustDriver(t, "d1", 5, "R1")
	d.SetCarryingOrders([]string{"o1"})
	snapshot := newTestSnapshot(t, nil, []*delivery.Order{o}, []*delivery.Driver{d})
	checker := NewChecker(allOrders(snapshot))

	result := NewResult()
	result.Destinations["d1"] = node("R1", []string{"o1"}, nil)
	result.PlannedRoutes["d1"] = []*delivery.Node{node("C1", nil, []string{"o1"})}
	assert.Error(t, checker.Check(result, snapshot.Drivers))
}

func TestCheckerRejectsWrongLocation(t *testing.T) {
	o := mustOrder(t, "o1", 1, "R1", "C1", delivery.StateGenerated)
	d := mustDriver(t, "d1", 5, "R1")
	snapshot := newTestSnapshot(t, []*delivery.Order{o}, nil, []*delivery.Driver{d})
	checker := NewChecker(allOrders(snapshot))

	result := NewResult()
	result.Destinations["d1"] = node("R2", []string{"o1"}, nil)
	result.PlannedRoutes["d1"] = []*delivery.Node{node("C1", nil, []string{"o1"})}
	assert.Error(t, checker.Check(result, snapshot.Drivers))

	result.Destinations["d1"] = node("R1", []string{"o1"}, nil)
	result.PlannedRoutes["d1"] = []*delivery.Node{node("C2", nil, []string{"o1"})}
	assert.Error(t, checker.Check(result, snapshot.Drivers))
}
