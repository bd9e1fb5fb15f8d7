package dispatch

import (
	"context"
	"math"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain/delivery"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/shared"
)

// NearestDriverPolicy is the first-generation dispatcher: carried orders are
// routed the same way as the greedy policy, but each unallocated order goes
// to the nearest driver with enough spare capacity and its pickup and
// delivery stops are appended at the end of that driver's route.
type NearestDriverPolicy struct {
	greedy *GreedyInsertionPolicy
}

func NewNearestDriverPolicy() *NearestDriverPolicy {
	return &NearestDriverPolicy{greedy: NewGreedyInsertionPolicy(0, 0, 0)}
}

func (p *NearestDriverPolicy) Dispatch(_ context.Context, snapshot *Snapshot) (*Result, error) {
	routes := make(map[string][]*delivery.Node)
	preMatched := make(map[string]bool)
	spare := make(map[string]int)

	for _, driver := range snapshot.Drivers.All() {
		routes[driver.ID()] = p.greedy.routeCommittedWork(snapshot, driver, preMatched)
		spare[driver.ID()] = driver.Capacity() - driver.CarryingWeight(snapshot.OngoingOrders)
	}
	for orderID := range preMatched {
		if order := snapshot.Order(orderID); order != nil {
			// A pre-matched pickup is already booked against the driver.
			driverID := driverWithDestinationPickup(snapshot, orderID)
			if driverID != "" {
				spare[driverID] -= order.Demand()
			}
		}
	}

	for _, order := range snapshot.UnallocatedOrders.All() {
		if preMatched[order.ID()] {
			continue
		}
		driverID := p.nearestWithCapacity(snapshot, spare, order)
		if driverID == "" {
			return nil, shared.NewInfeasibleDispatchError("", "no driver can carry order "+order.ID())
		}
		pickup := snapshot.Locations.Get(order.PickupLocationID())
		deliveryLoc := snapshot.Locations.Get(order.DeliveryLocationID())
		if pickup == nil || deliveryLoc == nil {
			return nil, shared.NewInfeasibleDispatchError(driverID,
				"order "+order.ID()+" references an unknown location")
		}
		routes[driverID] = append(routes[driverID],
			delivery.NewNode(pickup.ID(), pickup.Lat(), pickup.Lng(), []string{order.ID()}, nil),
			delivery.NewNode(deliveryLoc.ID(), deliveryLoc.Lat(), deliveryLoc.Lng(), nil, []string{order.ID()}))
		spare[driverID] -= order.Demand()
	}

	return p.greedy.finalise(snapshot, routes), nil
}

// nearestWithCapacity picks the closest anchor among drivers whose spare
// capacity covers the order's demand. Ties go to the lowest driver id via
// the sorted iteration order.
func (p *NearestDriverPolicy) nearestWithCapacity(snapshot *Snapshot, spare map[string]int,
	order *delivery.Order) string {

	pickup := snapshot.Locations.Get(order.PickupLocationID())
	if pickup == nil {
		return ""
	}
	best := ""
	bestDist := math.Inf(1)
	for _, driverID := range snapshot.Drivers.IDs() {
		if spare[driverID] < order.Demand() {
			continue
		}
		driver := snapshot.Drivers.Get(driverID)
		anchor := snapshot.Locations.Get(driver.AnchorLocationID())
		if anchor == nil {
			continue
		}
		d := shared.HaversineKm(anchor.Lat(), anchor.Lng(), pickup.Lat(), pickup.Lng())
		if d < bestDist {
			bestDist = d
			best = driverID
		}
	}
	return best
}

func driverWithDestinationPickup(snapshot *Snapshot, orderID string) string {
	for _, driver := range snapshot.Drivers.All() {
		dest := driver.Destination()
		if dest == nil {
			continue
		}
		for _, id := range dest.PickupOrderIDs {
			if id == orderID {
				return driver.ID()
			}
		}
	}
	return ""
}
