// Package dispatch contains the per-tick planning policies, the dispatch
// result contract, and the hard-constraint checker that every result must
// pass before it is applied.
package dispatch

import (
	"context"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain/delivery"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/routemap"
)

// Snapshot is the frozen world state handed to a dispatcher each tick. It is
// a read-only value: drivers are deep copies and dispatchers must not mutate
// the order tables.
type Snapshot struct {
	UnallocatedOrders *delivery.OrderTable
	OngoingOrders     *delivery.OrderTable
	Drivers           *delivery.DriverTable
	Locations         *delivery.LocationTable
	RouteMap          *routemap.Map
}

// Order resolves an order id against the unallocated and ongoing tables.
func (s *Snapshot) Order(id string) *delivery.Order {
	if o := s.UnallocatedOrders.Get(id); o != nil {
		return o
	}
	return s.OngoingOrders.Get(id)
}

// Result is the dispatcher's answer: a committed next destination (nil when
// the driver stands by) and the ordered planned route per driver.
type Result struct {
	Destinations  map[string]*delivery.Node
	PlannedRoutes map[string][]*delivery.Node
}

func NewResult() *Result {
	return &Result{
		Destinations:  make(map[string]*delivery.Node),
		PlannedRoutes: make(map[string][]*delivery.Node),
	}
}

// OrderIDs collects every order id referenced anywhere in the result,
// pickups and deliveries alike.
func (r *Result) OrderIDs() map[string]bool {
	ids := make(map[string]bool)
	collect := func(node *delivery.Node) {
		if node == nil {
			return
		}
		for _, id := range node.PickupOrderIDs {
			ids[id] = true
		}
		for _, id := range node.DeliveryOrderIDs {
			ids[id] = true
		}
	}
	for _, node := range r.Destinations {
		collect(node)
	}
	for _, route := range r.PlannedRoutes {
		for _, node := range route {
			collect(node)
		}
	}
	return ids
}

// Dispatcher computes a dispatch from a snapshot. Implementations must be
// deterministic for a fixed snapshot and seed, and must always return a
// syntactically well-formed result covering every driver.
type Dispatcher interface {
	Dispatch(ctx context.Context, snapshot *Snapshot) (*Result, error)
}
