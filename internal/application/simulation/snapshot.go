package simulation

import (
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/delivery"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/dispatch"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/routemap"
)

// SnapshotBuilder freezes the authoritative state into the read-only view
// handed to the dispatcher each tick.
type SnapshotBuilder struct {
	orders    *delivery.OrderTable
	locations *delivery.LocationTable
	routeMap  *routemap.Map
}

func NewSnapshotBuilder(orders *delivery.OrderTable, locations *delivery.LocationTable,
	routeMap *routemap.Map) *SnapshotBuilder {
	return &SnapshotBuilder{orders: orders, locations: locations, routeMap: routeMap}
}

// Build promotes newly created orders to GENERATED, partitions the order book
// by state and deep-copies the driver table. Completed and not-yet-created
// orders are invisible to the dispatcher.
func (b *SnapshotBuilder) Build(drivers *delivery.DriverTable, atTime int64) *dispatch.Snapshot {
	unallocated := delivery.NewOrderTable()
	ongoing := delivery.NewOrderTable()
	for _, order := range b.orders.All() {
		if order.State() == delivery.StateInitialization && order.CreationTime() <= atTime {
			order.AdvanceTo(delivery.StateGenerated)
		}
		switch order.State() {
		case delivery.StateGenerated:
			unallocated.Add(order)
		case delivery.StateOngoing:
			ongoing.Add(order)
		}
	}
	return &dispatch.Snapshot{
		UnallocatedOrders: unallocated,
		OngoingOrders:     ongoing,
		Drivers:           drivers.Clone(),
		Locations:         b.locations,
		RouteMap:          b.routeMap,
	}
}
