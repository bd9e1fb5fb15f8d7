// Package history holds the append-only record of driver position events and
// order state transitions. It is the sole input to the scorer.
package history

import (
	"sort"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain/delivery"
)

// PositionEvent records that a driver left a location at UpdateTime.
type PositionEvent struct {
	DriverID   string
	LocationID string
	UpdateTime int64
}

// StatusEvent records an order state transition observed during replay.
type StatusEvent struct {
	OrderID                 string
	State                   delivery.DeliveryState
	UpdateTime              int64
	CommittedCompletionTime int64
}

// Log is append-only with a single writer, the tick loop. Events are written
// once during a tick's commit step and read-only thereafter.
type Log struct {
	driverEvents map[string][]PositionEvent
	orderEvents  map[string][]StatusEvent
}

func NewLog() *Log {
	return &Log{
		driverEvents: make(map[string][]PositionEvent),
		orderEvents:  make(map[string][]StatusEvent),
	}
}

// AddDriverPosition appends a visited-location event. Empty location ids are
// skipped: a driver in transit has no recordable position.
func (l *Log) AddDriverPosition(driverID string, updateTime int64, locationID string) {
	if locationID == "" {
		return
	}
	l.driverEvents[driverID] = append(l.driverEvents[driverID], PositionEvent{
		DriverID:   driverID,
		LocationID: locationID,
		UpdateTime: updateTime,
	})
}

// AddOrderStatus appends an order state event.
func (l *Log) AddOrderStatus(orderID string, state delivery.DeliveryState, updateTime, committedCompletionTime int64) {
	l.orderEvents[orderID] = append(l.orderEvents[orderID], StatusEvent{
		OrderID:                 orderID,
		State:                   state,
		UpdateTime:              updateTime,
		CommittedCompletionTime: committedCompletionTime,
	})
}

// DriverIDs returns driver ids with recorded events in ascending order.
func (l *Log) DriverIDs() []string {
	ids := make([]string, 0, len(l.driverEvents))
	for id := range l.driverEvents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// OrderIDs returns order ids with recorded events in ascending order.
func (l *Log) OrderIDs() []string {
	ids := make([]string, 0, len(l.orderEvents))
	for id := range l.orderEvents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DriverPositions returns the recorded visit sequence for a driver.
func (l *Log) DriverPositions(driverID string) []PositionEvent {
	return l.driverEvents[driverID]
}

// OrderStatuses returns the recorded state events for an order.
func (l *Log) OrderStatuses(orderID string) []StatusEvent {
	return l.orderEvents[orderID]
}

// RecordDrivers appends, for every driver, the stops already departed by
// toTime: the current location, then the committed destination and planned
// route nodes whose simulated leave time has passed. It runs against the
// pre-commit route (the one replay just timed), so each traversed stop is
// observed exactly once across the run.
func (l *Log) RecordDrivers(drivers *delivery.DriverTable, toTime int64) {
	for _, driver := range drivers.All() {
		pos := driver.Position()
		if !pos.InTransit() && pos.LeaveTime() <= toTime {
			l.AddDriverPosition(driver.ID(), pos.LeaveTime(), pos.LocationID())
		}
		if dest := driver.Destination(); dest != nil && dest.LeaveTime <= toTime {
			l.AddDriverPosition(driver.ID(), dest.LeaveTime, dest.LocationID)
		}
		for _, node := range driver.PlannedRoute() {
			if node.LeaveTime <= toTime {
				l.AddDriverPosition(driver.ID(), node.LeaveTime, node.LocationID)
			}
		}
	}
}

// RecordOrders appends pickup (ONGOING) and delivery (COMPLETED) events for
// every stop reached by toTime, stamped with the stop's arrival time.
func (l *Log) RecordOrders(drivers *delivery.DriverTable, orders *delivery.OrderTable, toTime int64) {
	for _, driver := range drivers.All() {
		if dest := driver.Destination(); dest != nil && dest.ArriveTime <= toTime {
			l.recordNodeOrders(dest, orders)
		}
		for _, node := range driver.PlannedRoute() {
			if node.ArriveTime <= toTime {
				l.recordNodeOrders(node, orders)
			}
		}
	}
}

func (l *Log) recordNodeOrders(node *delivery.Node, orders *delivery.OrderTable) {
	for _, id := range node.PickupOrderIDs {
		if o := orders.Get(id); o != nil {
			l.AddOrderStatus(id, delivery.StateOngoing, node.ArriveTime, o.CommittedCompletionTime())
		}
	}
	for _, id := range node.DeliveryOrderIDs {
		if o := orders.Get(id); o != nil {
			l.AddOrderStatus(id, delivery.StateCompleted, node.ArriveTime, o.CommittedCompletionTime())
		}
	}
}
