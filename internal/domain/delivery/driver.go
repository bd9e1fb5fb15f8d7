package delivery

import (
	"fmt"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain/shared"
)

// Position is where a driver currently is. A driver is either at a stop
// (known location with arrive/leave times) or in transit between stops.
type Position struct {
	locationID string
	arriveTime int64
	leaveTime  int64
	updateTime int64
}

// AtStop creates a Position for a driver parked at a location.
func AtStop(locationID string, updateTime, arriveTime, leaveTime int64) Position {
	return Position{
		locationID: locationID,
		arriveTime: arriveTime,
		leaveTime:  leaveTime,
		updateTime: updateTime,
	}
}

// InTransitAt creates a Position for a driver travelling between stops.
func InTransitAt(updateTime int64) Position {
	return Position{updateTime: updateTime}
}

// InTransit reports whether the driver is between stops.
func (p Position) InTransit() bool {
	return p.locationID == ""
}

// LocationID is the current stop id, empty while in transit.
func (p Position) LocationID() string {
	return p.locationID
}

func (p Position) ArriveTime() int64 {
	return p.arriveTime
}

func (p Position) LeaveTime() int64 {
	return p.leaveTime
}

func (p Position) UpdateTime() int64 {
	return p.updateTime
}

// Driver entity - a courier with bounded carrying capacity.
//
// Invariants:
// - total demand of carried orders never exceeds capacity
// - a driver in transit always has a committed destination
// - once a destination is committed its (location, arrive_time) pair is
//   immutable until the driver arrives there
type Driver struct {
	id            string
	capacity      int
	operationTime int64
	gpsID         string
	position      Position
	carryingIDs   []string
	destination   *Node
	plannedRoute  []*Node
}

// NewDriver creates a new Driver with validation
func NewDriver(id string, capacity int, gpsID string, operationTime int64) (*Driver, error) {
	d := &Driver{
		id:            id,
		capacity:      capacity,
		operationTime: operationTime,
		gpsID:         gpsID,
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Driver) validate() error {
	if d.id == "" {
		return shared.NewValidationError("driver_id", "cannot be empty")
	}
	if d.capacity <= 0 {
		return shared.NewValidationError("capacity", "must be positive")
	}
	return nil
}

// Getters

func (d *Driver) ID() string {
	return d.id
}

func (d *Driver) Capacity() int {
	return d.capacity
}

func (d *Driver) OperationTime() int64 {
	return d.operationTime
}

func (d *Driver) GPSID() string {
	return d.gpsID
}

func (d *Driver) Position() Position {
	return d.position
}

func (d *Driver) CarryingOrderIDs() []string {
	return append([]string(nil), d.carryingIDs...)
}

func (d *Driver) Destination() *Node {
	return d.destination
}

func (d *Driver) HasDestination() bool {
	return d.destination != nil
}

func (d *Driver) PlannedRoute() []*Node {
	return d.plannedRoute
}

// CarryingWeight resolves the total demand currently on board.
func (d *Driver) CarryingWeight(orders *OrderTable) int {
	weight := 0
	for _, id := range d.carryingIDs {
		if o := orders.Get(id); o != nil {
			weight += o.Demand()
		}
	}
	return weight
}

// AnchorLocationID is the driver's origin for route planning: the current
// stop, or the committed destination while in transit.
func (d *Driver) AnchorLocationID() string {
	if !d.position.InTransit() {
		return d.position.LocationID()
	}
	if d.destination != nil {
		return d.destination.LocationID
	}
	return ""
}

// SetPosition updates the driver's observed position after replay.
func (d *Driver) SetPosition(p Position) {
	d.position = p
}

// SetCarryingOrders replaces the on-board order set after replay.
func (d *Driver) SetCarryingOrders(orderIDs []string) {
	d.carryingIDs = append([]string(nil), orderIDs...)
}

// SetDestination overwrites the committed destination. Destination
// immutability against dispatch output is enforced by the checker before
// commit; replay clears the destination once the driver has arrived.
func (d *Driver) SetDestination(node *Node) {
	d.destination = node
}

// SetPlannedRoute replaces the planned route.
func (d *Driver) SetPlannedRoute(nodes []*Node) {
	d.plannedRoute = nodes
}

// Clone returns a deep copy used for read-only snapshots handed to the
// dispatcher.
func (d *Driver) Clone() *Driver {
	c := &Driver{
		id:            d.id,
		capacity:      d.capacity,
		operationTime: d.operationTime,
		gpsID:         d.gpsID,
		position:      d.position,
		carryingIDs:   append([]string(nil), d.carryingIDs...),
	}
	if d.destination != nil {
		c.destination = d.destination.Clone()
	}
	if len(d.plannedRoute) > 0 {
		c.plannedRoute = make([]*Node, len(d.plannedRoute))
		for i, n := range d.plannedRoute {
			c.plannedRoute[i] = n.Clone()
		}
	}
	return c
}

func (d *Driver) String() string {
	dest := "none"
	if d.destination != nil {
		dest = d.destination.LocationID
	}
	return fmt.Sprintf("Driver(id=%s, at=%q, destination=%s, carrying=%d)",
		d.id, d.position.LocationID(), dest, len(d.carryingIDs))
}
