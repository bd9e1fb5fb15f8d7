package delivery

import (
	"fmt"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain/shared"
)

// DeliveryState is the lifecycle state of an order. The numeric codes are
// fixed by the exchange format and only surface at the CSV/JSON boundary.
type DeliveryState int

const (
	StateInitialization DeliveryState = 0
	StateGenerated      DeliveryState = 1
	StateOngoing        DeliveryState = 2
	StateCompleted      DeliveryState = 3
)

func (s DeliveryState) String() string {
	switch s {
	case StateInitialization:
		return "INITIALIZATION"
	case StateGenerated:
		return "GENERATED"
	case StateOngoing:
		return "ONGOING"
	case StateCompleted:
		return "COMPLETED"
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(s))
}

// Order entity - a single meal order from a restaurant to a customer.
//
// Invariants:
// - ID must be non-empty and unique across the instance
// - Demand must be positive
// - Pickup location must be a restaurant, delivery location a customer
// - State transitions are monotone: the state code only ever increases
type Order struct {
	id                      string
	demand                  int
	creationTime            int64
	committedCompletionTime int64
	loadTime                int64
	unloadTime              int64
	pickupLocationID        string
	deliveryLocationID      string
	state                   DeliveryState
}

// NewOrder creates a new Order in the INITIALIZATION state with validation
func NewOrder(id string, demand int, creationTime, committedCompletionTime, loadTime, unloadTime int64,
	pickupLocationID, deliveryLocationID string) (*Order, error) {
	o := &Order{
		id:                      id,
		demand:                  demand,
		creationTime:            creationTime,
		committedCompletionTime: committedCompletionTime,
		loadTime:                loadTime,
		unloadTime:              unloadTime,
		pickupLocationID:        pickupLocationID,
		deliveryLocationID:      deliveryLocationID,
		state:                   StateInitialization,
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// ReconstructOrder creates an Order from persisted or wire state.
func ReconstructOrder(id string, demand int, creationTime, committedCompletionTime, loadTime, unloadTime int64,
	pickupLocationID, deliveryLocationID string, state DeliveryState) (*Order, error) {
	o, err := NewOrder(id, demand, creationTime, committedCompletionTime, loadTime, unloadTime,
		pickupLocationID, deliveryLocationID)
	if err != nil {
		return nil, err
	}
	o.state = state
	return o, nil
}

func (o *Order) validate() error {
	if o.id == "" {
		return shared.NewValidationError("order_id", "cannot be empty")
	}
	if o.demand <= 0 {
		return shared.NewValidationError("demand", "must be positive")
	}
	if o.loadTime < 0 || o.unloadTime < 0 {
		return shared.NewValidationError("service_time", "cannot be negative")
	}
	if o.pickupLocationID == "" {
		return shared.NewValidationError("pickup_location_id", "cannot be empty")
	}
	if o.deliveryLocationID == "" {
		return shared.NewValidationError("delivery_location_id", "cannot be empty")
	}
	return nil
}

// Getters

func (o *Order) ID() string {
	return o.id
}

func (o *Order) Demand() int {
	return o.demand
}

func (o *Order) CreationTime() int64 {
	return o.creationTime
}

// CommittedCompletionTime is the deadline the lateness term is measured
// against. It never changes after construction.
func (o *Order) CommittedCompletionTime() int64 {
	return o.committedCompletionTime
}

func (o *Order) LoadTime() int64 {
	return o.loadTime
}

func (o *Order) UnloadTime() int64 {
	return o.unloadTime
}

func (o *Order) PickupLocationID() string {
	return o.pickupLocationID
}

func (o *Order) DeliveryLocationID() string {
	return o.deliveryLocationID
}

func (o *Order) State() DeliveryState {
	return o.state
}

// AdvanceTo moves the order forward to the given state. Moving to the current
// or an earlier state is a no-op, which keeps the lifecycle monotone when the
// same replay events are observed across consecutive ticks.
func (o *Order) AdvanceTo(state DeliveryState) {
	if state > o.state {
		o.state = state
	}
}

func (o *Order) String() string {
	return fmt.Sprintf("Order(id=%s, state=%s, pickup=%s, delivery=%s)",
		o.id, o.state, o.pickupLocationID, o.deliveryLocationID)
}
