package delivery

import "github.com/YJFKD/Food-delivery-simulator/internal/domain/shared"

// Location is a fixed point couriers can stop at: a restaurant or a customer.
// Ids are globally unique across the two kinds.
type Location interface {
	ID() string
	Lat() float64
	Lng() float64
}

// Restaurant is a pickup location.
type Restaurant struct {
	id             string
	lat            float64
	lng            float64
	dispatchRadius int
	customerRadius int
	waitTime       int64
}

// NewRestaurant creates a Restaurant with validation
func NewRestaurant(id string, lat, lng float64, dispatchRadius, customerRadius int, waitTime int64) (*Restaurant, error) {
	if id == "" {
		return nil, shared.NewValidationError("restaurant_id", "cannot be empty")
	}
	return &Restaurant{
		id:             id,
		lat:            lat,
		lng:            lng,
		dispatchRadius: dispatchRadius,
		customerRadius: customerRadius,
		waitTime:       waitTime,
	}, nil
}

func (r *Restaurant) ID() string {
	return r.id
}

func (r *Restaurant) Lat() float64 {
	return r.lat
}

func (r *Restaurant) Lng() float64 {
	return r.lng
}

// DispatchRadius is the advisory courier dispatch radius in metres.
func (r *Restaurant) DispatchRadius() int {
	return r.dispatchRadius
}

// CustomerRadius is the advisory customer service radius in metres.
func (r *Restaurant) CustomerRadius() int {
	return r.customerRadius
}

// WaitTime is the mean preparation wait at the restaurant in seconds.
func (r *Restaurant) WaitTime() int64 {
	return r.waitTime
}

// Customer is a delivery location.
type Customer struct {
	id  string
	lat float64
	lng float64
}

// NewCustomer creates a Customer with validation
func NewCustomer(id string, lat, lng float64) (*Customer, error) {
	if id == "" {
		return nil, shared.NewValidationError("customer_id", "cannot be empty")
	}
	return &Customer{id: id, lat: lat, lng: lng}, nil
}

func (c *Customer) ID() string {
	return c.id
}

func (c *Customer) Lat() float64 {
	return c.lat
}

func (c *Customer) Lng() float64 {
	return c.lng
}
