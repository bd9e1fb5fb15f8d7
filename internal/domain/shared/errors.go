package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Driver-related errors

type DriverError struct {
	*DomainError
	DriverID string
}

func NewDriverError(driverID, message string) *DriverError {
	return &DriverError{
		DomainError: &DomainError{Message: fmt.Sprintf("driver %s: %s", driverID, message)},
		DriverID:    driverID,
	}
}

type CapacityExceededError struct {
	*DriverError
	Load     int
	Capacity int
}

func NewCapacityExceededError(driverID string, load, capacity int) *CapacityExceededError {
	return &CapacityExceededError{
		DriverError: NewDriverError(driverID, fmt.Sprintf("load %d exceeds capacity %d", load, capacity)),
		Load:        load,
		Capacity:    capacity,
	}
}

// Travel map errors

type UnknownPairError struct {
	*DomainError
	From string
	To   string
}

func NewUnknownPairError(from, to string) *UnknownPairError {
	return &UnknownPairError{
		DomainError: &DomainError{Message: fmt.Sprintf("(%s, %s) is not in the travel map", from, to)},
		From:        from,
		To:          to,
	}
}

// UnknownLocationError is fatal at load time: an input references a location
// id absent from the location tables.
type UnknownLocationError struct {
	*DomainError
	LocationID string
}

func NewUnknownLocationError(subject, locationID string) *UnknownLocationError {
	return &UnknownLocationError{
		DomainError: &DomainError{Message: fmt.Sprintf("%s references unknown location %q", subject, locationID)},
		LocationID:  locationID,
	}
}

// Dispatch errors

// InfeasibleDispatchError is fatal: the returned dispatch violates a hard
// feasibility constraint and the instance aborts.
type InfeasibleDispatchError struct {
	*DomainError
	DriverID string
}

func NewInfeasibleDispatchError(driverID, message string) *InfeasibleDispatchError {
	return &InfeasibleDispatchError{
		DomainError: &DomainError{Message: fmt.Sprintf("infeasible dispatch for driver %s: %s", driverID, message)},
		DriverID:    driverID,
	}
}

// OverdueIgnoredError is fatal: a generated order has passed its committed
// completion time but the dispatch result does not route it anywhere.
type OverdueIgnoredError struct {
	*DomainError
	OrderID string
}

func NewOverdueIgnoredError(orderID string, deadline, curTime int64) *OverdueIgnoredError {
	return &OverdueIgnoredError{
		DomainError: &DomainError{Message: fmt.Sprintf(
			"order %s timed out at %d but is still ignored in the dispatch result at %d", orderID, deadline, curTime)},
		OrderID: orderID,
	}
}

// PolicyFailedError is fatal: the external dispatcher crashed, timed out, or
// did not signal success.
type PolicyFailedError struct {
	*DomainError
}

func NewPolicyFailedError(message string) *PolicyFailedError {
	return &PolicyFailedError{DomainError: &DomainError{Message: message}}
}
