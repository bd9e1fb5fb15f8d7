package dispatch

import (
	"log"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain/delivery"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/shared"
)

// Checker validates a dispatch result against the hard constraints before it
// is applied. Any violation is fatal to the instance.
type Checker struct {
	orders *delivery.OrderTable
}

func NewChecker(orders *delivery.OrderTable) *Checker {
	return &Checker{orders: orders}
}

// Check validates the result: every driver is covered exactly once, committed
// destinations are unchanged, the running load stays within capacity, no order
// is picked up twice, and every stop matches its orders.
func (c *Checker) Check(result *Result, drivers *delivery.DriverTable) error {
	// Every driver appears exactly once in both output maps.
	if len(result.Destinations) != drivers.Len() {
		return shared.NewInfeasibleDispatchError("", "destination count does not match driver count")
	}
	if len(result.PlannedRoutes) != drivers.Len() {
		return shared.NewInfeasibleDispatchError("", "planned route count does not match driver count")
	}

	for _, driver := range drivers.All() {
		driverID := driver.ID()
		destination, ok := result.Destinations[driverID]
		if !ok {
			return shared.NewInfeasibleDispatchError(driverID, "destination missing from result")
		}
		route, ok := result.PlannedRoutes[driverID]
		if !ok {
			return shared.NewInfeasibleDispatchError(driverID, "planned route missing from result")
		}

		if err := c.checkDestination(driver, destination); err != nil {
			return err
		}

		full := make([]*delivery.Node, 0, len(route)+1)
		if destination != nil {
			full = append(full, destination)
		}
		full = append(full, route...)
		if len(full) == 0 {
			continue
		}

		if err := c.checkCapacity(driver, full); err != nil {
			return err
		}
		c.warnAdjacentDuplicates(driverID, full)
		if err := c.checkDuplicateOrders(driver, full); err != nil {
			return err
		}
		if err := c.checkOrderLocations(driverID, full); err != nil {
			return err
		}
	}
	return nil
}

// checkDestination enforces that a committed destination is irrevocable and
// that a mid-transit driver is always given one.
func (c *Checker) checkDestination(driver *delivery.Driver, returned *delivery.Node) error {
	committed := driver.Destination()
	if committed != nil {
		if returned == nil {
			return shared.NewInfeasibleDispatchError(driver.ID(),
				"returned destination is absent but a destination is committed")
		}
		if committed.LocationID != returned.LocationID {
			return shared.NewInfeasibleDispatchError(driver.ID(),
				"returned destination "+returned.LocationID+" differs from committed destination "+committed.LocationID)
		}
		if committed.ArriveTime != returned.ArriveTime {
			return shared.NewInfeasibleDispatchError(driver.ID(),
				"returned destination changes the committed arrive time")
		}
		return nil
	}
	if driver.Position().InTransit() && returned == nil {
		return shared.NewInfeasibleDispatchError(driver.ID(),
			"driver is in transit but the returned destination is absent")
	}
	return nil
}

// checkCapacity walks the running load along [destination]++planned_route,
// starting from the carried weight: it must never exceed capacity and never
// drop below zero. Deliveries unload before pickups load at the same stop.
func (c *Checker) checkCapacity(driver *delivery.Driver, route []*delivery.Node) error {
	load := driver.CarryingWeight(c.orders)
	if load > driver.Capacity() {
		return shared.NewCapacityExceededError(driver.ID(), load, driver.Capacity())
	}
	for _, node := range route {
		for _, id := range node.DeliveryOrderIDs {
			if o := c.orders.Get(id); o != nil {
				load -= o.Demand()
			}
		}
		if load < 0 {
			return shared.NewInfeasibleDispatchError(driver.ID(), "running load drops below zero at "+node.LocationID)
		}
		for _, id := range node.PickupOrderIDs {
			if o := c.orders.Get(id); o != nil {
				load += o.Demand()
			}
		}
		if load > driver.Capacity() {
			return shared.NewCapacityExceededError(driver.ID(), load, driver.Capacity())
		}
	}
	return nil
}

// checkDuplicateOrders rejects an order picked up twice, or a carried order
// picked up again.
func (c *Checker) checkDuplicateOrders(driver *delivery.Driver, route []*delivery.Node) error {
	seen := make(map[string]bool)
	for _, id := range driver.CarryingOrderIDs() {
		if seen[id] {
			return shared.NewInfeasibleDispatchError(driver.ID(), "order "+id+" carried twice")
		}
		seen[id] = true
	}
	for _, node := range route {
		for _, id := range node.PickupOrderIDs {
			if seen[id] {
				return shared.NewInfeasibleDispatchError(driver.ID(), "order "+id+" picked up more than once")
			}
			seen[id] = true
		}
	}
	return nil
}

// checkOrderLocations requires pickups and deliveries to sit on the matching
// node.
func (c *Checker) checkOrderLocations(driverID string, route []*delivery.Node) error {
	for _, node := range route {
		for _, id := range node.PickupOrderIDs {
			o := c.orders.Get(id)
			if o == nil {
				return shared.NewInfeasibleDispatchError(driverID, "unknown pickup order "+id)
			}
			if o.PickupLocationID() != node.LocationID {
				return shared.NewInfeasibleDispatchError(driverID,
					"order "+id+" is picked up at "+node.LocationID+" instead of "+o.PickupLocationID())
			}
		}
		for _, id := range node.DeliveryOrderIDs {
			o := c.orders.Get(id)
			if o == nil {
				return shared.NewInfeasibleDispatchError(driverID, "unknown delivery order "+id)
			}
			if o.DeliveryLocationID() != node.LocationID {
				return shared.NewInfeasibleDispatchError(driverID,
					"order "+id+" is delivered at "+node.LocationID+" instead of "+o.DeliveryLocationID())
			}
		}
	}
	return nil
}

// warnAdjacentDuplicates logs adjacent nodes sharing a location; they are
// legal but encouraged to be combined into one.
func (c *Checker) warnAdjacentDuplicates(driverID string, route []*delivery.Node) {
	for i := 0; i+1 < len(route); i++ {
		if route[i].LocationID == route[i+1].LocationID {
			log.Printf("checker: driver %s has adjacent-duplicated nodes at %s which are encouraged to be combined",
				driverID, route[i].LocationID)
		}
	}
}
