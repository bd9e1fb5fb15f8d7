package steps

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cucumber/godog"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain/delivery"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/dispatch"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/routemap"
)

// dispatchContext exercises a single dispatch round against a hand-built
// snapshot. It shares the world-building steps of simulationContext.
type dispatchContext struct {
	world *simulationContext

	unallocated []orderSpec
	result      *dispatch.Result
}

func (dc *dispatchContext) reset() {
	dc.unallocated = nil
	dc.result = nil
}

func (dc *dispatchContext) anUnallocatedOrder(id string, demand int, pickup, deliveryLoc string) error {
	dc.unallocated = append(dc.unallocated, orderSpec{
		id:       id,
		demand:   demand,
		pickup:   pickup,
		delivery: deliveryLoc,
		creation: 0,
		deadline: 3600,
	})
	return nil
}

func (dc *dispatchContext) iRequestADispatch(policyName string) error {
	policy, err := dc.world.policyByName(policyName)
	if err != nil {
		return err
	}
	locations, err := dc.world.buildLocations()
	if err != nil {
		return err
	}
	drivers, err := dc.world.buildDrivers()
	if err != nil {
		return err
	}

	unallocated := delivery.NewOrderTable()
	for _, spec := range dc.unallocated {
		o, err := delivery.NewOrder(spec.id, spec.demand, spec.creation, spec.deadline,
			30, 30, spec.pickup, spec.delivery)
		if err != nil {
			return err
		}
		o.AdvanceTo(delivery.StateGenerated)
		unallocated.Add(o)
	}

	snapshot := &dispatch.Snapshot{
		UnallocatedOrders: unallocated,
		OngoingOrders:     delivery.NewOrderTable(),
		Drivers:           drivers,
		Locations:         locations,
		RouteMap:          routemap.New(dc.world.routes),
	}
	result, err := policy.Dispatch(context.Background(), snapshot)
	if err != nil {
		return err
	}
	if err := dispatch.NewChecker(unallocated).Check(result, drivers); err != nil {
		return fmt.Errorf("dispatch result rejected: %w", err)
	}
	dc.result = result
	return nil
}

func (dc *dispatchContext) driverSentToPickingUp(driverID, locationID, orderList string) error {
	if dc.result == nil {
		return errors.New("no dispatch requested yet")
	}
	dest := dc.result.Destinations[driverID]
	if dest == nil {
		return fmt.Errorf("driver %s has no destination", driverID)
	}
	if dest.LocationID != locationID {
		return fmt.Errorf("driver %s sent to %s, expected %s", driverID, dest.LocationID, locationID)
	}
	expected := strings.Split(orderList, ",")
	for i := range expected {
		expected[i] = strings.TrimSpace(expected[i])
	}
	got := append([]string(nil), dest.PickupOrderIDs...)
	sort.Strings(expected)
	sort.Strings(got)
	if strings.Join(got, ",") != strings.Join(expected, ",") {
		return fmt.Errorf("driver %s picks up %v, expected %v", driverID, got, expected)
	}
	return nil
}

func (dc *dispatchContext) driverHasNoDestination(driverID string) error {
	if dc.result == nil {
		return errors.New("no dispatch requested yet")
	}
	if dest := dc.result.Destinations[driverID]; dest != nil {
		return fmt.Errorf("driver %s was sent to %s", driverID, dest.LocationID)
	}
	return nil
}

func (dc *dispatchContext) noConsecutiveDuplicateStops(driverID string) error {
	if dc.result == nil {
		return errors.New("no dispatch requested yet")
	}
	stops := make([]string, 0)
	if dest := dc.result.Destinations[driverID]; dest != nil {
		stops = append(stops, dest.LocationID)
	}
	for _, node := range dc.result.PlannedRoutes[driverID] {
		stops = append(stops, node.LocationID)
	}
	for i := 1; i < len(stops); i++ {
		if stops[i] == stops[i-1] {
			return fmt.Errorf("stops %d and %d of driver %s both visit %s", i-1, i, driverID, stops[i])
		}
	}
	return nil
}

// InitializeDispatchScenario registers the single-round dispatch steps. The
// world-building steps come from the simulation scenario, which must be
// registered first.
func InitializeDispatchScenario(ctx *godog.ScenarioContext) {
	dc := &dispatchContext{world: sharedWorld}

	ctx.Before(func(c context.Context, _ *godog.Scenario) (context.Context, error) {
		dc.reset()
		return c, nil
	})

	ctx.Step(`^an unallocated order "([^"]*)" of demand (\d+) from "([^"]*)" to "([^"]*)"$`, dc.anUnallocatedOrder)
	ctx.Step(`^I request a dispatch with the (greedy|nearest) policy$`, dc.iRequestADispatch)
	ctx.Step(`^driver "([^"]*)" is sent to "([^"]*)" picking up orders "([^"]*)"$`, dc.driverSentToPickingUp)
	ctx.Step(`^driver "([^"]*)" has no destination$`, dc.driverHasNoDestination)
	ctx.Step(`^no two consecutive planned stops of "([^"]*)" share a location$`, dc.noConsecutiveDuplicateStops)
}
