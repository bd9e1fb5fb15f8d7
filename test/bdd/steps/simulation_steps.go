package steps

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cucumber/godog"

	"github.com/YJFKD/Food-delivery-simulator/internal/application/simulation"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/delivery"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/dispatch"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/history"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/routemap"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/shared"
)

type locationSpec struct {
	id         string
	lat, lng   float64
	restaurant bool
}

type driverSpec struct {
	id       string
	capacity int
	at       string
}

type orderSpec struct {
	id       string
	demand   int
	pickup   string
	delivery string
	creation int64
	deadline int64
}

// simulationContext rebuilds the whole world from its declarative specs for
// every run, so a rerun starts from identical inputs.
type simulationContext struct {
	locations []locationSpec
	routes    []routemap.RouteRecord
	drivers   []driverSpec
	orders    []orderSpec

	lastPolicy   string
	lastInterval int

	runErr error
	log    *history.Log
	score  history.Score

	rerunScore *history.Score
}

func (sc *simulationContext) reset() {
	sc.locations = nil
	sc.routes = nil
	sc.drivers = nil
	sc.orders = nil
	sc.lastPolicy = ""
	sc.lastInterval = 0
	sc.runErr = nil
	sc.log = nil
	sc.score = history.Score{}
	sc.rerunScore = nil
}

func (sc *simulationContext) aRestaurantAt(id string, lat, lng float64) error {
	sc.locations = append(sc.locations, locationSpec{id: id, lat: lat, lng: lng, restaurant: true})
	return nil
}

func (sc *simulationContext) aCustomerAt(id string, lat, lng float64) error {
	sc.locations = append(sc.locations, locationSpec{id: id, lat: lat, lng: lng})
	return nil
}

func (sc *simulationContext) aRoute(from, to string, distance float64, seconds int) error {
	sc.routes = append(sc.routes, routemap.RouteRecord{
		StartLocationID: from,
		EndLocationID:   to,
		Distance:        distance,
		TimeSeconds:     int64(seconds),
	})
	return nil
}

func (sc *simulationContext) aDriverParkedAt(id string, capacity int, at string) error {
	sc.drivers = append(sc.drivers, driverSpec{id: id, capacity: capacity, at: at})
	return nil
}

func (sc *simulationContext) anOrder(id string, demand int, pickup, deliveryLoc string, creation, deadline int) error {
	sc.orders = append(sc.orders, orderSpec{
		id:       id,
		demand:   demand,
		pickup:   pickup,
		delivery: deliveryLoc,
		creation: int64(creation),
		deadline: int64(deadline),
	})
	return nil
}

func (sc *simulationContext) buildLocations() (*delivery.LocationTable, error) {
	table := delivery.NewLocationTable()
	for _, spec := range sc.locations {
		var loc delivery.Location
		var err error
		if spec.restaurant {
			loc, err = delivery.NewRestaurant(spec.id, spec.lat, spec.lng, 3000, 5000, 300)
		} else {
			loc, err = delivery.NewCustomer(spec.id, spec.lat, spec.lng)
		}
		if err != nil {
			return nil, err
		}
		table.Add(loc)
	}
	return table, nil
}

func (sc *simulationContext) buildDrivers() (*delivery.DriverTable, error) {
	table := delivery.NewDriverTable()
	for _, spec := range sc.drivers {
		d, err := delivery.NewDriver(spec.id, spec.capacity, "gps-"+spec.id, 54000)
		if err != nil {
			return nil, err
		}
		d.SetPosition(delivery.AtStop(spec.at, 0, 0, 0))
		table.Add(d)
	}
	return table, nil
}

func (sc *simulationContext) buildOrders() (*delivery.OrderTable, error) {
	table := delivery.NewOrderTable()
	for _, spec := range sc.orders {
		o, err := delivery.NewOrder(spec.id, spec.demand, spec.creation, spec.deadline,
			30, 30, spec.pickup, spec.delivery)
		if err != nil {
			return nil, err
		}
		table.Add(o)
	}
	return table, nil
}

func (sc *simulationContext) policyByName(name string) (dispatch.Dispatcher, error) {
	switch name {
	case "greedy":
		return dispatch.NewGreedyInsertionPolicy(42, 8, 6), nil
	case "nearest":
		return dispatch.NewNearestDriverPolicy(), nil
	case "standby":
		return standbyDispatcher{}, nil
	}
	return nil, fmt.Errorf("unknown policy %q", name)
}

// standbyDispatcher parks every driver where it stands.
type standbyDispatcher struct{}

func (standbyDispatcher) Dispatch(_ context.Context, snapshot *dispatch.Snapshot) (*dispatch.Result, error) {
	result := dispatch.NewResult()
	for _, d := range snapshot.Drivers.All() {
		result.Destinations[d.ID()] = nil
		result.PlannedRoutes[d.ID()] = []*delivery.Node{}
	}
	return result, nil
}

func (sc *simulationContext) runOnce(policyName string, interval int) error {
	policy, err := sc.policyByName(policyName)
	if err != nil {
		return err
	}
	locations, err := sc.buildLocations()
	if err != nil {
		return err
	}
	drivers, err := sc.buildDrivers()
	if err != nil {
		return err
	}
	orders, err := sc.buildOrders()
	if err != nil {
		return err
	}
	routeMap := routemap.New(sc.routes)

	env := simulation.NewEnvironment(orders, drivers, locations, routeMap, policy,
		shared.NewMockClock(time.Unix(0, 0)), simulation.Options{
			StartTime:       0,
			IntervalSeconds: int64(interval),
			MaxRuntime:      time.Minute,
		})
	sc.runErr = env.Run(context.Background())
	sc.log = env.History()
	sc.score = history.NewScorer(routeMap, 10).Evaluate(sc.log, drivers.Len())
	sc.lastPolicy = policyName
	sc.lastInterval = interval
	return nil
}

func (sc *simulationContext) iRunTheSimulation(policyName string, interval int) error {
	return sc.runOnce(policyName, interval)
}

func (sc *simulationContext) iRunWithStandbyDispatcher(interval int) error {
	return sc.runOnce("standby", interval)
}

func (sc *simulationContext) iRerunWithSameInputs() error {
	previous := sc.score
	if err := sc.runOnce(sc.lastPolicy, sc.lastInterval); err != nil {
		return err
	}
	rerun := sc.score
	sc.rerunScore = &rerun
	sc.score = previous
	return nil
}

func (sc *simulationContext) theRunSucceeds() error {
	if sc.runErr != nil {
		return fmt.Errorf("expected a clean run, got: %v", sc.runErr)
	}
	return nil
}

func (sc *simulationContext) theRunFailsOverdueIgnored() error {
	if sc.runErr == nil {
		return errors.New("expected the run to abort, but it succeeded")
	}
	var overdue *shared.OverdueIgnoredError
	if !errors.As(sc.runErr, &overdue) {
		return fmt.Errorf("expected an overdue-ignored abort, got: %v", sc.runErr)
	}
	return nil
}

func (sc *simulationContext) orderCompletedAt(orderID string, at int) error {
	if sc.log == nil {
		return errors.New("no run recorded yet")
	}
	for _, ev := range sc.log.OrderStatuses(orderID) {
		if ev.State == delivery.StateCompleted {
			if ev.UpdateTime != int64(at) {
				return fmt.Errorf("order %s completed at %d, expected %d", orderID, ev.UpdateTime, at)
			}
			return nil
		}
	}
	return fmt.Errorf("order %s was never completed", orderID)
}

func (sc *simulationContext) totalDistanceIs(distance float64) error {
	if math.Abs(sc.score.TotalDistance-distance) > 1e-6 {
		return fmt.Errorf("total distance is %.6f km, expected %.6f km", sc.score.TotalDistance, distance)
	}
	return nil
}

func (sc *simulationContext) totalLatenessIs(lateness int) error {
	if sc.score.TotalLateness != int64(lateness) {
		return fmt.Errorf("total lateness is %d seconds, expected %d", sc.score.TotalLateness, lateness)
	}
	return nil
}

func (sc *simulationContext) bothRunsSameScore() error {
	if sc.rerunScore == nil {
		return errors.New("no rerun recorded yet")
	}
	if sc.score.Value != sc.rerunScore.Value ||
		sc.score.TotalDistance != sc.rerunScore.TotalDistance ||
		sc.score.TotalLateness != sc.rerunScore.TotalLateness {
		return fmt.Errorf("scores differ: %+v vs %+v", sc.score, *sc.rerunScore)
	}
	return nil
}

// sharedWorld carries the world-building steps. The dispatch scenario borrows
// it to build snapshots from the same Given steps.
var sharedWorld = &simulationContext{}

// InitializeSimulationScenario registers the world-building and end-to-end
// simulation steps.
func InitializeSimulationScenario(ctx *godog.ScenarioContext) {
	sc := sharedWorld

	ctx.Before(func(c context.Context, _ *godog.Scenario) (context.Context, error) {
		sc.reset()
		return c, nil
	})

	ctx.Step(`^a restaurant "([^"]*)" at \((-?[0-9.]+), (-?[0-9.]+)\)$`, sc.aRestaurantAt)
	ctx.Step(`^a customer "([^"]*)" at \((-?[0-9.]+), (-?[0-9.]+)\)$`, sc.aCustomerAt)
	ctx.Step(`^a route from "([^"]*)" to "([^"]*)" of ([0-9.]+) km taking (\d+) seconds$`, sc.aRoute)
	ctx.Step(`^a driver "([^"]*)" with capacity (\d+) parked at "([^"]*)"$`, sc.aDriverParkedAt)
	ctx.Step(`^an order "([^"]*)" of demand (\d+) from "([^"]*)" to "([^"]*)" created at (\d+) due at (\d+)$`, sc.anOrder)

	ctx.Step(`^I run the simulation with the (greedy|nearest) policy every (\d+) seconds$`, sc.iRunTheSimulation)
	ctx.Step(`^I run the simulation with a standby dispatcher every (\d+) seconds$`, sc.iRunWithStandbyDispatcher)
	ctx.Step(`^I rerun the simulation with the same inputs$`, sc.iRerunWithSameInputs)

	ctx.Step(`^the run succeeds$`, sc.theRunSucceeds)
	ctx.Step(`^the run fails because an overdue order was ignored$`, sc.theRunFailsOverdueIgnored)
	ctx.Step(`^order "([^"]*)" is completed at time (\d+)$`, sc.orderCompletedAt)
	ctx.Step(`^the total travelled distance is ([0-9.]+) km$`, sc.totalDistanceIs)
	ctx.Step(`^the total lateness is (\d+) seconds$`, sc.totalLatenessIs)
	ctx.Step(`^both runs produce the same score$`, sc.bothRunsSameScore)
}
