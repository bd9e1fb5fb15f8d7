package simulation

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain/delivery"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/dispatch"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/history"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/routemap"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/shared"
)

// Environment owns the authoritative order, driver and location tables for
// one instance and runs the tick loop: replay, record, commit observations,
// snapshot, dispatch, check, commit routes, advance.
type Environment struct {
	interval   int64
	maxRuntime time.Duration

	orders    *delivery.OrderTable
	drivers   *delivery.DriverTable
	locations *delivery.LocationTable
	routeMap  *routemap.Map

	dispatcher dispatch.Dispatcher
	checker    *dispatch.Checker
	replayer   *Replayer
	snapshots  *SnapshotBuilder
	log        *history.Log
	clock      shared.Clock

	preTime int64
}

// Options fix the virtual-time behaviour of a run.
type Options struct {
	StartTime       int64
	IntervalSeconds int64
	MaxRuntime      time.Duration
}

func NewEnvironment(orders *delivery.OrderTable, drivers *delivery.DriverTable,
	locations *delivery.LocationTable, routeMap *routemap.Map,
	dispatcher dispatch.Dispatcher, clock shared.Clock, opts Options) *Environment {

	env := &Environment{
		interval:   opts.IntervalSeconds,
		maxRuntime: opts.MaxRuntime,
		orders:     orders,
		drivers:    drivers,
		locations:  locations,
		routeMap:   routeMap,
		dispatcher: dispatcher,
		checker:    dispatch.NewChecker(orders),
		replayer:   NewReplayer(routeMap, orders),
		snapshots:  NewSnapshotBuilder(orders, locations, routeMap),
		log:        history.NewLog(),
		clock:      clock,
		preTime:    opts.StartTime,
	}
	env.seedHistory()
	return env
}

// History exposes the append-only event log, read-only after Run returns.
func (e *Environment) History() *history.Log {
	return e.log
}

// seedHistory records where every driver started and the creation of every
// order, so the scorer sees a complete trace even for work finished in the
// first tick.
func (e *Environment) seedHistory() {
	for _, driver := range e.drivers.All() {
		pos := driver.Position()
		e.log.AddDriverPosition(driver.ID(), pos.UpdateTime(), pos.LocationID())
	}
	for _, order := range e.orders.All() {
		e.log.AddOrderStatus(order.ID(), delivery.StateInitialization,
			order.CreationTime(), order.CommittedCompletionTime())
	}
}

// Run executes ticks until every order has been handed to a driver, then
// drains the remaining routes into the history log. The returned error is
// fatal for the instance; the caller scores it as infinite.
func (e *Environment) Run(ctx context.Context) error {
	var usedSeconds int64
	for tick := 0; ; tick++ {
		curTime := e.preTime + (usedSeconds/e.interval+1)*e.interval

		e.replayer.Run(e.drivers, e.preTime)
		e.log.RecordDrivers(e.drivers, curTime)
		e.log.RecordOrders(e.drivers, e.orders, curTime)
		e.commitObservations(curTime)

		snapshot := e.snapshots.Build(e.drivers, curTime)

		result, elapsed, err := e.invokeDispatcher(ctx, snapshot)
		if err != nil {
			return fmt.Errorf("tick %d at %d: %w", tick, curTime, err)
		}
		usedSeconds = int64(elapsed.Seconds())

		if err := e.checker.Check(result, snapshot.Drivers); err != nil {
			return fmt.Errorf("tick %d at %d: %w", tick, curTime, err)
		}
		e.commitRoutes(result)

		if err := e.checkOverdueIgnored(result, curTime); err != nil {
			return fmt.Errorf("tick %d at %d: %w", tick, curTime, err)
		}

		e.preTime = curTime
		if e.allOrdersDispatched() {
			log.Printf("simulation: all orders dispatched at %d after %d ticks, draining", curTime, tick+1)
			break
		}
	}

	e.drain()
	return nil
}

// commitObservations applies replay's point-in-time answers to the
// authoritative state: order lifecycle transitions first, then the driver's
// position, on-board set and next destination. Planned routes are cleared;
// the dispatcher re-emits them every tick.
func (e *Environment) commitObservations(curTime int64) {
	updates := make([]*DriverUpdate, 0, e.drivers.Len())
	for _, driver := range e.drivers.All() {
		updates = append(updates, e.replayer.Observe(driver, curTime))
	}
	for _, update := range updates {
		for _, id := range update.CompletedIDs {
			if o := e.orders.Get(id); o != nil {
				o.AdvanceTo(delivery.StateCompleted)
			}
		}
		for _, id := range update.PickedUpIDs {
			if o := e.orders.Get(id); o != nil {
				o.AdvanceTo(delivery.StateOngoing)
			}
		}
		driver := e.drivers.Get(update.DriverID)
		driver.SetPosition(update.Position)
		driver.SetCarryingOrders(update.CarryingIDs)
		driver.SetDestination(update.Destination)
		driver.SetPlannedRoute(nil)
	}
}

func (e *Environment) invokeDispatcher(ctx context.Context, snapshot *dispatch.Snapshot) (*dispatch.Result, time.Duration, error) {
	dispatchCtx := ctx
	if e.maxRuntime > 0 {
		var cancel context.CancelFunc
		dispatchCtx, cancel = context.WithTimeout(ctx, e.maxRuntime)
		defer cancel()
	}
	started := e.clock.Now()
	result, err := e.dispatcher.Dispatch(dispatchCtx, snapshot)
	elapsed := e.clock.Now().Sub(started)
	if err != nil {
		return nil, elapsed, shared.NewPolicyFailedError(err.Error())
	}
	return result, elapsed, nil
}

func (e *Environment) commitRoutes(result *dispatch.Result) {
	for _, driver := range e.drivers.All() {
		driver.SetDestination(result.Destinations[driver.ID()])
		driver.SetPlannedRoute(result.PlannedRoutes[driver.ID()])
	}
}

// checkOverdueIgnored aborts when a generated order whose deadline has
// passed is absent from every emitted route. A policy may route an overdue
// order late, but may not drop it.
func (e *Environment) checkOverdueIgnored(result *dispatch.Result, curTime int64) error {
	routed := result.OrderIDs()
	for _, order := range e.orders.All() {
		if order.State() != delivery.StateGenerated {
			continue
		}
		if order.CommittedCompletionTime() < curTime && !routed[order.ID()] {
			return shared.NewOverdueIgnoredError(order.ID(), order.CommittedCompletionTime(), curTime)
		}
	}
	return nil
}

func (e *Environment) allOrdersDispatched() bool {
	for _, order := range e.orders.All() {
		if order.State() < delivery.StateOngoing {
			return false
		}
	}
	return true
}

// drain replays every driver through the remainder of its committed route
// and pushes the tail events into the history log.
func (e *Environment) drain() {
	horizon := int64(math.MaxInt64)
	e.replayer.Run(e.drivers, e.preTime)
	e.log.RecordDrivers(e.drivers, horizon)
	e.log.RecordOrders(e.drivers, e.orders, horizon)
	e.commitObservations(horizon)
}
