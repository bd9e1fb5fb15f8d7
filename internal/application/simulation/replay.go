// Package simulation contains the tick loop that advances simulated time,
// replays committed driver routes against the travel map, and feeds frozen
// snapshots to the dispatch policy.
package simulation

import (
	"log"
	"sort"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain/delivery"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/routemap"
	"github.com/YJFKD/Food-delivery-simulator/pkg/utils"
)

// Replayer deterministically re-times every driver's committed destination
// and planned route from the travel map, then answers point-in-time queries
// about positions, destinations and on-board orders.
type Replayer struct {
	routeMap *routemap.Map
	orders   *delivery.OrderTable
}

func NewReplayer(routeMap *routemap.Map, orders *delivery.OrderTable) *Replayer {
	return &Replayer{routeMap: routeMap, orders: orders}
}

// DriverUpdate is the observation of one driver at a query time, produced by
// replay and applied to the authoritative state at commit.
type DriverUpdate struct {
	DriverID     string
	Position     delivery.Position
	Destination  *delivery.Node
	CarryingIDs  []string
	PickedUpIDs  []string
	CompletedIDs []string
}

// Run walks every driver's route and writes arrive/leave times into the
// destination and planned-route nodes in place. The first departure never
// happens before fromTime: a parked driver's leave time is pushed forward to
// it. Drivers are processed in ascending order of their current leave time,
// ties broken by id.
func (r *Replayer) Run(drivers *delivery.DriverTable, fromTime int64) {
	for _, driver := range r.sortByLeaveTime(drivers) {
		r.runDriver(driver, fromTime)
	}
}

func (r *Replayer) sortByLeaveTime(drivers *delivery.DriverTable) []*delivery.Driver {
	all := drivers.All()
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Position().LeaveTime() < all[j].Position().LeaveTime()
	})
	return all
}

func (r *Replayer) runDriver(driver *delivery.Driver, fromTime int64) {
	pos := driver.Position()
	var prevLocationID string
	var prevLeave int64

	if pos.InTransit() {
		// A driver between stops is pinned to its committed arrival: the
		// destination's arrive time was fixed when it was committed.
		dest := driver.Destination()
		if dest == nil {
			return
		}
		if dest.ArriveTime < fromTime {
			log.Printf("replay: driver %s has a committed arrive time %d before the replay start %d",
				driver.ID(), dest.ArriveTime, fromTime)
		}
		dest.LeaveTime = dest.ArriveTime + dest.ServiceTime(r.orders)
		prevLocationID = dest.LocationID
		prevLeave = dest.LeaveTime
	} else {
		leave := utils.Max64(pos.LeaveTime(), fromTime)
		driver.SetPosition(delivery.AtStop(pos.LocationID(), fromTime, pos.ArriveTime(), leave))
		prevLocationID = pos.LocationID()
		prevLeave = leave
		if dest := driver.Destination(); dest != nil {
			r.timeNode(driver.ID(), dest, prevLocationID, prevLeave)
			prevLocationID = dest.LocationID
			prevLeave = dest.LeaveTime
		}
	}

	for _, node := range driver.PlannedRoute() {
		r.timeNode(driver.ID(), node, prevLocationID, prevLeave)
		prevLocationID = node.LocationID
		prevLeave = node.LeaveTime
	}
}

// timeNode stamps a node's arrive and leave times from the previous stop.
// An unknown location pair is logged and traversed instantly.
func (r *Replayer) timeNode(driverID string, node *delivery.Node, prevLocationID string, prevLeave int64) {
	travel, err := r.routeMap.Time(prevLocationID, node.LocationID)
	if err != nil {
		log.Printf("replay: driver %s: %v", driverID, err)
		travel = 0
	}
	node.ArriveTime = prevLeave + travel
	node.LeaveTime = node.ArriveTime + node.ServiceTime(r.orders)
}

// Observe answers what a driver looks like at atTime, assuming Run has
// already stamped the route. Pickups and deliveries of every stop reached by
// atTime are applied to the carried set; the next destination is the first
// stop not yet reached.
func (r *Replayer) Observe(driver *delivery.Driver, atTime int64) *DriverUpdate {
	update := &DriverUpdate{
		DriverID:    driver.ID(),
		CarryingIDs: driver.CarryingOrderIDs(),
	}

	timeline := make([]*delivery.Node, 0, len(driver.PlannedRoute())+1)
	if dest := driver.Destination(); dest != nil {
		timeline = append(timeline, dest)
	}
	timeline = append(timeline, driver.PlannedRoute()...)

	reached := 0
	for _, node := range timeline {
		if node.ArriveTime > atTime {
			break
		}
		reached++
		for _, id := range node.PickupOrderIDs {
			update.CarryingIDs = append(update.CarryingIDs, id)
			update.PickedUpIDs = append(update.PickedUpIDs, id)
		}
		for _, id := range node.DeliveryOrderIDs {
			update.CarryingIDs = removeID(update.CarryingIDs, id)
			update.CompletedIDs = append(update.CompletedIDs, id)
		}
	}

	update.Position = r.observePosition(driver, timeline, reached, atTime)
	if reached < len(timeline) {
		update.Destination = timeline[reached].Clone()
	}
	return update
}

func (r *Replayer) observePosition(driver *delivery.Driver, timeline []*delivery.Node,
	reached int, atTime int64) delivery.Position {

	pos := driver.Position()
	if reached == 0 {
		if !pos.InTransit() && atTime <= pos.LeaveTime() {
			return delivery.AtStop(pos.LocationID(), atTime, pos.ArriveTime(), pos.LeaveTime())
		}
		if !pos.InTransit() && len(timeline) == 0 {
			// Parked with nowhere to go: the driver waits in place.
			return delivery.AtStop(pos.LocationID(), atTime, pos.ArriveTime(), utils.Max64(pos.LeaveTime(), atTime))
		}
		return delivery.InTransitAt(atTime)
	}

	last := timeline[reached-1]
	if reached == len(timeline) {
		// Past the end of the route: parked at the final stop.
		return delivery.AtStop(last.LocationID, atTime, last.ArriveTime, utils.Max64(last.LeaveTime, atTime))
	}
	if atTime <= last.LeaveTime {
		return delivery.AtStop(last.LocationID, atTime, last.ArriveTime, last.LeaveTime)
	}
	return delivery.InTransitAt(atTime)
}

func removeID(ids []string, id string) []string {
	kept := ids[:0]
	for _, existing := range ids {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	return kept
}
