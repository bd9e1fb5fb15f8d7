package dispatch

import (
	"context"
	"math"
	"math/rand"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain/delivery"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/shared"
)

const (
	// DefaultRouteCap is the soft admission-control cap on planned-route
	// length for new assignments.
	DefaultRouteCap = 8
	// DefaultTightRouteCap is the stricter cap applied to the
	// nearest-driver candidate before falling back to the shortest-route
	// candidate.
	DefaultTightRouteCap = 6
)

// GreedyInsertionPolicy is the default dispatch policy: carried orders are
// routed by an open TSP from the driver's anchor, pre-matched pickups on the
// committed destination are honoured, and each unallocated order is inserted
// into the route of a candidate driver at the positions that add the least
// haversine path length.
//
// The candidate choice between the nearest driver and the driver with the
// shortest route is drawn from a PRNG seeded once per dispatch, so a fixed
// snapshot and seed always produce the same result.
type GreedyInsertionPolicy struct {
	seed          int64
	routeCap      int
	tightRouteCap int
}

func NewGreedyInsertionPolicy(seed int64, routeCap, tightRouteCap int) *GreedyInsertionPolicy {
	if routeCap <= 0 {
		routeCap = DefaultRouteCap
	}
	if tightRouteCap <= 0 {
		tightRouteCap = DefaultTightRouteCap
	}
	return &GreedyInsertionPolicy{seed: seed, routeCap: routeCap, tightRouteCap: tightRouteCap}
}

func (p *GreedyInsertionPolicy) Dispatch(_ context.Context, snapshot *Snapshot) (*Result, error) {
	rng := rand.New(rand.NewSource(p.seed))

	routes := make(map[string][]*delivery.Node)
	preMatched := make(map[string]bool)

	// Phases 1 and 2: deliver what is on board, honour committed pickups.
	for _, driver := range snapshot.Drivers.All() {
		routes[driver.ID()] = p.routeCommittedWork(snapshot, driver, preMatched)
	}

	// Phase 3: assign unallocated orders in input order.
	for _, order := range snapshot.UnallocatedOrders.All() {
		if preMatched[order.ID()] {
			continue
		}
		if err := p.assignOrder(snapshot, rng, routes, order); err != nil {
			return nil, err
		}
	}

	// Phase 4: merge adjacent duplicates and split destination from route.
	return p.finalise(snapshot, routes), nil
}

// routeCommittedWork builds the initial working route for a driver: the
// committed destination first (irrevocable), an open-TSP tour over the
// remaining carried deliveries, then one delivery stop per pre-matched
// pickup on the destination, in pickup-list order.
func (p *GreedyInsertionPolicy) routeCommittedWork(snapshot *Snapshot, driver *delivery.Driver,
	preMatched map[string]bool) []*delivery.Node {

	nodes := make([]*delivery.Node, 0)
	remaining := driver.CarryingOrderIDs()
	anchorID := driver.AnchorLocationID()

	if dest := driver.Destination(); dest != nil {
		destNode := dest.Clone()
		nodes = append(nodes, destNode)
		remaining = subtractIDs(remaining, destNode.DeliveryOrderIDs)
	}

	nodes = append(nodes, p.tourCarriedDeliveries(snapshot, anchorID, remaining)...)

	if dest := driver.Destination(); dest != nil {
		for _, orderID := range dest.PickupOrderIDs {
			order := snapshot.Order(orderID)
			if order == nil {
				continue
			}
			if node := p.newDeliveryNode(snapshot, order); node != nil {
				nodes = append(nodes, node)
			}
			preMatched[orderID] = true
		}
	}
	return nodes
}

// tourCarriedDeliveries solves the open TSP over the distinct delivery
// locations of the carried orders, rooted at the anchor, and emits one node
// per visited location carrying the orders delivered there.
func (p *GreedyInsertionPolicy) tourCarriedDeliveries(snapshot *Snapshot, anchorID string,
	carriedIDs []string) []*delivery.Node {

	if len(carriedIDs) == 0 || anchorID == "" {
		return nil
	}
	anchor := snapshot.Locations.Get(anchorID)
	if anchor == nil {
		return nil
	}

	locationIDs := make([]string, 0, len(carriedIDs))
	seen := map[string]bool{}
	byLocation := make(map[string][]string)
	for _, orderID := range carriedIDs {
		order := snapshot.Order(orderID)
		if order == nil {
			continue
		}
		locID := order.DeliveryLocationID()
		if snapshot.Locations.Get(locID) == nil {
			continue
		}
		if !seen[locID] {
			seen[locID] = true
			locationIDs = append(locationIDs, locID)
		}
		byLocation[locID] = append(byLocation[locID], orderID)
	}
	if len(locationIDs) == 0 {
		return nil
	}

	points := make([]delivery.Location, 0, len(locationIDs)+1)
	points = append(points, anchor)
	for _, locID := range locationIDs {
		points = append(points, snapshot.Locations.Get(locID))
	}
	dist := make([][]float64, len(points))
	for i := range points {
		dist[i] = make([]float64, len(points))
		for j := range points {
			dist[i][j] = shared.HaversineKm(points[i].Lat(), points[i].Lng(), points[j].Lat(), points[j].Lng())
		}
	}

	nodes := make([]*delivery.Node, 0, len(locationIDs))
	for _, idx := range SolveOpenTSP(dist)[1:] {
		locID := locationIDs[idx-1]
		loc := snapshot.Locations.Get(locID)
		nodes = append(nodes, delivery.NewNode(locID, loc.Lat(), loc.Lng(), nil, byLocation[locID]))
	}
	return nodes
}

// assignOrder picks a driver for an unallocated order and inserts its pickup
// and delivery stops. The nearest-anchor candidate is taken with probability
// one half, otherwise the shortest-route candidate; a nearest candidate whose
// route exceeds the tight cap falls back to the shortest-route candidate.
// Candidates whose route cannot absorb the order within capacity are skipped
// in favour of the next feasible driver.
func (p *GreedyInsertionPolicy) assignOrder(snapshot *Snapshot, rng *rand.Rand,
	routes map[string][]*delivery.Node, order *delivery.Order) error {

	driverIDs := snapshot.Drivers.IDs()
	eligible := make([]string, 0, len(driverIDs))
	for _, id := range driverIDs {
		if len(routes[id]) < p.routeCap {
			eligible = append(eligible, id)
		}
	}
	// Admission control is waived rather than dropping the order: a
	// generated order must appear somewhere in every dispatch.
	if len(eligible) == 0 {
		eligible = driverIDs
	}

	nearest := p.nearestAnchorDriver(snapshot, eligible, order)
	shortest := shortestRouteDriver(routes, eligible)

	chosen := nearest
	if rng.Intn(2) != 0 {
		chosen = shortest
	}
	if chosen == nearest && len(routes[nearest]) > p.tightRouteCap {
		chosen = shortest
	}

	candidates := []string{chosen}
	if nearest != chosen {
		candidates = append(candidates, nearest)
	}
	if shortest != chosen && shortest != nearest {
		candidates = append(candidates, shortest)
	}
	for _, id := range eligible {
		if id != chosen && id != nearest && id != shortest {
			candidates = append(candidates, id)
		}
	}
	if len(eligible) != len(driverIDs) {
		for _, id := range driverIDs {
			if !containsID(candidates, id) {
				candidates = append(candidates, id)
			}
		}
	}

	for _, driverID := range candidates {
		if driverID == "" {
			continue
		}
		if inserted, ok := p.insertOrder(snapshot, routes[driverID], snapshot.Drivers.Get(driverID), order); ok {
			routes[driverID] = inserted
			return nil
		}
	}
	return shared.NewInfeasibleDispatchError("", "no driver can absorb order "+order.ID())
}

func (p *GreedyInsertionPolicy) nearestAnchorDriver(snapshot *Snapshot, candidates []string,
	order *delivery.Order) string {

	pickup := snapshot.Locations.Get(order.PickupLocationID())
	if pickup == nil {
		return ""
	}
	best := ""
	bestDist := math.Inf(1)
	for _, driverID := range candidates {
		driver := snapshot.Drivers.Get(driverID)
		anchor := snapshot.Locations.Get(driver.AnchorLocationID())
		if anchor == nil {
			continue
		}
		d := shared.HaversineKm(anchor.Lat(), anchor.Lng(), pickup.Lat(), pickup.Lng())
		if d < bestDist {
			bestDist = d
			best = driverID
		}
	}
	return best
}

func shortestRouteDriver(routes map[string][]*delivery.Node, candidates []string) string {
	best := ""
	bestLen := math.MaxInt32
	for _, driverID := range candidates {
		if len(routes[driverID]) < bestLen {
			bestLen = len(routes[driverID])
			best = driverID
		}
	}
	return best
}

// insertOrder finds the cheapest pickup and delivery insertion positions and
// returns the extended route if the capacity prefix invariant still holds.
// The pickup may not take index 0 of a non-empty route: that slot is the
// committed destination (or the stop the finaliser will commit).
func (p *GreedyInsertionPolicy) insertOrder(snapshot *Snapshot, route []*delivery.Node,
	driver *delivery.Driver, order *delivery.Order) ([]*delivery.Node, bool) {

	pickupLoc := snapshot.Locations.Get(order.PickupLocationID())
	deliveryLoc := snapshot.Locations.Get(order.DeliveryLocationID())
	if pickupLoc == nil || deliveryLoc == nil {
		return nil, false
	}
	anchor := snapshot.Locations.Get(driver.AnchorLocationID())

	pickupNode := delivery.NewNode(pickupLoc.ID(), pickupLoc.Lat(), pickupLoc.Lng(), []string{order.ID()}, nil)
	deliveryNode := delivery.NewNode(deliveryLoc.ID(), deliveryLoc.Lat(), deliveryLoc.Lng(), nil, []string{order.ID()})

	minPickupIdx := 0
	if len(route) > 0 {
		minPickupIdx = 1
	}
	pickupIdx := bestInsertionIndex(route, anchor, pickupNode, minPickupIdx)
	extended := insertNode(route, pickupNode, pickupIdx)
	deliveryIdx := bestInsertionIndex(extended, anchor, deliveryNode, pickupIdx+1)
	extended = insertNode(extended, deliveryNode, deliveryIdx)

	if p.capacityFeasible(snapshot, driver, extended) {
		return extended, true
	}
	return p.cheapestFeasibleInsertion(snapshot, route, driver, anchor, pickupNode, deliveryNode, minPickupIdx)
}

// cheapestFeasibleInsertion scans every (pickup, delivery) position pair for
// the cheapest one that keeps the capacity prefix invariant. Ties go to the
// lowest pickup index, then the lowest delivery index.
func (p *GreedyInsertionPolicy) cheapestFeasibleInsertion(snapshot *Snapshot, route []*delivery.Node,
	driver *delivery.Driver, anchor delivery.Location,
	pickupNode, deliveryNode *delivery.Node, minPickupIdx int) ([]*delivery.Node, bool) {

	var best []*delivery.Node
	bestCost := math.Inf(1)
	for pickupIdx := minPickupIdx; pickupIdx <= len(route); pickupIdx++ {
		withPickup := insertNode(route, pickupNode, pickupIdx)
		pickupCost := insertionCost(route, anchor, pickupNode, pickupIdx)
		for deliveryIdx := pickupIdx + 1; deliveryIdx <= len(withPickup); deliveryIdx++ {
			cost := pickupCost + insertionCost(withPickup, anchor, deliveryNode, deliveryIdx)
			if cost >= bestCost {
				continue
			}
			candidate := insertNode(withPickup, deliveryNode, deliveryIdx)
			if p.capacityFeasible(snapshot, driver, candidate) {
				bestCost = cost
				best = candidate
			}
		}
	}
	return best, best != nil
}

// bestInsertionIndex minimises the additional haversine path length of
// placing node at an index in [minIdx, len(route)]. Ties go to the lowest
// index.
func bestInsertionIndex(route []*delivery.Node, anchor delivery.Location, node *delivery.Node, minIdx int) int {
	if minIdx > len(route) {
		minIdx = len(route)
	}
	bestIdx := minIdx
	bestCost := math.Inf(1)
	for idx := minIdx; idx <= len(route); idx++ {
		cost := insertionCost(route, anchor, node, idx)
		if cost < bestCost {
			bestCost = cost
			bestIdx = idx
		}
	}
	return bestIdx
}

func insertionCost(route []*delivery.Node, anchor delivery.Location, node *delivery.Node, idx int) float64 {
	prevLat, prevLng, ok := pointBefore(route, anchor, idx)
	cost := 0.0
	if ok {
		cost += shared.HaversineKm(prevLat, prevLng, node.Lat, node.Lng)
	}
	if idx < len(route) {
		next := route[idx]
		cost += shared.HaversineKm(node.Lat, node.Lng, next.Lat, next.Lng)
		if ok {
			cost -= shared.HaversineKm(prevLat, prevLng, next.Lat, next.Lng)
		}
	}
	return cost
}

func pointBefore(route []*delivery.Node, anchor delivery.Location, idx int) (float64, float64, bool) {
	if idx > 0 {
		prev := route[idx-1]
		return prev.Lat, prev.Lng, true
	}
	if anchor != nil {
		return anchor.Lat(), anchor.Lng(), true
	}
	return 0, 0, false
}

func (p *GreedyInsertionPolicy) capacityFeasible(snapshot *Snapshot, driver *delivery.Driver,
	route []*delivery.Node) bool {

	load := 0
	for _, id := range driver.CarryingOrderIDs() {
		if o := snapshot.Order(id); o != nil {
			load += o.Demand()
		}
	}
	if load > driver.Capacity() {
		return false
	}
	for _, node := range route {
		for _, id := range node.DeliveryOrderIDs {
			if o := snapshot.Order(id); o != nil {
				load -= o.Demand()
			}
		}
		if load < 0 {
			return false
		}
		for _, id := range node.PickupOrderIDs {
			if o := snapshot.Order(id); o != nil {
				load += o.Demand()
			}
		}
		if load > driver.Capacity() {
			return false
		}
	}
	return true
}

// finalise merges adjacent duplicate nodes and splits each working route
// into (destination, planned_route). A committed destination keeps its
// arrive time; a fresh destination is timed by the next replay.
func (p *GreedyInsertionPolicy) finalise(snapshot *Snapshot, routes map[string][]*delivery.Node) *Result {
	result := NewResult()
	for _, driver := range snapshot.Drivers.All() {
		merged := delivery.CombineAdjacentNodes(routes[driver.ID()])
		if len(merged) == 0 {
			result.Destinations[driver.ID()] = nil
			result.PlannedRoutes[driver.ID()] = []*delivery.Node{}
			continue
		}
		destination := merged[0]
		if committed := driver.Destination(); committed != nil {
			destination.ArriveTime = committed.ArriveTime
			destination.LeaveTime = committed.LeaveTime
		}
		result.Destinations[driver.ID()] = destination
		result.PlannedRoutes[driver.ID()] = merged[1:]
	}
	return result
}

// newDeliveryNode returns nil when the delivery location is not in the
// location table; boundary validation makes that unreachable for well-formed
// inputs.
func (p *GreedyInsertionPolicy) newDeliveryNode(snapshot *Snapshot, order *delivery.Order) *delivery.Node {
	loc := snapshot.Locations.Get(order.DeliveryLocationID())
	if loc == nil {
		return nil
	}
	return delivery.NewNode(loc.ID(), loc.Lat(), loc.Lng(), nil, []string{order.ID()})
}

func subtractIDs(ids, remove []string) []string {
	removed := make(map[string]bool, len(remove))
	for _, id := range remove {
		removed[id] = true
	}
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if !removed[id] {
			kept = append(kept, id)
		}
	}
	return kept
}

func insertNode(route []*delivery.Node, node *delivery.Node, idx int) []*delivery.Node {
	extended := make([]*delivery.Node, 0, len(route)+1)
	extended = append(extended, route[:idx]...)
	extended = append(extended, node)
	extended = append(extended, route[idx:]...)
	return extended
}

func containsID(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
