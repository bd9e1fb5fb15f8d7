package delivery

import "fmt"

// Node is one stop on a planned route. It references orders by id; demands
// and service durations are resolved through the OrderTable on demand.
//
// Invariants:
// - every order in PickupOrderIDs has its pickup location at this node
// - every order in DeliveryOrderIDs has its delivery location at this node
// ArriveTime and LeaveTime are filled in by timeline replay.
type Node struct {
	LocationID       string
	Lat              float64
	Lng              float64
	PickupOrderIDs   []string
	DeliveryOrderIDs []string
	ArriveTime       int64
	LeaveTime        int64
}

// NewNode creates a route node at the given location.
func NewNode(locationID string, lat, lng float64, pickupOrderIDs, deliveryOrderIDs []string) *Node {
	return &Node{
		LocationID:       locationID,
		Lat:              lat,
		Lng:              lng,
		PickupOrderIDs:   append([]string(nil), pickupOrderIDs...),
		DeliveryOrderIDs: append([]string(nil), deliveryOrderIDs...),
	}
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	c := NewNode(n.LocationID, n.Lat, n.Lng, n.PickupOrderIDs, n.DeliveryOrderIDs)
	c.ArriveTime = n.ArriveTime
	c.LeaveTime = n.LeaveTime
	return c
}

// ServiceTime is the total load plus unload duration at this stop in seconds.
func (n *Node) ServiceTime(orders *OrderTable) int64 {
	var total int64
	for _, id := range n.PickupOrderIDs {
		if o := orders.Get(id); o != nil {
			total += o.LoadTime()
		}
	}
	for _, id := range n.DeliveryOrderIDs {
		if o := orders.Get(id); o != nil {
			total += o.UnloadTime()
		}
	}
	return total
}

func (n *Node) String() string {
	return fmt.Sprintf("Node(%s, pickup=%v, delivery=%v)", n.LocationID, n.PickupOrderIDs, n.DeliveryOrderIDs)
}

// CombineAdjacentNodes merges adjacent nodes that share a location id by
// concatenating their pickup and delivery order lists. The combination is
// semantics-preserving: visiting the merged node is equivalent to visiting
// the run of duplicates in sequence.
func CombineAdjacentNodes(nodes []*Node) []*Node {
	if len(nodes) <= 1 {
		return nodes
	}
	merged := make([]*Node, 0, len(nodes))
	merged = append(merged, nodes[0].Clone())
	for _, node := range nodes[1:] {
		last := merged[len(merged)-1]
		if node.LocationID == last.LocationID {
			last.PickupOrderIDs = append(last.PickupOrderIDs, node.PickupOrderIDs...)
			last.DeliveryOrderIDs = append(last.DeliveryOrderIDs, node.DeliveryOrderIDs...)
			continue
		}
		merged = append(merged, node.Clone())
	}
	return merged
}
