// Package exchange implements the process boundary between the simulator and
// the dispatch policy: four JSON files rewritten each tick, a success flag on
// stdout, and a modification-time window check on the outputs.
package exchange

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain/delivery"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/dispatch"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/routemap"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/shared"
)

// File names of the per-tick exchange, fixed by the protocol.
const (
	DriverInputFile       = "driver_input_info.json"
	UnallocatedOrdersFile = "unallocated_orders.json"
	OngoingOrdersFile     = "ongoing_orders.json"
	DestinationFile       = "destination.json"
	PlannedRouteFile      = "planned_route.json"
)

// NodeJSON is the wire shape of a route node.
type NodeJSON struct {
	LocationID        string   `json:"location_id"`
	Lat               float64  `json:"lat"`
	Lng               float64  `json:"lng"`
	DeliveryOrderList []string `json:"delivery_order_list"`
	PickupOrderList   []string `json:"pickup_order_list"`
	ArriveTime        int64    `json:"arrive_time"`
	LeaveTime         int64    `json:"leave_time"`
}

// OrderJSON is the wire shape of an order, state carried as its numeric code.
type OrderJSON struct {
	ID                      string `json:"id"`
	Demand                  int    `json:"demand"`
	CreationTime            int64  `json:"creation_time"`
	CommittedCompletionTime int64  `json:"committed_completion_time"`
	LoadTime                int64  `json:"load_time"`
	UnloadTime              int64  `json:"unload_time"`
	PickupLocationID        string `json:"pickup_location_id"`
	DeliveryLocationID      string `json:"delivery_location_id"`
	DeliveryState           int    `json:"delivery_state"`
}

// DriverJSON is the wire shape of a driver snapshot.
type DriverJSON struct {
	ID                          string    `json:"id"`
	OperationTime               int64     `json:"operation_time"`
	Capacity                    int       `json:"capacity"`
	GPSID                       string    `json:"gps_id"`
	UpdateTime                  int64     `json:"update_time"`
	CurrentLocationID           string    `json:"current_location_id"`
	ArriveTimeAtCurrentLocation int64     `json:"arrive_time_at_current_location"`
	LeaveTimeAtCurrentLocation  int64     `json:"leave_time_at_current_location"`
	CarryingOrders              []string  `json:"carrying_orders"`
	Destination                 *NodeJSON `json:"destination"`
}

func nodeToJSON(node *delivery.Node) *NodeJSON {
	if node == nil {
		return nil
	}
	return &NodeJSON{
		LocationID:        node.LocationID,
		Lat:               node.Lat,
		Lng:               node.Lng,
		DeliveryOrderList: emptyIfNil(node.DeliveryOrderIDs),
		PickupOrderList:   emptyIfNil(node.PickupOrderIDs),
		ArriveTime:        node.ArriveTime,
		LeaveTime:         node.LeaveTime,
	}
}

func nodeFromJSON(n *NodeJSON) *delivery.Node {
	if n == nil {
		return nil
	}
	node := delivery.NewNode(n.LocationID, n.Lat, n.Lng, n.PickupOrderList, n.DeliveryOrderList)
	node.ArriveTime = n.ArriveTime
	node.LeaveTime = n.LeaveTime
	return node
}

func orderToJSON(o *delivery.Order) OrderJSON {
	return OrderJSON{
		ID:                      o.ID(),
		Demand:                  o.Demand(),
		CreationTime:            o.CreationTime(),
		CommittedCompletionTime: o.CommittedCompletionTime(),
		LoadTime:                o.LoadTime(),
		UnloadTime:              o.UnloadTime(),
		PickupLocationID:        o.PickupLocationID(),
		DeliveryLocationID:      o.DeliveryLocationID(),
		DeliveryState:           int(o.State()),
	}
}

func orderFromJSON(j OrderJSON) (*delivery.Order, error) {
	return delivery.ReconstructOrder(j.ID, j.Demand, j.CreationTime, j.CommittedCompletionTime,
		j.LoadTime, j.UnloadTime, j.PickupLocationID, j.DeliveryLocationID, delivery.DeliveryState(j.DeliveryState))
}

func driverToJSON(d *delivery.Driver) DriverJSON {
	pos := d.Position()
	return DriverJSON{
		ID:                          d.ID(),
		OperationTime:               d.OperationTime(),
		Capacity:                    d.Capacity(),
		GPSID:                       d.GPSID(),
		UpdateTime:                  pos.UpdateTime(),
		CurrentLocationID:           pos.LocationID(),
		ArriveTimeAtCurrentLocation: pos.ArriveTime(),
		LeaveTimeAtCurrentLocation:  pos.LeaveTime(),
		CarryingOrders:              emptyIfNil(d.CarryingOrderIDs()),
		Destination:                 nodeToJSON(d.Destination()),
	}
}

func driverFromJSON(j DriverJSON) (*delivery.Driver, error) {
	d, err := delivery.NewDriver(j.ID, j.Capacity, j.GPSID, j.OperationTime)
	if err != nil {
		return nil, err
	}
	if j.CurrentLocationID == "" {
		d.SetPosition(delivery.InTransitAt(j.UpdateTime))
	} else {
		d.SetPosition(delivery.AtStop(j.CurrentLocationID, j.UpdateTime,
			j.ArriveTimeAtCurrentLocation, j.LeaveTimeAtCurrentLocation))
	}
	d.SetCarryingOrders(j.CarryingOrders)
	d.SetDestination(nodeFromJSON(j.Destination))
	return d, nil
}

// WriteInputs rewrites the three dispatcher input files in dir.
func WriteInputs(dir string, snapshot *dispatch.Snapshot) error {
	drivers := make([]DriverJSON, 0, snapshot.Drivers.Len())
	for _, d := range snapshot.Drivers.All() {
		drivers = append(drivers, driverToJSON(d))
	}
	if err := writeJSON(filepath.Join(dir, DriverInputFile), drivers); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, UnallocatedOrdersFile), ordersToJSON(snapshot.UnallocatedOrders)); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, OngoingOrdersFile), ordersToJSON(snapshot.OngoingOrders))
}

// ReadInputs reconstructs a snapshot on the algorithm side of the boundary.
// Locations and the travel map come from the shared static inputs, not the
// exchange files; orders referencing a location absent from those inputs are
// rejected before any policy sees them.
func ReadInputs(dir string, locations *delivery.LocationTable, routeMap *routemap.Map) (*dispatch.Snapshot, error) {
	var driverRecords []DriverJSON
	if err := readJSON(filepath.Join(dir, DriverInputFile), &driverRecords); err != nil {
		return nil, err
	}
	drivers := delivery.NewDriverTable()
	for _, record := range driverRecords {
		d, err := driverFromJSON(record)
		if err != nil {
			return nil, err
		}
		drivers.Add(d)
	}
	unallocated, err := readOrders(filepath.Join(dir, UnallocatedOrdersFile))
	if err != nil {
		return nil, err
	}
	ongoing, err := readOrders(filepath.Join(dir, OngoingOrdersFile))
	if err != nil {
		return nil, err
	}
	if err := validateOrderLocations(unallocated, locations); err != nil {
		return nil, err
	}
	if err := validateOrderLocations(ongoing, locations); err != nil {
		return nil, err
	}
	return &dispatch.Snapshot{
		UnallocatedOrders: unallocated,
		OngoingOrders:     ongoing,
		Drivers:           drivers,
		Locations:         locations,
		RouteMap:          routeMap,
	}, nil
}

// WriteOutputs rewrites destination.json and planned_route.json in dir.
func WriteOutputs(dir string, result *dispatch.Result) error {
	destinations := make(map[string]*NodeJSON, len(result.Destinations))
	for driverID, node := range result.Destinations {
		destinations[driverID] = nodeToJSON(node)
	}
	if err := writeJSON(filepath.Join(dir, DestinationFile), destinations); err != nil {
		return err
	}
	routes := make(map[string][]*NodeJSON, len(result.PlannedRoutes))
	for driverID, route := range result.PlannedRoutes {
		nodes := make([]*NodeJSON, 0, len(route))
		for _, node := range route {
			nodes = append(nodes, nodeToJSON(node))
		}
		routes[driverID] = nodes
	}
	return writeJSON(filepath.Join(dir, PlannedRouteFile), routes)
}

// ReadOutputs parses the dispatcher's two output files back into a result.
func ReadOutputs(dir string) (*dispatch.Result, error) {
	destinations := make(map[string]*NodeJSON)
	if err := readJSON(filepath.Join(dir, DestinationFile), &destinations); err != nil {
		return nil, err
	}
	routes := make(map[string][]*NodeJSON)
	if err := readJSON(filepath.Join(dir, PlannedRouteFile), &routes); err != nil {
		return nil, err
	}
	result := dispatch.NewResult()
	for driverID, node := range destinations {
		result.Destinations[driverID] = nodeFromJSON(node)
	}
	for driverID, route := range routes {
		nodes := make([]*delivery.Node, 0, len(route))
		for _, node := range route {
			nodes = append(nodes, nodeFromJSON(node))
		}
		result.PlannedRoutes[driverID] = nodes
	}
	return result, nil
}

func validateOrderLocations(orders *delivery.OrderTable, locations *delivery.LocationTable) error {
	for _, o := range orders.All() {
		if locations.Get(o.PickupLocationID()) == nil {
			return shared.NewUnknownLocationError("order "+o.ID()+" pickup", o.PickupLocationID())
		}
		if locations.Get(o.DeliveryLocationID()) == nil {
			return shared.NewUnknownLocationError("order "+o.ID()+" delivery", o.DeliveryLocationID())
		}
	}
	return nil
}

func ordersToJSON(orders *delivery.OrderTable) []OrderJSON {
	out := make([]OrderJSON, 0, orders.Len())
	for _, o := range orders.All() {
		out = append(out, orderToJSON(o))
	}
	return out
}

func readOrders(path string) (*delivery.OrderTable, error) {
	var records []OrderJSON
	if err := readJSON(path, &records); err != nil {
		return nil, err
	}
	table := delivery.NewOrderTable()
	for _, record := range records {
		o, err := orderFromJSON(record)
		if err != nil {
			return nil, err
		}
		table.Add(o)
	}
	return table, nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

func emptyIfNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
