package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain/delivery"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/routemap"
)

// testLocations lays restaurants and customers on a meridian so haversine
// distances grow with the id suffix.
func testLocations(t *testing.T) *delivery.LocationTable {
	t.Helper()
	table := delivery.NewLocationTable()

	r1, err := delivery.NewRestaurant("R1", 0, 0, 3000, 5000, 300)
	require.NoError(t, err)
	r2, err := delivery.NewRestaurant("R2", 0, 0.05, 3000, 5000, 300)
	require.NoError(t, err)
	table.Add(r1)
	table.Add(r2)

	for id, lng := range map[string]float64{"C1": 0.01, "C2": 0.02, "C3": 0.03} {
		c, err := delivery.NewCustomer(id, 0, lng)
		require.NoError(t, err)
		table.Add(c)
	}
	return table
}

func testRouteMap() *routemap.Map {
	records := []routemap.RouteRecord{
		{StartLocationID: "R1", EndLocationID: "C1", Distance: 1.1, TimeSeconds: 60},
		{StartLocationID: "R1", EndLocationID: "C2", Distance: 2.2, TimeSeconds: 120},
		{StartLocationID: "R1", EndLocationID: "C3", Distance: 3.3, TimeSeconds: 180},
		{StartLocationID: "R1", EndLocationID: "R2", Distance: 5.5, TimeSeconds: 300},
		{StartLocationID: "R2", EndLocationID: "C1", Distance: 4.4, TimeSeconds: 240},
		{StartLocationID: "R2", EndLocationID: "C2", Distance: 3.3, TimeSeconds: 180},
		{StartLocationID: "R2", EndLocationID: "C3", Distance: 2.2, TimeSeconds: 120},
		{StartLocationID: "C1", EndLocationID: "C2", Distance: 1.1, TimeSeconds: 60},
		{StartLocationID: "C2", EndLocationID: "C3", Distance: 1.1, TimeSeconds: 60},
		{StartLocationID: "C1", EndLocationID: "C3", Distance: 2.2, TimeSeconds: 120},
	}
	return routemap.New(records)
}

func mustOrder(t *testing.T, id string, demand int, pickup, deliveryLoc string,
	state delivery.DeliveryState) *delivery.Order {
	t.Helper()
	o, err := delivery.ReconstructOrder(id, demand, 0, 3600, 30, 30, pickup, deliveryLoc, state)
	require.NoError(t, err)
	return o
}

func mustDriver(t *testing.T, id string, capacity int, at string) *delivery.Driver {
	t.Helper()
	d, err := delivery.NewDriver(id, capacity, "gps-"+id, 54000)
	require.NoError(t, err)
	if at != "" {
		d.SetPosition(delivery.AtStop(at, 0, 0, 0))
	}
	return d
}

func newTestSnapshot(t *testing.T, unallocated, ongoing []*delivery.Order,
	drivers []*delivery.Driver) *Snapshot {
	t.Helper()
	u := delivery.NewOrderTable()
	for _, o := range unallocated {
		u.Add(o)
	}
	g := delivery.NewOrderTable()
	for _, o := range ongoing {
		g.Add(o)
	}
	d := delivery.NewDriverTable()
	for _, driver := range drivers {
		d.Add(driver)
	}
	return &Snapshot{
		UnallocatedOrders: u,
		OngoingOrders:     g,
		Drivers:           d,
		Locations:         testLocations(t),
		RouteMap:          testRouteMap(),
	}
}

// allOrders merges both order tables into one, the shape the checker works
// against.
func allOrders(snapshot *Snapshot) *delivery.OrderTable {
	merged := delivery.NewOrderTable()
	for _, o := range snapshot.UnallocatedOrders.All() {
		merged.Add(o)
	}
	for _, o := range snapshot.OngoingOrders.All() {
		merged.Add(o)
	}
	return merged
}
