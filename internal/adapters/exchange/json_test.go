package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain/delivery"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/dispatch"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/routemap"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/shared"
)

func exchangeStatics(t *testing.T) (*delivery.LocationTable, *routemap.Map) {
	t.Helper()
	locations := delivery.NewLocationTable()
	r1, err := delivery.NewRestaurant("R1", 0, 0, 3000, 5000, 300)
	require.NoError(t, err)
	c1, err := delivery.NewCustomer("C1", 0, 0.01)
	require.NoError(t, err)
	locations.Add(r1)
	locations.Add(c1)
	m := routemap.New([]routemap.RouteRecord{
		{StartLocationID: "R1", EndLocationID: "C1", Distance: 1.0, TimeSeconds: 60},
	})
	return locations, m
}

func exchangeSnapshot(t *testing.T) *dispatch.Snapshot {
	t.Helper()
	locations, routeMap := exchangeStatics(t)

	unallocated := delivery.NewOrderTable()
	o1, err := delivery.NewOrder("o1", 2, 100, 3600, 30, 30, "R1", "C1")
	require.NoError(t, err)
	o1.AdvanceTo(delivery.StateGenerated)
	unallocated.Add(o1)

	ongoing := delivery.NewOrderTable()
	o2, err := delivery.ReconstructOrder("o2", 1, 50, 3600, 30, 30, "R1", "C1", delivery.StateOngoing)
	require.NoError(t, err)
	ongoing.Add(o2)

	drivers := delivery.NewDriverTable()
	parked, err := delivery.NewDriver("d1", 5, "gps-d1", 54000)
	require.NoError(t, err)
	parked.SetPosition(delivery.AtStop("R1", 200, 150, 260))
	drivers.Add(parked)

	moving, err := delivery.NewDriver("d2", 5, "gps-d2", 54000)
	require.NoError(t, err)
	moving.SetPosition(delivery.InTransitAt(200))
	moving.SetCarryingOrders([]string{"o2"})
	dest := delivery.NewNode("C1", 0, 0.01, nil, []string{"o2"})
	dest.ArriveTime = 260
	dest.LeaveTime = 290
	moving.SetDestination(dest)
	drivers.Add(moving)

	return &dispatch.Snapshot{
		UnallocatedOrders: unallocated,
		OngoingOrders:     ongoing,
		Drivers:           drivers,
		Locations:         locations,
		RouteMap:          routeMap,
	}
}

func TestInputsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	snapshot := exchangeSnapshot(t)
	require.NoError(t, WriteInputs(dir, snapshot))

	locations, routeMap := exchangeStatics(t)
	loaded, err := ReadInputs(dir, locations, routeMap)
	require.NoError(t, err)

	require.Equal(t, 1, loaded.UnallocatedOrders.Len())
	o1 := loaded.UnallocatedOrders.Get("o1")
	assert.Equal(t, delivery.StateGenerated, o1.State())
	assert.Equal(t, 2, o1.Demand())
	assert.Equal(t, int64(100), o1.CreationTime())

	require.Equal(t, 1, loaded.OngoingOrders.Len())
	assert.Equal(t, delivery.StateOngoing, loaded.OngoingOrders.Get("o2").State())

	require.Equal(t, 2, loaded.Drivers.Len())
	parked := loaded.Drivers.Get("d1")
	assert.False(t, parked.Position().InTransit())
	assert.Equal(t, "R1", parked.Position().LocationID())
	assert.Equal(t, int64(150), parked.Position().ArriveTime())
	assert.Equal(t, int64(260), parked.Position().LeaveTime())
	assert.Nil(t, parked.Destination())

	moving := loaded.Drivers.Get("d2")
	assert.True(t, moving.Position().InTransit())
	assert.Equal(t, int64(200), moving.Position().UpdateTime())
	assert.Equal(t, []string{"o2"}, moving.CarryingOrderIDs())
	require.NotNil(t, moving.Destination())
	assert.Equal(t, "C1", moving.Destination().LocationID)
	assert.Equal(t, int64(260), moving.Destination().ArriveTime)
	assert.Equal(t, []string{"o2"}, moving.Destination().DeliveryOrderIDs)
}

func TestOutputsRoundTrip(t *testing.T) {
	dir := t.TempDir()

	result := dispatch.NewResult()
	dest := delivery.NewNode("R1", 0, 0, []string{"o1"}, nil)
	dest.ArriveTime = 300
	dest.LeaveTime = 330
	result.Destinations["d1"] = dest
	drop := delivery.NewNode("C1", 0, 0.01, nil, []string{"o1"})
	result.PlannedRoutes["d1"] = []*delivery.Node{drop}
	result.Destinations["d2"] = nil
	result.PlannedRoutes["d2"] = []*delivery.Node{}

	require.NoError(t, WriteOutputs(dir, result))
	loaded, err := ReadOutputs(dir)
	require.NoError(t, err)

	require.NotNil(t, loaded.Destinations["d1"])
	assert.Equal(t, "R1", loaded.Destinations["d1"].LocationID)
	assert.Equal(t, int64(300), loaded.Destinations["d1"].ArriveTime)
	assert.Equal(t, []string{"o1"}, loaded.Destinations["d1"].PickupOrderIDs)
	require.Len(t, loaded.PlannedRoutes["d1"], 1)
	assert.Equal(t, "C1", loaded.PlannedRoutes["d1"][0].LocationID)

	assert.Nil(t, loaded.Destinations["d2"])
	assert.Empty(t, loaded.PlannedRoutes["d2"])
}

func TestReadInputsRejectsUnknownOrderLocation(t *testing.T) {
	dir := t.TempDir()
	snapshot := exchangeSnapshot(t)
	stray, err := delivery.ReconstructOrder("o3", 1, 100, 3600, 30, 30, "R1", "NOWHERE", delivery.StateOngoing)
	require.NoError(t, err)
	snapshot.OngoingOrders.Add(stray)
	require.NoError(t, WriteInputs(dir, snapshot))

	locations, routeMap := exchangeStatics(t)
	_, err = ReadInputs(dir, locations, routeMap)
	require.Error(t, err)
	var unknown *shared.UnknownLocationError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "NOWHERE", unknown.LocationID)
}

func TestReadInputsMissingFile(t *testing.T) {
	locations, routeMap := exchangeStatics(t)
	_, err := ReadInputs(t.TempDir(), locations, routeMap)
	assert.Error(t, err)
}
