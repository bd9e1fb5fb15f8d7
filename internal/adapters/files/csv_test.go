package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain/delivery"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/shared"
)

func writeBenchmark(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	write := func(name, content string) {
		t.Helper()
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	write("customers.csv", "customer_id,latitude,longitude\nC1,30.5,114.1\nC2,30.6,114.2\n")
	write("restaurants.csv", "restaurant_id,latitude,longitude,dispatch_radius,customer_radius,wait_time\nR1,30.4,114.0,3000,5000,300\n")
	write("routes.csv", "route_code,start_location_id,end_location_id,distance,time\nrc1,R1,C1,2.5,360\nrc2,C1,C2,1.5,180\n")
	write("i1/driver.csv", "car_num,capacity,operation_time,gps_id\nd1,8,54000.0,gps-1\nd2,6,54000.0,gps-2\n")
	write("i1/orders.csv", "order_id,pickup_id,delivery_id,demand,creation_time,committed_completion_time,load_time,unload_time\n"+
		"o1,R1,C1,2,08:30:00,09:15:00,240.0,300.0\n"+
		"o2,R1,C2,1,23:50:00,00:20:00,240.0,300.0\n"+
		"o3,R1,C1,1,05:30:00,06:30:00,240.0,300.0\n")
	return dir
}

func TestLoadLocations(t *testing.T) {
	loader := NewLoader(writeBenchmark(t))
	table, err := loader.LoadLocations()
	require.NoError(t, err)

	c1 := table.Get("C1")
	require.NotNil(t, c1)
	assert.InDelta(t, 30.5, c1.Lat(), 1e-9)
	assert.InDelta(t, 114.1, c1.Lng(), 1e-9)

	r1 := table.Get("R1")
	require.NotNil(t, r1)
	require.Len(t, table.Restaurants(), 1)
}

func TestLoadRouteMap(t *testing.T) {
	loader := NewLoader(writeBenchmark(t))
	m, err := loader.LoadRouteMap()
	require.NoError(t, err)

	d, err := m.Distance("R1", "C1")
	require.NoError(t, err)
	assert.InDelta(t, 2.5, d, 1e-9)
	tt, err := m.Time("C2", "C1")
	require.NoError(t, err)
	assert.Equal(t, int64(180), tt)
}

func TestLoadDrivers(t *testing.T) {
	loader := NewLoader(writeBenchmark(t))
	table, err := loader.LoadDrivers("i1")
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	d1 := table.Get("d1")
	assert.Equal(t, 8, d1.Capacity())
	assert.Equal(t, "gps-1", d1.GPSID())
	assert.Equal(t, int64(54000), d1.OperationTime())
}

func TestLoadOrdersClockArithmetic(t *testing.T) {
	loader := NewLoader(writeBenchmark(t))
	locations, err := loader.LoadLocations()
	require.NoError(t, err)
	base := BaseTime(time.Date(2026, 8, 25, 14, 3, 7, 0, time.UTC))
	assert.Equal(t, 6, base.Hour())

	table, err := loader.LoadOrders("i1", base, locations)
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	// 08:30 is 2h30m past the 06:00 anchor.
	o1 := table.Get("o1")
	assert.Equal(t, base.Unix()+2*3600+30*60, o1.CreationTime())
	assert.Equal(t, base.Unix()+3*3600+15*60, o1.CommittedCompletionTime())
	assert.Equal(t, 2, o1.Demand())
	assert.Equal(t, int64(240), o1.LoadTime())
	assert.Equal(t, int64(300), o1.UnloadTime())
	assert.Equal(t, delivery.StateInitialization, o1.State())

	// A deadline past midnight lands on the next day, after its creation.
	o2 := table.Get("o2")
	assert.Greater(t, o2.CommittedCompletionTime(), o2.CreationTime())
	assert.Equal(t, base.Unix()+17*3600+50*60, o2.CreationTime())
	assert.Equal(t, base.Unix()+18*3600+20*60, o2.CommittedCompletionTime())

	// Clock values before the anchor hour belong to the next day too.
	o3 := table.Get("o3")
	assert.Equal(t, base.Unix()+ADayTimeSeconds-30*60, o3.CreationTime())
	assert.Equal(t, base.Unix()+ADayTimeSeconds+30*60, o3.CommittedCompletionTime())
}

func TestLoadOrdersRejectsMalformedClock(t *testing.T) {
	dir := writeBenchmark(t)
	bad := "order_id,pickup_id,delivery_id,demand,creation_time,committed_completion_time,load_time,unload_time\n" +
		"o1,R1,C1,1,0830,09:15:00,240,300\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "i1", "orders.csv"), []byte(bad), 0o644))

	loader := NewLoader(dir)
	locations, err := loader.LoadLocations()
	require.NoError(t, err)
	_, err = loader.LoadOrders("i1", BaseTime(time.Now()), locations)
	assert.Error(t, err)
}

func TestLoadOrdersRejectsUnknownLocationReference(t *testing.T) {
	dir := writeBenchmark(t)
	bad := "order_id,pickup_id,delivery_id,demand,creation_time,committed_completion_time,load_time,unload_time\n" +
		"o1,R1,NOWHERE,1,08:30:00,09:15:00,240,300\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "i1", "orders.csv"), []byte(bad), 0o644))

	loader := NewLoader(dir)
	locations, err := loader.LoadLocations()
	require.NoError(t, err)
	_, err = loader.LoadOrders("i1", BaseTime(time.Now()), locations)
	require.Error(t, err)
	var unknown *shared.UnknownLocationError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "NOWHERE", unknown.LocationID)
}

func TestMissingFileIsAnError(t *testing.T) {
	_, err := NewLoader(t.TempDir()).LoadLocations()
	assert.Error(t, err)
}
