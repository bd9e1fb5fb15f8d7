// Package files loads the static CSV inputs of a benchmark: the location
// tables, the route table, and the per-instance driver and order files.
package files

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain/delivery"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/routemap"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/shared"
)

// ADayTimeSeconds rolls a deadline that reads earlier than its order's
// creation time forward to the next day.
const ADayTimeSeconds = 86400

// BaseHour is the clock hour the simulated day starts at. All HH:MM:SS
// values in the order files are offsets within that day.
const BaseHour = 6

// Loader reads the benchmark layout: customers.csv, restaurants.csv and
// routes.csv at the root, plus driver.csv and orders.csv per instance
// directory.
type Loader struct {
	benchmarkDir string
}

func NewLoader(benchmarkDir string) *Loader {
	return &Loader{benchmarkDir: benchmarkDir}
}

// BaseTime is the epoch anchor of a simulated day: today's date at BaseHour
// local time. Every instance of a batch shares the anchor passed in.
func BaseTime(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), BaseHour, 0, 0, 0, day.Location())
}

// LoadLocations reads customers.csv and restaurants.csv into one table.
func (l *Loader) LoadLocations() (*delivery.LocationTable, error) {
	table := delivery.NewLocationTable()

	customers, err := readTable(filepath.Join(l.benchmarkDir, "customers.csv"))
	if err != nil {
		return nil, err
	}
	for _, row := range customers {
		lat, lng, err := row.coordinates("latitude", "longitude")
		if err != nil {
			return nil, err
		}
		customer, err := delivery.NewCustomer(row.get("customer_id"), lat, lng)
		if err != nil {
			return nil, err
		}
		table.Add(customer)
	}

	restaurants, err := readTable(filepath.Join(l.benchmarkDir, "restaurants.csv"))
	if err != nil {
		return nil, err
	}
	for _, row := range restaurants {
		lat, lng, err := row.coordinates("latitude", "longitude")
		if err != nil {
			return nil, err
		}
		dispatchRadius, err := row.getInt("dispatch_radius")
		if err != nil {
			return nil, err
		}
		customerRadius, err := row.getInt("customer_radius")
		if err != nil {
			return nil, err
		}
		waitTime, err := row.getInt64("wait_time")
		if err != nil {
			return nil, err
		}
		restaurant, err := delivery.NewRestaurant(row.get("restaurant_id"), lat, lng,
			dispatchRadius, customerRadius, waitTime)
		if err != nil {
			return nil, err
		}
		table.Add(restaurant)
	}
	return table, nil
}

// LoadRouteMap reads routes.csv into the immutable travel map.
func (l *Loader) LoadRouteMap() (*routemap.Map, error) {
	rows, err := readTable(filepath.Join(l.benchmarkDir, "routes.csv"))
	if err != nil {
		return nil, err
	}
	records := make([]routemap.RouteRecord, 0, len(rows))
	for _, row := range rows {
		distance, err := row.getFloat("distance")
		if err != nil {
			return nil, err
		}
		travelTime, err := row.getInt64("time")
		if err != nil {
			return nil, err
		}
		records = append(records, routemap.RouteRecord{
			Code:            row.get("route_code"),
			StartLocationID: row.get("start_location_id"),
			EndLocationID:   row.get("end_location_id"),
			Distance:        distance,
			TimeSeconds:     travelTime,
		})
	}
	return routemap.New(records), nil
}

// LoadDrivers reads <instance>/driver.csv. Initial positions are assigned by
// the batch runner, not the file.
func (l *Loader) LoadDrivers(instance string) (*delivery.DriverTable, error) {
	rows, err := readTable(filepath.Join(l.benchmarkDir, instance, "driver.csv"))
	if err != nil {
		return nil, err
	}
	table := delivery.NewDriverTable()
	for _, row := range rows {
		capacity, err := row.getInt("capacity")
		if err != nil {
			return nil, err
		}
		operationTime, err := row.getInt64("operation_time")
		if err != nil {
			return nil, err
		}
		driver, err := delivery.NewDriver(row.get("car_num"), capacity, row.get("gps_id"), operationTime)
		if err != nil {
			return nil, err
		}
		table.Add(driver)
	}
	return table, nil
}

// LoadOrders reads <instance>/orders.csv. Clock-of-day values are combined
// with the base time; a deadline earlier than its creation time rolls over
// to the next day. Pickup and delivery ids must resolve against the location
// tables; an unknown reference fails the load.
func (l *Loader) LoadOrders(instance string, base time.Time, locations *delivery.LocationTable) (*delivery.OrderTable, error) {
	rows, err := readTable(filepath.Join(l.benchmarkDir, instance, "orders.csv"))
	if err != nil {
		return nil, err
	}
	table := delivery.NewOrderTable()
	for _, row := range rows {
		demand, err := row.getInt("demand")
		if err != nil {
			return nil, err
		}
		loadTime, err := row.getInt64("load_time")
		if err != nil {
			return nil, err
		}
		unloadTime, err := row.getInt64("unload_time")
		if err != nil {
			return nil, err
		}
		creationTime, err := clockOfDayToEpoch(base, row.get("creation_time"))
		if err != nil {
			return nil, err
		}
		deadline, err := clockOfDayToEpoch(base, row.get("committed_completion_time"))
		if err != nil {
			return nil, err
		}
		if deadline < creationTime {
			deadline += ADayTimeSeconds
		}
		pickupID := row.get("pickup_id")
		deliveryID := row.get("delivery_id")
		if locations.Get(pickupID) == nil {
			return nil, shared.NewUnknownLocationError("order "+row.get("order_id")+" pickup_id", pickupID)
		}
		if locations.Get(deliveryID) == nil {
			return nil, shared.NewUnknownLocationError("order "+row.get("order_id")+" delivery_id", deliveryID)
		}
		order, err := delivery.NewOrder(row.get("order_id"), demand, creationTime, deadline,
			loadTime, unloadTime, pickupID, deliveryID)
		if err != nil {
			return nil, err
		}
		table.Add(order)
	}
	return table, nil
}

// clockOfDayToEpoch turns an HH:MM:SS value into epoch seconds on the base
// date. Times before the base hour belong to the next day.
func clockOfDayToEpoch(base time.Time, value string) (int64, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("malformed clock value %q", value)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("malformed clock value %q: %w", value, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("malformed clock value %q: %w", value, err)
	}
	s, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, fmt.Errorf("malformed clock value %q: %w", value, err)
	}
	offset := int64(h-BaseHour)*3600 + int64(m)*60 + int64(s)
	if offset < 0 {
		offset += ADayTimeSeconds
	}
	return base.Unix() + offset, nil
}

// row is one CSV record indexed by header name.
type row struct {
	file    string
	columns map[string]int
	fields  []string
}

func (r row) get(column string) string {
	idx, ok := r.columns[column]
	if !ok || idx >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[idx])
}

func (r row) getInt(column string) (int, error) {
	v, err := strconv.Atoi(r.get(column))
	if err != nil {
		return 0, fmt.Errorf("%s: column %s: %w", r.file, column, err)
	}
	return v, nil
}

func (r row) getInt64(column string) (int64, error) {
	v, err := strconv.ParseFloat(r.get(column), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: column %s: %w", r.file, column, err)
	}
	return int64(v), nil
}

func (r row) getFloat(column string) (float64, error) {
	v, err := strconv.ParseFloat(r.get(column), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: column %s: %w", r.file, column, err)
	}
	return v, nil
}

func (r row) coordinates(latColumn, lngColumn string) (float64, float64, error) {
	lat, err := r.getFloat(latColumn)
	if err != nil {
		return 0, 0, err
	}
	lng, err := r.getFloat(lngColumn)
	if err != nil {
		return 0, 0, err
	}
	return lat, lng, nil
}

func readTable(path string) ([]row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s: missing header row", path)
	}

	columns := make(map[string]int, len(records[0]))
	for idx, name := range records[0] {
		columns[strings.TrimSpace(name)] = idx
	}
	rows := make([]row, 0, len(records)-1)
	for _, fields := range records[1:] {
		rows = append(rows, row{file: filepath.Base(path), columns: columns, fields: fields})
	}
	return rows, nil
}
