package delivery

import "sort"

// Central owning tables keyed by id. The simulation driver owns the single
// authoritative instances; everything else borrows read-only views. Iteration
// is always in ascending id order so every pass over a table is
// deterministic.

// OrderTable owns orders keyed by order id.
type OrderTable struct {
	orders map[string]*Order
}

func NewOrderTable() *OrderTable {
	return &OrderTable{orders: make(map[string]*Order)}
}

func (t *OrderTable) Add(o *Order) {
	t.orders[o.ID()] = o
}

func (t *OrderTable) Get(id string) *Order {
	return t.orders[id]
}

func (t *OrderTable) Len() int {
	return len(t.orders)
}

// IDs returns all order ids in ascending order.
func (t *OrderTable) IDs() []string {
	ids := make([]string, 0, len(t.orders))
	for id := range t.orders {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// All returns all orders sorted by id.
func (t *OrderTable) All() []*Order {
	all := make([]*Order, 0, len(t.orders))
	for _, id := range t.IDs() {
		all = append(all, t.orders[id])
	}
	return all
}

// DriverTable owns drivers keyed by driver id.
type DriverTable struct {
	drivers map[string]*Driver
}

func NewDriverTable() *DriverTable {
	return &DriverTable{drivers: make(map[string]*Driver)}
}

func (t *DriverTable) Add(d *Driver) {
	t.drivers[d.ID()] = d
}

func (t *DriverTable) Get(id string) *Driver {
	return t.drivers[id]
}

func (t *DriverTable) Len() int {
	return len(t.drivers)
}

// IDs returns all driver ids in ascending order.
func (t *DriverTable) IDs() []string {
	ids := make([]string, 0, len(t.drivers))
	for id := range t.drivers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// All returns all drivers sorted by id.
func (t *DriverTable) All() []*Driver {
	all := make([]*Driver, 0, len(t.drivers))
	for _, id := range t.IDs() {
		all = append(all, t.drivers[id])
	}
	return all
}

// Clone deep-copies the table for read-only snapshots.
func (t *DriverTable) Clone() *DriverTable {
	c := NewDriverTable()
	for _, d := range t.drivers {
		c.Add(d.Clone())
	}
	return c
}

// LocationTable owns restaurants and customers keyed by location id.
type LocationTable struct {
	locations map[string]Location
}

func NewLocationTable() *LocationTable {
	return &LocationTable{locations: make(map[string]Location)}
}

func (t *LocationTable) Add(l Location) {
	t.locations[l.ID()] = l
}

func (t *LocationTable) Get(id string) Location {
	return t.locations[id]
}

func (t *LocationTable) Len() int {
	return len(t.locations)
}

// IDs returns all location ids in ascending order.
func (t *LocationTable) IDs() []string {
	ids := make([]string, 0, len(t.locations))
	for id := range t.locations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Restaurants returns all restaurant locations sorted by id.
func (t *LocationTable) Restaurants() []*Restaurant {
	restaurants := make([]*Restaurant, 0)
	for _, id := range t.IDs() {
		if r, ok := t.locations[id].(*Restaurant); ok {
			restaurants = append(restaurants, r)
		}
	}
	return restaurants
}
