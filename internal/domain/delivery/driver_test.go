package delivery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrders(t *testing.T) *OrderTable {
	t.Helper()
	table := NewOrderTable()
	for _, spec := range []struct {
		id     string
		demand int
	}{{"o1", 1}, {"o2", 2}, {"o3", 3}} {
		o, err := NewOrder(spec.id, spec.demand, 0, 3600, 30, 30, "R1", "C1")
		require.NoError(t, err)
		table.Add(o)
	}
	return table
}

func TestNewDriverValidation(t *testing.T) {
	_, err := NewDriver("", 5, "gps-1", 54000)
	assert.Error(t, err)

	_, err = NewDriver("d1", 0, "gps-1", 54000)
	assert.Error(t, err)

	d, err := NewDriver("d1", 5, "gps-1", 54000)
	require.NoError(t, err)
	assert.Equal(t, 5, d.Capacity())
}

func TestCarryingWeight(t *testing.T) {
	orders := testOrders(t)
	d, err := NewDriver("d1", 5, "gps-1", 54000)
	require.NoError(t, err)

	d.SetCarryingOrders([]string{"o1", "o3"})
	assert.Equal(t, 4, d.CarryingWeight(orders))
}

func TestAnchorLocationID(t *testing.T) {
	d, err := NewDriver("d1", 5, "gps-1", 54000)
	require.NoError(t, err)

	d.SetPosition(AtStop("R1", 0, 0, 0))
	assert.Equal(t, "R1", d.AnchorLocationID())

	d.SetPosition(InTransitAt(100))
	assert.Empty(t, d.AnchorLocationID())

	d.SetDestination(NewNode("C1", 0, 0, nil, nil))
	assert.Equal(t, "C1", d.AnchorLocationID())
}

func TestCloneIsDeep(t *testing.T) {
	d, err := NewDriver("d1", 5, "gps-1", 54000)
	require.NoError(t, err)
	d.SetCarryingOrders([]string{"o1"})
	d.SetDestination(NewNode("R1", 1, 2, []string{"o2"}, nil))
	d.SetPlannedRoute([]*Node{NewNode("C1", 3, 4, nil, []string{"o2"})})

	c := d.Clone()
	c.Destination().PickupOrderIDs[0] = "mutated"
	c.PlannedRoute()[0].LocationID = "mutated"
	c.SetCarryingOrders([]string{"o9"})

	assert.Equal(t, "o2", d.Destination().PickupOrderIDs[0])
	assert.Equal(t, "C1", d.PlannedRoute()[0].LocationID)
	assert.Equal(t, []string{"o1"}, d.CarryingOrderIDs())
}

func TestPositionInTransit(t *testing.T) {
	p := InTransitAt(100)
	assert.True(t, p.InTransit())
	assert.Empty(t, p.LocationID())
	assert.Equal(t, int64(100), p.UpdateTime())

	p = AtStop("R1", 100, 90, 120)
	assert.False(t, p.InTransit())
	assert.Equal(t, int64(90), p.ArriveTime())
	assert.Equal(t, int64(120), p.LeaveTime())
}
