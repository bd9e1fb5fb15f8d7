package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YJFKD/Food-delivery-simulator/internal/adapters/persistence"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/delivery"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/history"
	"github.com/YJFKD/Food-delivery-simulator/test/helpers"
)

func TestHistoryRepositoryRoundTrip(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewHistoryRepository(db)
	ctx := context.Background()

	l := history.NewLog()
	l.AddDriverPosition("d1", 100, "R1")
	l.AddDriverPosition("d1", 200, "C1")
	l.AddDriverPosition("d2", 150, "R2")
	l.AddOrderStatus("o1", delivery.StateGenerated, 50, 3600)
	l.AddOrderStatus("o1", delivery.StateOngoing, 120, 3600)
	l.AddOrderStatus("o1", delivery.StateCompleted, 200, 3600)

	require.NoError(t, repo.Add(ctx, "run-1", l))

	loaded, err := repo.GetByRun(ctx, "run-1")
	require.NoError(t, err)

	positions := loaded.DriverPositions("d1")
	require.Len(t, positions, 2)
	assert.Equal(t, "R1", positions[0].LocationID)
	assert.Equal(t, int64(100), positions[0].UpdateTime)
	assert.Equal(t, "C1", positions[1].LocationID)
	require.Len(t, loaded.DriverPositions("d2"), 1)

	statuses := loaded.OrderStatuses("o1")
	require.Len(t, statuses, 3)
	assert.Equal(t, delivery.StateGenerated, statuses[0].State)
	assert.Equal(t, delivery.StateCompleted, statuses[2].State)
	assert.Equal(t, int64(200), statuses[2].UpdateTime)
	assert.Equal(t, int64(3600), statuses[2].CommittedCompletionTime)
}

func TestHistoryRepositoryIsolatesRuns(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewHistoryRepository(db)
	ctx := context.Background()

	first := history.NewLog()
	first.AddDriverPosition("d1", 100, "R1")
	second := history.NewLog()
	second.AddDriverPosition("d1", 999, "C1")

	require.NoError(t, repo.Add(ctx, "run-1", first))
	require.NoError(t, repo.Add(ctx, "run-2", second))

	loaded, err := repo.GetByRun(ctx, "run-1")
	require.NoError(t, err)
	positions := loaded.DriverPositions("d1")
	require.Len(t, positions, 1)
	assert.Equal(t, "R1", positions[0].LocationID)
}

func TestHistoryRepositoryEmptyLog(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewHistoryRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, "run-1", history.NewLog()))
	loaded, err := repo.GetByRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Empty(t, loaded.DriverIDs())
	assert.Empty(t, loaded.OrderIDs())
}
