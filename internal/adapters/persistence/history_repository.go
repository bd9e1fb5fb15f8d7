package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain/delivery"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/history"
)

// HistoryRepositoryGORM persists history logs using GORM
type HistoryRepositoryGORM struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new GORM-based history repository
func NewHistoryRepository(db *gorm.DB) *HistoryRepositoryGORM {
	return &HistoryRepositoryGORM{db: db}
}

// Add persists the full event log of one run in a single transaction.
func (r *HistoryRepositoryGORM) Add(ctx context.Context, runID string, l *history.Log) error {
	positions := make([]DriverPositionEventModel, 0)
	for _, driverID := range l.DriverIDs() {
		for _, ev := range l.DriverPositions(driverID) {
			positions = append(positions, DriverPositionEventModel{
				RunID:      runID,
				DriverID:   ev.DriverID,
				LocationID: ev.LocationID,
				UpdateTime: ev.UpdateTime,
			})
		}
	}
	statuses := make([]OrderStatusEventModel, 0)
	for _, orderID := range l.OrderIDs() {
		for _, ev := range l.OrderStatuses(orderID) {
			statuses = append(statuses, OrderStatusEventModel{
				RunID:                   runID,
				OrderID:                 ev.OrderID,
				State:                   int(ev.State),
				UpdateTime:              ev.UpdateTime,
				CommittedCompletionTime: ev.CommittedCompletionTime,
			})
		}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(positions) > 0 {
			if err := tx.CreateInBatches(positions, 500).Error; err != nil {
				return fmt.Errorf("failed to insert driver position events: %w", err)
			}
		}
		if len(statuses) > 0 {
			if err := tx.CreateInBatches(statuses, 500).Error; err != nil {
				return fmt.Errorf("failed to insert order status events: %w", err)
			}
		}
		return nil
	})
}

// GetByRun reconstructs the event log of a persisted run.
func (r *HistoryRepositoryGORM) GetByRun(ctx context.Context, runID string) (*history.Log, error) {
	var positions []DriverPositionEventModel
	err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("id ASC").
		Find(&positions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get driver position events: %w", err)
	}
	var statuses []OrderStatusEventModel
	err = r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("id ASC").
		Find(&statuses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get order status events: %w", err)
	}

	l := history.NewLog()
	for _, ev := range positions {
		l.AddDriverPosition(ev.DriverID, ev.UpdateTime, ev.LocationID)
	}
	for _, ev := range statuses {
		l.AddOrderStatus(ev.OrderID, delivery.DeliveryState(ev.State), ev.UpdateTime, ev.CommittedCompletionTime)
	}
	return l, nil
}
