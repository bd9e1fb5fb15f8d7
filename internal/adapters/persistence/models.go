// Package persistence stores simulation runs and their history logs through
// GORM so past scores can be inspected without re-running an instance.
package persistence

import "time"

// RunModel is one simulated instance run and its final score breakdown.
type RunModel struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)"`
	Instance      string    `gorm:"index;not null"`
	Policy        string    `gorm:"not null"`
	RandomSeed    int64     `gorm:"not null"`
	TotalDistance float64   `gorm:"not null"`
	TotalLateness int64     `gorm:"not null"`
	DriverCount   int       `gorm:"not null"`
	Score         float64   `gorm:"not null"`
	Failed        bool      `gorm:"not null"`
	FailureReason string    `gorm:"type:text"`
	StartedAt     time.Time `gorm:"not null"`
	FinishedAt    time.Time `gorm:"not null"`
	CreatedAt     time.Time
}

func (RunModel) TableName() string {
	return "runs"
}

// DriverPositionEventModel is one visited-location event of a run's history.
type DriverPositionEventModel struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	RunID      string `gorm:"index;type:varchar(36);not null"`
	DriverID   string `gorm:"index;not null"`
	LocationID string `gorm:"not null"`
	UpdateTime int64  `gorm:"not null"`
}

func (DriverPositionEventModel) TableName() string {
	return "driver_position_events"
}

// OrderStatusEventModel is one order state transition of a run's history.
type OrderStatusEventModel struct {
	ID                      uint   `gorm:"primaryKey;autoIncrement"`
	RunID                   string `gorm:"index;type:varchar(36);not null"`
	OrderID                 string `gorm:"index;not null"`
	State                   int    `gorm:"not null"`
	UpdateTime              int64  `gorm:"not null"`
	CommittedCompletionTime int64  `gorm:"not null"`
}

func (OrderStatusEventModel) TableName() string {
	return "order_status_events"
}
