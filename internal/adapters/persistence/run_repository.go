package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain/history"
)

// RunRepositoryGORM implements run persistence using GORM
type RunRepositoryGORM struct {
	db *gorm.DB
}

// NewRunRepository creates a new GORM-based run repository
func NewRunRepository(db *gorm.DB) *RunRepositoryGORM {
	return &RunRepositoryGORM{db: db}
}

// RunRecord is the application-level view of one finished instance run.
type RunRecord struct {
	ID            string
	Instance      string
	Policy        string
	RandomSeed    int64
	Score         history.Score
	FailureReason string
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Add persists a finished run.
func (r *RunRepositoryGORM) Add(ctx context.Context, record RunRecord) error {
	model := &RunModel{
		ID:            record.ID,
		Instance:      record.Instance,
		Policy:        record.Policy,
		RandomSeed:    record.RandomSeed,
		TotalDistance: record.Score.TotalDistance,
		TotalLateness: record.Score.TotalLateness,
		DriverCount:   record.Score.DriverCount,
		Score:         record.Score.Value,
		Failed:        record.Score.Failed,
		FailureReason: record.FailureReason,
		StartedAt:     record.StartedAt,
		FinishedAt:    record.FinishedAt,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// List returns the most recent runs, newest first.
func (r *RunRepositoryGORM) List(ctx context.Context, limit int) ([]RunModel, error) {
	var models []RunModel
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return models, nil
}

// GetByInstance returns all runs of one benchmark instance, newest first.
func (r *RunRepositoryGORM) GetByInstance(ctx context.Context, instance string) ([]RunModel, error) {
	var models []RunModel
	err := r.db.WithContext(ctx).
		Where("instance = ?", instance).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get runs for instance %s: %w", instance, err)
	}
	return models, nil
}
