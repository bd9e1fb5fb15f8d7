// Package batch runs a set of benchmark instances end to end and aggregates
// their scores. A fatal error inside one instance scores it as infinite and
// never affects the others.
package batch

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/YJFKD/Food-delivery-simulator/internal/adapters/files"
	"github.com/YJFKD/Food-delivery-simulator/internal/adapters/persistence"
	"github.com/YJFKD/Food-delivery-simulator/internal/application/simulation"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/delivery"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/dispatch"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/history"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/routemap"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain/shared"
)

// Runner wires the static inputs, a dispatcher factory and the optional
// persistence layer into per-instance simulations.
type Runner struct {
	loader        *files.Loader
	newDispatcher func() dispatch.Dispatcher
	clock         shared.Clock

	policy          string
	seed            int64
	lamda           float64
	intervalSeconds int64
	maxRuntime      time.Duration

	runs      *persistence.RunRepositoryGORM
	histories *persistence.HistoryRepositoryGORM
}

// Options fix one batch run.
type Options struct {
	Policy          string
	Seed            int64
	Lamda           float64
	IntervalSeconds int64
	MaxRuntime      time.Duration
}

func NewRunner(loader *files.Loader, newDispatcher func() dispatch.Dispatcher,
	clock shared.Clock, opts Options) *Runner {
	return &Runner{
		loader:          loader,
		newDispatcher:   newDispatcher,
		clock:           clock,
		policy:          opts.Policy,
		seed:            opts.Seed,
		lamda:           opts.Lamda,
		intervalSeconds: opts.IntervalSeconds,
		maxRuntime:      opts.MaxRuntime,
	}
}

// WithPersistence stores every finished run and its history log.
func (r *Runner) WithPersistence(runs *persistence.RunRepositoryGORM,
	histories *persistence.HistoryRepositoryGORM) *Runner {
	r.runs = runs
	r.histories = histories
	return r
}

// InstanceResult is the outcome of one simulated instance.
type InstanceResult struct {
	Instance string
	RunID    string
	Score    history.Score
	Err      error
}

// Report aggregates a whole batch.
type Report struct {
	Results   []InstanceResult
	MeanScore float64
}

// Run simulates every instance in order and reports the mean score. A batch
// containing a failed instance has the infinite mean.
func (r *Runner) Run(ctx context.Context, instances []string) (*Report, error) {
	locations, err := r.loader.LoadLocations()
	if err != nil {
		return nil, err
	}
	routeMap, err := r.loader.LoadRouteMap()
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for _, instance := range instances {
		result := r.runInstance(ctx, instance, locations, routeMap)
		if result.Err != nil {
			log.Printf("batch: instance %s failed: %v", instance, result.Err)
		} else {
			log.Printf("batch: instance %s scored %.6f (distance %.3f km, lateness %ds)",
				instance, result.Score.Value, result.Score.TotalDistance, result.Score.TotalLateness)
		}
		report.Results = append(report.Results, result)
	}

	report.MeanScore = meanScore(report.Results)
	return report, nil
}

func (r *Runner) runInstance(ctx context.Context, instance string,
	locations *delivery.LocationTable, routeMap *routemap.Map) InstanceResult {

	result := InstanceResult{Instance: instance, RunID: uuid.New().String()}
	startedAt := r.clock.Now()
	startTime := files.BaseTime(startedAt).Unix()

	orders, err := r.loader.LoadOrders(instance, files.BaseTime(startedAt), locations)
	if err != nil {
		result.Err = err
		result.Score = failedScore()
		return result
	}
	drivers, err := r.loader.LoadDrivers(instance)
	if err != nil {
		result.Err = err
		result.Score = failedScore()
		return result
	}
	r.placeDriversAtRestaurants(drivers, locations, startTime)

	env := simulation.NewEnvironment(orders, drivers, locations, routeMap,
		r.newDispatcher(), r.clock, simulation.Options{
			StartTime:       startTime,
			IntervalSeconds: r.intervalSeconds,
			MaxRuntime:      r.maxRuntime,
		})

	runErr := env.Run(ctx)
	if runErr != nil {
		result.Err = runErr
		result.Score = failedScore()
	} else {
		result.Score = history.NewScorer(routeMap, r.lamda).Evaluate(env.History(), drivers.Len())
	}

	r.persist(ctx, result, env.History(), startedAt)
	return result
}

// placeDriversAtRestaurants draws each driver's starting restaurant from the
// configured seed, so the whole run is reproducible.
func (r *Runner) placeDriversAtRestaurants(drivers *delivery.DriverTable,
	locations *delivery.LocationTable, startTime int64) {

	restaurants := locations.Restaurants()
	if len(restaurants) == 0 {
		return
	}
	rng := rand.New(rand.NewSource(r.seed))
	for _, driver := range drivers.All() {
		start := restaurants[rng.Intn(len(restaurants))]
		driver.SetPosition(delivery.AtStop(start.ID(), startTime, startTime, startTime))
	}
}

func (r *Runner) persist(ctx context.Context, result InstanceResult, l *history.Log, startedAt time.Time) {
	if r.runs == nil {
		return
	}
	record := persistence.RunRecord{
		ID:         result.RunID,
		Instance:   result.Instance,
		Policy:     r.policy,
		RandomSeed: r.seed,
		Score:      result.Score,
		StartedAt:  startedAt,
		FinishedAt: r.clock.Now(),
	}
	if result.Err != nil {
		record.FailureReason = result.Err.Error()
	}
	if err := r.runs.Add(ctx, record); err != nil {
		log.Printf("batch: persisting run %s: %v", result.RunID, err)
		return
	}
	if r.histories != nil {
		if err := r.histories.Add(ctx, result.RunID, l); err != nil {
			log.Printf("batch: persisting history of run %s: %v", result.RunID, err)
		}
	}
}

func failedScore() history.Score {
	return history.Score{Value: history.ScoreInfinite, Failed: true}
}

func meanScore(results []InstanceResult) float64 {
	if len(results) == 0 {
		return 0
	}
	sum := 0.0
	for _, result := range results {
		if result.Score.Failed {
			return history.ScoreInfinite
		}
		sum += result.Score.Value
	}
	return sum / float64(len(results))
}
