package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/planwise-hr/planwise/internal/jobs"
	"github.com/planwise-hr/planwise/internal/validation"
)

// DriftGauge publishes the headline result of the latest scan.
type DriftGauge interface {
	SetConsistencyDrift(records int)
}

// ConsistencyScanJob re-validates recent vacations and workloads against
// the current rule set. Records that were admitted under older thresholds
// can drift out of compliance; the scan surfaces them without mutating
// anything.
type ConsistencyScanJob struct {
	Pool    *pgxpool.Pool
	Engine  *validation.Engine
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Gauge   DriftGauge
	clock   func() time.Time
}

// NewConsistencyScanJob initialises the scan handler.
func NewConsistencyScanJob(pool *pgxpool.Pool, engine *validation.Engine, logger *slog.Logger, metrics *jobmetrics.Metrics, gauge DriftGauge) *ConsistencyScanJob {
	return &ConsistencyScanJob{
		Pool:    pool,
		Engine:  engine,
		Logger:  logger,
		Metrics: metrics,
		Gauge:   gauge,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the consistency scan.
func (j *ConsistencyScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil || j.Engine == nil {
		return errors.New("consistency scan: handler not configured")
	}
	var payload ConsistencyScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.LookbackDays <= 0 {
		payload.LookbackDays = 30
	}

	tracker := j.metrics().Track(TaskConsistencyScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	since := j.now().AddDate(0, 0, -payload.LookbackDays)

	vacDrift, err := j.scanVacations(ctx, since)
	if err != nil {
		resultErr = err
		return err
	}
	workDrift, err := j.scanWorkloads(ctx, since)
	if err != nil {
		resultErr = err
		return err
	}

	total := vacDrift + workDrift
	j.metrics().AddDrift(string(validation.ChangeVacationUpdate), vacDrift)
	j.metrics().AddDrift(string(validation.ChangeWorkloadUpdate), workDrift)
	if j.Gauge != nil {
		j.Gauge.SetConsistencyDrift(total)
	}
	j.logger().Info("consistency scan finished",
		slog.Int("lookback_days", payload.LookbackDays),
		slog.Int("vacations_in_drift", vacDrift),
		slog.Int("workloads_in_drift", workDrift))
	return nil
}

func (j *ConsistencyScanJob) scanVacations(ctx context.Context, since time.Time) (int, error) {
	rows, err := j.Pool.Query(ctx, `
		SELECT id, employee_id, start_date, end_date, status
		FROM vacations
		WHERE status IN ('pending', 'approved') AND end_date >= $1`, since)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	type vacRow struct {
		id, employeeID int64
		start, end     time.Time
		status         string
	}
	var batch []vacRow
	for rows.Next() {
		var v vacRow
		if err := rows.Scan(&v.id, &v.employeeID, &v.start, &v.end, &v.status); err != nil {
			return 0, err
		}
		batch = append(batch, v)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	drift := 0
	for _, v := range batch {
		verdict, err := j.Engine.Validate(ctx, validation.ChangeRequest{
			Kind: validation.ChangeVacationUpdate,
			Vacation: &validation.VacationChange{
				ID:         v.id,
				EmployeeID: v.employeeID,
				Start:      v.start,
				End:        v.end,
				Status:     validation.VacationStatus(v.status),
			},
		})
		if err != nil {
			return 0, err
		}
		if !verdict.Valid {
			drift++
			j.logger().Warn("vacation drifted out of compliance",
				slog.Int64("vacation_id", v.id),
				slog.Int("errors", len(verdict.Errors)))
		}
	}
	return drift, nil
}

func (j *ConsistencyScanJob) scanWorkloads(ctx context.Context, since time.Time) (int, error) {
	rows, err := j.Pool.Query(ctx, `
		SELECT id, employee_id, project_id, work_date, hours
		FROM workloads
		WHERE status = 'active' AND work_date >= $1`, since)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	type workRow struct {
		id, employeeID, projectID int64
		date                      time.Time
		hours                     float64
	}
	var batch []workRow
	for rows.Next() {
		var w workRow
		if err := rows.Scan(&w.id, &w.employeeID, &w.projectID, &w.date, &w.hours); err != nil {
			return 0, err
		}
		batch = append(batch, w)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	drift := 0
	for _, w := range batch {
		verdict, err := j.Engine.Validate(ctx, validation.ChangeRequest{
			Kind: validation.ChangeWorkloadUpdate,
			Workload: &validation.WorkloadChange{
				ID:         w.id,
				EmployeeID: w.employeeID,
				ProjectID:  w.projectID,
				Date:       w.date,
				Hours:      w.hours,
			},
		})
		if err != nil {
			return 0, err
		}
		if !verdict.Valid {
			drift++
			j.logger().Warn("workload drifted out of compliance",
				slog.Int64("workload_id", w.id),
				slog.Int("errors", len(verdict.Errors)))
		}
	}
	return drift, nil
}

func (j *ConsistencyScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return jobmetrics.NewMetrics(nil)
}

func (j *ConsistencyScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *ConsistencyScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
