package workloads

import (
	"context"
	"log/slog"

	"github.com/planwise-hr/planwise/internal/validation"
)

// Service owns the workload write path: validate through the engine,
// commit through the repository, keep the related-graph cache fresh.
type Service struct {
	repo   Repository
	store  validation.Store
	engine *validation.Engine
	cache  *Cache
	logger *slog.Logger
}

// NewService constructs the service. The cache may be nil.
func NewService(repo Repository, store validation.Store, engine *validation.Engine, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, store: store, engine: engine, cache: cache, logger: logger}
}

// Log validates and records hours for one employee/project/day.
func (s *Service) Log(ctx context.Context, input LogWorkloadInput) (Workload, validation.Verdict, error) {
	verdict, err := s.engine.Validate(ctx, validation.ChangeRequest{
		Kind: validation.ChangeWorkloadCreate,
		Workload: &validation.WorkloadChange{
			EmployeeID: input.EmployeeID,
			ProjectID:  input.ProjectID,
			Date:       input.WorkDate,
			Hours:      input.Hours,
		},
	})
	if err != nil {
		return Workload{}, validation.Verdict{}, err
	}
	if !verdict.Valid {
		return Workload{}, verdict, &validation.ConflictError{Verdict: verdict}
	}

	w, err := s.repo.Create(ctx, input)
	if err != nil {
		return Workload{}, verdict, err
	}
	s.bumpCache(ctx)
	s.logger.Info("workload logged",
		slog.Int64("workload_id", w.ID),
		slog.Int64("employee_id", w.EmployeeID),
		slog.Float64("hours", w.Hours))
	return w, verdict, nil
}

// UpdateHours re-validates the row with its new hours and commits.
func (s *Service) UpdateHours(ctx context.Context, input UpdateWorkloadInput) (Workload, validation.Verdict, error) {
	current, err := s.repo.Get(ctx, input.ID)
	if err != nil {
		return Workload{}, validation.Verdict{}, err
	}

	verdict, err := s.engine.Validate(ctx, validation.ChangeRequest{
		Kind: validation.ChangeWorkloadUpdate,
		Workload: &validation.WorkloadChange{
			ID:         current.ID,
			EmployeeID: current.EmployeeID,
			ProjectID:  current.ProjectID,
			Date:       current.WorkDate,
			Hours:      input.Hours,
		},
	})
	if err != nil {
		return Workload{}, validation.Verdict{}, err
	}
	if !verdict.Valid {
		return Workload{}, verdict, &validation.ConflictError{Verdict: verdict}
	}

	w, err := s.repo.UpdateHours(ctx, input.ID, input.Hours)
	if err != nil {
		return Workload{}, verdict, err
	}
	s.bumpCache(ctx)
	return w, verdict, nil
}

// Void removes a row from every aggregate.
func (s *Service) Void(ctx context.Context, id int64) error {
	if err := s.repo.Void(ctx, id); err != nil {
		return err
	}
	s.bumpCache(ctx)
	return nil
}

// Get returns one workload.
func (s *Service) Get(ctx context.Context, id int64) (Workload, error) {
	return s.repo.Get(ctx, id)
}

// List returns workloads matching the filter plus the unpaged total.
func (s *Service) List(ctx context.Context, req ListWorkloadsRequest) ([]Workload, int, error) {
	return s.repo.List(ctx, req)
}

// Related returns the informational conflict graph around a workload:
// rows sharing its employee or project inside the policy window. Served
// through the versioned cache.
func (s *Service) Related(ctx context.Context, id int64) ([]RelatedWorkload, error) {
	w, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.cache.FetchRelated(ctx, relatedKey(id), func(ctx context.Context) ([]RelatedWorkload, error) {
		radius := s.engine.Policy().RelatedDayRadius
		refs, err := s.store.FindRelatedWorkloads(ctx, w.EmployeeID, w.ProjectID, w.WorkDate, radius, w.ID)
		if err != nil {
			return nil, err
		}
		out := make([]RelatedWorkload, 0, len(refs))
		for _, ref := range refs {
			shared := "project"
			if ref.EmployeeID == w.EmployeeID {
				shared = "employee"
			}
			out = append(out, RelatedWorkload{
				ID:         ref.ID,
				EmployeeID: ref.EmployeeID,
				ProjectID:  ref.ProjectID,
				WorkDate:   ref.Date,
				Hours:      ref.Hours,
				SharedWith: shared,
			})
		}
		return out, nil
	})
}

func (s *Service) bumpCache(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("related cache bump failed", slog.Any("error", err))
	}
}
