package vacations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/planwise-hr/planwise/internal/validation"
)

// ErrInvalidStatus indicates the request is not in a state that allows
// the operation.
var ErrInvalidStatus = errors.New("invalid status for operation")

// Service owns the vacation write path. Every schedule-affecting write runs
// through the validation engine first; the repository's exclusion
// constraint remains the authoritative guard for the validate/commit race.
type Service struct {
	repo   Repository
	engine *validation.Engine
	logger *slog.Logger
}

// NewService constructs the service.
func NewService(repo Repository, engine *validation.Engine, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, engine: engine, logger: logger}
}

// Submit validates and stores a new pending vacation request. The verdict
// is returned even on success so callers can surface warnings.
func (s *Service) Submit(ctx context.Context, input CreateVacationInput) (Vacation, validation.Verdict, error) {
	verdict, err := s.engine.Validate(ctx, validation.ChangeRequest{
		Kind: validation.ChangeVacationCreate,
		Vacation: &validation.VacationChange{
			EmployeeID: input.EmployeeID,
			Start:      input.StartDate,
			End:        input.EndDate,
			Status:     validation.VacationPending,
		},
	})
	if err != nil {
		return Vacation{}, validation.Verdict{}, err
	}
	if !verdict.Valid {
		return Vacation{}, verdict, &validation.ConflictError{Verdict: verdict}
	}

	v, err := s.repo.Create(ctx, input, DaysInclusive(input.StartDate, input.EndDate))
	if err != nil {
		return Vacation{}, verdict, err
	}
	s.logger.Info("vacation submitted",
		slog.Int64("vacation_id", v.ID),
		slog.Int64("employee_id", v.EmployeeID),
		slog.Int("days", v.DaysRequested))
	return v, verdict, nil
}

// Reschedule moves a pending request to new dates. Approved requests must
// be cancelled and resubmitted so the approval trail stays honest.
func (s *Service) Reschedule(ctx context.Context, input RescheduleVacationInput) (Vacation, validation.Verdict, error) {
	current, err := s.repo.Get(ctx, input.ID)
	if err != nil {
		return Vacation{}, validation.Verdict{}, err
	}
	if current.Status != validation.VacationPending {
		return Vacation{}, validation.Verdict{}, fmt.Errorf("only pending requests can be rescheduled: %w", ErrInvalidStatus)
	}

	verdict, err := s.engine.Validate(ctx, validation.ChangeRequest{
		Kind: validation.ChangeVacationUpdate,
		Vacation: &validation.VacationChange{
			ID:         current.ID,
			EmployeeID: current.EmployeeID,
			Start:      input.StartDate,
			End:        input.EndDate,
			Status:     validation.VacationPending,
		},
	})
	if err != nil {
		return Vacation{}, validation.Verdict{}, err
	}
	if !verdict.Valid {
		return Vacation{}, verdict, &validation.ConflictError{Verdict: verdict}
	}

	v, err := s.repo.Reschedule(ctx, input, DaysInclusive(input.StartDate, input.EndDate))
	return v, verdict, err
}

// Decide approves or rejects a pending request. Approval re-validates the
// interval at approved severity: a pending-pending overlap that was only a
// warning at submission hard-blocks once one side is approved.
func (s *Service) Decide(ctx context.Context, id int64, approve bool) (Vacation, validation.Verdict, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Vacation{}, validation.Verdict{}, err
	}
	if current.Status != validation.VacationPending {
		return Vacation{}, validation.Verdict{}, fmt.Errorf("only pending requests can be decided: %w", ErrInvalidStatus)
	}

	status := validation.VacationRejected
	if approve {
		status = validation.VacationApproved
	}
	verdict, err := s.engine.Validate(ctx, validation.ChangeRequest{
		Kind: validation.ChangeVacationUpdate,
		Vacation: &validation.VacationChange{
			ID:         current.ID,
			EmployeeID: current.EmployeeID,
			Start:      current.StartDate,
			End:        current.EndDate,
			Status:     status,
		},
	})
	if err != nil {
		return Vacation{}, validation.Verdict{}, err
	}
	if approve && !verdict.Valid {
		return Vacation{}, verdict, &validation.ConflictError{Verdict: verdict}
	}

	v, err := s.repo.SetStatus(ctx, id, status)
	return v, verdict, err
}

// Cancel withdraws a pending or approved request.
func (s *Service) Cancel(ctx context.Context, id int64) (Vacation, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Vacation{}, err
	}
	if current.Status.Inert() {
		return Vacation{}, fmt.Errorf("request already inactive: %w", ErrInvalidStatus)
	}
	return s.repo.SetStatus(ctx, id, validation.VacationCancelled)
}

// Get returns one vacation.
func (s *Service) Get(ctx context.Context, id int64) (Vacation, error) {
	return s.repo.Get(ctx, id)
}

// List returns vacations matching the filter plus the unpaged total.
func (s *Service) List(ctx context.Context, req ListVacationsRequest) ([]Vacation, int, error) {
	return s.repo.List(ctx, req)
}
