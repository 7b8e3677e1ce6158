package vacations

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/planwise-hr/planwise/internal/shared"
	"github.com/planwise-hr/planwise/internal/validation"
)

func d(y int, m time.Month, dd int) time.Time {
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

// memVacRepo keeps vacations in memory and enforces the same exclusion
// rule the production table does: no two pending/approved rows for one
// employee may overlap. That makes it a faithful stand-in for the
// constraint backstop.
type memVacRepo struct {
	mu        sync.Mutex
	vacations map[int64]Vacation
	nextID    int64
}

func newMemVacRepo() *memVacRepo {
	return &memVacRepo{vacations: make(map[int64]Vacation)}
}

func (r *memVacRepo) overlapsActive(employeeID int64, start, end time.Time, excludeID int64) bool {
	for _, v := range r.vacations {
		if v.EmployeeID != employeeID || v.ID == excludeID || v.Status.Inert() {
			continue
		}
		if !start.After(v.EndDate) && !v.StartDate.After(end) {
			return true
		}
	}
	return false
}

func (r *memVacRepo) Create(ctx context.Context, input CreateVacationInput, days int) (Vacation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.overlapsActive(input.EmployeeID, input.StartDate, input.EndDate, 0) {
		return Vacation{}, shared.ErrConflict
	}
	r.nextID++
	v := Vacation{
		ID:            r.nextID,
		EmployeeID:    input.EmployeeID,
		Type:          input.Type,
		Status:        validation.VacationPending,
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
		DaysRequested: days,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	r.vacations[v.ID] = v
	return v, nil
}

func (r *memVacRepo) Get(ctx context.Context, id int64) (Vacation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vacations[id]
	if !ok {
		return Vacation{}, shared.ErrNotFound
	}
	return v, nil
}

func (r *memVacRepo) Reschedule(ctx context.Context, input RescheduleVacationInput, days int) (Vacation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vacations[input.ID]
	if !ok {
		return Vacation{}, shared.ErrNotFound
	}
	if r.overlapsActive(v.EmployeeID, input.StartDate, input.EndDate, v.ID) {
		return Vacation{}, shared.ErrConflict
	}
	v.StartDate = input.StartDate
	v.EndDate = input.EndDate
	v.DaysRequested = days
	v.UpdatedAt = time.Now()
	r.vacations[v.ID] = v
	return v, nil
}

func (r *memVacRepo) SetStatus(ctx context.Context, id int64, status validation.VacationStatus) (Vacation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vacations[id]
	if !ok {
		return Vacation{}, shared.ErrNotFound
	}
	v.Status = status
	v.UpdatedAt = time.Now()
	r.vacations[id] = v
	return v, nil
}

func (r *memVacRepo) List(ctx context.Context, req ListVacationsRequest) ([]Vacation, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Vacation
	for _, v := range r.vacations {
		if req.EmployeeID != 0 && v.EmployeeID != req.EmployeeID {
			continue
		}
		if req.Status != "" && v.Status != req.Status {
			continue
		}
		out = append(out, v)
	}
	return out, len(out), nil
}

// repoStore exposes the repo's live contents as the engine's query port.
type repoStore struct {
	validation.Store
	repo *memVacRepo
}

func (s repoStore) FindVacationIntervals(ctx context.Context, employeeID int64, window validation.Window) ([]validation.VacationInterval, error) {
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()
	var out []validation.VacationInterval
	for _, v := range s.repo.vacations {
		if v.EmployeeID != employeeID {
			continue
		}
		if v.StartDate.After(window.To) || v.EndDate.Before(window.From) {
			continue
		}
		out = append(out, validation.VacationInterval{ID: v.ID, Start: v.StartDate, End: v.EndDate, Status: v.Status})
	}
	return out, nil
}

// snapshotStore serves a frozen view regardless of later commits, the way
// a second writer sees the database before the first commit lands.
type snapshotStore struct {
	validation.Store
	intervals []validation.VacationInterval
}

func (s snapshotStore) FindVacationIntervals(ctx context.Context, employeeID int64, window validation.Window) ([]validation.VacationInterval, error) {
	return s.intervals, nil
}

func newService(repo *memVacRepo, store validation.Store) *Service {
	engine := validation.NewEngine(store, validation.DefaultPolicy(), nil)
	return NewService(repo, engine, nil)
}

func TestSubmitAndApprove(t *testing.T) {
	ctx := context.Background()
	repo := newMemVacRepo()
	svc := newService(repo, repoStore{repo: repo})

	v, verdict, err := svc.Submit(ctx, CreateVacationInput{
		EmployeeID: 7,
		Type:       TypeAnnual,
		StartDate:  d(2024, 7, 1),
		EndDate:    d(2024, 7, 10),
	})
	require.NoError(t, err)
	require.True(t, verdict.Valid)
	require.Equal(t, 10, v.DaysRequested)
	require.Equal(t, validation.VacationPending, v.Status)

	approved, verdict, err := svc.Decide(ctx, v.ID, true)
	require.NoError(t, err)
	require.True(t, verdict.Valid)
	require.Equal(t, validation.VacationApproved, approved.Status)
}

func TestSubmitRejectsOverlapWithApproved(t *testing.T) {
	ctx := context.Background()
	repo := newMemVacRepo()
	svc := newService(repo, repoStore{repo: repo})

	first, _, err := svc.Submit(ctx, CreateVacationInput{
		EmployeeID: 7, Type: TypeAnnual, StartDate: d(2024, 7, 1), EndDate: d(2024, 7, 10),
	})
	require.NoError(t, err)
	_, _, err = svc.Decide(ctx, first.ID, true)
	require.NoError(t, err)

	_, verdict, err := svc.Submit(ctx, CreateVacationInput{
		EmployeeID: 7, Type: TypeAnnual, StartDate: d(2024, 7, 8), EndDate: d(2024, 7, 15),
	})
	var conflict *validation.ConflictError
	require.ErrorAs(t, err, &conflict)
	require.False(t, verdict.Valid)
	require.Len(t, verdict.Errors, 1)
	require.Equal(t, validation.CodeVacationOverlapApproved, verdict.Errors[0].Code)
	require.Equal(t, []int64{first.ID}, verdict.Errors[0].RelatedIDs)
}

func TestSubmitWarnsOnPendingOverlap(t *testing.T) {
	ctx := context.Background()
	repo := newMemVacRepo()
	svc := newService(repo, repoStore{repo: repo})

	_, _, err := svc.Submit(ctx, CreateVacationInput{
		EmployeeID: 7, Type: TypeAnnual, StartDate: d(2024, 7, 1), EndDate: d(2024, 7, 10),
	})
	require.NoError(t, err)

	// Pending vs pending only warns, but the repo's exclusion rule still
	// refuses the second row: warnings pass validation and die at commit.
	_, verdict, err := svc.Submit(ctx, CreateVacationInput{
		EmployeeID: 7, Type: TypeSick, StartDate: d(2024, 7, 10), EndDate: d(2024, 7, 12),
	})
	require.ErrorIs(t, err, shared.ErrConflict)
	require.True(t, verdict.Valid)
	require.NotEmpty(t, verdict.Warnings)
}

func TestRescheduleOnlyPending(t *testing.T) {
	ctx := context.Background()
	repo := newMemVacRepo()
	svc := newService(repo, repoStore{repo: repo})

	v, _, err := svc.Submit(ctx, CreateVacationInput{
		EmployeeID: 7, Type: TypeAnnual, StartDate: d(2024, 7, 1), EndDate: d(2024, 7, 5),
	})
	require.NoError(t, err)

	moved, verdict, err := svc.Reschedule(ctx, RescheduleVacationInput{
		ID: v.ID, StartDate: d(2024, 8, 1), EndDate: d(2024, 8, 5),
	})
	require.NoError(t, err)
	require.True(t, verdict.Valid)
	require.Equal(t, d(2024, 8, 1), moved.StartDate)

	_, _, err = svc.Decide(ctx, v.ID, true)
	require.NoError(t, err)
	_, _, err = svc.Reschedule(ctx, RescheduleVacationInput{
		ID: v.ID, StartDate: d(2024, 9, 1), EndDate: d(2024, 9, 5),
	})
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCancelInertRequest(t *testing.T) {
	ctx := context.Background()
	repo := newMemVacRepo()
	svc := newService(repo, repoStore{repo: repo})

	v, _, err := svc.Submit(ctx, CreateVacationInput{
		EmployeeID: 7, Type: TypeAnnual, StartDate: d(2024, 7, 1), EndDate: d(2024, 7, 5),
	})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, v.ID)
	require.NoError(t, err)
	require.Equal(t, validation.VacationCancelled, cancelled.Status)

	_, err = svc.Cancel(ctx, v.ID)
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestValidateCommitRaceStoppedByConstraint(t *testing.T) {
	ctx := context.Background()
	repo := newMemVacRepo()
	// Both writers validate against the same pre-commit snapshot, so both
	// verdicts come back valid. Only the storage constraint can arbitrate.
	svc := newService(repo, snapshotStore{})

	input := CreateVacationInput{
		EmployeeID: 7, Type: TypeAnnual, StartDate: d(2024, 7, 1), EndDate: d(2024, 7, 10),
	}
	type result struct {
		verdict validation.Verdict
		err     error
	}
	results := make(chan result, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, verdict, err := svc.Submit(ctx, input)
			results <- result{verdict: verdict, err: err}
		}()
	}

	var conflicts, commits int
	for i := 0; i < 2; i++ {
		res := <-results
		require.True(t, res.verdict.Valid, "both validations must pass against the snapshot")
		if res.err != nil {
			require.ErrorIs(t, res.err, shared.ErrConflict)
			conflicts++
		} else {
			commits++
		}
	}
	require.Equal(t, 1, commits)
	require.Equal(t, 1, conflicts)
}
