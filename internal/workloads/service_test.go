package workloads

import (
	"context"
	"errors"
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

// memWorkRepo keeps workloads in memory and enforces the same partial
// unique index the production table does: one active row per
// (employee, project, date) key.
type memWorkRepo struct {
	mu        sync.Mutex
	workloads map[int64]Workload
	nextID    int64
}

func newMemWorkRepo() *memWorkRepo {
	return &memWorkRepo{workloads: make(map[int64]Workload)}
}

func (r *memWorkRepo) keyTaken(employeeID, projectID int64, date time.Time, excludeID int64) bool {
	for _, w := range r.workloads {
		if w.Status != StatusActive || w.ID == excludeID {
			continue
		}
		if w.EmployeeID == employeeID && w.ProjectID == projectID && w.WorkDate.Equal(date) {
			return true
		}
	}
	return false
}

func (r *memWorkRepo) Create(ctx context.Context, input LogWorkloadInput) (Workload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.keyTaken(input.EmployeeID, input.ProjectID, input.WorkDate, 0) {
		return Workload{}, shared.ErrConflict
	}
	r.nextID++
	w := Workload{
		ID:         r.nextID,
		EmployeeID: input.EmployeeID,
		ProjectID:  input.ProjectID,
		WorkDate:   input.WorkDate,
		Hours:      input.Hours,
		Status:     StatusActive,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	r.workloads[w.ID] = w
	return w, nil
}

func (r *memWorkRepo) Get(ctx context.Context, id int64) (Workload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workloads[id]
	if !ok || w.Status != StatusActive {
		return Workload{}, shared.ErrNotFound
	}
	return w, nil
}

func (r *memWorkRepo) UpdateHours(ctx context.Context, id int64, hours float64) (Workload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workloads[id]
	if !ok || w.Status != StatusActive {
		return Workload{}, shared.ErrNotFound
	}
	w.Hours = hours
	w.UpdatedAt = time.Now()
	r.workloads[id] = w
	return w, nil
}

func (r *memWorkRepo) Void(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workloads[id]
	if !ok || w.Status != StatusActive {
		return shared.ErrNotFound
	}
	w.Status = StatusVoid
	r.workloads[id] = w
	return nil
}

func (r *memWorkRepo) List(ctx context.Context, req ListWorkloadsRequest) ([]Workload, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Workload
	for _, w := range r.workloads {
		if w.Status != StatusActive {
			continue
		}
		if req.EmployeeID != 0 && w.EmployeeID != req.EmployeeID {
			continue
		}
		if req.ProjectID != 0 && w.ProjectID != req.ProjectID {
			continue
		}
		out = append(out, w)
	}
	return out, len(out), nil
}

// repoStore gives the engine a live read view over the memory repo.
// Unused Store methods fall through to the embedded nil interface and
// would panic, which is exactly what a test reaching them deserves.
type repoStore struct {
	validation.Store
	repo *memWorkRepo
}

func (s repoStore) SumDailyHours(ctx context.Context, employeeID int64, date time.Time, excludeID int64) (float64, error) {
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()
	var total float64
	for _, w := range s.repo.workloads {
		if w.Status != StatusActive || w.ID == excludeID {
			continue
		}
		if w.EmployeeID == employeeID && w.WorkDate.Equal(date) {
			total += w.Hours
		}
	}
	return total, nil
}

func (s repoStore) SumWeekHours(ctx context.Context, employeeID int64, weekStart time.Time, excludeID int64) (float64, error) {
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()
	weekEnd := weekStart.AddDate(0, 0, 7)
	var total float64
	for _, w := range s.repo.workloads {
		if w.Status != StatusActive || w.ID == excludeID {
			continue
		}
		if w.EmployeeID == employeeID && !w.WorkDate.Before(weekStart) && w.WorkDate.Before(weekEnd) {
			total += w.Hours
		}
	}
	return total, nil
}

func (s repoStore) FindWorkloadByKey(ctx context.Context, employeeID, projectID int64, date time.Time, excludeID int64) (*validation.WorkloadRef, error) {
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()
	for _, w := range s.repo.workloads {
		if w.Status != StatusActive || w.ID == excludeID {
			continue
		}
		if w.EmployeeID == employeeID && w.ProjectID == projectID && w.WorkDate.Equal(date) {
			return &validation.WorkloadRef{ID: w.ID, EmployeeID: w.EmployeeID, ProjectID: w.ProjectID, Date: w.WorkDate, Hours: w.Hours}, nil
		}
	}
	return nil, nil
}

func (s repoStore) FindRelatedWorkloads(ctx context.Context, employeeID, projectID int64, date time.Time, dayRadius int, excludeID int64) ([]validation.WorkloadRef, error) {
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()
	var out []validation.WorkloadRef
	for _, w := range s.repo.workloads {
		if w.Status != StatusActive || w.ID == excludeID {
			continue
		}
		days := int(w.WorkDate.Sub(date).Hours() / 24)
		if days < 0 {
			days = -days
		}
		sameEmployee := w.EmployeeID == employeeID && days <= dayRadius
		sameProject := w.ProjectID == projectID && days <= 2*dayRadius
		if sameEmployee || sameProject {
			out = append(out, validation.WorkloadRef{ID: w.ID, EmployeeID: w.EmployeeID, ProjectID: w.ProjectID, Date: w.WorkDate, Hours: w.Hours})
		}
	}
	return out, nil
}

// emptyStore answers every workload query with nothing, mimicking a
// snapshot taken before any concurrent writer committed.
type emptyStore struct {
	validation.Store
}

func (emptyStore) SumDailyHours(context.Context, int64, time.Time, int64) (float64, error) {
	return 0, nil
}

func (emptyStore) SumWeekHours(context.Context, int64, time.Time, int64) (float64, error) {
	return 0, nil
}

func (emptyStore) FindWorkloadByKey(context.Context, int64, int64, time.Time, int64) (*validation.WorkloadRef, error) {
	return nil, nil
}

func (emptyStore) FindRelatedWorkloads(context.Context, int64, int64, time.Time, int, int64) ([]validation.WorkloadRef, error) {
	return nil, nil
}

func newTestService(repo *memWorkRepo, store validation.Store) *Service {
	engine := validation.NewEngine(store, validation.DefaultPolicy(), nil)
	return NewService(repo, store, engine, nil, nil)
}

func TestLogAndUpdateHours(t *testing.T) {
	repo := newMemWorkRepo()
	svc := newTestService(repo, repoStore{repo: repo})
	ctx := context.Background()

	w, verdict, err := svc.Log(ctx, LogWorkloadInput{
		EmployeeID: 1, ProjectID: 10, WorkDate: d(2025, time.March, 3), Hours: 6,
	})
	require.NoError(t, err)
	require.True(t, verdict.Valid)
	require.Empty(t, verdict.Warnings)

	updated, verdict, err := svc.UpdateHours(ctx, UpdateWorkloadInput{ID: w.ID, Hours: 7.5})
	require.NoError(t, err)
	require.True(t, verdict.Valid)
	require.Equal(t, 7.5, updated.Hours)
}

func TestLogRejectsDuplicateKey(t *testing.T) {
	repo := newMemWorkRepo()
	svc := newTestService(repo, repoStore{repo: repo})
	ctx := context.Background()

	input := LogWorkloadInput{EmployeeID: 1, ProjectID: 10, WorkDate: d(2025, time.March, 3), Hours: 4}
	_, _, err := svc.Log(ctx, input)
	require.NoError(t, err)

	_, verdict, err := svc.Log(ctx, input)
	var conflict *validation.ConflictError
	require.ErrorAs(t, err, &conflict)
	require.False(t, verdict.Valid)
	require.Len(t, verdict.Errors, 1)
	require.Equal(t, validation.CodeDuplicateWorkload, verdict.Errors[0].Code)
}

func TestLogWarnsAtDailySoftCap(t *testing.T) {
	repo := newMemWorkRepo()
	svc := newTestService(repo, repoStore{repo: repo})
	ctx := context.Background()

	day := d(2025, time.March, 4)
	_, _, err := svc.Log(ctx, LogWorkloadInput{EmployeeID: 2, ProjectID: 10, WorkDate: day, Hours: 6})
	require.NoError(t, err)

	w, verdict, err := svc.Log(ctx, LogWorkloadInput{EmployeeID: 2, ProjectID: 11, WorkDate: day, Hours: 3})
	require.NoError(t, err)
	require.True(t, verdict.Valid, "soft cap breach is a warning, not a rejection")
	require.NotZero(t, w.ID)

	var found bool
	for _, f := range verdict.Warnings {
		if f.Code == validation.CodeDailyHoursSoftCap {
			found = true
		}
	}
	require.True(t, found)
}

func TestUpdateHoursRejectsHardCap(t *testing.T) {
	repo := newMemWorkRepo()
	svc := newTestService(repo, repoStore{repo: repo})
	ctx := context.Background()

	day := d(2025, time.March, 5)
	_, _, err := svc.Log(ctx, LogWorkloadInput{EmployeeID: 3, ProjectID: 10, WorkDate: day, Hours: 6})
	require.NoError(t, err)
	w, _, err := svc.Log(ctx, LogWorkloadInput{EmployeeID: 3, ProjectID: 11, WorkDate: day, Hours: 2})
	require.NoError(t, err)

	_, verdict, err := svc.UpdateHours(ctx, UpdateWorkloadInput{ID: w.ID, Hours: 7})
	var conflict *validation.ConflictError
	require.ErrorAs(t, err, &conflict)
	require.False(t, verdict.Valid)
	require.Equal(t, validation.CodeDailyHoursHardCap, verdict.Errors[0].Code)

	current, err := svc.Get(ctx, w.ID)
	require.NoError(t, err)
	require.Equal(t, 2.0, current.Hours, "rejected update must not commit")
}

func TestVoidFreesUniquenessKey(t *testing.T) {
	repo := newMemWorkRepo()
	svc := newTestService(repo, repoStore{repo: repo})
	ctx := context.Background()

	input := LogWorkloadInput{EmployeeID: 4, ProjectID: 10, WorkDate: d(2025, time.March, 6), Hours: 5}
	w, _, err := svc.Log(ctx, input)
	require.NoError(t, err)

	require.NoError(t, svc.Void(ctx, w.ID))
	_, err = svc.Get(ctx, w.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)

	_, verdict, err := svc.Log(ctx, input)
	require.NoError(t, err)
	require.True(t, verdict.Valid, "voided rows do not hold the key")
}

func TestRelatedGraphSharesEmployeeAndProject(t *testing.T) {
	repo := newMemWorkRepo()
	svc := newTestService(repo, repoStore{repo: repo})
	ctx := context.Background()

	anchor, _, err := svc.Log(ctx, LogWorkloadInput{EmployeeID: 5, ProjectID: 20, WorkDate: d(2025, time.April, 10), Hours: 4})
	require.NoError(t, err)
	_, _, err = svc.Log(ctx, LogWorkloadInput{EmployeeID: 5, ProjectID: 21, WorkDate: d(2025, time.April, 12), Hours: 4})
	require.NoError(t, err)
	_, _, err = svc.Log(ctx, LogWorkloadInput{EmployeeID: 6, ProjectID: 20, WorkDate: d(2025, time.April, 15), Hours: 4})
	require.NoError(t, err)

	related, err := svc.Related(ctx, anchor.ID)
	require.NoError(t, err)
	require.Len(t, related, 2)

	shares := map[string]int{}
	for _, rel := range related {
		shares[rel.SharedWith]++
	}
	require.Equal(t, 1, shares["employee"])
	require.Equal(t, 1, shares["project"])
}

// Two writers race the same (employee, project, date) key with the engine
// reading a pre-commit snapshot, so both verdicts come back valid. The
// unique index arbitrates: exactly one commit lands.
func TestDuplicateRaceStoppedByConstraint(t *testing.T) {
	repo := newMemWorkRepo()
	svc := newTestService(repo, emptyStore{})
	ctx := context.Background()

	input := LogWorkloadInput{EmployeeID: 7, ProjectID: 30, WorkDate: d(2025, time.May, 2), Hours: 8}

	type outcome struct {
		valid bool
		err   error
	}
	results := make(chan outcome, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, verdict, err := svc.Log(ctx, input)
			results <- outcome{valid: verdict.Valid, err: err}
		}()
	}

	var commits, conflicts int
	for i := 0; i < 2; i++ {
		res := <-results
		require.True(t, res.valid, "the snapshot view passes both validations")
		switch {
		case res.err == nil:
			commits++
		case errors.Is(res.err, shared.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", res.err)
		}
	}
	require.Equal(t, 1, commits)
	require.Equal(t, 1, conflicts)
}
