package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/planwise-hr/planwise/internal/employees"
	"github.com/planwise-hr/planwise/internal/observability"
	"github.com/planwise-hr/planwise/internal/shared"
	"github.com/planwise-hr/planwise/internal/teams"
	"github.com/planwise-hr/planwise/internal/vacations"
	"github.com/planwise-hr/planwise/internal/validation"
	"github.com/planwise-hr/planwise/internal/workloads"
	"github.com/planwise-hr/planwise/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	EmployeesHandler  *employees.Handler
	VacationsHandler  *vacations.Handler
	WorkloadsHandler  *workloads.Handler
	TeamsHandler      *teams.Handler
	ValidationHandler *validation.Handler
	JobsHandler       *jobs.Handler
	Idempotency       *shared.IdempotencyStore
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with Planwise defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		if params.Idempotency != nil {
			r.Use(shared.Idempotent(params.Idempotency, "api", uuid.NewString))
		}
		if params.EmployeesHandler != nil {
			r.Route("/employees", params.EmployeesHandler.MountRoutes)
		}
		if params.VacationsHandler != nil {
			r.Route("/vacations", params.VacationsHandler.MountRoutes)
		}
		if params.WorkloadsHandler != nil {
			r.Route("/workloads", params.WorkloadsHandler.MountRoutes)
		}
		if params.TeamsHandler != nil {
			r.Route("/teams", params.TeamsHandler.MountRoutes)
		}
		if params.ValidationHandler != nil {
			r.Method(http.MethodPost, "/validate", params.ValidationHandler)
		}
	})

	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
