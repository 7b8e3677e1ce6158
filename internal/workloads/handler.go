package workloads

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/planwise-hr/planwise/internal/shared"
	"github.com/planwise-hr/planwise/internal/validation"
)

// Handler exposes the workload write path over JSON.
type Handler struct {
	service   *Service
	logger    *slog.Logger
	validator *validator.Validate
}

// NewHandler constructs the handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger, validator: validator.New()}
}

// MountRoutes attaches workload routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.log)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.void)
	r.Get("/{id}/related", h.related)
}

type logRequest struct {
	EmployeeID int64   `json:"employee_id" validate:"required,gt=0"`
	ProjectID  int64   `json:"project_id" validate:"required,gt=0"`
	WorkDate   string  `json:"work_date" validate:"required,datetime=2006-01-02"`
	Hours      float64 `json:"hours" validate:"required,gt=0,lte=24"`
}

type workloadResponse struct {
	Workload workloadBody        `json:"workload"`
	Verdict  *validation.Verdict `json:"verdict,omitempty"`
}

type workloadBody struct {
	ID         int64   `json:"id"`
	EmployeeID int64   `json:"employee_id"`
	ProjectID  int64   `json:"project_id"`
	WorkDate   string  `json:"work_date"`
	Hours      float64 `json:"hours"`
	Status     string  `json:"status"`
}

func toBody(w Workload) workloadBody {
	return workloadBody{
		ID:         w.ID,
		EmployeeID: w.EmployeeID,
		ProjectID:  w.ProjectID,
		WorkDate:   w.WorkDate.Format("2006-01-02"),
		Hours:      w.Hours,
		Status:     string(w.Status),
	}
}

func (h *Handler) log(w http.ResponseWriter, r *http.Request) {
	var req logRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	date, _ := time.Parse("2006-01-02", req.WorkDate)

	wl, verdict, err := h.service.Log(r.Context(), LogWorkloadInput{
		EmployeeID: req.EmployeeID,
		ProjectID:  req.ProjectID,
		WorkDate:   date,
		Hours:      req.Hours,
	})
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, workloadResponse{Workload: toBody(wl), Verdict: &verdict})
}

type updateRequest struct {
	Hours float64 `json:"hours" validate:"required,gt=0,lte=24"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		shared.WriteError(w, h.logger, shared.ErrNotFound)
		return
	}
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	wl, verdict, err := h.service.UpdateHours(r.Context(), UpdateWorkloadInput{ID: id, Hours: req.Hours})
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, workloadResponse{Workload: toBody(wl), Verdict: &verdict})
}

func (h *Handler) void(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		shared.WriteError(w, h.logger, shared.ErrNotFound)
		return
	}
	if err := h.service.Void(r.Context(), id); err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		shared.WriteError(w, h.logger, shared.ErrNotFound)
		return
	}
	wl, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, workloadResponse{Workload: toBody(wl)})
}

func (h *Handler) related(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		shared.WriteError(w, h.logger, shared.ErrNotFound)
		return
	}
	related, err := h.service.Related(r.Context(), id)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"related": related})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageFromRequest(r)
	employeeID, _ := strconv.ParseInt(r.URL.Query().Get("employee_id"), 10, 64)
	projectID, _ := strconv.ParseInt(r.URL.Query().Get("project_id"), 10, 64)

	req := ListWorkloadsRequest{
		EmployeeID: employeeID,
		ProjectID:  projectID,
		Limit:      perPage,
		Offset:     (page - 1) * perPage,
	}
	if from := r.URL.Query().Get("from"); from != "" {
		req.From, _ = time.Parse("2006-01-02", from)
	}
	if to := r.URL.Query().Get("to"); to != "" {
		req.To, _ = time.Parse("2006-01-02", to)
	}

	items, total, err := h.service.List(r.Context(), req)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	bodies := make([]workloadBody, 0, len(items))
	for _, wl := range items {
		bodies = append(bodies, toBody(wl))
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"workloads":  bodies,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
