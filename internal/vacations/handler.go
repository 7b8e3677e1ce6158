package vacations

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

// Handler exposes the vacation write path over JSON.
type Handler struct {
	service   *Service
	logger    *slog.Logger
	validator *validator.Validate
}

// NewHandler constructs the handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger, validator: validator.New()}
}

// MountRoutes attaches vacation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.submit)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.reschedule)
	r.Post("/{id}/decision", h.decide)
	r.Post("/{id}/cancel", h.cancel)
}

type submitRequest struct {
	EmployeeID int64  `json:"employee_id" validate:"required,gt=0"`
	Type       string `json:"type" validate:"required,oneof=annual sick unpaid"`
	StartDate  string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

type vacationResponse struct {
	Vacation vacationBody        `json:"vacation"`
	Verdict  *validation.Verdict `json:"verdict,omitempty"`
}

type vacationBody struct {
	ID            int64  `json:"id"`
	EmployeeID    int64  `json:"employee_id"`
	Type          string `json:"type"`
	Status        string `json:"status"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	DaysRequested int    `json:"days_requested"`
}

func toBody(v Vacation) vacationBody {
	return vacationBody{
		ID:            v.ID,
		EmployeeID:    v.EmployeeID,
		Type:          string(v.Type),
		Status:        string(v.Status),
		StartDate:     v.StartDate.Format("2006-01-02"),
		EndDate:       v.EndDate.Format("2006-01-02"),
		DaysRequested: v.DaysRequested,
	}
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)

	v, verdict, err := h.service.Submit(r.Context(), CreateVacationInput{
		EmployeeID: req.EmployeeID,
		Type:       VacationType(req.Type),
		StartDate:  start,
		EndDate:    end,
	})
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, vacationResponse{Vacation: toBody(v), Verdict: &verdict})
}

type rescheduleRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

func (h *Handler) reschedule(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		shared.WriteError(w, h.logger, shared.ErrNotFound)
		return
	}
	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)

	v, verdict, err := h.service.Reschedule(r.Context(), RescheduleVacationInput{ID: id, StartDate: start, EndDate: end})
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, vacationResponse{Vacation: toBody(v), Verdict: &verdict})
}

type decisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		shared.WriteError(w, h.logger, shared.ErrNotFound)
		return
	}
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	v, verdict, err := h.service.Decide(r.Context(), id, req.Decision == "approve")
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, vacationResponse{Vacation: toBody(v), Verdict: &verdict})
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		shared.WriteError(w, h.logger, shared.ErrNotFound)
		return
	}
	v, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, vacationResponse{Vacation: toBody(v)})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		shared.WriteError(w, h.logger, shared.ErrNotFound)
		return
	}
	v, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, vacationResponse{Vacation: toBody(v)})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageFromRequest(r)
	employeeID, _ := strconv.ParseInt(r.URL.Query().Get("employee_id"), 10, 64)

	req := ListVacationsRequest{
		EmployeeID: employeeID,
		Status:     validation.VacationStatus(r.URL.Query().Get("status")),
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
	bodies := make([]vacationBody, 0, len(items))
	for _, v := range items {
		bodies = append(bodies, toBody(v))
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"vacations":  bodies,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
