package validation

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Handler exposes the engine as a dry-run endpoint: callers submit a
// proposed change and receive the verdict without anything being written.
type Handler struct {
	engine *Engine
	logger *slog.Logger
}

// NewHandler constructs the handler.
func NewHandler(engine *Engine, logger *slog.Logger) *Handler {
	return &Handler{engine: engine, logger: logger}
}

type validateRequest struct {
	Kind       string             `json:"kind"`
	Vacation   *vacationPayload   `json:"vacation,omitempty"`
	Workload   *workloadPayload   `json:"workload,omitempty"`
	Membership *membershipPayload `json:"membership,omitempty"`
}

type vacationPayload struct {
	ID         int64  `json:"id,omitempty"`
	EmployeeID int64  `json:"employee_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Status     string `json:"status,omitempty"`
}

type workloadPayload struct {
	ID         int64   `json:"id,omitempty"`
	EmployeeID int64   `json:"employee_id"`
	ProjectID  int64   `json:"project_id"`
	WorkDate   string  `json:"work_date"`
	Hours      float64 `json:"hours"`
}

type membershipPayload struct {
	ID         int64  `json:"id,omitempty"`
	TeamID     int64  `json:"team_id"`
	EmployeeID int64  `json:"employee_id"`
	Role       string `json:"role,omitempty"`
	IsLeader   bool   `json:"is_leader"`
	IsActive   bool   `json:"is_active"`
}

// ServeHTTP handles POST /validate.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body validateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	req, err := body.toChangeRequest()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	verdict, err := h.engine.Validate(r.Context(), req)
	switch {
	case errors.Is(err, ErrInvalidRequest):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	case errors.Is(err, ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "validation unavailable"})
		return
	case err != nil:
		h.logger.Error("dry-run validation failed", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"verdict": verdict})
}

func (b validateRequest) toChangeRequest() (ChangeRequest, error) {
	kind := ChangeKind(b.Kind)
	req := ChangeRequest{Kind: kind}
	switch {
	case strings.HasPrefix(b.Kind, "vacation."):
		if b.Vacation == nil {
			return ChangeRequest{}, errors.New("vacation payload required")
		}
		start, err := parseDay(b.Vacation.StartDate)
		if err != nil {
			return ChangeRequest{}, errors.New("invalid start_date, want YYYY-MM-DD")
		}
		end, err := parseDay(b.Vacation.EndDate)
		if err != nil {
			return ChangeRequest{}, errors.New("invalid end_date, want YYYY-MM-DD")
		}
		status := VacationStatus(b.Vacation.Status)
		if status == "" {
			status = VacationPending
		}
		req.Vacation = &VacationChange{
			ID:         b.Vacation.ID,
			EmployeeID: b.Vacation.EmployeeID,
			Start:      start,
			End:        end,
			Status:     status,
		}
	case strings.HasPrefix(b.Kind, "workload."):
		if b.Workload == nil {
			return ChangeRequest{}, errors.New("workload payload required")
		}
		date, err := parseDay(b.Workload.WorkDate)
		if err != nil {
			return ChangeRequest{}, errors.New("invalid work_date, want YYYY-MM-DD")
		}
		req.Workload = &WorkloadChange{
			ID:         b.Workload.ID,
			EmployeeID: b.Workload.EmployeeID,
			ProjectID:  b.Workload.ProjectID,
			Date:       date,
			Hours:      b.Workload.Hours,
		}
	case strings.HasPrefix(b.Kind, "membership."):
		if b.Membership == nil {
			return ChangeRequest{}, errors.New("membership payload required")
		}
		req.Membership = &MembershipChange{
			ID:         b.Membership.ID,
			TeamID:     b.Membership.TeamID,
			EmployeeID: b.Membership.EmployeeID,
			Role:       b.Membership.Role,
			IsLeader:   b.Membership.IsLeader,
			IsActive:   b.Membership.IsActive,
		}
	default:
		return ChangeRequest{}, errors.New("unknown kind")
	}
	return req, nil
}

func parseDay(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
