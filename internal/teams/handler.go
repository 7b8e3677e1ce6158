package teams

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/planwise-hr/planwise/internal/shared"
	"github.com/planwise-hr/planwise/internal/validation"
)

// Handler exposes teams and memberships over JSON.
type Handler struct {
	service   *Service
	logger    *slog.Logger
	validator *validator.Validate
}

// NewHandler constructs the handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger, validator: validator.New()}
}

// MountRoutes attaches team routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listTeams)
	r.Post("/", h.createTeam)
	r.Get("/{id}", h.getTeam)
	r.Get("/{id}/members", h.listMembers)
	r.Post("/{id}/members", h.addMember)
	r.Post("/{id}/leader", h.assignLeader)
	r.Post("/{id}/members/{membershipID}/deactivate", h.deactivateMember)
}

type createTeamRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}

type membershipResponse struct {
	Membership membershipBody      `json:"membership"`
	Verdict    *validation.Verdict `json:"verdict,omitempty"`
}

type membershipBody struct {
	ID         int64  `json:"id"`
	TeamID     int64  `json:"team_id"`
	EmployeeID int64  `json:"employee_id"`
	Role       string `json:"role"`
	IsLeader   bool   `json:"is_leader"`
	IsActive   bool   `json:"is_active"`
}

func toMembershipBody(m Membership) membershipBody {
	return membershipBody{
		ID:         m.ID,
		TeamID:     m.TeamID,
		EmployeeID: m.EmployeeID,
		Role:       m.Role,
		IsLeader:   m.IsLeader,
		IsActive:   m.IsActive,
	}
}

func (h *Handler) createTeam(w http.ResponseWriter, r *http.Request) {
	var req createTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	team, err := h.service.CreateTeam(r.Context(), req.Name)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]any{"team": team})
}

func (h *Handler) getTeam(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		shared.WriteError(w, h.logger, shared.ErrNotFound)
		return
	}
	team, err := h.service.GetTeam(r.Context(), id)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"team": team})
}

func (h *Handler) listTeams(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageFromRequest(r)
	teams, total, err := h.service.ListTeams(r.Context(), perPage, (page-1)*perPage)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"teams":      teams,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

type addMemberRequest struct {
	EmployeeID int64  `json:"employee_id" validate:"required,gt=0"`
	Role       string `json:"role" validate:"max=60"`
	IsLeader   bool   `json:"is_leader"`
}

func (h *Handler) addMember(w http.ResponseWriter, r *http.Request) {
	teamID, err := idParam(r, "id")
	if err != nil {
		shared.WriteError(w, h.logger, shared.ErrNotFound)
		return
	}
	var req addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	m, verdict, err := h.service.AddMember(r.Context(), AddMemberInput{
		TeamID:     teamID,
		EmployeeID: req.EmployeeID,
		Role:       req.Role,
		IsLeader:   req.IsLeader,
	})
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, membershipResponse{Membership: toMembershipBody(m), Verdict: &verdict})
}

type assignLeaderRequest struct {
	EmployeeID int64 `json:"employee_id" validate:"required,gt=0"`
	Supersede  bool  `json:"supersede"`
}

func (h *Handler) assignLeader(w http.ResponseWriter, r *http.Request) {
	teamID, err := idParam(r, "id")
	if err != nil {
		shared.WriteError(w, h.logger, shared.ErrNotFound)
		return
	}
	var req assignLeaderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	m, verdict, err := h.service.AssignLeader(r.Context(), AssignLeaderInput{
		TeamID:     teamID,
		EmployeeID: req.EmployeeID,
		Supersede:  req.Supersede,
	})
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, membershipResponse{Membership: toMembershipBody(m), Verdict: &verdict})
}

func (h *Handler) deactivateMember(w http.ResponseWriter, r *http.Request) {
	membershipID, err := idParam(r, "membershipID")
	if err != nil {
		shared.WriteError(w, h.logger, shared.ErrNotFound)
		return
	}
	if err := h.service.DeactivateMember(r.Context(), membershipID); err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	teamID, err := idParam(r, "id")
	if err != nil {
		shared.WriteError(w, h.logger, shared.ErrNotFound)
		return
	}
	page, perPage := shared.PageFromRequest(r)
	req := ListMembersRequest{
		TeamID:     teamID,
		ActiveOnly: r.URL.Query().Get("active") == "true",
		Limit:      perPage,
		Offset:     (page - 1) * perPage,
	}
	members, total, err := h.service.ListMembers(r.Context(), req)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	bodies := make([]membershipBody, 0, len(members))
	for _, m := range members {
		bodies = append(bodies, toMembershipBody(m))
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"members":    bodies,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func idParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
