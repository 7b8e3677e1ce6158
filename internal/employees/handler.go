package employees

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/planwise-hr/planwise/internal/shared"
)

// Handler exposes employee master data over JSON. There is no service
// layer here: no scheduling rules apply to the records themselves.
type Handler struct {
	repo      Repository
	logger    *slog.Logger
	validator *validator.Validate
}

// NewHandler constructs the handler.
func NewHandler(repo Repository, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, logger: logger, validator: validator.New()}
}

// MountRoutes attaches employee routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Post("/{id}/deactivate", h.deactivate)
}

type createRequest struct {
	FullName string `json:"full_name" validate:"required,min=1,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Position string `json:"position" validate:"max=120"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	e, err := h.repo.Create(r.Context(), CreateEmployeeInput{
		FullName: req.FullName,
		Email:    req.Email,
		Position: req.Position,
	})
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]any{"employee": e})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.WriteError(w, h.logger, shared.ErrNotFound)
		return
	}
	e, err := h.repo.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"employee": e})
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.WriteError(w, h.logger, shared.ErrNotFound)
		return
	}
	if err := h.repo.SetActive(r.Context(), id, false); err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageFromRequest(r)
	req := ListEmployeesRequest{
		Search:     r.URL.Query().Get("q"),
		ActiveOnly: r.URL.Query().Get("active") == "true",
		Limit:      perPage,
		Offset:     (page - 1) * perPage,
	}
	items, total, err := h.repo.List(r.Context(), req)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"employees":  items,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}
