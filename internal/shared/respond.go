package shared

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/planwise-hr/planwise/internal/validation"
)

// WriteJSON encodes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error   string              `json:"error"`
	Verdict *validation.Verdict `json:"verdict,omitempty"`
}

// WriteError maps service errors onto HTTP statuses. Verdict conflicts are
// 409s carrying the full finding list so a client can render every problem
// in one round trip.
func WriteError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var conflict *validation.ConflictError
	switch {
	case errors.As(err, &conflict):
		WriteJSON(w, http.StatusConflict, errorBody{Error: conflict.Error(), Verdict: &conflict.Verdict})
	case errors.Is(err, ErrConflict), errors.Is(err, ErrIdempotencyConflict):
		WriteJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, ErrNotFound):
		WriteJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, validation.ErrInvalidRequest):
		WriteJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, validation.ErrUnavailable):
		// Indeterminate verdicts must never commit; surface as unavailable.
		WriteJSON(w, http.StatusServiceUnavailable, errorBody{Error: "validation unavailable, retry later"})
	default:
		if logger != nil {
			logger.Error("request failed", slog.Any("error", err))
		}
		WriteJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// Idempotent guards a write endpoint with an idempotency key. A missing
// header gets a minted key echoed back so clients can retry safely.
func Idempotent(store *IdempotencyStore, writePath string, newKey func() string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			key := r.Header.Get("Idempotency-Key")
			if key == "" {
				key = newKey()
			}
			if err := store.CheckAndInsert(r.Context(), key, writePath); err != nil {
				WriteError(w, nil, err)
				return
			}
			w.Header().Set("Idempotency-Key", key)
			next.ServeHTTP(w, r)
		})
	}
}
