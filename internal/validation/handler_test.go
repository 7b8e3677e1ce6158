package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func postValidate(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/validate", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestDryRunReportsOverlapWithoutWriting(t *testing.T) {
	store := newMemStore()
	store.vacations[7] = []VacationInterval{
		{ID: 41, Start: d(2025, time.June, 1), End: d(2025, time.June, 10), Status: VacationApproved},
	}
	h := NewHandler(NewEngine(store, DefaultPolicy(), nil), nil)

	rr := postValidate(t, h, `{
		"kind": "vacation.create",
		"vacation": {"employee_id": 7, "start_date": "2025-06-05", "end_date": "2025-06-12"}
	}`)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	require.Contains(t, body, `"is_valid":false`)
	require.Contains(t, body, CodeVacationOverlapApproved)
}

func TestDryRunValidChange(t *testing.T) {
	h := NewHandler(NewEngine(newMemStore(), DefaultPolicy(), nil), nil)

	rr := postValidate(t, h, `{
		"kind": "workload.create",
		"workload": {"employee_id": 1, "project_id": 2, "work_date": "2025-06-05", "hours": 4}
	}`)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"is_valid":true`)
}

func TestDryRunStructuralErrorIs400(t *testing.T) {
	h := NewHandler(NewEngine(newMemStore(), DefaultPolicy(), nil), nil)

	rr := postValidate(t, h, `{
		"kind": "workload.create",
		"workload": {"employee_id": 1, "project_id": 2, "work_date": "2025-06-05", "hours": 26}
	}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDryRunRejectsUnknownKind(t *testing.T) {
	h := NewHandler(NewEngine(newMemStore(), DefaultPolicy(), nil), nil)

	rr := postValidate(t, h, `{"kind": "project.create"}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "unknown kind")
}

func TestDryRunBadDateIs400(t *testing.T) {
	h := NewHandler(NewEngine(newMemStore(), DefaultPolicy(), nil), nil)

	rr := postValidate(t, h, `{
		"kind": "vacation.create",
		"vacation": {"employee_id": 7, "start_date": "05.06.2025", "end_date": "2025-06-12"}
	}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}
