package orders

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lipiprint/lipiprint/internal/auth"
	"github.com/lipiprint/lipiprint/internal/platform/httpx"
)

func newTestRouter(svc *Service) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()
	h.MountRoutes(r)
	r.Route("/admin", h.MountAdminRoutes)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, body string, actor *auth.Identity) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		req = req.WithContext(auth.WithUser(req.Context(), actor))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const createOrderBody = `{
	"delivery_type": "DELIVERY",
	"delivery_address": "12 MG Road, Saharanpur",
	"is_intra_state": true,
	"print_jobs": [{"file_id": 1, "copies": 1, "options": "{\"color\":\"BW\"}"}]
}`

func TestCreateOrderEndpoint(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockQuoter{}, nil, nil)
	router := newTestRouter(svc)

	rec := doJSON(t, router, http.MethodPost, "/orders", createOrderBody, &auth.Identity{ID: 7, Role: "USER"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var order Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&order))
	assert.Equal(t, int64(7), order.UserID)
	assert.Equal(t, OrderStatusPending, order.Status)
	assert.Equal(t, 148.0, order.GrandTotal)
	assert.Len(t, order.PrintJobs, 1)
}

func TestCreateOrderEndpointUnauthenticated(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockQuoter{}, nil, nil)
	router := newTestRouter(svc)

	rec := doJSON(t, router, http.MethodPost, "/orders", createOrderBody, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateOrderEndpointMalformedBody(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockQuoter{}, nil, nil)
	router := newTestRouter(svc)

	rec := doJSON(t, router, http.MethodPost, "/orders", `{"delivery_type":`, &auth.Identity{ID: 7})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrderEndpointValidation(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockQuoter{}, nil, nil)
	router := newTestRouter(svc)

	// DELIVERY without address, no print jobs.
	rec := doJSON(t, router, http.MethodPost, "/orders", `{"delivery_type":"DELIVERY"}`, &auth.Identity{ID: 7})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var problem httpx.ProblemDetail
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&problem))
	assert.Equal(t, http.StatusBadRequest, problem.Status)
	assert.Equal(t, "Validation Failed", problem.Title)
}

func TestGetOrderOwnership(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockQuoter{}, nil, nil)
	router := newTestRouter(svc)

	rec := doJSON(t, router, http.MethodPost, "/orders", createOrderBody, &auth.Identity{ID: 7, Role: "USER"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/orders/1", "", &auth.Identity{ID: 8, Role: "USER"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/orders/1", "", &auth.Identity{ID: 8, Role: "ADMIN"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/orders/1", "", &auth.Identity{ID: 7, Role: "USER"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetOrderEndpointNotFound(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockQuoter{}, nil, nil)
	router := newTestRouter(svc)

	rec := doJSON(t, router, http.MethodGet, "/orders/99", "", &auth.Identity{ID: 7})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateStatusEndpointIllegalTransition(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockQuoter{}, nil, nil)
	router := newTestRouter(svc)

	rec := doJSON(t, router, http.MethodPost, "/orders", createOrderBody, &auth.Identity{ID: 7})
	require.Equal(t, http.StatusCreated, rec.Code)

	// PENDING cannot jump straight to PRINTED.
	rec = doJSON(t, router, http.MethodPost, "/admin/orders/1/status", `{"status":"PRINTED"}`, &auth.Identity{ID: 1, Role: "ADMIN"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/admin/orders/1/status", `{"status":"PROCESSING"}`, &auth.Identity{ID: 1, Role: "ADMIN"})
	require.Equal(t, http.StatusOK, rec.Code)

	var order Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&order))
	assert.Equal(t, OrderStatusProcessing, order.Status)
}

func TestUpdateStatusEndpointRejectsUnknownStatus(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockQuoter{}, nil, nil)
	router := newTestRouter(svc)

	rec := doJSON(t, router, http.MethodPost, "/admin/orders/1/status", `{"status":"SHIPPED"}`, &auth.Identity{ID: 1, Role: "ADMIN"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelEndpointForbiddenForOtherUser(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockQuoter{}, nil, nil)
	router := newTestRouter(svc)

	rec := doJSON(t, router, http.MethodPost, "/orders", createOrderBody, &auth.Identity{ID: 7})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/orders/1/cancel", `{"reason":"mine now"}`, &auth.Identity{ID: 8, Role: "USER"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
