package orders

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lipiprint/lipiprint/internal/auth"
	"github.com/lipiprint/lipiprint/internal/platform/httpx"
	"github.com/lipiprint/lipiprint/internal/pricingrules"
	"github.com/lipiprint/lipiprint/internal/shared"
)

// Handler exposes the order lifecycle over HTTP.
type Handler struct {
	svc      *Service
	validate *validator.Validate
}

// NewHandler constructs the handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

// MountRoutes registers authenticated customer routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/orders", h.create)
	r.Get("/orders", h.list)
	r.Get("/orders/{id}", h.get)
	r.Post("/orders/{id}/cancel", h.cancel)
}

// MountAdminRoutes registers admin-only lifecycle routes.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/orders", h.adminList)
	r.Get("/orders/{id}", h.adminGet)
	r.Post("/orders/{id}/status", h.updateStatus)
	r.Post("/orders/{id}/shipment", h.assignShipment)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	var req CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	order, err := h.svc.Create(r.Context(), actor.ID, req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	req := listParams(r)
	req.UserID = &actor.ID

	results, total, err := h.svc.List(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shared.Page[Order]{Items: results, Total: total})
}

func (h *Handler) adminList(w http.ResponseWriter, r *http.Request) {
	req := listParams(r)
	if v := r.URL.Query().Get("user_id"); v != "" {
		if userID, err := strconv.ParseInt(v, 10, 64); err == nil {
			req.UserID = &userID
		}
	}
	results, total, err := h.svc.List(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shared.Page[Order]{Items: results, Total: total})
}

func listParams(r *http.Request) ListOrdersRequest {
	var req ListOrdersRequest
	if v := r.URL.Query().Get("status"); v != "" {
		status := OrderStatus(v)
		req.Status = &status
	}
	if v := r.URL.Query().Get("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			req.DateFrom = &t
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			req.DateTo = &t
		}
	}
	req.Limit, req.Offset = shared.PageParams(r)
	return req
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	order, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if order.UserID != actor.ID && !actor.IsAdmin() {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) adminGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	order, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	var req UpdateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	order, err := h.svc.UpdateStatus(r.Context(), id, req.Status, actorID(actor))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) assignShipment(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	var req AssignShipmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	order, err := h.svc.AssignShipment(r.Context(), id, req, actorID(actor))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	existing, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if existing.UserID != actor.ID && !actor.IsAdmin() {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	var req CancelOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	order, err := h.svc.Cancel(r.Context(), id, req.Reason, actor.ID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrNotShippable):
		httpx.RespondError(w, httpx.ErrConflict)
	case errors.Is(err, ErrDuplicateRequest):
		httpx.RespondError(w, httpx.ErrDuplicate)
	case errors.Is(err, pricingrules.ErrNoCombination), errors.Is(err, pricingrules.ErrUnknownBinding):
		httpx.RespondError(w, httpx.ErrValidation)
	default:
		httpx.RespondError(w, err)
	}
}

func actorID(actor *auth.Identity) int64 {
	if actor == nil {
		return 0
	}
	return actor.ID
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
