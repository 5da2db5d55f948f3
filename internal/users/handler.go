package users

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lipiprint/lipiprint/internal/auth"
	"github.com/lipiprint/lipiprint/internal/platform/httpx"
	"github.com/lipiprint/lipiprint/internal/shared"
)

// Handler exposes profile and admin user management endpoints.
type Handler struct {
	svc      *Service
	validate *validator.Validate
}

// NewHandler constructs the handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

// MountRoutes registers authenticated profile routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/users/me", h.profile)
	r.Put("/users/me", h.updateProfile)
}

// MountAdminRoutes registers admin-only user management routes.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/users", h.list)
	r.Get("/users/{id}", h.get)
	r.Post("/users/{id}/block", h.setBlocked(true))
	r.Post("/users/{id}/unblock", h.setBlocked(false))
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	u, err := h.svc.Get(r.Context(), actor.ID)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	var req UpdateProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	u, err := h.svc.UpdateProfile(r.Context(), actor.ID, req)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := ListUsersRequest{Search: r.URL.Query().Get("search")}
	if v := r.URL.Query().Get("blocked"); v != "" {
		blocked := v == "true"
		req.Blocked = &blocked
	}
	req.Limit, req.Offset = shared.PageParams(r)

	results, total, err := h.svc.List(r.Context(), req)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shared.Page[User]{
		Items: results,
		Total: total,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	u, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

func (h *Handler) setBlocked(blocked bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
			return
		}
		actor, _ := auth.UserFromContext(r.Context())
		var actorID int64
		if actor != nil {
			actorID = actor.ID
		}
		if err := h.svc.SetBlocked(r.Context(), id, blocked, actorID); err != nil {
			h.respondStoreError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "blocked": blocked})
	}
}

func (h *Handler) respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrDuplicate):
		httpx.RespondError(w, httpx.ErrDuplicate)
	default:
		httpx.RespondError(w, err)
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
