package users

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lipiprint/lipiprint/internal/auth"
	"github.com/lipiprint/lipiprint/internal/platform/httpx"
)

// Identity adapts a stored user to the authentication middleware.
func (s *Service) Identity(ctx context.Context, userID int64) (*auth.Identity, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &auth.Identity{ID: u.ID, Role: string(u.Role), Blocked: u.Blocked}, nil
}

// AuthHandler exposes registration and token issuing endpoints.
type AuthHandler struct {
	svc      *Service
	tokens   *auth.TokenStore
	validate *validator.Validate
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(svc *Service, tokens *auth.TokenStore) *AuthHandler {
	return &AuthHandler{svc: svc, tokens: tokens, validate: validator.New()}
}

// MountRoutes registers the public authentication routes.
func (h *AuthHandler) MountRoutes(r chi.Router) {
	r.Post("/auth/register", h.register)
	r.Post("/auth/login", h.login)
	r.Post("/auth/logout", h.logout)
}

type tokenResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	u, err := h.svc.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			httpx.RespondError(w, httpx.ErrDuplicate)
			return
		}
		httpx.RespondError(w, err)
		return
	}
	token, err := h.tokens.Issue(r.Context(), u.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, tokenResponse{Token: token, User: u})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	u, err := h.svc.Authenticate(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrBadCredentials):
			httpx.RespondError(w, httpx.ErrUnauthorized)
		case errors.Is(err, ErrBlocked):
			httpx.RespondError(w, httpx.ErrForbidden)
		default:
			httpx.RespondError(w, err)
		}
		return
	}
	token, err := h.tokens.Issue(r.Context(), u.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tokenResponse{Token: token, User: u})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.tokens.Revoke(r.Context(), auth.BearerToken(r)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
