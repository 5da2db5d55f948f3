package pricingrules

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lipiprint/lipiprint/internal/platform/httpx"
)

// Handler serves pricing configuration and quote endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes attaches customer-facing pricing endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/pricing/rules", h.ShowRuleSet)
	r.Post("/pricing/quote", h.Quote)
}

// MountAdminRoutes attaches the admin CRUD endpoints.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Post("/pricing/discounts", h.CreateDiscountRule)
	r.Put("/pricing/discounts/{id}", h.UpdateDiscountRule)
	r.Delete("/pricing/discounts/{id}", h.DeleteDiscountRule)

	r.Post("/pricing/combinations", h.CreateServiceCombination)
	r.Put("/pricing/combinations/{id}", h.UpdateServiceCombination)
	r.Delete("/pricing/combinations/{id}", h.DeleteServiceCombination)

	r.Post("/pricing/bindings", h.CreateBindingOption)
	r.Put("/pricing/bindings/{id}", h.UpdateBindingOption)
	r.Delete("/pricing/bindings/{id}", h.DeleteBindingOption)
}

// ShowRuleSet returns the active pricing configuration.
func (h *Handler) ShowRuleSet(w http.ResponseWriter, r *http.Request) {
	rs, err := h.service.RuleSet(r.Context())
	if err != nil {
		h.logger.Error("load rule set", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rs)
}

// Quote prices a set of print jobs without creating an order.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}
	quote, err := h.service.Quote(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrNoCombination) || errors.Is(err, ErrUnknownBinding) {
			httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
			return
		}
		h.logger.Error("quote failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

func (h *Handler) CreateDiscountRule(w http.ResponseWriter, r *http.Request) {
	var req UpsertDiscountRuleRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	rule, err := h.service.CreateDiscountRule(r.Context(), req)
	if err != nil {
		h.logger.Error("create discount rule", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rule)
}

func (h *Handler) UpdateDiscountRule(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req UpsertDiscountRuleRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	rule, err := h.service.UpdateDiscountRule(r.Context(), id, req)
	if err != nil {
		h.respondStoreError(w, err, "update discount rule")
		return
	}
	httpx.JSON(w, http.StatusOK, rule)
}

func (h *Handler) DeleteDiscountRule(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteDiscountRule(r.Context(), id); err != nil {
		h.respondStoreError(w, err, "delete discount rule")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateServiceCombination(w http.ResponseWriter, r *http.Request) {
	var req UpsertServiceCombinationRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	comb, err := h.service.CreateServiceCombination(r.Context(), req)
	if err != nil {
		h.logger.Error("create service combination", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, comb)
}

func (h *Handler) UpdateServiceCombination(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req UpsertServiceCombinationRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	comb, err := h.service.UpdateServiceCombination(r.Context(), id, req)
	if err != nil {
		h.respondStoreError(w, err, "update service combination")
		return
	}
	httpx.JSON(w, http.StatusOK, comb)
}

func (h *Handler) DeleteServiceCombination(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteServiceCombination(r.Context(), id); err != nil {
		h.respondStoreError(w, err, "delete service combination")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateBindingOption(w http.ResponseWriter, r *http.Request) {
	var req UpsertBindingOptionRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	binding, err := h.service.CreateBindingOption(r.Context(), req)
	if err != nil {
		h.logger.Error("create binding option", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, binding)
}

func (h *Handler) UpdateBindingOption(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req UpsertBindingOptionRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	binding, err := h.service.UpdateBindingOption(r.Context(), id, req)
	if err != nil {
		h.respondStoreError(w, err, "update binding option")
		return
	}
	httpx.JSON(w, http.StatusOK, binding)
}

func (h *Handler) DeleteBindingOption(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteBindingOption(r.Context(), id); err != nil {
		h.respondStoreError(w, err, "delete binding option")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeValid(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return false
	}
	return true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "path id must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondStoreError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, ErrNotFound) {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
