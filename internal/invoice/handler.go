package invoice

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lipiprint/lipiprint/internal/auth"
	"github.com/lipiprint/lipiprint/internal/orders"
	"github.com/lipiprint/lipiprint/internal/platform/httpx"
)

// Handler serves invoice documents for orders.
type Handler struct {
	svc *Service
}

// NewHandler constructs the handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// MountRoutes registers authenticated invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/orders/{id}/invoice", h.html)
	r.Get("/orders/{id}/invoice.pdf", h.pdf)
	r.Get("/orders/{id}/invoice.csv", h.csv)
}

func (h *Handler) html(w http.ResponseWriter, r *http.Request) {
	html, _, ok := h.compose(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

func (h *Handler) pdf(w http.ResponseWriter, r *http.Request) {
	html, o, ok := h.compose(w, r)
	if !ok {
		return
	}
	pdf, err := h.svc.renderer.RenderHTML(r.Context(), html)
	if err != nil {
		httpx.Problem(w, http.StatusBadGateway, "Render Failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+Number(o.ID)+`.pdf"`)
	_, _ = w.Write(pdf)
}

func (h *Handler) csv(w http.ResponseWriter, r *http.Request) {
	o, ok := h.loadOrder(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+Number(o.ID)+`.csv"`)
	if err := WriteCSV(w, o); err != nil {
		httpx.RespondError(w, err)
	}
}

func (h *Handler) compose(w http.ResponseWriter, r *http.Request) (string, *orders.Order, bool) {
	o, ok := h.loadOrder(w, r)
	if !ok {
		return "", nil, false
	}
	html, err := h.svc.composer.Compose(o)
	if err != nil {
		httpx.RespondError(w, err)
		return "", nil, false
	}
	return html, o, true
}

func (h *Handler) loadOrder(w http.ResponseWriter, r *http.Request) (*orders.Order, bool) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return nil, false
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return nil, false
	}
	o, err := h.svc.orders.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
		} else {
			httpx.RespondError(w, err)
		}
		return nil, false
	}
	if o.UserID != actor.ID && !actor.IsAdmin() {
		httpx.RespondError(w, httpx.ErrForbidden)
		return nil, false
	}
	return o, true
}
