package files

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lipiprint/lipiprint/internal/auth"
	"github.com/lipiprint/lipiprint/internal/platform/httpx"
	"github.com/lipiprint/lipiprint/internal/shared"
)

const maxUploadBytes = 50 << 20 // 50 MiB

// Handler exposes upload and download endpoints.
type Handler struct {
	svc *Service
}

// NewHandler constructs the handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// MountRoutes registers authenticated file routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/files", h.upload)
	r.Get("/files", h.list)
	r.Get("/files/{id}", h.get)
	r.Get("/files/{id}/download", h.download)
	r.Delete("/files/{id}", h.delete)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Upload", err.Error())
		return
	}
	src, header, err := r.FormFile("file")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Upload", "file field is required")
		return
	}
	defer src.Close()

	pages, _ := strconv.Atoi(r.FormValue("pages"))
	f, err := h.svc.Upload(r.Context(), actor.ID, UploadRequest{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Pages:       pages,
		Content:     src,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, f)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	limit, offset := shared.PageParams(r)
	results, total, err := h.svc.ListByUser(r.Context(), actor.ID, limit, offset)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shared.Page[File]{Items: results, Total: total})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	f, err := h.svc.Get(r.Context(), id, actor.ID, actor.IsAdmin())
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, f)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	f, rc, err := h.svc.Open(r.Context(), id, actor.ID, actor.IsAdmin())
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+f.OriginalFilename+`"`)
	w.Header().Set("Content-Length", strconv.FormatInt(f.SizeBytes, 10))
	_, _ = io.Copy(w, rc)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id, actor.ID, actor.IsAdmin()); err != nil {
		h.respondStoreError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"id": id})
}

func (h *Handler) actorAndID(w http.ResponseWriter, r *http.Request) (*auth.Identity, int64, bool) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return nil, 0, false
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return nil, 0, false
	}
	return actor, id, true
}

func (h *Handler) respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrForbidden):
		httpx.RespondError(w, httpx.ErrForbidden)
	case errors.Is(err, ErrInUse):
		httpx.RespondError(w, httpx.ErrConflict)
	default:
		httpx.RespondError(w, err)
	}
}
