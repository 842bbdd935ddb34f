package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"menuapi/internal/menu/models"
	"menuapi/internal/menu/service"
	"menuapi/pkg/domain"
	dErrors "menuapi/pkg/domain-errors"
	"menuapi/pkg/platform/httputil"
	"menuapi/pkg/requestcontext"
)

// Service is the menu use-case surface the handler depends on.
type Service interface {
	Search(ctx context.Context, name string) ([]*models.Menu, error)
	SearchPaged(ctx context.Context, name string, page, pageSize int) (*models.Page, error)
	Get(ctx context.Context, id domain.MenuID) (*models.Menu, error)
	Create(ctx context.Context, in service.Input) (*models.Menu, error)
	Update(ctx context.Context, id domain.MenuID, in service.Input) (*models.Menu, error)
	Delete(ctx context.Context, id domain.MenuID) error
}

// Handler serves the /api/menus endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts menu endpoints on r. Authentication is enforced by the caller.
func (h *Handler) Register(r chi.Router) {
	r.Route("/menus", func(r chi.Router) {
		r.Get("/all", h.HandleSearch)
		r.Get("/", h.HandleSearchPaged)
		r.Post("/", h.HandleCreate)
		r.Get("/{id}", h.HandleGet)
		r.Put("/{id}", h.HandleUpdate)
		r.Delete("/{id}", h.HandleDelete)
	})
}

// HandleSearch handles GET /menus/all?nome=.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	menus, err := h.service.Search(ctx, r.URL.Query().Get("nome"))
	if err != nil {
		h.fail(ctx, w, "menu search failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, menus)
}

// HandleSearchPaged handles GET /menus?nome=&page=&pageSize=. Missing or
// unparseable paging values fall back to the defaults.
func (h *Handler) HandleSearchPaged(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))

	result, err := h.service.SearchPaged(ctx, q.Get("nome"), page, pageSize)
	if err != nil {
		h.fail(ctx, w, "paged menu search failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseMenuID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	m, err := h.service.Get(ctx, id)
	if err != nil {
		h.fail(ctx, w, "menu lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[MenuRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	m, err := h.service.Create(ctx, req.input())
	if err != nil {
		h.fail(ctx, w, "menu creation failed", err)
		return
	}
	w.Header().Set("Location", "/api/menus/"+m.ID.String())
	httputil.WriteJSON(w, http.StatusCreated, m)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseMenuID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[MenuRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	m, err := h.service.Update(ctx, id, req.input())
	if err != nil {
		h.fail(ctx, w, "menu update failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseMenuID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(ctx, id); err != nil {
		h.fail(ctx, w, "menu deletion failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fail logs err and writes the mapped error response. Client errors are
// logged at warn level.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	level := slog.LevelWarn
	if _, ok := dErrors.As(err); !ok || dErrors.Is(err, dErrors.CodeInternal) {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
