package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"confide/internal/category"
	"confide/internal/platform/middleware"
	"confide/internal/transport/http/shared"
	dErrors "confide/pkg/domain-errors"
)

type Service interface {
	Create(ctx context.Context, name, description string) (*category.Category, error)
	List(ctx context.Context) ([]*category.Category, error)
}

type Handler struct {
	categories Service
	logger     *slog.Logger
}

func New(categories Service, logger *slog.Logger) *Handler {
	return &Handler{categories: categories, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/api/confession-categories", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/admin/create", h.handleCreate)
	})
}

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid create category request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	c, err := h.categories.Create(ctx, req.Name, req.Description)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if categories == nil {
		categories = []*category.Category{}
	}
	shared.WriteJSON(w, http.StatusOK, categories)
}
