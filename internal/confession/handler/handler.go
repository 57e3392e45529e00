package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"confide/internal/confession"
	"confide/internal/platform/middleware"
	"confide/internal/transport/http/shared"
	dErrors "confide/pkg/domain-errors"
)

type Service interface {
	Create(ctx context.Context, in confession.CreateInput) (*confession.Confession, error)
	Get(ctx context.Context, id uuid.UUID) (*confession.Confession, error)
	List(ctx context.Context, category string, page, size int) (*confession.Page, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, category string, page, size int) (*confession.Page, error)
	Update(ctx context.Context, id, authorID uuid.UUID, in confession.UpdateInput) (*confession.Confession, error)
	Delete(ctx context.Context, id, authorID uuid.UUID) error
	Nearby(ctx context.Context, lon, lat, maxMeters float64) ([]*confession.Confession, error)
}

type Handler struct {
	confessions Service
	logger      *slog.Logger
}

func New(confessions Service, logger *slog.Logger) *Handler {
	return &Handler{confessions: confessions, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/api/confessions", func(r chi.Router) {
		r.Post("/create", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/nearby", h.handleNearby)
		r.Get("/author/{authorId}", h.handleListByAuthor)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

type createRequest struct {
	Text     string           `json:"text"`
	Category string           `json:"category"`
	Location confession.Point `json:"location"`
	Address  string           `json:"address"`
	AuthorID *uuid.UUID       `json:"authorId"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid create confession request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	c, err := h.confessions.Create(ctx, confession.CreateInput{
		Text:     req.Text,
		Category: req.Category,
		Location: req.Location,
		Address:  req.Address,
		AuthorID: req.AuthorID,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]any{
		"message":    "Confession created successfully.",
		"confession": c,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page, size := shared.Pagination(r)
	result, err := h.confessions.List(r.Context(), r.URL.Query().Get("category"), page, size)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleListByAuthor(w http.ResponseWriter, r *http.Request) {
	authorID, err := uuid.Parse(chi.URLParam(r, "authorId"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid author ID"))
		return
	}
	page, size := shared.Pagination(r)
	result, err := h.confessions.ListByAuthor(r.Context(), authorID, r.URL.Query().Get("category"), page, size)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid ID"))
		return
	}
	c, err := h.confessions.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, c)
}

type updateRequest struct {
	Text     string    `json:"text"`
	Category string    `json:"category"`
	AuthorID uuid.UUID `json:"authorId"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid ID"))
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	c, err := h.confessions.Update(ctx, id, req.AuthorID, confession.UpdateInput{
		Text:     req.Text,
		Category: req.Category,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"message":    "Confession updated",
		"confession": c,
	})
}

type deleteRequest struct {
	AuthorID uuid.UUID `json:"authorId"`
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid ID"))
		return
	}

	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.confessions.Delete(r.Context(), id, req.AuthorID); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "Confession deleted"})
}

func (h *Handler) handleNearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lon, lonErr := strconv.ParseFloat(q.Get("longitude"), 64)
	lat, latErr := strconv.ParseFloat(q.Get("latitude"), 64)
	if lonErr != nil || latErr != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "longitude and latitude are required"))
		return
	}
	maxDistance := 1000.0
	if v := q.Get("maxDistance"); v != "" {
		if d, err := strconv.ParseFloat(v, 64); err == nil && d > 0 {
			maxDistance = d
		}
	}

	confessions, err := h.confessions.Nearby(r.Context(), lon, lat, maxDistance)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"confessions": confessions})
}
