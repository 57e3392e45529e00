package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"confide/internal/comment"
	"confide/internal/platform/middleware"
	"confide/internal/transport/http/shared"
	dErrors "confide/pkg/domain-errors"
)

type Service interface {
	Create(ctx context.Context, in comment.CreateInput) (*comment.Comment, error)
	ListByConfession(ctx context.Context, confessionID uuid.UUID, page, size int) (*comment.Page, error)
	Edit(ctx context.Context, id, authorID uuid.UUID, text string) (*comment.Comment, error)
	Delete(ctx context.Context, id, authorID uuid.UUID) error
}

type Handler struct {
	comments Service
	logger   *slog.Logger
}

func New(comments Service, logger *slog.Logger) *Handler {
	return &Handler{comments: comments, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/api/comment", func(r chi.Router) {
		r.Post("/add", h.handleAdd)
		r.Get("/confession/{confessionId}", h.handleList)
		r.Put("/{id}", h.handleEdit)
		r.Delete("/{id}", h.handleDelete)
	})
}

type addRequest struct {
	ConfessionID    uuid.UUID  `json:"confessionId"`
	Text            string     `json:"text"`
	Username        string     `json:"username"`
	AuthorID        *uuid.UUID `json:"authorId"`
	QuotedCommentID *uuid.UUID `json:"quotedCommentId"`
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid add comment request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.ConfessionID == uuid.Nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "confessionId is required"))
		return
	}

	c, err := h.comments.Create(ctx, comment.CreateInput{
		ConfessionID:    req.ConfessionID,
		Text:            req.Text,
		Username:        req.Username,
		AuthorID:        req.AuthorID,
		QuotedCommentID: req.QuotedCommentID,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "Comment added",
		"comment": c,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	confessionID, err := uuid.Parse(chi.URLParam(r, "confessionId"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid confession ID"))
		return
	}
	page, size := shared.Pagination(r)
	result, err := h.comments.ListByConfession(r.Context(), confessionID, page, size)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, result)
}

type editRequest struct {
	Text     string    `json:"text"`
	AuthorID uuid.UUID `json:"authorId"`
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid ID"))
		return
	}

	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	c, err := h.comments.Edit(r.Context(), id, req.AuthorID, req.Text)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Comment updated",
		"comment": c,
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

	if err := h.comments.Delete(r.Context(), id, req.AuthorID); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted"})
}
