package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"confide/internal/platform/middleware"
	"confide/internal/reaction"
	"confide/internal/transport/http/shared"
	dErrors "confide/pkg/domain-errors"
)

type Service interface {
	Upsert(ctx context.Context, kind reaction.SubjectKind, subjectID, userID uuid.UUID, emoji string) (*reaction.Result, error)
	Find(ctx context.Context, kind reaction.SubjectKind, subjectID, userID uuid.UUID) (*reaction.Record, error)
}

type Handler struct {
	reactions Service
	logger    *slog.Logger
}

func New(reactions Service, logger *slog.Logger) *Handler {
	return &Handler{reactions: reactions, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/api/confessions/react", h.react(reaction.SubjectConfession, "confessionId"))
	r.Post("/api/comment/react", h.react(reaction.SubjectComment, "commentId"))
	r.Get("/api/confessions/{subjectId}/reaction/{userId}", h.find(reaction.SubjectConfession))
	r.Get("/api/comment/{subjectId}/reaction/{userId}", h.find(reaction.SubjectComment))
}

func (h *Handler) react(kind reaction.SubjectKind, idField string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			h.logger.WarnContext(ctx, "invalid react request",
				"request_id", middleware.GetRequestID(ctx),
				"error", err.Error(),
			)
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}

		subjectID, err := parseID(body[idField])
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, idField+" is required"))
			return
		}
		userID, err := h.resolveUserID(ctx, body["userId"])
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		var emoji string
		if raw, ok := body["emoji"]; ok {
			if err := json.Unmarshal(raw, &emoji); err != nil {
				shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid emoji"))
				return
			}
		}

		result, err := h.reactions.Upsert(ctx, kind, subjectID, userID, emoji)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		shared.WriteJSON(w, http.StatusOK, result)
	}
}

func (h *Handler) find(kind reaction.SubjectKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subjectID, err := uuid.Parse(chi.URLParam(r, "subjectId"))
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid subject ID"))
			return
		}
		userID, err := uuid.Parse(chi.URLParam(r, "userId"))
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user ID"))
			return
		}

		record, err := h.reactions.Find(r.Context(), kind, subjectID, userID)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		shared.WriteJSON(w, http.StatusOK, map[string]any{
			"hasReacted": record != nil,
			"reaction":   record,
		})
	}
}

// resolveUserID prefers the explicit body field, then the bearer identity.
func (h *Handler) resolveUserID(ctx context.Context, raw json.RawMessage) (uuid.UUID, error) {
	if id, err := parseID(raw); err == nil {
		return id, nil
	}
	if claim := middleware.GetUserID(ctx); claim != "" {
		if id, err := uuid.Parse(claim); err == nil {
			return id, nil
		}
	}
	return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "userId is required")
}

func parseID(raw json.RawMessage) (uuid.UUID, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(s)
}
