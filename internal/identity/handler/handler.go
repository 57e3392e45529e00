package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"confide/internal/identity"
	"confide/internal/platform/middleware"
	"confide/internal/transport/http/shared"
	dErrors "confide/pkg/domain-errors"
)

// Service defines the identity operations the handler needs.
type Service interface {
	Register(ctx context.Context, password string) (*identity.Registration, error)
}

type Handler struct {
	identity Service
	logger   *slog.Logger
}

func New(identitySvc Service, logger *slog.Logger) *Handler {
	return &Handler{identity: identitySvc, logger: logger}
}

// Register registers the auth routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/auth/register", h.handleRegister)
}

type registerRequest struct {
	Password string `json:"password"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.WarnContext(ctx, "invalid register request",
				"request_id", middleware.GetRequestID(ctx),
				"error", err.Error(),
			)
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}
	}

	reg, err := h.identity.Register(ctx, req.Password)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, reg)
}
