package live

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/mssola/useragent"

	"confide/internal/platform/middleware"
	"confide/internal/transport/http/shared"
	dErrors "confide/pkg/domain-errors"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers connect from arbitrary origins; the API is public.
	CheckOrigin: func(*http.Request) bool { return true },
}

type Handler struct {
	hub    *Hub
	logger *slog.Logger

	// openJoin lets unauthenticated clients connect and join any topic.
	// When off, a valid bearer identity is required to connect.
	openJoin bool
}

func NewHandler(hub *Hub, logger *slog.Logger, openJoin bool) *Handler {
	return &Handler{hub: hub, logger: logger, openJoin: openJoin}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/ws", h.handleConnect)
}

func (h *Handler) handleConnect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if !h.openJoin && userID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.WarnContext(ctx, "websocket upgrade failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		return
	}

	ua := useragent.New(r.Header.Get("User-Agent"))
	browser, version := ua.Browser()
	h.logger.InfoContext(ctx, "live connection established",
		"request_id", middleware.GetRequestID(ctx),
		"browser", browser,
		"browser_version", version,
		"os", ua.OS(),
		"mobile", ua.Mobile(),
	)

	NewClient(h.hub, conn, userID, h.logger).Start()
}
