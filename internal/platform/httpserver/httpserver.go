package httpserver

import (
	"net/http"
	"time"
)

// New builds the API server. WriteTimeout is left unset because the live
// endpoint upgrades to websocket and holds the connection far past any
// reasonable request deadline.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
