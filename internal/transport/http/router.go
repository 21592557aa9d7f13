package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter mounts the websocket and JSON endpoints.
func NewRouter(ws *WSHandler, api *APIHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ws", ws.ServeWS)
	r.Get("/leaderboard", api.TopScores)
	r.Get("/packs", api.Packs)
	return r
}
