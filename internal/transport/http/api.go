package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"creed-trivia/internal/domain"
	"creed-trivia/internal/packs"
)

const maxLeaderboardLimit = 100

// Leaderboard serves ranked results.
type Leaderboard interface {
	Top(ctx context.Context, n int) ([]domain.SessionResult, error)
}

// PackLibrary reports the current question pool.
type PackLibrary interface {
	Load(ctx context.Context) packs.Pool
}

type APIHandler struct {
	board        Leaderboard
	library      PackLibrary
	defaultLimit int
}

func NewAPIHandler(board Leaderboard, library PackLibrary, defaultLimit int) *APIHandler {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	return &APIHandler{board: board, library: library, defaultLimit: defaultLimit}
}

// TopScores handles GET /leaderboard?limit=N.
func (h *APIHandler) TopScores(w http.ResponseWriter, r *http.Request) {
	limit := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxLeaderboardLimit)
	}

	entries, err := h.board.Top(r.Context(), limit)
	if errors.Is(err, domain.ErrPersistenceUnavailable) {
		http.Error(w, "leaderboard unavailable", http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		http.Error(w, "leaderboard error", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []domain.SessionResult{}
	}
	writeJSON(w, map[string]any{"entries": entries})
}

// Packs handles GET /packs with per-pack load diagnostics.
func (h *APIHandler) Packs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.library.Load(r.Context()))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
