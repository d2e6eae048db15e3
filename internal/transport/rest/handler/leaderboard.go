package handler

import (
	"net/http"
	"strconv"

	"gridclash/internal/cache"
)

// LeaderboardHandler serves the all-time victories leaderboard
type LeaderboardHandler struct {
	leaderboard cache.LeaderboardCache
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(leaderboard cache.LeaderboardCache) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboard: leaderboard,
	}
}

// Top handles GET /v1/leaderboard?limit=N
func (h *LeaderboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := h.leaderboard.GetTop(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if entries == nil {
		entries = []cache.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
