package handler

import (
	"encoding/json"
	"net/http"

	"gridclash/internal/model"
	"gridclash/internal/service"

	"github.com/gorilla/mux"
)

// GameHandler handles game definition endpoints
type GameHandler struct {
	gameSvc *service.GameService
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameSvc *service.GameService) *GameHandler {
	return &GameHandler{
		gameSvc: gameSvc,
	}
}

// SaveGameRequest is the request body for creating or updating a game
type SaveGameRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Size        model.SizeClass     `json:"size"`
	Base        [][]model.LayerCell `json:"base"`
	Overlay     [][]model.LayerCell `json:"overlay"`
	Visible     bool                `json:"visible"`
}

// Create handles POST /v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req SaveGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if _, ok := model.SizeTable[req.Size]; !ok {
		writeError(w, http.StatusBadRequest, model.ReasonInvalidRoomSize)
		return
	}

	game := &model.Game{
		Name:        req.Name,
		Description: req.Description,
		Size:        req.Size,
		Base:        req.Base,
		Overlay:     req.Overlay,
		Visible:     req.Visible,
	}

	if err := h.gameSvc.Create(r.Context(), game); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"gameId": game.ID})
}

// List handles GET /v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.gameSvc.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if games == nil {
		games = []*model.Game{}
	}
	writeJSON(w, http.StatusOK, games)
}

// Get handles GET /v1/games/{gameId}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]

	game, err := h.gameSvc.GetByID(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if game == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	writeJSON(w, http.StatusOK, game)
}

// Update handles PUT /v1/games/{gameId}
func (h *GameHandler) Update(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]

	var req SaveGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	existing, err := h.gameSvc.GetByID(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	game := &model.Game{
		ID:          gameID,
		Name:        req.Name,
		Description: req.Description,
		Size:        req.Size,
		Base:        req.Base,
		Overlay:     req.Overlay,
		Visible:     req.Visible,
		CreatedAt:   existing.CreatedAt,
	}

	if err := h.gameSvc.Update(r.Context(), game); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, game)
}

// Delete handles DELETE /v1/games/{gameId}
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]

	if err := h.gameSvc.Delete(r.Context(), gameID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
