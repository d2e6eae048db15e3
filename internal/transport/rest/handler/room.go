package handler

import (
	"encoding/json"
	"net/http"

	"gridclash/internal/model"
	"gridclash/internal/service"
)

// RoomHandler handles room creation. Everything past creation travels over
// the room's websocket.
type RoomHandler struct {
	roomSvc *service.RoomService
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(roomSvc *service.RoomService) *RoomHandler {
	return &RoomHandler{
		roomSvc: roomSvc,
	}
}

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	GameID string          `json:"gameId"`
	Size   model.SizeClass `json:"size"`
}

// Create handles POST /v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.GameID == "" {
		writeError(w, http.StatusBadRequest, "gameId is required")
		return
	}

	room, err := h.roomSvc.CreateRoom(r.Context(), req.GameID, req.Size)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"roomCode": room.Code})
}
