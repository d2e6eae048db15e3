package rest

import (
	"net/http"
	"os"

	"gridclash/internal/cache"
	"gridclash/internal/service"
	"gridclash/internal/transport/rest/handler"
	"gridclash/internal/transport/ws"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	GameService *service.GameService
	RoomService *service.RoomService
	Leaderboard cache.LeaderboardCache
	WSHandler   *ws.Handler
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	gameHandler := handler.NewGameHandler(c.GameService)
	roomHandler := handler.NewRoomHandler(c.RoomService)
	leaderboardHandler := handler.NewLeaderboardHandler(c.Leaderboard)

	r.Use(corsMiddleware)

	v1 := r.PathPrefix("/v1").Subrouter()

	// Game definition CRUD (the map editor's persistence surface)
	v1.HandleFunc("/games", gameHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/games", gameHandler.List).Methods("GET", "OPTIONS")
	v1.HandleFunc("/games/{gameId}", gameHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/games/{gameId}", gameHandler.Update).Methods("PUT", "OPTIONS")
	v1.HandleFunc("/games/{gameId}", gameHandler.Delete).Methods("DELETE", "OPTIONS")

	// Room creation; everything in-room travels over the socket
	v1.HandleFunc("/rooms", roomHandler.Create).Methods("POST", "OPTIONS")

	v1.HandleFunc("/leaderboard", leaderboardHandler.Top).Methods("GET", "OPTIONS")

	// WebSocket route (join request in query params)
	v1.HandleFunc("/ws/rooms/{code}", c.WSHandler.RoomWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
