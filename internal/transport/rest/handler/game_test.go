package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gridclash/internal/model"
	"gridclash/internal/service"
	"gridclash/internal/store"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoomService(repo *fakeGameRepo) *service.RoomService {
	return service.NewRoomService(store.NewRoomStore(), repo, nil, zerolog.Nop())
}

// fakeGameRepo keeps game documents in memory
type fakeGameRepo struct {
	games  map[string]*model.Game
	nextID int
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{games: make(map[string]*model.Game)}
}

func (r *fakeGameRepo) Create(_ context.Context, game *model.Game) error {
	r.nextID++
	game.ID = fmt.Sprintf("game-%d", r.nextID)
	stored := *game
	r.games[game.ID] = &stored
	return nil
}

func (r *fakeGameRepo) GetByID(_ context.Context, id string) (*model.Game, error) {
	game, ok := r.games[id]
	if !ok {
		return nil, nil
	}
	copied := *game
	return &copied, nil
}

func (r *fakeGameRepo) List(_ context.Context) ([]*model.Game, error) {
	out := make([]*model.Game, 0, len(r.games))
	for _, game := range r.games {
		copied := *game
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeGameRepo) Update(_ context.Context, game *model.Game) error {
	stored := *game
	r.games[game.ID] = &stored
	return nil
}

func (r *fakeGameRepo) Delete(_ context.Context, id string) error {
	delete(r.games, id)
	return nil
}

func gameRouter(repo *fakeGameRepo) http.Handler {
	h := NewGameHandler(service.NewGameService(repo))
	r := mux.NewRouter()
	r.HandleFunc("/v1/games", h.Create).Methods("POST")
	r.HandleFunc("/v1/games", h.List).Methods("GET")
	r.HandleFunc("/v1/games/{gameId}", h.Get).Methods("GET")
	r.HandleFunc("/v1/games/{gameId}", h.Update).Methods("PUT")
	r.HandleFunc("/v1/games/{gameId}", h.Delete).Methods("DELETE")
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGameCRUD(t *testing.T) {
	repo := newFakeGameRepo()
	router := gameRouter(repo)

	t.Run("create", func(t *testing.T) {
		rec := doJSON(t, router, "POST", "/v1/games", SaveGameRequest{
			Name:    "arena",
			Size:    model.SizeSmall,
			Visible: true,
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp["gameId"])
	})

	t.Run("create without a name is rejected", func(t *testing.T) {
		rec := doJSON(t, router, "POST", "/v1/games", SaveGameRequest{Size: model.SizeSmall})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("create with an unknown size is rejected", func(t *testing.T) {
		rec := doJSON(t, router, "POST", "/v1/games", SaveGameRequest{Name: "x", Size: "huge"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("get round-trips the document", func(t *testing.T) {
		rec := doJSON(t, router, "GET", "/v1/games/game-1", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var game model.Game
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &game))
		assert.Equal(t, "arena", game.Name)
		assert.Equal(t, model.SizeSmall, game.Size)
	})

	t.Run("get unknown id is 404", func(t *testing.T) {
		rec := doJSON(t, router, "GET", "/v1/games/nope", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("list", func(t *testing.T) {
		rec := doJSON(t, router, "GET", "/v1/games", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var games []model.Game
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &games))
		assert.Len(t, games, 1)
	})

	t.Run("update", func(t *testing.T) {
		rec := doJSON(t, router, "PUT", "/v1/games/game-1", SaveGameRequest{
			Name: "arena v2",
			Size: model.SizeMedium,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		stored, _ := repo.GetByID(context.Background(), "game-1")
		assert.Equal(t, "arena v2", stored.Name)
		assert.Equal(t, model.SizeMedium, stored.Size)
	})

	t.Run("update unknown id is 404", func(t *testing.T) {
		rec := doJSON(t, router, "PUT", "/v1/games/nope", SaveGameRequest{Name: "x", Size: model.SizeSmall})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec := doJSON(t, router, "DELETE", "/v1/games/game-1", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, router, "GET", "/v1/games/game-1", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCreateRoomEndpoint(t *testing.T) {
	repo := newFakeGameRepo()
	game := &model.Game{Name: "arena", Size: model.SizeSmall}
	require.NoError(t, repo.Create(context.Background(), game))

	roomSvc := newRoomService(repo)
	h := NewRoomHandler(roomSvc)
	r := mux.NewRouter()
	r.HandleFunc("/v1/rooms", h.Create).Methods("POST")

	t.Run("creates a room with a 4-digit code", func(t *testing.T) {
		rec := doJSON(t, r, "POST", "/v1/rooms", CreateRoomRequest{GameID: game.ID, Size: model.SizeSmall})
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp["roomCode"], 4)
	})

	t.Run("missing gameId is rejected", func(t *testing.T) {
		rec := doJSON(t, r, "POST", "/v1/rooms", CreateRoomRequest{Size: model.SizeSmall})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown game is rejected", func(t *testing.T) {
		rec := doJSON(t, r, "POST", "/v1/rooms", CreateRoomRequest{GameID: "nope", Size: model.SizeSmall})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid size is rejected", func(t *testing.T) {
		rec := doJSON(t, r, "POST", "/v1/rooms", CreateRoomRequest{GameID: game.ID, Size: "huge"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
