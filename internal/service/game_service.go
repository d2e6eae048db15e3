package service

import (
	"context"

	"gridclash/internal/model"
	"gridclash/internal/repository"
)

// GameService handles game definition CRUD operations
type GameService struct {
	gameRepo repository.GameRepo
}

// NewGameService creates a new game service
func NewGameService(gameRepo repository.GameRepo) *GameService {
	return &GameService{
		gameRepo: gameRepo,
	}
}

// Create creates a new game definition
func (s *GameService) Create(ctx context.Context, game *model.Game) error {
	return s.gameRepo.Create(ctx, game)
}

// GetByID retrieves a game definition by ID
func (s *GameService) GetByID(ctx context.Context, id string) (*model.Game, error) {
	return s.gameRepo.GetByID(ctx, id)
}

// List retrieves all game definitions
func (s *GameService) List(ctx context.Context) ([]*model.Game, error) {
	return s.gameRepo.List(ctx)
}

// Update replaces an existing game definition
func (s *GameService) Update(ctx context.Context, game *model.Game) error {
	return s.gameRepo.Update(ctx, game)
}

// Delete removes a game definition
func (s *GameService) Delete(ctx context.Context, id string) error {
	return s.gameRepo.Delete(ctx, id)
}
