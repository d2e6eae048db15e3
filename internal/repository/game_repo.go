package repository

import (
	"context"
	"time"

	"gridclash/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// GameRepo persists game definitions (the board documents rooms are created from)
type GameRepo interface {
	Create(ctx context.Context, game *model.Game) error
	GetByID(ctx context.Context, id string) (*model.Game, error)
	List(ctx context.Context) ([]*model.Game, error)
	Update(ctx context.Context, game *model.Game) error
	Delete(ctx context.Context, id string) error
}

type gameRepo struct {
	collection *mongo.Collection
}

// NewGameRepo creates a Mongo-backed game repository
func NewGameRepo(db *mongo.Database) GameRepo {
	return &gameRepo{
		collection: db.Collection("games"),
	}
}

func (r *gameRepo) Create(ctx context.Context, game *model.Game) error {
	game.ID = primitive.NewObjectID().Hex()
	game.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, game)
	return err
}

func (r *gameRepo) GetByID(ctx context.Context, id string) (*model.Game, error) {
	var game model.Game
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&game)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // game not found
		}
		return nil, err
	}
	return &game, nil
}

func (r *gameRepo) List(ctx context.Context) ([]*model.Game, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var games []*model.Game
	if err := cursor.All(ctx, &games); err != nil {
		return nil, err
	}
	return games, nil
}

func (r *gameRepo) Update(ctx context.Context, game *model.Game) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": game.ID}, game)
	return err
}

func (r *gameRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
