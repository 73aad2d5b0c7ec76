package mongodb

import (
	"context"
	"time"

	"github.com/cardhaus/giveaway-backend/internal/models"
	"github.com/cardhaus/giveaway-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure WinnerRepository implements the interface
var _ repositories.WinnerRepository = (*WinnerRepository)(nil)

// WinnerRepository handles MongoDB operations for Winner
type WinnerRepository struct {
	collection *mongo.Collection
}

// NewWinnerRepository creates a new WinnerRepository
func NewWinnerRepository(db *mongo.Database) *WinnerRepository {
	return &WinnerRepository{
		collection: db.Collection("winners"),
	}
}

// CreateMany inserts the resolved winner set for a giveaway
func (r *WinnerRepository) CreateMany(ctx context.Context, winners []*models.Winner) error {
	if len(winners) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(winners))
	for _, winner := range winners {
		winner.CreatedAt = time.Now()
		docs = append(docs, winner)
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// FindByGiveawayID finds all winners of a giveaway, ordered by slot
func (r *WinnerRepository) FindByGiveawayID(ctx context.Context, giveawayID primitive.ObjectID) ([]*models.Winner, error) {
	opts := options.Find().SetSort(bson.M{"slot": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"giveawayId": giveawayID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var winners []*models.Winner
	if err := cursor.All(ctx, &winners); err != nil {
		return nil, err
	}
	if winners == nil {
		winners = []*models.Winner{}
	}
	return winners, nil
}

// FindByUserID finds all wins for a user across giveaways
func (r *WinnerRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID) ([]*models.Winner, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var winners []*models.Winner
	if err := cursor.All(ctx, &winners); err != nil {
		return nil, err
	}
	if winners == nil {
		winners = []*models.Winner{}
	}
	return winners, nil
}
