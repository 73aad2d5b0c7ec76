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

// Compile-time check to ensure GiveawayRepository implements the interface
var _ repositories.GiveawayRepository = (*GiveawayRepository)(nil)

// GiveawayRepository handles MongoDB operations for Giveaway
type GiveawayRepository struct {
	collection *mongo.Collection
}

// NewGiveawayRepository creates a new GiveawayRepository
func NewGiveawayRepository(db *mongo.Database) *GiveawayRepository {
	return &GiveawayRepository{
		collection: db.Collection("giveaways"),
	}
}

// Create inserts a new giveaway
func (r *GiveawayRepository) Create(ctx context.Context, giveaway *models.Giveaway) error {
	giveaway.CreatedAt = time.Now()
	giveaway.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, giveaway)
	if err != nil {
		return err
	}
	giveaway.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID finds a giveaway by ID
func (r *GiveawayRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Giveaway, error) {
	var giveaway models.Giveaway
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&giveaway)
	if err != nil {
		return nil, err // Includes mongo.ErrNoDocuments
	}
	return &giveaway, nil
}

// FindAll finds all giveaways, newest first
func (r *GiveawayRepository) FindAll(ctx context.Context) ([]*models.Giveaway, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var giveaways []*models.Giveaway
	if err := cursor.All(ctx, &giveaways); err != nil {
		return nil, err
	}
	if giveaways == nil {
		giveaways = []*models.Giveaway{}
	}
	return giveaways, nil
}

// FindByStatus finds giveaways by lifecycle status
func (r *GiveawayRepository) FindByStatus(ctx context.Context, status models.GiveawayStatus) ([]*models.Giveaway, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"status": status}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var giveaways []*models.Giveaway
	if err := cursor.All(ctx, &giveaways); err != nil {
		return nil, err
	}
	if giveaways == nil {
		giveaways = []*models.Giveaway{}
	}
	return giveaways, nil
}

// Update replaces a giveaway document
func (r *GiveawayRepository) Update(ctx context.Context, giveaway *models.Giveaway) error {
	giveaway.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": giveaway.ID}, giveaway)
	return err
}

// SetTotalPicks writes the recounted aggregate pick total
func (r *GiveawayRepository) SetTotalPicks(ctx context.Context, id primitive.ObjectID, total int) error {
	update := bson.M{"$set": bson.M{"totalPicks": total, "updatedAt": time.Now()}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// TransitionToFilling moves an OPEN giveaway to FILLING with its draw
// schedule. The status filter makes concurrent threshold crossings harmless:
// only the first writer matches.
func (r *GiveawayRepository) TransitionToFilling(ctx context.Context, id primitive.ObjectID, drawDate, entryCutoff time.Time) error {
	filter := bson.M{"_id": id, "status": models.GiveawayStatusOpen}
	update := bson.M{"$set": bson.M{
		"status":      models.GiveawayStatusFilling,
		"drawDate":    drawDate,
		"entryCutoff": entryCutoff,
		"updatedAt":   time.Now(),
	}}
	_, err := r.collection.UpdateOne(ctx, filter, update)
	return err
}

// UpdateStatus sets the lifecycle status
func (r *GiveawayRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.GiveawayStatus) error {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// RecordDrawnNumber stores the official drawn number and completes the giveaway
func (r *GiveawayRepository) RecordDrawnNumber(ctx context.Context, id primitive.ObjectID, drawnNumber string) error {
	update := bson.M{"$set": bson.M{
		"drawnNumber": drawnNumber,
		"status":      models.GiveawayStatusCompleted,
		"updatedAt":   time.Now(),
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
