package mongodb

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/cardhaus/giveaway-backend/internal/models"
	"github.com/cardhaus/giveaway-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure PickRepository implements the interface
var _ repositories.PickRepository = (*PickRepository)(nil)

// PickRepository handles MongoDB operations for Pick
type PickRepository struct {
	collection *mongo.Collection
}

// NewPickRepository creates a new PickRepository
func NewPickRepository(db *mongo.Database) *PickRepository {
	return &PickRepository{
		collection: db.Collection("picks"),
	}
}

// EnsureIndexes creates the unique compound index that enforces the
// one-holder-per-number invariant. Concurrent writers racing for the same
// (giveaway, slot, number) tuple are rejected here, at persistence time.
func (r *PickRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "giveawayId", Value: 1},
				{Key: "slot", Value: 1},
				{Key: "pickNumber", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("uniq_giveaway_slot_number"),
		},
		{
			Keys: bson.D{
				{Key: "giveawayId", Value: 1},
				{Key: "userId", Value: 1},
			},
			Options: options.Index().SetName("giveaway_user"),
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a new pick. A duplicate (giveawayId, slot, pickNumber)
// surfaces as a driver duplicate-key error for the caller to interpret.
func (r *PickRepository) Create(ctx context.Context, pick *models.Pick) error {
	pick.CreatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, pick)
	if err != nil {
		return err
	}
	pick.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// Delete removes a pick by ID
func (r *PickRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// FindByGiveaway finds all picks for a giveaway
func (r *PickRepository) FindByGiveaway(ctx context.Context, giveawayID primitive.ObjectID) ([]*models.Pick, error) {
	return r.find(ctx, bson.M{"giveawayId": giveawayID})
}

// FindByUserAndGiveaway finds one user's picks within a giveaway
func (r *PickRepository) FindByUserAndGiveaway(ctx context.Context, userID, giveawayID primitive.ObjectID) ([]*models.Pick, error) {
	return r.find(ctx, bson.M{"userId": userID, "giveawayId": giveawayID})
}

// FindByUser finds all picks a user holds across giveaways
func (r *PickRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Pick, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *PickRepository) find(ctx context.Context, filter bson.M) ([]*models.Pick, error) {
	opts := options.Find().SetSort(bson.D{{Key: "slot", Value: 1}, {Key: "pickNumber", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var picks []*models.Pick
	if err := cursor.All(ctx, &picks); err != nil {
		return nil, err
	}
	if picks == nil {
		picks = []*models.Pick{}
	}
	return picks, nil
}

// TakenNumbers returns the numeric values taken within one slot, ascending
func (r *PickRepository) TakenNumbers(ctx context.Context, giveawayID primitive.ObjectID, slot int) ([]int, error) {
	filter := bson.M{"giveawayId": giveawayID, "slot": slot}
	opts := options.Find().SetProjection(bson.M{"pickNumber": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		PickNumber string `bson:"pickNumber"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	taken := make([]int, 0, len(docs))
	for _, doc := range docs {
		n, err := strconv.Atoi(doc.PickNumber)
		if err != nil {
			continue // Malformed legacy rows are invisible to allocation
		}
		taken = append(taken, n)
	}
	sort.Ints(taken)
	return taken, nil
}

// CountByGiveaway counts all picks in a giveaway
func (r *PickRepository) CountByGiveaway(ctx context.Context, giveawayID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"giveawayId": giveawayID})
}

// CountBySlot returns per-slot pick counts for a giveaway
func (r *PickRepository) CountBySlot(ctx context.Context, giveawayID primitive.ObjectID) (map[int]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"giveawayId": giveawayID}}},
		{{Key: "$group", Value: bson.M{"_id": "$slot", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Slot  int `bson:"_id"`
		Count int `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[int]int, len(rows))
	for _, row := range rows {
		counts[row.Slot] = row.Count
	}
	return counts, nil
}

// CountFreeEntries counts a user's free-entry picks within a giveaway. The
// free-entry allowance is derived from these rows rather than stored as a
// separate counter.
func (r *PickRepository) CountFreeEntries(ctx context.Context, userID, giveawayID primitive.ObjectID) (int64, error) {
	filter := bson.M{"userId": userID, "giveawayId": giveawayID, "isFreeEntry": true}
	return r.collection.CountDocuments(ctx, filter)
}
