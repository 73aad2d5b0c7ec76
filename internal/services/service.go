package services

import (
	"context"

	"github.com/cardhaus/giveaway-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PickService defines the interface for pick allocation operations
type PickService interface {
	// CreatePick allocates a single explicitly chosen number
	CreatePick(ctx context.Context, giveawayID, userID primitive.ObjectID, slot int, pickNumber string, wantsFreeEntry bool) (*models.PickResult, error)

	// CreateBulkPicks allocates up to count auto-selected numbers, returning
	// partial results when funds run out
	CreateBulkPicks(ctx context.Context, giveawayID, userID primitive.ObjectID, count int, targetSlot *int, wantsFreeEntries bool) (*models.BulkPickResult, error)

	// GetSlotSnapshot returns a read-only occupancy view of one slot
	GetSlotSnapshot(ctx context.Context, giveawayID primitive.ObjectID, slot int) (*models.SlotSnapshot, error)

	// SuggestAutoPick proposes a (slot, number) without reserving it
	SuggestAutoPick(ctx context.Context, giveawayID primitive.ObjectID) (*models.AutoPickSuggestion, error)
}

// GiveawayService defines the interface for giveaway lifecycle operations
type GiveawayService interface {
	CreateGiveaway(ctx context.Context, giveaway *models.Giveaway) error
	GetGiveawayByID(ctx context.Context, id primitive.ObjectID) (*models.Giveaway, error)
	GetGiveaways(ctx context.Context) ([]*models.Giveaway, error)

	// RecordDrawResult stores the drawn number, resolves winners and
	// completes the giveaway. Only valid while the giveaway is CLOSED.
	RecordDrawResult(ctx context.Context, id primitive.ObjectID, drawnNumber string) ([]*models.Winner, error)
	GetWinners(ctx context.Context, id primitive.ObjectID) ([]*models.Winner, error)

	CloseGiveaway(ctx context.Context, id primitive.ObjectID) error
	CloseExpiredGiveaways(ctx context.Context) (int, error)
	CancelGiveaway(ctx context.Context, id primitive.ObjectID) (int, error)
}

// AuthService defines the interface for operator authentication
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AdminUser, error)
	Login(ctx context.Context, req *models.LoginRequest) (string, error) // Returns JWT token
}
