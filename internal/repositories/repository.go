package repositories

import (
	"context"
	"time"

	"github.com/cardhaus/giveaway-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GiveawayRepository defines the interface for giveaway data operations
type GiveawayRepository interface {
	Create(ctx context.Context, giveaway *models.Giveaway) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Giveaway, error)
	FindAll(ctx context.Context) ([]*models.Giveaway, error)
	FindByStatus(ctx context.Context, status models.GiveawayStatus) ([]*models.Giveaway, error)
	Update(ctx context.Context, giveaway *models.Giveaway) error
	// SetTotalPicks writes the authoritative recounted pick total.
	SetTotalPicks(ctx context.Context, id primitive.ObjectID, total int) error
	// TransitionToFilling sets FILLING plus the draw schedule, but only while
	// the giveaway is still OPEN, so concurrent threshold crossings are safe.
	TransitionToFilling(ctx context.Context, id primitive.ObjectID, drawDate, entryCutoff time.Time) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.GiveawayStatus) error
	RecordDrawnNumber(ctx context.Context, id primitive.ObjectID, drawnNumber string) error
}

// PickRepository defines the interface for pick data operations.
// Create must reject a duplicate (giveawayId, slot, pickNumber) tuple with a
// driver duplicate-key error; callers treat that as the number being taken.
type PickRepository interface {
	Create(ctx context.Context, pick *models.Pick) error
	// Delete backs out a persisted pick whose cost could not be settled.
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindByGiveaway(ctx context.Context, giveawayID primitive.ObjectID) ([]*models.Pick, error)
	FindByUserAndGiveaway(ctx context.Context, userID, giveawayID primitive.ObjectID) ([]*models.Pick, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Pick, error)
	TakenNumbers(ctx context.Context, giveawayID primitive.ObjectID, slot int) ([]int, error)
	CountByGiveaway(ctx context.Context, giveawayID primitive.ObjectID) (int64, error)
	CountBySlot(ctx context.Context, giveawayID primitive.ObjectID) (map[int]int, error)
	CountFreeEntries(ctx context.Context, userID, giveawayID primitive.ObjectID) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	FindAll(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int64, error)
	// IncrementCredits atomically adds credits to a user's balance.
	IncrementCredits(ctx context.Context, userID primitive.ObjectID, amount int) error
	// DebitCredits atomically subtracts amount, but only when the balance
	// covers it. Returns false when the balance was insufficient.
	DebitCredits(ctx context.Context, userID primitive.ObjectID, amount int) (bool, error)
}

// WinnerRepository defines the interface for winner data operations
type WinnerRepository interface {
	CreateMany(ctx context.Context, winners []*models.Winner) error
	FindByGiveawayID(ctx context.Context, giveawayID primitive.ObjectID) ([]*models.Winner, error)
	FindByUserID(ctx context.Context, userID primitive.ObjectID) ([]*models.Winner, error)
}

// AdminUserRepository defines the interface for operator account operations
type AdminUserRepository interface {
	Create(ctx context.Context, adminUser *models.AdminUser) error
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.AdminUser, error)
}
