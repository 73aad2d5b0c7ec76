package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/cardhaus/giveaway-backend/internal/models"
	"github.com/cardhaus/giveaway-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/exp/slog"
)

// UserService handles user-related business logic
type UserService struct {
	userRepo   repositories.UserRepository
	pickRepo   repositories.PickRepository
	winnerRepo repositories.WinnerRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.UserRepository, pickRepo repositories.PickRepository, winnerRepo repositories.WinnerRepository) *UserService {
	return &UserService{
		userRepo:   userRepo,
		pickRepo:   pickRepo,
		winnerRepo: winnerRepo,
	}
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// CreateUser creates a new user
func (s *UserService) CreateUser(ctx context.Context, user *models.User) error {
	return s.userRepo.Create(ctx, user)
}

// GetAllUsers retrieves all users
func (s *UserService) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.FindAll(ctx)
}

// GetUserCount gets the total number of users
func (s *UserService) GetUserCount(ctx context.Context) (int64, error) {
	return s.userRepo.Count(ctx)
}

// GetUserPicks retrieves all picks a user holds across giveaways
func (s *UserService) GetUserPicks(ctx context.Context, userID primitive.ObjectID) ([]*models.Pick, error) {
	return s.pickRepo.FindByUser(ctx, userID)
}

// GetUserWins retrieves all wins for a user
func (s *UserService) GetUserWins(ctx context.Context, userID primitive.ObjectID) ([]*models.Winner, error) {
	return s.winnerRepo.FindByUserID(ctx, userID)
}

// GrantCredits adds giveaway credits to a user's balance. The funding side
// of the ledger; spending happens through the allocation engine.
func (s *UserService) GrantCredits(ctx context.Context, userID primitive.ObjectID, amount int) error {
	if err := s.userRepo.IncrementCredits(ctx, userID, amount); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to grant credits: %w", err)
	}
	slog.Info("Credits granted", "userId", userID, "amount", amount)
	return nil
}
