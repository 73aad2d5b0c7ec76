package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cardhaus/giveaway-backend/internal/config"
	"github.com/cardhaus/giveaway-backend/internal/models"
	"github.com/cardhaus/giveaway-backend/internal/repositories"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure authService implements AuthService
var _ AuthService = (*authService)(nil)

type authService struct {
	adminRepo repositories.AdminUserRepository
	cfg       *config.Config
}

// NewAuthService creates a new AuthService implementation
func NewAuthService(adminRepo repositories.AdminUserRepository, cfg *config.Config) AuthService {
	return &authService{
		adminRepo: adminRepo,
		cfg:       cfg,
	}
}

// Register creates a new operator account with a bcrypt-hashed password
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AdminUser, error) {
	existing, err := s.adminRepo.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		return nil, errors.New("an account with this email already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	adminUser := &models.AdminUser{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     "operator",
	}
	if err := s.adminRepo.Create(ctx, adminUser); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	slog.Info("Operator account created", "email", adminUser.Email)
	return adminUser, nil
}

// Login verifies credentials and returns a signed JWT
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (string, error) {
	adminUser, err := s.adminRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to load account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(adminUser.Password), []byte(req.Password)); err != nil {
		return "", ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"sub":   adminUser.ID.Hex(),
		"email": adminUser.Email,
		"role":  adminUser.Role,
		"exp":   time.Now().Add(time.Second * time.Duration(s.cfg.JWT.ExpiresIn)).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
