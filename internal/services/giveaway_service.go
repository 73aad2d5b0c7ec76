package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cardhaus/giveaway-backend/internal/models"
	"github.com/cardhaus/giveaway-backend/internal/repositories"
	"github.com/cardhaus/giveaway-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure GiveawayServiceImpl implements GiveawayService
var _ GiveawayService = (*GiveawayServiceImpl)(nil)

// GiveawayServiceImpl handles giveaway lifecycle and winner resolution
type GiveawayServiceImpl struct {
	giveawayRepo repositories.GiveawayRepository
	pickRepo     repositories.PickRepository
	winnerRepo   repositories.WinnerRepository
	userRepo     repositories.UserRepository
	ledger       *LedgerService
}

// NewGiveawayService creates a new GiveawayServiceImpl
func NewGiveawayService(
	giveawayRepo repositories.GiveawayRepository,
	pickRepo repositories.PickRepository,
	winnerRepo repositories.WinnerRepository,
	userRepo repositories.UserRepository,
	ledger *LedgerService,
) *GiveawayServiceImpl {
	return &GiveawayServiceImpl{
		giveawayRepo: giveawayRepo,
		pickRepo:     pickRepo,
		winnerRepo:   winnerRepo,
		userRepo:     userRepo,
		ledger:       ledger,
	}
}

// CreateGiveaway creates a new giveaway in OPEN status
func (s *GiveawayServiceImpl) CreateGiveaway(ctx context.Context, giveaway *models.Giveaway) error {
	if giveaway.SlotCount < 1 {
		return errors.New("slot count must be at least 1")
	}
	if giveaway.CreditCost < 1 {
		return errors.New("credit cost must be at least 1")
	}
	if giveaway.MinPicks < 0 || giveaway.FreeEntriesPerUser < 0 {
		return errors.New("minimum picks and free entries must not be negative")
	}
	giveaway.Status = models.GiveawayStatusOpen
	giveaway.TotalPicks = 0
	giveaway.DrawnNumber = ""
	if err := s.giveawayRepo.Create(ctx, giveaway); err != nil {
		return fmt.Errorf("failed to create giveaway: %w", err)
	}
	slog.Info("Giveaway created", "giveawayId", giveaway.ID, "title", giveaway.Title, "slots", giveaway.SlotCount, "boxTopper", giveaway.HasBoxTopper)
	return nil
}

// GetGiveawayByID retrieves a giveaway by ID
func (s *GiveawayServiceImpl) GetGiveawayByID(ctx context.Context, id primitive.ObjectID) (*models.Giveaway, error) {
	giveaway, err := s.giveawayRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrGiveawayNotFound
		}
		return nil, fmt.Errorf("failed to load giveaway: %w", err)
	}
	return giveaway, nil
}

// GetGiveaways retrieves all giveaways
func (s *GiveawayServiceImpl) GetGiveaways(ctx context.Context) ([]*models.Giveaway, error) {
	return s.giveawayRepo.FindAll(ctx)
}

// RecordDrawResult stores the externally drawn 3-digit number, resolves one
// winner per non-empty slot and completes the giveaway. Only callable while
// the giveaway is CLOSED.
func (s *GiveawayServiceImpl) RecordDrawResult(ctx context.Context, id primitive.ObjectID, drawnNumber string) ([]*models.Winner, error) {
	drawnValue, ok := utils.ParsePickNumber(drawnNumber)
	if !ok {
		return nil, ErrInvalidPickNumber
	}

	giveaway, err := s.GetGiveawayByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch giveaway.Status {
	case models.GiveawayStatusClosed:
		// Eligible
	case models.GiveawayStatusCompleted:
		return nil, ErrDrawAlreadyRecorded
	default:
		return nil, ErrDrawNotYetEligible
	}

	picks, err := s.pickRepo.FindByGiveaway(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load picks: %w", err)
	}

	winners := ResolveWinners(id, picks, drawnValue)
	if err := s.winnerRepo.CreateMany(ctx, winners); err != nil {
		return nil, fmt.Errorf("failed to persist winners: %w", err)
	}
	if err := s.giveawayRepo.RecordDrawnNumber(ctx, id, utils.FormatPickNumber(drawnValue)); err != nil {
		return nil, fmt.Errorf("failed to record drawn number: %w", err)
	}

	slog.Info("Draw result recorded", "giveawayId", id, "drawnNumber", drawnNumber, "winners", len(winners))
	return winners, nil
}

// ResolveWinners computes the winning pick of each non-empty slot: the pick
// with minimum absolute distance to the drawn number, ties broken by the
// lower numeric pick (not submission order). Pure function of its inputs, so
// re-running it for audit yields identical output.
func ResolveWinners(giveawayID primitive.ObjectID, picks []*models.Pick, drawnValue int) []*models.Winner {
	type best struct {
		pick     *models.Pick
		value    int
		distance int
	}
	bestBySlot := make(map[int]best)

	for _, pick := range picks {
		value, ok := utils.ParsePickNumber(pick.PickNumber)
		if !ok {
			continue
		}
		distance := value - drawnValue
		if distance < 0 {
			distance = -distance
		}
		current, exists := bestBySlot[pick.Slot]
		if !exists || distance < current.distance || (distance == current.distance && value < current.value) {
			bestBySlot[pick.Slot] = best{pick: pick, value: value, distance: distance}
		}
	}

	slots := make([]int, 0, len(bestBySlot))
	for slot := range bestBySlot {
		slots = append(slots, slot)
	}
	sort.Ints(slots)

	winners := make([]*models.Winner, 0, len(slots))
	for _, slot := range slots {
		b := bestBySlot[slot]
		winners = append(winners, &models.Winner{
			GiveawayID: giveawayID,
			UserID:     b.pick.UserID,
			Slot:       slot,
			PickNumber: utils.FormatPickNumber(b.value),
			Distance:   b.distance,
		})
	}
	return winners
}

// GetWinners retrieves the resolved winners of a giveaway
func (s *GiveawayServiceImpl) GetWinners(ctx context.Context, id primitive.ObjectID) ([]*models.Winner, error) {
	return s.winnerRepo.FindByGiveawayID(ctx, id)
}

// CloseGiveaway ends the entry phase by hand. Valid from OPEN or FILLING.
func (s *GiveawayServiceImpl) CloseGiveaway(ctx context.Context, id primitive.ObjectID) error {
	giveaway, err := s.GetGiveawayByID(ctx, id)
	if err != nil {
		return err
	}
	if giveaway.Status != models.GiveawayStatusOpen && giveaway.Status != models.GiveawayStatusFilling {
		return ErrGiveawayNotAcceptingEntries
	}
	if err := s.giveawayRepo.UpdateStatus(ctx, id, models.GiveawayStatusClosed); err != nil {
		return fmt.Errorf("failed to close giveaway: %w", err)
	}
	slog.Info("Giveaway closed for entries", "giveawayId", id)
	return nil
}

// CloseExpiredGiveaways closes every FILLING giveaway whose entry cutoff has
// passed. Invoked periodically by the cutoff cron job.
func (s *GiveawayServiceImpl) CloseExpiredGiveaways(ctx context.Context) (int, error) {
	filling, err := s.giveawayRepo.FindByStatus(ctx, models.GiveawayStatusFilling)
	if err != nil {
		return 0, fmt.Errorf("failed to load filling giveaways: %w", err)
	}

	now := time.Now()
	closed := 0
	for _, giveaway := range filling {
		if giveaway.EntryCutoff.IsZero() || now.Before(giveaway.EntryCutoff) {
			continue
		}
		if err := s.giveawayRepo.UpdateStatus(ctx, giveaway.ID, models.GiveawayStatusClosed); err != nil {
			slog.Error("Failed to close expired giveaway", "error", err, "giveawayId", giveaway.ID)
			continue
		}
		slog.Info("Giveaway closed at entry cutoff", "giveawayId", giveaway.ID, "entryCutoff", giveaway.EntryCutoff)
		closed++
	}
	return closed, nil
}

// CancelGiveaway cancels a giveaway and refunds the credits charged for its
// paid picks. Free entries are not compensated. Completed giveaways cannot
// be cancelled.
func (s *GiveawayServiceImpl) CancelGiveaway(ctx context.Context, id primitive.ObjectID) (int, error) {
	giveaway, err := s.GetGiveawayByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if giveaway.Status == models.GiveawayStatusCompleted {
		return 0, ErrDrawAlreadyRecorded
	}
	if giveaway.Status == models.GiveawayStatusCancelled {
		return 0, nil
	}

	picks, err := s.pickRepo.FindByGiveaway(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to load picks: %w", err)
	}

	refunded := 0
	for _, pick := range picks {
		if pick.IsFreeEntry {
			continue
		}
		cost := s.ledger.QuoteCost(giveaway, pick.Slot)
		if err := s.userRepo.IncrementCredits(ctx, pick.UserID, cost); err != nil {
			slog.Error("Failed to refund cancelled pick", "error", err, "userId", pick.UserID, "pickId", pick.ID)
			continue
		}
		refunded += cost
	}

	if err := s.giveawayRepo.UpdateStatus(ctx, id, models.GiveawayStatusCancelled); err != nil {
		return refunded, fmt.Errorf("failed to cancel giveaway: %w", err)
	}
	slog.Info("Giveaway cancelled", "giveawayId", id, "creditsRefunded", refunded)
	return refunded, nil
}
