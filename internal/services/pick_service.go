package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cardhaus/giveaway-backend/internal/models"
	"github.com/cardhaus/giveaway-backend/internal/repositories"
	"github.com/cardhaus/giveaway-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure PickServiceImpl implements PickService
var _ PickService = (*PickServiceImpl)(nil)

// maxBulkPicks caps one bulk request; larger counts are clamped, not rejected.
const maxBulkPicks = 100

// maxSnapshotGaps bounds the ranked gap list returned to clients.
const maxSnapshotGaps = 5

// slotExhausted marks a full slot in the in-memory count snapshot so the
// selector stops proposing it within the current batch.
const slotExhausted = utils.NumberSpace + 1

// PickServiceImpl is the allocation engine: it orchestrates slot selection,
// gap analysis and the ledger to satisfy single and bulk pick requests with
// rollback-on-failure semantics.
type PickServiceImpl struct {
	giveawayRepo repositories.GiveawayRepository
	pickRepo     repositories.PickRepository
	userRepo     repositories.UserRepository
	ledger       *LedgerService
}

// NewPickService creates a new PickServiceImpl
func NewPickService(
	giveawayRepo repositories.GiveawayRepository,
	pickRepo repositories.PickRepository,
	userRepo repositories.UserRepository,
	ledger *LedgerService,
) *PickServiceImpl {
	return &PickServiceImpl{
		giveawayRepo: giveawayRepo,
		pickRepo:     pickRepo,
		userRepo:     userRepo,
		ledger:       ledger,
	}
}

// checkEntryPreconditions loads the giveaway and user and verifies that
// picks may be created: giveaway open or filling, cutoff not passed, user
// not banned. Rejected before any side effect.
func (s *PickServiceImpl) checkEntryPreconditions(ctx context.Context, giveawayID, userID primitive.ObjectID) (*models.Giveaway, *models.User, error) {
	giveaway, err := s.giveawayRepo.FindByID(ctx, giveawayID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, ErrGiveawayNotFound
		}
		return nil, nil, fmt.Errorf("failed to load giveaway: %w", err)
	}
	if !giveaway.AcceptingEntries(time.Now()) {
		return nil, nil, ErrGiveawayNotAcceptingEntries
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user.IsBanned {
		return nil, nil, ErrUserBanned
	}
	return giveaway, user, nil
}

// CreatePick allocates a single explicitly chosen number. The realized
// free/paid outcome follows ledger state, not the caller's preference.
func (s *PickServiceImpl) CreatePick(ctx context.Context, giveawayID, userID primitive.ObjectID, slot int, pickNumber string, wantsFreeEntry bool) (*models.PickResult, error) {
	giveaway, _, err := s.checkEntryPreconditions(ctx, giveawayID, userID)
	if err != nil {
		return nil, err
	}
	if !giveaway.ValidSlot(slot) {
		return nil, ErrInvalidSlot
	}
	value, ok := utils.ParsePickNumber(pickNumber)
	if !ok {
		return nil, ErrInvalidPickNumber
	}

	remainingFree, err := s.ledger.RemainingFreeEntries(ctx, userID, giveaway)
	if err != nil {
		return nil, err
	}
	cost := s.ledger.QuoteCost(giveaway, slot)
	useFree := wantsFreeEntry && slot != BoxTopperSlot
	auth := s.ledger.Plan(cost, useFree, &remainingFree)

	pick := &models.Pick{
		GiveawayID:  giveawayID,
		UserID:      userID,
		Slot:        slot,
		PickNumber:  utils.FormatPickNumber(value),
		IsFreeEntry: auth.UsedFree,
	}
	if err := s.pickRepo.Create(ctx, pick); err != nil {
		s.ledger.Release(auth, &remainingFree)
		if mongo.IsDuplicateKeyError(err) {
			// Another writer holds this number; the expected race outcome.
			return nil, ErrNumberTaken
		}
		return nil, fmt.Errorf("failed to persist pick: %w", err)
	}

	// Settle only after the row is durable: a crash here strands an uncharged
	// pick, never a debit without one.
	if err := s.ledger.Settle(ctx, userID, auth); err != nil {
		if delErr := s.pickRepo.Delete(ctx, pick.ID); delErr != nil {
			slog.Error("Failed to remove unsettled pick", "error", delErr, "pickId", pick.ID, "userId", userID)
		}
		return nil, err
	}

	s.refreshTotals(ctx, giveaway)
	slog.Info("Pick created", "giveawayId", giveawayID, "userId", userID, "slot", slot, "number", pick.PickNumber, "free", pick.IsFreeEntry)

	return &models.PickResult{
		Slot:           slot,
		PickNumber:     pick.PickNumber,
		IsFreeEntry:    pick.IsFreeEntry,
		CreditsCharged: auth.CreditsCharged,
	}, nil
}

// CreateBulkPicks allocates up to count auto-selected numbers. Funds running
// out ends the loop with partial results rather than an error; a number lost
// to a concurrent writer is skipped and the loop continues.
func (s *PickServiceImpl) CreateBulkPicks(ctx context.Context, giveawayID, userID primitive.ObjectID, count int, targetSlot *int, wantsFreeEntries bool) (*models.BulkPickResult, error) {
	if count < 1 {
		count = 1
	}
	if count > maxBulkPicks {
		count = maxBulkPicks
	}

	giveaway, _, err := s.checkEntryPreconditions(ctx, giveawayID, userID)
	if err != nil {
		return nil, err
	}
	if targetSlot != nil && !giveaway.ValidSlot(*targetSlot) {
		return nil, ErrInvalidSlot
	}

	// Per-slot counts are snapshotted once and advanced in memory as the
	// batch persists picks; no per-iteration re-query.
	counts, err := s.pickRepo.CountBySlot(ctx, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("failed to count picks per slot: %w", err)
	}

	// The in-batch claimed set prevents the batch from proposing a number
	// twice before its own writes are visible. Seeded with the user's
	// pre-existing picks for this giveaway.
	claimed := make(map[int]map[int]bool)
	claim := func(slot, value int) {
		if claimed[slot] == nil {
			claimed[slot] = make(map[int]bool)
		}
		claimed[slot][value] = true
	}
	existing, err := s.pickRepo.FindByUserAndGiveaway(ctx, userID, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing picks: %w", err)
	}
	for _, pick := range existing {
		if value, ok := utils.ParsePickNumber(pick.PickNumber); ok {
			claim(pick.Slot, value)
		}
	}

	remainingFree, err := s.ledger.RemainingFreeEntries(ctx, userID, giveaway)
	if err != nil {
		return nil, err
	}

	takenBySlot := make(map[int][]int)
	result := &models.BulkPickResult{Picks: []models.PickResult{}}

	for i := 0; i < count; i++ {
		slot := 0
		if targetSlot != nil {
			slot = *targetSlot
		} else {
			slot = utils.SelectSlot(counts, giveaway.SlotCount)
		}

		cost := s.ledger.QuoteCost(giveaway, slot)
		useFree := wantsFreeEntries && slot != BoxTopperSlot
		auth := s.ledger.Plan(cost, useFree, &remainingFree)

		taken, ok := takenBySlot[slot]
		if !ok {
			taken, err = s.pickRepo.TakenNumbers(ctx, giveawayID, slot)
			if err != nil {
				s.ledger.Release(auth, &remainingFree)
				return result, fmt.Errorf("failed to load taken numbers: %w", err)
			}
			takenBySlot[slot] = taken
		}

		value, ok := utils.BestNumber(taken, claimed[slot])
		if !ok {
			// Slot exhausted. Release the plan and either give up (explicit
			// slot) or stop auto-selecting this slot.
			s.ledger.Release(auth, &remainingFree)
			if targetSlot != nil {
				break
			}
			counts[slot] = slotExhausted
			continue
		}

		pick := &models.Pick{
			GiveawayID:  giveawayID,
			UserID:      userID,
			Slot:        slot,
			PickNumber:  utils.FormatPickNumber(value),
			IsFreeEntry: auth.UsedFree,
		}
		if err := s.pickRepo.Create(ctx, pick); err != nil {
			s.ledger.Release(auth, &remainingFree)
			if mongo.IsDuplicateKeyError(err) {
				// A concurrent writer outside this batch claimed the number
				// between our snapshot and the insert. Skip it and retry on
				// the next iteration.
				claim(slot, value)
				takenBySlot[slot] = utils.InsertSorted(taken, value)
				counts[slot]++
				continue
			}
			return result, fmt.Errorf("failed to persist pick: %w", err)
		}

		// Settle after the row is durable; an uncovered plan removes the row
		// again and ends the batch with what was allocated so far.
		if err := s.ledger.Settle(ctx, userID, auth); err != nil {
			if delErr := s.pickRepo.Delete(ctx, pick.ID); delErr != nil {
				slog.Error("Failed to remove unsettled pick", "error", delErr, "pickId", pick.ID, "userId", userID)
			}
			if errors.Is(err, ErrInsufficientFunds) {
				break // Partial success, not an error
			}
			return result, err
		}

		claim(slot, value)
		takenBySlot[slot] = utils.InsertSorted(taken, value)
		counts[slot]++

		result.PicksCreated++
		if auth.UsedFree {
			result.FreeEntriesUsed++
		} else {
			result.CreditsUsed += auth.CreditsCharged
		}
		result.Picks = append(result.Picks, models.PickResult{
			Slot:           slot,
			PickNumber:     pick.PickNumber,
			IsFreeEntry:    pick.IsFreeEntry,
			CreditsCharged: auth.CreditsCharged,
		})
	}

	s.refreshTotals(ctx, giveaway)
	slog.Info("Bulk picks created", "giveawayId", giveawayID, "userId", userID,
		"requested", count, "created", result.PicksCreated,
		"creditsUsed", result.CreditsUsed, "freeEntriesUsed", result.FreeEntriesUsed)
	return result, nil
}

// refreshTotals recounts the giveaway's persisted picks and writes the
// aggregate, then fires the draw schedule when the minimum is first crossed.
// Recounting is idempotent under concurrent writers; incrementing in place
// is not. Failures here are logged, not returned: the picks are already
// durable and the aggregate is a cache.
func (s *PickServiceImpl) refreshTotals(ctx context.Context, giveaway *models.Giveaway) {
	total, err := s.pickRepo.CountByGiveaway(ctx, giveaway.ID)
	if err != nil {
		slog.Error("Failed to recount picks", "error", err, "giveawayId", giveaway.ID)
		return
	}
	if err := s.giveawayRepo.SetTotalPicks(ctx, giveaway.ID, int(total)); err != nil {
		slog.Error("Failed to store pick total", "error", err, "giveawayId", giveaway.ID)
	}

	if giveaway.Status == models.GiveawayStatusOpen && int(total) >= giveaway.MinPicks {
		drawDate, entryCutoff := utils.NextDrawSchedule(time.Now())
		if err := s.giveawayRepo.TransitionToFilling(ctx, giveaway.ID, drawDate, entryCutoff); err != nil {
			slog.Error("Failed to schedule draw", "error", err, "giveawayId", giveaway.ID)
			return
		}
		slog.Info("Giveaway reached minimum picks, draw scheduled",
			"giveawayId", giveaway.ID, "totalPicks", total,
			"drawDate", drawDate, "entryCutoff", entryCutoff)
	}
}

// GetSlotSnapshot returns a read-only view of one slot's occupancy and its
// largest free gaps.
func (s *PickServiceImpl) GetSlotSnapshot(ctx context.Context, giveawayID primitive.ObjectID, slot int) (*models.SlotSnapshot, error) {
	giveaway, err := s.giveawayRepo.FindByID(ctx, giveawayID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrGiveawayNotFound
		}
		return nil, fmt.Errorf("failed to load giveaway: %w", err)
	}
	if !giveaway.ValidSlot(slot) {
		return nil, ErrInvalidSlot
	}

	taken, err := s.pickRepo.TakenNumbers(ctx, giveawayID, slot)
	if err != nil {
		return nil, fmt.Errorf("failed to load taken numbers: %w", err)
	}

	gaps := utils.AnalyzeGaps(taken)
	if len(gaps) > maxSnapshotGaps {
		gaps = gaps[:maxSnapshotGaps]
	}

	takenStrings := make([]string, 0, len(taken))
	for _, value := range taken {
		takenStrings = append(takenStrings, utils.FormatPickNumber(value))
	}
	return &models.SlotSnapshot{
		Slot:           slot,
		TakenNumbers:   takenStrings,
		TotalTaken:     len(taken),
		TotalAvailable: utils.NumberSpace - len(taken),
		LargestGaps:    gaps,
	}, nil
}

// SuggestAutoPick proposes the (slot, number) an auto-pick would choose
// right now. Advisory only: two callers may be told the same number, and
// actual reservation still goes through the uniqueness-enforcing create
// path.
func (s *PickServiceImpl) SuggestAutoPick(ctx context.Context, giveawayID primitive.ObjectID) (*models.AutoPickSuggestion, error) {
	giveaway, err := s.giveawayRepo.FindByID(ctx, giveawayID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrGiveawayNotFound
		}
		return nil, fmt.Errorf("failed to load giveaway: %w", err)
	}

	counts, err := s.pickRepo.CountBySlot(ctx, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("failed to count picks per slot: %w", err)
	}
	slot := utils.SelectSlot(counts, giveaway.SlotCount)

	taken, err := s.pickRepo.TakenNumbers(ctx, giveawayID, slot)
	if err != nil {
		return nil, fmt.Errorf("failed to load taken numbers: %w", err)
	}
	value, ok := utils.BestNumber(taken, nil)
	if !ok {
		return nil, ErrNoNumbersAvailable
	}
	return &models.AutoPickSuggestion{
		Slot:       slot,
		PickNumber: utils.FormatPickNumber(value),
	}, nil
}
