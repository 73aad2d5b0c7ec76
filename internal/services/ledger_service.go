package services

import (
	"context"
	"fmt"

	"github.com/cardhaus/giveaway-backend/internal/models"
	"github.com/cardhaus/giveaway-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BoxTopperSlot is the premium slot index, present only on giveaways
// configured with a box topper.
const BoxTopperSlot = 0

// boxTopperMultiplier prices the box-topper slot at 3x a normal pick.
const boxTopperMultiplier = 3

// Authorization records the funding plan of one pick attempt so a failed
// later step can reverse exactly what was taken.
type Authorization struct {
	UsedFree       bool
	CreditsCharged int
	released       bool
}

// LedgerService owns the credit and free-entry accounting around pick
// attempts. Funding is a plan/settle bracket around persistence: the plan is
// made first, the pick row is persisted, and only then is the cost settled
// against the credit balance. A crash inside the bracket can strand an
// uncharged pick row, never a debit without a pick. Free-entry consumption is
// derived from persisted isFreeEntry pick rows rather than a stored counter;
// the in-memory remaining count passed through Plan/Release keeps later
// iterations of the same request correct.
type LedgerService struct {
	userRepo repositories.UserRepository
	pickRepo repositories.PickRepository
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(userRepo repositories.UserRepository, pickRepo repositories.PickRepository) *LedgerService {
	return &LedgerService{
		userRepo: userRepo,
		pickRepo: pickRepo,
	}
}

// QuoteCost returns the credit cost of one pick in the given slot.
func (s *LedgerService) QuoteCost(giveaway *models.Giveaway, slot int) int {
	if slot == BoxTopperSlot {
		return giveaway.CreditCost * boxTopperMultiplier
	}
	return giveaway.CreditCost
}

// RemainingFreeEntries returns how many free entries the user still has for
// the giveaway, derived by counting their persisted free-entry picks.
func (s *LedgerService) RemainingFreeEntries(ctx context.Context, userID primitive.ObjectID, giveaway *models.Giveaway) (int, error) {
	used, err := s.pickRepo.CountFreeEntries(ctx, userID, giveaway.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to count free entries: %w", err)
	}
	remaining := giveaway.FreeEntriesPerUser - int(used)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Plan decides how one pick attempt will be funded, before anything is
// persisted. When useFree is set and the caller still has free entries
// available, one is consumed from the in-memory remaining count; otherwise
// the full cost is planned against the credit balance. No balance is touched
// here.
func (s *LedgerService) Plan(cost int, useFree bool, remainingFree *int) *Authorization {
	if useFree && *remainingFree > 0 {
		*remainingFree--
		return &Authorization{UsedFree: true}
	}
	return &Authorization{CreditsCharged: cost}
}

// Settle collects the planned cost once the pick row is durable. Fails with
// ErrInsufficientFunds when the balance does not cover the plan; the caller
// must then remove the pick row it persisted.
func (s *LedgerService) Settle(ctx context.Context, userID primitive.ObjectID, auth *Authorization) error {
	if auth.UsedFree || auth.CreditsCharged == 0 {
		return nil
	}
	ok, err := s.userRepo.DebitCredits(ctx, userID, auth.CreditsCharged)
	if err != nil {
		return fmt.Errorf("failed to debit credits: %w", err)
	}
	if !ok {
		return ErrInsufficientFunds
	}
	return nil
}

// Release abandons a plan whose pick row was never kept. Nothing has been
// debited before settlement, so restoring the in-memory free count is the
// whole reversal. Safe to call more than once within the same attempt; only
// the first call acts.
func (s *LedgerService) Release(auth *Authorization, remainingFree *int) {
	if auth == nil || auth.released {
		return
	}
	auth.released = true
	if auth.UsedFree {
		*remainingFree++
	}
}
