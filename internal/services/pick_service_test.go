package services

import (
	"context"
	"errors"
	"testing"

	"github.com/cardhaus/giveaway-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreatePickPaid(t *testing.T) {
	f := newFixture()
	giveaway := f.addGiveaway(&models.Giveaway{Title: "Prismatic Evolutions Case", CreditCost: 2})
	user := f.addUser(5)

	result, err := f.picks.CreatePick(context.Background(), giveaway.ID, user.ID, 1, "250", false)
	if err != nil {
		t.Fatalf("CreatePick failed: %v", err)
	}
	if result.Slot != 1 || result.PickNumber != "250" || result.IsFreeEntry || result.CreditsCharged != 2 {
		t.Errorf("result = %+v, want paid pick 250 in slot 1 for 2 credits", result)
	}
	if got := f.userRepo.credits(user.ID); got != 3 {
		t.Errorf("credits = %d, want 3", got)
	}

	stored, _ := f.giveawayRepo.FindByID(context.Background(), giveaway.ID)
	if stored.TotalPicks != 1 {
		t.Errorf("totalPicks = %d, want 1", stored.TotalPicks)
	}
}

func TestCreatePickFreeEntry(t *testing.T) {
	f := newFixture()
	giveaway := f.addGiveaway(&models.Giveaway{Title: "Journey Together Case", FreeEntriesPerUser: 1, CreditCost: 2})
	user := f.addUser(2)

	first, err := f.picks.CreatePick(context.Background(), giveaway.ID, user.ID, 1, "100", true)
	if err != nil {
		t.Fatalf("first CreatePick failed: %v", err)
	}
	if !first.IsFreeEntry || first.CreditsCharged != 0 {
		t.Errorf("first = %+v, want free entry", first)
	}
	if got := f.userRepo.credits(user.ID); got != 2 {
		t.Errorf("credits = %d, want untouched 2", got)
	}

	// Free allowance exhausted: the second request falls back to credits.
	second, err := f.picks.CreatePick(context.Background(), giveaway.ID, user.ID, 1, "200", true)
	if err != nil {
		t.Fatalf("second CreatePick failed: %v", err)
	}
	if second.IsFreeEntry || second.CreditsCharged != 2 {
		t.Errorf("second = %+v, want paid pick", second)
	}
	if got := f.userRepo.credits(user.ID); got != 0 {
		t.Errorf("credits = %d, want 0", got)
	}
}

func TestCreatePickInsufficientFundsLeavesNoPick(t *testing.T) {
	f := newFixture()
	giveaway := f.addGiveaway(&models.Giveaway{Title: "Terastal Festival Case", CreditCost: 2})
	user := f.addUser(1)
	ctx := context.Background()

	_, err := f.picks.CreatePick(ctx, giveaway.ID, user.ID, 1, "250", false)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	// The unsettled row is removed again; no debit means no pick.
	picks, _ := f.pickRepo.FindByUserAndGiveaway(ctx, user.ID, giveaway.ID)
	if len(picks) != 0 {
		t.Errorf("persisted picks = %d, want 0", len(picks))
	}
	if got := f.userRepo.credits(user.ID); got != 1 {
		t.Errorf("credits = %d, want untouched 1", got)
	}
}

func TestCreatePickNumberTakenRefunds(t *testing.T) {
	f := newFixture()
	giveaway := f.addGiveaway(&models.Giveaway{Title: "Destined Rivals Case", CreditCost: 1})
	alice := f.addUser(3)
	bob := f.addUser(3)

	if _, err := f.picks.CreatePick(context.Background(), giveaway.ID, alice.ID, 2, "777", false); err != nil {
		t.Fatalf("setup pick failed: %v", err)
	}

	_, err := f.picks.CreatePick(context.Background(), giveaway.ID, bob.ID, 2, "777", false)
	if !errors.Is(err, ErrNumberTaken) {
		t.Fatalf("err = %v, want ErrNumberTaken", err)
	}
	// The number was lost before settlement, so no credits ever moved.
	if got := f.userRepo.credits(bob.ID); got != 3 {
		t.Errorf("credits = %d, want untouched 3", got)
	}

	// Same number in a different slot is a different tuple.
	if _, err := f.picks.CreatePick(context.Background(), giveaway.ID, bob.ID, 3, "777", false); err != nil {
		t.Errorf("same number in another slot failed: %v", err)
	}
}

func TestCreatePickValidation(t *testing.T) {
	f := newFixture()
	giveaway := f.addGiveaway(&models.Giveaway{Title: "Black Bolt Case", SlotCount: 2})
	user := f.addUser(10)
	ctx := context.Background()

	tests := []struct {
		name    string
		slot    int
		number  string
		wantErr error
	}{
		{"slot above count", 3, "100", ErrInvalidSlot},
		{"negative slot", -1, "100", ErrInvalidSlot},
		{"box topper without box topper", 0, "100", ErrInvalidSlot},
		{"short number", 1, "42", ErrInvalidPickNumber},
		{"non-numeric", 1, "abc", ErrInvalidPickNumber},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.picks.CreatePick(ctx, giveaway.ID, user.ID, tt.slot, tt.number, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreatePickBoxTopper(t *testing.T) {
	f := newFixture()
	giveaway := f.addGiveaway(&models.Giveaway{Title: "Stellar Crown Case", HasBoxTopper: true, FreeEntriesPerUser: 5, CreditCost: 2})
	user := f.addUser(10)

	// Free entries never apply to the box topper; it always costs 3x.
	result, err := f.picks.CreatePick(context.Background(), giveaway.ID, user.ID, BoxTopperSlot, "500", true)
	if err != nil {
		t.Fatalf("CreatePick failed: %v", err)
	}
	if result.IsFreeEntry {
		t.Error("box topper pick consumed a free entry")
	}
	if result.CreditsCharged != 6 {
		t.Errorf("creditsCharged = %d, want 6", result.CreditsCharged)
	}
	if got := f.userRepo.credits(user.ID); got != 4 {
		t.Errorf("credits = %d, want 4", got)
	}
}

func TestCreatePickPreconditions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	closed := f.addGiveaway(&models.Giveaway{Title: "Closed Case", Status: models.GiveawayStatusClosed})
	open := f.addGiveaway(&models.Giveaway{Title: "Open Case"})
	user := f.addUser(5)
	banned := &models.User{Username: "banned", GiveawayCredits: 5, IsBanned: true}
	_ = f.userRepo.Create(ctx, banned)

	if _, err := f.picks.CreatePick(ctx, closed.ID, user.ID, 1, "100", false); !errors.Is(err, ErrGiveawayNotAcceptingEntries) {
		t.Errorf("closed giveaway err = %v, want ErrGiveawayNotAcceptingEntries", err)
	}
	if _, err := f.picks.CreatePick(ctx, open.ID, banned.ID, 1, "100", false); !errors.Is(err, ErrUserBanned) {
		t.Errorf("banned user err = %v, want ErrUserBanned", err)
	}
	if got := f.userRepo.credits(user.ID); got != 5 {
		t.Errorf("credits = %d, want untouched 5", got)
	}
}

func TestCreateBulkPicksPartialOnFunds(t *testing.T) {
	f := newFixture()
	giveaway := f.addGiveaway(&models.Giveaway{Title: "Twilight Masquerade Case", CreditCost: 1})
	user := f.addUser(3)

	result, err := f.picks.CreateBulkPicks(context.Background(), giveaway.ID, user.ID, 5, nil, false)
	if err != nil {
		t.Fatalf("CreateBulkPicks failed: %v", err)
	}
	if result.PicksCreated != 3 {
		t.Errorf("picksCreated = %d, want 3", result.PicksCreated)
	}
	if result.CreditsUsed != 3 {
		t.Errorf("creditsUsed = %d, want 3", result.CreditsUsed)
	}
	if got := f.userRepo.credits(user.ID); got != 0 {
		t.Errorf("credits = %d, want 0", got)
	}
	if len(result.Picks) != 3 {
		t.Errorf("len(picks) = %d, want 3", len(result.Picks))
	}
	// Exactly the settled picks survive; the attempt that found the balance
	// empty left no row behind.
	persisted, _ := f.pickRepo.FindByUserAndGiveaway(context.Background(), user.ID, giveaway.ID)
	if len(persisted) != 3 {
		t.Errorf("persisted picks = %d, want 3", len(persisted))
	}
}

func TestCreateBulkPicksSpreadsSlots(t *testing.T) {
	f := newFixture()
	giveaway := f.addGiveaway(&models.Giveaway{Title: "Shrouded Fable Case", SlotCount: 3, CreditCost: 1})
	user := f.addUser(10)

	result, err := f.picks.CreateBulkPicks(context.Background(), giveaway.ID, user.ID, 3, nil, false)
	if err != nil {
		t.Fatalf("CreateBulkPicks failed: %v", err)
	}
	if result.PicksCreated != 3 {
		t.Fatalf("picksCreated = %d, want 3", result.PicksCreated)
	}
	seen := map[int]int{}
	for _, pick := range result.Picks {
		seen[pick.Slot]++
	}
	for slot := 1; slot <= 3; slot++ {
		if seen[slot] != 1 {
			t.Errorf("slot %d received %d picks, want 1", slot, seen[slot])
		}
	}
}

func TestCreateBulkPicksTargetSlot(t *testing.T) {
	f := newFixture()
	giveaway := f.addGiveaway(&models.Giveaway{Title: "Paradox Rift Case", SlotCount: 4, CreditCost: 1})
	user := f.addUser(20)
	slot := 2

	result, err := f.picks.CreateBulkPicks(context.Background(), giveaway.ID, user.ID, 5, &slot, false)
	if err != nil {
		t.Fatalf("CreateBulkPicks failed: %v", err)
	}
	if result.PicksCreated != 5 {
		t.Fatalf("picksCreated = %d, want 5", result.PicksCreated)
	}
	numbers := map[string]bool{}
	for _, pick := range result.Picks {
		if pick.Slot != slot {
			t.Errorf("pick landed in slot %d, want %d", pick.Slot, slot)
		}
		if numbers[pick.PickNumber] {
			t.Errorf("number %s allocated twice within one batch", pick.PickNumber)
		}
		numbers[pick.PickNumber] = true
	}
}

func TestCreateBulkPicksFreeThenPaid(t *testing.T) {
	f := newFixture()
	giveaway := f.addGiveaway(&models.Giveaway{Title: "Obsidian Flames Case", FreeEntriesPerUser: 2, CreditCost: 1})
	user := f.addUser(1)

	result, err := f.picks.CreateBulkPicks(context.Background(), giveaway.ID, user.ID, 5, nil, true)
	if err != nil {
		t.Fatalf("CreateBulkPicks failed: %v", err)
	}
	if result.PicksCreated != 3 {
		t.Errorf("picksCreated = %d, want 3 (2 free + 1 paid)", result.PicksCreated)
	}
	if result.FreeEntriesUsed != 2 {
		t.Errorf("freeEntriesUsed = %d, want 2", result.FreeEntriesUsed)
	}
	if result.CreditsUsed != 1 {
		t.Errorf("creditsUsed = %d, want 1", result.CreditsUsed)
	}
}

func TestCreateBulkPicksInvalidTargetSlot(t *testing.T) {
	f := newFixture()
	giveaway := f.addGiveaway(&models.Giveaway{Title: "Temporal Forces Case", SlotCount: 2})
	user := f.addUser(5)
	slot := 9

	if _, err := f.picks.CreateBulkPicks(context.Background(), giveaway.ID, user.ID, 1, &slot, false); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("err = %v, want ErrInvalidSlot", err)
	}
}

func TestMinPicksTriggersDrawSchedule(t *testing.T) {
	f := newFixture()
	giveaway := f.addGiveaway(&models.Giveaway{Title: "151 Case", MinPicks: 2, CreditCost: 1})
	user := f.addUser(10)
	ctx := context.Background()

	if _, err := f.picks.CreatePick(ctx, giveaway.ID, user.ID, 1, "100", false); err != nil {
		t.Fatalf("first pick failed: %v", err)
	}
	stored, _ := f.giveawayRepo.FindByID(ctx, giveaway.ID)
	if stored.Status != models.GiveawayStatusOpen {
		t.Fatalf("status after one pick = %s, want OPEN", stored.Status)
	}

	if _, err := f.picks.CreatePick(ctx, giveaway.ID, user.ID, 1, "200", false); err != nil {
		t.Fatalf("second pick failed: %v", err)
	}
	stored, _ = f.giveawayRepo.FindByID(ctx, giveaway.ID)
	if stored.Status != models.GiveawayStatusFilling {
		t.Errorf("status = %s, want FILLING", stored.Status)
	}
	if stored.DrawDate.IsZero() || stored.EntryCutoff.IsZero() {
		t.Error("draw schedule not set on FILLING transition")
	}
	if !stored.EntryCutoff.Before(stored.DrawDate) {
		t.Error("entry cutoff should precede the draw")
	}
	if stored.TotalPicks != 2 {
		t.Errorf("totalPicks = %d, want 2", stored.TotalPicks)
	}
}

func TestGetSlotSnapshot(t *testing.T) {
	f := newFixture()
	giveaway := f.addGiveaway(&models.Giveaway{Title: "Surging Sparks Case", CreditCost: 1})
	user := f.addUser(10)
	ctx := context.Background()

	for _, number := range []string{"100", "500", "900"} {
		if _, err := f.picks.CreatePick(ctx, giveaway.ID, user.ID, 1, number, false); err != nil {
			t.Fatalf("setup pick %s failed: %v", number, err)
		}
	}

	snapshot, err := f.picks.GetSlotSnapshot(ctx, giveaway.ID, 1)
	if err != nil {
		t.Fatalf("GetSlotSnapshot failed: %v", err)
	}
	if snapshot.TotalTaken != 3 || snapshot.TotalAvailable != 997 {
		t.Errorf("taken/available = %d/%d, want 3/997", snapshot.TotalTaken, snapshot.TotalAvailable)
	}
	if len(snapshot.TakenNumbers) != 3 || snapshot.TakenNumbers[0] != "100" {
		t.Errorf("takenNumbers = %v, want sorted [100 500 900]", snapshot.TakenNumbers)
	}
	if len(snapshot.LargestGaps) != 4 {
		t.Fatalf("len(gaps) = %d, want 4", len(snapshot.LargestGaps))
	}
	if snapshot.LargestGaps[0].Size != 399 {
		t.Errorf("largest gap size = %d, want 399", snapshot.LargestGaps[0].Size)
	}

	if _, err := f.picks.GetSlotSnapshot(ctx, giveaway.ID, 9); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("invalid slot err = %v, want ErrInvalidSlot", err)
	}
}

func TestSuggestAutoPick(t *testing.T) {
	f := newFixture()
	giveaway := f.addGiveaway(&models.Giveaway{Title: "Crown Zenith Case", SlotCount: 2, CreditCost: 1})
	user := f.addUser(10)
	ctx := context.Background()

	suggestion, err := f.picks.SuggestAutoPick(ctx, giveaway.ID)
	if err != nil {
		t.Fatalf("SuggestAutoPick failed: %v", err)
	}
	if suggestion.Slot != 1 || suggestion.PickNumber != "500" {
		t.Errorf("suggestion = %+v, want slot 1 number 500", suggestion)
	}

	// After a pick in slot 1, slot 2 is the less contended choice.
	if _, err := f.picks.CreatePick(ctx, giveaway.ID, user.ID, 1, "500", false); err != nil {
		t.Fatalf("setup pick failed: %v", err)
	}
	suggestion, err = f.picks.SuggestAutoPick(ctx, giveaway.ID)
	if err != nil {
		t.Fatalf("SuggestAutoPick failed: %v", err)
	}
	if suggestion.Slot != 2 {
		t.Errorf("suggestion slot = %d, want 2", suggestion.Slot)
	}
}

func TestCreatePickGiveawayNotFound(t *testing.T) {
	f := newFixture()
	user := f.addUser(5)

	_, err := f.picks.CreatePick(context.Background(), primitive.NewObjectID(), user.ID, 1, "100", false)
	if !errors.Is(err, ErrGiveawayNotFound) {
		t.Errorf("err = %v, want ErrGiveawayNotFound", err)
	}
}
