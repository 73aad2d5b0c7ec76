package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cardhaus/giveaway-backend/internal/models"
	"github.com/cardhaus/giveaway-backend/internal/repositories"
	"github.com/cardhaus/giveaway-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// In-memory repository fakes mirroring the MongoDB implementations' error
// contracts: mongo.ErrNoDocuments for missing documents and a duplicate-key
// write exception for unique-index violations.

func duplicateKeyError() error {
	return mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}},
	}
}

type fakeGiveawayRepo struct {
	mu        sync.Mutex
	giveaways map[primitive.ObjectID]*models.Giveaway
}

var _ repositories.GiveawayRepository = (*fakeGiveawayRepo)(nil)

func newFakeGiveawayRepo() *fakeGiveawayRepo {
	return &fakeGiveawayRepo{giveaways: make(map[primitive.ObjectID]*models.Giveaway)}
}

func (r *fakeGiveawayRepo) Create(ctx context.Context, giveaway *models.Giveaway) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if giveaway.ID.IsZero() {
		giveaway.ID = primitive.NewObjectID()
	}
	stored := *giveaway
	r.giveaways[giveaway.ID] = &stored
	return nil
}

func (r *fakeGiveawayRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	giveaway, ok := r.giveaways[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *giveaway
	return &copied, nil
}

func (r *fakeGiveawayRepo) FindAll(ctx context.Context) ([]*models.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	giveaways := make([]*models.Giveaway, 0, len(r.giveaways))
	for _, giveaway := range r.giveaways {
		copied := *giveaway
		giveaways = append(giveaways, &copied)
	}
	return giveaways, nil
}

func (r *fakeGiveawayRepo) FindByStatus(ctx context.Context, status models.GiveawayStatus) ([]*models.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	giveaways := []*models.Giveaway{}
	for _, giveaway := range r.giveaways {
		if giveaway.Status == status {
			copied := *giveaway
			giveaways = append(giveaways, &copied)
		}
	}
	return giveaways, nil
}

func (r *fakeGiveawayRepo) Update(ctx context.Context, giveaway *models.Giveaway) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.giveaways[giveaway.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	stored := *giveaway
	r.giveaways[giveaway.ID] = &stored
	return nil
}

func (r *fakeGiveawayRepo) SetTotalPicks(ctx context.Context, id primitive.ObjectID, total int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	giveaway, ok := r.giveaways[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	giveaway.TotalPicks = total
	return nil
}

func (r *fakeGiveawayRepo) TransitionToFilling(ctx context.Context, id primitive.ObjectID, drawDate, entryCutoff time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	giveaway, ok := r.giveaways[id]
	if !ok || giveaway.Status != models.GiveawayStatusOpen {
		// Matches the conditional update: no document matched the filter.
		return nil
	}
	giveaway.Status = models.GiveawayStatusFilling
	giveaway.DrawDate = drawDate
	giveaway.EntryCutoff = entryCutoff
	return nil
}

func (r *fakeGiveawayRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.GiveawayStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	giveaway, ok := r.giveaways[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	giveaway.Status = status
	return nil
}

func (r *fakeGiveawayRepo) RecordDrawnNumber(ctx context.Context, id primitive.ObjectID, drawnNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	giveaway, ok := r.giveaways[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	giveaway.DrawnNumber = drawnNumber
	giveaway.Status = models.GiveawayStatusCompleted
	return nil
}

type fakePickRepo struct {
	mu    sync.Mutex
	picks []*models.Pick
}

var _ repositories.PickRepository = (*fakePickRepo)(nil)

func newFakePickRepo() *fakePickRepo {
	return &fakePickRepo{}
}

func (r *fakePickRepo) Create(ctx context.Context, pick *models.Pick) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.picks {
		if existing.GiveawayID == pick.GiveawayID && existing.Slot == pick.Slot && existing.PickNumber == pick.PickNumber {
			return duplicateKeyError()
		}
	}
	if pick.ID.IsZero() {
		pick.ID = primitive.NewObjectID()
	}
	stored := *pick
	r.picks = append(r.picks, &stored)
	return nil
}

func (r *fakePickRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, pick := range r.picks {
		if pick.ID == id {
			r.picks = append(r.picks[:i], r.picks[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakePickRepo) FindByGiveaway(ctx context.Context, giveawayID primitive.ObjectID) ([]*models.Pick, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	picks := []*models.Pick{}
	for _, pick := range r.picks {
		if pick.GiveawayID == giveawayID {
			copied := *pick
			picks = append(picks, &copied)
		}
	}
	return picks, nil
}

func (r *fakePickRepo) FindByUserAndGiveaway(ctx context.Context, userID, giveawayID primitive.ObjectID) ([]*models.Pick, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	picks := []*models.Pick{}
	for _, pick := range r.picks {
		if pick.UserID == userID && pick.GiveawayID == giveawayID {
			copied := *pick
			picks = append(picks, &copied)
		}
	}
	return picks, nil
}

func (r *fakePickRepo) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Pick, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	picks := []*models.Pick{}
	for _, pick := range r.picks {
		if pick.UserID == userID {
			copied := *pick
			picks = append(picks, &copied)
		}
	}
	return picks, nil
}

func (r *fakePickRepo) TakenNumbers(ctx context.Context, giveawayID primitive.ObjectID, slot int) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var taken []int
	for _, pick := range r.picks {
		if pick.GiveawayID == giveawayID && pick.Slot == slot {
			if value, ok := utils.ParsePickNumber(pick.PickNumber); ok {
				taken = append(taken, value)
			}
		}
	}
	sort.Ints(taken)
	return taken, nil
}

func (r *fakePickRepo) CountByGiveaway(ctx context.Context, giveawayID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, pick := range r.picks {
		if pick.GiveawayID == giveawayID {
			count++
		}
	}
	return count, nil
}

func (r *fakePickRepo) CountBySlot(ctx context.Context, giveawayID primitive.ObjectID) (map[int]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[int]int)
	for _, pick := range r.picks {
		if pick.GiveawayID == giveawayID {
			counts[pick.Slot]++
		}
	}
	return counts, nil
}

func (r *fakePickRepo) CountFreeEntries(ctx context.Context, userID, giveawayID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, pick := range r.picks {
		if pick.UserID == userID && pick.GiveawayID == giveawayID && pick.IsFreeEntry {
			count++
		}
	}
	return count, nil
}

func (r *fakePickRepo) EnsureIndexes(ctx context.Context) error {
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

var _ repositories.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]*models.User, 0, len(r.users))
	for _, user := range r.users {
		copied := *user
		users = append(users, &copied)
	}
	return users, nil
}

func (r *fakeUserRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) IncrementCredits(ctx context.Context, userID primitive.ObjectID, amount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	user.GiveawayCredits += amount
	return nil
}

func (r *fakeUserRepo) DebitCredits(ctx context.Context, userID primitive.ObjectID, amount int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return false, nil
	}
	if user.GiveawayCredits < amount {
		return false, nil
	}
	user.GiveawayCredits -= amount
	return true, nil
}

func (r *fakeUserRepo) credits(id primitive.ObjectID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		return user.GiveawayCredits
	}
	return 0
}

type fakeWinnerRepo struct {
	mu      sync.Mutex
	winners []*models.Winner
}

var _ repositories.WinnerRepository = (*fakeWinnerRepo)(nil)

func newFakeWinnerRepo() *fakeWinnerRepo {
	return &fakeWinnerRepo{}
}

func (r *fakeWinnerRepo) CreateMany(ctx context.Context, winners []*models.Winner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, winner := range winners {
		if winner.ID.IsZero() {
			winner.ID = primitive.NewObjectID()
		}
		stored := *winner
		r.winners = append(r.winners, &stored)
	}
	return nil
}

func (r *fakeWinnerRepo) FindByGiveawayID(ctx context.Context, giveawayID primitive.ObjectID) ([]*models.Winner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	winners := []*models.Winner{}
	for _, winner := range r.winners {
		if winner.GiveawayID == giveawayID {
			copied := *winner
			winners = append(winners, &copied)
		}
	}
	return winners, nil
}

func (r *fakeWinnerRepo) FindByUserID(ctx context.Context, userID primitive.ObjectID) ([]*models.Winner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	winners := []*models.Winner{}
	for _, winner := range r.winners {
		if winner.UserID == userID {
			copied := *winner
			winners = append(winners, &copied)
		}
	}
	return winners, nil
}

type fakeAdminUserRepo struct {
	mu     sync.Mutex
	admins map[primitive.ObjectID]*models.AdminUser
}

var _ repositories.AdminUserRepository = (*fakeAdminUserRepo)(nil)

func newFakeAdminUserRepo() *fakeAdminUserRepo {
	return &fakeAdminUserRepo{admins: make(map[primitive.ObjectID]*models.AdminUser)}
}

func (r *fakeAdminUserRepo) Create(ctx context.Context, adminUser *models.AdminUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if adminUser.ID.IsZero() {
		adminUser.ID = primitive.NewObjectID()
	}
	stored := *adminUser
	r.admins[adminUser.ID] = &stored
	return nil
}

func (r *fakeAdminUserRepo) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, adminUser := range r.admins {
		if adminUser.Email == email {
			copied := *adminUser
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeAdminUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	adminUser, ok := r.admins[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *adminUser
	return &copied, nil
}

// fixture bundles the fakes and wired services most tests need.
type fixture struct {
	giveawayRepo *fakeGiveawayRepo
	pickRepo     *fakePickRepo
	userRepo     *fakeUserRepo
	winnerRepo   *fakeWinnerRepo
	ledger       *LedgerService
	picks        *PickServiceImpl
	giveaways    *GiveawayServiceImpl
}

func newFixture() *fixture {
	giveawayRepo := newFakeGiveawayRepo()
	pickRepo := newFakePickRepo()
	userRepo := newFakeUserRepo()
	winnerRepo := newFakeWinnerRepo()
	ledger := NewLedgerService(userRepo, pickRepo)
	return &fixture{
		giveawayRepo: giveawayRepo,
		pickRepo:     pickRepo,
		userRepo:     userRepo,
		winnerRepo:   winnerRepo,
		ledger:       ledger,
		picks:        NewPickService(giveawayRepo, pickRepo, userRepo, ledger),
		giveaways:    NewGiveawayService(giveawayRepo, pickRepo, winnerRepo, userRepo, ledger),
	}
}

func (f *fixture) addGiveaway(g *models.Giveaway) *models.Giveaway {
	if g.Status == "" {
		g.Status = models.GiveawayStatusOpen
	}
	if g.SlotCount == 0 {
		g.SlotCount = 3
	}
	if g.CreditCost == 0 {
		g.CreditCost = 1
	}
	if g.MinPicks == 0 {
		g.MinPicks = 1000
	}
	_ = f.giveawayRepo.Create(context.Background(), g)
	return g
}

func (f *fixture) addUser(credits int) *models.User {
	user := &models.User{Username: "collector", GiveawayCredits: credits}
	_ = f.userRepo.Create(context.Background(), user)
	return user
}
