package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pick represents one claimed 3-digit number in a giveaway slot.
// The tuple (giveawayId, slot, pickNumber) is unique — enforced by a
// compound index in the pick repository.
type Pick struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	GiveawayID  primitive.ObjectID `bson:"giveawayId" json:"giveawayId"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Slot        int                `bson:"slot" json:"slot"`
	PickNumber  string             `bson:"pickNumber" json:"pickNumber"` // "000".."999"
	IsFreeEntry bool               `bson:"isFreeEntry" json:"isFreeEntry"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// PickResult is what a single allocation returns to the caller. The realized
// IsFreeEntry/CreditsCharged may differ from the caller's preference — ledger
// state wins.
type PickResult struct {
	Slot           int    `json:"slot"`
	PickNumber     string `json:"pickNumber"`
	IsFreeEntry    bool   `json:"isFreeEntry"`
	CreditsCharged int    `json:"creditsCharged"`
}

// BulkPickResult summarises a bulk allocation, which may be partial.
type BulkPickResult struct {
	PicksCreated    int          `json:"picksCreated"`
	CreditsUsed     int          `json:"creditsUsed"`
	FreeEntriesUsed int          `json:"freeEntriesUsed"`
	Picks           []PickResult `json:"picks"`
}
