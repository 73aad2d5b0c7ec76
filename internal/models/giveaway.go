package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GiveawayStatus represents the lifecycle status of a giveaway
type GiveawayStatus string

const (
	GiveawayStatusOpen      GiveawayStatus = "OPEN"
	GiveawayStatusFilling   GiveawayStatus = "FILLING"
	GiveawayStatusClosed    GiveawayStatus = "CLOSED"
	GiveawayStatusCompleted GiveawayStatus = "COMPLETED"
	GiveawayStatusCancelled GiveawayStatus = "CANCELLED"
)

// Giveaway represents a numbers-based giveaway for a sealed product.
// Slots are numbered 1..SlotCount; slot 0 is the premium box-topper slot
// and only exists when HasBoxTopper is set.
type Giveaway struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title              string             `bson:"title" json:"title"`
	SlotCount          int                `bson:"slotCount" json:"slotCount"`
	HasBoxTopper       bool               `bson:"hasBoxTopper" json:"hasBoxTopper"`
	MinPicks           int                `bson:"minPicks" json:"minPicks"`
	FreeEntriesPerUser int                `bson:"freeEntriesPerUser" json:"freeEntriesPerUser"`
	CreditCost         int                `bson:"creditCost" json:"creditCost"`
	Status             GiveawayStatus     `bson:"status" json:"status"`
	DrawDate           time.Time          `bson:"drawDate,omitempty" json:"drawDate,omitempty"`
	EntryCutoff        time.Time          `bson:"entryCutoff,omitempty" json:"entryCutoff,omitempty"`
	DrawnNumber        string             `bson:"drawnNumber,omitempty" json:"drawnNumber,omitempty"`
	TotalPicks         int                `bson:"totalPicks" json:"totalPicks"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AcceptingEntries reports whether picks may still be created for the giveaway
// at the given time.
func (g *Giveaway) AcceptingEntries(now time.Time) bool {
	if g.Status != GiveawayStatusOpen && g.Status != GiveawayStatusFilling {
		return false
	}
	if !g.EntryCutoff.IsZero() && now.After(g.EntryCutoff) {
		return false
	}
	return true
}

// ValidSlot reports whether slot is a pickable slot index for the giveaway.
func (g *Giveaway) ValidSlot(slot int) bool {
	if slot == 0 {
		return g.HasBoxTopper
	}
	return slot >= 1 && slot <= g.SlotCount
}
